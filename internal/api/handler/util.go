package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/astraschool/astra-platform/internal/api/middleware"
	"github.com/astraschool/astra-platform/internal/api/problem"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

func requestActor(r *http.Request) (uuid.UUID, bool, error) {
	actorID := middleware.UserIDFromContext(r.Context())
	if actorID == uuid.Nil {
		return uuid.Nil, false, errors.New("missing user in auth context")
	}
	return actorID, middleware.IsAdmin(r.Context()), nil
}

func mapDBError(err error) (status int, problemType, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "db/unique-violation", "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusBadRequest, "db/foreign-key-violation", "invalid reference", true
	case "23514": // check_violation
		return http.StatusBadRequest, "db/check-violation", "request violates data constraints", true
	case "23502": // not_null_violation
		return http.StatusBadRequest, "db/not-null-violation", "missing required field", true
	default:
		return 0, "", "", false
	}
}

// RespondServiceError maps ledger business failures onto problem+json
// responses. Unrecognized errors become opaque 500s; DB constraint
// violations get their own mapping first.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientBalance):
		RespondError(w, r, http.StatusBadRequest, "ledger/insufficient-balance", err.Error())
	case errors.Is(err, models.ErrRecipientNotFound):
		RespondError(w, r, http.StatusNotFound, "ledger/recipient-not-found", err.Error())
	case errors.Is(err, models.ErrUserNotFound):
		RespondError(w, r, http.StatusNotFound, "users/not-found", err.Error())
	case errors.Is(err, models.ErrCompanyNotFound):
		RespondError(w, r, http.StatusNotFound, "companies/not-found", err.Error())
	case errors.Is(err, models.ErrEquityOverallocated):
		RespondError(w, r, http.StatusBadRequest, "companies/equity-overallocated", err.Error())
	case errors.Is(err, models.ErrPoolExhausted):
		RespondError(w, r, http.StatusBadRequest, "companies/pool-exhausted", err.Error())
	case errors.Is(err, models.ErrWouldGoNegative):
		RespondError(w, r, http.StatusBadRequest, "ledger/would-go-negative", err.Error())
	case errors.Is(err, models.ErrUnknownFounderEmail):
		RespondError(w, r, http.StatusBadRequest, "companies/unknown-founder-email", err.Error())
	case errors.Is(err, models.ErrSelfFriendship):
		RespondError(w, r, http.StatusBadRequest, "friends/self-friendship", err.Error())
	case errors.Is(err, models.ErrFriendshipExists):
		RespondError(w, r, http.StatusConflict, "friends/already-exists", err.Error())
	case errors.Is(err, models.ErrFriendRequestNotFound):
		RespondError(w, r, http.StatusNotFound, "friends/request-not-found", err.Error())
	case errors.Is(err, models.ErrEmailTaken):
		RespondError(w, r, http.StatusConflict, "auth/email-taken", err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-credentials", err.Error())
	default:
		var capErr *models.FundingCapError
		var treasuryErr *models.InsufficientTreasuryError
		switch {
		case errors.As(err, &capErr):
			RespondError(w, r, http.StatusBadRequest, "companies/funding-cap-exceeded", capErr.Error())
		case errors.As(err, &treasuryErr):
			RespondError(w, r, http.StatusBadRequest, "companies/insufficient-treasury", treasuryErr.Error())
		default:
			if status, problemType, message, ok := mapDBError(err); ok {
				RespondError(w, r, status, problemType, message)
				return
			}
			zap.L().Error("unhandled service error", zap.Error(err))
			RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
		}
	}
}
