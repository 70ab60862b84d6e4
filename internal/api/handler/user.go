package handler

import (
	"net/http"
	"strconv"

	"github.com/astraschool/astra-platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the authenticated user's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	user, err := h.users.Get(r.Context(), actorID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// Profile returns another user's public profile, with the friendship
// state resolved relative to the authenticated viewer.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "user id must be a UUID")
		return
	}
	profile, err := h.users.Profile(r.Context(), targetID, actorID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// History returns the authenticated user's transaction history.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 || parsed > 500 {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-limit", "limit must be between 1 and 500")
			return
		}
		limit = int32(parsed)
	}

	history, err := h.users.History(r.Context(), actorID, limit)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, history)
}

// Equity returns the authenticated user's holdings across active companies.
func (h *UserHandler) Equity(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	equity, err := h.users.Equity(r.Context(), actorID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, equity)
}

// Payouts returns the authenticated user's payout history.
func (h *UserHandler) Payouts(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	payouts, err := h.users.Payouts(r.Context(), actorID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, payouts)
}
