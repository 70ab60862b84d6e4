package handler

import (
	"encoding/json"
	"net/http"

	"github.com/astraschool/astra-platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminHandler struct {
	admins *service.AdminService
}

func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admins.ListUsers(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, users)
}

// AdjustBalance applies a signed delta to a user's balance and records a
// paired adjustment transaction.
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Delta       int64  `json:"delta"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.Delta == 0 {
		RespondError(w, r, http.StatusBadRequest, "ledger/invalid-amount", "delta must be non-zero")
		return
	}
	if req.Description == "" {
		req.Description = "Balance adjustment"
	}

	if err := h.admins.AdjustBalance(r.Context(), userID, req.Delta, req.Description, actorID); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"delta": req.Delta})
}

func (h *AdminHandler) SetBanned(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}

	if err := h.admins.SetBanned(r.Context(), userID, req.Banned); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"banned": req.Banned})
}

func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Admin bool `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}

	if err := h.admins.SetAdmin(r.Context(), userID, req.Admin); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"admin": req.Admin})
}

func userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}
