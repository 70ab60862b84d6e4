package handler

import (
	"encoding/json"
	"net/http"

	"github.com/astraschool/astra-platform/internal/observability"
	"github.com/astraschool/astra-platform/internal/service"
	"github.com/google/uuid"
)

// TransferHandler validates and gates peer-to-peer transfers before
// handing them to the ledger engine. Amount bounds, self-transfer and the
// friendship requirement live here, not in the engine.
type TransferHandler struct {
	transfers *service.TransferService
	friends   *service.FriendService
}

func NewTransferHandler(transfers *service.TransferService, friends *service.FriendService) *TransferHandler {
	return &TransferHandler{transfers: transfers, friends: friends}
}

func (h *TransferHandler) Send(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	var req struct {
		ToUserID    string `json:"to_user_id"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}

	toID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "invalid to_user_id")
		return
	}
	if req.Amount <= 0 {
		RespondError(w, r, http.StatusBadRequest, "ledger/invalid-amount", "amount must be positive")
		return
	}
	if toID == actorID {
		RespondError(w, r, http.StatusBadRequest, "ledger/self-transfer", "cannot send Astras to yourself")
		return
	}

	friends, err := h.friends.AreFriends(r.Context(), actorID, toID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	if !friends {
		RespondError(w, r, http.StatusForbidden, "ledger/not-friends", "transfers require an accepted friendship")
		return
	}

	if err := h.transfers.Send(r.Context(), actorID, toID, req.Amount, req.Description); err != nil {
		observability.IncrementLedgerOperation("transfer", "failed")
		RespondServiceError(w, r, err)
		return
	}
	observability.IncrementLedgerOperation("transfer", "success")
	RespondJSON(w, http.StatusCreated, map[string]string{"status": "sent"})
}
