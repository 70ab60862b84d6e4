package service

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/domain"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/google/uuid"
)

// TransferService moves Astras between two accounts. Friendship gating and
// amount validation happen at the HTTP edge; this engine only guarantees
// the movement itself is atomic and never overdraws the sender.
type TransferService struct {
	store QueryStore
}

func NewTransferService(store QueryStore) *TransferService {
	return &TransferService{store: store}
}

// Send debits the sender, credits the recipient and records the movement
// in one transaction. The debit is a single guarded update: under two
// concurrent sends racing for the same balance at most one commits.
func (s *TransferService) Send(ctx context.Context, fromID, toID uuid.UUID, amount int64, description string) error {
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		exists, err := q.UserExists(ctx, toID)
		if err != nil {
			return fmt.Errorf("verify recipient: %w", err)
		}
		if !exists {
			return models.ErrRecipientNotFound
		}

		rows, err := q.DeductUserBalance(ctx, fromID, amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return models.ErrInsufficientBalance
		}

		rows, err = q.AddUserBalance(ctx, toID, amount)
		if err != nil {
			return err
		}
		if err := requireExactlyOne(rows, "credit recipient"); err != nil {
			return err
		}

		return q.InsertTransaction(ctx, repository.InsertTransactionParams{
			ID:          uuid.New(),
			FromUserID:  &fromID,
			ToUserID:    toID,
			Amount:      amount,
			Type:        domain.TxTypeTransfer,
			Description: description,
		})
	})
}
