package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/astraschool/astra-platform/internal/domain"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AdminService carries the administrative flows that touch the ledger:
// direct balance adjustment, ban state (which gates payout eligibility)
// and admin role changes with their balance resets.
type AdminService struct {
	store                QueryStore
	startingBalance      int64
	adminStartingBalance int64
}

func NewAdminService(store QueryStore, startingBalance, adminStartingBalance int64) *AdminService {
	return &AdminService{
		store:                store,
		startingBalance:      startingBalance,
		adminStartingBalance: adminStartingBalance,
	}
}

// AdjustBalance applies a signed delta to a user's balance. The target row
// is locked for the read-check-write sequence, and the change is paired
// with an admin_adjust transaction so the ledger stays complete.
func (s *AdminService) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64, description string, adminID uuid.UUID) error {
	if delta == 0 {
		return nil
	}
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		balance, err := q.GetUserBalanceForUpdate(ctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("load balance: %w", err)
		}
		if balance+delta < 0 {
			return models.ErrWouldGoNegative
		}

		rows, err := q.SetUserBalance(ctx, userID, balance+delta)
		if err != nil {
			return err
		}
		if err := requireExactlyOne(rows, "adjust balance"); err != nil {
			return err
		}

		params := repository.InsertTransactionParams{
			ID:          uuid.New(),
			Type:        domain.TxTypeAdminAdjust,
			Description: description,
		}
		if delta > 0 {
			params.FromUserID = &adminID
			params.ToUserID = userID
			params.Amount = delta
		} else {
			params.FromUserID = &userID
			params.ToUserID = adminID
			params.Amount = -delta
		}
		return q.InsertTransaction(ctx, params)
	})
}

// SetBanned flips a user's ban state and their payout eligibility on every
// equity allocation they hold, so active distributions withhold their
// share while banned.
func (s *AdminService) SetBanned(ctx context.Context, userID uuid.UUID, banned bool) error {
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		rows, err := q.SetUserBanned(ctx, userID, banned)
		if err != nil {
			return err
		}
		if rows == 0 {
			return models.ErrUserNotFound
		}
		return q.SetHolderPayoutEligibility(ctx, userID, !banned)
	})
}

// SetAdmin grants or revokes the admin role. Promotion sets the admin
// starting balance; demotion resets to the regular starting balance unless
// the user is a founder, whose balance is left alone.
func (s *AdminService) SetAdmin(ctx context.Context, userID uuid.UUID, admin bool) error {
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		user, err := q.GetUser(ctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		rows, err := q.SetUserAdmin(ctx, userID, admin)
		if err != nil {
			return err
		}
		if err := requireExactlyOne(rows, "set admin role"); err != nil {
			return err
		}

		switch {
		case admin:
			rows, err = q.SetUserBalance(ctx, userID, s.adminStartingBalance)
		case !user.IsFounder:
			rows, err = q.SetUserBalance(ctx, userID, s.startingBalance)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		return requireExactlyOne(rows, "reset balance")
	})
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Queries().ListUsers(ctx)
}

// ActiveAdminIDs resolves the current non-banned admin set. Company
// creation and earnings distribution take this list as an explicit input.
func (s *AdminService) ActiveAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	admins, err := s.store.Queries().ListActiveAdmins(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
