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

// InvestmentService converts an investment amount into a proportional
// equity grant bounded by the remaining investor pool and the company's
// remaining funding headroom.
type InvestmentService struct {
	store QueryStore
}

func NewInvestmentService(store QueryStore) *InvestmentService {
	return &InvestmentService{store: store}
}

// Invest debits the investor, applies the amount to the company's funding
// counters and issues equity, all in one transaction. Both the balance
// debit and the funding update are single guarded statements, so two
// investors racing for the last headroom cannot both win it. Returns the
// basis points granted.
func (s *InvestmentService) Invest(ctx context.Context, companyID, investorID uuid.UUID, amount int64) (int32, error) {
	var granted int32
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		company, err := q.GetActiveCompany(ctx, companyID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCompanyNotFound
		}
		if err != nil {
			return fmt.Errorf("load company: %w", err)
		}

		granted = domain.InvestorGrantBps(company.InvestorPoolBps, amount, company.FundingGoal)
		if granted > company.InvestorPoolBps-company.AllocatedInvestorBps {
			return models.ErrPoolExhausted
		}

		rows, err := q.DeductUserBalance(ctx, investorID, amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return models.ErrInsufficientBalance
		}

		rows, err = q.ApplyInvestment(ctx, companyID, amount, granted)
		if err != nil {
			return err
		}
		if rows == 0 {
			// A concurrent investor moved the counters between our read and
			// the guarded update. Re-read to report the cap that actually
			// blocked us, pool first to mirror the pre-check above.
			current, err := q.GetActiveCompany(ctx, companyID)
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrCompanyNotFound
			}
			if err != nil {
				return fmt.Errorf("reload company: %w", err)
			}
			if granted > current.InvestorPoolBps-current.AllocatedInvestorBps {
				return models.ErrPoolExhausted
			}
			return &models.FundingCapError{
				Requested: amount,
				Remaining: current.FundingGoal - current.CurrentFunding,
			}
		}

		if granted > 0 {
			if err := q.UpsertEquityAllocation(ctx, companyID, investorID, granted); err != nil {
				return err
			}
		}

		if err := q.InsertInvestment(ctx, repository.InsertInvestmentParams{
			ID:                  uuid.New(),
			CompanyID:           companyID,
			UserID:              investorID,
			Amount:              amount,
			BasisPointsReceived: granted,
		}); err != nil {
			return err
		}

		return q.InsertTransaction(ctx, repository.InsertTransactionParams{
			ID:          uuid.New(),
			FromUserID:  &investorID,
			ToUserID:    company.CreatedByID,
			Amount:      amount,
			Type:        domain.TxTypeInvest,
			Description: fmt.Sprintf("Invested in %s for %.2f%% equity", company.Name, float64(granted)/100),
			CompanyID:   &company.ID,
		})
	})
	if err != nil {
		return 0, err
	}
	return granted, nil
}
