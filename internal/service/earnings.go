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

// EarningsService distributes company earnings: a fixed 1.5% fee per
// active admin off the top, then the remainder apportioned across all
// equity holders by basis points. Ineligible holders' shares are recorded
// as withheld and never paid or redistributed. The admin set is resolved
// by the caller and passed in.
type EarningsService struct {
	store QueryStore
}

func NewEarningsService(store QueryStore) *EarningsService {
	return &EarningsService{store: store}
}

// DistributionResult summarizes one completed distribution.
type DistributionResult struct {
	AdminShare     int64 `json:"admin_share"`
	Distributable  int64 `json:"distributable"`
	PaidToHolders  int64 `json:"paid_to_holders"`
	WithheldAmount int64 `json:"withheld_amount"`
}

// Distribute debits the company treasury by grossAmount and pays it out
// in one transaction: fee per admin, then a floored proportional share to
// each equity holder. The denominator is total issued equity including
// ineligible holders, so banned holders' shares shrink nobody else's cut.
func (s *EarningsService) Distribute(ctx context.Context, companyID uuid.UUID, grossAmount int64, initiatorID uuid.UUID, adminIDs []uuid.UUID) (*DistributionResult, error) {
	var result DistributionResult
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		company, err := q.GetActiveCompany(ctx, companyID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCompanyNotFound
		}
		if err != nil {
			return fmt.Errorf("load company: %w", err)
		}
		if company.TreasuryBalance < grossAmount {
			return &models.InsufficientTreasuryError{
				Available: company.TreasuryBalance,
				Required:  grossAmount,
			}
		}

		perAdmin := domain.AdminFeePerAdmin(grossAmount)
		adminShare := perAdmin * int64(len(adminIDs))
		distributable := grossAmount - adminShare

		earnings, err := q.InsertEarnings(ctx, repository.InsertEarningsParams{
			ID:                  uuid.New(),
			CompanyID:           companyID,
			GrossAmount:         grossAmount,
			AdminShare:          adminShare,
			DistributableAmount: distributable,
			DistributedByID:     initiatorID,
		})
		if err != nil {
			return err
		}

		if perAdmin > 0 {
			for _, adminID := range adminIDs {
				if err := s.payOut(ctx, q, earnings, company.CreatedByID, adminID, perAdmin, domain.PayoutTypeAdmin,
					fmt.Sprintf("Admin fee from %s earnings", company.Name)); err != nil {
					return err
				}
			}
		}

		holders, err := q.ListEquityHolders(ctx, companyID)
		if err != nil {
			return err
		}
		var totalBps int32
		for _, h := range holders {
			totalBps += h.BasisPoints
		}

		for _, h := range holders {
			payout := domain.HolderPayout(h.BasisPoints, totalBps, distributable)
			eligible := h.CanReceivePayouts && !h.IsBanned
			if eligible && payout > 0 {
				if err := s.payOut(ctx, q, earnings, company.CreatedByID, h.UserID, payout, domain.PayoutTypeInvestor,
					fmt.Sprintf("%.2f%% share of %s earnings", float64(h.BasisPoints)/100, company.Name)); err != nil {
					return err
				}
				result.PaidToHolders += payout
				continue
			}
			// Withheld shares are recorded against no holder and leave
			// circulation. Zero shares of eligible holders still get an
			// audit row, but no balance credit or transaction.
			userID := &h.UserID
			payoutType := domain.PayoutTypeInvestor
			if !eligible {
				userID = nil
				payoutType = domain.PayoutTypeWithheld
			}
			if err := q.InsertPayout(ctx, repository.InsertPayoutParams{
				ID:         uuid.New(),
				EarningsID: earnings.ID,
				CompanyID:  companyID,
				UserID:     userID,
				Amount:     payout,
				PayoutType: payoutType,
			}); err != nil {
				return err
			}
			if !eligible {
				result.WithheldAmount += payout
			}
		}

		rows, err := q.DebitTreasury(ctx, companyID, grossAmount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &models.InsufficientTreasuryError{
				Available: company.TreasuryBalance,
				Required:  grossAmount,
			}
		}

		result.AdminShare = adminShare
		result.Distributable = distributable
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// payOut credits one recipient and records both the payout row and the
// matching earn transaction, attributed to the company creator.
func (s *EarningsService) payOut(ctx context.Context, q *repository.Queries, earnings *models.Earnings, creatorID, userID uuid.UUID, amount int64, payoutType, description string) error {
	rows, err := q.AddUserBalance(ctx, userID, amount)
	if err != nil {
		return err
	}
	if err := requireExactlyOne(rows, "credit payout recipient"); err != nil {
		return err
	}
	if err := q.InsertPayout(ctx, repository.InsertPayoutParams{
		ID:         uuid.New(),
		EarningsID: earnings.ID,
		CompanyID:  earnings.CompanyID,
		UserID:     &userID,
		Amount:     amount,
		PayoutType: payoutType,
	}); err != nil {
		return err
	}
	return q.InsertTransaction(ctx, repository.InsertTransactionParams{
		ID:          uuid.New(),
		FromUserID:  &creatorID,
		ToUserID:    userID,
		Amount:      amount,
		Type:        domain.TxTypeEarn,
		Description: description,
		CompanyID:   &earnings.CompanyID,
	})
}
