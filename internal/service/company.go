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
	"go.uber.org/zap"
)

// CompanyService owns the company lifecycle: creation with a validated
// cap table, soft-deletion with investor refunds, and read access. The
// caller resolves the current admin set and passes it in, so the engine
// never reads ambient role state.
type CompanyService struct {
	store QueryStore

	// strictFounderEmails aborts creation when a founder allocation email
	// matches no account. When false the allocation is skipped and logged.
	strictFounderEmails bool
}

func NewCompanyService(store QueryStore, strictFounderEmails bool) *CompanyService {
	return &CompanyService{store: store, strictFounderEmails: strictFounderEmails}
}

// FounderAllocation names one founder or team member's slice of the cap
// table, resolved by account email at creation time.
type FounderAllocation struct {
	Email       string
	BasisPoints int32
}

type CreateCompanyParams struct {
	Name               string
	Description        string
	Category           string
	FundingGoal        int64
	InvestorPoolBps    int32
	FounderAllocations []FounderAllocation
	AdminIDs           []uuid.UUID
	CreatedByID        uuid.UUID
}

// Create validates the cap table and persists the company with its initial
// equity allocations in one transaction. Every admin in params.AdminIDs
// receives a fixed 150 bps grant on top of the named founder allocations.
func (s *CompanyService) Create(ctx context.Context, params CreateCompanyParams) (*models.Company, error) {
	founderBps := make([]int32, 0, len(params.FounderAllocations))
	for _, alloc := range params.FounderAllocations {
		founderBps = append(founderBps, alloc.BasisPoints)
	}
	if !domain.ValidateCapTable(founderBps, params.InvestorPoolBps, len(params.AdminIDs)) {
		return nil, models.ErrEquityOverallocated
	}

	var company *models.Company
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		var err error
		company, err = q.InsertCompany(ctx, repository.InsertCompanyParams{
			ID:              uuid.New(),
			Name:            params.Name,
			Description:     params.Description,
			Category:        params.Category,
			FundingGoal:     params.FundingGoal,
			InvestorPoolBps: params.InvestorPoolBps,
			CreatedByID:     params.CreatedByID,
		})
		if err != nil {
			return err
		}

		for _, adminID := range params.AdminIDs {
			if err := q.UpsertEquityAllocation(ctx, company.ID, adminID, domain.AdminEquityBps); err != nil {
				return err
			}
		}

		for _, alloc := range params.FounderAllocations {
			founder, err := q.GetUserByEmail(ctx, alloc.Email)
			if errors.Is(err, pgx.ErrNoRows) {
				if s.strictFounderEmails {
					return fmt.Errorf("%w: %s", models.ErrUnknownFounderEmail, alloc.Email)
				}
				zap.L().Warn("skipping founder allocation for unknown email",
					zap.String("email", alloc.Email),
					zap.Int32("basis_points", alloc.BasisPoints))
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve founder email: %w", err)
			}
			if err := q.UpsertEquityAllocation(ctx, company.ID, founder.ID, alloc.BasisPoints); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteResult reports what a soft-deletion refunded.
type DeleteResult struct {
	RefundedInvestors int   `json:"refunded_investors"`
	TotalRefunded     int64 `json:"total_refunded"`
}

// Delete soft-deletes a company and unwinds its investments: every
// investor is credited their cumulative invested amount, and the creator
// is debited by the sum refunded to investors other than themselves. The
// creator's own investment comes straight back to them in the refund loop,
// so only refunds paid to other people are net liability. The creator
// debit is guarded; if they cannot cover it, nothing is applied.
func (s *CompanyService) Delete(ctx context.Context, companyID uuid.UUID) (*DeleteResult, error) {
	var result DeleteResult
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		company, err := q.GetActiveCompany(ctx, companyID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrCompanyNotFound
		}
		if err != nil {
			return fmt.Errorf("load company: %w", err)
		}

		totals, err := q.ListCompanyInvestorTotals(ctx, companyID)
		if err != nil {
			return err
		}

		var creatorLiability int64
		for _, t := range totals {
			rows, err := q.AddUserBalance(ctx, t.UserID, t.Total)
			if err != nil {
				return err
			}
			if err := requireExactlyOne(rows, "refund investor"); err != nil {
				return err
			}
			investorID := t.UserID
			if err := q.InsertTransaction(ctx, repository.InsertTransactionParams{
				ID:          uuid.New(),
				FromUserID:  &company.CreatedByID,
				ToUserID:    investorID,
				Amount:      t.Total,
				Type:        domain.TxTypeRefund,
				Description: fmt.Sprintf("Refund for deleted company %s", company.Name),
				CompanyID:   &company.ID,
			}); err != nil {
				return err
			}
			result.RefundedInvestors++
			result.TotalRefunded += t.Total
			if investorID != company.CreatedByID {
				creatorLiability += t.Total
			}
		}

		if creatorLiability > 0 {
			rows, err := q.DeductUserBalance(ctx, company.CreatedByID, creatorLiability)
			if err != nil {
				return err
			}
			if rows == 0 {
				return models.ErrInsufficientBalance
			}
		}

		rows, err := q.MarkCompanyDeleted(ctx, companyID)
		if err != nil {
			return err
		}
		return requireExactlyOne(rows, "mark company deleted")
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get loads one active company.
func (s *CompanyService) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	company, err := s.store.Queries().GetActiveCompany(ctx, companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCompanyNotFound
	}
	return company, err
}

func (s *CompanyService) List(ctx context.Context) ([]models.CompanySummary, error) {
	return s.store.Queries().ListActiveCompanies(ctx)
}

func (s *CompanyService) Equity(ctx context.Context, companyID uuid.UUID) ([]models.CompanyEquity, error) {
	return s.store.Queries().ListCompanyEquity(ctx, companyID)
}

func (s *CompanyService) Investments(ctx context.Context, companyID uuid.UUID) ([]models.Investment, error) {
	return s.store.Queries().ListCompanyInvestments(ctx, companyID)
}

func (s *CompanyService) Payouts(ctx context.Context, companyID uuid.UUID) ([]models.CompanyPayout, error) {
	return s.store.Queries().ListCompanyPayouts(ctx, companyID)
}
