package service

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/observability"
	"go.uber.org/zap"
)

// ReconciliationService sweeps the store for broken ledger invariants.
// A healthy system never trips any of these; the guarded updates and
// schema checks enforce them at write time. The sweep exists to catch
// drift introduced outside the engines, and it never repairs anything.
type ReconciliationService struct {
	store QueryStore
}

func NewReconciliationService(store QueryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run executes every invariant check once and reports violations through
// logs and metrics.
func (s *ReconciliationService) Run(ctx context.Context) error {
	queries := s.store.Queries()
	violations := 0

	counts := []struct {
		invariant string
		check     func(context.Context) (int64, error)
	}{
		{"negative_balance", queries.CountNegativeBalances},
		{"negative_treasury", queries.CountNegativeTreasuries},
		{"funding_over_goal", queries.CountOverfundedCompanies},
		{"pool_overallocated", queries.CountOverallocatedCompanies},
	}
	for _, c := range counts {
		n, err := c.check(ctx)
		if err != nil {
			return fmt.Errorf("run invariant check %s: %w", c.invariant, err)
		}
		if n > 0 {
			violations++
			observability.IncrementInvariantViolation(c.invariant)
			zap.L().Error("CRITICAL: ledger invariant violated",
				zap.String("invariant", c.invariant),
				zap.Int64("rows", n))
		}
	}

	drift, err := queries.ListFundingDrift(ctx)
	if err != nil {
		return fmt.Errorf("run funding drift check: %w", err)
	}
	for _, d := range drift {
		violations++
		observability.IncrementInvariantViolation("funding_drift")
		zap.L().Error("CRITICAL: company funding disagrees with invest transactions",
			zap.String("company_id", d.CompanyID.String()),
			zap.Int64("current_funding", d.CurrentFunding),
			zap.Int64("invested_total", d.InvestedTotal))
	}

	if violations == 0 {
		zap.L().Info("ledger invariants hold")
	}
	return nil
}
