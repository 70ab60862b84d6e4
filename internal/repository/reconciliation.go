package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Invariant sweep queries used by the reconciliation worker. All of these
// must return empty/zero on a healthy ledger.

func (q *Queries) CountNegativeBalances(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE balance < 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count negative balances: %w", err)
	}
	return n, nil
}

func (q *Queries) CountNegativeTreasuries(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies WHERE treasury_balance < 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count negative treasuries: %w", err)
	}
	return n, nil
}

func (q *Queries) CountOverfundedCompanies(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE NOT is_deleted AND current_funding > funding_goal`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overfunded companies: %w", err)
	}
	return n, nil
}

func (q *Queries) CountOverallocatedCompanies(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE allocated_investor_bps > investor_pool_bps`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overallocated companies: %w", err)
	}
	return n, nil
}

// FundingDrift is an active company whose current funding disagrees with
// the sum of its invest transactions.
type FundingDrift struct {
	CompanyID      uuid.UUID
	CurrentFunding int64
	InvestedTotal  int64
}

// ListFundingDrift cross-checks company funding counters against the
// append-only transaction log. Refunds only happen on deletion, so for an
// active company the two must agree exactly.
func (q *Queries) ListFundingDrift(ctx context.Context) ([]FundingDrift, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.current_funding, COALESCE(SUM(t.amount), 0)::BIGINT
		FROM companies c
		LEFT JOIN transactions t ON t.company_id = c.id AND t.type = 'invest'
		WHERE NOT c.is_deleted
		GROUP BY c.id, c.current_funding
		HAVING c.current_funding != COALESCE(SUM(t.amount), 0)
	`)
	if err != nil {
		return nil, fmt.Errorf("list funding drift: %w", err)
	}
	defer rows.Close()

	var drift []FundingDrift
	for rows.Next() {
		var d FundingDrift
		if err := rows.Scan(&d.CompanyID, &d.CurrentFunding, &d.InvestedTotal); err != nil {
			return nil, fmt.Errorf("scan funding drift: %w", err)
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}
