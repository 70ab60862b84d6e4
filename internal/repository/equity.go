package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

// UpsertEquityAllocation adds basis points to a holder's allocation,
// creating the row on first grant. Repeat investors accumulate equity in a
// single row per (company, holder) pair.
func (q *Queries) UpsertEquityAllocation(ctx context.Context, companyID, userID uuid.UUID, bps int32) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO company_equity_allocations (id, company_id, user_id, basis_points, can_receive_payouts, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (company_id, user_id)
		DO UPDATE SET basis_points = company_equity_allocations.basis_points + EXCLUDED.basis_points
	`, uuid.New(), companyID, userID, bps)
	if err != nil {
		return fmt.Errorf("upsert equity allocation for company %s user %s: %w", companyID, userID, err)
	}
	return nil
}

// EquityHolder is an allocation joined with the holder's ban state, which
// the distribution engine must honor alongside the eligibility flag.
type EquityHolder struct {
	models.EquityAllocation
	IsBanned bool
}

// ListEquityHolders returns every allocation for a company, including
// ineligible holders. The distribution denominator is total issued equity.
func (q *Queries) ListEquityHolders(ctx context.Context, companyID uuid.UUID) ([]EquityHolder, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.company_id, a.user_id, a.basis_points, a.can_receive_payouts, a.created_at, u.is_banned
		FROM company_equity_allocations a
		JOIN users u ON u.id = a.user_id
		WHERE a.company_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list equity holders for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var holders []EquityHolder
	for rows.Next() {
		var h EquityHolder
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.UserID, &h.BasisPoints, &h.CanReceivePayouts, &h.CreatedAt, &h.IsBanned); err != nil {
			return nil, fmt.Errorf("scan equity holder: %w", err)
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}

// ListCompanyEquity returns a company's cap table with holder emails,
// largest stakes first.
func (q *Queries) ListCompanyEquity(ctx context.Context, companyID uuid.UUID) ([]models.CompanyEquity, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.company_id, a.user_id, a.basis_points, a.can_receive_payouts, a.created_at, u.email
		FROM company_equity_allocations a
		JOIN users u ON u.id = a.user_id
		WHERE a.company_id = $1
		ORDER BY a.basis_points DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list equity for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var equity []models.CompanyEquity
	for rows.Next() {
		var e models.CompanyEquity
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.BasisPoints, &e.CanReceivePayouts, &e.CreatedAt, &e.UserEmail); err != nil {
			return nil, fmt.Errorf("scan company equity: %w", err)
		}
		equity = append(equity, e)
	}
	return equity, rows.Err()
}

// ListUserEquity returns a user's holdings across active companies.
func (q *Queries) ListUserEquity(ctx context.Context, userID uuid.UUID) ([]models.UserEquity, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.company_id, a.user_id, a.basis_points, a.can_receive_payouts, a.created_at, c.name
		FROM company_equity_allocations a
		JOIN companies c ON c.id = a.company_id
		WHERE a.user_id = $1 AND NOT c.is_deleted
		ORDER BY a.basis_points DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list equity for user %s: %w", userID, err)
	}
	defer rows.Close()

	var equity []models.UserEquity
	for rows.Next() {
		var e models.UserEquity
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.BasisPoints, &e.CanReceivePayouts, &e.CreatedAt, &e.CompanyName); err != nil {
			return nil, fmt.Errorf("scan user equity: %w", err)
		}
		equity = append(equity, e)
	}
	return equity, rows.Err()
}

// SetHolderPayoutEligibility flips the eligibility flag on every
// allocation a user holds. Triggered by ban state changes.
func (q *Queries) SetHolderPayoutEligibility(ctx context.Context, userID uuid.UUID, eligible bool) error {
	_, err := q.db.Exec(ctx,
		`UPDATE company_equity_allocations SET can_receive_payouts = $1 WHERE user_id = $2`, eligible, userID)
	if err != nil {
		return fmt.Errorf("set payout eligibility for user %s: %w", userID, err)
	}
	return nil
}
