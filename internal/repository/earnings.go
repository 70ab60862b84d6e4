package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

type InsertEarningsParams struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	GrossAmount         int64
	AdminShare          int64
	DistributableAmount int64
	DistributedByID     uuid.UUID
}

func (q *Queries) InsertEarnings(ctx context.Context, arg InsertEarningsParams) (*models.Earnings, error) {
	var e models.Earnings
	err := q.db.QueryRow(ctx, `
		INSERT INTO company_earnings (id, company_id, gross_amount, admin_share, distributable_amount, distributed_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, company_id, gross_amount, admin_share, distributable_amount, distributed_by_id, created_at
	`, arg.ID, arg.CompanyID, arg.GrossAmount, arg.AdminShare, arg.DistributableAmount, arg.DistributedByID).
		Scan(&e.ID, &e.CompanyID, &e.GrossAmount, &e.AdminShare, &e.DistributableAmount, &e.DistributedByID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert earnings: %w", err)
	}
	return &e, nil
}

type InsertPayoutParams struct {
	ID         uuid.UUID
	EarningsID uuid.UUID
	CompanyID  uuid.UUID
	UserID     *uuid.UUID // nil when withheld
	Amount     int64
	PayoutType string
}

func (q *Queries) InsertPayout(ctx context.Context, arg InsertPayoutParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO company_payouts (id, earnings_id, company_id, user_id, amount, payout_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, arg.ID, arg.EarningsID, arg.CompanyID, arg.UserID, arg.Amount, arg.PayoutType)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// ListCompanyPayouts returns a company's payout history, newest first.
// Withheld rows carry a NULL holder.
func (q *Queries) ListCompanyPayouts(ctx context.Context, companyID uuid.UUID) ([]models.CompanyPayout, error) {
	rows, err := q.db.Query(ctx, `
		SELECT p.id, p.earnings_id, p.company_id, p.user_id, p.amount, p.payout_type, p.created_at,
			u.email, e.created_at
		FROM company_payouts p
		LEFT JOIN users u ON u.id = p.user_id
		JOIN company_earnings e ON e.id = p.earnings_id
		WHERE p.company_id = $1
		ORDER BY p.created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list payouts for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var payouts []models.CompanyPayout
	for rows.Next() {
		var p models.CompanyPayout
		if err := rows.Scan(&p.ID, &p.EarningsID, &p.CompanyID, &p.UserID, &p.Amount, &p.PayoutType, &p.CreatedAt,
			&p.UserEmail, &p.EarningsDate); err != nil {
			return nil, fmt.Errorf("scan company payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// ListUserPayouts returns payouts a user received across active companies.
func (q *Queries) ListUserPayouts(ctx context.Context, userID uuid.UUID) ([]models.UserPayout, error) {
	rows, err := q.db.Query(ctx, `
		SELECT p.id, p.earnings_id, p.company_id, p.user_id, p.amount, p.payout_type, p.created_at,
			c.name, e.created_at
		FROM company_payouts p
		JOIN companies c ON c.id = p.company_id
		JOIN company_earnings e ON e.id = p.earnings_id
		WHERE p.user_id = $1 AND NOT c.is_deleted
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payouts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var payouts []models.UserPayout
	for rows.Next() {
		var p models.UserPayout
		if err := rows.Scan(&p.ID, &p.EarningsID, &p.CompanyID, &p.UserID, &p.Amount, &p.PayoutType, &p.CreatedAt,
			&p.CompanyName, &p.EarningsDate); err != nil {
			return nil, fmt.Errorf("scan user payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
