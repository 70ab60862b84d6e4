package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

type InsertInvestmentParams struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	UserID              uuid.UUID
	Amount              int64
	BasisPointsReceived int32
}

// InsertInvestment writes the per-event audit record behind an equity
// grant. The aggregated allocation lives in company_equity_allocations.
func (q *Queries) InsertInvestment(ctx context.Context, arg InsertInvestmentParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO company_investments (id, company_id, user_id, amount, basis_points_received, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, arg.ID, arg.CompanyID, arg.UserID, arg.Amount, arg.BasisPointsReceived)
	if err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

func (q *Queries) ListCompanyInvestments(ctx context.Context, companyID uuid.UUID) ([]models.Investment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, company_id, user_id, amount, basis_points_received, created_at
		FROM company_investments
		WHERE company_id = $1
		ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list investments for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.UserID, &inv.Amount, &inv.BasisPointsReceived, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}
