package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

const companyColumns = `id, name, description, category, funding_goal, current_funding, treasury_balance,
	investor_pool_bps, allocated_investor_bps, total_earnings_distributed, is_deleted, created_by_id, founded_at`

func scanCompany(row interface{ Scan(dest ...any) error }, c *models.Company) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.FundingGoal, &c.CurrentFunding,
		&c.TreasuryBalance, &c.InvestorPoolBps, &c.AllocatedInvestorBps, &c.TotalEarningsDistributed,
		&c.IsDeleted, &c.CreatedByID, &c.FoundedAt)
}

type InsertCompanyParams struct {
	ID              uuid.UUID
	Name            string
	Description     string
	Category        string
	FundingGoal     int64
	InvestorPoolBps int32
	CreatedByID     uuid.UUID
}

func (q *Queries) InsertCompany(ctx context.Context, arg InsertCompanyParams) (*models.Company, error) {
	query := `
		INSERT INTO companies (id, name, description, category, funding_goal, investor_pool_bps, created_by_id, founded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + companyColumns
	var c models.Company
	err := scanCompany(q.db.QueryRow(ctx, query,
		arg.ID, arg.Name, arg.Description, arg.Category, arg.FundingGoal, arg.InvestorPoolBps, arg.CreatedByID), &c)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return &c, nil
}

// GetActiveCompany loads a company that has not been soft-deleted.
func (q *Queries) GetActiveCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	err := scanCompany(q.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1 AND NOT is_deleted`, id), &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompaniesCreatedBy returns the live companies founded by a user,
// newest first.
func (q *Queries) ListCompaniesCreatedBy(ctx context.Context, userID uuid.UUID) ([]models.Company, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+companyColumns+` FROM companies
		WHERE created_by_id = $1 AND NOT is_deleted
		ORDER BY founded_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list companies created by %s: %w", userID, err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := scanCompany(rows, &c); err != nil {
			return nil, fmt.Errorf("scan created company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ListActiveCompanies returns all live companies with creator emails,
// newest first.
func (q *Queries) ListActiveCompanies(ctx context.Context) ([]models.CompanySummary, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.name, c.description, c.category, c.funding_goal, c.current_funding, c.treasury_balance,
			c.investor_pool_bps, c.allocated_investor_bps, c.total_earnings_distributed, c.is_deleted,
			c.created_by_id, c.founded_at, u.email
		FROM companies c
		JOIN users u ON u.id = c.created_by_id
		WHERE NOT c.is_deleted
		ORDER BY c.founded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.CompanySummary
	for rows.Next() {
		var c models.CompanySummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.FundingGoal, &c.CurrentFunding,
			&c.TreasuryBalance, &c.InvestorPoolBps, &c.AllocatedInvestorBps, &c.TotalEarningsDistributed,
			&c.IsDeleted, &c.CreatedByID, &c.FoundedAt, &c.CreatorEmail); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ApplyInvestment moves an investment's value into the company counters in
// one guarded statement: funding and treasury grow by the amount, the
// allocated pool grows by the granted basis points, and none of it applies
// unless the remaining funding headroom covers the amount and the grant
// fits the remaining investor pool. Returns rows updated: 0 means one of
// the caps would be exceeded (or the company is gone); the caller re-reads
// the row to tell which.
func (q *Queries) ApplyInvestment(ctx context.Context, companyID uuid.UUID, amount int64, grantBps int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE companies SET
			current_funding = current_funding + $1,
			treasury_balance = treasury_balance + $1,
			allocated_investor_bps = allocated_investor_bps + $2
		WHERE id = $3 AND NOT is_deleted
			AND funding_goal - current_funding >= $1
			AND allocated_investor_bps + $2 <= investor_pool_bps
	`, amount, grantBps, companyID)
	if err != nil {
		return 0, fmt.Errorf("apply investment to company %s: %w", companyID, err)
	}
	return tag.RowsAffected(), nil
}

// DebitTreasury deducts a distribution's gross amount from the treasury
// and tracks the cumulative total, guarded against overdraw.
func (q *Queries) DebitTreasury(ctx context.Context, companyID uuid.UUID, grossAmount int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE companies SET
			treasury_balance = treasury_balance - $1,
			total_earnings_distributed = total_earnings_distributed + $1
		WHERE id = $2 AND treasury_balance >= $1
	`, grossAmount, companyID)
	if err != nil {
		return 0, fmt.Errorf("debit treasury of company %s: %w", companyID, err)
	}
	return tag.RowsAffected(), nil
}

// MarkCompanyDeleted soft-deletes a company. History is never purged.
func (q *Queries) MarkCompanyDeleted(ctx context.Context, companyID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE companies SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`, companyID)
	if err != nil {
		return 0, fmt.Errorf("mark company %s deleted: %w", companyID, err)
	}
	return tag.RowsAffected(), nil
}
