package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

type InsertTransactionParams struct {
	ID          uuid.UUID
	FromUserID  *uuid.UUID
	ToUserID    uuid.UUID
	Amount      int64
	Type        string
	Description string
	CompanyID   *uuid.UUID
}

// InsertTransaction appends one immutable ledger record. It is always the
// last write of the movement's transaction scope, so the record exists
// only if the movement committed.
func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO transactions (id, from_user_id, to_user_id, amount, type, description, company_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, arg.ID, arg.FromUserID, arg.ToUserID, arg.Amount, arg.Type, arg.Description, arg.CompanyID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListUserTransactions returns a user's history, newest first, with the
// sent/received direction and counterpart derived relative to the user.
func (q *Queries) ListUserTransactions(ctx context.Context, userID uuid.UUID, limit int32) ([]models.UserTransaction, error) {
	rows, err := q.db.Query(ctx, `
		SELECT
			t.id, t.from_user_id, t.to_user_id, t.amount, t.type, t.description, t.company_id, t.created_at,
			CASE WHEN t.from_user_id = $1 THEN 'sent' ELSE 'received' END AS direction,
			COALESCE(u.email, 'Unknown') AS counterpart_email,
			COALESCE(u.is_admin, FALSE) AS counterpart_is_admin
		FROM transactions t
		LEFT JOIN users u ON u.id = CASE WHEN t.from_user_id = $1 THEN t.to_user_id ELSE t.from_user_id END
		WHERE t.from_user_id = $1 OR t.to_user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txs []models.UserTransaction
	for rows.Next() {
		var t models.UserTransaction
		if err := rows.Scan(
			&t.ID, &t.FromUserID, &t.ToUserID, &t.Amount, &t.Type, &t.Description, &t.CompanyID, &t.CreatedAt,
			&t.Direction, &t.CounterpartEmail, &t.CounterpartIsAdmin,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// InvestorTotal is one investor's cumulative invested amount in a company.
type InvestorTotal struct {
	UserID uuid.UUID
	Total  int64
}

// ListCompanyInvestorTotals groups a company's invest transactions by
// investor. Used to compute refunds when a company is deleted.
func (q *Queries) ListCompanyInvestorTotals(ctx context.Context, companyID uuid.UUID) ([]InvestorTotal, error) {
	rows, err := q.db.Query(ctx, `
		SELECT from_user_id, SUM(amount)::BIGINT
		FROM transactions
		WHERE company_id = $1 AND type = 'invest' AND from_user_id IS NOT NULL
		GROUP BY from_user_id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list investor totals for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var totals []InvestorTotal
	for rows.Next() {
		var t InvestorTotal
		if err := rows.Scan(&t.UserID, &t.Total); err != nil {
			return nil, fmt.Errorf("scan investor total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
