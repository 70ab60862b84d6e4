package service

import (
	"context"
	"os"
	"testing"

	"github.com/astraschool/astra-platform/internal/db"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestStore connects to the integration Postgres instance, applies
// migrations and truncates all tables. Tests are skipped entirely when no
// DATABASE_URL is configured.
func setupTestStore(t *testing.T) (*pgxpool.Pool, *repository.Store) {
	t.Helper()

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	require.NoError(t, db.Migrate(connString))

	pool, err := pgxpool.New(context.Background(), connString)
	require.NoError(t, err, "connect to test database")

	_, err = pool.Exec(context.Background(), `
		TRUNCATE TABLE idempotency_keys, company_payouts, company_earnings,
			company_investments, company_equity_allocations, transactions,
			companies, friendships, users CASCADE
	`)
	require.NoError(t, err, "truncate tables")

	return pool, repository.NewStore(pool)
}

func createTestUser(t *testing.T, store *repository.Store, email string, balance int64, isAdmin bool) *models.User {
	t.Helper()

	user, err := store.Queries().CreateUser(context.Background(), repository.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$test-hash-not-checked-here",
		Balance:      balance,
		IsAdmin:      isAdmin,
	})
	require.NoError(t, err)
	return user
}

func userBalance(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := pool.QueryRow(context.Background(),
		`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// createTestCompany persists a company through the lifecycle engine with
// no founder allocations and no admin grants.
func createTestCompany(t *testing.T, store *repository.Store, creator *models.User, fundingGoal int64, investorPoolBps int32) *models.Company {
	t.Helper()

	svc := NewCompanyService(store, true)
	company, err := svc.Create(context.Background(), CreateCompanyParams{
		Name:            "Test Company",
		Description:     "integration fixture",
		Category:        "services",
		FundingGoal:     fundingGoal,
		InvestorPoolBps: investorPoolBps,
		CreatedByID:     creator.ID,
	})
	require.NoError(t, err)
	return company
}
