package service

import (
	"context"
	"testing"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustBalance(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewAdminService(store, 2000, 30000)

	admin := createTestUser(t, store, "admin@school.test", 30000, true)
	user := createTestUser(t, store, "student@school.test", 2000, false)

	require.NoError(t, svc.AdjustBalance(ctx, user.ID, 500, "Prize", admin.ID))
	assert.Equal(t, int64(2500), userBalance(t, pool, user.ID))

	require.NoError(t, svc.AdjustBalance(ctx, user.ID, -700, "Fine", admin.ID))
	assert.Equal(t, int64(1800), userBalance(t, pool, user.ID))
}

func TestAdjustBalanceWouldGoNegative(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewAdminService(store, 2000, 30000)

	admin := createTestUser(t, store, "admin@school.test", 30000, true)
	user := createTestUser(t, store, "student@school.test", 100, false)

	err := svc.AdjustBalance(ctx, user.ID, -101, "Fine", admin.ID)
	require.ErrorIs(t, err, models.ErrWouldGoNegative)
	assert.Equal(t, int64(100), userBalance(t, pool, user.ID))
}

func TestAdjustBalanceUserNotFound(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	admin := createTestUser(t, store, "admin@school.test", 30000, true)

	err := NewAdminService(store, 2000, 30000).AdjustBalance(context.Background(), uuid.New(), 10, "Prize", admin.ID)
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSetAdminResetsBalance(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewAdminService(store, 2000, 30000)

	user := createTestUser(t, store, "student@school.test", 123, false)

	require.NoError(t, svc.SetAdmin(ctx, user.ID, true))
	assert.Equal(t, int64(30000), userBalance(t, pool, user.ID))

	require.NoError(t, svc.SetAdmin(ctx, user.ID, false))
	assert.Equal(t, int64(2000), userBalance(t, pool, user.ID))
}

func TestSetBannedFlipsPayoutEligibility(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewAdminService(store, 2000, 30000)
	investSvc := NewInvestmentService(store)

	creator := createTestUser(t, store, "founder@school.test", 2000, false)
	investor := createTestUser(t, store, "investor@school.test", 2000, false)
	company := createTestCompany(t, store, creator, 10000, 5000)

	_, err := investSvc.Invest(ctx, company.ID, investor.ID, 1000)
	require.NoError(t, err)

	require.NoError(t, svc.SetBanned(ctx, investor.ID, true))

	holders, err := store.Queries().ListEquityHolders(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, holders, 1)
	assert.True(t, holders[0].IsBanned)
	assert.False(t, holders[0].CanReceivePayouts)

	require.NoError(t, svc.SetBanned(ctx, investor.ID, false))

	holders, err = store.Queries().ListEquityHolders(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, holders[0].CanReceivePayouts)
}

func TestActiveAdminIDsExcludesBanned(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewAdminService(store, 2000, 30000)

	adminA := createTestUser(t, store, "a.admin@school.test", 30000, true)
	adminB := createTestUser(t, store, "b.admin@school.test", 30000, true)
	createTestUser(t, store, "student@school.test", 2000, false)

	require.NoError(t, svc.SetBanned(ctx, adminB.ID, true))

	ids, err := svc.ActiveAdminIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, adminA.ID, ids[0])
}
