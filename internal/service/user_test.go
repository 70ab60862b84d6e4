package service

import (
	"context"
	"testing"

	"github.com/astraschool/astra-platform/internal/domain"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewUserService(store, 2000)

	user, err := svc.Register(ctx, "newkid@school.test", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), user.Balance)
	assert.False(t, user.IsAdmin)

	authed, err := svc.Authenticate(ctx, "newkid@school.test", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "newkid@school.test", "wrong password")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "stranger@school.test", "correct horse battery")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewUserService(store, 2000)

	_, err := svc.Register(ctx, "newkid@school.test", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "newkid@school.test", "another password")
	require.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestHistoryRecordsBothSides(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	users := NewUserService(store, 2000)
	transfers := NewTransferService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)

	require.NoError(t, transfers.Send(ctx, alice.ID, bob.ID, 250, "lunch"))

	aliceHistory, err := users.History(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, aliceHistory, 1)
	assert.Equal(t, int64(250), aliceHistory[0].Amount)

	bobHistory, err := users.History(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, bobHistory, 1)
}

func TestProfileAggregates(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	users := NewUserService(store, 2000)
	friends := NewFriendService(store)
	transfers := NewTransferService(store)
	investments := NewInvestmentService(store)

	target := createTestUser(t, store, "target@school.test", 2000, false)
	viewer := createTestUser(t, store, "viewer@school.test", 2000, false)
	pal := createTestUser(t, store, "pal@school.test", 2000, false)

	founded := createTestCompany(t, store, target, 10000, 5000)
	palCo := createTestCompany(t, store, pal, 10000, 5000)

	// Target holds equity in pal's company and has two ledger entries.
	_, err := investments.Invest(ctx, palCo.ID, target.ID, 1000)
	require.NoError(t, err)
	require.NoError(t, transfers.Send(ctx, pal.ID, target.ID, 100, "snacks"))

	// Pal is an accepted friend; the viewer's request is still pending.
	require.NoError(t, friends.Add(ctx, pal.ID, target.Email))
	require.NoError(t, friends.Respond(ctx, target.ID, pal.ID, true))
	require.NoError(t, friends.Add(ctx, viewer.ID, target.Email))

	profile, err := users.Profile(ctx, target.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Email, profile.Email)
	require.NotNil(t, profile.FriendshipStatus)
	assert.Equal(t, domain.FriendshipPending, *profile.FriendshipStatus)
	assert.True(t, profile.RequestedByViewer)

	// Only accepted friendships count as friends.
	require.Len(t, profile.Friends, 1)
	assert.Equal(t, pal.Email, profile.Friends[0].Email)

	require.Len(t, profile.RecentTransactions, 2)
	require.Len(t, profile.Equity, 1)
	assert.Equal(t, palCo.Name, profile.Equity[0].CompanyName)
	require.Len(t, profile.CreatedCompanies, 1)
	assert.Equal(t, founded.ID, profile.CreatedCompanies[0].ID)
}

func TestProfileOmitsFriendshipForSelf(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	users := NewUserService(store, 2000)
	target := createTestUser(t, store, "target@school.test", 2000, false)

	profile, err := users.Profile(ctx, target.ID, target.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.FriendshipStatus)
	assert.False(t, profile.RequestedByViewer)
}

func TestProfileHiddenForBannedOrUnknownUser(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	users := NewUserService(store, 2000)
	admins := NewAdminService(store, 2000, 30000)

	viewer := createTestUser(t, store, "viewer@school.test", 2000, false)
	banned := createTestUser(t, store, "banned@school.test", 2000, false)
	require.NoError(t, admins.SetBanned(ctx, banned.ID, true))

	_, err := users.Profile(ctx, banned.ID, viewer.ID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = users.Profile(ctx, uuid.New(), viewer.ID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
