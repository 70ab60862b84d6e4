package service

import (
	"context"
	"testing"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestLifecycle(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewFriendService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)

	require.NoError(t, svc.Add(ctx, alice.ID, bob.Email))

	friends, err := svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends, "pending request is not a friendship")

	requests, err := svc.Requests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	require.NoError(t, svc.Respond(ctx, bob.ID, alice.ID, true))

	friends, err = svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	// Symmetric regardless of who sent the request.
	friends, err = svc.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestFriendRequestRejected(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewFriendService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)

	require.NoError(t, svc.Add(ctx, alice.ID, bob.Email))
	require.NoError(t, svc.Respond(ctx, bob.ID, alice.ID, false))

	friends, err := svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestFriendAddValidation(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewFriendService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)

	require.ErrorIs(t, svc.Add(ctx, alice.ID, "nobody@school.test"), models.ErrUserNotFound)
	require.ErrorIs(t, svc.Add(ctx, alice.ID, alice.Email), models.ErrSelfFriendship)

	require.NoError(t, svc.Add(ctx, alice.ID, bob.Email))
	require.ErrorIs(t, svc.Add(ctx, alice.ID, bob.Email), models.ErrFriendshipExists)
	// Duplicate in the other direction is also rejected.
	require.ErrorIs(t, svc.Add(ctx, bob.ID, alice.Email), models.ErrFriendshipExists)
}

func TestFriendRespondOnlyRecipient(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewFriendService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)

	require.NoError(t, svc.Add(ctx, alice.ID, bob.Email))

	// The sender cannot accept their own request.
	err := svc.Respond(ctx, alice.ID, bob.ID, true)
	require.ErrorIs(t, err, models.ErrFriendRequestNotFound)

	err = svc.Respond(ctx, bob.ID, uuid.New(), true)
	require.ErrorIs(t, err, models.ErrFriendRequestNotFound)
}

func TestRecommendedExcludesFriendsAndSelf(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewFriendService(store)

	alice := createTestUser(t, store, "alice@school.test", 2000, false)
	bob := createTestUser(t, store, "bob@school.test", 2000, false)
	carol := createTestUser(t, store, "carol@school.test", 2000, false)

	require.NoError(t, svc.Add(ctx, alice.ID, bob.Email))
	require.NoError(t, svc.Respond(ctx, bob.ID, alice.ID, true))

	recommended, err := svc.Recommended(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, carol.ID, recommended[0].ID)
}
