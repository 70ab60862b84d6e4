package service

import (
	"context"
	"sync"
	"testing"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMovesFullBalance(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewTransferService(store)

	alice := createTestUser(t, store, "alice@school.test", 500, false)
	bob := createTestUser(t, store, "bob@school.test", 0, false)

	require.NoError(t, svc.Send(ctx, alice.ID, bob.ID, 500, "lunch money"))

	assert.Equal(t, int64(0), userBalance(t, pool, alice.ID))
	assert.Equal(t, int64(500), userBalance(t, pool, bob.ID))

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_user_id = $1 AND type = 'transfer'`, alice.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Alice is broke now; any further send must fail without side effects.
	err = svc.Send(ctx, alice.ID, bob.ID, 1, "one more")
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Equal(t, int64(0), userBalance(t, pool, alice.ID))
	assert.Equal(t, int64(500), userBalance(t, pool, bob.ID))
}

func TestSendRecipientNotFound(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	svc := NewTransferService(store)
	alice := createTestUser(t, store, "alice@school.test", 500, false)

	err := svc.Send(context.Background(), alice.ID, uuid.New(), 100, "to nobody")
	assert.ErrorIs(t, err, models.ErrRecipientNotFound)
	assert.Equal(t, int64(500), userBalance(t, pool, alice.ID))
}

func TestSendConservation(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewTransferService(store)

	alice := createTestUser(t, store, "alice@school.test", 700, false)
	bob := createTestUser(t, store, "bob@school.test", 200, false)
	carol := createTestUser(t, store, "carol@school.test", 100, false)

	require.NoError(t, svc.Send(ctx, alice.ID, bob.ID, 300, ""))
	require.NoError(t, svc.Send(ctx, bob.ID, carol.ID, 450, ""))
	require.NoError(t, svc.Send(ctx, carol.ID, alice.ID, 500, ""))

	var total int64
	err := pool.QueryRow(ctx, `SELECT SUM(balance) FROM users`).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)
}

// Two concurrent transfers that together exceed the sender's balance:
// exactly one must commit.
func TestSendContention(t *testing.T) {
	pool, store := setupTestStore(t)
	defer pool.Close()

	ctx := context.Background()
	svc := NewTransferService(store)

	alice := createTestUser(t, store, "alice@school.test", 100, false)
	bob := createTestUser(t, store, "bob@school.test", 0, false)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- svc.Send(ctx, alice.ID, bob.ID, 60, "race")
		}()
	}
	wg.Wait()
	close(errCh)

	var successes, insufficient int
	for err := range errCh {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, models.ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(40), userBalance(t, pool, alice.ID))
	assert.Equal(t, int64(60), userBalance(t, pool, bob.ID))
}
