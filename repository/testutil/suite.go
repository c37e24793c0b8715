// Package testutil holds helpers shared by the account store tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"wagerbot/models"
	"wagerbot/service"
)

const defaultBalance int64 = 10

// RunAccountStoreSuite checks the storage contract every store must satisfy.
// newStore must return an empty store.
func RunAccountStoreSuite(t *testing.T, newStore func(t *testing.T) service.AccountStore) {
	ctx := context.Background()

	t.Run("missing account", func(t *testing.T) {
		store := newStore(t)

		account, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("increment creates with default", func(t *testing.T) {
		store := newStore(t)

		balance, created, err := store.Increment(ctx, 1, 0, defaultBalance)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, defaultBalance, balance)

		balance, created, err = store.Increment(ctx, 1, 5, defaultBalance)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(15), balance)

		account, err := store.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(1), account.UserID)
		assert.Equal(t, int64(15), account.Balance)
	})

	t.Run("increment on absent account applies delta to default", func(t *testing.T) {
		store := newStore(t)

		balance, created, err := store.Increment(ctx, 2, -3, defaultBalance)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(7), balance)
	})

	t.Run("balance may go negative", func(t *testing.T) {
		store := newStore(t)

		balance, _, err := store.Increment(ctx, 3, -25, defaultBalance)
		require.NoError(t, err)
		assert.Equal(t, int64(-15), balance)
	})

	t.Run("round trip restores balance", func(t *testing.T) {
		store := newStore(t)
		var next int64 = 100

		rapid.Check(t, func(rt *rapid.T) {
			next++
			userID := next
			d := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "delta")

			start, _, err := store.Increment(ctx, userID, 0, defaultBalance)
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			if _, _, err := store.Increment(ctx, userID, d, defaultBalance); err != nil {
				rt.Fatalf("credit: %v", err)
			}
			end, _, err := store.Increment(ctx, userID, -d, defaultBalance)
			if err != nil {
				rt.Fatalf("debit: %v", err)
			}
			if end != start {
				rt.Fatalf("balance %d after round trip of %d, want %d", end, d, start)
			}
		})
	})

	t.Run("concurrent increments are atomic", func(t *testing.T) {
		store := newStore(t)
		_, _, err := store.Increment(ctx, 4, 0, defaultBalance)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := store.Increment(ctx, 4, 1, defaultBalance)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		account, err := store.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, defaultBalance+20, account.Balance)
	})

	t.Run("transfer moves funds", func(t *testing.T) {
		store := newStore(t)

		from, to, err := store.Transfer(ctx, 10, 11, 4, defaultBalance)
		require.NoError(t, err)
		assert.Equal(t, int64(6), from)
		assert.Equal(t, int64(14), to)
	})

	t.Run("transfer rejects overdraft without mutation", func(t *testing.T) {
		store := newStore(t)
		_, _, err := store.Increment(ctx, 20, 0, defaultBalance)
		require.NoError(t, err)

		_, _, err = store.Transfer(ctx, 20, 21, 11, defaultBalance)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)

		account, err := store.Get(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, defaultBalance, account.Balance)
	})

	t.Run("opposing transfers do not deadlock", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []int64{30, 31} {
			_, _, err := store.Increment(ctx, id, 90, defaultBalance)
			require.NoError(t, err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _, err := store.Transfer(ctx, 30, 31, 1, defaultBalance)
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, _, err := store.Transfer(ctx, 31, 30, 1, defaultBalance)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		a, err := store.Get(ctx, 30)
		require.NoError(t, err)
		b, err := store.Get(ctx, 31)
		require.NoError(t, err)
		assert.Equal(t, int64(100), a.Balance)
		assert.Equal(t, int64(100), b.Balance)
	})
}
