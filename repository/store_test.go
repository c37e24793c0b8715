package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagerbot/repository/testutil"
	"wagerbot/service"
)

func TestStore_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.RunAccountStoreSuite(t, func(t *testing.T) service.AccountStore {
		_, err := testDB.DB.Exec(ctx, "TRUNCATE accounts")
		require.NoError(t, err)
		return NewStore(testDB.DB)
	})
}

func TestAccountRepository_LockBalancesSkipsMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewAccountRepository(testDB.DB)

	require.NoError(t, repo.EnsureExists(ctx, 1, 10))
	require.NoError(t, repo.EnsureExists(ctx, 1, 99))

	uow := newUnitOfWork(testDB.DB)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	balances, err := uow.Accounts().LockBalances(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 10}, balances)
	require.NoError(t, uow.Commit())
}
