package repository

import (
	"context"
	"fmt"

	"wagerbot/database"
	"wagerbot/models"
)

// Store is the PostgreSQL account store
type Store struct {
	db       *database.DB
	accounts *AccountRepository
}

func NewStore(db *database.DB) *Store {
	return &Store{
		db:       db,
		accounts: NewAccountRepository(db),
	}
}

func (s *Store) Get(ctx context.Context, userID int64) (*models.Account, error) {
	return s.accounts.GetByUserID(ctx, userID)
}

func (s *Store) Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (int64, bool, error) {
	return s.accounts.Increment(ctx, userID, delta, defaultBalance)
}

// Transfer moves amount inside one transaction holding row locks on both accounts
func (s *Store) Transfer(ctx context.Context, fromID, toID int64, amount int64, defaultBalance int64) (int64, int64, error) {
	uow := newUnitOfWork(s.db)
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, err
	}
	defer uow.Rollback()

	accounts := uow.Accounts()
	ids := []int64{fromID, toID}
	if toID < fromID {
		ids[0], ids[1] = toID, fromID
	}
	for _, id := range ids {
		if err := accounts.EnsureExists(ctx, id, defaultBalance); err != nil {
			return 0, 0, err
		}
	}

	balances, err := accounts.LockBalances(ctx, fromID, toID)
	if err != nil {
		return 0, 0, err
	}
	if balances[fromID] < amount {
		return 0, 0, fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, balances[fromID], amount)
	}

	fromBalance, err := accounts.AddBalance(ctx, fromID, -amount)
	if err != nil {
		return 0, 0, err
	}
	toBalance, err := accounts.AddBalance(ctx, toID, amount)
	if err != nil {
		return 0, 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, err
	}
	return fromBalance, toBalance, nil
}
