package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wagerbot/database"
)

// unitOfWork scopes repositories to one transaction
type unitOfWork struct {
	db       *database.DB
	tx       pgx.Tx
	ctx      context.Context
	accounts *AccountRepository
}

func newUnitOfWork(db *database.DB) *unitOfWork {
	return &unitOfWork{db: db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx
	u.accounts = newAccountRepositoryWithTx(tx)
	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// Rollback is a no-op after Commit
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Accounts returns the account repository bound to the transaction
func (u *unitOfWork) Accounts() *AccountRepository {
	if u.accounts == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accounts
}
