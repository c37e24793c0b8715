package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wagerbot/database"
	"wagerbot/models"
)

// queryable is satisfied by both the pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository reads and writes rows of the accounts table
type AccountRepository struct {
	q queryable
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID returns the account or nil when it does not exist
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}

	return &account, nil
}

// Increment adds delta in one statement, inserting defaultBalance+delta for a new account
func (r *AccountRepository) Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (int64, bool, error) {
	// xmax is zero only for a freshly inserted tuple
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = accounts.balance + $3,
		    updated_at = NOW()
		RETURNING balance, (xmax = 0) AS inserted
	`

	var balance int64
	var inserted bool
	err := r.q.QueryRow(ctx, query, userID, defaultBalance+delta, delta).Scan(&balance, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment account %d: %w", userID, err)
	}

	return balance, inserted, nil
}

// EnsureExists creates the account with defaultBalance if it is missing
func (r *AccountRepository) EnsureExists(ctx context.Context, userID int64, defaultBalance int64) error {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID, defaultBalance); err != nil {
		return fmt.Errorf("failed to ensure account %d: %w", userID, err)
	}
	return nil
}

// LockBalances row-locks the given accounts in ascending user id order and returns their balances
func (r *AccountRepository) LockBalances(ctx context.Context, userIDs ...int64) (map[int64]int64, error) {
	query := `
		SELECT user_id, balance
		FROM accounts
		WHERE user_id = ANY($1)
		ORDER BY user_id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	balances := make(map[int64]int64, len(userIDs))
	for rows.Next() {
		var userID, balance int64
		if err := rows.Scan(&userID, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		balances[userID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return balances, nil
}

// AddBalance applies delta to an existing account and returns the new balance
func (r *AccountRepository) AddBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, userID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("account %d not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update balance for %d: %w", userID, err)
	}

	return balance, nil
}
