// Package sqlite provides a SQLite-backed account store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"wagerbot/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    user_id    INTEGER PRIMARY KEY,
    balance    INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
)`

// Store persists balances in a single SQLite file. All writes go through
// one connection, so each transaction is serialized.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates the schema
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, userID int64) (*models.Account, error) {
	var account models.Account
	var createdAt, updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, balance, created_at, updated_at FROM accounts WHERE user_id = ?`,
		userID,
	).Scan(&account.UserID, &account.Balance, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", userID, err)
	}

	account.CreatedAt = fromMillis(createdAt)
	account.UpdatedAt = fromMillis(updatedAt)
	return &account, nil
}

func (s *Store) Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (balance int64, created bool, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		created, err = ensureAccount(ctx, tx, userID, defaultBalance, s.now())
		if err != nil {
			return err
		}
		balance, err = addBalance(ctx, tx, userID, delta, s.now())
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return balance, created, nil
}

func (s *Store) Transfer(ctx context.Context, fromID, toID int64, amount int64, defaultBalance int64) (fromBalance, toBalance int64, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		for _, id := range []int64{fromID, toID} {
			if _, err := ensureAccount(ctx, tx, id, defaultBalance, now); err != nil {
				return err
			}
		}

		var current int64
		if err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE user_id = ?`, fromID).Scan(&current); err != nil {
			return fmt.Errorf("read balance %d: %w", fromID, err)
		}
		if current < amount {
			return fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, current, amount)
		}

		if fromBalance, err = addBalance(ctx, tx, fromID, -amount, now); err != nil {
			return err
		}
		toBalance, err = addBalance(ctx, tx, toID, amount, now)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return fromBalance, toBalance, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func ensureAccount(ctx context.Context, tx *sql.Tx, userID int64, defaultBalance int64, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (user_id, balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, defaultBalance, toMillis(now), toMillis(now),
	)
	if err != nil {
		return false, fmt.Errorf("ensure account %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure account %d: %w", userID, err)
	}
	return n == 1, nil
}

func addBalance(ctx context.Context, tx *sql.Tx, userID int64, delta int64, now time.Time) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + ?, updated_at = ? WHERE user_id = ? RETURNING balance`,
		delta, toMillis(now), userID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("update balance %d: %w", userID, err)
	}
	return balance, nil
}
