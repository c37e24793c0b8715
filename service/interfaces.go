package service

import (
	"context"

	"wagerbot/models"
)

// AccountStore is the keyed balance store the ledger is built on
type AccountStore interface {
	// Get returns the account or nil when the user has none yet
	Get(ctx context.Context, userID int64) (*models.Account, error)

	// Increment atomically applies delta, creating the account with
	// defaultBalance+delta when absent. created reports whether it was absent.
	Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (newBalance int64, created bool, err error)

	// Transfer moves amount between two accounts in one atomic step,
	// failing with models.ErrInsufficientBalance without mutating anything
	Transfer(ctx context.Context, fromID, toID int64, amount int64, defaultBalance int64) (fromBalance, toBalance int64, err error)
}

// Metrics records engine activity
type Metrics interface {
	GameStarted(ctx context.Context, game models.GameType)
	GameResolved(ctx context.Context, game models.GameType, outcome models.Outcome)
	SessionOpened(ctx context.Context, game models.GameType)
	SessionClosed(ctx context.Context, game models.GameType)
	SessionExpired(ctx context.Context, game models.GameType, policy ExpiryPolicy)
	BalanceTransaction(ctx context.Context, txType models.TransactionType)
}

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) GameStarted(context.Context, models.GameType) {}
func (NoopMetrics) GameResolved(context.Context, models.GameType, models.Outcome) {}
func (NoopMetrics) SessionOpened(context.Context, models.GameType) {}
func (NoopMetrics) SessionClosed(context.Context, models.GameType) {}
func (NoopMetrics) SessionExpired(context.Context, models.GameType, ExpiryPolicy) {}
func (NoopMetrics) BalanceTransaction(context.Context, models.TransactionType) {}
