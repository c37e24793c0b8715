package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"wagerbot/events"
	"wagerbot/models"
)

// DefaultStartingBalance is credited to every account on first reference
const DefaultStartingBalance int64 = 10

// Ledger owns per-user balances. It never enforces a floor: callers check
// funds before authorizing a debit, and settlement may take a balance negative.
type Ledger struct {
	store          AccountStore
	defaultBalance int64
	bus            *events.Bus
	metrics        Metrics
}

// NewLedger creates a ledger over store. bus and metrics may be nil.
func NewLedger(store AccountStore, defaultBalance int64, bus *events.Bus, metrics Metrics) *Ledger {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Ledger{
		store:          store,
		defaultBalance: defaultBalance,
		bus:            bus,
		metrics:        metrics,
	}
}

// DefaultBalance returns the balance new accounts start with
func (l *Ledger) DefaultBalance() int64 {
	return l.defaultBalance
}

// GetBalance returns the current balance, creating the account if needed
func (l *Ledger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	account, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, storageFailure("get account", err)
	}
	if account != nil {
		return account.Balance, nil
	}

	balance, created, err := l.store.Increment(ctx, userID, 0, l.defaultBalance)
	if err != nil {
		return 0, storageFailure("create account", err)
	}
	if created {
		txBus := events.NewTransactionalBus(l.bus)
		l.accountCreated(ctx, txBus, userID)
		_ = txBus.Flush(ctx)
	}
	return balance, nil
}

// Adjust atomically applies delta and returns the new balance
func (l *Ledger) Adjust(ctx context.Context, userID int64, delta int64, txType models.TransactionType) (int64, error) {
	txBus := events.NewTransactionalBus(l.bus)

	newBalance, created, err := l.store.Increment(ctx, userID, delta, l.defaultBalance)
	if err != nil {
		txBus.Discard()
		log.WithFields(log.Fields{
			"user_id": userID,
			"delta":   delta,
			"error":   err,
		}).Error("Failed to adjust balance")
		return 0, storageFailure("adjust balance", err)
	}

	if created {
		l.accountCreated(ctx, txBus, userID)
	}
	txBus.Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      newBalance - delta,
		NewBalance:      newBalance,
		ChangeAmount:    delta,
		TransactionType: txType,
	})
	l.metrics.BalanceTransaction(ctx, txType)
	_ = txBus.Flush(ctx)

	log.WithFields(log.Fields{
		"user_id":     userID,
		"delta":       delta,
		"new_balance": newBalance,
		"type":        txType,
	}).Debug("Balance adjusted")

	return newBalance, nil
}

// Transfer moves amount from one user to another. Both accounts are locked
// by the store in a fixed order, so opposing transfers cannot deadlock.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID int64, amount int64) (fromBalance, toBalance int64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidBetAmount
	}
	if fromID == toID {
		return 0, 0, ErrSelfTransfer
	}

	// Surfaces account creation events before the move
	if _, err := l.GetBalance(ctx, fromID); err != nil {
		return 0, 0, err
	}
	if _, err := l.GetBalance(ctx, toID); err != nil {
		return 0, 0, err
	}

	fromBalance, toBalance, err = l.store.Transfer(ctx, fromID, toID, amount, l.defaultBalance)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) {
			return 0, 0, ErrInsufficientFunds
		}
		log.WithFields(log.Fields{
			"from_user_id": fromID,
			"to_user_id":   toID,
			"amount":       amount,
			"error":        err,
		}).Error("Failed to transfer balance")
		return 0, 0, storageFailure("transfer balance", err)
	}

	txBus := events.NewTransactionalBus(l.bus)
	txBus.Publish(events.BalanceChangeEvent{
		UserID:          fromID,
		OldBalance:      fromBalance + amount,
		NewBalance:      fromBalance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeTransferOut,
	})
	txBus.Publish(events.BalanceChangeEvent{
		UserID:          toID,
		OldBalance:      toBalance - amount,
		NewBalance:      toBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
	})
	l.metrics.BalanceTransaction(ctx, models.TransactionTypeTransferOut)
	l.metrics.BalanceTransaction(ctx, models.TransactionTypeTransferIn)
	_ = txBus.Flush(ctx)

	log.WithFields(log.Fields{
		"from_user_id": fromID,
		"to_user_id":   toID,
		"amount":       amount,
	}).Info("Balance transferred")

	return fromBalance, toBalance, nil
}

func (l *Ledger) accountCreated(ctx context.Context, txBus *events.TransactionalBus, userID int64) {
	txBus.Publish(events.AccountCreatedEvent{UserID: userID, InitialBalance: l.defaultBalance})
	l.metrics.BalanceTransaction(ctx, models.TransactionTypeInitial)
	log.WithField("user_id", userID).Info("Created account")
}
