package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wagerbot/events"
	"wagerbot/models"
	"wagerbot/repository/memory"
)

func TestLedger_AdjustPublishesBalanceChange(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	ledger := NewLedger(memory.NewStore(), DefaultStartingBalance, bus, nil)

	changes := make(chan events.BalanceChangeEvent, 4)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		changes <- event.(events.BalanceChangeEvent)
	})

	_, err := ledger.GetBalance(ctx, 1)
	require.NoError(t, err)

	balance, err := ledger.Adjust(ctx, 1, 7, models.TransactionTypeBetWin)
	require.NoError(t, err)
	assert.Equal(t, int64(17), balance)

	select {
	case ev := <-changes:
		assert.Equal(t, events.BalanceChangeEvent{
			UserID:          1,
			OldBalance:      10,
			NewBalance:      17,
			ChangeAmount:    7,
			TransactionType: models.TransactionTypeBetWin,
		}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("balance change not published")
	}
}

func TestLedger_GetBalancePublishesAccountCreatedOnce(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	ledger := NewLedger(memory.NewStore(), DefaultStartingBalance, bus, nil)

	created := make(chan events.AccountCreatedEvent, 2)
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, event events.Event) {
		created <- event.(events.AccountCreatedEvent)
	})

	for i := 0; i < 3; i++ {
		balance, err := ledger.GetBalance(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(10), balance)
	}

	select {
	case ev := <-created:
		assert.Equal(t, int64(9), ev.UserID)
		assert.Equal(t, int64(10), ev.InitialBalance)
	case <-time.After(2 * time.Second):
		t.Fatal("account created not published")
	}
	select {
	case <-created:
		t.Fatal("account created published twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLedger_AdjustFailureIsStorageFailure(t *testing.T) {
	store := new(MockAccountStore)
	ledger := NewLedger(store, DefaultStartingBalance, nil, nil)

	store.On("Increment", mock.Anything, int64(1), int64(3), DefaultStartingBalance).
		Return(int64(0), false, errors.New("timeout"))

	_, err := ledger.Adjust(context.Background(), 1, 3, models.TransactionTypeBetWin)
	assert.ErrorIs(t, err, ErrStorageFailure)
	store.AssertExpectations(t)
}

func TestLedger_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves funds", func(t *testing.T) {
		ledger := NewLedger(memory.NewStore(), DefaultStartingBalance, nil, nil)

		from, to, err := ledger.Transfer(ctx, 1, 2, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(6), from)
		assert.Equal(t, int64(14), to)
	})

	t.Run("validation", func(t *testing.T) {
		ledger := NewLedger(memory.NewStore(), DefaultStartingBalance, nil, nil)

		_, _, err := ledger.Transfer(ctx, 1, 2, 0)
		assert.ErrorIs(t, err, ErrInvalidBetAmount)

		_, _, err = ledger.Transfer(ctx, 1, 1, 5)
		assert.ErrorIs(t, err, ErrSelfTransfer)

		_, _, err = ledger.Transfer(ctx, 1, 2, 11)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		balance, err := ledger.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), balance)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockAccountStore)
		ledger := NewLedger(store, DefaultStartingBalance, nil, nil)

		store.On("Get", mock.Anything, mock.Anything).Return(&models.Account{Balance: 10}, nil)
		store.On("Transfer", mock.Anything, int64(1), int64(2), int64(3), DefaultStartingBalance).
			Return(int64(0), int64(0), errors.New("deadlock detected"))

		_, _, err := ledger.Transfer(ctx, 1, 2, 3)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
