package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"wagerbot/models"
)

// MockAccountStore is a mock implementation of AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Get(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (int64, bool, error) {
	args := m.Called(ctx, userID, delta, defaultBalance)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockAccountStore) Transfer(ctx context.Context, fromID, toID int64, amount int64, defaultBalance int64) (int64, int64, error) {
	args := m.Called(ctx, fromID, toID, amount, defaultBalance)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) GameStarted(ctx context.Context, game models.GameType) {
	m.Called(ctx, game)
}

func (m *MockMetrics) GameResolved(ctx context.Context, game models.GameType, outcome models.Outcome) {
	m.Called(ctx, game, outcome)
}

func (m *MockMetrics) SessionOpened(ctx context.Context, game models.GameType) {
	m.Called(ctx, game)
}

func (m *MockMetrics) SessionClosed(ctx context.Context, game models.GameType) {
	m.Called(ctx, game)
}

func (m *MockMetrics) SessionExpired(ctx context.Context, game models.GameType, policy ExpiryPolicy) {
	m.Called(ctx, game, policy)
}

func (m *MockMetrics) BalanceTransaction(ctx context.Context, txType models.TransactionType) {
	m.Called(ctx, txType)
}
