// Package memory provides an in-process account store for tests and single-node runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wagerbot/models"
)

type entry struct {
	mu      sync.Mutex
	account models.Account
}

// Store keeps accounts in a map with one mutex per account
type Store struct {
	mu       sync.Mutex
	accounts map[int64]*entry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*entry),
		now:      time.Now,
	}
}

// entryFor returns the entry for userID, creating it when absent
func (s *Store) entryFor(userID int64, defaultBalance int64) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.accounts[userID]; ok {
		return e, false
	}
	now := s.now()
	e := &entry{account: models.Account{
		UserID:    userID,
		Balance:   defaultBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	s.accounts[userID] = e
	return e, true
}

func (s *Store) Get(ctx context.Context, userID int64) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	e, ok := s.accounts[userID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	account := e.account
	return &account, nil
}

func (s *Store) Increment(ctx context.Context, userID int64, delta int64, defaultBalance int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	e, created := s.entryFor(userID, defaultBalance)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.account.Balance += delta
	e.account.UpdatedAt = s.now()
	return e.account.Balance, created, nil
}

// Transfer locks both entries in ascending user id order
func (s *Store) Transfer(ctx context.Context, fromID, toID int64, amount int64, defaultBalance int64) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if fromID == toID {
		return 0, 0, fmt.Errorf("cannot transfer within account %d", fromID)
	}

	from, _ := s.entryFor(fromID, defaultBalance)
	to, _ := s.entryFor(toID, defaultBalance)

	first, second := from, to
	if toID < fromID {
		first, second = to, from
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if from.account.Balance < amount {
		return 0, 0, fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, from.account.Balance, amount)
	}

	now := s.now()
	from.account.Balance -= amount
	from.account.UpdatedAt = now
	to.account.Balance += amount
	to.account.UpdatedAt = now
	return from.account.Balance, to.account.Balance, nil
}
