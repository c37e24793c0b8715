package models

import (
	"errors"
	"time"
)

// ErrInsufficientBalance is returned by account stores when a transfer would
// take the sender below the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Account holds the authoritative balance for one chat user
type Account struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

