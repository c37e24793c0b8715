package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the messaging layer. Everything except
// ErrStorageFailure is a validation error and must not be retried.
var (
	ErrInvalidBetAmount       = errors.New("bet amount must be a positive whole number")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSessionAlreadyActive   = errors.New("a game of this type is already in progress")
	ErrSessionNotFound        = errors.New("game session not found")
	ErrUnauthorizedActor      = errors.New("this game belongs to another player")
	ErrSessionAlreadyResolved = errors.New("game session already resolved")
	ErrStorageFailure         = errors.New("storage failure")
	ErrInvalidAction          = errors.New("action is not valid for this game")
	ErrSelfTransfer           = errors.New("cannot transfer to yourself")
)

// IsRetryable reports whether the caller may retry the failed operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorageFailure, op, err)
}
