package common

import (
	"context"

	"wagerbot/models"
	"wagerbot/service"
)

// Engine is the slice of the wagering engine the Discord features call
type Engine interface {
	GetOrCreateBalance(ctx context.Context, userID int64) (int64, error)
	Transfer(ctx context.Context, fromID, toID int64, amount int64) (int64, error)
	StartGame(ctx context.Context, userID int64, game models.GameType, bet int64) (*models.GameResult, error)
	SubmitAction(ctx context.Context, sessionID string, actorID int64, action models.Action) (*models.GameResult, error)
	ActiveSession(userID int64, game models.GameType) (*service.Session, bool)
}
