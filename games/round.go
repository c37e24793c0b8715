package games

import (
	"errors"
	"fmt"

	"wagerbot/models"
)

var (
	// ErrInvalidAction is returned when an action does not apply to the game or its current state
	ErrInvalidAction = errors.New("invalid action")

	// ErrRoundOver is returned when acting on a terminal round
	ErrRoundOver = errors.New("round is already over")
)

// Round is one game instance. Dice, Roulette and Blackjack are the only
// implementations; single-shot games are terminal as soon as Start returns.
type Round interface {
	Game() models.GameType

	// Start runs the opening phase of the game
	Start() error

	// Act advances an interactive round with a follow-up action
	Act(action models.Action) error

	Terminal() bool

	// Outcome is OutcomeInProgress until the round is terminal
	Outcome() models.Outcome

	// Delta is the signed ledger change owed once the round is terminal
	Delta() int64

	// Describe fills the game specific views of a result
	Describe(result *models.GameResult)
}

// NewRound creates an unstarted round of the given game
func NewRound(game models.GameType, bet int64, rng Rand) (Round, error) {
	switch game {
	case models.GameDice:
		return NewDice(bet, rng), nil
	case models.GameRoulette:
		return NewRoulette(bet, rng), nil
	case models.GameBlackjack:
		return NewBlackjack(bet, NewShoe(rng)), nil
	default:
		return nil, fmt.Errorf("unknown game: %q", game)
	}
}

// settle converts an outcome into the ledger delta for a plain even-money bet
func settle(outcome models.Outcome, bet int64) int64 {
	switch outcome {
	case models.OutcomeWin:
		return bet
	case models.OutcomeLoss:
		return -bet
	default:
		return 0
	}
}
