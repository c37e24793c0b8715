package models

import "fmt"

// GameType identifies one of the supported games
type GameType string

const (
	GameDice      GameType = "dice"
	GameRoulette  GameType = "roulette"
	GameBlackjack GameType = "blackjack"
)

// ParseGameType converts user input into a GameType
func ParseGameType(s string) (GameType, error) {
	switch GameType(s) {
	case GameDice, GameRoulette, GameBlackjack:
		return GameType(s), nil
	default:
		return "", fmt.Errorf("unknown game: %q", s)
	}
}

// IsInteractive returns true for games that need follow-up actions
func (g GameType) IsInteractive() bool {
	return g == GameRoulette || g == GameBlackjack
}

// Outcome is the result of a game from the player's point of view
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWin        Outcome = "win"
	OutcomeLoss       Outcome = "loss"
	OutcomePush       Outcome = "push"
)

// Action is a follow-up input for an interactive session
type Action string

const (
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
	ActionGreen Action = "green"
	ActionBlack Action = "black"
	ActionRed   Action = "red"
)

// ParseAction converts a component payload into an Action
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionHit, ActionStand, ActionGreen, ActionBlack, ActionRed:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action: %q", s)
	}
}

// HandView is the presentable state of one blackjack hand.
// When Masked is set only the first card is real and Total is withheld.
type HandView struct {
	Cards  []string
	Total  int
	Masked bool
}

// DiceView holds both rolls of a dice duel
type DiceView struct {
	PlayerRoll int
	HouseRoll  int
}

// RouletteView holds the wheel result. Spin is -1 until the wheel has turned.
type RouletteView struct {
	Spin   int
	Slot   string
	Chosen string
}

// GameResult is the structured payload returned to the messaging layer
type GameResult struct {
	SessionID  string
	UserID     int64
	Game       GameType
	Bet        int64
	Terminal   bool
	Outcome    Outcome
	Payout     int64 // signed ledger delta applied on settlement
	NewBalance int64

	Player   *HandView
	Dealer   *HandView
	Dice     *DiceView
	Roulette *RouletteView
}
