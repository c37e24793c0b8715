package games

import (
	"fmt"

	"wagerbot/models"
)

// DealerStandsOn is the total at which the dealer stops drawing
const DealerStandsOn = 17

type BlackjackState int

const (
	StateDealing BlackjackState = iota
	StatePlayerTurn
	StateResolved
)

func (s BlackjackState) String() string {
	switch s {
	case StateDealing:
		return "dealing"
	case StatePlayerTurn:
		return "player_turn"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Blackjack is one hand against a dealer who plays out before the player acts
type Blackjack struct {
	bet    int64
	shoe   *Shoe
	player Hand
	dealer Hand
	state  BlackjackState
}

func NewBlackjack(bet int64, shoe *Shoe) *Blackjack {
	return &Blackjack{bet: bet, shoe: shoe, state: StateDealing}
}

func (b *Blackjack) Game() models.GameType {
	return models.GameBlackjack
}

func (b *Blackjack) State() BlackjackState {
	return b.state
}

func (b *Blackjack) Player() *Hand {
	return &b.player
}

func (b *Blackjack) Dealer() *Hand {
	return &b.dealer
}

// Start deals player, dealer, player, dealer and lets the dealer draw to 17
func (b *Blackjack) Start() error {
	if b.state != StateDealing {
		return ErrRoundOver
	}
	for _, hand := range []*Hand{&b.player, &b.dealer, &b.player, &b.dealer} {
		if err := b.draw(hand); err != nil {
			return err
		}
	}
	for b.dealer.Total() < DealerStandsOn {
		if err := b.draw(&b.dealer); err != nil {
			return err
		}
	}
	b.state = StatePlayerTurn
	return nil
}

func (b *Blackjack) draw(hand *Hand) error {
	c, err := b.shoe.Draw()
	if err != nil {
		return err
	}
	hand.Add(c)
	return nil
}

func (b *Blackjack) Act(action models.Action) error {
	switch b.state {
	case StateResolved:
		return ErrRoundOver
	case StateDealing:
		return fmt.Errorf("%w: hand has not been dealt", ErrInvalidAction)
	}

	switch action {
	case models.ActionHit:
		if err := b.draw(&b.player); err != nil {
			return err
		}
		if b.player.Busted() {
			b.state = StateResolved
		}
		return nil
	case models.ActionStand:
		b.state = StateResolved
		return nil
	default:
		return ErrInvalidAction
	}
}

func (b *Blackjack) Terminal() bool {
	return b.state == StateResolved
}

func (b *Blackjack) Outcome() models.Outcome {
	if b.state != StateResolved {
		return models.OutcomeInProgress
	}

	playerBust, dealerBust := b.player.Busted(), b.dealer.Busted()
	switch {
	case playerBust && dealerBust:
		return models.OutcomePush
	case dealerBust:
		return models.OutcomeWin
	case playerBust:
		return models.OutcomeLoss
	case b.player.Total() > b.dealer.Total():
		return models.OutcomeWin
	case b.player.Total() < b.dealer.Total():
		return models.OutcomeLoss
	default:
		return models.OutcomePush
	}
}

func (b *Blackjack) Delta() int64 {
	return settle(b.Outcome(), b.bet)
}

// Describe hides the dealer's hole cards until the hand is resolved
func (b *Blackjack) Describe(result *models.GameResult) {
	result.Player = b.player.View(false)
	result.Dealer = b.dealer.View(b.state != StateResolved)
}
