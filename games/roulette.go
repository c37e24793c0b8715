package games

import "wagerbot/models"

const (
	// RouletteSlots counts the wheel positions 0 through 37
	RouletteSlots = 38

	// GreenPayoutMultiplier applies when a green pick lands on a zero slot
	GreenPayoutMultiplier = 17
)

type Color string

const (
	Green Color = "green"
	Black Color = "black"
	Red   Color = "red"
)

// SlotColor maps a spin onto the house wheel: 0 and 37 are green, odd
// numbers red, even numbers black.
func SlotColor(spin int) Color {
	switch {
	case spin == 0 || spin == RouletteSlots-1:
		return Green
	case spin%2 == 1:
		return Red
	default:
		return Black
	}
}

func colorForAction(action models.Action) (Color, bool) {
	switch action {
	case models.ActionGreen:
		return Green, true
	case models.ActionBlack:
		return Black, true
	case models.ActionRed:
		return Red, true
	default:
		return "", false
	}
}

// Roulette waits for a color pick and then spins once
type Roulette struct {
	bet    int64
	rng    Rand
	spin   int
	chosen Color
	done   bool
}

func NewRoulette(bet int64, rng Rand) *Roulette {
	return &Roulette{bet: bet, rng: rng, spin: -1}
}

func (r *Roulette) Game() models.GameType {
	return models.GameRoulette
}

// Start opens the betting phase; the wheel is not spun yet
func (r *Roulette) Start() error {
	return nil
}

func (r *Roulette) Act(action models.Action) error {
	if r.done {
		return ErrRoundOver
	}
	color, ok := colorForAction(action)
	if !ok {
		return ErrInvalidAction
	}
	r.chosen = color
	r.spin = r.rng.IntN(RouletteSlots)
	r.done = true
	return nil
}

func (r *Roulette) Terminal() bool {
	return r.done
}

func (r *Roulette) Outcome() models.Outcome {
	switch {
	case !r.done:
		return models.OutcomeInProgress
	case r.chosen == SlotColor(r.spin):
		return models.OutcomeWin
	default:
		return models.OutcomeLoss
	}
}

func (r *Roulette) Delta() int64 {
	switch r.Outcome() {
	case models.OutcomeWin:
		if r.chosen == Green {
			return r.bet * GreenPayoutMultiplier
		}
		return r.bet
	case models.OutcomeLoss:
		return -r.bet
	default:
		return 0
	}
}

func (r *Roulette) Describe(result *models.GameResult) {
	view := &models.RouletteView{Spin: r.spin, Chosen: string(r.chosen)}
	if r.done {
		view.Slot = string(SlotColor(r.spin))
	}
	result.Roulette = view
}
