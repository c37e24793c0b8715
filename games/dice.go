package games

import "wagerbot/models"

const DieFaces = 6

// Dice is a single roll duel between the player and the house
type Dice struct {
	bet    int64
	rng    Rand
	player int
	house  int
	rolled bool
}

func NewDice(bet int64, rng Rand) *Dice {
	return &Dice{bet: bet, rng: rng}
}

func (d *Dice) Game() models.GameType {
	return models.GameDice
}

// Start rolls the house die first, then the player's
func (d *Dice) Start() error {
	if d.rolled {
		return ErrRoundOver
	}
	d.house = d.rng.IntN(DieFaces) + 1
	d.player = d.rng.IntN(DieFaces) + 1
	d.rolled = true
	return nil
}

func (d *Dice) Act(models.Action) error {
	if d.rolled {
		return ErrRoundOver
	}
	return ErrInvalidAction
}

func (d *Dice) Terminal() bool {
	return d.rolled
}

func (d *Dice) Outcome() models.Outcome {
	switch {
	case !d.rolled:
		return models.OutcomeInProgress
	case d.player > d.house:
		return models.OutcomeWin
	case d.player < d.house:
		return models.OutcomeLoss
	default:
		return models.OutcomePush
	}
}

func (d *Dice) Delta() int64 {
	return settle(d.Outcome(), d.bet)
}

func (d *Dice) Describe(result *models.GameResult) {
	result.Dice = &models.DiceView{PlayerRoll: d.player, HouseRoll: d.house}
}
