package games

import (
	"wagerbot/bot/common"
	"wagerbot/models"

	"github.com/bwmarrin/discordgo"
)

// Feature runs /dice, /roulette and /blackjack plus their buttons
type Feature struct {
	engine common.Engine
}

// New creates a new games feature instance
func New(engine common.Engine) *Feature {
	return &Feature{
		engine: engine,
	}
}

// HandleCommand starts the game named by the slash command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	game, err := models.ParseGameType(i.ApplicationCommandData().Name)
	if err != nil {
		common.RespondWithError(s, i, "Unknown game.")
		return
	}
	f.handleStart(s, i, game)
}

// HandleInteraction handles game button clicks
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	f.handleAction(s, i)
}
