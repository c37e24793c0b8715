package transfer

import (
	"wagerbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	engine common.Engine
}

func New(engine common.Engine) *Feature {
	return &Feature{
		engine: engine,
	}
}

// HandleCommand handles the /gift command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleGift(s, i)
}
