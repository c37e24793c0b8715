package balance

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

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBalance(s, i)
}
