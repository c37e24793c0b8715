package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func betOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "bet",
		Description: "Amount to bet in bits",
		Required:    true,
	}
}

// Commands lists every slash command the bot serves
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "gift",
			Description: "Give bits to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to gift to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to gift in bits",
					Required:    true,
				},
			},
		},
		{
			Name:        "dice",
			Description: "Roll against the house. Higher die wins",
			Options:     []*discordgo.ApplicationCommandOption{betOption()},
		},
		{
			Name:        "roulette",
			Description: "Bet on a color. Green pays 17x",
			Options:     []*discordgo.ApplicationCommandOption{betOption()},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack against the dealer",
			Options:     []*discordgo.ApplicationCommandOption{betOption()},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range Commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
