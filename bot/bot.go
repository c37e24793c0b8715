package bot

import (
	"fmt"
	"strings"

	"wagerbot/bot/common"
	"wagerbot/bot/features/balance"
	"wagerbot/bot/features/games"
	"wagerbot/bot/features/transfer"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID scopes command registration; empty registers globally
	GuildID string
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config  Config
	session *discordgo.Session

	balance  *balance.Feature
	transfer *transfer.Feature
	games    *games.Feature
}

// New creates a bot instance, opens the gateway and registers commands
func New(config Config, engine common.Engine) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	bot := &Bot{
		config:   config,
		session:  dg,
		balance:  balance.New(engine),
		transfer: transfer.New(engine),
		games:    games.New(engine),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": config.GuildID,
		"user":     dg.State.User.Username,
	}).Info("Discord bot connected")

	return bot, nil
}

// Close disconnects from the gateway
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.balance.HandleCommand(s, i)
	case "gift":
		b.transfer.HandleCommand(s, i)
	case "dice", "roulette", "blackjack":
		b.games.HandleCommand(s, i)
	}
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, games.CustomIDPrefix):
		b.games.HandleInteraction(s, i)
	}
}
