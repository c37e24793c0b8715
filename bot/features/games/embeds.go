package games

import (
	"fmt"

	"wagerbot/bot/common"
	"wagerbot/models"

	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

var gameTitles = map[models.GameType]string{
	models.GameDice:      "🎲 Dice",
	models.GameRoulette:  "🎡 Roulette",
	models.GameBlackjack: "🃏 Blackjack",
}

// BuildResultEmbed renders a GameResult
func BuildResultEmbed(result *models.GameResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: gameTitles[result.Game],
		Color: outcomeColor(result),
	}

	switch {
	case result.Dice != nil:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "You rolled", Value: fmt.Sprintf("**%d**", result.Dice.PlayerRoll), Inline: true},
			&discordgo.MessageEmbedField{Name: "House rolled", Value: fmt.Sprintf("**%d**", result.Dice.HouseRoll), Inline: true},
		)
	case result.Roulette != nil:
		embed.Fields = append(embed.Fields, rouletteFields(result.Roulette)...)
	case result.Player != nil:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Your hand", Value: common.FormatHand(result.Player), Inline: true},
			&discordgo.MessageEmbedField{Name: "Dealer", Value: common.FormatHand(result.Dealer), Inline: true},
		)
	}

	if result.Terminal {
		embed.Description = fmt.Sprintf("%s\nBet: **%s bits** (%s)\nBalance: **%s bits**",
			common.FormatOutcome(result.Outcome),
			common.FormatBalance(result.Bet),
			common.FormatSignedBalance(result.Payout),
			common.FormatBalance(result.NewBalance))
	} else {
		embed.Description = fmt.Sprintf("Bet: **%s bits**\n%s", common.FormatBalance(result.Bet), prompt(result.Game))
	}

	return embed
}

func rouletteFields(view *models.RouletteView) []*discordgo.MessageEmbedField {
	if view.Spin < 0 {
		return nil
	}
	return []*discordgo.MessageEmbedField{
		{Name: "Your pick", Value: view.Chosen, Inline: true},
		{Name: "The wheel", Value: fmt.Sprintf("**%d** %s", view.Spin, view.Slot), Inline: true},
	}
}

func prompt(game models.GameType) string {
	switch game {
	case models.GameRoulette:
		return "Pick a color. Green pays 17x."
	case models.GameBlackjack:
		return "Hit or stand?"
	default:
		return ""
	}
}

func outcomeColor(result *models.GameResult) int {
	if !result.Terminal {
		return ColorPrimary
	}
	switch result.Outcome {
	case models.OutcomeWin:
		return ColorSuccess
	case models.OutcomeLoss:
		return ColorDanger
	default:
		return ColorWarning
	}
}
