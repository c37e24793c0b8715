package games

import (
	"fmt"
	"strings"

	"wagerbot/bot/common"
	"wagerbot/models"

	"github.com/bwmarrin/discordgo"
)

// CustomIDPrefix marks components owned by this feature
const CustomIDPrefix = "game:"

// BuildCustomID encodes a session action as game:<sessionID>:<action>
func BuildCustomID(sessionID string, action models.Action) string {
	return fmt.Sprintf("%s%s:%s", CustomIDPrefix, sessionID, action)
}

// ParseCustomID is the inverse of BuildCustomID
func ParseCustomID(customID string) (string, models.Action, error) {
	rest, ok := strings.CutPrefix(customID, CustomIDPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a game component: %q", customID)
	}
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return "", "", fmt.Errorf("malformed game component: %q", customID)
	}
	action, err := models.ParseAction(rest[idx+1:])
	if err != nil {
		return "", "", fmt.Errorf("malformed game component: %w", err)
	}
	return rest[:idx], action, nil
}

// ActionButtons builds the button row for a result. Terminal results get
// the same buttons disabled so the message stays readable.
func ActionButtons(result *models.GameResult) []discordgo.MessageComponent {
	// Immediate games never open a session, so there is nothing to click.
	if !result.Game.IsInteractive() || result.SessionID == "" {
		return nil
	}

	var buttons []discordgo.MessageComponent
	switch result.Game {
	case models.GameBlackjack:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Hit",
				Style:    discordgo.PrimaryButton,
				CustomID: BuildCustomID(result.SessionID, models.ActionHit),
			},
			discordgo.Button{
				Label:    "Stand",
				Style:    discordgo.SecondaryButton,
				CustomID: BuildCustomID(result.SessionID, models.ActionStand),
			},
		}
	case models.GameRoulette:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "🟢 Green (17x)",
				Style:    discordgo.SuccessButton,
				CustomID: BuildCustomID(result.SessionID, models.ActionGreen),
			},
			discordgo.Button{
				Label:    "⚫ Black",
				Style:    discordgo.SecondaryButton,
				CustomID: BuildCustomID(result.SessionID, models.ActionBlack),
			},
			discordgo.Button{
				Label:    "🔴 Red",
				Style:    discordgo.DangerButton,
				CustomID: BuildCustomID(result.SessionID, models.ActionRed),
			},
		}
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
	if result.Terminal {
		return common.DisableComponents(components)
	}
	return components
}
