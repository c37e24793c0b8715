package games

import (
	"testing"

	"wagerbot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomIDRoundTrip(t *testing.T) {
	id := BuildCustomID("3f1c2a4e-7b9d-4c1e-8f00-123456789abc", models.ActionStand)
	assert.Equal(t, "game:3f1c2a4e-7b9d-4c1e-8f00-123456789abc:stand", id)

	sessionID, action, err := ParseCustomID(id)
	require.NoError(t, err)
	assert.Equal(t, "3f1c2a4e-7b9d-4c1e-8f00-123456789abc", sessionID)
	assert.Equal(t, models.ActionStand, action)
}

func TestParseCustomIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{
		"bet_odds_50",
		"game:",
		"game::hit",
		"game:abc",
		"game:abc:fold",
	} {
		t.Run(id, func(t *testing.T) {
			_, _, err := ParseCustomID(id)
			assert.Error(t, err)
		})
	}
}

func buttonsOf(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	buttons := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		buttons = append(buttons, b)
	}
	return buttons
}

func TestActionButtons(t *testing.T) {
	t.Run("blackjack offers hit and stand", func(t *testing.T) {
		buttons := buttonsOf(t, ActionButtons(&models.GameResult{SessionID: "s1", Game: models.GameBlackjack}))
		require.Len(t, buttons, 2)
		assert.Equal(t, "game:s1:hit", buttons[0].CustomID)
		assert.Equal(t, "game:s1:stand", buttons[1].CustomID)
		assert.False(t, buttons[0].Disabled)
	})

	t.Run("roulette offers three colors", func(t *testing.T) {
		buttons := buttonsOf(t, ActionButtons(&models.GameResult{SessionID: "s2", Game: models.GameRoulette}))
		require.Len(t, buttons, 3)
		assert.Equal(t, "game:s2:green", buttons[0].CustomID)
		assert.Equal(t, "game:s2:black", buttons[1].CustomID)
		assert.Equal(t, "game:s2:red", buttons[2].CustomID)
	})

	t.Run("terminal result disables buttons", func(t *testing.T) {
		result := &models.GameResult{SessionID: "s3", Game: models.GameBlackjack, Terminal: true, Outcome: models.OutcomeWin}
		for _, b := range buttonsOf(t, ActionButtons(result)) {
			assert.True(t, b.Disabled)
		}
	})

	t.Run("dice has no buttons", func(t *testing.T) {
		assert.Nil(t, ActionButtons(&models.GameResult{Game: models.GameDice, Terminal: true}))
	})
}
