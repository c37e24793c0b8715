package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisableComponents(t *testing.T) {
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Hit", CustomID: "a"},
			&discordgo.Button{Label: "Stand", CustomID: "b"},
		}},
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Other", CustomID: "c"},
		}},
	}

	disabled := DisableComponents(components)
	require.Len(t, disabled, 2)

	for _, component := range disabled {
		row, ok := component.(discordgo.ActionsRow)
		require.True(t, ok)
		for _, c := range row.Components {
			button, ok := c.(discordgo.Button)
			require.True(t, ok)
			assert.True(t, button.Disabled, button.Label)
		}
	}

	// Input must be left untouched
	original := components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.False(t, original.Disabled)
	assert.False(t, components[0].(discordgo.ActionsRow).Components[1].(*discordgo.Button).Disabled)
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789012345678), id)

	_, err = ParseUserID("not-a-snowflake")
	var botErr *BotError
	require.ErrorAs(t, err, &botErr)
	assert.True(t, IsUserFacing(err))
}

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "1"}},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "2"},
	}}

	assert.Equal(t, "1", InteractionUserID(guild))
	assert.Equal(t, "2", InteractionUserID(dm))
	assert.Empty(t, InteractionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}
