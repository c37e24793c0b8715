package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// InteractionUserID returns the Discord ID of whoever triggered the interaction.
// Guild interactions carry Member, direct messages carry User.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// ParseUserID converts a Discord snowflake into the numeric account key
func ParseUserID(id string) (int64, error) {
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, NewUserError("Unable to process request. Please try again.", fmt.Sprintf("invalid discord user id %q", id))
	}
	return userID, nil
}
