package balance

import (
	"context"
	"fmt"

	"wagerbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID := common.InteractionUserID(i)
	userID, err := common.ParseUserID(discordID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	balance, err := f.engine.GetOrCreateBalance(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("<@%s>, your current balance: **%s bits**", discordID, common.FormatBalance(balance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}
