package transfer

import (
	"context"

	"wagerbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleGift(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var amount int64
	var recipient *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipient = opt.UserValue(s)
		}
	}

	if recipient == nil {
		common.RespondWithError(s, i, "Invalid recipient user.")
		return
	}
	if recipient.Bot {
		common.RespondWithError(s, i, "Bots don't need bits.")
		return
	}

	fromID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	toID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	newBalance, err := f.engine.Transfer(ctx, fromID, toID, amount)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"from_user_id": fromID,
		"to_user_id":   toID,
		"amount":       amount,
	}).Info("Gift sent")

	common.RespondWithContent(s, i, common.FormatTransferResult(amount, recipient.ID, newBalance), false)
}
