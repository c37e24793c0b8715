package games

import (
	"context"
	"errors"
	"fmt"

	"wagerbot/bot/common"
	"wagerbot/models"
	"wagerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleStart places the bet and posts the opening state of the game
func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, game models.GameType) {
	ctx := context.Background()

	var bet int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "bet" {
			bet = opt.IntValue()
		}
	}

	userID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.engine.StartGame(ctx, userID, game, bet)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			err = f.activeSessionError(userID, game, err)
		}
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildResultEmbed(result), ActionButtons(result), false); err != nil {
		log.WithFields(log.Fields{
			"user_id":    userID,
			"session_id": result.SessionID,
			"game":       game,
		}).Errorf("Error responding to game command: %v", err)
	}
}

// activeSessionError points the player at the game that blocks a new one
func (f *Feature) activeSessionError(userID int64, game models.GameType, cause error) error {
	session, ok := f.engine.ActiveSession(userID, game)
	if !ok {
		return cause
	}
	return &common.BotError{
		UserMessage: fmt.Sprintf("You already have a %s game with **%s bits** on the table, started %s. Finish it first.",
			game, common.FormatBalance(session.Bet), common.FormatDiscordTimestamp(session.CreatedAt, "R")),
		LogMessage: "game already in progress",
		Ephemeral:  true,
		Context:    session.ID,
	}
}

// handleAction forwards a button click to the session it names
func (f *Feature) handleAction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	sessionID, action, err := ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		log.Warnf("Ignoring component: %v", err)
		return
	}

	actorID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.engine.SubmitAction(ctx, sessionID, actorID, action)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.UpdateComponentMessage(s, i, BuildResultEmbed(result), ActionButtons(result)); err != nil {
		log.WithFields(log.Fields{
			"user_id":    actorID,
			"session_id": sessionID,
			"action":     action,
		}).Errorf("Error updating game message: %v", err)
	}
}
