package common

import (
	"errors"
	"fmt"

	"wagerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (storage, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericErrorMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// UserMessage translates an engine error into text for the player.
func UserMessage(err error) string {
	var botErr *BotError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &botErr):
		return botErr.UserMessage
	case errors.Is(err, service.ErrInvalidBetAmount):
		return "Amount must be a positive number of bits."
	case errors.Is(err, service.ErrInsufficientFunds):
		return "You don't have enough bits for that."
	case errors.Is(err, service.ErrSessionAlreadyActive):
		return "You already have a game of that type in progress. Finish it first."
	case errors.Is(err, service.ErrSessionNotFound):
		return "That game no longer exists."
	case errors.Is(err, service.ErrUnauthorizedActor):
		return "That isn't your game."
	case errors.Is(err, service.ErrSessionAlreadyResolved):
		return "That game is already over."
	case errors.Is(err, service.ErrInvalidAction):
		return "That move isn't allowed right now."
	case errors.Is(err, service.ErrSelfTransfer):
		return "You cannot gift bits to yourself."
	case errors.Is(err, service.ErrStorageFailure):
		return "The bank is unavailable right now. Please try again."
	default:
		return genericErrorMessage
	}
}

// IsUserFacing reports whether err was caused by the player rather than the system
func IsUserFacing(err error) bool {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.Err == nil
	}
	return UserMessage(err) != genericErrorMessage && !errors.Is(err, service.ErrStorageFailure)
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the player what went wrong.
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	fields := log.Fields{
		"user_id": InteractionUserID(i),
		"error":   err.Error(),
	}
	var botErr *BotError
	if errors.As(err, &botErr) {
		fields["context"] = botErr.Context
	}

	if IsUserFacing(err) {
		log.WithFields(fields).Debug("Rejected interaction")
	} else {
		log.WithFields(fields).Error("Interaction failed")
	}

	message := UserMessage(err)
	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
