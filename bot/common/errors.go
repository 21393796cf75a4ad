package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/models"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// userMessages maps expected outcomes to what the member is told
var userMessages = []struct {
	err     error
	message string
}{
	{models.ErrInsufficientBalance, "You don't have enough kudos left for that."},
	{models.ErrNoEligibleRecipients, "There is nobody else to give kudos to yet."},
	{models.ErrSeasonNotActive, "There is no active season right now."},
	{models.ErrSeasonNotFound, "That season does not exist."},
	{models.ErrUserNotFound, "That member is not registered."},
	{models.ErrTransactionNotFound, "That transaction does not exist."},
	{models.ErrQuestionInactive, "That question is closed."},
	{models.ErrQuestionNotFound, "That question does not exist."},
	{models.ErrEmptyQuestion, "Question text cannot be empty."},
	{models.ErrInvalidAmount, "That amount is not allowed."},
	{models.ErrSelfTransfer, "You cannot give kudos to yourself."},
	{models.ErrEmptyReason, "Please tell them why."},
	{models.ErrConcurrentModification, "Someone else changed this at the same time. Please try again."},
	{models.ErrNoSession, "That menu has expired. Start again."},
	{models.ErrUnexpectedStep, "That button is no longer valid. Start again."},
}

// ErrorMessage returns the text shown to a member for err. Store faults get a
// generic message.
func ErrorMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			// Range errors carry the allowed bounds
			if detail, ok := strings.CutPrefix(err.Error(), m.err.Error()+": "); ok && m.err == models.ErrInvalidAmount {
				return fmt.Sprintf("That amount is not allowed, it %s.", detail)
			}
			return m.message
		}
	}
	return genericErrorMessage
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

// HandleError renders err to the member. Expected outcomes are shown as is;
// anything else is logged and replaced with a generic message.
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, action string) {
	if !models.IsExpected(err) {
		log.WithFields(log.Fields{
			"user_id": InteractionUserID(i),
			"action":  action,
			"error":   err,
		}).Error("Unexpected error handling interaction")
	} else {
		log.WithFields(log.Fields{
			"user_id": InteractionUserID(i),
			"action":  action,
			"outcome": err.Error(),
		}).Debug("Interaction rejected")
	}
	RespondWithError(s, i, ErrorMessage(err))
}
