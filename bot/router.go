package bot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/bot/features/balance"
	"kudos/bot/features/transfer"
	"kudos/bot/features/vote"
	"kudos/models"
)

var (
	errNotApproved = errors.New("member is not approved")
	errNotAdmin    = errors.New("admin only")
)

func interactionKind(t discordgo.InteractionType) (string, bool) {
	switch t {
	case discordgo.InteractionApplicationCommand:
		return "command", true
	case discordgo.InteractionMessageComponent:
		return "component", true
	case discordgo.InteractionModalSubmit:
		return "modal", true
	}
	return "", false
}

// admit decides whether a registered member may use the economy
func admit(user *models.User, isAdmin bool) error {
	if user.Approved || isAdmin {
		return nil
	}
	return errNotApproved
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, ok := interactionKind(i.Type)
	if !ok {
		return
	}
	if b.metrics != nil {
		b.metrics.RecordInteraction(kind)
	}

	userID, ok := b.ensureMember(s, i)
	if !ok {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i, userID)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i, userID)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i, userID)
	}
}

// ensureMember registers first-seen members and rejects unapproved ones
func (b *Bot) ensureMember(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	user := common.InteractionUser(i)
	if user == nil {
		return 0, false
	}
	userID, err := common.ParseUserID(user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Invalid interaction user ID")
		common.RespondWithError(s, i, common.ErrorMessage(err))
		return 0, false
	}

	member, err := b.ledger.GetOrCreateUser(context.Background(), userID, user.Username)
	if err != nil {
		common.HandleError(s, i, err, "register member")
		return 0, false
	}

	if err := admit(member, b.config.IsAdmin(userID)); err != nil {
		log.WithField("user_id", userID).Debug("Rejected interaction from unapproved member")
		common.RespondWithError(s, i, "You haven't been approved to use kudos yet. Ask an admin.")
		return 0, false
	}
	return userID, true
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	name := i.ApplicationCommandData().Name
	if adminCommands[name] && !b.config.IsAdmin(userID) {
		log.WithFields(log.Fields{
			"user_id": userID,
			"command": name,
			"error":   errNotAdmin,
		}).Warn("Rejected admin command")
		common.RespondWithError(s, i, "This command is for admins only.")
		return
	}

	switch name {
	case cmdGive:
		b.transferFeature.HandleCommand(s, i, userID)
	case cmdBalance:
		b.balanceFeature.HandleBalance(s, i, userID)
	case cmdHistory:
		b.balanceFeature.HandleHistory(s, i, userID)
	case cmdLeaderboard:
		b.statsFeature.HandleLeaderboard(s, i)
	case cmdVote:
		b.voteFeature.HandleCommand(s, i, userID)
	case cmdResults:
		b.statsFeature.HandleResults(s, i)
	case cmdApprove:
		b.adminFeature.HandleApprove(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	customID := i.MessageComponentData().CustomID
	switch {
	case transfer.Owns(customID):
		b.transferFeature.HandleComponent(s, i, userID)
	case vote.Owns(customID):
		b.voteFeature.HandleComponent(s, i, userID)
	case balance.Owns(customID):
		b.balanceFeature.HandleComponent(s, i, userID)
	default:
		log.WithField("custom_id", customID).Debug("Ignoring unknown component")
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	customID := i.ModalSubmitData().CustomID
	if transfer.Owns(customID) {
		b.transferFeature.HandleModal(s, i, userID)
		return
	}
	log.WithField("custom_id", customID).Debug("Ignoring unknown modal")
}
