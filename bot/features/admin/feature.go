package admin

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/service"
)

// Feature handles membership administration from inside the guild
type Feature struct {
	ledger service.LedgerService
}

func New(ledger service.LedgerService) *Feature {
	return &Feature{ledger: ledger}
}

// HandleApprove registers the target member if needed and approves them.
// Callers are expected to have checked that the invoker is an admin.
func (f *Feature) HandleApprove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	target, approved := approveOptions(s, i.ApplicationCommandData().Options)
	if target == nil {
		common.RespondWithError(s, i, "Please pick a member to approve.")
		return
	}

	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", target.ID).Error("Invalid target user ID")
		common.RespondWithError(s, i, common.ErrorMessage(err))
		return
	}

	if _, err := f.ledger.GetOrCreateUser(ctx, targetID, target.Username); err != nil {
		common.HandleError(s, i, err, "approve")
		return
	}
	if err := f.ledger.ApproveUser(ctx, targetID, approved); err != nil {
		common.HandleError(s, i, err, "approve")
		return
	}

	log.WithFields(log.Fields{
		"target_id": targetID,
		"approved":  approved,
		"admin_id":  common.InteractionUserID(i),
	}).Info("Membership approval updated")

	if err := common.RespondWithSuccess(s, i, approvalMessage(targetID, approved), true); err != nil {
		log.Errorf("Error responding to approve command: %v", err)
	}
}

func approveOptions(s *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.User, bool) {
	var target *discordgo.User
	approved := true
	for _, opt := range options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "approved":
			approved = opt.BoolValue()
		}
	}
	return target, approved
}

func approvalMessage(targetID int64, approved bool) string {
	if approved {
		return fmt.Sprintf("%s can now give and receive kudos.", common.GetUserMention(targetID))
	}
	return fmt.Sprintf("%s can no longer take part in the kudos economy.", common.GetUserMention(targetID))
}
