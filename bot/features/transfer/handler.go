package transfer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/models"
	"kudos/session"
)

func (f *Feature) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	v, err := f.flow.Start(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "give")
		return
	}

	embed, components := buildView(v, f.improveEnabled)
	if err := common.RespondWithEmbed(s, i, embed, components, true); err != nil {
		log.Errorf("Error responding to give command: %v", err)
	}
}

func (f *Feature) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()
	data := i.MessageComponentData()
	action, _ := common.SplitCustomID(data.CustomID)

	var (
		v   *session.TransferView
		err error
	)

	switch action {
	case idRecipient:
		if len(data.Values) == 0 {
			return
		}
		recipientID, perr := common.ParseUserID(data.Values[0])
		if perr != nil {
			common.HandleError(s, i, fmt.Errorf("invalid recipient value %q: %w", data.Values[0], perr), action)
			return
		}
		v, err = f.flow.SelectRecipient(ctx, userID, recipientID)
		if err == nil {
			f.showModal(s, i, amountModal(v))
			return
		}
		if errors.Is(err, models.ErrInsufficientBalance) {
			f.closeMessage(s, i, common.ErrorMessage(err), false)
			return
		}

	case idPage:
		page, perr := common.CustomIDInt(data.CustomID)
		if perr != nil {
			common.HandleError(s, i, fmt.Errorf("invalid page in %q: %w", data.CustomID, perr), action)
			return
		}
		v, err = f.flow.TurnPage(ctx, userID, page)

	case idAmountButton:
		v, err = f.flow.Current(ctx, userID)
		if err == nil && v.State != session.TransferSelectingAmount {
			err = models.ErrUnexpectedStep
		}
		if err == nil {
			f.showModal(s, i, amountModal(v))
			return
		}

	case idReasonButton:
		v, err = f.flow.Current(ctx, userID)
		if err == nil && v.State != session.TransferEnteringReason && v.State != session.TransferConfirming {
			err = models.ErrUnexpectedStep
		}
		if err == nil {
			f.showModal(s, i, reasonModal(v))
			return
		}

	case idImprove:
		v, err = f.flow.ImproveReason(ctx, userID)

	case idRestore:
		v, err = f.flow.RestoreReason(ctx, userID)

	case idConfirm:
		f.handleConfirm(s, i, userID)
		return

	case idCancel:
		f.handleCancel(s, i, userID)
		return

	default:
		log.WithField("custom_id", data.CustomID).Warn("Unknown transfer component")
		return
	}

	if err != nil {
		common.HandleError(s, i, err, action)
		return
	}
	f.update(s, i, v)
}

func (f *Feature) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()
	data := i.ModalSubmitData()

	var (
		v   *session.TransferView
		err error
	)

	switch data.CustomID {
	case idAmountModal:
		raw := strings.TrimSpace(common.ModalValue(data, idAmountInput))
		amount, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			err = fmt.Errorf("%w: must be a whole number", models.ErrInvalidAmount)
			break
		}
		v, err = f.flow.SelectAmount(ctx, userID, amount)

	case idReasonModal:
		v, err = f.flow.SubmitReason(ctx, userID, common.ModalValue(data, idReasonInput))

	default:
		log.WithField("custom_id", data.CustomID).Warn("Unknown transfer modal")
		return
	}

	if err != nil {
		common.HandleError(s, i, err, data.CustomID)
		return
	}
	f.update(s, i, v)
}

// handleConfirm defers because announcing and notifying run before the reply
func (f *Feature) handleConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	if err := common.DeferUpdate(s, i); err != nil {
		log.Errorf("Error deferring transfer confirmation: %v", err)
		return
	}

	v, err := f.flow.Confirm(ctx, userID)
	if err != nil {
		if !models.IsExpected(err) {
			log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err,
			}).Error("Transfer commit failed")
		}
		// A discarded draft has nothing left to act on
		if session.DiscardsDraft(err) {
			f.closeMessage(s, i, common.ErrorMessage(err), true)
			return
		}
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	embed, components := buildView(v, f.improveEnabled)
	if err := common.EditWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating confirmed transfer: %v", err)
	}
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	if err := f.flow.Cancel(context.Background(), userID); err != nil && !errors.Is(err, models.ErrNoSession) {
		common.HandleError(s, i, err, idCancel)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎖️ Give kudos",
		Description: "Cancelled. Nothing was sent.",
		Color:       common.ColorDanger,
	}
	if err := common.UpdateWithEmbed(s, i, embed, nil); err != nil {
		log.Errorf("Error updating cancelled transfer: %v", err)
	}
}

// closeMessage replaces the message with a final notice
func (f *Feature) closeMessage(s *discordgo.Session, i *discordgo.InteractionCreate, message string, deferred bool) {
	embed := &discordgo.MessageEmbed{
		Title:       "🎖️ Give kudos",
		Description: "❌ " + message,
		Color:       common.ColorDanger,
	}

	var err error
	if deferred {
		err = common.EditWithEmbed(s, i, embed, nil)
	} else {
		err = common.UpdateWithEmbed(s, i, embed, nil)
	}
	if err != nil {
		log.Errorf("Error closing transfer message: %v", err)
	}
}

func (f *Feature) update(s *discordgo.Session, i *discordgo.InteractionCreate, v *session.TransferView) {
	embed, components := buildView(v, f.improveEnabled)
	if err := common.UpdateWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating transfer message: %v", err)
	}
}

func (f *Feature) showModal(s *discordgo.Session, i *discordgo.InteractionCreate, modal *discordgo.InteractionResponseData) {
	if err := common.ShowModal(s, i, modal); err != nil {
		log.Errorf("Error showing transfer modal: %v", err)
	}
}
