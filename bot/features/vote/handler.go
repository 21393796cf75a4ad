package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/models"
	"kudos/session"
)

func (f *Feature) handleVote(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	v, err := f.flow.Start(context.Background(), userID)
	if err != nil {
		common.HandleError(s, i, err, "vote")
		return
	}

	embed, components := buildView(v)
	if err := common.RespondWithEmbed(s, i, embed, components, true); err != nil {
		log.Errorf("Error responding to vote command: %v", err)
	}
}

func (f *Feature) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()
	data := i.MessageComponentData()
	action, _ := common.SplitCustomID(data.CustomID)

	var (
		v   *session.VoteView
		err error
	)

	switch action {
	case idCandidate:
		if len(data.Values) == 0 {
			return
		}
		candidateID, perr := common.ParseUserID(data.Values[0])
		if perr != nil {
			common.HandleError(s, i, fmt.Errorf("invalid candidate value %q: %w", data.Values[0], perr), action)
			return
		}
		v, err = f.flow.Answer(ctx, userID, candidateID)

	case idPage:
		page, perr := common.CustomIDInt(data.CustomID)
		if perr != nil {
			common.HandleError(s, i, fmt.Errorf("invalid page in %q: %w", data.CustomID, perr), action)
			return
		}
		v, err = f.flow.TurnPage(ctx, userID, page)

	case idCancel:
		if err := f.flow.Cancel(ctx, userID); err != nil && !errors.Is(err, models.ErrNoSession) {
			common.HandleError(s, i, err, action)
			return
		}
		embed := &discordgo.MessageEmbed{
			Title:       "🗳️ Superlatives",
			Description: "Saved. Run /vote to pick up where you left off.",
			Color:       common.ColorInfo,
		}
		if err := common.UpdateWithEmbed(s, i, embed, nil); err != nil {
			log.Errorf("Error updating cancelled ballot: %v", err)
		}
		return

	default:
		log.WithField("custom_id", data.CustomID).Warn("Unknown vote component")
		return
	}

	if err != nil {
		common.HandleError(s, i, err, action)
		return
	}

	embed, components := buildView(v)
	if err := common.UpdateWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating ballot: %v", err)
	}
}
