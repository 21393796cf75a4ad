package balance

import (
	"context"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/models"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	balance, err := f.ledger.GetBalance(ctx, userID)
	if err != nil {
		common.HandleError(s, i, err, "balance")
		return
	}

	season, err := f.seasons.GetActiveSeason(ctx)
	if err != nil {
		common.HandleError(s, i, err, "balance")
		return
	}

	var seasonID *int64
	if season != nil {
		seasonID = &season.ID
	}
	summary, err := f.ledger.Summary(ctx, userID, seasonID)
	if err != nil {
		// The balance alone is still worth showing
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err,
		}).Warn("Failed to load transfer summary")
		summary = nil
	}

	embed := balanceEmbed(common.DisplayName(i), balance, season, summary)
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	direction := models.DirectionReceived
	page := 0
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "direction":
			direction = models.Direction(opt.StringValue())
		case "page":
			page = int(opt.IntValue()) - 1
		}
	}

	embed, components, err := f.historyPage(context.Background(), userID, direction, page)
	if err != nil {
		common.HandleError(s, i, err, "history")
		return
	}
	if err := common.RespondWithEmbed(s, i, embed, components, true); err != nil {
		log.Errorf("Error responding to history command: %v", err)
	}
}

func (f *Feature) handleHistoryPage(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	direction, page, err := parseHistoryPage(i.MessageComponentData().CustomID)
	if err != nil {
		common.HandleError(s, i, err, "history_page")
		return
	}

	embed, components, err := f.historyPage(context.Background(), userID, direction, page)
	if err != nil {
		common.HandleError(s, i, err, "history_page")
		return
	}
	if err := common.UpdateWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating history page: %v", err)
	}
}

// historyPage lists the active season, or every season when none is active
func (f *Feature) historyPage(ctx context.Context, userID int64, direction models.Direction, page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	season, err := f.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, nil, err
	}
	var seasonID *int64
	if season != nil {
		seasonID = &season.ID
	}

	txs, window, err := f.ledger.HistoryPage(ctx, userID, direction, seasonID, page, f.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return historyEmbed(direction, txs, window), historyComponents(direction, window), nil
}
