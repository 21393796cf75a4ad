package stats

import (
	"bytes"
	"context"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/common"
	"kudos/models"
)

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring leaderboard response: %v", err)
		return
	}

	season, err := f.seasons.GetActiveSeason(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to get active season for leaderboard")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}
	var seasonID *int64
	if season != nil {
		seasonID = &season.ID
	}

	entries, err := f.ledger.Scoreboard(ctx, seasonID, f.scoreboardSize)
	if err != nil {
		log.WithError(err).Error("Failed to load scoreboard")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	png, err := f.imageGenerator.GenerateLeaderboard(leaderboardTitle(season), entries)
	if err != nil {
		log.WithError(err).Error("Failed to render leaderboard image")
		common.FollowUpWithError(s, i, common.ErrorMessage(err))
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Files: []*discordgo.File{{
			Name:        "leaderboard.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
	if err != nil {
		log.Errorf("Error sending leaderboard image: %v", err)
	}
}

func (f *Feature) handleResults(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var questionID int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "question" {
			questionID = opt.IntValue()
		}
	}

	var (
		embed *discordgo.MessageEmbed
		err   error
	)
	if questionID > 0 {
		embed, err = f.questionResults(ctx, questionID)
	} else {
		embed, err = f.seasonResults(ctx)
	}
	if err != nil {
		common.HandleError(s, i, err, "results")
		return
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to results command: %v", err)
	}
}

func (f *Feature) questionResults(ctx context.Context, questionID int64) (*discordgo.MessageEmbed, error) {
	q, err := f.votes.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	tallies, err := f.votes.ResultsFor(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return questionResultsEmbed(q, tallies), nil
}

func (f *Feature) seasonResults(ctx context.Context) (*discordgo.MessageEmbed, error) {
	season, err := f.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, models.ErrSeasonNotActive
	}

	questions, err := f.votes.ListQuestions(ctx, season.ID, false)
	if err != nil {
		return nil, err
	}

	results := make([]questionResult, 0, len(questions))
	for _, q := range questions {
		tallies, err := f.votes.ResultsFor(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, questionResult{question: q, tallies: tallies})
	}
	return seasonResultsEmbed(season, results), nil
}
