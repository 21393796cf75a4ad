package stats

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/bot/common"
	"kudos/models"
)

// maxTalliesPerQuestion limits the season overview to the podium
const maxTalliesPerQuestion = 3

func leaderboardTitle(season *models.Season) string {
	if season == nil {
		return "Kudos leaderboard · all time"
	}
	return "Kudos leaderboard · " + season.Name
}

func tallyLines(tallies []*models.VoteTally, limit int) string {
	if len(tallies) == 0 {
		return "No votes yet."
	}
	var sb strings.Builder
	for i, t := range tallies {
		if limit > 0 && i >= limit {
			break
		}
		noun := "votes"
		if t.Votes == 1 {
			noun = "vote"
		}
		fmt.Fprintf(&sb, "%d. %s · %d %s\n", i+1, common.GetUserMention(t.CandidateID), t.Votes, noun)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func questionResultsEmbed(q *models.Question, tallies []*models.VoteTally) *discordgo.MessageEmbed {
	status := ""
	if !q.Active {
		status = " (closed)"
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🗳️ %s%s", common.Truncate(q.Text, 200), status),
		Description: tallyLines(tallies, 0),
		Color:       common.ColorPrimary,
	}
}

// questionResult pairs a question with its ranking for the season overview
type questionResult struct {
	question *models.Question
	tallies  []*models.VoteTally
}

func seasonResultsEmbed(season *models.Season, results []questionResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🗳️ Superlatives · " + season.Name,
		Color: common.ColorPrimary,
	}
	if len(results) == 0 {
		embed.Description = "No questions this season."
		return embed
	}
	// Discord allows at most 25 fields per embed
	for _, r := range results {
		if len(embed.Fields) == 25 {
			break
		}
		name := fmt.Sprintf("#%d %s", r.question.ID, r.question.Text)
		if !r.question.Active {
			name += " (closed)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  common.Truncate(name, 256),
			Value: tallyLines(r.tallies, maxTalliesPerQuestion),
		})
	}
	return embed
}
