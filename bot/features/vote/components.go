package vote

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/bot/common"
	"kudos/session"
)

func buildView(v *session.VoteView) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	if v.State == session.VoteCompleted {
		return completedEmbed(v), nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🗳️ Superlatives",
		Description: fmt.Sprintf("**%s**", v.Question.Text),
		Color:       common.ColorPrimary,
	}
	if v.Window.TotalPages() > 1 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d", v.Window.Page+1, v.Window.TotalPages()),
		}
	}

	options := make([]discordgo.SelectMenuOption, 0, len(v.Candidates))
	for _, u := range v.Candidates {
		options = append(options, discordgo.SelectMenuOption{
			Label: common.Truncate(u.Username, 100),
			Value: common.FormatUserID(u.DiscordID),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    idCandidate,
				Placeholder: "Choose a member",
				Options:     options,
			},
		}},
	}
	if v.Window.TotalPages() > 1 {
		components = append(components, common.PagerRow(idPage, v.Window.Page, v.Window.TotalPages()))
	}
	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Finish later", Style: discordgo.SecondaryButton, CustomID: idCancel},
		},
	})
	return embed, components
}

// completedEmbed replays every answer the voter gave this season
func completedEmbed(v *session.VoteView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🗳️ All done!",
		Color: common.ColorSuccess,
	}
	if len(v.Answers) == 0 {
		embed.Description = "There are no questions to answer right now."
		return embed
	}

	var sb strings.Builder
	sb.WriteString("Your answers:\n")
	for _, a := range v.Answers {
		fmt.Fprintf(&sb, "• %s → %s\n", common.Truncate(a.QuestionText, 200), common.GetUserMention(a.CandidateID))
	}
	embed.Description = common.Truncate(sb.String(), 4096)
	return embed
}
