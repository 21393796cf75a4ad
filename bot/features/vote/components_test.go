package vote

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/models"
	"kudos/session"
)

func TestBuildView_AwaitingAnswer(t *testing.T) {
	v := &session.VoteView{
		State:      session.VoteAwaitingAnswer,
		Question:   &models.Question{ID: 1, Text: "Most helpful?"},
		Candidates: []*models.User{{DiscordID: 2, Username: "bob"}, {DiscordID: 3, Username: "carol"}},
		Window:     models.NewPageWindow(0, 25, 2),
	}

	embed, components := buildView(v)
	assert.Contains(t, embed.Description, "Most helpful?")
	assert.Nil(t, embed.Footer)
	require.Len(t, components, 2)

	menu := components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, idCandidate, menu.CustomID)
	assert.Equal(t, "2", menu.Options[0].Value)
	assert.Equal(t, "3", menu.Options[1].Value)
}

func TestBuildView_PagedCandidates(t *testing.T) {
	v := &session.VoteView{
		State:      session.VoteAwaitingAnswer,
		Question:   &models.Question{ID: 1, Text: "Best reviewer?"},
		Candidates: []*models.User{{DiscordID: 30, Username: "zed"}},
		Window:     models.NewPageWindow(1, 25, 26),
	}

	embed, components := buildView(v)
	assert.Equal(t, "Page 2 of 2", embed.Footer.Text)
	require.Len(t, components, 3)

	pager := components[1].(discordgo.ActionsRow)
	assert.Equal(t, "vote_page:0", pager.Components[0].(discordgo.Button).CustomID)
	assert.True(t, pager.Components[1].(discordgo.Button).Disabled)
}

func TestBuildView_CompletedReplaysAnswers(t *testing.T) {
	v := &session.VoteView{
		State: session.VoteCompleted,
		Answers: []*models.VoteAnswer{
			{QuestionID: 1, QuestionText: "Most helpful?", CandidateID: 2},
			{QuestionID: 2, QuestionText: "Best reviewer?", CandidateID: 3},
		},
	}

	embed, components := buildView(v)
	assert.Nil(t, components)
	assert.Contains(t, embed.Description, "Most helpful? → <@2>")
	assert.Contains(t, embed.Description, "Best reviewer? → <@3>")
}

func TestBuildView_CompletedWithoutQuestions(t *testing.T) {
	embed, _ := buildView(&session.VoteView{State: session.VoteCompleted})
	assert.Equal(t, "There are no questions to answer right now.", embed.Description)
}
