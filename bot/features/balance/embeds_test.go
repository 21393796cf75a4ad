package balance

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/models"
)

func TestBalanceEmbed(t *testing.T) {
	season := &models.Season{ID: 1, Name: "Spring"}
	summary := &models.TransferSummary{TotalGiven: 1200, GivenCount: 3, TotalReceived: 40, ReceivedCount: 2}

	embed := balanceEmbed("Ann", 75, season, summary)
	assert.Contains(t, embed.Description, "**75**")
	assert.Equal(t, "Season: Spring", embed.Footer.Text)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "1,200 in 3 transfers", embed.Fields[0].Value)

	embed = balanceEmbed("Ann", 0, nil, nil)
	assert.Nil(t, embed.Footer)
	assert.Empty(t, embed.Fields)
}

func TestHistoryEmbed(t *testing.T) {
	created := time.Unix(1700000000, 0)
	txs := []*models.Transaction{
		{ID: 2, SenderID: 1, RecipientID: 5, Amount: 10, Reason: "pairing", CreatedAt: created},
	}
	window := models.NewPageWindow(0, 10, 1)

	embed := historyEmbed(models.DirectionGiven, txs, window)
	assert.Equal(t, "Kudos given", embed.Title)
	assert.Contains(t, embed.Description, "**10** to <@5> · pairing")
	assert.Equal(t, "Page 1 of 1 · 1 total", embed.Footer.Text)

	embed = historyEmbed(models.DirectionReceived, txs, window)
	assert.Contains(t, embed.Description, "from <@1>")

	embed = historyEmbed(models.DirectionReceived, nil, models.NewPageWindow(0, 10, 0))
	assert.Equal(t, "Nothing here yet.", embed.Description)
}

func TestHistoryComponents(t *testing.T) {
	assert.Nil(t, historyComponents(models.DirectionGiven, models.NewPageWindow(0, 10, 5)))

	components := historyComponents(models.DirectionGiven, models.NewPageWindow(1, 10, 25))
	require.Len(t, components, 1)
	row := components[0].(discordgo.ActionsRow)
	assert.Equal(t, "history_page:given:0", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "history_page:given:2", row.Components[1].(discordgo.Button).CustomID)
}

func TestParseHistoryPage(t *testing.T) {
	direction, page, err := parseHistoryPage("history_page:received:3")
	require.NoError(t, err)
	assert.Equal(t, models.DirectionReceived, direction)
	assert.Equal(t, 3, page)

	_, _, err = parseHistoryPage("history_page:sideways:1")
	assert.Error(t, err)

	_, _, err = parseHistoryPage("history_page")
	assert.Error(t, err)
}
