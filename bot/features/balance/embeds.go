package balance

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/bot/common"
	"kudos/models"
)

func balanceEmbed(displayName string, balance int64, season *models.Season, summary *models.TransferSummary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's kudos", displayName),
		Description: fmt.Sprintf("You have **%s** kudos left to give.", common.FormatBalance(balance)),
		Color:       common.ColorKudos,
	}
	if season != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Season: " + season.Name}
	}
	if summary != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:   "Given",
				Value:  fmt.Sprintf("%s in %d transfers", common.FormatBalance(summary.TotalGiven), summary.GivenCount),
				Inline: true,
			},
			{
				Name:   "Received",
				Value:  fmt.Sprintf("%s in %d transfers", common.FormatBalance(summary.TotalReceived), summary.ReceivedCount),
				Inline: true,
			},
		}
	}
	return embed
}

func historyEmbed(direction models.Direction, txs []*models.Transaction, window models.PageWindow) *discordgo.MessageEmbed {
	title := "Kudos received"
	if direction == models.DirectionGiven {
		title = "Kudos given"
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: common.ColorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d · %d total", window.Page+1, window.TotalPages(), window.TotalItems),
		},
	}

	if len(txs) == 0 {
		embed.Description = "Nothing here yet."
		return embed
	}

	var sb strings.Builder
	for _, tx := range txs {
		other := tx.SenderID
		arrow := "from"
		if direction == models.DirectionGiven {
			other = tx.RecipientID
			arrow = "to"
		}
		fmt.Fprintf(&sb, "%s **%s** %s %s · %s\n",
			common.FormatDiscordTimestamp(tx.CreatedAt, "d"),
			common.FormatBalance(tx.Amount),
			arrow,
			common.GetUserMention(other),
			common.Truncate(tx.Reason, 120),
		)
	}
	embed.Description = common.Truncate(sb.String(), 4096)
	return embed
}

func historyComponents(direction models.Direction, window models.PageWindow) []discordgo.MessageComponent {
	if window.TotalPages() <= 1 {
		return nil
	}
	return []discordgo.MessageComponent{
		common.PagerRow(idHistoryPage+":"+string(direction), window.Page, window.TotalPages()),
	}
}

// parseHistoryPage reads "history_page:<direction>:<page>"
func parseHistoryPage(customID string) (models.Direction, int, error) {
	_, arg := common.SplitCustomID(customID)
	dir, page, ok := strings.Cut(arg, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed history custom id %q", customID)
	}
	direction := models.Direction(dir)
	if !direction.Valid() {
		return "", 0, fmt.Errorf("unknown history direction %q", dir)
	}
	var n int
	if _, err := fmt.Sscanf(page, "%d", &n); err != nil {
		return "", 0, fmt.Errorf("malformed history page %q: %w", page, err)
	}
	return direction, n, nil
}
