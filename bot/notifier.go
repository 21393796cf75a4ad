package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"kudos/bot/common"
	"kudos/models"
)

// DiscordNotifier posts transfer announcements to a guild channel and
// direct-messages recipients
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

// Announce posts the transaction and returns "<channel>/<message>". Without a
// configured channel nothing is posted and the reference is empty.
func (n *DiscordNotifier) Announce(_ context.Context, tx *models.Transaction) (string, error) {
	if n.channelID == "" {
		return "", nil
	}

	msg, err := n.session.ChannelMessageSendEmbed(n.channelID, BuildAnnouncementEmbed(tx))
	if err != nil {
		return "", fmt.Errorf("failed to post announcement: %w", err)
	}
	return MessageRef(msg.ChannelID, msg.ID), nil
}

// Notify sends a direct message
func (n *DiscordNotifier) Notify(_ context.Context, discordID int64, message string) error {
	channel, err := n.session.UserChannelCreate(common.FormatUserID(discordID))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// MessageRef formats the stored reference of a posted message
func MessageRef(channelID, messageID string) string {
	return channelID + "/" + messageID
}

// BuildAnnouncementEmbed renders the public post for a committed transfer
func BuildAnnouncementEmbed(tx *models.Transaction) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎉 Kudos!",
		Description: fmt.Sprintf("%s gave **%s kudos** to %s",
			common.GetUserMention(tx.SenderID),
			common.FormatBalance(tx.Amount),
			common.GetUserMention(tx.RecipientID)),
		Color: common.ColorKudos,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Reason",
				Value: common.Truncate(tx.Reason, 1024),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Transaction #%d", tx.ID),
		},
	}
	if !tx.CreatedAt.IsZero() {
		embed.Timestamp = tx.CreatedAt.Format(time.RFC3339)
	}
	return embed
}
