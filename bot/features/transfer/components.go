package transfer

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"kudos/bot/common"
	"kudos/session"
)

func cancelButton() discordgo.Button {
	return discordgo.Button{
		Label:    "Cancel",
		Style:    discordgo.DangerButton,
		CustomID: idCancel,
	}
}

// buildView renders the draft for its current step
func buildView(v *session.TransferView, improveEnabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "🎖️ Give kudos",
		Color: common.ColorKudos,
	}

	switch v.State {
	case session.TransferSelectingRecipient:
		embed.Description = "Who do you want to thank?"
		if v.Window.TotalPages() > 1 {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Page %d of %d", v.Window.Page+1, v.Window.TotalPages()),
			}
		}
		return embed, recipientComponents(v)

	case session.TransferSelectingAmount:
		embed.Description = fmt.Sprintf("Giving kudos to **%s**.\nYou can give between 1 and **%s**.",
			v.RecipientName, common.FormatBalance(v.MaxAmount))
		return embed, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Enter amount", Style: discordgo.PrimaryButton, CustomID: idAmountButton},
				cancelButton(),
			}},
		}

	case session.TransferEnteringReason:
		embed.Description = fmt.Sprintf("Giving **%s** kudos to **%s**.\nTell them why.",
			common.FormatBalance(v.Amount), v.RecipientName)
		return embed, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Add reason", Style: discordgo.PrimaryButton, CustomID: idReasonButton},
				cancelButton(),
			}},
		}

	case session.TransferConfirming:
		embed.Description = "Ready to send?"
		embed.Fields = summaryFields(v)
		buttons := []discordgo.MessageComponent{
			discordgo.Button{Label: "Send", Style: discordgo.SuccessButton, CustomID: idConfirm},
			discordgo.Button{Label: "Edit reason", Style: discordgo.SecondaryButton, CustomID: idReasonButton},
		}
		switch {
		case v.Improved:
			buttons = append(buttons, discordgo.Button{Label: "Use my wording", Style: discordgo.SecondaryButton, CustomID: idRestore})
		case improveEnabled:
			buttons = append(buttons, discordgo.Button{Label: "Polish wording", Style: discordgo.SecondaryButton, CustomID: idImprove})
		}
		buttons = append(buttons, cancelButton())
		return embed, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		}

	case session.TransferCommitted:
		embed.Title = "🎖️ Kudos sent"
		embed.Color = common.ColorSuccess
		embed.Fields = summaryFields(v)
		return embed, nil
	}

	embed.Description = "This transfer is closed."
	return embed, nil
}

func recipientComponents(v *session.TransferView) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(v.Recipients))
	for _, u := range v.Recipients {
		options = append(options, discordgo.SelectMenuOption{
			Label: common.Truncate(u.Username, 100),
			Value: common.FormatUserID(u.DiscordID),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    idRecipient,
				Placeholder: "Choose a member",
				Options:     options,
			},
		}},
	}
	if v.Window.TotalPages() > 1 {
		components = append(components, common.PagerRow(idPage, v.Window.Page, v.Window.TotalPages()))
	}
	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{cancelButton()},
	})
	return components
}

func summaryFields(v *session.TransferView) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "To", Value: common.GetUserMention(v.RecipientID), Inline: true},
		{Name: "Amount", Value: common.FormatBalance(v.Amount), Inline: true},
		{Name: "Reason", Value: common.Truncate(v.Reason, 1024)},
	}
}

func amountModal(v *session.TransferView) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: idAmountModal,
		Title:    common.Truncate(fmt.Sprintf("Kudos for %s", v.RecipientName), 45),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    idAmountInput,
					Label:       fmt.Sprintf("Amount (1-%d)", v.MaxAmount),
					Style:       discordgo.TextInputShort,
					Placeholder: "How many kudos?",
					Required:    true,
					MaxLength:   6,
				},
			}},
		},
	}
}

func reasonModal(v *session.TransferView) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: idReasonModal,
		Title:    "Why?",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  idReasonInput,
					Label:     fmt.Sprintf("Reason for %s", common.Truncate(v.RecipientName, 30)),
					Style:     discordgo.TextInputParagraph,
					Value:     v.Reason,
					Required:  true,
					MaxLength: maxReasonLength,
				},
			}},
		},
	}
}
