package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"kudos/models"
)

// Slash command names
const (
	cmdGive        = "give"
	cmdBalance     = "balance"
	cmdHistory     = "history"
	cmdLeaderboard = "leaderboard"
	cmdVote        = "vote"
	cmdResults     = "results"
	cmdApprove     = "approve"
)

// adminCommands may only be run by configured admins
var adminCommands = map[string]bool{
	cmdResults: true,
	cmdApprove: true,
}

// commandDefinitions returns every slash command the bot registers
func commandDefinitions() []*discordgo.ApplicationCommand {
	minPage := float64(1)
	minQuestion := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdGive,
			Description: "Give kudos to another member",
		},
		{
			Name:        cmdBalance,
			Description: "Check how many kudos you have left to give",
		},
		{
			Name:        cmdHistory,
			Description: "List the kudos you gave or received",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "direction",
					Description: "Kudos you received (default) or gave",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Received", Value: string(models.DirectionReceived)},
						{Name: "Given", Value: string(models.DirectionGiven)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page to start on",
					Required:    false,
					MinValue:    &minPage,
				},
			},
		},
		{
			Name:        cmdLeaderboard,
			Description: "Show who received the most kudos",
		},
		{
			Name:        cmdVote,
			Description: "Answer this season's superlative questions",
		},
		{
			Name:        cmdResults,
			Description: "Show superlative results (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "question",
					Description: "Question ID, defaults to every question of the active season",
					Required:    false,
					MinValue:    &minQuestion,
				},
			},
		},
		{
			Name:        cmdApprove,
			Description: "Let a member take part in the kudos economy (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to approve",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "approved",
					Description: "Set to false to revoke",
					Required:    false,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
