package stats

import (
	"github.com/bwmarrin/discordgo"

	"kudos/service"
)

type Feature struct {
	ledger         service.LedgerService
	seasons        service.SeasonService
	votes          service.VoteService
	imageGenerator *LeaderboardImageGenerator
	scoreboardSize int
}

func New(ledger service.LedgerService, seasons service.SeasonService, votes service.VoteService, scoreboardSize int) *Feature {
	return &Feature{
		ledger:         ledger,
		seasons:        seasons,
		votes:          votes,
		imageGenerator: NewLeaderboardImageGenerator(),
		scoreboardSize: scoreboardSize,
	}
}

func (f *Feature) HandleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleLeaderboard(s, i)
}

func (f *Feature) HandleResults(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleResults(s, i)
}
