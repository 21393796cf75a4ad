package balance

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/service"
)

const idHistoryPage = "history_page"

type Feature struct {
	ledger   service.LedgerService
	seasons  service.SeasonService
	pageSize int
}

func New(ledger service.LedgerService, seasons service.SeasonService, pageSize int) *Feature {
	return &Feature{
		ledger:   ledger,
		seasons:  seasons,
		pageSize: pageSize,
	}
}

// Owns reports whether a component custom ID belongs to this feature
func Owns(customID string) bool {
	return strings.HasPrefix(customID, idHistoryPage)
}

func (f *Feature) HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleBalance(s, i, userID)
}

func (f *Feature) HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleHistory(s, i, userID)
}

func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleHistoryPage(s, i, userID)
}
