package vote

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/session"
)

const (
	prefix      = "vote_"
	idCandidate = "vote_candidate"
	idPage      = "vote_page"
	idCancel    = "vote_cancel"
)

// Flow is the guided questionnaire the feature drives
type Flow interface {
	Start(ctx context.Context, userID int64) (*session.VoteView, error)
	TurnPage(ctx context.Context, userID int64, page int) (*session.VoteView, error)
	Answer(ctx context.Context, userID, candidateID int64) (*session.VoteView, error)
	Cancel(ctx context.Context, userID int64) error
}

type Feature struct {
	flow Flow
}

func New(flow Flow) *Feature {
	return &Feature{flow: flow}
}

// Owns reports whether a component custom ID belongs to this feature
func Owns(customID string) bool {
	return strings.HasPrefix(customID, prefix)
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleVote(s, i, userID)
}

func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleComponent(s, i, userID)
}
