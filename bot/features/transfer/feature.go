package transfer

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"kudos/session"
)

// Component and modal custom IDs
const (
	prefix         = "give_"
	idRecipient    = "give_recipient"
	idPage         = "give_page"
	idAmountButton = "give_amount"
	idAmountModal  = "give_amount_modal"
	idAmountInput  = "give_amount_input"
	idReasonButton = "give_reason"
	idReasonModal  = "give_reason_modal"
	idReasonInput  = "give_reason_input"
	idConfirm      = "give_confirm"
	idImprove      = "give_improve"
	idRestore      = "give_restore"
	idCancel       = "give_cancel"

	maxReasonLength = 300
)

// Flow is the guided transfer the feature drives
type Flow interface {
	Start(ctx context.Context, userID int64) (*session.TransferView, error)
	TurnPage(ctx context.Context, userID int64, page int) (*session.TransferView, error)
	SelectRecipient(ctx context.Context, userID, recipientID int64) (*session.TransferView, error)
	SelectAmount(ctx context.Context, userID, amount int64) (*session.TransferView, error)
	SubmitReason(ctx context.Context, userID int64, reason string) (*session.TransferView, error)
	ImproveReason(ctx context.Context, userID int64) (*session.TransferView, error)
	RestoreReason(ctx context.Context, userID int64) (*session.TransferView, error)
	Confirm(ctx context.Context, userID int64) (*session.TransferView, error)
	Cancel(ctx context.Context, userID int64) error
	Current(ctx context.Context, userID int64) (*session.TransferView, error)
}

type Feature struct {
	flow           Flow
	improveEnabled bool
}

func New(flow Flow, improveEnabled bool) *Feature {
	return &Feature{
		flow:           flow,
		improveEnabled: improveEnabled,
	}
}

// Owns reports whether a component or modal custom ID belongs to this feature
func Owns(customID string) bool {
	return strings.HasPrefix(customID, prefix)
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleGive(s, i, userID)
}

func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleComponent(s, i, userID)
}

func (f *Feature) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	f.handleModal(s, i, userID)
}
