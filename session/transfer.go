package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"kudos/models"
)

// MaxTransferAmount caps a single transfer regardless of balance
const MaxTransferAmount int64 = 100

// DefaultPageSize matches the option limit of a Discord select menu
const DefaultPageSize = 25

// TransferState is a step of the guided transfer
type TransferState int

const (
	TransferIdle TransferState = iota
	TransferSelectingRecipient
	TransferSelectingAmount
	TransferEnteringReason
	TransferConfirming
	TransferCommitted
	TransferCancelled
)

func (s TransferState) String() string {
	switch s {
	case TransferIdle:
		return "idle"
	case TransferSelectingRecipient:
		return "selecting_recipient"
	case TransferSelectingAmount:
		return "selecting_amount"
	case TransferEnteringReason:
		return "entering_reason"
	case TransferConfirming:
		return "confirming"
	case TransferCommitted:
		return "committed"
	case TransferCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("transfer_state(%d)", int(s))
	}
}

// TransferDraft is a user's in-progress transfer
type TransferDraft struct {
	SenderID       int64
	SeasonID       int64
	State          TransferState
	Candidates     []*models.User
	Page           int
	RecipientID    int64
	RecipientName  string
	MaxAmount      int64
	Amount         int64
	Reason         string
	OriginalReason string
}

// TransferView is what the caller renders after each step
type TransferView struct {
	State         TransferState
	Recipients    []*models.User
	Window        models.PageWindow
	RecipientID   int64
	RecipientName string
	MaxAmount     int64
	Amount        int64
	Reason        string
	Improved      bool
	TransactionID int64
	MessageRef    string
}

// TransferDeps are the collaborators of a TransferFlow. Announcer, Notifier,
// Improver and Recorder are optional.
type TransferDeps struct {
	Ledger    Ledger
	Seasons   Seasons
	Announcer Announcer
	Notifier  Notifier
	Improver  ReasonImprover
	Recorder  OutcomeRecorder
}

// TransferFlow drives the guided transfer for every user
type TransferFlow struct {
	deps     TransferDeps
	drafts   *Registry[TransferDraft]
	pageSize int
}

// NewTransferFlow creates a flow whose drafts expire after ttl of inactivity (0 disables expiry)
func NewTransferFlow(deps TransferDeps, ttl time.Duration) *TransferFlow {
	f := &TransferFlow{
		deps:     deps,
		drafts:   NewRegistry[TransferDraft](ttl),
		pageSize: DefaultPageSize,
	}
	f.drafts.OnExpire(func(userID int64, d TransferDraft) {
		log.WithFields(log.Fields{
			"user_id": userID,
			"state":   d.State.String(),
		}).Debug("Transfer draft expired")
		f.record(context.Background(), OutcomeExpired)
	})
	return f
}

// Registry exposes the draft store so the caller can run its janitor
func (f *TransferFlow) Registry() *Registry[TransferDraft] {
	return f.drafts
}

// SetPageSize changes how many recipients are offered per page
func (f *TransferFlow) SetPageSize(n int) {
	if n > 0 {
		f.pageSize = n
	}
}

func (f *TransferFlow) record(ctx context.Context, outcome string) {
	if f.deps.Recorder != nil {
		f.deps.Recorder.RecordSessionOutcome(ctx, flowTransfer, outcome)
	}
}

func (f *TransferFlow) view(d TransferDraft) *TransferView {
	page, window := models.Paginate(d.Candidates, d.Page, f.pageSize)
	return &TransferView{
		State:         d.State,
		Recipients:    page,
		Window:        window,
		RecipientID:   d.RecipientID,
		RecipientName: d.RecipientName,
		MaxAmount:     d.MaxAmount,
		Amount:        d.Amount,
		Reason:        d.Reason,
		Improved:      d.OriginalReason != "" && d.Reason != d.OriginalReason,
	}
}

func (f *TransferFlow) load(userID int64, want ...TransferState) (TransferDraft, error) {
	d, ok := f.drafts.Get(userID)
	if !ok {
		return d, models.ErrNoSession
	}
	for _, s := range want {
		if d.State == s {
			return d, nil
		}
	}
	return d, fmt.Errorf("%w: transfer is %s", models.ErrUnexpectedStep, d.State)
}

// Start opens a new draft. Any draft the user already had is dropped first,
// even when Start fails.
func (f *TransferFlow) Start(ctx context.Context, userID int64) (*TransferView, error) {
	f.drafts.Delete(userID)

	season, err := f.deps.Seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	if season == nil {
		return nil, models.ErrSeasonNotActive
	}

	members, err := f.deps.Ledger.ListMembers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if len(members) == 0 {
		return nil, models.ErrNoEligibleRecipients
	}

	d := TransferDraft{
		SenderID:   userID,
		SeasonID:   season.ID,
		State:      TransferSelectingRecipient,
		Candidates: members,
	}
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// TurnPage moves the recipient list to another page; out-of-range pages are clamped
func (f *TransferFlow) TurnPage(ctx context.Context, userID int64, page int) (*TransferView, error) {
	d, err := f.load(userID, TransferSelectingRecipient)
	if err != nil {
		return nil, err
	}
	_, window := models.Paginate(d.Candidates, page, f.pageSize)
	d.Page = window.Page
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// SelectRecipient picks who receives the kudos. A sender with nothing to give
// loses the draft.
func (f *TransferFlow) SelectRecipient(ctx context.Context, userID, recipientID int64) (*TransferView, error) {
	d, err := f.load(userID, TransferSelectingRecipient)
	if err != nil {
		return nil, err
	}

	var recipient *models.User
	for _, c := range d.Candidates {
		if c.DiscordID == recipientID {
			recipient = c
			break
		}
	}
	if recipient == nil {
		return nil, models.ErrUserNotFound
	}

	balance, err := f.deps.Ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance <= 0 {
		f.drafts.Delete(userID)
		f.record(ctx, OutcomeDiscarded)
		return nil, models.ErrInsufficientBalance
	}

	d.RecipientID = recipient.DiscordID
	d.RecipientName = recipient.Username
	d.MaxAmount = min(balance, MaxTransferAmount)
	d.State = TransferSelectingAmount
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// SelectAmount accepts any amount in [1, MaxAmount]
func (f *TransferFlow) SelectAmount(ctx context.Context, userID, amount int64) (*TransferView, error) {
	d, err := f.load(userID, TransferSelectingAmount)
	if err != nil {
		return nil, err
	}
	if amount < 1 || amount > d.MaxAmount {
		return nil, fmt.Errorf("%w: must be between 1 and %d", models.ErrInvalidAmount, d.MaxAmount)
	}

	d.Amount = amount
	d.State = TransferEnteringReason
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// SubmitReason records the reason and moves to confirmation. Resubmitting
// while confirming replaces the reason.
func (f *TransferFlow) SubmitReason(ctx context.Context, userID int64, reason string) (*TransferView, error) {
	d, err := f.load(userID, TransferEnteringReason, TransferConfirming)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.ErrEmptyReason
	}

	d.Reason = reason
	d.OriginalReason = ""
	d.State = TransferConfirming
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// ImproveReason runs the reason through the improver. Any failure keeps the
// current text.
func (f *TransferFlow) ImproveReason(ctx context.Context, userID int64) (*TransferView, error) {
	d, err := f.load(userID, TransferConfirming)
	if err != nil {
		return nil, err
	}
	if f.deps.Improver == nil {
		return f.view(d), nil
	}

	raw := d.Reason
	if d.OriginalReason != "" {
		raw = d.OriginalReason
	}
	improved, err := f.deps.Improver.ImproveReasonText(ctx, raw, fmt.Sprintf("giving %d kudos to %s", d.Amount, d.RecipientName))
	improved = strings.TrimSpace(improved)
	if err != nil || improved == "" {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err,
		}).Warn("Reason improvement failed, keeping original text")
		return f.view(d), nil
	}

	d.OriginalReason = raw
	d.Reason = improved
	f.drafts.Put(userID, d)
	return f.view(d), nil
}

// RestoreReason undoes ImproveReason
func (f *TransferFlow) RestoreReason(ctx context.Context, userID int64) (*TransferView, error) {
	d, err := f.load(userID, TransferConfirming)
	if err != nil {
		return nil, err
	}
	if d.OriginalReason != "" {
		d.Reason = d.OriginalReason
		d.OriginalReason = ""
		f.drafts.Put(userID, d)
	}
	return f.view(d), nil
}

// DiscardsDraft reports whether a commit error leaves nothing worth retrying
func DiscardsDraft(err error) bool {
	return errors.Is(err, models.ErrInsufficientBalance) ||
		errors.Is(err, models.ErrSeasonNotActive) ||
		errors.Is(err, models.ErrUserNotFound)
}

// Confirm commits the draft. The draft is claimed before committing, so a
// repeated confirm cannot commit it twice. Rejections that make the draft
// unusable discard it; store faults and lost races put it back so the user
// can retry.
func (f *TransferFlow) Confirm(ctx context.Context, userID int64) (*TransferView, error) {
	d, ok := f.drafts.Take(userID, func(d TransferDraft) bool {
		return d.State == TransferConfirming
	})
	if !ok {
		_, err := f.load(userID, TransferConfirming)
		if err == nil {
			err = fmt.Errorf("%w: transfer is already being confirmed", models.ErrUnexpectedStep)
		}
		return nil, err
	}

	req := models.TransferRequest{
		SenderID:    d.SenderID,
		RecipientID: d.RecipientID,
		Amount:      d.Amount,
		SeasonID:    d.SeasonID,
		Reason:      d.Reason,
	}
	txID, err := f.deps.Ledger.CommitTransfer(ctx, req)
	if err != nil {
		if DiscardsDraft(err) {
			f.record(ctx, OutcomeDiscarded)
		} else {
			f.drafts.Put(userID, d)
		}
		return nil, err
	}

	f.record(ctx, OutcomeCommitted)

	v := f.view(d)
	v.State = TransferCommitted
	v.TransactionID = txID
	v.MessageRef = f.afterCommit(ctx, txID, req)
	return v, nil
}

// afterCommit announces and notifies. Nothing here can undo the commit.
func (f *TransferFlow) afterCommit(ctx context.Context, txID int64, req models.TransferRequest) string {
	logger := log.WithFields(log.Fields{
		"transaction_id": txID,
		"sender_id":      req.SenderID,
		"recipient_id":   req.RecipientID,
	})

	var ref string
	if f.deps.Announcer != nil {
		tx, err := f.deps.Ledger.GetTransaction(ctx, txID)
		if err != nil {
			logger.WithError(err).Warn("Failed to load transaction for announcement")
			tx = &models.Transaction{
				ID:          txID,
				SenderID:    req.SenderID,
				RecipientID: req.RecipientID,
				Amount:      req.Amount,
				SeasonID:    req.SeasonID,
				Reason:      req.Reason,
				CreatedAt:   time.Now(),
			}
		}

		ref, err = f.deps.Announcer.Announce(ctx, tx)
		if err != nil {
			logger.WithError(err).Warn("Failed to announce transfer")
			ref = ""
		} else if ref != "" {
			if err := f.deps.Ledger.AttachMessageRef(ctx, txID, ref); err != nil {
				logger.WithError(err).Warn("Failed to attach announcement reference")
			}
		}
	}

	if f.deps.Notifier != nil {
		msg := fmt.Sprintf("You received %d kudos from <@%d>: %s", req.Amount, req.SenderID, req.Reason)
		if err := f.deps.Notifier.Notify(ctx, req.RecipientID, msg); err != nil {
			logger.WithError(err).Warn("Failed to notify recipient")
		}
	}

	return ref
}

// Cancel discards the user's draft from any state
func (f *TransferFlow) Cancel(ctx context.Context, userID int64) error {
	if !f.drafts.Delete(userID) {
		return models.ErrNoSession
	}
	f.record(ctx, OutcomeCancelled)
	return nil
}

// Current returns the user's draft as it stands
func (f *TransferFlow) Current(ctx context.Context, userID int64) (*TransferView, error) {
	d, err := f.load(userID,
		TransferSelectingRecipient,
		TransferSelectingAmount,
		TransferEnteringReason,
		TransferConfirming,
	)
	if err != nil {
		return nil, err
	}
	return f.view(d), nil
}
