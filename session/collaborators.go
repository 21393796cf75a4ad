package session

import (
	"context"

	"kudos/models"
)

// Ledger is the subset of the ledger service a transfer session drives
type Ledger interface {
	GetBalance(ctx context.Context, discordID int64) (int64, error)
	ListMembers(ctx context.Context, excludeDiscordID int64) ([]*models.User, error)
	CommitTransfer(ctx context.Context, req models.TransferRequest) (int64, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	AttachMessageRef(ctx context.Context, transactionID int64, ref string) error
}

// Seasons resolves the season new sessions are bound to
type Seasons interface {
	GetActiveSeason(ctx context.Context) (*models.Season, error)
}

// Votes is the subset of the vote service a vote session drives
type Votes interface {
	NextUnansweredQuestion(ctx context.Context, voterID, seasonID int64) (*models.Question, error)
	RecordVote(ctx context.Context, voterID, questionID, candidateID, seasonID int64) error
	AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error)
}

// Announcer posts a committed transaction somewhere public and returns a
// reference to the posted message
type Announcer interface {
	Announce(ctx context.Context, tx *models.Transaction) (string, error)
}

// Notifier sends a private message to a member
type Notifier interface {
	Notify(ctx context.Context, discordID int64, message string) error
}

// ReasonImprover rewrites a free-text reason. purpose describes what the
// reason is for.
type ReasonImprover interface {
	ImproveReasonText(ctx context.Context, raw, purpose string) (string, error)
}

// OutcomeRecorder observes how sessions end
type OutcomeRecorder interface {
	RecordSessionOutcome(ctx context.Context, flow, outcome string)
}

// Session outcomes reported to an OutcomeRecorder
const (
	OutcomeCommitted = "committed"
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeDiscarded = "discarded"
	OutcomeExpired   = "expired"
)

const (
	flowTransfer = "transfer"
	flowVote     = "vote"
)
