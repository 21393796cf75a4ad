package service

import (
	"context"

	"kudos/events"
	"kudos/models"
)

// UserRepository defines the interface for member data access
type UserRepository interface {
	// GetByDiscordID retrieves a user, returning nil if unknown
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create inserts a new user with the given starting balance
	Create(ctx context.Context, discordID int64, username string, balance int64, approved bool) (*models.User, error)

	// UpdateUsername refreshes the stored display name
	UpdateUsername(ctx context.Context, discordID int64, username string) error

	// DeductBalance debits amount only if the balance covers it and returns the new balance.
	// Fails with models.ErrInsufficientBalance or models.ErrUserNotFound.
	DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// ResetAllBalances overwrites every balance and returns the number of users touched
	ResetAllBalances(ctx context.Context, balance int64) (int64, error)

	// SetApproved updates the approval flag, failing with models.ErrUserNotFound
	SetApproved(ctx context.Context, discordID int64, approved bool) error

	// ListExcluding returns approved users other than discordID ordered by name
	ListExcluding(ctx context.Context, discordID int64) ([]*models.User, error)
}

// SeasonRepository defines the interface for season data access
type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error

	// GetByID retrieves a season, returning nil if unknown
	GetByID(ctx context.Context, id int64) (*models.Season, error)

	// GetByIDForShare reads a season and holds a share lock on it until the transaction ends
	GetByIDForShare(ctx context.Context, id int64) (*models.Season, error)

	// GetActive returns the active season or nil
	GetActive(ctx context.Context) (*models.Season, error)

	List(ctx context.Context) ([]*models.Season, error)

	// DeactivateAll clears the active flag on every season
	DeactivateAll(ctx context.Context) error

	// SetActive updates the active flag, failing with models.ErrSeasonNotFound
	SetActive(ctx context.Context, id int64, active bool) error
}

// TransactionRepository defines the interface for the transfer log
type TransactionRepository interface {
	// Create inserts the transaction and fills in ID and CreatedAt
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByID retrieves a transaction, returning nil if unknown
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)

	// ListByUser returns one page of a member's history, newest first
	ListByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, offset, limit int) ([]*models.Transaction, error)

	// CountByUser counts the rows ListByUser pages over
	CountByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64) (int, error)

	// Scoreboard ranks recipients by total received
	Scoreboard(ctx context.Context, seasonID *int64, limit int) ([]*models.ScoreboardEntry, error)

	// Summary aggregates a member's given and received totals
	Summary(ctx context.Context, discordID int64, seasonID *int64) (*models.TransferSummary, error)

	// SetMessageRef stores the announcement reference if none is set yet
	SetMessageRef(ctx context.Context, id int64, ref string) error
}

// QuestionRepository defines the interface for superlative questions
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error

	// GetByID retrieves a question, returning nil if unknown
	GetByID(ctx context.Context, id int64) (*models.Question, error)

	// GetByIDForShare reads a question and holds a share lock on it until the transaction ends
	GetByIDForShare(ctx context.Context, id int64) (*models.Question, error)

	ListBySeason(ctx context.Context, seasonID int64, activeOnly bool) ([]*models.Question, error)

	// SetActive updates the active flag, failing with models.ErrQuestionNotFound
	SetActive(ctx context.Context, id int64, active bool) error

	// NextUnanswered returns the lowest-id active question the voter has not answered, or nil
	NextUnanswered(ctx context.Context, voterID, seasonID int64) (*models.Question, error)

	CountActive(ctx context.Context, seasonID int64) (int, error)
}

// VoteRepository defines the interface for vote data access
type VoteRepository interface {
	// Upsert inserts the vote or overwrites the candidate of the existing
	// (voter, question, season) row. Returns true if a row was overwritten.
	Upsert(ctx context.Context, vote *models.Vote) (bool, error)

	// GetByVoter returns the voter's vote on a question, or nil
	GetByVoter(ctx context.Context, voterID, questionID, seasonID int64) (*models.Vote, error)

	// CountAnsweredActive counts the voter's votes on the season's active questions
	CountAnsweredActive(ctx context.Context, voterID, seasonID int64) (int, error)

	// ResultsFor tallies a question, highest count first, ties by candidate id
	ResultsFor(ctx context.Context, questionID int64) ([]*models.VoteTally, error)

	// AnswersFor replays the voter's answers in question-id order
	AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork scopes repositories to one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	SeasonRepository() SeasonRepository
	TransactionRepository() TransactionRepository
	QuestionRepository() QuestionRepository
	VoteRepository() VoteRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// LedgerService owns balances and the transfer log
type LedgerService interface {
	// GetBalance returns the current balance, failing with models.ErrUserNotFound
	GetBalance(ctx context.Context, discordID int64) (int64, error)

	// GetUser returns a member, failing with models.ErrUserNotFound
	GetUser(ctx context.Context, discordID int64) (*models.User, error)

	// GetOrCreateUser registers first-seen members with the current default balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// ApproveUser sets the approval flag
	ApproveUser(ctx context.Context, discordID int64, approved bool) error

	// IsApproved reports whether a member may use the economy
	IsApproved(ctx context.Context, discordID int64) (bool, error)

	// ListMembers returns the approved members other than discordID
	ListMembers(ctx context.Context, excludeDiscordID int64) ([]*models.User, error)

	// CommitTransfer debits the sender and records the transaction atomically
	CommitTransfer(ctx context.Context, req models.TransferRequest) (int64, error)

	// GetTransaction returns a transaction, failing with models.ErrTransactionNotFound
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// ListTransactions returns history rows newest first
	ListTransactions(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, offset, limit int) ([]*models.Transaction, error)

	// HistoryPage returns one clamped page of history along with its window
	HistoryPage(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, page, pageSize int) ([]*models.Transaction, models.PageWindow, error)

	// Scoreboard ranks members by kudos received
	Scoreboard(ctx context.Context, seasonID *int64, limit int) ([]*models.ScoreboardEntry, error)

	// Summary aggregates a member's transfer activity
	Summary(ctx context.Context, discordID int64, seasonID *int64) (*models.TransferSummary, error)

	// AttachMessageRef records where a transaction was announced
	AttachMessageRef(ctx context.Context, transactionID int64, ref string) error
}

// SeasonService manages the season lifecycle
type SeasonService interface {
	GetActiveSeason(ctx context.Context) (*models.Season, error)
	GetSeason(ctx context.Context, id int64) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]*models.Season, error)
	CreateSeason(ctx context.Context, name string, defaultBalance int64, description string) (*models.Season, error)

	// Activate makes the season the only active one and refills every balance
	Activate(ctx context.Context, seasonID int64) (*models.Season, error)

	// Deactivate clears the active flag without touching balances
	Deactivate(ctx context.Context, seasonID int64) error
}

// VoteService manages superlative questions and votes
type VoteService interface {
	NextUnansweredQuestion(ctx context.Context, voterID, seasonID int64) (*models.Question, error)
	RecordVote(ctx context.Context, voterID, questionID, candidateID, seasonID int64) error
	HasAnsweredAll(ctx context.Context, voterID, seasonID int64) (bool, error)
	ResultsFor(ctx context.Context, questionID int64) ([]*models.VoteTally, error)
	AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error)

	CreateQuestion(ctx context.Context, seasonID int64, text string) (*models.Question, error)
	SetQuestionActive(ctx context.Context, questionID int64, active bool) error
	ListQuestions(ctx context.Context, seasonID int64, activeOnly bool) ([]*models.Question, error)
	GetQuestion(ctx context.Context, questionID int64) (*models.Question, error)
}
