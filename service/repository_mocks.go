package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kudos/events"
	"kudos/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, balance int64, approved bool) (*models.User, error) {
	args := m.Called(ctx, discordID, username, balance, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, discordID int64, username string) error {
	args := m.Called(ctx, discordID, username)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ResetAllBalances(ctx context.Context, balance int64) (int64, error) {
	args := m.Called(ctx, balance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetApproved(ctx context.Context, discordID int64, approved bool) error {
	args := m.Called(ctx, discordID, approved)
	return args.Error(0)
}

func (m *MockUserRepository) ListExcluding(ctx context.Context, discordID int64) ([]*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockSeasonRepository is a mock implementation of SeasonRepository
type MockSeasonRepository struct {
	mock.Mock
}

func (m *MockSeasonRepository) Create(ctx context.Context, season *models.Season) error {
	args := m.Called(ctx, season)
	return args.Error(0)
}

func (m *MockSeasonRepository) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Season, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) List(ctx context.Context) ([]*models.Season, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) DeactivateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSeasonRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, offset, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, discordID, direction, seasonID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64) (int, error) {
	args := m.Called(ctx, discordID, direction, seasonID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) Scoreboard(ctx context.Context, seasonID *int64, limit int) ([]*models.ScoreboardEntry, error) {
	args := m.Called(ctx, seasonID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScoreboardEntry), args.Error(1)
}

func (m *MockTransactionRepository) Summary(ctx context.Context, discordID int64, seasonID *int64) (*models.TransferSummary, error) {
	args := m.Called(ctx, discordID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferSummary), args.Error(1)
}

func (m *MockTransactionRepository) SetMessageRef(ctx context.Context, id int64, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListBySeason(ctx context.Context, seasonID int64, activeOnly bool) ([]*models.Question, error) {
	args := m.Called(ctx, seasonID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockQuestionRepository) NextUnanswered(ctx context.Context, voterID, seasonID int64) (*models.Question, error) {
	args := m.Called(ctx, voterID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountActive(ctx context.Context, seasonID int64) (int, error) {
	args := m.Called(ctx, seasonID)
	return args.Int(0), args.Error(1)
}

// MockVoteRepository is a mock implementation of VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Upsert(ctx context.Context, vote *models.Vote) (bool, error) {
	args := m.Called(ctx, vote)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoteRepository) GetByVoter(ctx context.Context, voterID, questionID, seasonID int64) (*models.Vote, error) {
	args := m.Called(ctx, voterID, questionID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *MockVoteRepository) CountAnsweredActive(ctx context.Context, voterID, seasonID int64) (int, error) {
	args := m.Called(ctx, voterID, seasonID)
	return args.Int(0), args.Error(1)
}

func (m *MockVoteRepository) ResultsFor(ctx context.Context, questionID int64) ([]*models.VoteTally, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VoteTally), args.Error(1)
}

func (m *MockVoteRepository) AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error) {
	args := m.Called(ctx, voterID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VoteAnswer), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	users        UserRepository
	seasons      SeasonRepository
	transactions TransactionRepository
	questions    QuestionRepository
	votes        VoteRepository
	publisher    EventPublisher
}

// SetRepositories installs the repositories handed out by the getters
func (m *MockUnitOfWork) SetRepositories(users UserRepository, seasons SeasonRepository, transactions TransactionRepository, questions QuestionRepository, votes VoteRepository, publisher EventPublisher) {
	m.users = users
	m.seasons = seasons
	m.transactions = transactions
	m.questions = questions
	m.votes = votes
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository               { return m.users }
func (m *MockUnitOfWork) SeasonRepository() SeasonRepository           { return m.seasons }
func (m *MockUnitOfWork) TransactionRepository() TransactionRepository { return m.transactions }
func (m *MockUnitOfWork) QuestionRepository() QuestionRepository       { return m.questions }
func (m *MockUnitOfWork) VoteRepository() VoteRepository               { return m.votes }
func (m *MockUnitOfWork) EventBus() EventPublisher                     { return m.publisher }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
