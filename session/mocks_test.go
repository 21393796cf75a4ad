package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kudos/models"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) ListMembers(ctx context.Context, excludeDiscordID int64) ([]*models.User, error) {
	args := m.Called(ctx, excludeDiscordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockLedger) CommitTransfer(ctx context.Context, req models.TransferRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockLedger) AttachMessageRef(ctx context.Context, transactionID int64, ref string) error {
	args := m.Called(ctx, transactionID, ref)
	return args.Error(0)
}

type mockSeasons struct {
	mock.Mock
}

func (m *mockSeasons) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

type mockVotes struct {
	mock.Mock
}

func (m *mockVotes) NextUnansweredQuestion(ctx context.Context, voterID, seasonID int64) (*models.Question, error) {
	args := m.Called(ctx, voterID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *mockVotes) RecordVote(ctx context.Context, voterID, questionID, candidateID, seasonID int64) error {
	args := m.Called(ctx, voterID, questionID, candidateID, seasonID)
	return args.Error(0)
}

func (m *mockVotes) AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error) {
	args := m.Called(ctx, voterID, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VoteAnswer), args.Error(1)
}

type mockAnnouncer struct {
	mock.Mock
}

func (m *mockAnnouncer) Announce(ctx context.Context, tx *models.Transaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, discordID int64, message string) error {
	args := m.Called(ctx, discordID, message)
	return args.Error(0)
}

type mockImprover struct {
	mock.Mock
}

func (m *mockImprover) ImproveReasonText(ctx context.Context, raw, purpose string) (string, error) {
	args := m.Called(ctx, raw, purpose)
	return args.String(0), args.Error(1)
}

type outcomeLog struct {
	outcomes []string
}

func (o *outcomeLog) RecordSessionOutcome(_ context.Context, flow, outcome string) {
	o.outcomes = append(o.outcomes, flow+":"+outcome)
}

func members(ids ...int64) []*models.User {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, &models.User{DiscordID: id, Username: "user", Approved: true})
	}
	return users
}
