package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kudos/models"
	"kudos/service"
)

type mockSeasons struct {
	mock.Mock
	service.SeasonService
}

func (m *mockSeasons) CreateSeason(ctx context.Context, name string, defaultBalance int64, description string) (*models.Season, error) {
	args := m.Called(ctx, name, defaultBalance, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *mockSeasons) Activate(ctx context.Context, seasonID int64) (*models.Season, error) {
	args := m.Called(ctx, seasonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *mockSeasons) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Season), args.Error(1)
}

type mockVotes struct {
	mock.Mock
	service.VoteService
}

func (m *mockVotes) CreateQuestion(ctx context.Context, seasonID int64, text string) (*models.Question, error) {
	args := m.Called(ctx, seasonID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *mockVotes) SetQuestionActive(ctx context.Context, questionID int64, active bool) error {
	return m.Called(ctx, questionID, active).Error(0)
}

type mockLedger struct {
	mock.Mock
	service.LedgerService
}

func (m *mockLedger) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockLedger) ApproveUser(ctx context.Context, discordID int64, approved bool) error {
	return m.Called(ctx, discordID, approved).Error(0)
}

func newTestCLI() (*adminCLI, *mockSeasons, *mockVotes, *mockLedger, *bytes.Buffer) {
	seasons := new(mockSeasons)
	votes := new(mockVotes)
	ledger := new(mockLedger)
	out := new(bytes.Buffer)
	return &adminCLI{seasons: seasons, votes: votes, ledger: ledger, out: out}, seasons, votes, ledger, out
}

func TestAdminCLI_SeasonCreate(t *testing.T) {
	ctx := context.Background()
	cli, seasons, _, _, out := newTestCLI()

	seasons.On("CreateSeason", ctx, "Spring", int64(50), "first half of the year").
		Return(&models.Season{ID: 3, Name: "Spring", DefaultBalance: 50}, nil)

	err := cli.run(ctx, []string{"season", "create", "Spring", "50", "first", "half", "of", "the", "year"})
	require.NoError(t, err)
	assert.Equal(t, "Created season 3 (Spring), default balance 50\n", out.String())
	seasons.AssertExpectations(t)
}

func TestAdminCLI_SeasonCreateInvalidBalance(t *testing.T) {
	cli, seasons, _, _, _ := newTestCLI()

	err := cli.run(context.Background(), []string{"season", "create", "Spring", "lots"})
	assert.ErrorContains(t, err, "invalid default balance")
	seasons.AssertNotCalled(t, "CreateSeason", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminCLI_SeasonActivate(t *testing.T) {
	ctx := context.Background()
	cli, seasons, _, _, out := newTestCLI()

	seasons.On("Activate", ctx, int64(3)).Return(&models.Season{ID: 3, Name: "Spring", DefaultBalance: 50}, nil)

	require.NoError(t, cli.run(ctx, []string{"season", "activate", "3"}))
	assert.Contains(t, out.String(), "balances reset to 50")
}

func TestAdminCLI_SeasonActivateNotFound(t *testing.T) {
	ctx := context.Background()
	cli, seasons, _, _, _ := newTestCLI()

	seasons.On("Activate", ctx, int64(9)).Return(nil, models.ErrSeasonNotFound)

	err := cli.run(ctx, []string{"season", "activate", "9"})
	assert.ErrorIs(t, err, models.ErrSeasonNotFound)
}

func TestAdminCLI_SeasonList(t *testing.T) {
	ctx := context.Background()
	cli, seasons, _, _, out := newTestCLI()

	seasons.On("ListSeasons", ctx).Return([]*models.Season{
		{ID: 1, Name: "Winter", DefaultBalance: 30},
		{ID: 2, Name: "Spring", DefaultBalance: 50, Active: true},
	}, nil)

	require.NoError(t, cli.run(ctx, []string{"season", "list"}))
	assert.Contains(t, out.String(), "Winter")
	assert.Contains(t, out.String(), "true")
}

func TestAdminCLI_QuestionCommands(t *testing.T) {
	ctx := context.Background()
	cli, _, votes, _, out := newTestCLI()

	votes.On("CreateQuestion", ctx, int64(2), "Most helpful reviewer?").
		Return(&models.Question{ID: 8, SeasonID: 2, Text: "Most helpful reviewer?", Active: true}, nil)
	votes.On("SetQuestionActive", ctx, int64(8), false).Return(nil)

	require.NoError(t, cli.run(ctx, []string{"question", "add", "2", "Most", "helpful", "reviewer?"}))
	require.NoError(t, cli.run(ctx, []string{"question", "disable", "8"}))

	assert.Equal(t, "Added question 8 to season 2\nQuestion 8 disabled\n", out.String())
	votes.AssertExpectations(t)
}

func TestAdminCLI_UserApprove(t *testing.T) {
	ctx := context.Background()
	cli, _, _, ledger, out := newTestCLI()

	ledger.On("GetOrCreateUser", ctx, int64(1234), "1234").Return(&models.User{DiscordID: 1234}, nil)
	ledger.On("ApproveUser", ctx, int64(1234), true).Return(nil)

	require.NoError(t, cli.run(ctx, []string{"user", "approve", "1234"}))
	assert.Equal(t, "User 1234 approved\n", out.String())
	ledger.AssertExpectations(t)
}

func TestAdminCLI_UserRevokeWithName(t *testing.T) {
	ctx := context.Background()
	cli, _, _, ledger, _ := newTestCLI()

	ledger.On("GetOrCreateUser", ctx, int64(1234), "alice").Return(&models.User{DiscordID: 1234}, nil)
	ledger.On("ApproveUser", ctx, int64(1234), false).Return(nil)

	require.NoError(t, cli.run(ctx, []string{"user", "revoke", "1234", "alice"}))
	ledger.AssertExpectations(t)
}

func TestAdminCLI_Usage(t *testing.T) {
	cli, _, _, _, _ := newTestCLI()
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing action", []string{"season"}, "usage"},
		{"unknown group", []string{"wager", "list"}, "unknown command"},
		{"unknown season action", []string{"season", "delete", "1"}, "unknown season command"},
		{"bad id", []string{"question", "enable", "abc"}, "invalid id"},
		{"zero id", []string{"season", "deactivate", "0"}, "invalid id"},
		{"missing id", []string{"user", "approve"}, "missing id"},
		{"unknown user action", []string{"user", "ban", "1"}, "unknown user command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, cli.run(ctx, tt.args), tt.msg)
		})
	}
}
