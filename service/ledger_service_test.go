package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kudos/events"
	"kudos/models"
)

var activeSeason = &models.Season{ID: 1, Name: "Spring", DefaultBalance: 100, Active: true}

func TestLedgerService_CommitTransfer_Success(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{StartingBalance: 10})

	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(activeSeason, nil)
	m.users.On("GetByDiscordID", ctx, int64(2)).Return(&models.User{DiscordID: 2, Username: "bob"}, nil)
	m.users.On("DeductBalance", ctx, int64(1), int64(3)).Return(int64(7), nil)
	m.transactions.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.SenderID == 1 && tx.RecipientID == 2 && tx.Amount == 3 && tx.Reason == "thanks"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Transaction).ID = 42
	}).Return(nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		tc, ok := e.(events.TransferCommittedEvent)
		return ok && tc.TransactionID == 42 && tc.NewBalance == 7
	})).Return()
	m.uow.On("Commit").Return(nil)

	id, err := svc.CommitTransfer(ctx, models.TransferRequest{
		SenderID:    1,
		RecipientID: 2,
		Amount:      3,
		SeasonID:    1,
		Reason:      "  thanks  ",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	m.assertExpectations(t)
}

func TestLedgerService_CommitTransfer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.TransferRequest
		wantErr error
	}{
		{"self transfer", models.TransferRequest{SenderID: 1, RecipientID: 1, Amount: 1, SeasonID: 1, Reason: "x"}, models.ErrSelfTransfer},
		{"zero amount", models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 0, SeasonID: 1, Reason: "x"}, models.ErrInvalidAmount},
		{"negative amount", models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: -5, SeasonID: 1, Reason: "x"}, models.ErrInvalidAmount},
		{"blank reason", models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 1, SeasonID: 1, Reason: "   "}, models.ErrEmptyReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			svc := NewLedgerService(m.factory, LedgerOptions{})

			_, err := svc.CommitTransfer(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			m.factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestLedgerService_CommitTransfer_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(activeSeason, nil)
	m.users.On("GetByDiscordID", ctx, int64(2)).Return(&models.User{DiscordID: 2}, nil)
	m.users.On("DeductBalance", ctx, int64(1), int64(5)).Return(int64(0), models.ErrInsufficientBalance)

	_, err := svc.CommitTransfer(ctx, models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 5, SeasonID: 1, Reason: "x"})

	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestLedgerService_CommitTransfer_SeasonNotActive(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	m.seasons.On("GetByIDForShare", ctx, int64(9)).Return(&models.Season{ID: 9, Active: false}, nil)

	_, err := svc.CommitTransfer(ctx, models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 1, SeasonID: 9, Reason: "x"})

	assert.ErrorIs(t, err, models.ErrSeasonNotActive)
	m.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_CommitTransfer_UnknownRecipient(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(activeSeason, nil)
	m.users.On("GetByDiscordID", ctx, int64(2)).Return(nil, nil)

	_, err := svc.CommitTransfer(ctx, models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 1, SeasonID: 1, Reason: "x"})

	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestLedgerService_CommitTransfer_RetriesOnceOnConflict(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	conflict := errors.Join(models.ErrConcurrentModification, errors.New("40001"))
	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(nil, conflict).Once()
	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(activeSeason, nil).Once()
	m.users.On("GetByDiscordID", ctx, int64(2)).Return(&models.User{DiscordID: 2}, nil)
	m.users.On("DeductBalance", ctx, int64(1), int64(1)).Return(int64(9), nil)
	m.transactions.On("Create", ctx, mock.Anything).Return(nil)
	m.publisher.On("Publish", mock.Anything).Return()
	m.uow.On("Commit").Return(nil)

	_, err := svc.CommitTransfer(ctx, models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 1, SeasonID: 1, Reason: "x"})

	require.NoError(t, err)
	m.factory.AssertNumberOfCalls(t, "Create", 2)
}

func TestLedgerService_CommitTransfer_ConflictTwiceSurfaces(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	conflict := errors.Join(models.ErrConcurrentModification, errors.New("40P01"))
	m.seasons.On("GetByIDForShare", ctx, int64(1)).Return(nil, conflict)

	_, err := svc.CommitTransfer(ctx, models.TransferRequest{SenderID: 1, RecipientID: 2, Amount: 1, SeasonID: 1, Reason: "x"})

	assert.ErrorIs(t, err, models.ErrConcurrentModification)
	m.factory.AssertNumberOfCalls(t, "Create", 2)
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("known user", func(t *testing.T) {
		m := newServiceMocks()
		svc := NewLedgerService(m.factory, LedgerOptions{})
		m.users.On("GetByDiscordID", ctx, int64(1)).Return(&models.User{DiscordID: 1, Balance: 10}, nil)

		balance, err := svc.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), balance)
	})

	t.Run("unknown user", func(t *testing.T) {
		m := newServiceMocks()
		svc := NewLedgerService(m.factory, LedgerOptions{})
		m.users.On("GetByDiscordID", ctx, int64(1)).Return(nil, nil)

		_, err := svc.GetBalance(ctx, 1)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestLedgerService_GetOrCreateUser_ExistingUser(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{StartingBalance: 100})

	existing := &models.User{DiscordID: 1, Username: "alice", Balance: 40}
	m.users.On("GetByDiscordID", ctx, int64(1)).Return(existing, nil)

	user, err := svc.GetOrCreateUser(ctx, 1, "alice")

	require.NoError(t, err)
	assert.Equal(t, existing, user)
	m.uow.AssertNotCalled(t, "Commit")
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_GetOrCreateUser_NewUserGetsSeasonDefault(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{StartingBalance: 100, AutoApprove: true})

	created := &models.User{DiscordID: 1, Username: "alice", Balance: 50, Approved: true}
	m.users.On("GetByDiscordID", ctx, int64(1)).Return(nil, nil)
	m.seasons.On("GetActive", ctx).Return(&models.Season{ID: 3, DefaultBalance: 50, Active: true}, nil)
	m.users.On("Create", ctx, int64(1), "alice", int64(50), true).Return(created, nil)
	m.publisher.On("Publish", events.UserRegisteredEvent{DiscordID: 1, Username: "alice", InitialBalance: 50, Approved: true}).Return()
	m.uow.On("Commit").Return(nil)

	user, err := svc.GetOrCreateUser(ctx, 1, "alice")

	require.NoError(t, err)
	assert.Equal(t, created, user)
	m.assertExpectations(t)
}

func TestLedgerService_GetOrCreateUser_NoActiveSeasonUsesStartingBalance(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{StartingBalance: 25})

	m.users.On("GetByDiscordID", ctx, int64(1)).Return(nil, nil)
	m.seasons.On("GetActive", ctx).Return(nil, nil)
	m.users.On("Create", ctx, int64(1), "alice", int64(25), false).Return(&models.User{DiscordID: 1, Balance: 25}, nil)
	m.publisher.On("Publish", mock.Anything).Return()
	m.uow.On("Commit").Return(nil)

	user, err := svc.GetOrCreateUser(ctx, 1, "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(25), user.Balance)
	assert.False(t, user.Approved)
}

func TestLedgerService_HistoryPage_ClampsPage(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	rows := []*models.Transaction{{ID: 1}}
	m.transactions.On("CountByUser", ctx, int64(1), models.DirectionGiven, (*int64)(nil)).Return(21, nil)
	m.transactions.On("ListByUser", ctx, int64(1), models.DirectionGiven, (*int64)(nil), 20, 10).Return(rows, nil)

	got, window, err := svc.HistoryPage(ctx, 1, models.DirectionGiven, nil, 99, 10)

	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.Equal(t, 2, window.Page)
	assert.Equal(t, 3, window.TotalPages())
	assert.False(t, window.HasNext())
}

func TestLedgerService_HistoryPage_Empty(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	m.transactions.On("CountByUser", ctx, int64(1), models.DirectionReceived, (*int64)(nil)).Return(0, nil)

	got, window, err := svc.HistoryPage(ctx, 1, models.DirectionReceived, nil, 0, 10)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, window.TotalPages())
	m.transactions.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_ListTransactions_RejectsUnknownDirection(t *testing.T) {
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	_, err := svc.ListTransactions(context.Background(), 1, models.Direction("both"), nil, 0, 10)

	assert.Error(t, err)
	m.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_Scoreboard_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	entries := []*models.ScoreboardEntry{{DiscordID: 2, TotalReceived: 9}}
	m.transactions.On("Scoreboard", ctx, (*int64)(nil), defaultScoreboardSize).Return(entries, nil)

	got, err := svc.Scoreboard(ctx, nil, 0)

	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestLedgerService_AttachMessageRef(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := NewLedgerService(m.factory, LedgerOptions{})

	m.transactions.On("SetMessageRef", ctx, int64(42), "chan/msg").Return(nil)
	m.uow.On("Commit").Return(nil)

	require.NoError(t, svc.AttachMessageRef(ctx, 42, "chan/msg"))
	m.assertExpectations(t)
}
