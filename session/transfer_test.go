package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kudos/models"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

type transferFixture struct {
	ledger    *mockLedger
	seasons   *mockSeasons
	announcer *mockAnnouncer
	notifier  *mockNotifier
	improver  *mockImprover
	outcomes  *outcomeLog
	flow      *TransferFlow
}

func newTransferFixture() *transferFixture {
	fx := &transferFixture{
		ledger:    new(mockLedger),
		seasons:   new(mockSeasons),
		announcer: new(mockAnnouncer),
		notifier:  new(mockNotifier),
		improver:  new(mockImprover),
		outcomes:  &outcomeLog{},
	}
	fx.flow = NewTransferFlow(TransferDeps{
		Ledger:    fx.ledger,
		Seasons:   fx.seasons,
		Announcer: fx.announcer,
		Notifier:  fx.notifier,
		Improver:  fx.improver,
		Recorder:  fx.outcomes,
	}, 0)
	return fx
}

func (fx *transferFixture) assertExpectations(t *testing.T) {
	fx.ledger.AssertExpectations(t)
	fx.seasons.AssertExpectations(t)
	fx.announcer.AssertExpectations(t)
	fx.notifier.AssertExpectations(t)
	fx.improver.AssertExpectations(t)
}

// toConfirming drives alice's draft to Confirming: 30 kudos to bob for "great demo"
func (fx *transferFixture) toConfirming(t *testing.T, ctx context.Context, balance int64) {
	t.Helper()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil).Once()
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob, carol), nil).Once()
	fx.ledger.On("GetBalance", ctx, alice).Return(balance, nil).Once()

	_, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)
	_, err = fx.flow.SelectRecipient(ctx, alice, bob)
	require.NoError(t, err)
	_, err = fx.flow.SelectAmount(ctx, alice, 30)
	require.NoError(t, err)
	v, err := fx.flow.SubmitReason(ctx, alice, "great demo")
	require.NoError(t, err)
	require.Equal(t, TransferConfirming, v.State)
}

func transferRequest() models.TransferRequest {
	return models.TransferRequest{
		SenderID:    alice,
		RecipientID: bob,
		Amount:      30,
		SeasonID:    5,
		Reason:      "great demo",
	}
}

func TestTransferFlow_HappyPath(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	tx := &models.Transaction{ID: 77, SenderID: alice, RecipientID: bob, Amount: 30, SeasonID: 5, Reason: "great demo"}
	fx.ledger.On("CommitTransfer", ctx, transferRequest()).Return(int64(77), nil).Once()
	fx.ledger.On("GetTransaction", ctx, int64(77)).Return(tx, nil).Once()
	fx.announcer.On("Announce", ctx, tx).Return("chan/msg", nil).Once()
	fx.ledger.On("AttachMessageRef", ctx, int64(77), "chan/msg").Return(nil).Once()
	fx.notifier.On("Notify", ctx, bob, mock.AnythingOfType("string")).Return(nil).Once()

	v, err := fx.flow.Confirm(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferCommitted, v.State)
	assert.Equal(t, int64(77), v.TransactionID)
	assert.Equal(t, "chan/msg", v.MessageRef)

	_, err = fx.flow.Current(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.Equal(t, []string{"transfer:committed"}, fx.outcomes.outcomes)
	fx.assertExpectations(t)
}

func TestTransferFlow_StartWithoutOtherMembers(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return([]*models.User{}, nil)

	_, err := fx.flow.Start(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoEligibleRecipients)
	assert.Equal(t, 0, fx.flow.Registry().Len())
	fx.assertExpectations(t)
}

func TestTransferFlow_StartWithoutActiveSeason(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(nil, nil)

	_, err := fx.flow.Start(ctx, alice)
	assert.ErrorIs(t, err, models.ErrSeasonNotActive)
	assert.Equal(t, 0, fx.flow.Registry().Len())
}

func TestTransferFlow_FailedStartDropsPreviousDraft(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.seasons.On("GetActiveSeason", ctx).Return(nil, nil).Once()

	_, err := fx.flow.Start(ctx, alice)
	assert.ErrorIs(t, err, models.ErrSeasonNotActive)

	_, err = fx.flow.Current(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.Equal(t, 0, fx.flow.Registry().Len())
}

func TestTransferFlow_ZeroBalanceReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)
	fx.ledger.On("GetBalance", ctx, alice).Return(int64(0), nil)

	_, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)

	_, err = fx.flow.SelectRecipient(ctx, alice, bob)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	_, err = fx.flow.Current(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
}

func TestTransferFlow_MaxAmountIsCapped(t *testing.T) {
	tests := []struct {
		balance int64
		max     int64
	}{
		{balance: 40, max: 40},
		{balance: 100, max: 100},
		{balance: 250, max: 100},
	}

	for _, tt := range tests {
		ctx := context.Background()
		fx := newTransferFixture()
		fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
		fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)
		fx.ledger.On("GetBalance", ctx, alice).Return(tt.balance, nil)

		_, err := fx.flow.Start(ctx, alice)
		require.NoError(t, err)
		v, err := fx.flow.SelectRecipient(ctx, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, tt.max, v.MaxAmount, "balance %d", tt.balance)
	}
}

func TestTransferFlow_AmountOutOfRange(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)
	fx.ledger.On("GetBalance", ctx, alice).Return(int64(40), nil)

	_, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)
	_, err = fx.flow.SelectRecipient(ctx, alice, bob)
	require.NoError(t, err)

	for _, amount := range []int64{0, -5, 41} {
		_, err = fx.flow.SelectAmount(ctx, alice, amount)
		assert.ErrorIs(t, err, models.ErrInvalidAmount, "amount %d", amount)
	}

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferSelectingAmount, v.State)

	v, err = fx.flow.SelectAmount(ctx, alice, 40)
	require.NoError(t, err)
	assert.Equal(t, TransferEnteringReason, v.State)
}

func TestTransferFlow_EmptyReason(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)
	fx.ledger.On("GetBalance", ctx, alice).Return(int64(40), nil)

	_, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)
	_, err = fx.flow.SelectRecipient(ctx, alice, bob)
	require.NoError(t, err)
	_, err = fx.flow.SelectAmount(ctx, alice, 10)
	require.NoError(t, err)

	_, err = fx.flow.SubmitReason(ctx, alice, "   ")
	assert.ErrorIs(t, err, models.ErrEmptyReason)

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferEnteringReason, v.State)
}

func TestTransferFlow_UnknownRecipient(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)

	_, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)

	_, err = fx.flow.SelectRecipient(ctx, alice, carol)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferSelectingRecipient, v.State)
}

func TestTransferFlow_UnexpectedStepAndNoSession(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()

	_, err := fx.flow.SelectAmount(ctx, alice, 10)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.ErrorIs(t, fx.flow.Cancel(ctx, alice), models.ErrNoSession)

	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(bob), nil)
	_, err = fx.flow.Start(ctx, alice)
	require.NoError(t, err)

	_, err = fx.flow.SelectAmount(ctx, alice, 10)
	assert.ErrorIs(t, err, models.ErrUnexpectedStep)
	_, err = fx.flow.Confirm(ctx, alice)
	assert.ErrorIs(t, err, models.ErrUnexpectedStep)

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferSelectingRecipient, v.State)
}

func TestTransferFlow_CommitTimeInsufficientBalanceDiscards(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 30)

	fx.ledger.On("CommitTransfer", ctx, transferRequest()).
		Return(int64(0), models.ErrInsufficientBalance).Once()

	_, err := fx.flow.Confirm(ctx, alice)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	_, err = fx.flow.Current(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.Equal(t, []string{"transfer:discarded"}, fx.outcomes.outcomes)
	fx.announcer.AssertNotCalled(t, "Announce", mock.Anything, mock.Anything)
	fx.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferFlow_StoreFaultKeepsDraft(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.ledger.On("CommitTransfer", ctx, transferRequest()).
		Return(int64(0), errors.New("connection reset")).Once()

	_, err := fx.flow.Confirm(ctx, alice)
	require.Error(t, err)
	assert.False(t, models.IsExpected(err))

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferConfirming, v.State)
	assert.Equal(t, int64(30), v.Amount)
	assert.Equal(t, "great demo", v.Reason)
}

func TestTransferFlow_ConcurrentModificationKeepsDraft(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.ledger.On("CommitTransfer", ctx, transferRequest()).
		Return(int64(0), models.ErrConcurrentModification).Once()

	_, err := fx.flow.Confirm(ctx, alice)
	assert.ErrorIs(t, err, models.ErrConcurrentModification)

	v, err := fx.flow.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferConfirming, v.State)
}

func TestTransferFlow_ConcurrentConfirmCommitsOnce(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	tx := &models.Transaction{ID: 77, SenderID: alice, RecipientID: bob, Amount: 30, SeasonID: 5, Reason: "great demo"}
	fx.ledger.On("CommitTransfer", ctx, transferRequest()).
		After(50*time.Millisecond).
		Return(int64(77), nil)
	fx.ledger.On("GetTransaction", ctx, int64(77)).Return(tx, nil).Maybe()
	fx.announcer.On("Announce", ctx, tx).Return("chan/msg", nil).Maybe()
	fx.ledger.On("AttachMessageRef", ctx, int64(77), "chan/msg").Return(nil).Maybe()
	fx.notifier.On("Notify", ctx, bob, mock.AnythingOfType("string")).Return(nil).Maybe()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.flow.Confirm(ctx, alice)
		}(i)
	}
	wg.Wait()

	fx.ledger.AssertNumberOfCalls(t, "CommitTransfer", 1)
	committed := 0
	for _, err := range errs {
		if err == nil {
			committed++
			continue
		}
		assert.ErrorIs(t, err, models.ErrNoSession)
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, []string{"transfer:committed"}, fx.outcomes.outcomes)
}

func TestDiscardsDraft(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "insufficient balance", err: models.ErrInsufficientBalance, want: true},
		{name: "season ended", err: models.ErrSeasonNotActive, want: true},
		{name: "recipient gone", err: fmt.Errorf("recipient: %w", models.ErrUserNotFound), want: true},
		{name: "lost race", err: models.ErrConcurrentModification, want: false},
		{name: "store fault", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscardsDraft(tt.err))
		})
	}
}

func TestTransferFlow_CommitTimeMissingRecipientDiscards(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.ledger.On("CommitTransfer", ctx, transferRequest()).
		Return(int64(0), models.ErrUserNotFound).Once()

	_, err := fx.flow.Confirm(ctx, alice)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = fx.flow.Current(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.Equal(t, []string{"transfer:discarded"}, fx.outcomes.outcomes)
}

func TestTransferFlow_AnnouncementFailureDoesNotUndoCommit(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.ledger.On("CommitTransfer", ctx, transferRequest()).Return(int64(9), nil).Once()
	fx.ledger.On("GetTransaction", ctx, int64(9)).Return(nil, errors.New("timeout")).Once()
	fx.announcer.On("Announce", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.ID == 9 && tx.Amount == 30
	})).Return("", errors.New("discord down")).Once()
	fx.notifier.On("Notify", ctx, bob, mock.AnythingOfType("string")).Return(errors.New("dms closed")).Once()

	v, err := fx.flow.Confirm(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, TransferCommitted, v.State)
	assert.Empty(t, v.MessageRef)
	fx.ledger.AssertNotCalled(t, "AttachMessageRef", mock.Anything, mock.Anything, mock.Anything)
	fx.assertExpectations(t)
}

func TestTransferFlow_ImproveReason(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.improver.On("ImproveReasonText", ctx, "great demo", mock.AnythingOfType("string")).
		Return("Great demo.", nil).Once()

	v, err := fx.flow.ImproveReason(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Great demo.", v.Reason)
	assert.True(t, v.Improved)

	v, err = fx.flow.RestoreReason(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "great demo", v.Reason)
	assert.False(t, v.Improved)
	fx.assertExpectations(t)
}

func TestTransferFlow_ImproveReasonFailureKeepsText(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	fx.improver.On("ImproveReasonText", ctx, "great demo", mock.AnythingOfType("string")).
		Return("", errors.New("unavailable")).Once()

	v, err := fx.flow.ImproveReason(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "great demo", v.Reason)
	assert.Equal(t, TransferConfirming, v.State)
}

func TestTransferFlow_CancelFromAnyState(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.toConfirming(t, ctx, 100)

	require.NoError(t, fx.flow.Cancel(ctx, alice))
	_, err := fx.flow.Confirm(ctx, alice)
	assert.ErrorIs(t, err, models.ErrNoSession)
	assert.Equal(t, []string{"transfer:cancelled"}, fx.outcomes.outcomes)
	fx.ledger.AssertNotCalled(t, "CommitTransfer", mock.Anything, mock.Anything)
}

func TestTransferFlow_RecipientPaging(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture()
	fx.flow.SetPageSize(2)

	fx.seasons.On("GetActiveSeason", ctx).Return(&models.Season{ID: 5, Active: true}, nil)
	fx.ledger.On("ListMembers", ctx, alice).Return(members(10, 11, 12, 13, 14), nil)

	v, err := fx.flow.Start(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, v.Recipients, 2)
	assert.Equal(t, 3, v.Window.TotalPages())
	assert.False(t, v.Window.HasPrev())

	v, err = fx.flow.TurnPage(ctx, alice, 2)
	require.NoError(t, err)
	require.Len(t, v.Recipients, 1)
	assert.Equal(t, int64(14), v.Recipients[0].DiscordID)
	assert.False(t, v.Window.HasNext())

	v, err = fx.flow.TurnPage(ctx, alice, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Window.Page)
}
