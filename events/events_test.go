package events

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	tx := NewTransactionalBus(bus)

	received := make(chan TransferCommittedEvent, 1)
	bus.Subscribe(EventTypeTransferCommitted, func(ctx context.Context, event Event) {
		if e, ok := event.(TransferCommittedEvent); ok {
			received <- e
		}
	})

	tx.Publish(TransferCommittedEvent{TransactionID: 7, SenderID: 1, RecipientID: 2, Amount: 3})
	assert.Equal(t, 1, tx.Pending())

	tx.Flush()
	bus.Wait()

	require.Len(t, received, 1)
	e := <-received
	assert.Equal(t, int64(7), e.TransactionID)
	assert.Equal(t, int64(3), e.Amount)
	assert.Equal(t, 0, tx.Pending())
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	bus := NewBus()
	tx := NewTransactionalBus(bus)

	var calls atomic.Int32
	bus.Subscribe(EventTypeVoteRecorded, func(ctx context.Context, event Event) {
		calls.Add(1)
	})

	tx.Publish(VoteRecordedEvent{VoterID: 1, QuestionID: 2, CandidateID: 3})
	tx.Discard()
	tx.Flush()
	bus.Wait()

	assert.Equal(t, int32(0), calls.Load())
}

func TestBus_SubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewBus()

	var calls atomic.Int32
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		calls.Add(1)
	})

	bus.Emit(context.Background(), SeasonActivatedEvent{SeasonID: 1})
	bus.Emit(context.Background(), SeasonDeactivatedEvent{SeasonID: 1})
	bus.Emit(context.Background(), UserRegisteredEvent{DiscordID: 5})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var calls atomic.Int32
	bus.Subscribe(EventTypeSeasonActivated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeSeasonActivated, func(ctx context.Context, event Event) {
		calls.Add(1)
	})

	bus.Emit(context.Background(), SeasonActivatedEvent{SeasonID: 2})
	bus.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
