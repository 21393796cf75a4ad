package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/events"
	"kudos/service"
)

// unitOfWork implements service.UnitOfWork
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	seasonRepo       service.SeasonRepository
	transactionRepo  service.TransactionRepository
	questionRepo     service.QuestionRepository
	voteRepo         service.VoteRepository
	observe          QueryObserver
	started          time.Time
}

// QueryObserver is told how long each store transaction stayed open
type QueryObserver func(repository, method string, duration time.Duration)

// FactoryOption configures a UnitOfWork factory
type FactoryOption func(*unitOfWorkFactory)

// WithQueryObserver reports the duration of every committed or rolled back transaction
func WithQueryObserver(observe QueryObserver) FactoryOption {
	return func(f *unitOfWorkFactory) {
		f.observe = observe
	}
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus, opts ...FactoryOption) service.UnitOfWorkFactory {
	f := &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
	observe  QueryObserver
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
		observe:          f.observe,
	}
}

func (u *unitOfWork) record(method string) {
	if u.observe != nil && !u.started.IsZero() {
		u.observe("unit_of_work", method, time.Since(u.started))
	}
}

// Begin starts a read committed transaction and binds the repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginLedgerTx(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.ctx = ctx
	u.started = time.Now()

	u.userRepo = newUserRepositoryWithTx(tx)
	u.seasonRepo = newSeasonRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.questionRepo = newQuestionRepositoryWithTx(tx)
	u.voteRepo = newVoteRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and then releases the pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	u.record("commit")
	if err != nil {
		u.transactionalBus.Discard()
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}

	u.transactionalBus.Flush()
	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.record("rollback")
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) SeasonRepository() service.SeasonRepository {
	if u.seasonRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.seasonRepo
}

func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

func (u *unitOfWork) QuestionRepository() service.QuestionRepository {
	if u.questionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.questionRepo
}

func (u *unitOfWork) VoteRepository() service.VoteRepository {
	if u.voteRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.voteRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
