package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"kudos/events"
	"kudos/models"
)

const defaultScoreboardSize = 10

// LedgerOptions configures member registration
type LedgerOptions struct {
	// StartingBalance is granted to new members while no season is active
	StartingBalance int64
	// AutoApprove lets new members use the economy without an admin
	AutoApprove bool
}

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	opts       LedgerOptions
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, opts LedgerOptions) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		opts:       opts,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	user, err := s.GetUser(ctx, discordID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (s *ledgerService) GetUser(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// GetOrCreateUser returns the member, registering them on first sight. New
// members start with the active season's default balance.
func (s *ledgerService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user != nil {
		if username == "" || user.Username == username {
			return user, nil
		}
		if err := uow.UserRepository().UpdateUsername(ctx, discordID, username); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		user.Username = username
		return user, nil
	}

	balance := s.opts.StartingBalance
	season, err := uow.SeasonRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	if season != nil {
		balance = season.DefaultBalance
	}

	user, err = uow.UserRepository().Create(ctx, discordID, username, balance, s.opts.AutoApprove)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserRegisteredEvent{
		DiscordID:      user.DiscordID,
		Username:       user.Username,
		InitialBalance: user.Balance,
		Approved:       user.Approved,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"username":  username,
		"balance":   user.Balance,
	}).Info("Registered new member")

	return user, nil
}

func (s *ledgerService) ApproveUser(ctx context.Context, discordID int64, approved bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().SetApproved(ctx, discordID, approved); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *ledgerService) IsApproved(ctx context.Context, discordID int64) (bool, error) {
	user, err := s.GetUser(ctx, discordID)
	if err != nil {
		return false, err
	}
	return user.Approved, nil
}

func (s *ledgerService) ListMembers(ctx context.Context, excludeDiscordID int64) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.UserRepository().ListExcluding(ctx, excludeDiscordID)
}

// CommitTransfer debits the sender and records the transaction in one
// database transaction. The balance is re-checked by the debit itself, so a
// draft built on a stale balance fails with models.ErrInsufficientBalance.
// The recipient's balance is not credited; received kudos only count towards
// the scoreboard.
func (s *ledgerService) CommitTransfer(ctx context.Context, req models.TransferRequest) (int64, error) {
	if req.SenderID == req.RecipientID {
		return 0, models.ErrSelfTransfer
	}
	if req.Amount < 1 {
		return 0, models.ErrInvalidAmount
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return 0, models.ErrEmptyReason
	}

	return retryOnConflict(ctx, "commit_transfer", func() (int64, error) {
		return s.commitTransfer(ctx, req)
	})
}

func (s *ledgerService) commitTransfer(ctx context.Context, req models.TransferRequest) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Share lock: a concurrent activation waits for us, or we wait for it
	season, err := uow.SeasonRepository().GetByIDForShare(ctx, req.SeasonID)
	if err != nil {
		return 0, err
	}
	if season == nil || !season.Active {
		return 0, models.ErrSeasonNotActive
	}

	recipient, err := uow.UserRepository().GetByDiscordID(ctx, req.RecipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return 0, models.ErrUserNotFound
	}

	newBalance, err := uow.UserRepository().DeductBalance(ctx, req.SenderID, req.Amount)
	if err != nil {
		return 0, err
	}

	tx := &models.Transaction{
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
		SeasonID:    req.SeasonID,
		Reason:      req.Reason,
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.TransferCommittedEvent{
		TransactionID: tx.ID,
		SenderID:      tx.SenderID,
		RecipientID:   tx.RecipientID,
		Amount:        tx.Amount,
		SeasonID:      tx.SeasonID,
		NewBalance:    newBalance,
		CreatedAt:     tx.CreatedAt,
	})

	if err := uow.Commit(); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"transactionID": tx.ID,
		"senderID":      tx.SenderID,
		"recipientID":   tx.RecipientID,
		"amount":        tx.Amount,
		"seasonID":      tx.SeasonID,
	}).Info("Committed transfer")

	return tx.ID, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tx, err := uow.TransactionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, models.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, offset, limit int) ([]*models.Transaction, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.TransactionRepository().ListByUser(ctx, discordID, direction, seasonID, offset, limit)
}

// HistoryPage counts the listing first so out-of-range pages clamp to the last one
func (s *ledgerService) HistoryPage(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, page, pageSize int) ([]*models.Transaction, models.PageWindow, error) {
	if !direction.Valid() {
		return nil, models.PageWindow{}, fmt.Errorf("unknown direction %q", direction)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, models.PageWindow{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.TransactionRepository().CountByUser(ctx, discordID, direction, seasonID)
	if err != nil {
		return nil, models.PageWindow{}, err
	}

	window := models.NewPageWindow(page, pageSize, total)
	if total == 0 {
		return nil, window, nil
	}

	transactions, err := uow.TransactionRepository().ListByUser(ctx, discordID, direction, seasonID, window.Offset(), window.Limit())
	if err != nil {
		return nil, models.PageWindow{}, err
	}
	return transactions, window, nil
}

func (s *ledgerService) Scoreboard(ctx context.Context, seasonID *int64, limit int) ([]*models.ScoreboardEntry, error) {
	if limit < 1 {
		limit = defaultScoreboardSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.TransactionRepository().Scoreboard(ctx, seasonID, limit)
}

func (s *ledgerService) Summary(ctx context.Context, discordID int64, seasonID *int64) (*models.TransferSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.TransactionRepository().Summary(ctx, discordID, seasonID)
}

// AttachMessageRef is the only update a committed transaction ever receives
func (s *ledgerService) AttachMessageRef(ctx context.Context, transactionID int64, ref string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.TransactionRepository().SetMessageRef(ctx, transactionID, ref); err != nil {
		return err
	}
	return uow.Commit()
}
