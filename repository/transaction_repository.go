package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

const transactionColumns = `id, sender_id, recipient_id, amount, season_id, reason, message_ref, created_at`

// TransactionRepository implements service.TransactionRepository
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a transaction repository on the connection pool
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.RecipientID,
		&t.Amount,
		&t.SeasonID,
		&t.Reason,
		&t.MessageRef,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// directionColumn maps a direction to the column identifying the member
func directionColumn(direction models.Direction) (string, error) {
	switch direction {
	case models.DirectionGiven:
		return "sender_id", nil
	case models.DirectionReceived:
		return "recipient_id", nil
	default:
		return "", fmt.Errorf("unknown direction %q", direction)
	}
}

// Create inserts a transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (sender_id, recipient_id, amount, season_id, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		tx.SenderID,
		tx.RecipientID,
		tx.Amount,
		tx.SeasonID,
		tx.Reason,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return classify(fmt.Errorf("failed to create transaction: %w", err))
	}
	return nil
}

// GetByID retrieves a transaction by id
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListByUser returns a page of a member's given or received transfers, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64, offset, limit int) ([]*models.Transaction, error) {
	column, err := directionColumn(direction)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + column + ` = $1
		  AND ($2::bigint IS NULL OR season_id = $2)
		ORDER BY created_at DESC, id DESC
		OFFSET $3 LIMIT $4
	`

	rows, err := r.q.Query(ctx, query, discordID, seasonID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// CountByUser counts a member's given or received transfers
func (r *TransactionRepository) CountByUser(ctx context.Context, discordID int64, direction models.Direction, seasonID *int64) (int, error) {
	column, err := directionColumn(direction)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE ` + column + ` = $1
		  AND ($2::bigint IS NULL OR season_id = $2)
	`

	var count int
	if err := r.q.QueryRow(ctx, query, discordID, seasonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Scoreboard ranks recipients by total received. Equal totals keep the order
// in which each member first received kudos.
func (r *TransactionRepository) Scoreboard(ctx context.Context, seasonID *int64, limit int) ([]*models.ScoreboardEntry, error) {
	query := `
		SELECT u.discord_id, u.username, SUM(t.amount)::bigint AS total
		FROM transactions t
		JOIN users u ON u.discord_id = t.recipient_id
		WHERE ($1::bigint IS NULL OR t.season_id = $1)
		GROUP BY u.discord_id, u.username
		ORDER BY total DESC, MIN(t.id) ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.ScoreboardEntry
	for rows.Next() {
		var e models.ScoreboardEntry
		if err := rows.Scan(&e.DiscordID, &e.Username, &e.TotalReceived); err != nil {
			return nil, fmt.Errorf("failed to scan scoreboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scoreboard: %w", err)
	}
	return entries, nil
}

// Summary aggregates given and received totals for a member
func (r *TransactionRepository) Summary(ctx context.Context, discordID int64, seasonID *int64) (*models.TransferSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE sender_id = $1), 0)::bigint,
			COALESCE(SUM(amount) FILTER (WHERE recipient_id = $1), 0)::bigint,
			COUNT(*) FILTER (WHERE sender_id = $1),
			COUNT(*) FILTER (WHERE recipient_id = $1)
		FROM transactions
		WHERE (sender_id = $1 OR recipient_id = $1)
		  AND ($2::bigint IS NULL OR season_id = $2)
	`

	var s models.TransferSummary
	err := r.q.QueryRow(ctx, query, discordID, seasonID).Scan(
		&s.TotalGiven,
		&s.TotalReceived,
		&s.GivenCount,
		&s.ReceivedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions for %d: %w", discordID, err)
	}
	return &s, nil
}

// SetMessageRef records the announcement reference. An already attached
// reference is never overwritten.
func (r *TransactionRepository) SetMessageRef(ctx context.Context, id int64, ref string) error {
	query := `UPDATE transactions SET message_ref = $2 WHERE id = $1 AND message_ref IS NULL`

	tag, err := r.q.Exec(ctx, query, id, ref)
	if err != nil {
		return fmt.Errorf("failed to set message reference on transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return models.ErrTransactionNotFound
		}
	}
	return nil
}
