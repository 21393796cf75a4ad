package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

const userColumns = `discord_id, username, balance, approved, created_at, updated_at`

// UserRepository implements service.UserRepository
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a user repository on the connection pool
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.Approved,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", discordID, err)
	}
	return user, nil
}

// Create inserts a user. A concurrent registration of the same member is
// resolved by returning the row that won.
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, balance int64, approved bool) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance, approved)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (discord_id) DO UPDATE SET username = users.username
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, username, balance, approved))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", discordID, err)
	}
	return user, nil
}

// UpdateUsername refreshes the stored display name
func (r *UserRepository) UpdateUsername(ctx context.Context, discordID int64, username string) error {
	query := `
		UPDATE users
		SET username = $2, updated_at = CURRENT_TIMESTAMP
		WHERE discord_id = $1 AND username <> $2
	`
	if _, err := r.q.Exec(ctx, query, discordID, username); err != nil {
		return fmt.Errorf("failed to update username for %d: %w", discordID, err)
	}
	return nil
}

// DeductBalance debits amount in a single conditional update, so two
// concurrent debits can never take the balance below zero.
func (r *UserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance - $2, updated_at = CURRENT_TIMESTAMP
		WHERE discord_id = $1 AND balance >= $2
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, discordID, amount).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, classify(fmt.Errorf("failed to deduct balance for %d: %w", discordID, err))
	}

	// No row updated: either the user is missing or the balance is too low
	user, err := r.GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, models.ErrUserNotFound
	}
	return 0, fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, user.Balance, amount)
}

// ResetAllBalances overwrites every member's balance
func (r *UserRepository) ResetAllBalances(ctx context.Context, balance int64) (int64, error) {
	query := `UPDATE users SET balance = $1, updated_at = CURRENT_TIMESTAMP`

	tag, err := r.q.Exec(ctx, query, balance)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to reset balances: %w", err))
	}
	return tag.RowsAffected(), nil
}

// SetApproved updates the approval flag
func (r *UserRepository) SetApproved(ctx context.Context, discordID int64, approved bool) error {
	query := `UPDATE users SET approved = $2, updated_at = CURRENT_TIMESTAMP WHERE discord_id = $1`

	tag, err := r.q.Exec(ctx, query, discordID, approved)
	if err != nil {
		return fmt.Errorf("failed to set approval for %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// ListExcluding returns approved members other than discordID
func (r *UserRepository) ListExcluding(ctx context.Context, discordID int64) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE discord_id <> $1 AND approved
		ORDER BY LOWER(username), discord_id
	`

	rows, err := r.q.Query(ctx, query, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
