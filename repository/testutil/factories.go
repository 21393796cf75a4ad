package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kudos/models"
)

// SeedUser inserts an approved member with the given balance
func (td *TestDatabase) SeedUser(t *testing.T, discordID int64, username string, balance int64) *models.User {
	t.Helper()

	user := &models.User{DiscordID: discordID, Username: username, Balance: balance, Approved: true}
	err := td.DB.QueryRow(context.Background(), `
		INSERT INTO users (discord_id, username, balance, approved)
		VALUES ($1, $2, $3, TRUE)
		RETURNING created_at, updated_at
	`, discordID, username, balance).Scan(&user.CreatedAt, &user.UpdatedAt)
	require.NoError(t, err)
	return user
}

// SeedSeason inserts a season, optionally marking it active
func (td *TestDatabase) SeedSeason(t *testing.T, name string, defaultBalance int64, active bool) *models.Season {
	t.Helper()

	season := &models.Season{Name: name, DefaultBalance: defaultBalance, Active: active}
	err := td.DB.QueryRow(context.Background(), `
		INSERT INTO seasons (name, default_balance, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, name, defaultBalance, active).Scan(&season.ID, &season.CreatedAt, &season.UpdatedAt)
	require.NoError(t, err)
	return season
}

// SeedQuestion inserts a question for a season
func (td *TestDatabase) SeedQuestion(t *testing.T, seasonID int64, text string, active bool) *models.Question {
	t.Helper()

	question := &models.Question{SeasonID: seasonID, Text: text, Active: active}
	err := td.DB.QueryRow(context.Background(), `
		INSERT INTO questions (season_id, text, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, seasonID, text, active).Scan(&question.ID, &question.CreatedAt)
	require.NoError(t, err)
	return question
}

// Balance reads a member's balance directly
func (td *TestDatabase) Balance(t *testing.T, discordID int64) int64 {
	t.Helper()

	var balance int64
	err := td.DB.QueryRow(context.Background(), `SELECT balance FROM users WHERE discord_id = $1`, discordID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CountRows counts rows of a table matching an optional WHERE clause
func (td *TestDatabase) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM ` + table
	if where != "" {
		query += ` WHERE ` + where
	}

	var count int
	require.NoError(t, td.DB.QueryRow(context.Background(), query, args...).Scan(&count))
	return count
}
