package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

const seasonColumns = `id, name, default_balance, active, description, created_at, updated_at`

// SeasonRepository implements service.SeasonRepository
type SeasonRepository struct {
	q queryable
}

// NewSeasonRepository creates a season repository on the connection pool
func NewSeasonRepository(db *database.DB) *SeasonRepository {
	return &SeasonRepository{q: db.Pool}
}

func newSeasonRepositoryWithTx(tx queryable) *SeasonRepository {
	return &SeasonRepository{q: tx}
}

func scanSeason(row pgx.Row) (*models.Season, error) {
	var s models.Season
	if err := row.Scan(&s.ID, &s.Name, &s.DefaultBalance, &s.Active, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts an inactive season
func (r *SeasonRepository) Create(ctx context.Context, season *models.Season) error {
	query := `
		INSERT INTO seasons (name, default_balance, description)
		VALUES ($1, $2, $3)
		RETURNING id, active, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, season.Name, season.DefaultBalance, season.Description).Scan(
		&season.ID,
		&season.Active,
		&season.CreatedAt,
		&season.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

// GetByID retrieves a season by id
func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	return r.get(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id)
}

// GetByIDForShare reads a season under a share lock. Activation takes an
// exclusive row lock, so transfers and activation serialize on the season row.
func (r *SeasonRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Season, error) {
	return r.get(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1 FOR SHARE`, id)
}

// GetActive returns the active season
func (r *SeasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	return r.get(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE active`)
}

func (r *SeasonRepository) get(ctx context.Context, query string, args ...any) (*models.Season, error) {
	season, err := scanSeason(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get season: %w", err))
	}
	return season, nil
}

// List returns every season, newest first
func (r *SeasonRepository) List(ctx context.Context) ([]*models.Season, error) {
	rows, err := r.q.Query(ctx, `SELECT `+seasonColumns+` FROM seasons ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasons: %w", err)
	}
	return seasons, nil
}

// DeactivateAll clears the active flag everywhere
func (r *SeasonRepository) DeactivateAll(ctx context.Context) error {
	query := `UPDATE seasons SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE active`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return classify(fmt.Errorf("failed to deactivate seasons: %w", err))
	}
	return nil
}

// SetActive updates a season's active flag. Setting it while another season is
// active violates seasons_single_active_idx.
func (r *SeasonRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE seasons SET active = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, active)
	if err != nil {
		return classify(fmt.Errorf("failed to set season %d active=%t: %w", id, active, err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSeasonNotFound
	}
	return nil
}
