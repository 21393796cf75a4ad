package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

const questionColumns = `id, season_id, text, active, created_at`

// QuestionRepository implements service.QuestionRepository
type QuestionRepository struct {
	q queryable
}

// NewQuestionRepository creates a question repository on the connection pool
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{q: db.Pool}
}

func newQuestionRepositoryWithTx(tx queryable) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	if err := row.Scan(&q.ID, &q.SeasonID, &q.Text, &q.Active, &q.CreatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) get(ctx context.Context, query string, args ...any) (*models.Question, error) {
	question, err := scanQuestion(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get question: %w", err))
	}
	return question, nil
}

func (r *QuestionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Question, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

// Create inserts an active question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (season_id, text)
		VALUES ($1, $2)
		RETURNING id, active, created_at
	`
	err := r.q.QueryRow(ctx, query, question.SeasonID, question.Text).Scan(
		&question.ID,
		&question.Active,
		&question.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetByID retrieves a question by id
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	return r.get(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
}

// GetByIDForShare reads a question under a share lock so it cannot be
// deactivated while a vote on it is being recorded.
func (r *QuestionRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Question, error) {
	return r.get(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1 FOR SHARE`, id)
}

// ListBySeason returns a season's questions in id order
func (r *QuestionRepository) ListBySeason(ctx context.Context, seasonID int64, activeOnly bool) ([]*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE season_id = $1 AND (active OR NOT $2)
		ORDER BY id
	`
	return r.list(ctx, query, seasonID, activeOnly)
}

// SetActive enables or disables a question
func (r *QuestionRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE questions SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set question %d active=%t: %w", id, active, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrQuestionNotFound
	}
	return nil
}

// NextUnanswered returns the lowest-id active question without a vote from voterID
func (r *QuestionRepository) NextUnanswered(ctx context.Context, voterID, seasonID int64) (*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		WHERE q.season_id = $2
		  AND q.active
		  AND NOT EXISTS (
			SELECT 1 FROM votes v
			WHERE v.question_id = q.id
			  AND v.voter_id = $1
			  AND v.season_id = $2
		  )
		ORDER BY q.id
		LIMIT 1
	`
	return r.get(ctx, query, voterID, seasonID)
}

// CountActive counts a season's active questions
func (r *QuestionRepository) CountActive(ctx context.Context, seasonID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE season_id = $1 AND active`, seasonID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
