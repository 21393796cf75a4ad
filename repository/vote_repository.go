package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

// VoteRepository implements service.VoteRepository
type VoteRepository struct {
	q queryable
}

// NewVoteRepository creates a vote repository on the connection pool
func NewVoteRepository(db *database.DB) *VoteRepository {
	return &VoteRepository{q: db.Pool}
}

func newVoteRepositoryWithTx(tx queryable) *VoteRepository {
	return &VoteRepository{q: tx}
}

// Upsert creates the vote or moves the existing one to the new candidate.
// xmax is zero on the returned row only when a fresh row was inserted.
func (r *VoteRepository) Upsert(ctx context.Context, vote *models.Vote) (bool, error) {
	query := `
		INSERT INTO votes (voter_id, question_id, candidate_id, season_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (voter_id, question_id, season_id)
		DO UPDATE SET
			candidate_id = EXCLUDED.candidate_id,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.q.QueryRow(ctx, query,
		vote.VoterID,
		vote.QuestionID,
		vote.CandidateID,
		vote.SeasonID,
	).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt, &inserted)
	if err != nil {
		return false, classify(fmt.Errorf("failed to create or update vote: %w", err))
	}
	return !inserted, nil
}

// GetByVoter returns the voter's vote on a question
func (r *VoteRepository) GetByVoter(ctx context.Context, voterID, questionID, seasonID int64) (*models.Vote, error) {
	query := `
		SELECT id, voter_id, question_id, candidate_id, season_id, created_at, updated_at
		FROM votes
		WHERE voter_id = $1 AND question_id = $2 AND season_id = $3
	`

	var v models.Vote
	err := r.q.QueryRow(ctx, query, voterID, questionID, seasonID).Scan(
		&v.ID,
		&v.VoterID,
		&v.QuestionID,
		&v.CandidateID,
		&v.SeasonID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &v, nil
}

// CountAnsweredActive counts votes the voter cast on currently active questions
func (r *VoteRepository) CountAnsweredActive(ctx context.Context, voterID, seasonID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM votes v
		JOIN questions q ON q.id = v.question_id
		WHERE v.voter_id = $1 AND v.season_id = $2 AND q.active
	`

	var count int
	if err := r.q.QueryRow(ctx, query, voterID, seasonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count answered questions: %w", err)
	}
	return count, nil
}

// ResultsFor tallies votes per candidate, highest first, ties by candidate id
func (r *VoteRepository) ResultsFor(ctx context.Context, questionID int64) ([]*models.VoteTally, error) {
	query := `
		SELECT v.candidate_id, COALESCE(u.username, ''), COUNT(*) AS votes
		FROM votes v
		LEFT JOIN users u ON u.discord_id = v.candidate_id
		WHERE v.question_id = $1
		GROUP BY v.candidate_id, u.username
		ORDER BY votes DESC, v.candidate_id ASC
	`

	rows, err := r.q.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for question %d: %w", questionID, err)
	}
	defer rows.Close()

	var tallies []*models.VoteTally
	for rows.Next() {
		var t models.VoteTally
		if err := rows.Scan(&t.CandidateID, &t.Username, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}
	return tallies, nil
}

// AnswersFor replays the voter's answers for the season in question-id order
func (r *VoteRepository) AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error) {
	query := `
		SELECT q.id, q.text, v.candidate_id, COALESCE(u.username, '')
		FROM votes v
		JOIN questions q ON q.id = v.question_id
		LEFT JOIN users u ON u.discord_id = v.candidate_id
		WHERE v.voter_id = $1 AND v.season_id = $2
		ORDER BY q.id
	`

	rows, err := r.q.Query(ctx, query, voterID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.VoteAnswer
	for rows.Next() {
		var a models.VoteAnswer
		if err := rows.Scan(&a.QuestionID, &a.QuestionText, &a.CandidateID, &a.Username); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}
	return answers, nil
}
