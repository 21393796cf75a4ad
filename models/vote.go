package models

import (
	"time"
)

// Vote is a voter's answer to a question. There is at most one per (voter, question, season).
type Vote struct {
	ID          int64     `db:"id"`
	VoterID     int64     `db:"voter_id"`
	QuestionID  int64     `db:"question_id"`
	CandidateID int64     `db:"candidate_id"`
	SeasonID    int64     `db:"season_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// VoteTally is the number of votes a candidate received on one question
type VoteTally struct {
	CandidateID int64
	Username    string
	Votes       int
}

// VoteAnswer is one entry of a voter's answer replay
type VoteAnswer struct {
	QuestionID   int64
	QuestionText string
	CandidateID  int64
	Username     string
}
