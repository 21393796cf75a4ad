package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"kudos/events"
	"kudos/models"
)

type voteService struct {
	uowFactory UnitOfWorkFactory
}

// NewVoteService creates a new vote service
func NewVoteService(uowFactory UnitOfWorkFactory) VoteService {
	return &voteService{
		uowFactory: uowFactory,
	}
}

// NextUnansweredQuestion returns nil once the voter has answered every active question
func (s *voteService) NextUnansweredQuestion(ctx context.Context, voterID, seasonID int64) (*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.QuestionRepository().NextUnanswered(ctx, voterID, seasonID)
}

// RecordVote inserts the voter's answer or overwrites their earlier one
func (s *voteService) RecordVote(ctx context.Context, voterID, questionID, candidateID, seasonID int64) error {
	_, err := retryOnConflict(ctx, "record_vote", func() (struct{}, error) {
		return struct{}{}, s.recordVote(ctx, voterID, questionID, candidateID, seasonID)
	})
	return err
}

func (s *voteService) recordVote(ctx context.Context, voterID, questionID, candidateID, seasonID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByIDForShare(ctx, questionID)
	if err != nil {
		return err
	}
	if question == nil || question.SeasonID != seasonID {
		return models.ErrQuestionNotFound
	}
	if !question.Active {
		return models.ErrQuestionInactive
	}

	for _, id := range []int64{voterID, candidateID} {
		user, err := uow.UserRepository().GetByDiscordID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return models.ErrUserNotFound
		}
	}

	vote := &models.Vote{
		VoterID:     voterID,
		QuestionID:  questionID,
		CandidateID: candidateID,
		SeasonID:    seasonID,
	}
	overwritten, err := uow.VoteRepository().Upsert(ctx, vote)
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.VoteRecordedEvent{
		VoteID:      vote.ID,
		VoterID:     voterID,
		QuestionID:  questionID,
		CandidateID: candidateID,
		SeasonID:    seasonID,
		Changed:     overwritten,
	})

	if err := uow.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"voterID":     voterID,
		"questionID":  questionID,
		"candidateID": candidateID,
		"overwritten": overwritten,
	}).Debug("Recorded vote")
	return nil
}

// HasAnsweredAll is true when every active question has a vote from the voter.
// A season without active questions counts as complete.
func (s *voteService) HasAnsweredAll(ctx context.Context, voterID, seasonID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.QuestionRepository().CountActive(ctx, seasonID)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return true, nil
	}

	answered, err := uow.VoteRepository().CountAnsweredActive(ctx, voterID, seasonID)
	if err != nil {
		return false, err
	}
	return answered >= total, nil
}

func (s *voteService) ResultsFor(ctx context.Context, questionID int64) ([]*models.VoteTally, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, models.ErrQuestionNotFound
	}
	return uow.VoteRepository().ResultsFor(ctx, questionID)
}

func (s *voteService) AnswersFor(ctx context.Context, voterID, seasonID int64) ([]*models.VoteAnswer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.VoteRepository().AnswersFor(ctx, voterID, seasonID)
}

func (s *voteService) CreateQuestion(ctx context.Context, seasonID int64, text string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.ErrEmptyQuestion
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().GetByID(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, models.ErrSeasonNotFound
	}

	question := &models.Question{SeasonID: seasonID, Text: text}
	if err := uow.QuestionRepository().Create(ctx, question); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *voteService) SetQuestionActive(ctx context.Context, questionID int64, active bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.QuestionRepository().SetActive(ctx, questionID, active); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *voteService) ListQuestions(ctx context.Context, seasonID int64, activeOnly bool) ([]*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.QuestionRepository().ListBySeason(ctx, seasonID, activeOnly)
}

func (s *voteService) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, models.ErrQuestionNotFound
	}
	return question, nil
}
