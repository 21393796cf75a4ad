package session

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"kudos/models"
)

// VoteState is a step of the guided questionnaire
type VoteState int

const (
	VoteIdle VoteState = iota
	VoteAwaitingAnswer
	VoteCompleted
)

func (s VoteState) String() string {
	switch s {
	case VoteIdle:
		return "idle"
	case VoteAwaitingAnswer:
		return "awaiting_answer"
	case VoteCompleted:
		return "completed"
	default:
		return fmt.Sprintf("vote_state(%d)", int(s))
	}
}

// Ballot is a voter's position in the questionnaire
type Ballot struct {
	VoterID    int64
	SeasonID   int64
	State      VoteState
	Question   *models.Question
	Candidates []*models.User
	Page       int
}

// VoteView is what the caller renders after each step. Answers is only set
// once the questionnaire is complete.
type VoteView struct {
	State      VoteState
	Question   *models.Question
	Candidates []*models.User
	Window     models.PageWindow
	Answers    []*models.VoteAnswer
}

// VoteDeps are the collaborators of a VoteFlow. Recorder is optional.
type VoteDeps struct {
	Votes    Votes
	Ledger   Ledger
	Seasons  Seasons
	Recorder OutcomeRecorder
}

// VoteFlow walks voters through every unanswered question of the active season
type VoteFlow struct {
	deps     VoteDeps
	ballots  *Registry[Ballot]
	pageSize int
}

// NewVoteFlow creates a flow whose ballots expire after ttl of inactivity (0 disables expiry)
func NewVoteFlow(deps VoteDeps, ttl time.Duration) *VoteFlow {
	f := &VoteFlow{
		deps:     deps,
		ballots:  NewRegistry[Ballot](ttl),
		pageSize: DefaultPageSize,
	}
	f.ballots.OnExpire(func(userID int64, b Ballot) {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"question": questionID(b.Question),
		}).Debug("Ballot expired")
		f.record(context.Background(), OutcomeExpired)
	})
	return f
}

func questionID(q *models.Question) int64 {
	if q == nil {
		return 0
	}
	return q.ID
}

// Registry exposes the ballot store so the caller can run its janitor
func (f *VoteFlow) Registry() *Registry[Ballot] {
	return f.ballots
}

// SetPageSize changes how many candidates are offered per page
func (f *VoteFlow) SetPageSize(n int) {
	if n > 0 {
		f.pageSize = n
	}
}

func (f *VoteFlow) record(ctx context.Context, outcome string) {
	if f.deps.Recorder != nil {
		f.deps.Recorder.RecordSessionOutcome(ctx, flowVote, outcome)
	}
}

func (f *VoteFlow) view(b Ballot) *VoteView {
	page, window := models.Paginate(b.Candidates, b.Page, f.pageSize)
	return &VoteView{
		State:      b.State,
		Question:   b.Question,
		Candidates: page,
		Window:     window,
	}
}

func (f *VoteFlow) load(userID int64) (Ballot, error) {
	b, ok := f.ballots.Get(userID)
	if !ok {
		return b, models.ErrNoSession
	}
	if b.State != VoteAwaitingAnswer {
		return b, fmt.Errorf("%w: ballot is %s", models.ErrUnexpectedStep, b.State)
	}
	return b, nil
}

// complete drops the ballot and replays the voter's answers
func (f *VoteFlow) complete(ctx context.Context, b Ballot) (*VoteView, error) {
	answers, err := f.deps.Votes.AnswersFor(ctx, b.VoterID, b.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	f.ballots.Delete(b.VoterID)
	f.record(ctx, OutcomeCompleted)
	return &VoteView{State: VoteCompleted, Answers: answers}, nil
}

// Start opens a ballot at the first unanswered question, or reports the
// replay straight away when nothing is left to answer.
func (f *VoteFlow) Start(ctx context.Context, userID int64) (*VoteView, error) {
	season, err := f.deps.Seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	if season == nil {
		return nil, models.ErrSeasonNotActive
	}

	b := Ballot{VoterID: userID, SeasonID: season.ID}

	next, err := f.deps.Votes.NextUnansweredQuestion(ctx, userID, season.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next question: %w", err)
	}
	if next == nil {
		return f.complete(ctx, b)
	}

	candidates, err := f.deps.Ledger.ListMembers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if len(candidates) == 0 {
		return nil, models.ErrNoEligibleRecipients
	}

	b.State = VoteAwaitingAnswer
	b.Question = next
	b.Candidates = candidates
	f.ballots.Put(userID, b)
	return f.view(b), nil
}

// TurnPage moves the candidate list to another page; out-of-range pages are clamped
func (f *VoteFlow) TurnPage(ctx context.Context, userID int64, page int) (*VoteView, error) {
	b, err := f.load(userID)
	if err != nil {
		return nil, err
	}
	_, window := models.Paginate(b.Candidates, page, f.pageSize)
	b.Page = window.Page
	f.ballots.Put(userID, b)
	return f.view(b), nil
}

// Answer votes for candidateID on the current question and advances. A
// rejected vote leaves the ballot on the same question.
func (f *VoteFlow) Answer(ctx context.Context, userID, candidateID int64) (*VoteView, error) {
	b, err := f.load(userID)
	if err != nil {
		return nil, err
	}

	known := false
	for _, c := range b.Candidates {
		if c.DiscordID == candidateID {
			known = true
			break
		}
	}
	if !known {
		return nil, models.ErrUserNotFound
	}

	if err := f.deps.Votes.RecordVote(ctx, userID, b.Question.ID, candidateID, b.SeasonID); err != nil {
		return nil, err
	}

	next, err := f.deps.Votes.NextUnansweredQuestion(ctx, userID, b.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next question: %w", err)
	}
	if next == nil {
		return f.complete(ctx, b)
	}

	b.Question = next
	b.Page = 0
	f.ballots.Put(userID, b)
	return f.view(b), nil
}

// Cancel drops the ballot. Votes already cast stay recorded.
func (f *VoteFlow) Cancel(ctx context.Context, userID int64) error {
	if !f.ballots.Delete(userID) {
		return models.ErrNoSession
	}
	f.record(ctx, OutcomeCancelled)
	return nil
}

// Current returns the ballot as it stands
func (f *VoteFlow) Current(ctx context.Context, userID int64) (*VoteView, error) {
	b, err := f.load(userID)
	if err != nil {
		return nil, err
	}
	return f.view(b), nil
}
