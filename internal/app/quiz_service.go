package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"quiz-assessment-service/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// QuizService contains the quiz authoring, listing and scoring use cases.
type QuizService struct {
	store     Store
	questions QuestionCache
	seq       SequenceAllocator
	scorer    *Scorer
	hub       *LeaderboardHub
	now       func() time.Time
}

// NewQuizService wires the use cases. questions may be nil, in which case
// reads go straight to store.
func NewQuizService(store Store, questions QuestionCache, seq SequenceAllocator, hub *LeaderboardHub) *QuizService {
	if questions == nil {
		questions = uncachedQuestions{store}
	}
	if hub == nil {
		hub = NewLeaderboardHub()
	}
	return &QuizService{
		store:     store,
		questions: questions,
		seq:       seq,
		scorer:    NewScorer(questions),
		hub:       hub,
		now:       time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(store Store, questions QuestionCache, seq SequenceAllocator, hub *LeaderboardHub, now func() time.Time) *QuizService {
	s := NewQuizService(store, questions, seq, hub)
	s.now = now
	return s
}

// CreateQuizInput is a manually authored quiz.
type CreateQuizInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
	Level       string `json:"level" validate:"required"`
}

// AddQuestionInput is a manually authored question.
type AddQuestionInput struct {
	Text          string       `json:"question_text" validate:"required"`
	OptionA       string       `json:"option_a" validate:"required"`
	OptionB       string       `json:"option_b" validate:"required"`
	OptionC       string       `json:"option_c" validate:"required"`
	OptionD       string       `json:"option_d" validate:"required"`
	CorrectOption domain.Label `json:"correct_option" validate:"required,oneof=A B C D"`
	Explanation   string       `json:"explanation"`
}

// UserInfo identifies the submitter of a quiz.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SubmitInput is a full quiz submission.
type SubmitInput struct {
	Answers        []domain.Answer `validate:"dive"`
	User           *UserInfo
	IncludeDetails bool
}

// ListQuizzes returns quizzes newest first.
func (s *QuizService) ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	quizzes, err := s.store.ListQuizzes(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("list quizzes", err)
	}
	return quizzes, nil
}

// ListQuestions returns the questions of a quiz without their answer key.
func (s *QuizService) ListQuestions(ctx context.Context, quizID int64) ([]domain.PublicQuestion, error) {
	if err := s.requireQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	questions, err := s.questions.QuestionsByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.Persistence("load questions", err)
	}
	out := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	return out, nil
}

// ScoreSubmission grades answers against the stored questions of quizID.
func (s *QuizService) ScoreSubmission(ctx context.Context, quizID int64, answers []domain.Answer, includeDetails bool) (domain.QuizResult, error) {
	return s.scorer.Score(ctx, quizID, answers, includeDetails)
}

// Submit validates and scores a submission. When a complete user identity is
// supplied the user is upserted and the attempt recorded; failures there are
// logged and never fail the submission.
func (s *QuizService) Submit(ctx context.Context, quizID int64, in SubmitInput) (domain.QuizResult, error) {
	if err := validateInput(in); err != nil {
		return domain.QuizResult{}, err
	}

	result, err := s.ScoreSubmission(ctx, quizID, in.Answers, in.IncludeDetails)
	if err != nil {
		return domain.QuizResult{}, err
	}

	if in.User == nil || strings.TrimSpace(in.User.Email) == "" || strings.TrimSpace(in.User.Username) == "" {
		return result, nil
	}

	userID, err := s.UpsertUser(ctx, in.User.Username, in.User.Email)
	if err != nil {
		log.Error().Err(err).Int64("quizID", quizID).Msg("failed to upsert user for attempt")
		return result, nil
	}
	if _, err := s.RecordAttempt(ctx, userID, quizID, result); err != nil {
		log.Error().Err(err).Int64("quizID", quizID).Int64("userID", userID).Msg("failed to record attempt")
		return result, nil
	}
	s.publishLeaderboard(ctx, quizID)
	return result, nil
}

// CreateQuiz persists a manually authored quiz.
func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (int64, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}
	id, err := s.seq.Next(ctx, CounterQuizzes)
	if err != nil {
		return 0, domain.Persistence("allocate quiz id", err)
	}
	quiz := domain.Quiz{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Level:       in.Level,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertQuiz(ctx, quiz); err != nil {
		return 0, domain.Persistence("insert quiz", err)
	}
	return id, nil
}

// AddQuestion appends a manually authored question to an existing quiz.
func (s *QuizService) AddQuestion(ctx context.Context, quizID int64, in AddQuestionInput) (int64, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}
	if err := s.requireQuiz(ctx, quizID); err != nil {
		return 0, err
	}
	id, err := s.seq.Next(ctx, CounterQuestions)
	if err != nil {
		return 0, domain.Persistence("allocate question id", err)
	}
	question := domain.Question{
		ID:     id,
		QuizID: quizID,
		Text:   in.Text,
		Options: domain.Options{
			A: in.OptionA,
			B: in.OptionB,
			C: in.OptionC,
			D: in.OptionD,
		},
		Correct:     in.CorrectOption,
		Explanation: in.Explanation,
	}
	if err := s.store.InsertQuestion(ctx, question); err != nil {
		return 0, domain.Persistence("insert question", err)
	}
	if err := s.questions.Invalidate(ctx, quizID); err != nil {
		log.Warn().Err(err).Int64("quizID", quizID).Msg("failed to invalidate question cache")
	}
	return id, nil
}

// UpsertUser registers a user by email or renames the existing one.
func (s *QuizService) UpsertUser(ctx context.Context, username, email string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return 0, domain.Validationf("username and email are required")
	}

	user := domain.User{Username: username, Email: email, CreatedAt: s.now().UTC()}
	existing, err := s.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		user.ID = existing.ID
	case errors.Is(err, domain.ErrUserNotFound):
		id, err := s.seq.Next(ctx, CounterUsers)
		if err != nil {
			return 0, domain.Persistence("allocate user id", err)
		}
		user.ID = id
	default:
		return 0, domain.Persistence("find user", err)
	}

	id, err := s.store.UpsertUser(ctx, user)
	if err != nil {
		return 0, domain.Persistence("upsert user", err)
	}
	return id, nil
}

// RecordAttempt stores the aggregate of a scored submission.
func (s *QuizService) RecordAttempt(ctx context.Context, userID, quizID int64, result domain.QuizResult) (int64, error) {
	id, err := s.seq.Next(ctx, CounterAttempts)
	if err != nil {
		return 0, domain.Persistence("allocate attempt id", err)
	}
	attempt := domain.Attempt{
		ID:              id,
		UserID:          userID,
		QuizID:          quizID,
		TotalQuestions:  result.TotalQuestions,
		CorrectAnswers:  result.CorrectAnswers,
		ScorePercentage: result.ScorePercentage,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.InsertAttempt(ctx, attempt); err != nil {
		return 0, domain.Persistence("insert attempt", err)
	}
	return id, nil
}

// Attempts returns a user's attempts newest first; quizID 0 means all quizzes.
func (s *QuizService) Attempts(ctx context.Context, email string, quizID int64) ([]domain.Attempt, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validationf("email is required")
	}
	attempts, err := s.store.AttemptsByUser(ctx, email, quizID)
	if err != nil {
		return nil, domain.Persistence("list attempts", err)
	}
	return attempts, nil
}

// Leaderboard ranks a quiz's attempts. Limits below 1 fall back to the default.
func (s *QuizService) Leaderboard(ctx context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error) {
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	entries, err := s.store.Leaderboard(ctx, quizID, limit)
	if err != nil {
		return nil, domain.Persistence("leaderboard", err)
	}
	return entries, nil
}

// Subscribe returns a channel that receives leaderboard snapshots for quizID,
// starting with the current one. The caller must invoke cancel.
func (s *QuizService) Subscribe(ctx context.Context, quizID int64) (<-chan domain.Leaderboard, func(), error) {
	if err := s.requireQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}
	entries, err := s.Leaderboard(ctx, quizID, defaultLeaderboardLimit)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(domain.Leaderboard{QuizID: quizID, Entries: entries, UpdatedAt: s.now().UTC()})
	return ch, cancel, nil
}

func (s *QuizService) publishLeaderboard(ctx context.Context, quizID int64) {
	if s.hub.Subscribers(quizID) == 0 {
		return
	}
	entries, err := s.Leaderboard(ctx, quizID, defaultLeaderboardLimit)
	if err != nil {
		log.Warn().Err(err).Int64("quizID", quizID).Msg("failed to refresh leaderboard")
		return
	}
	s.hub.Publish(domain.Leaderboard{QuizID: quizID, Entries: entries, UpdatedAt: s.now().UTC()})
}

func (s *QuizService) requireQuiz(ctx context.Context, quizID int64) error {
	ok, err := s.store.QuizExists(ctx, quizID)
	if err != nil {
		return domain.Persistence("check quiz", err)
	}
	if !ok {
		return domain.ErrQuizNotFound
	}
	return nil
}

// uncachedQuestions adapts a store into a QuestionCache with nothing to invalidate.
type uncachedQuestions struct {
	QuestionReader
}

func (uncachedQuestions) Invalidate(context.Context, int64) error { return nil }
