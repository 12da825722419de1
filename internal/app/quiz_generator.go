package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"quiz-assessment-service/internal/domain"
)

const (
	MinQuestionCount = 5
	MaxQuestionCount = 50

	defaultAITimeout     = 60 * time.Second
	defaultInsertWorkers = 8
)

// DraftGenerator produces validated question drafts from an AI provider.
type DraftGenerator interface {
	Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.Draft, error)
}

// StaticGenerator produces drafts offline. It never fails for valid input.
type StaticGenerator interface {
	GenerateStatic(topic string, difficulty domain.Difficulty, count int) []domain.Draft
}

// GenerateRequest asks for a generated quiz.
type GenerateRequest struct {
	Topic         string            `json:"topic" validate:"required"`
	Difficulty    domain.Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	QuestionCount int               `json:"questionCount" validate:"min=5,max=50"`
}

// QuizGenerator builds quizzes AI-first and falls back to the static bank
// whenever the AI path fails for any reason.
type QuizGenerator struct {
	ai        DraftGenerator
	static    StaticGenerator
	store     QuestionStore
	seq       SequenceAllocator
	questions QuestionCache
	aiTimeout time.Duration
	workers   int
	now       func() time.Time
}

// GeneratorOption customizes a QuizGenerator.
type GeneratorOption func(*QuizGenerator)

// WithAITimeout bounds a single AI provider call.
func WithAITimeout(d time.Duration) GeneratorOption {
	return func(g *QuizGenerator) {
		if d > 0 {
			g.aiTimeout = d
		}
	}
}

// WithInsertWorkers caps how many question inserts run at once.
func WithInsertWorkers(n int) GeneratorOption {
	return func(g *QuizGenerator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithQuestionCache invalidates the cache entry of every generated quiz.
func WithQuestionCache(c QuestionCache) GeneratorOption {
	return func(g *QuizGenerator) { g.questions = c }
}

// WithGeneratorClock is test-only for deterministic timestamps.
func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *QuizGenerator) { g.now = now }
}

// NewQuizGenerator wires the orchestrator. ai may be nil, which sends every
// request down the static path.
func NewQuizGenerator(ai DraftGenerator, static StaticGenerator, store QuestionStore, seq SequenceAllocator, opts ...GeneratorOption) *QuizGenerator {
	g := &QuizGenerator{
		ai:        ai,
		static:    static,
		store:     store,
		seq:       seq,
		aiTimeout: defaultAITimeout,
		workers:   defaultInsertWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateQuiz produces and persists a quiz, returning its ID and the path
// that produced the questions. Only persistence failures are returned once
// input validation passes.
func (g *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerateRequest) (domain.GeneratedQuiz, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := validateInput(req); err != nil {
		return domain.GeneratedQuiz{}, err
	}

	drafts, source := g.drafts(ctx, req)

	quizID, err := g.seq.Next(ctx, CounterQuizzes)
	if err != nil {
		return domain.GeneratedQuiz{}, domain.Persistence("allocate quiz id", err)
	}
	quiz := domain.Quiz{
		ID:          quizID,
		Title:       quizTitle(source, req),
		Description: quizDescription(source, req),
		Category:    source.Category(),
		Level:       string(req.Difficulty),
		CreatedAt:   g.now().UTC(),
	}
	if err := g.store.InsertQuiz(ctx, quiz); err != nil {
		return domain.GeneratedQuiz{}, domain.Persistence("insert quiz", err)
	}

	if err := g.insertQuestions(ctx, quizID, drafts); err != nil {
		log.Error().Err(err).Int64("quizID", quizID).Msg("generated quiz persisted without all of its questions")
		return domain.GeneratedQuiz{}, err
	}
	if g.questions != nil {
		if err := g.questions.Invalidate(ctx, quizID); err != nil {
			log.Warn().Err(err).Int64("quizID", quizID).Msg("failed to invalidate question cache")
		}
	}

	log.Info().
		Int64("quizID", quizID).
		Str("source", string(source)).
		Int("questions", len(drafts)).
		Msg("quiz generated")
	return domain.GeneratedQuiz{QuizID: quizID, Source: source, QuestionCount: len(drafts)}, nil
}

// drafts tries the AI path once and falls back to the static bank.
func (g *QuizGenerator) drafts(ctx context.Context, req GenerateRequest) ([]domain.Draft, domain.GenerationSource) {
	if g.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, g.aiTimeout)
		drafts, err := g.ai.Generate(aiCtx, req.Topic, req.Difficulty, req.QuestionCount)
		cancel()
		if err == nil && len(drafts) > 0 {
			return drafts, domain.SourceAI
		}
		if err == nil {
			err = fmt.Errorf("%w: no drafts returned", domain.ErrGeneration)
		}
		log.Warn().Err(err).Str("topic", req.Topic).Msg("ai generation failed, falling back to static questions")
	}
	return g.static.GenerateStatic(req.Topic, req.Difficulty, req.QuestionCount), domain.SourceStatic
}

// insertQuestions persists drafts concurrently and waits for every insert.
// The first failure is reported; inserts that already committed stay in place.
func (g *QuizGenerator) insertQuestions(ctx context.Context, quizID int64, drafts []domain.Draft) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.workers)
	for _, d := range drafts {
		d := d
		group.Go(func() error {
			id, err := g.seq.Next(gctx, CounterQuestions)
			if err != nil {
				return domain.Persistence("allocate question id", err)
			}
			question := domain.Question{
				ID:          id,
				QuizID:      quizID,
				Text:        d.Question,
				Options:     d.Options,
				Correct:     d.CorrectAnswer,
				Explanation: d.Explanation,
			}
			return domain.Persistence("insert question", g.store.InsertQuestion(gctx, question))
		})
	}
	return group.Wait()
}

func quizTitle(source domain.GenerationSource, req GenerateRequest) string {
	prefix := "Assessment"
	if source == domain.SourceAI {
		prefix = "AI Assessment"
	}
	return fmt.Sprintf("%s: %s (%s)", prefix, req.Topic, req.Difficulty.Title())
}

func quizDescription(source domain.GenerationSource, req GenerateRequest) string {
	if source == domain.SourceAI {
		return fmt.Sprintf("AI-generated %s level assessment on %s", req.Difficulty, req.Topic)
	}
	return fmt.Sprintf("%s level assessment on %s", req.Difficulty, req.Topic)
}
