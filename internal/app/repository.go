package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// Counter names handed to the SequenceAllocator, one per entity kind.
const (
	CounterQuizzes   = "quizzes"
	CounterQuestions = "questions"
	CounterUsers     = "users"
	CounterAttempts  = "attempts"
)

// SequenceAllocator hands out strictly increasing identifiers per counter name.
// Two concurrent callers must never receive the same value.
type SequenceAllocator interface {
	Next(ctx context.Context, counter string) (int64, error)
}

// QuestionReader loads the full, stably ordered question set of a quiz.
type QuestionReader interface {
	QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error)
}

// QuestionCache is a QuestionReader that can drop a quiz's cached entry.
type QuestionCache interface {
	QuestionReader
	Invalidate(ctx context.Context, quizID int64) error
}

// QuestionStore is the durable collection of quizzes and questions.
// Records arrive with identifiers already assigned.
type QuestionStore interface {
	QuestionReader
	QuizExists(ctx context.Context, quizID int64) (bool, error)
	InsertQuiz(ctx context.Context, quiz domain.Quiz) error
	InsertQuestion(ctx context.Context, question domain.Question) error
	ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error)
}

// UserStore keeps users unique by email.
type UserStore interface {
	// UserByEmail returns domain.ErrUserNotFound when no user has the email.
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	// UpsertUser inserts user, or when the email is taken updates the stored
	// username and returns the existing identifier.
	UpsertUser(ctx context.Context, user domain.User) (int64, error)
}

// AttemptStore records scored attempts and ranks them.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt domain.Attempt) error
	// AttemptsByUser lists attempts newest first; quizID 0 means every quiz.
	AttemptsByUser(ctx context.Context, email string, quizID int64) ([]domain.Attempt, error)
	// Leaderboard ranks by score descending, newest first on ties.
	Leaderboard(ctx context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error)
}

// Store is everything the quiz use cases persist.
type Store interface {
	QuestionStore
	UserStore
	AttemptStore
}
