package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-assessment-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	loader := &countingLoader{store: store}
	cache := NewQuestionCache(loader, time.Minute)

	for i := 0; i < 3; i++ {
		qs, err := cache.QuestionsByQuiz(ctx, 1)
		if err != nil {
			t.Fatalf("questions: %v", err)
		}
		if len(qs) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(qs))
		}
	}
	if loader.calls() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls())
	}
}

func TestQuestionCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	loader := &countingLoader{store: store}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.QuestionsByQuiz(ctx, 1); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if err := store.InsertQuestion(ctx, question(1, 3)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	qs, err := cache.QuestionsByQuiz(ctx, 1)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 3 || loader.calls() != 2 {
		t.Fatalf("expected reload with 3 questions, got %d after %d loads", len(qs), loader.calls())
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{store: seededStore(t)}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.QuestionsByQuiz(ctx, 1); err != nil {
		t.Fatalf("questions: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.QuestionsByQuiz(ctx, 1); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if loader.calls() != 2 {
		t.Fatalf("expected expired entry to reload, got %d loads", loader.calls())
	}
}

func TestQuestionCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewQuestionCache(seededStore(t), time.Minute)

	qs, _ := cache.QuestionsByQuiz(ctx, 1)
	qs[0].Correct = domain.LabelD
	again, _ := cache.QuestionsByQuiz(ctx, 1)
	if again[0].Correct != domain.LabelA {
		t.Fatalf("cache entry was mutated through a returned slice")
	}
}

func TestStoreOrdersQuestionsByID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if err := store.InsertQuiz(ctx, domain.Quiz{ID: 7, Title: "Quiz"}); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
	for _, id := range []int64{30, 10, 20} {
		if err := store.InsertQuestion(ctx, question(7, id)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
	qs, _ := store.QuestionsByQuiz(ctx, 7)
	for i, want := range []int64{10, 20, 30} {
		if qs[i].ID != want {
			t.Fatalf("position %d: expected %d, got %d", i, want, qs[i].ID)
		}
	}
	if err := store.InsertQuestion(ctx, question(99, 1)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown quiz, got %v", err)
	}
}

func TestStoreUpsertUserKeepsID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id, err := store.UpsertUser(ctx, domain.User{ID: 5, Username: "ann", Email: "a@x.io"})
	if err != nil || id != 5 {
		t.Fatalf("first upsert: id=%d err=%v", id, err)
	}
	id, err = store.UpsertUser(ctx, domain.User{ID: 6, Username: "annie", Email: "a@x.io"})
	if err != nil || id != 5 {
		t.Fatalf("second upsert: id=%d err=%v", id, err)
	}
	u, _ := store.UserByEmail(ctx, "a@x.io")
	if u.Username != "annie" {
		t.Fatalf("expected updated username, got %q", u.Username)
	}
	if _, err := store.UserByEmail(ctx, "nobody@x.io"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStoreLeaderboardRanking(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []domain.User{{ID: 1, Username: "a", Email: "a@x.io"}, {ID: 2, Username: "b", Email: "b@x.io"}}
	for _, u := range users {
		if _, err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	attempts := []domain.Attempt{
		{ID: 1, UserID: 1, QuizID: 1, ScorePercentage: 50, CreatedAt: base},
		{ID: 2, UserID: 2, QuizID: 1, ScorePercentage: 100, CreatedAt: base.Add(time.Minute)},
		{ID: 3, UserID: 1, QuizID: 1, ScorePercentage: 50, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range attempts {
		if err := store.InsertAttempt(ctx, a); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}

	lb, _ := store.Leaderboard(ctx, 1, 10)
	if len(lb) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(lb))
	}
	if lb[0].Username != "b" || lb[0].Rank != 1 {
		t.Fatalf("expected b first, got %+v", lb[0])
	}
	if !lb[1].CreatedAt.Equal(base.Add(2*time.Minute)) || lb[2].Rank != 3 {
		t.Fatalf("expected newer tie first, got %+v", lb[1:])
	}

	lb, _ = store.Leaderboard(ctx, 1, 1)
	if len(lb) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(lb))
	}

	mine, _ := store.AttemptsByUser(ctx, "a@x.io", 0)
	if len(mine) != 2 || mine[0].ID != 3 {
		t.Fatalf("expected newest attempt first, got %+v", mine)
	}
}

func TestSequenceIsUniqueUnderConcurrency(t *testing.T) {
	seq := NewSequence()
	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := seq.Next(context.Background(), "questions")
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("expected %d unique ids, got %d", n, len(seen))
	}
	if id, _ := seq.Next(context.Background(), "quizzes"); id != 1 {
		t.Fatalf("expected independent counters, got %d", id)
	}
}

type countingLoader struct {
	store *Store
	mu    sync.Mutex
	n     int
}

func (l *countingLoader) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
	return l.store.QuestionsByQuiz(ctx, quizID)
}

func (l *countingLoader) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store := NewStore()
	if err := store.InsertQuiz(ctx, domain.Quiz{ID: 1, Title: "Basics"}); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
	for _, id := range []int64{1, 2} {
		if err := store.InsertQuestion(ctx, question(1, id)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
	return store
}

func question(quizID, id int64) domain.Question {
	return domain.Question{
		ID:      id,
		QuizID:  quizID,
		Text:    "What is 2 + 2?",
		Options: domain.Options{A: "4", B: "3", C: "5", D: "22"},
		Correct: domain.LabelA,
	}
}
