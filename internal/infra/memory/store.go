package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-assessment-service/internal/domain"
)

// Store is an in-memory implementation of app.Store, used for tests and
// the no-database mode of the server.
type Store struct {
	mu        sync.RWMutex
	quizzes   map[int64]domain.Quiz
	questions map[int64][]domain.Question
	users     map[string]domain.User
	attempts  []domain.Attempt
}

func NewStore() *Store {
	return &Store{
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64][]domain.Question),
		users:     make(map[string]domain.User),
	}
}

func (s *Store) QuizExists(_ context.Context, quizID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.quizzes[quizID]
	return ok, nil
}

func (s *Store) InsertQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; ok {
		return domain.Validationf("quiz %d already exists", quiz.ID)
	}
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) InsertQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[q.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	list := s.questions[q.QuizID]
	i := sort.Search(len(list), func(i int) bool { return list[i].ID >= q.ID })
	if i < len(list) && list[i].ID == q.ID {
		return domain.Validationf("question %d already exists", q.ID)
	}
	list = append(list, domain.Question{})
	copy(list[i+1:], list[i:])
	list[i] = q
	s.questions[q.QuizID] = list
	return nil
}

// QuestionsByQuiz returns a copy ordered by question ID.
func (s *Store) QuestionsByQuiz(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.questions[quizID]
	out := make([]domain.Question, len(list))
	copy(out, list)
	return out, nil
}

// ListQuizzes returns matching quizzes, newest first.
func (s *Store) ListQuizzes(_ context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	s.mu.RLock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Level != "" && q.Level != filter.Level {
			continue
		}
		out = append(out, q)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) UpsertUser(_ context.Context, user domain.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.Email]; ok {
		existing.Username = user.Username
		s.users[user.Email] = existing
		return existing.ID, nil
	}
	s.users[user.Email] = user
	return user.ID, nil
}

func (s *Store) InsertAttempt(_ context.Context, a domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[a.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	if s.userByID(a.UserID) == nil {
		return domain.ErrUserNotFound
	}
	s.attempts = append(s.attempts, a)
	return nil
}

func (s *Store) AttemptsByUser(_ context.Context, email string, quizID int64) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return []domain.Attempt{}, nil
	}
	out := []domain.Attempt{}
	for _, a := range s.attempts {
		if a.UserID != u.ID || (quizID != 0 && a.QuizID != quizID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return newerAttempt(out[i], out[j]) })
	return out, nil
}

func (s *Store) Leaderboard(_ context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]domain.Attempt, 0)
	for _, a := range s.attempts {
		if a.QuizID == quizID {
			ranked = append(ranked, a)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ScorePercentage != ranked[j].ScorePercentage {
			return ranked[i].ScorePercentage > ranked[j].ScorePercentage
		}
		return newerAttempt(ranked[i], ranked[j])
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, a := range ranked {
		entry := domain.LeaderboardEntry{
			Rank:            i + 1,
			ScorePercentage: a.ScorePercentage,
			CorrectAnswers:  a.CorrectAnswers,
			TotalQuestions:  a.TotalQuestions,
			CreatedAt:       a.CreatedAt,
		}
		if u := s.userByID(a.UserID); u != nil {
			entry.Username = u.Username
			entry.Email = u.Email
		}
		out = append(out, entry)
	}
	return out, nil
}

// userByID scans users; callers hold mu.
func (s *Store) userByID(id int64) *domain.User {
	for _, u := range s.users {
		if u.ID == id {
			return &u
		}
	}
	return nil
}

func newerAttempt(a, b domain.Attempt) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
