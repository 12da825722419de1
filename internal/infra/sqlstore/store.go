package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"quiz-assessment-service/internal/domain"
)

// Store implements app.Store on any bun dialect this package opens.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) QuizExists(ctx context.Context, quizID int64) (bool, error) {
	ok, err := s.db.NewSelect().Model((*quizRow)(nil)).Where("id = ?", quizID).Exists(ctx)
	if err != nil {
		return false, domain.Persistence("check quiz", err)
	}
	return ok, nil
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	row := newQuizRow(quiz)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Persistence("insert quiz", err)
	}
	return nil
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question) error {
	row := newQuestionRow(q)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Persistence("insert question", err)
	}
	return nil
}

func (s *Store) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, domain.Persistence("load questions", err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	var rows []quizRow
	q := s.db.NewSelect().Model(&rows)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if err := q.OrderExpr("created_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, domain.Persistence("list quizzes", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.Persistence("load user", err)
	}
	return row.domain(), nil
}

// UpsertUser relies on the unique email constraint so concurrent first
// submissions for one email still end up with a single row.
func (s *Store) UpsertUser(ctx context.Context, user domain.User) (int64, error) {
	row := userRow{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC(),
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (email) DO UPDATE").
		Set("username = EXCLUDED.username").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, domain.Persistence("upsert user", err)
	}
	return row.ID, nil
}

func (s *Store) InsertAttempt(ctx context.Context, a domain.Attempt) error {
	row := newAttemptRow(a)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Persistence("insert attempt", err)
	}
	return nil
}

func (s *Store) AttemptsByUser(ctx context.Context, email string, quizID int64) ([]domain.Attempt, error) {
	var rows []attemptRow
	q := s.db.NewSelect().Model(&rows).
		Join("JOIN users AS u ON u.id = a.user_id").
		Where("u.email = ?", email)
	if quizID != 0 {
		q = q.Where("a.quiz_id = ?", quizID)
	}
	if err := q.OrderExpr("a.created_at DESC, a.id DESC").Scan(ctx); err != nil {
		return nil, domain.Persistence("list attempts", err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) Leaderboard(ctx context.Context, quizID int64, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	q := s.db.NewSelect().
		TableExpr("attempts AS a").
		Join("JOIN users AS u ON u.id = a.user_id").
		ColumnExpr("u.username, u.email").
		ColumnExpr("a.score_percentage, a.correct_answers, a.total_questions, a.created_at").
		Where("a.quiz_id = ?", quizID).
		OrderExpr("a.score_percentage DESC, a.created_at DESC, a.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, domain.Persistence("load leaderboard", err)
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, domain.LeaderboardEntry{
			Rank:            i + 1,
			Username:        r.Username,
			Email:           r.Email,
			ScorePercentage: r.ScorePercentage,
			CorrectAnswers:  r.CorrectAnswers,
			TotalQuestions:  r.TotalQuestions,
			CreatedAt:       r.CreatedAt.UTC(),
		})
	}
	return out, nil
}
