package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-assessment-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          int64     `bun:"id,pk"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	Category    string    `bun:"category,notnull"`
	Level       string    `bun:"level,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID            int64  `bun:"id,pk"`
	QuizID        int64  `bun:"quiz_id,notnull"`
	QuestionText  string `bun:"question_text,notnull"`
	OptionA       string `bun:"option_a,notnull"`
	OptionB       string `bun:"option_b,notnull"`
	OptionC       string `bun:"option_c,notnull"`
	OptionD       string `bun:"option_d,notnull"`
	CorrectOption string `bun:"correct_option,notnull"`
	Explanation   string `bun:"explanation,notnull"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk"`
	Username  string    `bun:"username,notnull"`
	Email     string    `bun:"email,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID              int64     `bun:"id,pk"`
	UserID          int64     `bun:"user_id,notnull"`
	QuizID          int64     `bun:"quiz_id,notnull"`
	TotalQuestions  int       `bun:"total_questions,notnull"`
	CorrectAnswers  int       `bun:"correct_answers,notnull"`
	ScorePercentage int       `bun:"score_percentage,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

type counterRow struct {
	bun.BaseModel `bun:"table:counters"`

	Name string `bun:"name,pk"`
	Seq  int64  `bun:"seq,notnull"`
}

type leaderboardRow struct {
	Username        string    `bun:"username"`
	Email           string    `bun:"email"`
	ScorePercentage int       `bun:"score_percentage"`
	CorrectAnswers  int       `bun:"correct_answers"`
	TotalQuestions  int       `bun:"total_questions"`
	CreatedAt       time.Time `bun:"created_at"`
}

func newQuizRow(q domain.Quiz) quizRow {
	return quizRow{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Category:    q.Category,
		Level:       q.Level,
		CreatedAt:   q.CreatedAt.UTC(),
	}
}

func (r quizRow) domain() domain.Quiz {
	return domain.Quiz{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Level:       r.Level,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func newQuestionRow(q domain.Question) questionRow {
	return questionRow{
		ID:            q.ID,
		QuizID:        q.QuizID,
		QuestionText:  q.Text,
		OptionA:       q.Options.A,
		OptionB:       q.Options.B,
		OptionC:       q.Options.C,
		OptionD:       q.Options.D,
		CorrectOption: string(q.Correct),
		Explanation:   q.Explanation,
	}
}

func (r questionRow) domain() domain.Question {
	return domain.Question{
		ID:     r.ID,
		QuizID: r.QuizID,
		Text:   r.QuestionText,
		Options: domain.Options{
			A: r.OptionA,
			B: r.OptionB,
			C: r.OptionC,
			D: r.OptionD,
		},
		Correct:     domain.Label(r.CorrectOption),
		Explanation: r.Explanation,
	}
}

func (r userRow) domain() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, Email: r.Email, CreatedAt: r.CreatedAt.UTC()}
}

func newAttemptRow(a domain.Attempt) attemptRow {
	return attemptRow{
		ID:              a.ID,
		UserID:          a.UserID,
		QuizID:          a.QuizID,
		TotalQuestions:  a.TotalQuestions,
		CorrectAnswers:  a.CorrectAnswers,
		ScorePercentage: a.ScorePercentage,
		CreatedAt:       a.CreatedAt.UTC(),
	}
}

func (r attemptRow) domain() domain.Attempt {
	return domain.Attempt{
		ID:              r.ID,
		UserID:          r.UserID,
		QuizID:          r.QuizID,
		TotalQuestions:  r.TotalQuestions,
		CorrectAnswers:  r.CorrectAnswers,
		ScorePercentage: r.ScorePercentage,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}
