package domain

import (
	"strings"
	"time"
)

// Label identifies one of the four fixed answer options.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists every option label in display order.
var Labels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// Valid reports whether l is one of A, B, C or D. Matching is case-sensitive.
func (l Label) Valid() bool {
	switch l {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

// Options holds the four option texts keyed by label.
type Options struct {
	A string `json:"A" yaml:"A"`
	B string `json:"B" yaml:"B"`
	C string `json:"C" yaml:"C"`
	D string `json:"D" yaml:"D"`
}

// Text returns the option text for a label.
func (o Options) Text(l Label) (string, bool) {
	switch l {
	case LabelA:
		return o.A, true
	case LabelB:
		return o.B, true
	case LabelC:
		return o.C, true
	case LabelD:
		return o.D, true
	}
	return "", false
}

// Difficulty is the requested level of a generated quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Title returns the difficulty with its first letter upper-cased.
func (d Difficulty) Title() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Quiz is a titled collection of questions. Quizzes are never mutated after creation.
type Quiz struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuizFilter narrows quiz listings; empty fields match everything.
type QuizFilter struct {
	Category string
	Level    string
}

// Question models an MCQ question with exactly one correct label.
type Question struct {
	ID          int64   `json:"id"`
	QuizID      int64   `json:"quiz_id"`
	Text        string  `json:"question_text"`
	Options     Options `json:"options"`
	Correct     Label   `json:"correct_option"`
	Explanation string  `json:"explanation,omitempty"`
}

// PublicQuestion is what a test-taker sees; the correct label is never included.
type PublicQuestion struct {
	ID      int64   `json:"id"`
	Text    string  `json:"question_text"`
	Options Options `json:"options"`
}

// Public strips the answer key from q.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
}

// Answer is one submitted (question, label) pair.
type Answer struct {
	QuestionID int64 `json:"question_id" validate:"gt=0"`
	Selected   Label `json:"selected_option" validate:"oneof=A B C D"`
}

// NotAnswered is reported as the user answer for questions missing from a submission.
const NotAnswered = "Not answered"

// QuizResult is the derived outcome of scoring a submission.
type QuizResult struct {
	TotalQuestions  int            `json:"total_questions"`
	CorrectAnswers  int            `json:"correct_answers"`
	ScorePercentage int            `json:"score_percentage"`
	Details         []ResultDetail `json:"details,omitempty"`
}

// ResultDetail is the per-question breakdown of a QuizResult.
type ResultDetail struct {
	QuestionID    int64  `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// User is identified by email; the username may change on later submissions.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Attempt persists the aggregate of one scored submission.
type Attempt struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	QuizID          int64     `json:"quiz_id"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	ScorePercentage int       `json:"score_percentage"`
	CreatedAt       time.Time `json:"created_at"`
}

// LeaderboardEntry is one ranked attempt.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	ScorePercentage int       `json:"score_percentage"`
	CorrectAnswers  int       `json:"correct_answers"`
	TotalQuestions  int       `json:"total_questions"`
	CreatedAt       time.Time `json:"created_at"`
}

// Leaderboard captures the ranked attempts of a quiz at a point in time.
type Leaderboard struct {
	QuizID    int64              `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Draft is an unpersisted candidate question produced by a generation path.
type Draft struct {
	Question      string  `json:"question" yaml:"question"`
	Options       Options `json:"options" yaml:"options"`
	CorrectAnswer Label   `json:"correct_answer" yaml:"correct_answer"`
	Explanation   string  `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// GenerationSource reports which path produced a generated quiz.
type GenerationSource string

const (
	SourceAI     GenerationSource = "ai"
	SourceStatic GenerationSource = "static"
)

// Category is the quiz category tag a generation source is recorded under.
func (s GenerationSource) Category() string {
	return string(s) + "-generated"
}

// GeneratedQuiz is returned to callers of quiz generation.
type GeneratedQuiz struct {
	QuizID        int64            `json:"quizId"`
	Source        GenerationSource `json:"generationType"`
	QuestionCount int              `json:"questionCount"`
}
