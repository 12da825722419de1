package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// Scorer grades submissions against the stored answer key of a quiz.
// It keeps no state of its own and is safe for concurrent use.
type Scorer struct {
	questions QuestionReader
}

func NewScorer(questions QuestionReader) *Scorer {
	return &Scorer{questions: questions}
}

// Score loads the quiz's questions and grades answers against them.
func (s *Scorer) Score(ctx context.Context, quizID int64, answers []domain.Answer, includeDetails bool) (domain.QuizResult, error) {
	questions, err := s.questions.QuestionsByQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, domain.Persistence("load questions", err)
	}
	return ScoreQuestions(questions, answers, includeDetails)
}

// ScoreQuestions grades answers against questions.
//
// Every stored question counts towards the total whether or not it was
// answered. When the same question appears more than once in answers the later
// entry wins. Answers for unknown question IDs are ignored.
func ScoreQuestions(questions []domain.Question, answers []domain.Answer, includeDetails bool) (domain.QuizResult, error) {
	if len(questions) == 0 {
		return domain.QuizResult{}, domain.ErrNoQuestions
	}

	selected := make(map[int64]domain.Label, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.Selected
	}

	result := domain.QuizResult{TotalQuestions: len(questions)}
	if includeDetails {
		result.Details = make([]domain.ResultDetail, 0, len(questions))
	}

	for _, q := range questions {
		label, answered := selected[q.ID]
		correct := answered && label == q.Correct
		if correct {
			result.CorrectAnswers++
		}
		if !includeDetails {
			continue
		}

		userAnswer := domain.NotAnswered
		if answered {
			if text, ok := q.Options.Text(label); ok {
				userAnswer = text
			}
		}
		correctText, _ := q.Options.Text(q.Correct)
		result.Details = append(result.Details, domain.ResultDetail{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: correctText,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		})
	}

	result.ScorePercentage = Percentage(result.CorrectAnswers, result.TotalQuestions)
	return result, nil
}

// Percentage returns round(correct/total*100) rounding halves up, computed in
// integers so values like 12.5 never drift below the half.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
