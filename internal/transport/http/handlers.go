package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// API serves the REST surface of the quiz service.
type API struct {
	service   *app.QuizService
	generator *app.QuizGenerator
}

func NewAPI(service *app.QuizService, generator *app.QuizGenerator) *API {
	return &API{service: service, generator: generator}
}

// GET /api/quiz/{quizId}/questions
func (a *API) getQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := parseID(chi.URLParam(r, "quizId"), "quiz ID")
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	questions, err := a.service.ListQuestions(r.Context(), quizID)
	if err != nil {
		writeError(w, r, err, "Failed to fetch questions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// GET /api/quizzes?category=&level=
func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quizzes, err := a.service.ListQuizzes(r.Context(), domain.QuizFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Level:    strings.TrimSpace(q.Get("level")),
	})
	if err != nil {
		writeError(w, r, err, "Failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

type submitRequest struct {
	Answers []domain.Answer `json:"answers"`
	User    *app.UserInfo   `json:"user,omitempty"`
}

// POST /api/quiz/{quizId}/submit?details=true
func (a *API) submitQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := parseID(chi.URLParam(r, "quizId"), "quiz ID")
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if req.Answers == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid submission format")
		return
	}

	result, err := a.service.Submit(r.Context(), quizID, app.SubmitInput{
		Answers:        req.Answers,
		User:           req.User,
		IncludeDetails: r.URL.Query().Get("details") == "true",
	})
	if err != nil {
		writeError(w, r, err, "Failed to calculate score")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/quiz/attempts?email=&quizId=
func (a *API) getAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var quizID int64
	if raw := q.Get("quizId"); raw != "" {
		id, err := parseID(raw, "quizId")
		if err != nil {
			writeError(w, r, err, "")
			return
		}
		quizID = id
	}
	attempts, err := a.service.Attempts(r.Context(), q.Get("email"), quizID)
	if err != nil {
		writeError(w, r, err, "Failed to fetch attempts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

// GET /api/quiz/{quizId}/leaderboard?limit=10
func (a *API) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, err := parseID(chi.URLParam(r, "quizId"), "quiz ID")
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = max(1, n)
	}
	board, err := a.service.Leaderboard(r.Context(), quizID, limit)
	if err != nil {
		writeError(w, r, err, "Failed to fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

// POST /api/quizzes
func (a *API) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.CreateQuizInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	id, err := a.service.CreateQuiz(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to create quiz")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// POST /api/quizzes/{quizId}/questions
func (a *API) addQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, err := parseID(chi.URLParam(r, "quizId"), "quiz ID")
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	var in app.AddQuestionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	id, err := a.service.AddQuestion(r.Context(), quizID, in)
	if err != nil {
		writeError(w, r, err, "Failed to add question")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type generateResponse struct {
	QuizID         int64                   `json:"quizId"`
	Message        string                  `json:"message"`
	GenerationType domain.GenerationSource `json:"generationType"`
	QuestionCount  int                     `json:"questionCount"`
}

// POST /api/ai-assessment/generate
func (a *API) generateAssessment(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	out, err := a.generator.GenerateQuiz(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to generate quiz. Please try again later.")
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{
		QuizID:         out.QuizID,
		Message:        fmt.Sprintf("Quiz generated successfully using %s generation", out.Source),
		GenerationType: out.Source,
		QuestionCount:  out.QuestionCount,
	})
}
