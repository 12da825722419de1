package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RouterOptions tunes cross-cutting HTTP behavior.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter mounts the REST API under /api, the leaderboard feed under /ws
// and a health probe.
func NewRouter(api *API, ws *WSHandler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws/leaderboard", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/quizzes", api.listQuizzes)
		r.Post("/quizzes", api.createQuiz)
		r.Post("/quizzes/{quizId}/questions", api.addQuestion)

		r.Get("/quiz/attempts", api.getAttempts)
		r.Get("/quiz/{quizId}/questions", api.getQuestions)
		r.Post("/quiz/{quizId}/submit", api.submitQuiz)
		r.Get("/quiz/{quizId}/leaderboard", api.getLeaderboard)

		r.Post("/ai-assessment/generate", api.generateAssessment)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
