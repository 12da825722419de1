package integration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/bank"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/postgres"
	infraredis "quiz-assessment-service/internal/infra/redis"
	"quiz-assessment-service/internal/infra/sqlstore"
)

func TestSubmitQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := sqlstore.Open(ctx, sqlstore.DriverPostgres, pgURL)
	if err != nil {
		t.Fatalf("open pg: %v", err)
	}
	defer db.Close()
	if err := sqlstore.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := sqlstore.NewStore(db)
	seq := postgres.NewSequence(pool)
	cache := infraredis.NewQuestionCache(redisClient, store, 5*time.Minute)
	service := app.NewQuizService(store, cache, seq, nil)

	quizID, err := service.CreateQuiz(ctx, app.CreateQuizInput{Title: "Planets", Category: "science", Level: "basic"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	var ids []int64
	for _, correct := range []domain.Label{domain.LabelC, domain.LabelA} {
		id, err := service.AddQuestion(ctx, quizID, app.AddQuestionInput{
			Text: "Which planet is it?", OptionA: "Mercury", OptionB: "Venus", OptionC: "Jupiter", OptionD: "Mars", CorrectOption: correct,
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		ids = append(ids, id)
	}

	for _, u := range []struct {
		name, email string
		pick        domain.Label
	}{
		{"alice", "alice@example.com", domain.LabelB},
		{"bob", "bob@example.com", domain.LabelA},
	} {
		res, err := service.Submit(ctx, quizID, app.SubmitInput{
			Answers: []domain.Answer{
				{QuestionID: ids[0], Selected: domain.LabelC},
				{QuestionID: ids[1], Selected: u.pick},
			},
			User: &app.UserInfo{Username: u.name, Email: u.email},
		})
		if err != nil {
			t.Fatalf("submit %s: %v", u.name, err)
		}
		if res.TotalQuestions != 2 {
			t.Fatalf("expected 2 questions, got %+v", res)
		}
	}

	board, err := service.Leaderboard(ctx, quizID, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Username != "bob" || board[0].ScorePercentage != 100 {
		t.Fatalf("expected bob leading with 100, got %+v", board)
	}

	n, err := redisClient.Exists(ctx, fmt.Sprintf("quiz:%d:questions", quizID)).Result()
	if err != nil || n != 1 {
		t.Fatalf("expected cached questions in redis, got n=%d err=%v", n, err)
	}

	generator := app.NewQuizGenerator(nil, bank.NewGeneratorWithSource(bank.Default(), rand.NewSource(1)), store, seq,
		app.WithQuestionCache(cache))
	generated, err := generator.GenerateQuiz(ctx, app.GenerateRequest{Topic: "Unmapped Topic XYZ", Difficulty: domain.DifficultyHard, QuestionCount: 7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	questions, err := service.ListQuestions(ctx, generated.QuizID)
	if err != nil || len(questions) != 7 {
		t.Fatalf("expected 7 generated questions, got %d (%v)", len(questions), err)
	}
}

func TestPostgresSequenceConcurrent(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	pool, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	seq := postgres.NewSequence(pool)

	const n = 50
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.Next(ctx, "questions")
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
