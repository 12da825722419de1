package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"quiz-assessment-service/internal/ai"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/bank"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/infra/memory"
	"quiz-assessment-service/internal/infra/postgres"
	infraredis "quiz-assessment-service/internal/infra/redis"
	"quiz-assessment-service/internal/infra/sqlstore"
)

const (
	backendMemory   = "memory"
	backendSQL      = "sql"
	backendPostgres = "postgres"
	backendRedis    = "redis"
)

// runtime holds the wired dependencies shared by every command.
type runtime struct {
	store     app.Store
	cache     app.QuestionCache
	seq       app.SequenceAllocator
	service   *app.QuizService
	generator *app.QuizGenerator
	aiEnabled bool

	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config) (_ *runtime, err error) {
	rt := &runtime{}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	var db *bun.DB
	if cfg.Database.Driver != "" {
		db, err = sqlstore.Open(ctx, sqlstore.Driver(cfg.Database.Driver), cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		if err := sqlstore.Migrate(ctx, db); err != nil {
			return nil, err
		}
		rt.store = sqlstore.NewStore(db)
	} else {
		log.Warn().Msg("no database driver configured, data lives in memory only")
		rt.store = memory.NewStore()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable at startup")
		}
	}

	rt.seq, err = buildSequence(ctx, rt, cfg, db, redisClient)
	if err != nil {
		return nil, err
	}

	if redisClient != nil {
		rt.cache = infraredis.NewQuestionCache(redisClient, rt.store, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		rt.cache = memory.NewQuestionCache(rt.store, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	}

	aiTimeout := config.TTLDuration(cfg.AI.Timeout, 60*time.Second)
	var drafts app.DraftGenerator
	if cfg.AI.APIKey != "" {
		provider, err := ai.NewGemini(ctx, ai.GeminiConfig{
			APIKey:          cfg.AI.APIKey,
			Model:           cfg.AI.Model,
			Temperature:     cfg.AI.Temperature,
			TopP:            cfg.AI.TopP,
			TopK:            cfg.AI.TopK,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = provider.Close() })
		drafts = ai.NewClient(provider, aiTimeout)
		rt.aiEnabled = true
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, quizzes will be generated from the static bank")
	}

	rt.service = app.NewQuizService(rt.store, rt.cache, rt.seq, nil)
	rt.generator = app.NewQuizGenerator(drafts, bank.NewGenerator(bank.Default()), rt.store, rt.seq,
		app.WithAITimeout(aiTimeout),
		app.WithQuestionCache(rt.cache),
	)
	return rt, nil
}

// sequenceBackend resolves the configured allocator, defaulting to the
// database counters when one is configured.
func sequenceBackend(cfg config.Config) string {
	if cfg.Sequence.Backend != "" {
		return cfg.Sequence.Backend
	}
	if cfg.Database.Driver != "" {
		return backendSQL
	}
	return backendMemory
}

func buildSequence(ctx context.Context, rt *runtime, cfg config.Config, db *bun.DB, client *redis.Client) (app.SequenceAllocator, error) {
	backend := sequenceBackend(cfg)
	switch backend {
	case backendMemory:
		return memory.NewSequence(), nil
	case backendSQL:
		if db == nil {
			return nil, fmt.Errorf("sequence backend %q needs database.driver", backend)
		}
		return sqlstore.NewSequence(db), nil
	case backendPostgres:
		if cfg.Database.Driver != string(sqlstore.DriverPostgres) {
			return nil, fmt.Errorf("sequence backend %q needs the postgres database driver", backend)
		}
		pool, err := postgres.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		return postgres.NewSequence(pool), nil
	case backendRedis:
		if client == nil {
			return nil, fmt.Errorf("sequence backend %q needs redis.addr", backend)
		}
		return infraredis.NewSequence(client), nil
	default:
		return nil, fmt.Errorf("unknown sequence backend %q", backend)
	}
}
