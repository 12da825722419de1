package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// QuestionCache caches question sets in Redis (hash per quiz) and falls back
// to a loader on cache miss.
// Questions are stored as: HSET quiz:{quizID}:questions {questionID} {json}
// Invalidate bumps quiz:{quizID}:gen; a fill only lands if the generation it
// read before loading is still current.
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionReader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader app.QuestionReader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if qs, ok := c.cached(ctx, quizID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.cached(ctx, quizID); ok {
			return qs, nil
		}

		gen, genErr := c.generation(ctx, quizID)
		if genErr != nil {
			log.Warn().Err(genErr).Int64("quiz_id", quizID).Msg("question cache generation read failed")
		}

		qs, err := c.loader.QuestionsByQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			c.fill(ctx, quizID, gen, qs)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	qs := result.([]domain.Question)
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (c *QuestionCache) Invalidate(ctx context.Context, quizID int64) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey(quizID))
	pipe.Del(ctx, questionsKey(quizID))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Persistence("invalidate question cache", err)
	}
	return nil
}

var errStaleFill = errors.New("question cache invalidated during load")

func (c *QuestionCache) generation(ctx context.Context, quizID int64) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// cached reports a miss on any Redis or decode error so the loader stays
// the source of truth.
func (c *QuestionCache) cached(ctx context.Context, quizID int64) ([]domain.Question, bool) {
	fields, err := c.client.HGetAll(ctx, questionsKey(quizID)).Result()
	if err != nil {
		log.Warn().Err(err).Int64("quiz_id", quizID).Msg("question cache read failed")
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}
	qs := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			log.Warn().Err(err).Int64("quiz_id", quizID).Msg("question cache entry corrupt")
			return nil, false
		}
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, true
}

func (c *QuestionCache) fill(ctx context.Context, quizID, gen int64, qs []domain.Question) {
	if len(qs) == 0 {
		return
	}
	key := questionsKey(quizID)
	values := make([]interface{}, 0, 2*len(qs))
	for _, q := range qs {
		raw, err := json.Marshal(q)
		if err != nil {
			return
		}
		values = append(values, strconv.FormatInt(q.ID, 10), raw)
	}

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(quizID)).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, values...)
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			return nil
		})
		return err
	}, genKey(quizID))
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		log.Debug().Int64("quiz_id", quizID).Msg("question cache fill skipped after invalidate")
	default:
		log.Warn().Err(err).Int64("quiz_id", quizID).Msg("question cache fill failed")
	}
}

func questionsKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":questions"
}

func genKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":gen"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
