package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// QuestionCache caches question sets with TTL to avoid repeated DB hits.
// Concurrent misses for the same quiz share one load.
type QuestionCache struct {
	loader app.QuestionReader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedQuestions
	// gen is bumped on Invalidate so in-flight loads don't repopulate stale data.
	gen map[int64]uint64
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader app.QuestionReader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedQuestions),
		gen:    make(map[int64]uint64),
	}
}

func (c *QuestionCache) QuestionsByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if qs, ok := c.lookup(quizID, c.clock()); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		now := c.clock()
		if qs, ok := c.lookup(quizID, now); ok {
			return qs, nil
		}

		c.mu.RLock()
		gen := c.gen[quizID]
		c.mu.RUnlock()

		qs, err := c.loader.QuestionsByQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen[quizID] == gen {
			c.cache[quizID] = cachedQuestions{
				questions: qs,
				expiresAt: now.Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCache) Invalidate(_ context.Context, quizID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, quizID)
	c.gen[quizID]++
	return nil
}

func (c *QuestionCache) lookup(quizID int64, now time.Time) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out
}
