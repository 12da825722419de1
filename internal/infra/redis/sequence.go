package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"quiz-assessment-service/internal/domain"
)

// Sequence allocates identifiers with INCR so several service instances can
// share one counter space.
type Sequence struct {
	client *redis.Client
	prefix string
}

func NewSequence(client *redis.Client) *Sequence {
	return &Sequence{client: client, prefix: "seq:"}
}

func (s *Sequence) Next(ctx context.Context, counter string) (int64, error) {
	id, err := s.client.Incr(ctx, s.prefix+counter).Result()
	if err != nil {
		return 0, domain.Persistence("allocate "+counter+" id", err)
	}
	return id, nil
}

