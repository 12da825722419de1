package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assessment-service/internal/domain"
)

// Sequence allocates identifiers from native Postgres sequences, one per
// counter, created on first use.
type Sequence struct {
	pool *pgxpool.Pool

	// mu serializes CREATE SEQUENCE, which races on the catalog when run
	// concurrently for the same name.
	mu      sync.Mutex
	created map[string]bool
}

func NewSequence(pool *pgxpool.Pool) *Sequence {
	return &Sequence{pool: pool, created: make(map[string]bool)}
}

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (s *Sequence) Next(ctx context.Context, counter string) (int64, error) {
	name := pgx.Identifier{counter + "_id_seq"}.Sanitize()
	if err := s.ensure(ctx, name); err != nil {
		return 0, domain.Persistence("create "+counter+" sequence", err)
	}

	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval($1::regclass)`, name).Scan(&id); err != nil {
		return 0, domain.Persistence("allocate "+counter+" id", err)
	}
	return id, nil
}

func (s *Sequence) ensure(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[name] {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `CREATE SEQUENCE IF NOT EXISTS `+name); err != nil {
		return err
	}
	s.created[name] = true
	return nil
}
