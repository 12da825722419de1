package sqlstore

import (
	"context"

	"github.com/uptrace/bun"

	"quiz-assessment-service/internal/domain"
)

// Sequence allocates identifiers from the counters table. The upsert takes a
// row lock, so concurrent callers on any dialect see distinct values.
type Sequence struct {
	db *bun.DB
}

func NewSequence(db *bun.DB) *Sequence {
	return &Sequence{db: db}
}

func (s *Sequence) Next(ctx context.Context, counter string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, seq) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`, counter).Scan(&id)
	if err != nil {
		return 0, domain.Persistence("allocate "+counter+" id", err)
	}
	return id, nil
}
