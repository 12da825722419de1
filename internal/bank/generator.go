package bank

import (
	"math/rand"
	"sync"
	"time"

	"quiz-assessment-service/internal/domain"
)

// Generator synthesizes quizzes from a Bank. Safe for concurrent use.
type Generator struct {
	bank *Bank
	mu   sync.Mutex
	rnd  *rand.Rand
}

func NewGenerator(b *Bank) *Generator {
	return NewGeneratorWithSource(b, rand.NewSource(time.Now().UnixNano()))
}

// NewGeneratorWithSource is test-only for reproducible shuffles.
func NewGeneratorWithSource(b *Bank, src rand.Source) *Generator {
	return &Generator{bank: b, rnd: rand.New(src)}
}

// GenerateStatic returns exactly count drafts for topic and difficulty. The
// selected bank is shuffled and, when smaller than count, cycled from the
// start of the shuffled order until count drafts are collected.
func (g *Generator) GenerateStatic(topic string, difficulty domain.Difficulty, count int) []domain.Draft {
	source := g.bank.Questions(topic, difficulty)
	if len(source) == 0 || count <= 0 {
		return nil
	}

	shuffled := make([]domain.Draft, len(source))
	copy(shuffled, source)
	g.mu.Lock()
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	g.mu.Unlock()

	out := make([]domain.Draft, 0, count)
	for len(out) < count {
		need := count - len(out)
		if need > len(shuffled) {
			need = len(shuffled)
		}
		out = append(out, shuffled[:need]...)
	}
	return out
}
