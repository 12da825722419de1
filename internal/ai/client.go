package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"quiz-assessment-service/internal/domain"
)

// Provider sends one prompt to a text-generation model and returns the raw
// response text.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client turns a Provider into a draft generator: it builds the prompt, calls
// the provider once and parses the response. A nil provider is allowed and
// makes every call fail with ErrProviderNotConfigured.
type Client struct {
	provider Provider
	timeout  time.Duration
}

func NewClient(p Provider, timeout time.Duration) *Client {
	return &Client{provider: p, timeout: timeout}
}

func (c *Client) Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.Draft, error) {
	if c == nil || c.provider == nil {
		return nil, ErrProviderNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := c.provider.Complete(ctx, BuildPrompt(topic, difficulty, count))
	if err != nil {
		if errors.Is(err, domain.ErrGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	log.Debug().
		Str("topic", topic).
		Int("chars", len(raw)).
		Dur("elapsed", time.Since(started)).
		Msg("ai response received")

	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}
	return ParseDrafts(raw)
}
