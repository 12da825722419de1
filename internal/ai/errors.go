package ai

import (
	"fmt"

	"quiz-assessment-service/internal/domain"
)

// Every failure of the AI path wraps domain.ErrGeneration so the orchestrator
// can treat them alike, while tests can still tell the stages apart.
var (
	ErrProviderNotConfigured = fmt.Errorf("%w: ai provider not configured", domain.ErrGeneration)
	ErrTransport             = fmt.Errorf("%w: ai provider call failed", domain.ErrGeneration)
	ErrEmptyResponse         = fmt.Errorf("%w: no text response from ai", domain.ErrGeneration)
	ErrTruncated             = fmt.Errorf("%w: ai response was truncated", domain.ErrGeneration)
	ErrInvalidResponse       = fmt.Errorf("%w: invalid json response from ai", domain.ErrGeneration)
	ErrSchema                = fmt.Errorf("%w: ai response validation failed", domain.ErrGeneration)
)
