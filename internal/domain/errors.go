package domain

import (
	"errors"
	"fmt"
)

// Error categories. Callers classify failures with errors.Is against these.
var (
	// ErrValidation marks malformed or out-of-range caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced quiz, question or user that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGeneration marks a failed AI generation attempt.
	ErrGeneration = errors.New("generation failed")
	// ErrPersistence marks a store or allocator failure.
	ErrPersistence = errors.New("persistence failed")
)

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrNoQuestions indicates a quiz has nothing to score against.
	ErrNoQuestions = fmt.Errorf("no questions found for this quiz: %w", ErrNotFound)
	// ErrUserNotFound indicates no user is registered under an email.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// Validationf builds an ErrValidation with a message naming the bad input.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store failure for op. Nil stays nil and already
// classified errors pass through untouched.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
