package ai

import (
	"context"
	"errors"
	"fmt"
)

// Completer is a generic text-completion backend.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options tune a single generation request. Zero values fall back to backend defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

var (
	// ErrDisabled is returned when no backend is configured.
	ErrDisabled = errors.New("ai completer disabled")
	// ErrEmptyCompletion is returned when a backend answers without text.
	ErrEmptyCompletion = errors.New("ai completion empty")
)

// StatusError reports a non-200 answer from a backend.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s status %d", e.Backend, e.StatusCode)
	}
	return fmt.Sprintf("%s status %d: %s", e.Backend, e.StatusCode, e.Body)
}
