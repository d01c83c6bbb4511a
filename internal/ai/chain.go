package ai

import (
	"context"
	"errors"
)

type completerChain struct {
	primary  Completer
	fallback Completer
}

// WithFallback returns a completer that first tries the primary implementation and
// falls back to the provided completer when the primary is unavailable or fails.
func WithFallback(primary, fallback Completer) Completer {
	if isNil(primary) {
		return fallback
	}
	if isNil(fallback) {
		return primary
	}
	return &completerChain{primary: primary, fallback: fallback}
}

func (c *completerChain) Enabled() bool {
	if c == nil {
		return false
	}
	return c.primary.Enabled() || c.fallback.Enabled()
}

func (c *completerChain) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	var primaryErr error
	if c.primary.Enabled() {
		text, err := c.primary.Complete(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		primaryErr = err
		if ctx.Err() != nil {
			return "", err
		}
	}
	if c.fallback.Enabled() {
		text, err := c.fallback.Complete(ctx, prompt, opts)
		if err != nil && primaryErr != nil {
			return "", errors.Join(primaryErr, err)
		}
		return text, err
	}
	if primaryErr != nil {
		return "", primaryErr
	}
	return "", ErrDisabled
}

// isNil guards against typed nil pointers stored in the interface.
func isNil(c Completer) bool {
	if c == nil {
		return true
	}
	switch v := c.(type) {
	case *Client:
		return v == nil
	case *OllamaClient:
		return v == nil
	}
	return false
}
