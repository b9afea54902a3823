// Package llmclient abstracts the chat-model backends used for question
// routing and insight writing. Providers return raw text; JSON extraction
// and validation happen downstream.
package llmclient

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm backend unavailable")

// Options tunes a single chat call.
type Options struct {
	Temperature float64
	// MaxTokens caps generation length. Zero means the provider default.
	MaxTokens int
}

// Client defines the interface for chat-model providers.
type Client interface {
	Name() string
	// Chat sends a system prompt and one user message, returning the raw
	// assistant text.
	Chat(ctx context.Context, system, user string, opts Options) (string, error)
	// Verify checks the backend is reachable and the configured model is
	// available, returning the resolved model name.
	Verify(ctx context.Context) (string, error)
	Close() error
}

// Warmup sends a one-token throwaway request so the model is resident before
// the first real question. Failures are ignored; a real call will surface
// them later.
func Warmup(ctx context.Context, c Client) {
	_, _ = c.Chat(ctx, "", "Hi", Options{MaxTokens: 1})
}

// Middleware wraps a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Chain applies middlewares so the first listed is the outermost layer.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
