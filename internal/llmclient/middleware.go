package llmclient

import (
	"context"
	"log"
	"time"
)

// WithLogging logs request sizes, latency, and errors. Provide a custom
// logger or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Chat(ctx context.Context, system, user string, opts Options) (string, error) {
	start := time.Now()
	l.log.Printf("LLM request (%s): %d bytes", l.next.Name(), len(system)+len(user))
	out, err := l.next.Chat(ctx, system, user, opts)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", l.next.Name(), err)
		return out, err
	}
	l.log.Printf("LLM response (%s): %d bytes in %s", l.next.Name(), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (l *logging) Verify(ctx context.Context) (string, error) {
	model, err := l.next.Verify(ctx)
	if err != nil {
		l.log.Printf("LLM verify failed (%s): %v", l.next.Name(), err)
	}
	return model, err
}
