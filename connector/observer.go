package connector

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives the outcome of each attempt and of the whole sequence.
// Callbacks run synchronously on the goroutine calling Connect.
type Observer interface {
	AttemptFailed(ctx context.Context, err *AttemptError)
	Connected(ctx context.Context, address string, attempts int, elapsed time.Duration)
	Exhausted(ctx context.Context, err *ExhaustedError)
}

// Observers fans every callback out to obs, in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) AttemptFailed(ctx context.Context, err *AttemptError) {
	for _, o := range m {
		o.AttemptFailed(ctx, err)
	}
}

func (m multiObserver) Connected(ctx context.Context, address string, attempts int, elapsed time.Duration) {
	for _, o := range m {
		o.Connected(ctx, address, attempts, elapsed)
	}
}

func (m multiObserver) Exhausted(ctx context.Context, err *ExhaustedError) {
	for _, o := range m {
		o.Exhausted(ctx, err)
	}
}

type nopObserver struct{}

func (nopObserver) AttemptFailed(context.Context, *AttemptError)          {}
func (nopObserver) Connected(context.Context, string, int, time.Duration) {}
func (nopObserver) Exhausted(context.Context, *ExhaustedError)            {}

// Logging returns an observer that logs failed attempts at debug level and
// the final outcome of each sequence.
func Logging(logger *slog.Logger) Observer {
	return &logObserver{logger: logger}
}

type logObserver struct {
	logger *slog.Logger
}

func (l *logObserver) AttemptFailed(ctx context.Context, err *AttemptError) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, "bridge connection attempt failed",
		slog.String("address", err.Address),
		slog.Int("attempt", err.Attempt),
		slog.Bool("timeout", err.Timeout()),
		slog.String("error", err.Err.Error()),
	)
}

func (l *logObserver) Connected(ctx context.Context, address string, attempts int, elapsed time.Duration) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, "bridge connected",
		slog.String("address", address),
		slog.Int("attempts", attempts),
		slog.Duration("duration", elapsed),
	)
}

func (l *logObserver) Exhausted(ctx context.Context, err *ExhaustedError) {
	attrs := []slog.Attr{
		slog.String("address", err.Address),
		slog.Int("attempts", err.Tries),
	}
	if err.Err != nil {
		attrs = append(attrs, slog.String("error", err.Err.Error()))
	}
	l.logger.LogAttrs(ctx, slog.LevelError, "bridge connection retries exceeded", attrs...)
}
