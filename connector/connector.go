// Package connector opens the client side of a language-server bridge
// connection. It dials a TCP address, retrying refused or timed out attempts
// a bounded number of times, and hands the established stream to the caller.
package connector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/multierr"
)

// Dialer opens a single connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures a Connector.
type Option func(*Connector)

// WithDialer replaces the default *net.Dialer.
func WithDialer(d Dialer) Option {
	return func(c *Connector) { c.dialer = d }
}

// WithObserver adds an observer notified of attempts and outcomes.
func WithObserver(o Observer) Option {
	return func(c *Connector) { c.observers = append(c.observers, o) }
}

// Connector establishes bridge connections. All per-call state lives in
// Connect, so one Connector may serve concurrent calls.
type Connector struct {
	dialer    Dialer
	observers []Observer
	observer  Observer
}

// New creates a Connector.
func New(opts ...Option) *Connector {
	c := &Connector{dialer: &net.Dialer{}}
	for _, o := range opts {
		o(c)
	}
	switch len(c.observers) {
	case 0:
		c.observer = nopObserver{}
	case 1:
		c.observer = c.observers[0]
	default:
		c.observer = Observers(c.observers...)
	}
	return c
}

// Connect dials req.Address until an attempt succeeds or req.MaxTries
// retries have failed. Attempts are strictly sequential and every failed
// attempt releases its socket and deadline before the next one starts.
//
// On success the returned conn has no deadline set and belongs to the
// caller. On exhaustion the error is an *ExhaustedError. Cancelling ctx
// aborts the attempt in flight and returns an error wrapping ctx.Err().
func (c *Connector) Connect(ctx context.Context, req Request) (net.Conn, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	addr := req.Address()

	var (
		conn  net.Conn
		tries int
		last  error
		all   error
		pace  = &cadence{window: req.RetryTimeout}
		begin = time.Now()
	)

	op := func() error {
		tries++
		pace.start = time.Now()
		nc, err := c.attempt(ctx, addr, req.RetryTimeout)
		if err == nil {
			conn = nc
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		aerr := &AttemptError{Attempt: tries, Address: addr, Err: err}
		last = err
		all = multierr.Append(all, aerr)
		c.observer.AttemptFailed(ctx, aerr)
		return aerr
	}

	if err := backoff.Retry(op, backoff.WithContext(retryPolicy(pace, req.MaxTries), ctx)); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("connecting to %s: %w", addr, cerr)
		}
		exhausted := &ExhaustedError{Address: addr, Tries: tries, Err: last, all: all}
		c.observer.Exhausted(ctx, exhausted)
		return nil, exhausted
	}

	c.observer.Connected(ctx, addr, tries, time.Since(begin))
	return conn, nil
}

// attempt performs one dial bounded by timeout. The attempt context is
// released on every return path.
func (c *Connector) attempt(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	actx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeoutCause(ctx, timeout, ErrAttemptTimeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(actx, "tcp", addr)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		if ctx.Err() == nil && errors.Is(context.Cause(actx), ErrAttemptTimeout) {
			return nil, ErrAttemptTimeout
		}
		return nil, err
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func retryPolicy(pace backoff.BackOff, maxTries int) backoff.BackOff {
	// WithMaxRetries treats zero as unlimited.
	if maxTries == 0 {
		return &backoff.StopBackOff{}
	}
	return backoff.WithMaxRetries(pace, uint64(maxTries))
}

// cadence spaces attempt starts window apart. An attempt that failed early
// waits out the rest of its window; one that used it up retries at once.
type cadence struct {
	window time.Duration
	start  time.Time
}

func (c *cadence) NextBackOff() time.Duration {
	if c.window <= 0 {
		return 0
	}
	if rest := c.window - time.Since(c.start); rest > 0 {
		return rest
	}
	return 0
}

func (c *cadence) Reset() {}
