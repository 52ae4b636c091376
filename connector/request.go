package connector

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Request identifies the bridge to connect to and the retry policy to use.
type Request struct {
	Host string
	Port int
	// MaxTries is the number of retries after the first attempt, so at most
	// MaxTries+1 attempts are made.
	MaxTries int
	// RetryTimeout bounds each attempt and sets the cadence between attempt
	// starts. Zero disables both.
	RetryTimeout time.Duration
}

// Address returns the dial address of the request.
func (r Request) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Validate checks the request before any dial is made.
func (r Request) Validate() error {
	switch {
	case r.Host == "":
		return fmt.Errorf("%w: empty host", ErrInvalidRequest)
	case r.Port < 1 || r.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidRequest, r.Port)
	case r.MaxTries < 0:
		return fmt.Errorf("%w: negative max tries %d", ErrInvalidRequest, r.MaxTries)
	case r.RetryTimeout < 0:
		return fmt.Errorf("%w: negative retry timeout %s", ErrInvalidRequest, r.RetryTimeout)
	}
	return nil
}
