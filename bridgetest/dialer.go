// Package bridgetest provides testing utilities for code that connects to a
// language-server bridge. It includes a scripted dialer that fails or hangs
// on chosen attempts without touching the network, plus loopback listeners
// for tests that need real sockets.
package bridgetest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// ErrRefused is returned by Refuse steps.
var ErrRefused = errors.New("connection refused")

// Step is the scripted outcome of one dial.
type Step int

const (
	// Accept returns one end of an in-memory pipe.
	Accept Step = iota
	// Refuse fails immediately with ErrRefused.
	Refuse
	// Hang blocks until the dial context is done.
	Hang
)

func (s Step) String() string {
	switch s {
	case Accept:
		return "accept"
	case Refuse:
		return "refuse"
	case Hang:
		return "hang"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Dialer plays back a script of steps, one per DialContext call. Calls past
// the end of the script repeat the last step.
type Dialer struct {
	mu          sync.Mutex
	steps       []Step
	calls       int
	addresses   []string
	inFlight    int
	maxInFlight int
	peers       []net.Conn
}

// NewDialer creates a dialer that follows steps. An empty script always hangs.
func NewDialer(steps ...Step) *Dialer {
	return &Dialer{steps: steps}
}

// DialContext implements connector.Dialer.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	step := Hang
	if n := len(d.steps); n > 0 {
		step = d.steps[min(d.calls, n-1)]
	}
	d.calls++
	d.addresses = append(d.addresses, address)
	d.inFlight++
	d.maxInFlight = max(d.maxInFlight, d.inFlight)
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	switch step {
	case Refuse:
		return nil, fmt.Errorf("dial %s %s: %w", network, address, ErrRefused)
	case Hang:
		<-ctx.Done()
		return nil, ctx.Err()
	default:
		client, server := net.Pipe()
		d.mu.Lock()
		d.peers = append(d.peers, server)
		d.mu.Unlock()
		return client, nil
	}
}

// Calls returns how many times DialContext was called.
func (d *Dialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Addresses returns the address of every dial, in order.
func (d *Dialer) Addresses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.addresses...)
}

// MaxInFlight returns the largest number of dials that were running at once.
func (d *Dialer) MaxInFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxInFlight
}

// Peer returns the server end of the i-th accepted dial.
func (d *Dialer) Peer(i int) net.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.peers) {
		return nil
	}
	return d.peers[i]
}

// Close closes the server end of every accepted dial.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.peers {
		p.Close()
	}
	return nil
}
