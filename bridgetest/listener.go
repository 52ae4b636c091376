package bridgetest

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

// Listener is a loopback TCP listener standing in for a bridge. Accepted
// connections are queued for the test to collect with Accept.
type Listener struct {
	t     testing.TB
	ln    net.Listener
	conns chan net.Conn

	mu       sync.Mutex
	accepted []net.Conn
}

// Listen starts a Listener on a free loopback port. It is closed, along with
// every accepted connection, when the test completes.
func Listen(t testing.TB) *Listener {
	t.Helper()
	return ListenOn(t, 0)
}

// ListenOn starts a Listener on the given loopback port.
func ListenOn(t testing.TB, port int) *Listener {
	t.Helper()
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("listen on port %d: %v", port, err)
	}
	l := &Listener{t: t, ln: ln, conns: make(chan net.Conn, 16)}
	go l.run()
	t.Cleanup(l.Close)
	return l
}

func (l *Listener) run() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			close(l.conns)
			return
		}
		l.mu.Lock()
		l.accepted = append(l.accepted, conn)
		l.mu.Unlock()
		l.conns <- conn
	}
}

// Port returns the port the listener is bound to.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Accept returns the next accepted connection, failing the test if none
// arrives within timeout.
func (l *Listener) Accept(timeout time.Duration) net.Conn {
	l.t.Helper()
	select {
	case conn, ok := <-l.conns:
		if !ok {
			l.t.Fatal("listener closed before a connection was accepted")
		}
		return conn
	case <-time.After(timeout):
		l.t.Fatalf("no connection accepted within %s", timeout)
		return nil
	}
}

// Close stops accepting connections and closes the accepted ones.
func (l *Listener) Close() {
	l.ln.Close()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.accepted {
		c.Close()
	}
}

// ClosedPort returns a loopback port that nothing is listening on, so dials
// to it are refused.
func ClosedPort(t testing.TB) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}
