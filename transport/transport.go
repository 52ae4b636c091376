// Package transport provides the byte streams a language-server client talks
// over: a connected bridge socket, the process's own stdio, an in-memory
// pipe for tests, and a WebSocket dialer for bridges served over HTTP.
package transport

import (
	"context"
	"io"
)

// Transport provides a bidirectional byte stream. The same value is both the
// reader and the writer side handed to a protocol client.
type Transport interface {
	io.ReadWriteCloser
}

// Func produces a connected Transport. A protocol client calls it once per
// connection it needs.
type Func func(ctx context.Context) (Transport, error)
