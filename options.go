package bridge

import (
	"log/slog"

	"github.com/gossip-lsp/bridge/connector"
)

// Option configures a Bridge during construction.
type Option func(*Bridge)

// WithLogger sets a custom slog logger. Failed attempts are logged at debug
// level; exhaustion at error level.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}

// WithDialer replaces the TCP dialer, e.g. with a transport.WebSocketDialer.
func WithDialer(d connector.Dialer) Option {
	return func(b *Bridge) {
		b.connectorOpts = append(b.connectorOpts, connector.WithDialer(d))
	}
}

// WithObserver adds an observer of connection attempts, such as
// *connector.Metrics.
func WithObserver(o connector.Observer) Option {
	return func(b *Bridge) {
		b.connectorOpts = append(b.connectorOpts, connector.WithObserver(o))
	}
}
