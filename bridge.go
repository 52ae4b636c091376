package bridge

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gossip-lsp/bridge/config"
	"github.com/gossip-lsp/bridge/connector"
	"github.com/gossip-lsp/bridge/transport"
)

// Bridge produces transports connected to a language-server bridge. The
// settings are read on every Connect, so a reloaded config applies to the
// next connection.
type Bridge struct {
	settings  *config.Store[config.Bridge]
	connector *connector.Connector
	logger    *slog.Logger

	connectorOpts []connector.Option
}

// New creates a Bridge with fixed initial settings.
func New(settings config.Bridge, opts ...Option) *Bridge {
	return NewWithStore(config.NewStore(&settings), opts...)
}

// NewWithStore creates a Bridge that reads its settings from store.
func NewWithStore(store *config.Store[config.Bridge], opts ...Option) *Bridge {
	b := &Bridge{
		settings: store,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	for _, o := range opts {
		o(b)
	}
	copts := append([]connector.Option{connector.WithObserver(connector.Logging(b.logger))}, b.connectorOpts...)
	b.connector = connector.New(copts...)

	if store.Get().ReleaseMode {
		b.warnReleaseMode()
	}
	store.OnChange(func(old, cur *config.Bridge) {
		if cur.ReleaseMode && !old.ReleaseMode {
			b.warnReleaseMode()
		}
	})
	return b
}

func (b *Bridge) warnReleaseMode() {
	b.logger.Warn("release mode is not supported yet, the bridge must already be running")
}

// BuildServerConnection returns a factory that connects to the bridge on
// localhost:serverPort, allowing maxTries retries spaced retryDelay apart.
func BuildServerConnection(serverPort, maxTries int, retryDelay time.Duration, releaseMode bool, opts ...Option) transport.Func {
	settings := config.Defaults()
	settings.ServerPort = serverPort
	settings.MaxTries = maxTries
	settings.RetryDelay = config.Duration(retryDelay)
	settings.ReleaseMode = releaseMode
	return New(settings, opts...).ServerOptions()
}

// Settings returns the store holding the current settings.
func (b *Bridge) Settings() *config.Store[config.Bridge] {
	return b.settings
}

// Request converts the current settings into a connection request.
func (b *Bridge) Request() connector.Request {
	s := b.settings.Get()
	return connector.Request{
		Host:         s.Host,
		Port:         s.ServerPort,
		MaxTries:     s.MaxTries,
		RetryTimeout: time.Duration(s.RetryDelay),
	}
}

// Connect dials the bridge and returns the established stream. On retry
// exhaustion the error is a *connector.ExhaustedError.
func (b *Bridge) Connect(ctx context.Context) (transport.Transport, error) {
	conn, err := b.connector.Connect(ctx, b.Request())
	if err != nil {
		return nil, err
	}
	return transport.FromConn(conn), nil
}

// ServerOptions returns Connect as a transport factory for a protocol client.
func (b *Bridge) ServerOptions() transport.Func {
	return b.Connect
}

// WatchConfig loads settings from the TOML file at path, layered over the
// current settings, and reloads them whenever the file changes. A file that
// fails to load is logged and the previous settings stay in effect.
func (b *Bridge) WatchConfig(path string) (*config.Watcher, error) {
	base := *b.settings.Get()
	reloader := config.NewReloader(b.settings, path, &base)

	if _, err := os.Stat(path); err == nil {
		if _, err := reloader.HandleChange(); err != nil {
			b.logger.Warn("failed to load bridge settings", "path", path, "error", err)
		}
	}

	return config.NewWatcher(path, func() {
		changed, err := reloader.HandleChange()
		if err != nil {
			b.logger.Warn("failed to reload bridge settings", "path", path, "error", err)
			return
		}
		if !changed {
			return
		}
		s := b.settings.Get()
		b.logger.Info("bridge settings reloaded",
			"host", s.Host,
			"port", s.ServerPort,
			"max_tries", s.MaxTries,
			"retry_delay", s.RetryDelay.String(),
		)
	}, config.WithWatcherLogger(b.logger))
}
