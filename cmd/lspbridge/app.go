// Command lspbridge lets an editor that only speaks stdio use a language
// server reachable through a TCP bridge. It connects to the bridge, retrying
// while it starts up, and then proxies stdin/stdout over the connection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/gossip-lsp/bridge"
	"github.com/gossip-lsp/bridge/config"
	"github.com/gossip-lsp/bridge/connector"
	"github.com/gossip-lsp/bridge/transport"
)

// Version is set at build time.
var Version = "dev"

func newApp(local func() transport.Transport) *cli.App {
	defaults := config.Defaults()

	ctl := cli.NewApp()
	ctl.Name = "lspbridge"
	ctl.Version = Version
	ctl.Usage = "proxy a stdio language-server session to a TCP bridge"
	ctl.ErrWriter = os.Stderr
	ctl.Flags = []cli.Flag{
		cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "bridge host"},
		cli.IntFlag{Name: "port, p", Value: defaults.ServerPort, Usage: "bridge port"},
		cli.IntFlag{Name: "max-tries", Value: defaults.MaxTries, Usage: "retries after the first connection attempt"},
		cli.DurationFlag{Name: "retry-delay", Value: time.Duration(defaults.RetryDelay), Usage: "per-attempt timeout and spacing between attempts, 0 disables"},
		cli.BoolFlag{Name: "release", Usage: "expect a bundled bridge to be launched (not supported yet)"},
		cli.StringFlag{Name: "config, c", Usage: "TOML settings file layered over the flags and watched for changes"},
		cli.StringFlag{Name: "websocket-path", Usage: "dial the bridge over WebSocket at this path instead of raw TCP"},
		cli.StringFlag{Name: "metrics", Usage: "serve prometheus metrics on this address"},
		cli.BoolFlag{Name: "debug, d", Usage: "log every connection attempt"},
	}
	ctl.Action = func(c *cli.Context) error {
		return run(c, local)
	}
	return ctl
}

// run opens the local transport only once the bridge is connected, so every
// earlier failure leaves it untouched.
func run(c *cli.Context, openLocal func() transport.Transport) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

	settings := config.Bridge{
		Host:        c.String("host"),
		ServerPort:  c.Int("port"),
		MaxTries:    c.Int("max-tries"),
		RetryDelay:  config.Duration(c.Duration("retry-delay")),
		ReleaseMode: c.Bool("release"),
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	opts := []bridge.Option{bridge.WithLogger(logger)}
	if path := c.String("websocket-path"); path != "" {
		opts = append(opts, bridge.WithDialer(&transport.WebSocketDialer{Path: path}))
	}

	if addr := c.String("metrics"); addr != "" {
		metrics := connector.NewMetrics("lspbridge")
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		stop, err := serveMetrics(addr, reg, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer stop()
		opts = append(opts, bridge.WithObserver(metrics))
	}

	b := bridge.New(settings, opts...)
	if path := c.String("config"); path != "" {
		w, err := b.WatchConfig(path)
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		defer w.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	remote, err := b.Connect(ctx)
	if err != nil {
		return err
	}
	local := openLocal()
	logger.Debug("proxying stdio to bridge", "address", b.Request().Address())

	if err := bridge.Proxy(ctx, local, remote); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return func() { srv.Close() }, nil
}
