package connector_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/bridge/bridgetest"
	"github.com/gossip-lsp/bridge/connector"
)

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := connector.NewMetrics("lspbridge")
	require.NoError(t, m.Register(reg))

	d := bridgetest.NewDialer(bridgetest.Hang, bridgetest.Refuse, bridgetest.Accept)
	defer d.Close()
	c := connector.New(connector.WithDialer(d), connector.WithObserver(m))

	conn, err := c.Connect(context.Background(), request(9000, 2, 10*time.Millisecond))
	require.NoError(t, err)
	conn.Close()

	_, err = connector.New(
		connector.WithDialer(bridgetest.NewDialer(bridgetest.Refuse)),
		connector.WithObserver(m),
	).Connect(context.Background(), request(9000, 0, time.Millisecond))
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["lspbridge_failed_attempts_total"])
	assert.True(t, names["lspbridge_connections_total"])
	assert.True(t, names["lspbridge_connect_duration_seconds"])
	assert.Equal(t, 1, testutil.CollectAndCount(m.Collectors()[2]), "one histogram sample set")
}

func TestMetricsCounts(t *testing.T) {
	m := connector.NewMetrics("test")
	ctx := context.Background()

	m.AttemptFailed(ctx, &connector.AttemptError{Attempt: 1, Err: connector.ErrAttemptTimeout})
	m.AttemptFailed(ctx, &connector.AttemptError{Attempt: 2, Err: bridgetest.ErrRefused})
	m.AttemptFailed(ctx, &connector.AttemptError{Attempt: 3, Err: bridgetest.ErrRefused})
	m.Connected(ctx, "localhost:1", 4, time.Millisecond)
	m.Exhausted(ctx, &connector.ExhaustedError{Tries: 1})

	attempts, outcomes := m.Collectors()[0].(*prometheus.CounterVec), m.Collectors()[1].(*prometheus.CounterVec)
	assert.Equal(t, 1.0, testutil.ToFloat64(attempts.WithLabelValues("timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(attempts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("exhausted")))
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d := bridgetest.NewDialer(bridgetest.Refuse)
	c := connector.New(connector.WithDialer(d), connector.WithObserver(connector.Logging(logger)))

	_, err := c.Connect(context.Background(), request(9000, 1, time.Millisecond))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "bridge connection attempt failed")
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "bridge connection retries exceeded")
	assert.Contains(t, out, "attempts=2")
}

type recordingObserver struct {
	failed    int
	connected int
	exhausted int
}

func (r *recordingObserver) AttemptFailed(context.Context, *connector.AttemptError) {
	r.failed++
}

func (r *recordingObserver) Connected(context.Context, string, int, time.Duration) {
	r.connected++
}

func (r *recordingObserver) Exhausted(context.Context, *connector.ExhaustedError) {
	r.exhausted++
}

func TestObserversFanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	d := bridgetest.NewDialer(bridgetest.Refuse, bridgetest.Accept)
	defer d.Close()
	c := connector.New(connector.WithDialer(d), connector.WithObserver(a), connector.WithObserver(b))

	conn, err := c.Connect(context.Background(), request(9000, 1, time.Millisecond))
	require.NoError(t, err)
	conn.Close()

	for _, r := range []*recordingObserver{a, b} {
		assert.Equal(t, 1, r.failed)
		assert.Equal(t, 1, r.connected)
		assert.Zero(t, r.exhausted)
	}
}
