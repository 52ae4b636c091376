package transport_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/gossip-lsp/bridge/transport"
)

func TestMemoryPipe(t *testing.T) {
	client, server := transport.MemoryPipe()

	_, err := client.Write([]byte("Content-Length: 2\r\n\r\n{}"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Content-Length: 2\r\n\r\n{}", string(buf[:n]))

	require.NoError(t, client.Close())
	_, err = server.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
	_, err = server.Write([]byte("x"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestMemoryPipeCloseWrite(t *testing.T) {
	client, server := transport.MemoryPipe()

	_, err := client.Write([]byte("bye"))
	require.NoError(t, err)
	require.NoError(t, client.(interface{ CloseWrite() error }).CloseWrite())

	got, err := io.ReadAll(server)
	require.NoError(t, err)
	assert.Equal(t, "bye", string(got))

	_, err = server.Write([]byte("still open"))
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "still open", string(buf[:n]))
}

func TestFromConn(t *testing.T) {
	a, b := net.Pipe()
	tr := transport.FromConn(a)
	defer tr.Close()

	go func() {
		b.Write([]byte("hello"))
		b.Close()
	}()
	got, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestWebSocketDialer(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()
		var msg []byte
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			return
		}
		websocket.Message.Send(ws, append([]byte("echo:"), msg...))
	}))
	defer srv.Close()

	d := &transport.WebSocketDialer{Path: "lsp"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := d.DialContext(ctx, "tcp", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(buf[:n]))
}

func TestWebSocketDialerRejectsNetwork(t *testing.T) {
	d := &transport.WebSocketDialer{}
	_, err := d.DialContext(context.Background(), "udp", "localhost:1")
	assert.ErrorContains(t, err, "unsupported network")
}

func TestStreamsCloseWrite(t *testing.T) {
	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	defer inW.Close()
	defer outR.Close()

	tr := transport.Streams(inR, outW)
	_, err = tr.Write([]byte("done"))
	require.NoError(t, err)
	require.NoError(t, tr.(interface{ CloseWrite() error }).CloseWrite())

	got, err := io.ReadAll(outR)
	require.NoError(t, err)
	assert.Equal(t, "done", string(got))

	_, err = inW.Write([]byte("more"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(tr, buf)
	require.NoError(t, err, "reading continues after the write side is closed")
	assert.Equal(t, "more", string(buf))

	assert.NoError(t, tr.Close(), "out is closed once even after CloseWrite")
}

func TestFromConnCloseWrite(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		a, b := net.Pipe()
		defer b.Close()
		tr := transport.FromConn(a)
		defer tr.Close()
		err := tr.(interface{ CloseWrite() error }).CloseWrite()
		assert.True(t, errors.Is(err, errors.ErrUnsupported))
	})

	t.Run("tcp", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		peer, err := ln.Accept()
		require.NoError(t, err)
		defer peer.Close()

		tr := transport.FromConn(conn)
		defer tr.Close()
		require.NoError(t, tr.(interface{ CloseWrite() error }).CloseWrite())

		got, err := io.ReadAll(peer)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestWebSocketDialerHandshake(t *testing.T) {
	type handshake struct {
		origin   string
		protocol []string
	}
	seen := make(chan handshake, 1)
	srv := httptest.NewServer(websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			seen <- handshake{origin: r.Header.Get("Origin"), protocol: cfg.Protocol}
			cfg.Protocol = cfg.Protocol[:1]
			return nil
		},
		Handler: func(ws *websocket.Conn) { ws.Close() },
	})
	defer srv.Close()

	d := &transport.WebSocketDialer{
		Path:     "/lsp",
		Origin:   "vscode-file://vscode-app",
		Protocol: []string{"lsp", "jsonrpc"},
	}
	conn, err := d.DialContext(context.Background(), "tcp", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	defer conn.Close()

	hs := <-seen
	assert.Equal(t, "vscode-file://vscode-app", hs.origin)
	assert.Equal(t, []string{"lsp", "jsonrpc"}, hs.protocol)
}
