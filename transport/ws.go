package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/websocket"
)

// WebSocketDialer dials bridges that serve the language server over a
// WebSocket endpoint instead of a raw TCP port. It satisfies
// connector.Dialer, and the *websocket.Conn it returns is a net.Conn that
// carries the stream as binary frames.
type WebSocketDialer struct {
	// Path is the endpoint path, e.g. "/lsp". Defaults to "/".
	Path string
	// Origin is sent in the handshake. Defaults to "http://localhost/".
	Origin string
	// Protocol lists the subprotocols to offer.
	Protocol []string
}

// DialContext performs the WebSocket handshake with address.
func (d *WebSocketDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("websocket: unsupported network %q", network)
	}
	path := d.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	origin := d.Origin
	if origin == "" {
		origin = "http://localhost/"
	}

	cfg, err := websocket.NewConfig("ws://"+address+path, origin)
	if err != nil {
		return nil, err
	}
	cfg.Protocol = d.Protocol

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
