package transport

import (
	"errors"
	"net"
)

type connTransport struct {
	conn net.Conn
}

// FromConn creates a transport from an established connection.
func FromConn(conn net.Conn) Transport {
	return &connTransport{conn: conn}
}

func (t *connTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *connTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *connTransport) Close() error                { return t.conn.Close() }

// CloseWrite half-closes the connection so the peer sees EOF while replies
// can still be read. It returns errors.ErrUnsupported for conns that cannot
// half-close, such as a *websocket.Conn.
func (t *connTransport) CloseWrite() error {
	if cw, ok := t.conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return errors.ErrUnsupported
}
