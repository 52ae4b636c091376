package transport

import (
	"bytes"
	"io"
	"sync"
)

// MemoryPipe creates a pair of connected in-memory transports. Data written
// to one side can be read from the other. Close shuts both directions;
// CloseWrite shuts only the sending one.
func MemoryPipe() (client Transport, server Transport) {
	toServer, toClient := newPipe(), newPipe()
	return &memoryTransport{r: toClient, w: toServer}, &memoryTransport{r: toServer, w: toClient}
}

type memoryTransport struct {
	r *pipe
	w *pipe
}

func (m *memoryTransport) Read(p []byte) (int, error)  { return m.r.Read(p) }
func (m *memoryTransport) Write(p []byte) (int, error) { return m.w.Write(p) }

func (m *memoryTransport) CloseWrite() error {
	m.w.close()
	return nil
}

func (m *memoryTransport) Close() error {
	m.r.close()
	m.w.close()
	return nil
}

// pipe carries bytes in one direction. Reads block until data arrives or
// the pipe is closed; buffered data is still delivered after close.
type pipe struct {
	mu     sync.Mutex
	ready  *sync.Cond
	buf    bytes.Buffer
	closed bool
}

func newPipe() *pipe {
	p := &pipe{}
	p.ready = sync.NewCond(&p.mu)
	return p
}

func (p *pipe) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	defer p.ready.Broadcast()
	return p.buf.Write(data)
}

func (p *pipe) Read(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.buf.Len() == 0 && !p.closed {
		p.ready.Wait()
	}
	if p.buf.Len() == 0 {
		return 0, io.EOF
	}
	return p.buf.Read(data)
}

func (p *pipe) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.ready.Broadcast()
}
