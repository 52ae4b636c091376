package transport

import (
	"errors"
	"io"
	"os"
	"sync"
)

// Stdio returns a Transport backed by os.Stdin and os.Stdout, for a process
// that an editor spawns as a stdio language server.
func Stdio() Transport {
	return Streams(os.Stdin, os.Stdout)
}

// Streams joins a separate reader and writer into one Transport. CloseWrite
// closes only out, which is how a stdio server tells the editor it is done
// sending while still reading.
func Streams(in io.ReadCloser, out io.WriteCloser) Transport {
	return &streamTransport{in: in, out: out}
}

type streamTransport struct {
	in  io.ReadCloser
	out io.WriteCloser

	outOnce sync.Once
	outErr  error
}

func (s *streamTransport) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *streamTransport) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s *streamTransport) CloseWrite() error {
	s.outOnce.Do(func() { s.outErr = s.out.Close() })
	return s.outErr
}

func (s *streamTransport) Close() error {
	return errors.Join(s.in.Close(), s.CloseWrite())
}
