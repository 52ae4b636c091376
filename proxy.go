package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gossip-lsp/bridge/transport"
)

// Proxy copies bytes between a local transport (typically stdio) and the
// bridge stream until the bridge side ends or ctx is cancelled. When the
// local side reaches EOF the bridge stream is half-closed so pending replies
// still flow back. If the bridge stream cannot half-close, local EOF ends the
// proxy instead. Both transports are closed on return.
//
// A clean end of the bridge stream returns nil.
func Proxy(ctx context.Context, local, remote transport.Transport) error {
	upstream := make(chan error, 1)
	downstream := make(chan error, 1)

	go func() {
		if _, err := io.Copy(remote, local); err != nil {
			upstream <- fmt.Errorf("copying to bridge: %w", err)
			return
		}
		cw, ok := remote.(interface{ CloseWrite() error })
		if !ok {
			upstream <- nil
			return
		}
		err := cw.CloseWrite()
		switch {
		case err == nil:
			// Replies keep flowing until the bridge ends its side.
		case errors.Is(err, errors.ErrUnsupported):
			upstream <- nil
		default:
			upstream <- fmt.Errorf("half-closing bridge stream: %w", err)
		}
	}()
	go func() {
		if _, err := io.Copy(local, remote); err != nil {
			downstream <- fmt.Errorf("copying from bridge: %w", err)
			return
		}
		downstream <- nil
	}()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-upstream:
	case err = <-downstream:
	}

	local.Close()
	remote.Close()
	if errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}
