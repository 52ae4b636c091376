package main

import (
	"fmt"
	"os"

	"github.com/gossip-lsp/bridge/transport"
)

func main() {
	ctl := newApp(transport.Stdio)

	if err := ctl.Run(os.Args); err != nil {
		fmt.Fprintln(ctl.ErrWriter, err)
		os.Exit(1)
	}
}
