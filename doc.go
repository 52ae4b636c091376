// Package bridge connects language-server clients to a language-server
// bridge listening on a local TCP port. It retries while the bridge is
// still starting, then hands the established stream to the protocol client
// as a transport.
//
// A client needs only a few lines:
//
//	connect := bridge.BuildServerConnection(8888, 10, time.Second, false)
//	t, err := connect(ctx)
//
// Settings can also come from a TOML file that is hot-reloaded:
//
//	b := bridge.New(config.Defaults(), bridge.WithLogger(logger))
//	w, err := b.WatchConfig(".lspbridge.toml")
//	defer w.Close()
//	t, err := b.Connect(ctx)
//
// See cmd/lspbridge for a stdio-to-bridge proxy built on this package.
package bridge
