// Package server runs remote canvas sessions over WebSocket.
//
// Each browser connection gets a Connection, a Session and a Painter. The
// painter draws by queueing operations on the session; the connection's loop
// sends everything queued as one frame on every tick and dispatches the
// renderer's events back to the painter.
//
// # Architecture
//
//	Server ── HandleWebSocket ──► Connection ── Run loop ──┬─ tick:  Painter.Update → flush
//	                                  │                    └─ event: dispatcher → Session / Resource / Painter
//	                                  └── readLoop ── inbound channel ──┘
//
// The Run loop is the only goroutine that touches the painter, so ticks
// and inbound events never overlap. Sessions share nothing except the
// counter that assigns their identifiers.
//
// # Frames
//
// A flush with pending commands sends them joined into one frame. With
// nothing pending, a "ping" keep-alive is sent only if nothing has been
// sent for SessionConfig.KeepAliveInterval.
//
// # Usage
//
//	srv := server.New(server.DefaultServerConfig(), func() server.Painter {
//	    return &MyPainter{}
//	})
//	srv.SetAssets(assets.NewResponder(assets.DirSource("resources"), logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Failure Handling
//
// Malformed or unknown inbound events are logged and skipped without
// affecting the rest of their frame. A panicking painter callback is logged
// with its stack and the loop continues. A write error closes the
// connection; sending on a closed connection is a no-op.
package server
