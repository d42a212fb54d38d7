// Package websocket serves a bridge to remote shells over WebSocket.
//
// Every connection gets its own session, created by a SessionFactory, so each
// shell drives an independent application core. Frames are binary messages
// encoded in the bridge's format. The shell sends:
//
//	{"type": "event", "seq": 1, "payload": <encoded event>}
//	{"type": "resolve", "seq": 2, "id": <request id>, "payload": <encoded output>}
//	{"type": "view", "seq": 3}
//
// and receives, with the seq of the frame that caused it:
//
//	{"type": "effects", "seq": 1, "payload": <encoded requests>}
//	{"type": "view", "seq": 3, "payload": <encoded view model>}
//	{"type": "error", "seq": 2, "error": {"kind": "decode_output", "message": "..."}}
//
// Requests produced in the background (by handlers installed with
// middleware.HandleEffects) are pushed as effects frames with seq 0.
//
// Usage:
//
//	var cfg websocket.Config
//	config.MustLoad(&cfg)
//
//	srv := websocket.New(func(ctx context.Context) (*bridge.Bridge[counter.Event, counter.View], func(), error) {
//		core := counter.NewCore(counter.DefaultConfig())
//		b := bridge.New(middleware.FromCore[request.Effect, counter.Event, counter.View](core), counter.Catalog())
//		return b, nil, nil
//	}, websocket.WithConfig(cfg))
//	http.Handle("/shell", srv)
package websocket
