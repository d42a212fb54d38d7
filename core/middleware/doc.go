// Package middleware wraps a Core in layers.
//
// A Layer has the same shape as a Core, except that every call also takes an
// EffectCallback. Layers that finish work in the background (HandleEffects)
// report the effects that work produced through that callback, since the
// original call has usually returned by then.
//
// Layers compose by wrapping:
//
//	layer := middleware.FromCore[request.Effect, Event, ViewModel](core)
//	handled := middleware.HandleEffects(layer, middleware.Handlers(
//		kv.Handler(store),
//		timer.NewHandler(clock),
//	))
//	logged := middleware.Log(handled, logger)
//	effects := logged.ProcessEvent(ev, func(late []request.Effect) {
//		// effects produced after background resolution
//	})
//
// MapEffect converts or drops effects on their way out, Instrument records
// Prometheus metrics and Log writes debug records.
package middleware
