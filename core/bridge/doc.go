// Package bridge connects an application core to a shell.
//
// Bridge is the serialized variant: events and outputs arrive as bytes, the
// outgoing requests and the view leave as bytes, all in one Format (JSON or
// CBOR). Each request that expects a resolution carries a UUID the shell
// echoes back to Resolve. Operations are named through a Catalog so that
// shells written in any language can dispatch on a stable string:
//
//	catalog := bridge.NewCatalog()
//	kv.Register(catalog)
//	render.Register(catalog)
//
//	b := bridge.New(middleware.FromCore[request.Effect, Event, ViewModel](core), catalog, bridge.WithFormat(bridge.CBOR))
//	requests, err := b.Update(eventBytes)
//	...
//	requests, err = b.Resolve(id, outputBytes)
//
// NativeBridge is the in-process variant: no serialization, typed values and
// sequential EffectIDs.
//
// Neither variant panics on malformed shell input. Failures are returned as
// *Error with an ErrorKind; Envelope turns them into a value a shell can
// decode.
package bridge
