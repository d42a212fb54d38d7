// Package kv is a key-value storage capability.
//
// Tasks call the typed helpers; each one sends a single request and waits for
// its Result:
//
//	value, found, err := kv.Read(ctx, "count")
//	previous, err := kv.Write(ctx, "count", []byte("42"))
//
// The shell (or an in-process handler built with Handler) performs the
// operation against a Store. Store failures travel back inside Result.Error and
// surface from the helpers as errors wrapping ErrStore.
package kv
