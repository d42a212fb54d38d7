// Package registry keeps outstanding shell requests addressable by an opaque
// id while they wait for a response.
//
// A shell on the far side of a serialization boundary cannot hold on to Go
// callbacks. Instead every request that expects output is registered under an
// id, the id travels with the effect, and the shell later resumes the request
// by that id.
//
// Two id schemes are provided:
//
//	reg := registry.NewUUID()       // 128-bit random ids, for byte bridges
//	reg := registry.NewSequential() // EffectID counter starting at 1, for in-process bridges
//
// Notifications are never registered. Once requests are removed when they are
// resolved; Many requests stay registered until their consumer has gone away.
//
// All methods are safe for concurrent use. The resolve callback runs without
// the registry lock held, so it may register or resume other requests.
package registry
