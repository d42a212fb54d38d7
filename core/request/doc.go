// Package request correlates an outgoing effect with its eventual resolution.
//
// An Operation is a capability-specific payload (for example a key-value Get)
// that is paired with exactly one output type. The pairing is declared by
// embedding Returns in the operation struct:
//
//	type Get struct {
//		request.Returns[Result]
//		Key string `json:"key"`
//	}
//
// Get now satisfies request.Operation[Result] and nothing else, so every place that
// requests it is checked by the compiler to expect a Result back. The embedded field
// is empty and invisible to encoding/json and CBOR.
//
// A Request wraps an operation together with a Resolve handle, which comes in three
// arities:
//
//   - Never: fire-and-forget notifications; resolving one is always an error.
//   - Once: resolvable exactly one time; the second attempt returns ErrAlreadyResolved.
//   - Many: resolvable until the consumer signals it is gone, after which resolves
//     return ErrFinished.
//
// Requests are handed out through the type-erased Effect interface, which is what
// commands emit and what registries and bridges store. The erased Resolver surface
// accepts either a native Go value (ResolveValue) or a decode function for
// serialized output (ResolveEncoded).
package request
