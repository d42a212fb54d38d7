package request

import (
	"fmt"
	"reflect"
)

// Returns declares the output type of an operation. Embed it in an operation
// struct to make that struct satisfy Operation[O].
type Returns[O any] struct{}

func (Returns[O]) output(O) {}

// Operation is a capability request payload whose resolution carries an O.
type Operation[O any] interface {
	output(O)
}

// Resolver is the type-erased resolution surface of a request.
type Resolver interface {
	// Kind returns the resolution arity.
	Kind() Kind
	// Finished reports whether further resolves are certain to fail.
	Finished() bool
	// ResolveValue resolves with a native Go value; ErrOutputType when it is not
	// the operation's output type.
	ResolveValue(out any) error
	// ResolveEncoded resolves with serialized output: decode is called with a
	// pointer to a fresh output value and must fill it in.
	ResolveEncoded(decode func(dst any) error) error
}

// Effect is a type-erased request as emitted by commands and handed to shells.
type Effect interface {
	Resolver
	// Operation returns the operation payload.
	Operation() any
}

// Request pairs an operation with its resolve handle.
type Request[O any] struct {
	op     Operation[O]
	handle *Resolve[O]
}

// New creates a request from an operation and a handle.
func New[O any](op Operation[O], handle *Resolve[O]) *Request[O] {
	return &Request[O]{op: op, handle: handle}
}

// NewNever creates a notification request.
func NewNever[O any](op Operation[O]) *Request[O] {
	return New(op, ResolvesNever[O]())
}

// NewOnce creates a request resolved exactly once with fn.
func NewOnce[O any](op Operation[O], fn func(O)) *Request[O] {
	return New(op, ResolvesOnce(fn))
}

// NewMany creates a streaming request.
func NewMany[O any](op Operation[O], fn func(O) error) *Request[O] {
	return New(op, ResolvesMany(fn))
}

// Op returns the typed operation.
func (r *Request[O]) Op() Operation[O] {
	return r.op
}

// Operation returns the operation as an untyped value.
func (r *Request[O]) Operation() any {
	return r.op
}

// Kind returns the resolution arity.
func (r *Request[O]) Kind() Kind {
	return r.handle.Kind()
}

// Finished reports whether the request can no longer be resolved.
func (r *Request[O]) Finished() bool {
	return r.handle.Finished()
}

// Resolve delivers output to the task waiting on this request.
func (r *Request[O]) Resolve(out O) error {
	return r.handle.Resolve(out)
}

// ResolveValue implements Resolver.
func (r *Request[O]) ResolveValue(out any) error {
	typed, ok := out.(O)
	if !ok {
		var zero O
		return fmt.Errorf("%w: expected %T, got %T", ErrOutputType, zero, out)
	}
	return r.handle.Resolve(typed)
}

// ResolveEncoded implements Resolver.
func (r *Request[O]) ResolveEncoded(decode func(dst any) error) error {
	if r.handle.Kind() == Never {
		return ErrNever
	}
	var out O
	if err := decode(&out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeOutput, err)
	}
	return r.handle.Resolve(out)
}

// String implements fmt.Stringer.
func (r *Request[O]) String() string {
	return fmt.Sprintf("Request(%T, %s)", r.op, r.handle.Kind())
}

// Describe returns the type name of an operation, without the pointer prefix,
// for example "kv.Get".
func Describe(op any) string {
	t := reflect.TypeOf(op)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
