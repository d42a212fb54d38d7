package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCapability is returned for an operation type missing from the
	// catalog.
	ErrUnknownCapability = errors.New("bridge: unknown capability")

	// ErrUnknownFormat is returned by FormatByName.
	ErrUnknownFormat = errors.New("bridge: unknown format")

	// ErrInvalidID is returned for a request id that is not a valid UUID.
	ErrInvalidID = errors.New("bridge: invalid request id")
)

// ErrorKind classifies bridge errors for the shell.
type ErrorKind string

const (
	KindDecodeEvent   ErrorKind = "decode_event"   // event bytes could not be decoded
	KindDecodeOutput  ErrorKind = "decode_output"  // output bytes or value did not fit the request
	KindUnknownEffect ErrorKind = "unknown_effect" // no outstanding request with that id
	KindResolveFailed ErrorKind = "resolve_failed" // the request cannot take this resolution
	KindEncodeEffects ErrorKind = "encode_effects" // outgoing requests could not be encoded
	KindEncodeView    ErrorKind = "encode_view"    // the view model could not be encoded
)

// Error is returned by every bridge call that fails because of shell input or
// encoding. Application panics are not converted.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bridge: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorEnvelope is the serializable form of an Error.
type ErrorEnvelope struct {
	Kind    ErrorKind `json:"kind" cbor:"kind"`
	Message string    `json:"message" cbor:"message"`
}

// Envelope returns the wire form of err. Errors that are not bridge errors are
// reported as KindResolveFailed.
func Envelope(err error) ErrorEnvelope {
	var be *Error
	if errors.As(err, &be) {
		return ErrorEnvelope{Kind: be.Kind, Message: be.Err.Error()}
	}
	return ErrorEnvelope{Kind: KindResolveFailed, Message: err.Error()}
}
