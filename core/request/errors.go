package request

import "errors"

var (
	// ErrNever is returned when resolving a request that expects no response.
	ErrNever = errors.New("request does not expect a response")

	// ErrAlreadyResolved is returned when resolving a Once request a second time.
	ErrAlreadyResolved = errors.New("request has already been resolved")

	// ErrFinished is returned when a Many request's consumer has gone away.
	ErrFinished = errors.New("request stream has finished")

	// ErrOutputType is returned when a native output value has the wrong type.
	ErrOutputType = errors.New("output type does not match the operation")

	// ErrDecodeOutput is returned when serialized output cannot be decoded.
	ErrDecodeOutput = errors.New("failed to decode output")
)
