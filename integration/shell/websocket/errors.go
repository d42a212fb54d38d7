package websocket

import "errors"

var (
	// ErrUnknownFrame is reported to the shell for a frame type it may not send.
	ErrUnknownFrame = errors.New("websocket: unknown frame type")

	// ErrMalformedFrame is reported to the shell for a frame that cannot be
	// decoded.
	ErrMalformedFrame = errors.New("websocket: malformed frame")
)
