package websocket

import "github.com/dmitrymomot/appcore/core/bridge"

// FrameType tells the receiver how to read a frame.
type FrameType string

const (
	FrameEvent   FrameType = "event"
	FrameResolve FrameType = "resolve"
	FrameView    FrameType = "view"
	FrameEffects FrameType = "effects"
	FrameError   FrameType = "error"
)

// Frame is one WebSocket message in either direction.
type Frame struct {
	Type    FrameType             `json:"type" cbor:"type"`
	Seq     uint64                `json:"seq,omitempty" cbor:"seq,omitempty"`
	ID      []byte                `json:"id,omitempty" cbor:"id,omitempty"`
	Payload []byte                `json:"payload,omitempty" cbor:"payload,omitempty"`
	Error   *bridge.ErrorEnvelope `json:"error,omitempty" cbor:"error,omitempty"`
}

func errorFrame(seq uint64, err error) Frame {
	env := bridge.Envelope(err)
	return Frame{Type: FrameError, Seq: seq, Error: &env}
}
