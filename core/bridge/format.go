package bridge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Format serializes values crossing the bridge.
type Format interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	// JSON encodes with encoding/json.
	JSON Format = jsonFormat{}

	// CBOR encodes with RFC 8949 core deterministic encoding.
	CBOR Format = newCBORFormat()
)

// FormatByName returns the format called name ("json" or "cbor").
func FormatByName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonFormat) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type cborFormat struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORFormat() cborFormat {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}

	// Values decoded into any use string-keyed maps, like JSON does.
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("bridge: CBOR decoder initialization failed: " + err.Error())
	}

	return cborFormat{enc: enc, dec: dec}
}

func (cborFormat) Name() string { return "cbor" }

func (f cborFormat) Marshal(v any) ([]byte, error) { return f.enc.Marshal(v) }

func (f cborFormat) Unmarshal(data []byte, v any) error { return f.dec.Unmarshal(data, v) }
