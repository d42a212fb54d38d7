package kv

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/request"
)

// ErrStore wraps a failure reported by the store behind the capability.
var ErrStore = errors.New("kv: store error")

// Get reads a key.
type Get struct {
	request.Returns[Result]
	Key string `json:"key" cbor:"key"`
}

// Set writes a key and reports the previous value.
type Set struct {
	request.Returns[Result]
	Key   string `json:"key" cbor:"key"`
	Value []byte `json:"value" cbor:"value"`
}

// Delete removes a key and reports the previous value.
type Delete struct {
	request.Returns[Result]
	Key string `json:"key" cbor:"key"`
}

// Exists checks whether a key is present.
type Exists struct {
	request.Returns[Result]
	Key string `json:"key" cbor:"key"`
}

// ListKeys lists keys with a prefix, one page at a time. Cursor is zero for
// the first page; a zero NextCursor in the result means there are no more.
type ListKeys struct {
	request.Returns[Result]
	Prefix string `json:"prefix" cbor:"prefix"`
	Cursor uint64 `json:"cursor" cbor:"cursor"`
}

// Result is the output of every kv operation. Only the fields relevant to the
// operation are set.
type Result struct {
	Value      []byte   `json:"value,omitempty" cbor:"value,omitempty"`
	Found      bool     `json:"found,omitempty" cbor:"found,omitempty"`
	Previous   []byte   `json:"previous,omitempty" cbor:"previous,omitempty"`
	Keys       []string `json:"keys,omitempty" cbor:"keys,omitempty"`
	NextCursor uint64   `json:"next_cursor,omitempty" cbor:"next_cursor,omitempty"`
	Error      string   `json:"error,omitempty" cbor:"error,omitempty"`
}

// Err returns the store error carried by r, if any.
func (r Result) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStore, r.Error)
}

// Register adds the capability's operations to c.
func Register(c *bridge.Catalog) {
	bridge.Register[Get](c, "kv.get")
	bridge.Register[Set](c, "kv.set")
	bridge.Register[Delete](c, "kv.delete")
	bridge.Register[Exists](c, "kv.exists")
	bridge.Register[ListKeys](c, "kv.list_keys")
}

// Read reads key. found is false if the key does not exist.
func Read[E request.Effect, Ev any](ctx *command.Context[E, Ev], key string) (value []byte, found bool, err error) {
	r := command.Request[Result](ctx, Get{Key: key})
	return r.Value, r.Found, r.Err()
}

// Write writes value under key and returns the value it replaced.
func Write[E request.Effect, Ev any](ctx *command.Context[E, Ev], key string, value []byte) (previous []byte, err error) {
	r := command.Request[Result](ctx, Set{Key: key, Value: value})
	return r.Previous, r.Err()
}

// Remove removes key and returns the value it had.
func Remove[E request.Effect, Ev any](ctx *command.Context[E, Ev], key string) (previous []byte, err error) {
	r := command.Request[Result](ctx, Delete{Key: key})
	return r.Previous, r.Err()
}

// Has reports whether key is present.
func Has[E request.Effect, Ev any](ctx *command.Context[E, Ev], key string) (bool, error) {
	r := command.Request[Result](ctx, Exists{Key: key})
	return r.Found, r.Err()
}

// List returns one page of keys starting with prefix.
func List[E request.Effect, Ev any](ctx *command.Context[E, Ev], prefix string, cursor uint64) (keys []string, next uint64, err error) {
	r := command.Request[Result](ctx, ListKeys{Prefix: prefix, Cursor: cursor})
	return r.Keys, r.NextCursor, r.Err()
}
