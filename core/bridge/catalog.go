package bridge

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/dmitrymomot/appcore/core/request"
)

// EffectFFI is the serializable projection of an effect: the name its
// operation type is registered under and the operation itself.
type EffectFFI struct {
	Capability string `json:"capability" cbor:"capability"`
	Operation  any    `json:"operation" cbor:"operation"`
}

// Catalog maps operation types to the names shells know them by.
type Catalog struct {
	mu     sync.RWMutex
	byType map[reflect.Type]string
	byName map[string]reflect.Type
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byType: make(map[reflect.Type]string),
		byName: make(map[string]reflect.Type),
	}
}

// Register adds Op to c under name. It panics if either is already taken.
//
//	bridge.Register[kv.Get](catalog, "kv.get")
func Register[Op any](c *Catalog, name string) {
	t := reflect.TypeFor[Op]()

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.byType[t]; ok {
		panic(fmt.Sprintf("bridge: %s already registered as %q", t, prev))
	}
	if prev, ok := c.byName[name]; ok {
		panic(fmt.Sprintf("bridge: name %q already registered for %s", name, prev))
	}
	c.byType[t] = name
	c.byName[name] = t
}

// Name returns the name op's type is registered under.
func (c *Catalog) Name(op any) (string, error) {
	c.mu.RLock()
	name, ok := c.byType[reflect.TypeOf(op)]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCapability, request.Describe(op))
	}
	return name, nil
}

// Project converts an effect to its serializable form.
func (c *Catalog) Project(eff request.Effect) (EffectFFI, error) {
	op := eff.Operation()
	name, err := c.Name(op)
	if err != nil {
		return EffectFFI{}, err
	}
	return EffectFFI{Capability: name, Operation: op}, nil
}

// Names returns every registered name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
