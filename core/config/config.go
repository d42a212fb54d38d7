package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> *entry
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

// Load fills cfg from the environment. The first call for a given type parses
// the environment and caches the result; later calls copy the cached value.
// A .env file in the working directory is loaded on first use, without
// overriding variables that are already set.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is not an error.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	v, _ := cache.LoadOrStore(key, &entry{})
	e := v.(*entry)
	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = fmt.Errorf("config: load %s: %w", key, err)
			return
		}
		e.value = parsed
	})
	if e.err != nil {
		return e.err
	}

	*cfg = e.value.(T)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
