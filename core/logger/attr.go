package logger

import (
	"log/slog"
	"reflect"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks;
// slog drops empty attributes.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Error Handling
// ============================================================================

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Panic records a recovered panic value.
func Panic(v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any("panic", v)
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Engine identifiers
// ============================================================================

// TaskID identifies a task inside an executor slab.
func TaskID(id int) slog.Attr {
	return slog.Int("task_id", id)
}

// EffectID identifies an outstanding effect request. Accepts any id type the
// registries use (uuid.UUID, uint32) and renders it with fmt semantics.
func EffectID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("effect_id", id)
}

// Operation records the Go type name of an effect operation payload.
func Operation(op any) slog.Attr {
	if op == nil {
		return slog.Attr{}
	}
	t := reflect.TypeOf(op)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return slog.String("operation", t.String())
}

// Capability records the capability name an effect belongs to.
func Capability(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("capability", name)
}

// Layer names the middleware layer emitting a record.
func Layer(name string) slog.Attr {
	return slog.String("layer", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
