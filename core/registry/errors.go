package registry

import "errors"

// ErrNotFound is returned when resuming an id that was never registered or
// whose request has already finished.
var ErrNotFound = errors.New("registry: request not found")
