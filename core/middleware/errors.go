package middleware

import "errors"

// ErrUnhandled is returned by a handler asked to perform an operation it does
// not handle.
var ErrUnhandled = errors.New("middleware: operation not handled")
