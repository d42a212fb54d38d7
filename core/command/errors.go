package command

import "errors"

var errStreamClosed = errors.New("command: stream closed")
