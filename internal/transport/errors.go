package transport

import "errors"

// Sentinel errors surfaced by Open/Send.
var (
	// ErrPortNotFound means no input or output port's display name begins
	// with the requested prefix.
	ErrPortNotFound = errors.New("transport: port not found")

	// ErrPortOpenFailed means a matching port was found but the driver
	// failed to open it.
	ErrPortOpenFailed = errors.New("transport: port open failed")

	// ErrWriteFailed means a send to an open output port failed.
	ErrWriteFailed = errors.New("transport: write failed")

	// ErrClosed is returned by Send on a transport that has been closed.
	ErrClosed = errors.New("transport: closed")
)
