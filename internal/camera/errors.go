package camera

import "errors"

// Domain errors for the camera transport boundary.
var (
	// ErrBusy is returned when the device cannot service the request yet.
	// Transient; callers may retry.
	ErrBusy = errors.New("camera: device busy")

	// ErrDisconnected is returned when the device link has been lost.
	ErrDisconnected = errors.New("camera: device disconnected")

	// ErrTimeout is returned when a transaction does not complete in time.
	// Transient; callers may retry.
	ErrTimeout = errors.New("camera: operation timed out")

	// ErrIO is returned for transport-level read/write failures.
	ErrIO = errors.New("camera: i/o failure")

	// ErrInvalidData is returned when the device answers with a malformed
	// or short payload.
	ErrInvalidData = errors.New("camera: invalid data")

	// ErrInvalidAddress is returned when the device rejects the requested
	// address range.
	ErrInvalidAddress = errors.New("camera: invalid address")

	// ErrAccessDenied is returned when the memory range does not permit
	// the requested direction (read of a write-only range or vice versa).
	ErrAccessDenied = errors.New("camera: access denied")

	// ErrNotImplemented is returned by transports that are declared in
	// configuration but not compiled into this build.
	ErrNotImplemented = errors.New("camera: transport not implemented")
)
