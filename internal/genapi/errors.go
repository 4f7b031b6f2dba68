package genapi

import (
	"errors"
	"fmt"

	"github.com/genvis/genvis-core/internal/camera"
)

// Domain errors for the GenApi parameter engine.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, genapi.ErrAccessDenied) {
//	    // node is not writable in its current state
//	}
var (
	// ErrAccessDenied is returned when a read or write is attempted
	// against a node whose effective access mode forbids it.
	ErrAccessDenied = errors.New("genapi: access denied")

	// ErrInvalidNode is returned when a capability is requested from a
	// node kind that does not implement it, or when a pointer-to-node
	// reference resolves to an incompatible kind.
	ErrInvalidNode = errors.New("genapi: invalid node")

	// ErrInvalidData is returned when a value fails to decode or encode:
	// wrong byte length, malformed bit pattern, or a formula evaluation
	// error with no schema-defined result.
	ErrInvalidData = errors.New("genapi: invalid data")

	// ErrInvalidAddress is returned when register address resolution
	// produces a range the device cannot serve.
	ErrInvalidAddress = errors.New("genapi: invalid address")

	// ErrCycleDetected is returned when pointer-to-node resolution
	// revisits a node already on the resolution stack.
	ErrCycleDetected = errors.New("genapi: reference cycle detected")

	// ErrChunkDataMissing is returned when an operation requires chunk
	// data that was not supplied.
	ErrChunkDataMissing = errors.New("genapi: chunk data missing")

	// ErrNotImplemented is returned for description features the engine
	// deliberately leaves unspecified (ValidValueSet, list increments,
	// multi-event devices).
	ErrNotImplemented = errors.New("genapi: not implemented")
)

// deviceError wraps a transport failure so it satisfies both the engine
// taxonomy and errors.Is against the original camera sentinel. The
// engine never retries; transient/permanent classification is left to
// the caller via camera.ErrTimeout / camera.ErrBusy checks.
func deviceError(op string, address uint64, length int, err error) error {
	return fmt.Errorf("genapi: device %s of %d bytes at 0x%X: %w", op, length, address, err)
}

// IsAccessDenied reports whether err is an access-mode violation, at
// either the engine or the transport layer.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, camera.ErrAccessDenied)
}

// IsDeviceError reports whether err originated at the transport layer
// rather than inside the engine.
func IsDeviceError(err error) bool {
	return errors.Is(err, camera.ErrBusy) ||
		errors.Is(err, camera.ErrDisconnected) ||
		errors.Is(err, camera.ErrTimeout) ||
		errors.Is(err, camera.ErrIO) ||
		errors.Is(err, camera.ErrInvalidData) ||
		errors.Is(err, camera.ErrInvalidAddress) ||
		errors.Is(err, camera.ErrAccessDenied)
}
