// Package camera defines the device transport boundary for GenVis Core.
//
// The GenApi parameter engine never speaks USB3-Vision or GigE-Vision
// directly; it sees a camera only as a byte-addressed memory space behind
// the Device interface. Concrete transports (and the built-in emulator)
// implement Device; everything above this package is transport-agnostic.
//
// # Key Types
//
//   - Device: byte-addressed read/write capability consumed by the engine
//   - Emulator: in-memory device with per-range access protection
//   - HealthMonitor: periodic liveness probe against a heartbeat register
//
// # Error Taxonomy
//
// Transport failures are classified with sentinel errors so callers can
// distinguish retryable conditions (ErrBusy, ErrTimeout) from permanent
// ones (ErrDisconnected, ErrInvalidData):
//
//	if errors.Is(err, camera.ErrTimeout) {
//	    // transient - caller may retry
//	}
//
// The engine itself never retries; retry policy belongs to callers.
package camera
