package camera

// Device is the byte-addressed memory capability the parameter engine
// consumes. Both operations are synchronous and exact-length: a read
// fills the whole buffer or fails, a write commits the whole payload or
// fails. Partial transfers are never reported as success.
//
// Implementations must be safe for use from a single goroutine at a
// time; callers that share a device across goroutines serialise access
// externally (the feature registry does this with a mutex).
type Device interface {
	// ReadMem reads exactly len(buf) bytes starting at address.
	ReadMem(address uint64, buf []byte) error

	// WriteMem writes exactly len(data) bytes starting at address.
	WriteMem(address uint64, data []byte) error
}
