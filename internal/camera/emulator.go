package camera

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Access describes the direction(s) a memory range permits.
type Access uint8

// Memory range access modes.
const (
	// AccessRW permits both reads and writes.
	AccessRW Access = iota

	// AccessRO permits reads only.
	AccessRO

	// AccessWO permits writes only.
	AccessWO
)

// Range describes one protected region of emulated device memory.
type Range struct {
	// Base is the first byte address of the region.
	Base uint64

	// Length is the region size in bytes.
	Length uint64

	// Access is the permitted direction for the region.
	Access Access
}

// Emulator is an in-memory Device used by tests and as the default
// transport of the daemon. It models a flat byte-addressed memory space
// with optional per-range access protection, plus a timestamp latch:
// writing any value to the configured latch register copies a monotonic
// nanosecond tick into the paired timestamp register.
//
// Thread Safety: all methods are safe for concurrent use.
type Emulator struct {
	mu     sync.Mutex
	mem    []byte
	ranges []Range

	// Timestamp latch wiring (optional). Zero LatchLen disables it.
	latchAddr     uint64
	timestampAddr uint64
	latchLen      int
	started       time.Time
}

// EmulatorConfig contains the initial layout of an emulated device.
type EmulatorConfig struct {
	// Size is the total memory size in bytes.
	Size uint64

	// Ranges lists protected regions. Addresses outside every range are
	// readable and writable.
	Ranges []Range

	// LatchAddress and TimestampAddress wire the timestamp latch. When
	// LatchLength is zero the latch is disabled.
	LatchAddress     uint64
	TimestampAddress uint64
	LatchLength      int
}

// NewEmulator creates an emulated device with the given layout.
// All memory starts zeroed.
func NewEmulator(cfg EmulatorConfig) *Emulator {
	ranges := make([]Range, len(cfg.Ranges))
	copy(ranges, cfg.Ranges)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Base < ranges[j].Base })

	return &Emulator{
		mem:           make([]byte, cfg.Size),
		ranges:        ranges,
		latchAddr:     cfg.LatchAddress,
		timestampAddr: cfg.TimestampAddress,
		latchLen:      cfg.LatchLength,
		started:       time.Now(),
	}
}

// ReadMem implements Device.
func (e *Emulator) ReadMem(address uint64, buf []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkBounds(address, uint64(len(buf))); err != nil {
		return err
	}
	if !e.allowed(address, uint64(len(buf)), false) {
		return fmt.Errorf("%w: read of write-only range at 0x%X", ErrAccessDenied, address)
	}

	copy(buf, e.mem[address:address+uint64(len(buf))])
	return nil
}

// WriteMem implements Device.
func (e *Emulator) WriteMem(address uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkBounds(address, uint64(len(data))); err != nil {
		return err
	}
	if !e.allowed(address, uint64(len(data)), true) {
		return fmt.Errorf("%w: write to read-only range at 0x%X", ErrAccessDenied, address)
	}

	copy(e.mem[address:address+uint64(len(data))], data)

	// Writing the latch register captures the current tick into the
	// paired timestamp register, big-endian.
	if e.latchLen > 0 && address <= e.latchAddr && e.latchAddr < address+uint64(len(data)) {
		e.latchTimestamp()
	}
	return nil
}

// Poke writes memory directly, bypassing range protection. Used by tests
// and by the daemon to seed read-only registers with initial values.
func (e *Emulator) Poke(address uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkBounds(address, uint64(len(data))); err != nil {
		return err
	}
	copy(e.mem[address:address+uint64(len(data))], data)
	return nil
}

// Peek reads memory directly, bypassing range protection.
func (e *Emulator) Peek(address uint64, buf []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkBounds(address, uint64(len(buf))); err != nil {
		return err
	}
	copy(buf, e.mem[address:address+uint64(len(buf))])
	return nil
}

// checkBounds validates that [address, address+length) lies inside memory.
func (e *Emulator) checkBounds(address, length uint64) error {
	end := address + length
	if end < address || end > uint64(len(e.mem)) {
		return fmt.Errorf("%w: [0x%X, 0x%X) outside device memory (size 0x%X)",
			ErrInvalidAddress, address, end, len(e.mem))
	}
	return nil
}

// allowed reports whether every byte of [address, address+length) permits
// the requested direction.
func (e *Emulator) allowed(address, length uint64, write bool) bool {
	for _, r := range e.ranges {
		if address+length <= r.Base || address >= r.Base+r.Length {
			continue
		}
		switch r.Access {
		case AccessRO:
			if write {
				return false
			}
		case AccessWO:
			if !write {
				return false
			}
		case AccessRW:
		}
	}
	return true
}

// latchTimestamp stores the elapsed nanoseconds since device start into
// the timestamp register, big-endian, clamped to the register width.
func (e *Emulator) latchTimestamp() {
	tick := uint64(time.Since(e.started).Nanoseconds())
	n := e.latchLen
	if n > 8 {
		n = 8
	}
	end := e.timestampAddr + uint64(n)
	if end > uint64(len(e.mem)) {
		return
	}
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 8)
		e.mem[e.timestampAddr+uint64(i)] = byte(tick >> shift)
	}
}
