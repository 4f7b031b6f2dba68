package genapi

import (
	"errors"
	"testing"

	"github.com/genvis/genvis-core/internal/camera"
)

// ─────────────────────────────────────────────────────────────────────────────
// Cache behaviour (read-through, invalidate-on-write)
// ─────────────────────────────────────────────────────────────────────────────

func TestRegisterReadCaches(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Exposure", port, 0x100, 4, AccessRW)
	f.finish()

	f.poke(0x100, []byte{0x00, 0x00, 0x01, 0xF4}) // 500 big-endian

	ev := f.eval()
	v, err := reg.Value(ev)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 500 {
		t.Fatalf("Value = %d, want 500", v)
	}
	if f.dev.reads != 1 {
		t.Fatalf("device reads = %d, want 1", f.dev.reads)
	}

	// Second read with no intervening write is a cache hit.
	if _, err := reg.Value(f.eval()); err != nil {
		t.Fatalf("second Value: %v", err)
	}
	if f.dev.reads != 1 {
		t.Fatalf("device reads after cached read = %d, want 1", f.dev.reads)
	}

	// A write invalidates the node's own entry; the next read refetches.
	if err := reg.SetValue(f.eval(), 750); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	v, err = reg.Value(f.eval())
	if err != nil {
		t.Fatalf("Value after write: %v", err)
	}
	if v != 750 {
		t.Fatalf("Value after write = %d, want 750", v)
	}
	if f.dev.reads != 2 {
		t.Fatalf("device reads after write = %d, want 2", f.dev.reads)
	}
}

func TestNoCacheModeAlwaysReads(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Volatile", port, 0x40, 2, AccessRO)
	reg.Reg.Cacheable = NoCache
	f.finish()

	for i := 0; i < 3; i++ {
		if _, err := reg.Value(f.eval()); err != nil {
			t.Fatalf("Value #%d: %v", i, err)
		}
	}
	if f.dev.reads != 3 {
		t.Fatalf("device reads = %d, want 3", f.dev.reads)
	}
}

func TestFailedReadDoesNotCache(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	// Address beyond the emulator's 4 KiB memory.
	reg := f.addIntReg("OutOfRange", port, 0x2000, 4, AccessRW)
	f.finish()

	ev := f.eval()
	if _, err := reg.Value(ev); !errors.Is(err, camera.ErrInvalidAddress) {
		t.Fatalf("Value err = %v, want camera.ErrInvalidAddress", err)
	}
	if n := f.ctxt.Cache.(*DefaultCacheStore).Len(); n != 0 {
		t.Fatalf("cache entries after failed read = %d, want 0", n)
	}
}

func TestFailedWriteDoesNotInvalidate(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Reg", port, 0x100, 2, AccessRW)
	f.finish()

	// Populate the cache.
	if _, err := reg.Value(f.eval()); err != nil {
		t.Fatalf("prime read: %v", err)
	}

	// A value too wide for the register fails before any device I/O.
	if err := reg.SetValue(f.eval(), 1<<20); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("oversized write err = %v, want ErrInvalidData", err)
	}
	if f.dev.writes != 0 {
		t.Fatalf("device writes = %d, want 0", f.dev.writes)
	}
	if n := f.ctxt.Cache.(*DefaultCacheStore).Len(); n != 1 {
		t.Fatalf("cache entries after failed write = %d, want 1", n)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Round-trips
// ─────────────────────────────────────────────────────────────────────────────

func TestIntRegRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		length int64
		endian Endianness
		sign   Sign
		values []int64
	}{
		{"1-byte unsigned", 1, BigEndian, Unsigned, []int64{0, 1, 127, 255}},
		{"1-byte signed", 1, BigEndian, Signed, []int64{-128, -1, 0, 127}},
		{"2-byte LE unsigned", 2, LittleEndian, Unsigned, []int64{0, 256, 65535}},
		{"4-byte BE signed", 4, BigEndian, Signed, []int64{-2147483648, -1, 0, 2147483647}},
		{"4-byte LE signed", 4, LittleEndian, Signed, []int64{-1, 1 << 20}},
		{"8-byte BE signed", 8, BigEndian, Signed, []int64{-1 << 62, 0, 1 << 62}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			port := f.addPort("Device")
			reg := f.addIntReg("Reg", port, 0x200, tc.length, AccessRW)
			reg.Endian = tc.endian
			reg.Signedness = tc.sign
			f.finish()

			for _, v := range tc.values {
				if err := reg.SetValue(f.eval(), v); err != nil {
					t.Fatalf("SetValue(%d): %v", v, err)
				}
				got, err := reg.Value(f.eval())
				if err != nil {
					t.Fatalf("Value after SetValue(%d): %v", v, err)
				}
				if got != v {
					t.Fatalf("round-trip %d = %d", v, got)
				}
			}
		})
	}
}

func TestIntRegBounds(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Reg", port, 0x80, 2, AccessRW)
	reg.Signedness = Signed
	f.finish()

	ev := f.eval()
	min, err := reg.Min(ev)
	if err != nil {
		t.Fatalf("Min: %v", err)
	}
	max, err := reg.Max(ev)
	if err != nil {
		t.Fatalf("Max: %v", err)
	}
	if min != -32768 || max != 32767 {
		t.Fatalf("bounds = [%d, %d], want [-32768, 32767]", min, max)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Masked registers
// ─────────────────────────────────────────────────────────────────────────────

func TestMaskedIntRegSingleBit(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")

	n := NewMaskedIntRegNode(f.attrs("Flag"))
	n.Reg.AddressEntries = []AddressEntry{{Kind: AddrValue, Value: ImmInt(f.values.StoreInteger(0x300))}}
	n.Reg.Length = ImmInt(f.values.StoreInteger(4))
	n.Reg.AccessMode = AccessRW
	n.Reg.PPort = port
	n.Mask = SingleBitMask(3)
	f.nodes.StoreNode(n.Attrs.ID, n)
	f.finish()

	// Every other bit set, bit 3 clear.
	f.poke(0x300, []byte{0xFF, 0xFF, 0xFF, 0xF7})
	v, err := n.Value(f.eval())
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 0 {
		t.Fatalf("bit 3 = %d, want 0", v)
	}

	// Set the bit; the surrounding bits must survive the read-modify-write.
	if err := n.SetValue(f.eval(), 1); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	var raw [4]byte
	if err := f.dev.Peek(0x300, raw[:]); err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if raw != [4]byte{0xFF, 0xFF, 0xFF, 0xFF} {
		t.Fatalf("memory after set = %x, want ffffffff", raw)
	}
}

func TestMaskedIntRegSignedRange(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")

	n := NewMaskedIntRegNode(f.attrs("Field"))
	n.Reg.AddressEntries = []AddressEntry{{Kind: AddrValue, Value: ImmInt(f.values.StoreInteger(0x310))}}
	n.Reg.Length = ImmInt(f.values.StoreInteger(4))
	n.Reg.AccessMode = AccessRW
	n.Reg.PPort = port
	n.Mask = RangeMask(4, 7) // 4-bit field
	n.Signedness = Signed
	f.nodes.StoreNode(n.Attrs.ID, n)
	f.finish()

	// Field value 0b1111 sign-extends to -1 regardless of other bits.
	f.poke(0x310, []byte{0xA5, 0xA5, 0xA5, 0xF3})
	v, err := n.Value(f.eval())
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != -1 {
		t.Fatalf("signed field = %d, want -1", v)
	}

	ev := f.eval()
	min, _ := n.Min(ev)
	max, _ := n.Max(ev)
	if min != -8 || max != 7 {
		t.Fatalf("bounds = [%d, %d], want [-8, 7]", min, max)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Access mode enforcement
// ─────────────────────────────────────────────────────────────────────────────

func TestReadOnlyRegisterRejectsWrites(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Status", port, 0x400, 4, AccessRO)
	f.finish()

	err := reg.SetValue(f.eval(), 1)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("SetValue err = %v, want ErrAccessDenied", err)
	}
	if f.dev.writes != 0 {
		t.Fatalf("device writes = %d, want 0", f.dev.writes)
	}
}

func TestWriteOnlyRegisterRejectsReads(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Trigger", port, 0x410, 4, AccessWO)
	f.finish()

	if _, err := reg.Value(f.eval()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("Value err = %v, want ErrAccessDenied", err)
	}
	if f.dev.reads != 0 {
		t.Fatalf("device reads = %d, want 0", f.dev.reads)
	}
	if err := reg.SetValue(f.eval(), 5); err != nil {
		t.Fatalf("SetValue on WO register: %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Address resolution
// ─────────────────────────────────────────────────────────────────────────────

func TestAdditiveAddressTerms(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	f.addIntImm("BankBase", 0x500)

	reg := f.addIntReg("Banked", port, 0x10, 2, AccessRO)
	// Prepend an indirected base term: effective address 0x500 + 0x10.
	reg.Reg.AddressEntries = append([]AddressEntry{{
		Kind:  AddrValue,
		Value: PNodeInt(f.intern("BankBase")),
	}}, reg.Reg.AddressEntries...)
	f.finish()

	f.poke(0x510, []byte{0x12, 0x34})
	v, err := reg.Value(f.eval())
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 0x1234 {
		t.Fatalf("Value = %#x, want 0x1234", v)
	}

	addr, err := reg.Address(f.eval())
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr != 0x510 {
		t.Fatalf("Address = %#x, want 0x510", addr)
	}
}

func TestPIndexAddressing(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	f.addIntImm("Selector", 2)

	// 4-byte entries starting at 0x600: entry address = 0x600 + index*4.
	reg := f.addIntReg("Entry", port, 0x600, 4, AccessRO)
	reg.Reg.AddressEntries = append(reg.Reg.AddressEntries, AddressEntry{
		Kind:   AddrPIndex,
		PIndex: f.intern("Selector"),
	})
	f.finish()

	f.poke(0x608, []byte{0x00, 0x00, 0x00, 0x2A})
	v, err := reg.Value(f.eval())
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 42 {
		t.Fatalf("Value = %d, want 42", v)
	}
}

func TestPIndexStrideAndOffset(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	f.addIntImm("Selector", 3)

	reg := f.addIntReg("Entry", port, 0x700, 2, AccessRO)
	reg.Reg.AddressEntries = append(reg.Reg.AddressEntries, AddressEntry{
		Kind:   AddrPIndex,
		PIndex: f.intern("Selector"),
		Stride: ImmInt(f.values.StoreInteger(16)),
		Offset: ImmInt(f.values.StoreInteger(4)),
	})
	f.finish()

	// 0x700 + 3*16 + 4 = 0x734.
	addr, err := reg.Address(f.eval())
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr != 0x734 {
		t.Fatalf("Address = %#x, want 0x734", addr)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Invalidation scenario
// ─────────────────────────────────────────────────────────────────────────────

func TestWriteInvalidatesDeclaredDependent(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	exposure := f.addIntReg("Exposure", port, 0x100, 4, AccessRW)
	gain := f.addIntReg("Gain", port, 0x200, 4, AccessRW)

	// Gain declares Exposure as its invalidator.
	gain.Reg.PInvalidators = []NodeID{exposure.Attrs.ID}
	f.nodes.AddInvalidator(exposure.Attrs.ID, gain.Attrs.ID)
	f.finish()

	// Populate Gain's cache.
	if _, err := gain.Value(f.eval()); err != nil {
		t.Fatalf("prime Gain: %v", err)
	}
	if _, err := gain.Value(f.eval()); err != nil {
		t.Fatalf("cached Gain: %v", err)
	}
	if f.dev.reads != 1 {
		t.Fatalf("device reads = %d, want 1", f.dev.reads)
	}

	// Writing Exposure clears Gain's entry.
	if err := exposure.SetValue(f.eval(), 500); err != nil {
		t.Fatalf("SetValue(Exposure): %v", err)
	}
	if _, ok := f.ctxt.Cache.Cache(gain.Attrs.ID, 0x200, 4); ok {
		t.Fatal("Gain cache entry should have been cleared")
	}

	// Gain's next read re-fetches from the device.
	if _, err := gain.Value(f.eval()); err != nil {
		t.Fatalf("Gain after invalidation: %v", err)
	}
	if f.dev.reads != 2 {
		t.Fatalf("device reads = %d, want 2", f.dev.reads)
	}
}

func TestInvalidationFollowsClosure(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	a := f.addIntReg("A", port, 0x100, 4, AccessRW)
	bReg := f.addIntReg("B", port, 0x110, 4, AccessRW)
	c := f.addIntReg("C", port, 0x120, 4, AccessRW)

	// A invalidates B, B invalidates C; writing A must clear C too.
	f.nodes.AddInvalidator(a.Attrs.ID, bReg.Attrs.ID)
	f.nodes.AddInvalidator(bReg.Attrs.ID, c.Attrs.ID)
	f.finish()

	if _, err := bReg.Value(f.eval()); err != nil {
		t.Fatalf("prime B: %v", err)
	}
	if _, err := c.Value(f.eval()); err != nil {
		t.Fatalf("prime C: %v", err)
	}
	if err := a.SetValue(f.eval(), 1); err != nil {
		t.Fatalf("SetValue(A): %v", err)
	}

	if _, ok := f.ctxt.Cache.Cache(bReg.Attrs.ID, 0x110, 4); ok {
		t.Fatal("B should be invalidated")
	}
	if _, ok := f.ctxt.Cache.Cache(c.Attrs.ID, 0x120, 4); ok {
		t.Fatal("C should be invalidated transitively")
	}
}
