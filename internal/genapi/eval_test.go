package genapi

import (
	"errors"
	"testing"
)

// ─────────────────────────────────────────────────────────────────────────────
// Indirection resolution
// ─────────────────────────────────────────────────────────────────────────────

func TestIndirectionChain(t *testing.T) {
	f := newFixture(t)
	f.addIntImm("Leaf", 42)
	f.addIntPNode("Mid", "Leaf")
	f.addIntPNode("Top", "Mid")
	f.finish()

	ev := f.eval()
	v, err := ev.IntValueOf(f.intern("Top"))
	if err != nil {
		t.Fatalf("IntValueOf(Top): %v", err)
	}
	if v != 42 {
		t.Fatalf("Top = %d, want 42", v)
	}
}

func TestIndirectionCoercion(t *testing.T) {
	f := newFixture(t)
	f.addFloatImm("Fraction", 2.6)
	f.addIntImm("Whole", 7)
	f.finish()

	ev := f.eval()

	// Float target read as integer rounds to nearest.
	v, err := ev.IntValueOf(f.intern("Fraction"))
	if err != nil {
		t.Fatalf("IntValueOf(Fraction): %v", err)
	}
	if v != 3 {
		t.Fatalf("rounded value = %d, want 3", v)
	}

	// Integer target read as float converts exactly.
	fv, err := ev.FloatValueOf(f.intern("Whole"))
	if err != nil {
		t.Fatalf("FloatValueOf(Whole): %v", err)
	}
	if fv != 7.0 {
		t.Fatalf("converted value = %v, want 7.0", fv)
	}

	// Integer target read as bool uses nonzero-is-true.
	bv, err := ev.BoolValueOf(f.intern("Whole"))
	if err != nil {
		t.Fatalf("BoolValueOf(Whole): %v", err)
	}
	if !bv {
		t.Fatal("nonzero integer should coerce to true")
	}
}

func TestIndirectionWriteThrough(t *testing.T) {
	f := newFixture(t)
	f.addIntImm("Backing", 1)
	f.addIntPNode("Front", "Backing")
	f.finish()

	ev := f.eval()
	if err := ev.SetIntValueOf(f.intern("Front"), 99); err != nil {
		t.Fatalf("SetIntValueOf(Front): %v", err)
	}
	v, err := ev.IntValueOf(f.intern("Backing"))
	if err != nil {
		t.Fatalf("IntValueOf(Backing): %v", err)
	}
	if v != 99 {
		t.Fatalf("Backing = %d, want 99", v)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Cycle detection
// ─────────────────────────────────────────────────────────────────────────────

func TestCycleDetection(t *testing.T) {
	f := newFixture(t)
	// A → B → A: a mutual pValue cycle.
	f.addIntPNode("A", "B")
	f.addIntPNode("B", "A")
	// Self → Self.
	f.addIntPNode("Self", "Self")
	f.finish()

	ev := f.eval()
	if _, err := ev.IntValueOf(f.intern("A")); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("mutual cycle err = %v, want ErrCycleDetected", err)
	}

	ev = f.eval()
	if _, err := ev.IntValueOf(f.intern("Self")); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("self cycle err = %v, want ErrCycleDetected", err)
	}

	// The failed resolution must not poison later operations.
	f.addIntImm("Sane", 5)
	ev = f.eval()
	if v, err := ev.IntValueOf(f.intern("Sane")); err != nil || v != 5 {
		t.Fatalf("Sane = %d, %v; want 5, nil", v, err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Capability dispatch
// ─────────────────────────────────────────────────────────────────────────────

func TestCapabilityDispatch(t *testing.T) {
	f := newFixture(t)
	f.addIntImm("Number", 1)
	f.addPort("Port")
	f.finish()

	ev := f.eval()

	if _, err := ev.AsInteger(f.intern("Number")); err != nil {
		t.Fatalf("AsInteger on Integer node: %v", err)
	}

	// An Integer node offers no string capability.
	if _, err := ev.AsString(f.intern("Number")); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("AsString err = %v, want ErrInvalidNode", err)
	}

	// A Port node offers no numeric capability.
	if _, err := ev.IntValueOf(f.intern("Port")); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("IntValueOf(Port) err = %v, want ErrInvalidNode", err)
	}

	// Dangling reference: interned but never declared.
	dangling := f.intern("Ghost")
	if _, err := ev.IntValueOf(dangling); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("dangling err = %v, want ErrInvalidNode", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Access modes and predicates
// ─────────────────────────────────────────────────────────────────────────────

func TestImposedAccessMode(t *testing.T) {
	f := newFixture(t)
	n := f.addIntImm("ReadOnly", 10)
	n.Base.ImposedAccessMode = AccessRO
	f.finish()

	ev := f.eval()
	if _, err := ev.IntValueOf(n.Attrs.ID); err != nil {
		t.Fatalf("read under imposed RO: %v", err)
	}
	if err := ev.SetIntValueOf(n.Attrs.ID, 1); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("write under imposed RO err = %v, want ErrAccessDenied", err)
	}
}

func TestLockedNodeRejectsWrites(t *testing.T) {
	f := newFixture(t)
	lock := NewBooleanNode(f.attrs("Locked"))
	lock.ValueSrc = ImmBool(f.values.StoreBoolean(true))
	f.nodes.StoreNode(lock.Attrs.ID, lock)

	n := f.addIntImm("Guarded", 3)
	n.Base.PIsLocked = lock.Attrs.ID
	f.finish()

	ev := f.eval()
	if err := ev.SetIntValueOf(n.Attrs.ID, 4); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("locked write err = %v, want ErrAccessDenied", err)
	}

	// Unlock and retry.
	f.values.SetBoolean(BooleanID(0), false)
	ev = f.eval()
	if err := ev.SetIntValueOf(n.Attrs.ID, 4); err != nil {
		t.Fatalf("unlocked write: %v", err)
	}
}

func TestUnavailableNodeDeniesAccess(t *testing.T) {
	f := newFixture(t)
	avail := NewBooleanNode(f.attrs("Available"))
	avail.ValueSrc = ImmBool(f.values.StoreBoolean(false))
	f.nodes.StoreNode(avail.Attrs.ID, avail)

	n := f.addIntImm("Gated", 3)
	n.Base.PIsAvailable = avail.Attrs.ID
	f.finish()

	ev := f.eval()
	if _, err := ev.IntValueOf(n.Attrs.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("unavailable read err = %v, want ErrAccessDenied", err)
	}
}

func TestIntegerRangeEnforced(t *testing.T) {
	f := newFixture(t)
	n := f.addIntImm("Bounded", 5)
	n.MinSrc = ImmInt(f.values.StoreInteger(0))
	n.MaxSrc = ImmInt(f.values.StoreInteger(10))
	f.finish()

	ev := f.eval()
	if err := ev.SetIntValueOf(n.Attrs.ID, 11); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("out-of-range err = %v, want ErrInvalidData", err)
	}
	if err := ev.SetIntValueOf(n.Attrs.ID, 10); err != nil {
		t.Fatalf("in-range write: %v", err)
	}
}
