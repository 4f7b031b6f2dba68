package genapi

import (
	"bytes"
	"testing"
)

func TestCacheStoreKeying(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	b := ns.GetOrIntern("B")
	c := NewDefaultCacheStore(ns)

	c.StoreCache(a, 0x100, 4, []byte{1, 2, 3, 4})

	// Same node, same range: hit.
	if data, ok := c.Cache(a, 0x100, 4); !ok || !bytes.Equal(data, []byte{1, 2, 3, 4}) {
		t.Fatalf("Cache(a) = %v, %v", data, ok)
	}
	// Different node sharing the physical range caches independently.
	if _, ok := c.Cache(b, 0x100, 4); ok {
		t.Fatal("b must not see a's entry")
	}
	// Different range: miss.
	if _, ok := c.Cache(a, 0x100, 2); ok {
		t.Fatal("length is part of the key")
	}
}

func TestCacheStoreCopiesBuffers(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	c := NewDefaultCacheStore(ns)

	buf := []byte{1, 2}
	c.StoreCache(a, 0, 2, buf)
	buf[0] = 99

	data, ok := c.Cache(a, 0, 2)
	if !ok || data[0] != 1 {
		t.Fatalf("stored entry shares caller's buffer: %v", data)
	}

	// Mutating the returned slice must not poison the entry.
	data[1] = 99
	again, _ := c.Cache(a, 0, 2)
	if again[1] != 2 {
		t.Fatalf("returned entry shares cache's buffer: %v", again)
	}
}

func TestInvalidateByIncludesSelf(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	c := NewDefaultCacheStore(ns)

	c.StoreCache(a, 0, 4, []byte{1, 2, 3, 4})
	c.InvalidateBy(a)
	if _, ok := c.Cache(a, 0, 4); ok {
		t.Fatal("InvalidateBy must drop the writer's own entries")
	}
}

func TestInvalidateOfIsLocal(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	b := ns.GetOrIntern("B")
	ns.AddInvalidator(a, b)
	c := NewDefaultCacheStore(ns)

	c.StoreCache(a, 0, 1, []byte{1})
	c.StoreCache(b, 4, 1, []byte{2})

	c.InvalidateOf(a)
	if _, ok := c.Cache(a, 0, 1); ok {
		t.Fatal("a's entry should be gone")
	}
	if _, ok := c.Cache(b, 4, 1); !ok {
		t.Fatal("InvalidateOf must not follow edges")
	}
}

func TestInvalidateByHandlesEdgeCycles(t *testing.T) {
	// A and B invalidate each other; the closure walk must terminate.
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	b := ns.GetOrIntern("B")
	ns.AddInvalidator(a, b)
	ns.AddInvalidator(b, a)
	c := NewDefaultCacheStore(ns)

	c.StoreCache(a, 0, 1, []byte{1})
	c.StoreCache(b, 4, 1, []byte{2})
	c.InvalidateBy(a)

	if c.Len() != 0 {
		t.Fatalf("entries left = %d, want 0", c.Len())
	}
}

func TestClearDropsEverything(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	c := NewDefaultCacheStore(ns)
	c.StoreCache(a, 0, 1, []byte{1})
	c.StoreCache(a, 4, 1, []byte{2})

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("entries after Clear = %d, want 0", c.Len())
	}
}

// Swapping the cache policy to a sink disables caching without
// touching node logic: every read goes to the device.
func TestCacheSinkDisablesCaching(t *testing.T) {
	f := newFixture(t)
	port := f.addPort("Device")
	reg := f.addIntReg("Reg", port, 0x100, 2, AccessRO)
	f.finish()
	f.ctxt.Cache = CacheSink{}

	for i := 0; i < 2; i++ {
		if _, err := reg.Value(f.eval()); err != nil {
			t.Fatalf("Value #%d: %v", i, err)
		}
	}
	if f.dev.reads != 2 {
		t.Fatalf("device reads = %d, want 2", f.dev.reads)
	}
}
