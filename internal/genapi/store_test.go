package genapi

import "testing"

func TestInterningIsIdempotent(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("Exposure")
	b := ns.GetOrIntern("Gain")
	if a == b {
		t.Fatal("distinct names must intern to distinct ids")
	}
	if got := ns.GetOrIntern("Exposure"); got != a {
		t.Fatalf("re-intern = %d, want %d", got, a)
	}
	if ns.Name(a) != "Exposure" {
		t.Fatalf("Name(%d) = %q", a, ns.Name(a))
	}
	if _, ok := ns.ID("Missing"); ok {
		t.Fatal("ID must not intern unknown names")
	}
}

func TestStoreNodePanicsOnDuplicate(t *testing.T) {
	ns := NewNodeStore()
	id := ns.GetOrIntern("N")
	ns.StoreNode(id, NewPlainNode(NodeAttributeBase{ID: id, Name: "N"}))

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	ns.StoreNode(id, NewPlainNode(NodeAttributeBase{ID: id, Name: "N"}))
}

func TestNodeOptOnUnstoredID(t *testing.T) {
	ns := NewNodeStore()
	id := ns.GetOrIntern("Dangling")
	if _, ok := ns.NodeOpt(id); ok {
		t.Fatal("interned-but-unstored id must not resolve")
	}
	if _, ok := ns.NodeOpt(NoNode); ok {
		t.Fatal("NoNode must not resolve")
	}
}

func TestValueStoreTypedHandles(t *testing.T) {
	vs := NewValueStore()
	i := vs.StoreInteger(42)
	fl := vs.StoreFloat(2.5)
	s := vs.StoreString("camera")
	b := vs.StoreBoolean(true)

	if vs.Integer(i) != 42 || vs.Float(fl) != 2.5 || vs.String(s) != "camera" || !vs.Boolean(b) {
		t.Fatal("stored values must read back")
	}

	vs.SetInteger(i, 7)
	if vs.Integer(i) != 7 {
		t.Fatalf("SetInteger not visible, got %d", vs.Integer(i))
	}
}

func TestAddInvalidatorDeduplicates(t *testing.T) {
	ns := NewNodeStore()
	a := ns.GetOrIntern("A")
	b := ns.GetOrIntern("B")
	ns.AddInvalidator(a, b)
	ns.AddInvalidator(a, b)

	edges := ns.InvalidatorEdges()
	if len(edges[a]) != 1 {
		t.Fatalf("edges = %v, want single dedup'd edge", edges[a])
	}
}
