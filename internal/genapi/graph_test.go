package genapi

import (
	"testing"

	"github.com/genvis/genvis-core/internal/camera"
)

// countingDevice wraps the emulator and counts device I/O, so tests
// can assert cache hits and that denied writes never reach the device.
type countingDevice struct {
	*camera.Emulator
	reads  int
	writes int
}

func (d *countingDevice) ReadMem(address uint64, buf []byte) error {
	d.reads++
	return d.Emulator.ReadMem(address, buf)
}

func (d *countingDevice) WriteMem(address uint64, data []byte) error {
	d.writes++
	return d.Emulator.WriteMem(address, data)
}

// fixture assembles a graph by hand, the way the builder would, against
// an emulated 4 KiB device.
type fixture struct {
	t      *testing.T
	dev    *countingDevice
	nodes  *NodeStore
	values *ValueStore
	ctxt   *ValueCtxt
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:      t,
		dev:    &countingDevice{Emulator: camera.NewEmulator(camera.EmulatorConfig{Size: 0x1000})},
		nodes:  NewNodeStore(),
		values: NewValueStore(),
	}
}

// finish freezes the graph and creates the cache. Call after every
// addNode and AddInvalidator, since the cache captures the edges at
// construction.
func (f *fixture) finish() {
	f.t.Helper()
	f.ctxt = NewValueCtxt(f.values, NewDefaultCacheStore(f.nodes))
}

func (f *fixture) eval() *Eval {
	f.t.Helper()
	return NewEval(f.dev, f.nodes, f.ctxt)
}

func (f *fixture) intern(name string) NodeID {
	return f.nodes.GetOrIntern(name)
}

func (f *fixture) attrs(name string) NodeAttributeBase {
	return NodeAttributeBase{ID: f.intern(name), Name: name}
}

func (f *fixture) addPort(name string) NodeID {
	n := NewPortNode(f.attrs(name))
	f.nodes.StoreNode(n.Attrs.ID, n)
	return n.Attrs.ID
}

// addIntReg wires an integer register with a single immediate address
// term, big-endian unless changed by the caller afterwards.
func (f *fixture) addIntReg(name string, port NodeID, addr, length int64, mode AccessMode) *IntRegNode {
	n := NewIntRegNode(f.attrs(name))
	n.Reg.AddressEntries = []AddressEntry{{
		Kind:  AddrValue,
		Value: ImmInt(f.values.StoreInteger(addr)),
	}}
	n.Reg.Length = ImmInt(f.values.StoreInteger(length))
	n.Reg.AccessMode = mode
	n.Reg.PPort = port
	f.nodes.StoreNode(n.Attrs.ID, n)
	return n
}

// addIntImm wires a pure integer node holding an immediate value.
func (f *fixture) addIntImm(name string, v int64) *IntegerNode {
	n := NewIntegerNode(f.attrs(name))
	n.ValueSrc = ImmInt(f.values.StoreInteger(v))
	f.nodes.StoreNode(n.Attrs.ID, n)
	return n
}

// addIntPNode wires an integer node whose value is an indirection.
func (f *fixture) addIntPNode(name, target string) *IntegerNode {
	n := NewIntegerNode(f.attrs(name))
	n.ValueSrc = PNodeInt(f.intern(target))
	f.nodes.StoreNode(n.Attrs.ID, n)
	return n
}

// addFloatImm wires a pure float node holding an immediate value.
func (f *fixture) addFloatImm(name string, v float64) *FloatNode {
	n := NewFloatNode(f.attrs(name))
	n.ValueSrc = ImmFloat(f.values.StoreFloat(v))
	f.nodes.StoreNode(n.Attrs.ID, n)
	return n
}

// poke writes bytes straight into emulator memory, bypassing range
// protection and the engine.
func (f *fixture) poke(addr uint64, data []byte) {
	f.t.Helper()
	if err := f.dev.Poke(addr, data); err != nil {
		f.t.Fatalf("Poke(%#x): %v", addr, err)
	}
}
