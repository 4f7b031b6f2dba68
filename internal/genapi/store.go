package genapi

import "fmt"

// NodeStore interns node names and holds the flat node table. It is
// populated by the builder and treated as immutable afterwards; from
// that point it is safe for concurrent readers without locking.
type NodeStore struct {
	ids   map[string]NodeID
	names []string
	nodes []NodeData

	// invalidators maps a node to every node whose cache its writes
	// must drop. Recorded by the builder, replayed into cache stores.
	invalidators map[NodeID][]NodeID
}

// NewNodeStore creates an empty node store.
func NewNodeStore() *NodeStore {
	return &NodeStore{
		ids:          make(map[string]NodeID),
		invalidators: make(map[NodeID][]NodeID),
	}
}

// GetOrIntern returns the NodeID for name, assigning a fresh id on
// first sight. Interning is idempotent: the same name always yields the
// same id.
func (s *NodeStore) GetOrIntern(name string) NodeID {
	if id, ok := s.ids[name]; ok {
		return id
	}
	id := NodeID(len(s.names))
	s.ids[name] = id
	s.names = append(s.names, name)
	s.nodes = append(s.nodes, nil)
	return id
}

// ID looks up a name without interning it.
func (s *NodeStore) ID(name string) (NodeID, bool) {
	id, ok := s.ids[name]
	return id, ok
}

// StoreNode attaches node data to an interned id. Registering the same
// id twice is a malformed graph and panics; the builder is the only
// writer and must not do this.
func (s *NodeStore) StoreNode(id NodeID, data NodeData) {
	if !id.IsValid() || int(id) >= len(s.nodes) {
		panic(fmt.Sprintf("genapi: StoreNode with unknown id %d", id))
	}
	if s.nodes[id] != nil {
		panic(fmt.Sprintf("genapi: duplicate node registration for %q", s.names[id]))
	}
	s.nodes[id] = data
}

// Node returns the data for id. It panics when the id was interned but
// never stored, which indicates a graph built with dangling references.
func (s *NodeStore) Node(id NodeID) NodeData {
	nd, ok := s.NodeOpt(id)
	if !ok {
		panic(fmt.Sprintf("genapi: node %d has no stored data", id))
	}
	return nd
}

// NodeOpt returns the data for id, or false when the id is invalid or
// was interned without being stored.
func (s *NodeStore) NodeOpt(id NodeID) (NodeData, bool) {
	if !id.IsValid() || int(id) >= len(s.nodes) || s.nodes[id] == nil {
		return nil, false
	}
	return s.nodes[id], true
}

// Name returns the interned name for id.
func (s *NodeStore) Name(id NodeID) string {
	if !id.IsValid() || int(id) >= len(s.names) {
		return ""
	}
	return s.names[id]
}

// Len returns the number of interned names.
func (s *NodeStore) Len() int { return len(s.names) }

// Visit calls fn for every stored node in interning order.
func (s *NodeStore) Visit(fn func(id NodeID, data NodeData) bool) {
	for i, nd := range s.nodes {
		if nd == nil {
			continue
		}
		if !fn(NodeID(i), nd) {
			return
		}
	}
}

// AddInvalidator records that a write to invalidator drops dependent's
// cache. Called by the builder; the resulting edge set seeds every
// DefaultCacheStore created for this graph.
func (s *NodeStore) AddInvalidator(invalidator, dependent NodeID) {
	for _, d := range s.invalidators[invalidator] {
		if d == dependent {
			return
		}
	}
	s.invalidators[invalidator] = append(s.invalidators[invalidator], dependent)
}

// InvalidatorEdges returns a copy of the invalidator adjacency.
func (s *NodeStore) InvalidatorEdges() map[NodeID][]NodeID {
	out := make(map[NodeID][]NodeID, len(s.invalidators))
	for k, v := range s.invalidators {
		deps := make([]NodeID, len(v))
		copy(deps, v)
		out[k] = deps
	}
	return out
}

// ValueStore holds immediate literals interned while the graph is
// built, addressed by typed handles. Immediate node values live here
// too, so SetValue on a non-register node mutates this store; that is
// the only post-construction mutation and it is covered by the caller's
// exclusive access to the ValueCtxt.
type ValueStore struct {
	integers []int64
	floats   []float64
	strings  []string
	booleans []bool
}

// NewValueStore creates an empty value store.
func NewValueStore() *ValueStore {
	return &ValueStore{}
}

// StoreInteger interns an int64 and returns its handle.
func (s *ValueStore) StoreInteger(v int64) IntegerID {
	s.integers = append(s.integers, v)
	return IntegerID(len(s.integers) - 1)
}

// StoreFloat interns a float64 and returns its handle.
func (s *ValueStore) StoreFloat(v float64) FloatID {
	s.floats = append(s.floats, v)
	return FloatID(len(s.floats) - 1)
}

// StoreString interns a string and returns its handle.
func (s *ValueStore) StoreString(v string) StringID {
	s.strings = append(s.strings, v)
	return StringID(len(s.strings) - 1)
}

// StoreBoolean interns a bool and returns its handle.
func (s *ValueStore) StoreBoolean(v bool) BooleanID {
	s.booleans = append(s.booleans, v)
	return BooleanID(len(s.booleans) - 1)
}

// Integer returns the value behind id. An out-of-range handle is a
// programmer error (a handle from a different store) and panics.
func (s *ValueStore) Integer(id IntegerID) int64 {
	if int(id) >= len(s.integers) {
		panic(fmt.Sprintf("genapi: invalid IntegerID %d", id))
	}
	return s.integers[id]
}

// Float returns the value behind id.
func (s *ValueStore) Float(id FloatID) float64 {
	if int(id) >= len(s.floats) {
		panic(fmt.Sprintf("genapi: invalid FloatID %d", id))
	}
	return s.floats[id]
}

// String returns the value behind id.
func (s *ValueStore) String(id StringID) string {
	if int(id) >= len(s.strings) {
		panic(fmt.Sprintf("genapi: invalid StringID %d", id))
	}
	return s.strings[id]
}

// Boolean returns the value behind id.
func (s *ValueStore) Boolean(id BooleanID) bool {
	if int(id) >= len(s.booleans) {
		panic(fmt.Sprintf("genapi: invalid BooleanID %d", id))
	}
	return s.booleans[id]
}

// SetInteger updates an interned int64 in place.
func (s *ValueStore) SetInteger(id IntegerID, v int64) {
	if int(id) >= len(s.integers) {
		panic(fmt.Sprintf("genapi: invalid IntegerID %d", id))
	}
	s.integers[id] = v
}

// SetFloat updates an interned float64 in place.
func (s *ValueStore) SetFloat(id FloatID, v float64) {
	if int(id) >= len(s.floats) {
		panic(fmt.Sprintf("genapi: invalid FloatID %d", id))
	}
	s.floats[id] = v
}

// SetString updates an interned string in place.
func (s *ValueStore) SetString(id StringID, v string) {
	if int(id) >= len(s.strings) {
		panic(fmt.Sprintf("genapi: invalid StringID %d", id))
	}
	s.strings[id] = v
}

// SetBoolean updates an interned bool in place.
func (s *ValueStore) SetBoolean(id BooleanID, v bool) {
	if int(id) >= len(s.booleans) {
		panic(fmt.Sprintf("genapi: invalid BooleanID %d", id))
	}
	s.booleans[id] = v
}
