package genapi

// NodeID is an opaque, densely-assigned handle interned from a node's
// unique name. All cross-references between nodes travel as NodeIDs,
// never as direct pointers: this breaks reference cycles and lets the
// graph be built before every name is resolvable.
type NodeID int32

// NoNode is the invalid NodeID, used for absent optional references.
const NoNode NodeID = -1

// IsValid reports whether the id refers to a node.
func (id NodeID) IsValid() bool { return id >= 0 }

// Typed handles into ValueStore, one family per logical value type.
// They are deliberately distinct types so an immediate integer literal
// can never be confused with an immediate float literal at compile time.
type (
	// IntegerID is a handle to an interned int64.
	IntegerID uint32

	// FloatID is a handle to an interned float64.
	FloatID uint32

	// StringID is a handle to an interned string.
	StringID uint32

	// BooleanID is a handle to an interned bool.
	BooleanID uint32
)
