package genapi

import "fmt"

// EnumEntry is one declared symbolic value of an Enumeration node.
type EnumEntry struct {
	// Name is the symbolic entry name (unique within the enumeration).
	Name string

	// Value is the integer the entry stands for.
	Value int64

	// NumericValue optionally exposes a float reading of the entry.
	NumericValue float64

	// IsSelfClearing marks entries the device resets on its own.
	IsSelfClearing bool

	Base NodeElementBase
}

// EnumerationNode maps symbolic names onto an integer-valued source,
// usually a pointer to a register-backed node.
type EnumerationNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	ValueSrc  IntSource
	EntryList []*EnumEntry

	PSelected []NodeID
	UnitStr   string
}

// NewEnumerationNode creates an enumeration node.
func NewEnumerationNode(attrs NodeAttributeBase) *EnumerationNode {
	return &EnumerationNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *EnumerationNode) NodeKind() NodeKind { return KindEnumeration }

// Attr implements NodeData.
func (n *EnumerationNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *EnumerationNode) Elem() *NodeElementBase { return &n.Base }

// Entries implements IEnumeration.
func (n *EnumerationNode) Entries() []*EnumEntry { return n.EntryList }

// CurrentEntry implements IEnumeration.
func (n *EnumerationNode) CurrentEntry(ev *Eval) (*EnumEntry, error) {
	v, err := n.Value(ev)
	if err != nil {
		return nil, err
	}
	for _, e := range n.EntryList {
		if e.Value == v {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: enumeration %q read %d, which matches no entry",
		ErrInvalidData, n.Attrs.Name, v)
}

// SetEntryByName implements IEnumeration.
func (n *EnumerationNode) SetEntryByName(ev *Eval, name string) error {
	for _, e := range n.EntryList {
		if e.Name == name {
			return n.SetValue(ev, e.Value)
		}
	}
	return fmt.Errorf("%w: enumeration %q has no entry %q", ErrInvalidData, n.Attrs.Name, name)
}

// SetEntryByValue implements IEnumeration.
func (n *EnumerationNode) SetEntryByValue(ev *Eval, value int64) error {
	for _, e := range n.EntryList {
		if e.Value == value {
			return n.SetValue(ev, value)
		}
	}
	return fmt.Errorf("%w: enumeration %q has no entry with value %d",
		ErrInvalidData, n.Attrs.Name, value)
}

// Value implements IInteger: the raw integer behind the current entry.
func (n *EnumerationNode) Value(ev *Eval) (int64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return 0, err
	}
	return n.ValueSrc.Resolve(ev)
}

// SetValue implements IInteger. The value is not forced to match an
// entry here; SetEntryByValue adds that validation.
func (n *EnumerationNode) SetValue(ev *Eval, v int64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	if err := n.ValueSrc.Set(ev, v); err != nil {
		return err
	}
	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// Min implements IInteger: the smallest entry value.
func (n *EnumerationNode) Min(*Eval) (int64, error) {
	if len(n.EntryList) == 0 {
		return defaultIntMin, nil
	}
	min := n.EntryList[0].Value
	for _, e := range n.EntryList[1:] {
		if e.Value < min {
			min = e.Value
		}
	}
	return min, nil
}

// Max implements IInteger: the largest entry value.
func (n *EnumerationNode) Max(*Eval) (int64, error) {
	if len(n.EntryList) == 0 {
		return defaultIntMax, nil
	}
	max := n.EntryList[0].Value
	for _, e := range n.EntryList[1:] {
		if e.Value > max {
			max = e.Value
		}
	}
	return max, nil
}

// Inc implements IInteger; enumerations have no increment.
func (n *EnumerationNode) Inc(*Eval) (int64, bool, error) { return 0, false, nil }

// IncMode implements IInteger.
func (n *EnumerationNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IInteger.
func (n *EnumerationNode) Representation() Representation { return RepresentationPureNumber }

// Unit implements IInteger.
func (n *EnumerationNode) Unit() string { return n.UnitStr }
