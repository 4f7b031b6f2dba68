package genapi

import "fmt"

// IntegerNode is a pure integer parameter: an immediate value or an
// indirection to another node, with optional bounds and increment.
type IntegerNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	// ValueSrc is the node's own value attribute.
	ValueSrc IntSource

	// Bounds and increment; invalid sources mean "not declared".
	MinSrc IntSource
	MaxSrc IntSource
	IncSrc IntSource

	Rep     Representation
	UnitStr string

	// PValueCopies receive every write in addition to ValueSrc.
	PValueCopies []NodeID

	// PSelected lists nodes whose meaning this node selects.
	PSelected []NodeID

	// HasValidValueSet records that the description declared a
	// ValidValueSet; its semantics are not specified upstream.
	HasValidValueSet bool
}

// NewIntegerNode creates an integer node.
func NewIntegerNode(attrs NodeAttributeBase) *IntegerNode {
	return &IntegerNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *IntegerNode) NodeKind() NodeKind { return KindInteger }

// Attr implements NodeData.
func (n *IntegerNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *IntegerNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IInteger.
func (n *IntegerNode) Value(ev *Eval) (int64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return 0, err
	}
	return n.ValueSrc.Resolve(ev)
}

// SetValue implements IInteger. The value is bounds-checked, written to
// the value source and every pValueCopy, then dependents are
// invalidated.
func (n *IntegerNode) SetValue(ev *Eval, v int64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	if err := n.checkRange(ev, v); err != nil {
		return err
	}

	if err := n.ValueSrc.Set(ev, v); err != nil {
		return err
	}
	for _, copyID := range n.PValueCopies {
		if err := ev.SetIntValueOf(copyID, v); err != nil {
			return err
		}
	}

	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// Min implements IInteger; defaults to the type's natural bound.
func (n *IntegerNode) Min(ev *Eval) (int64, error) {
	if !n.MinSrc.IsValid() {
		return defaultIntMin, nil
	}
	return n.MinSrc.Resolve(ev)
}

// Max implements IInteger; defaults to the type's natural bound.
func (n *IntegerNode) Max(ev *Eval) (int64, error) {
	if !n.MaxSrc.IsValid() {
		return defaultIntMax, nil
	}
	return n.MaxSrc.Resolve(ev)
}

// Inc implements IInteger.
func (n *IntegerNode) Inc(ev *Eval) (int64, bool, error) {
	if !n.IncSrc.IsValid() {
		return 0, false, nil
	}
	inc, err := n.IncSrc.Resolve(ev)
	return inc, err == nil, err
}

// IncMode implements IInteger.
func (n *IntegerNode) IncMode() IncrementMode {
	if n.IncSrc.IsValid() {
		return FixedIncrement
	}
	return NoIncrement
}

// Representation implements IInteger.
func (n *IntegerNode) Representation() Representation { return n.Rep }

// Unit implements IInteger.
func (n *IntegerNode) Unit() string { return n.UnitStr }

// ValidValueSet is declared by some descriptions but its evaluation is
// not specified upstream; it is reported as unimplemented rather than
// guessed at.
func (n *IntegerNode) ValidValueSet(*Eval) ([]int64, error) {
	return nil, fmt.Errorf("%w: ValidValueSet on node %q", ErrNotImplemented, n.Attrs.Name)
}

// checkRange rejects values outside the declared bounds.
func (n *IntegerNode) checkRange(ev *Eval, v int64) error {
	min, err := n.Min(ev)
	if err != nil {
		return err
	}
	max, err := n.Max(ev)
	if err != nil {
		return err
	}
	if v < min || v > max {
		return fmt.Errorf("%w: value %d outside [%d, %d] for node %q",
			ErrInvalidData, v, min, max, n.Attrs.Name)
	}
	return nil
}
