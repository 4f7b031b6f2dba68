package genapi

import "fmt"

// FloatNode is a pure float parameter: an immediate value or an
// indirection, with optional bounds and increment.
type FloatNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	ValueSrc FloatSource
	MinSrc   FloatSource
	MaxSrc   FloatSource
	IncSrc   FloatSource

	Rep       Representation
	UnitStr   string
	Notation  DisplayNotation
	Precision int64

	PValueCopies []NodeID
	PSelected    []NodeID
}

// NewFloatNode creates a float node.
func NewFloatNode(attrs NodeAttributeBase) *FloatNode {
	return &FloatNode{Attrs: attrs, Base: newElementBase(), Precision: 6}
}

// NodeKind implements NodeData.
func (n *FloatNode) NodeKind() NodeKind { return KindFloat }

// Attr implements NodeData.
func (n *FloatNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *FloatNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IFloat.
func (n *FloatNode) Value(ev *Eval) (float64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return 0, err
	}
	return n.ValueSrc.Resolve(ev)
}

// SetValue implements IFloat.
func (n *FloatNode) SetValue(ev *Eval, v float64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}

	min, err := n.Min(ev)
	if err != nil {
		return err
	}
	max, err := n.Max(ev)
	if err != nil {
		return err
	}
	// NaN passes through; INF is a valid bound, so the comparison is
	// well-defined for infinite limits.
	if v < min || v > max {
		return fmt.Errorf("%w: value %g outside [%g, %g] for node %q",
			ErrInvalidData, v, min, max, n.Attrs.Name)
	}

	if err := n.ValueSrc.Set(ev, v); err != nil {
		return err
	}
	for _, copyID := range n.PValueCopies {
		if err := ev.SetFloatValueOf(copyID, v); err != nil {
			return err
		}
	}

	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// Min implements IFloat; defaults to the type's natural bound.
func (n *FloatNode) Min(ev *Eval) (float64, error) {
	if !n.MinSrc.IsValid() {
		return defaultFloatMin, nil
	}
	return n.MinSrc.Resolve(ev)
}

// Max implements IFloat; defaults to the type's natural bound.
func (n *FloatNode) Max(ev *Eval) (float64, error) {
	if !n.MaxSrc.IsValid() {
		return defaultFloatMax, nil
	}
	return n.MaxSrc.Resolve(ev)
}

// Inc implements IFloat.
func (n *FloatNode) Inc(ev *Eval) (float64, bool, error) {
	if !n.IncSrc.IsValid() {
		return 0, false, nil
	}
	inc, err := n.IncSrc.Resolve(ev)
	return inc, err == nil, err
}

// IncMode implements IFloat.
func (n *FloatNode) IncMode() IncrementMode {
	if n.IncSrc.IsValid() {
		return FixedIncrement
	}
	return NoIncrement
}

// Representation implements IFloat.
func (n *FloatNode) Representation() Representation { return n.Rep }

// Unit implements IFloat.
func (n *FloatNode) Unit() string { return n.UnitStr }

// DisplayNotation implements IFloat.
func (n *FloatNode) DisplayNotation() DisplayNotation { return n.Notation }

// DisplayPrecision implements IFloat.
func (n *FloatNode) DisplayPrecision() int64 { return n.Precision }
