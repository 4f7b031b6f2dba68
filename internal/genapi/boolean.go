package genapi

import "fmt"

// BooleanNode maps a boolean onto an integer-valued backing source
// through an OnValue/OffValue pair.
type BooleanNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	// ValueSrc is either an immediate boolean or a pointer to an
	// integer-valued node compared against OnValue/OffValue.
	ValueSrc BoolSource

	// OnValue and OffValue define the integer encoding; defaults 1/0.
	OnValue  int64
	OffValue int64

	PSelected []NodeID
}

// NewBooleanNode creates a boolean node with default on/off values.
func NewBooleanNode(attrs NodeAttributeBase) *BooleanNode {
	return &BooleanNode{
		Attrs:    attrs,
		Base:     newElementBase(),
		OnValue:  1,
		OffValue: 0,
	}
}

// NodeKind implements NodeData.
func (n *BooleanNode) NodeKind() NodeKind { return KindBoolean }

// Attr implements NodeData.
func (n *BooleanNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *BooleanNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IBoolean. An indirected target resolves as an
// integer and compares against OnValue/OffValue; any other reading is
// malformed data.
func (n *BooleanNode) Value(ev *Eval) (bool, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return false, err
	}

	if n.ValueSrc.IsImm() {
		return ev.Ctxt.Values.Boolean(n.ValueSrc.imm), nil
	}

	v, err := ev.IntValueOf(n.ValueSrc.PNode())
	if err != nil {
		return false, err
	}
	switch v {
	case n.OnValue:
		return true, nil
	case n.OffValue:
		return false, nil
	default:
		return false, fmt.Errorf("%w: node %q read %d, expected OnValue %d or OffValue %d",
			ErrInvalidData, n.Attrs.Name, v, n.OnValue, n.OffValue)
	}
}

// SetValue implements IBoolean, writing OnValue/OffValue through the
// indirection.
func (n *BooleanNode) SetValue(ev *Eval, v bool) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}

	if n.ValueSrc.IsImm() {
		ev.Ctxt.Values.SetBoolean(n.ValueSrc.imm, v)
	} else {
		iv := n.OffValue
		if v {
			iv = n.OnValue
		}
		if err := ev.SetIntValueOf(n.ValueSrc.PNode(), iv); err != nil {
			return err
		}
	}

	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}
