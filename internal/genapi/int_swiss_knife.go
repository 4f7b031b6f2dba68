package genapi

import (
	"fmt"

	"github.com/genvis/genvis-core/internal/genapi/formula"
)

// IntSwissKnifeNode is a read-only integer computed from a formula
// over other nodes and constants. A fractional formula result is
// rounded to the nearest integer; a non-finite result is invalid.
type IntSwissKnifeNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	Formula formula.Expr
	Vars    []FormulaVar

	Rep     Representation
	UnitStr string
}

// NewIntSwissKnifeNode creates an integer swiss knife node.
func NewIntSwissKnifeNode(attrs NodeAttributeBase) *IntSwissKnifeNode {
	return &IntSwissKnifeNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *IntSwissKnifeNode) NodeKind() NodeKind { return KindIntSwissKnife }

// Attr implements NodeData.
func (n *IntSwissKnifeNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *IntSwissKnifeNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IInteger.
func (n *IntSwissKnifeNode) Value(ev *Eval) (int64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRO); err != nil {
		return 0, err
	}
	v, err := n.Formula.Eval(formulaEnv{ev: ev, vars: n.Vars})
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	i, err := v.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	return i, nil
}

// SetValue implements IInteger; swiss knife nodes are read-only.
func (n *IntSwissKnifeNode) SetValue(ev *Eval, _ int64) error {
	return n.Base.checkWritable(ev, n.Attrs.Name, AccessRO)
}

// Min implements IInteger.
func (n *IntSwissKnifeNode) Min(*Eval) (int64, error) { return defaultIntMin, nil }

// Max implements IInteger.
func (n *IntSwissKnifeNode) Max(*Eval) (int64, error) { return defaultIntMax, nil }

// Inc implements IInteger.
func (n *IntSwissKnifeNode) Inc(*Eval) (int64, bool, error) { return 0, false, nil }

// IncMode implements IInteger.
func (n *IntSwissKnifeNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IInteger.
func (n *IntSwissKnifeNode) Representation() Representation { return n.Rep }

// Unit implements IInteger.
func (n *IntSwissKnifeNode) Unit() string { return n.UnitStr }
