package genapi

import (
	"fmt"

	"github.com/genvis/genvis-core/internal/genapi/formula"
)

// IntConverterNode is the integer variant of ConverterNode: the same
// FROM/TO formula pair, with results rounded to integers.
type IntConverterNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	FormulaFrom formula.Expr
	FormulaTo   formula.Expr
	Vars        []FormulaVar

	PValue NodeID

	Rep     Representation
	UnitStr string
}

// NewIntConverterNode creates an integer converter node.
func NewIntConverterNode(attrs NodeAttributeBase) *IntConverterNode {
	return &IntConverterNode{Attrs: attrs, Base: newElementBase(), PValue: NoNode}
}

// NodeKind implements NodeData.
func (n *IntConverterNode) NodeKind() NodeKind { return KindIntConverter }

// Attr implements NodeData.
func (n *IntConverterNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *IntConverterNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IInteger.
func (n *IntConverterNode) Value(ev *Eval) (int64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return 0, err
	}
	raw, err := ev.IntValueOf(n.PValue)
	if err != nil {
		return 0, err
	}
	v, err := n.FormulaFrom.Eval(convEnv{
		formulaEnv: formulaEnv{ev: ev, vars: n.Vars},
		name:       convToVar,
		value:      formula.Int(raw),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	i, err := v.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	return i, nil
}

// SetValue implements IInteger.
func (n *IntConverterNode) SetValue(ev *Eval, v int64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	raw, err := n.FormulaTo.Eval(convEnv{
		formulaEnv: formulaEnv{ev: ev, vars: n.Vars},
		name:       convFromVar,
		value:      formula.Int(v),
	})
	if err != nil {
		return fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	i, err := raw.Int64()
	if err != nil {
		return fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	if err := ev.SetIntValueOf(n.PValue, i); err != nil {
		return err
	}
	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// Min implements IInteger.
func (n *IntConverterNode) Min(*Eval) (int64, error) { return defaultIntMin, nil }

// Max implements IInteger.
func (n *IntConverterNode) Max(*Eval) (int64, error) { return defaultIntMax, nil }

// Inc implements IInteger.
func (n *IntConverterNode) Inc(*Eval) (int64, bool, error) { return 0, false, nil }

// IncMode implements IInteger.
func (n *IntConverterNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IInteger.
func (n *IntConverterNode) Representation() Representation { return n.Rep }

// Unit implements IInteger.
func (n *IntConverterNode) Unit() string { return n.UnitStr }
