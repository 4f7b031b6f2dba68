package genapi

import (
	"fmt"

	"github.com/genvis/genvis-core/internal/genapi/formula"
)

// Reserved identifiers linking a converter's two formulas to its
// target: reads bind TO to the target's current value, writes bind
// FROM to the value being set.
const (
	convToVar   = "TO"
	convFromVar = "FROM"
)

// ConverterNode is a bidirectional float view over another node.
// Reading evaluates FormulaFrom against the target's current value;
// writing evaluates FormulaTo against the new value and stores the
// result in the target.
type ConverterNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	FormulaFrom formula.Expr
	FormulaTo   formula.Expr
	Vars        []FormulaVar

	// PValue is the converted target node.
	PValue NodeID

	Rep       Representation
	UnitStr   string
	Notation  DisplayNotation
	Precision int64
}

// NewConverterNode creates a float converter node.
func NewConverterNode(attrs NodeAttributeBase) *ConverterNode {
	return &ConverterNode{Attrs: attrs, Base: newElementBase(), PValue: NoNode, Precision: 6}
}

// NodeKind implements NodeData.
func (n *ConverterNode) NodeKind() NodeKind { return KindConverter }

// Attr implements NodeData.
func (n *ConverterNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *ConverterNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IFloat.
func (n *ConverterNode) Value(ev *Eval) (float64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return 0, err
	}
	raw, err := ev.FloatValueOf(n.PValue)
	if err != nil {
		return 0, err
	}
	v, err := n.FormulaFrom.Eval(convEnv{
		formulaEnv: formulaEnv{ev: ev, vars: n.Vars},
		name:       convToVar,
		value:      formula.Float(raw),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	return v.Float64(), nil
}

// SetValue implements IFloat: the inverse formula maps the new value
// onto the target, then dependents are invalidated.
func (n *ConverterNode) SetValue(ev *Eval, v float64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	raw, err := n.FormulaTo.Eval(convEnv{
		formulaEnv: formulaEnv{ev: ev, vars: n.Vars},
		name:       convFromVar,
		value:      formula.Float(v),
	})
	if err != nil {
		return fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	if err := ev.SetFloatValueOf(n.PValue, raw.Float64()); err != nil {
		return err
	}
	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// Min implements IFloat. Bounds are not mapped through the formula;
// the target node enforces its own range on write.
func (n *ConverterNode) Min(*Eval) (float64, error) { return defaultFloatMin, nil }

// Max implements IFloat.
func (n *ConverterNode) Max(*Eval) (float64, error) { return defaultFloatMax, nil }

// Inc implements IFloat.
func (n *ConverterNode) Inc(*Eval) (float64, bool, error) { return 0, false, nil }

// IncMode implements IFloat.
func (n *ConverterNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IFloat.
func (n *ConverterNode) Representation() Representation { return n.Rep }

// Unit implements IFloat.
func (n *ConverterNode) Unit() string { return n.UnitStr }

// DisplayNotation implements IFloat.
func (n *ConverterNode) DisplayNotation() DisplayNotation { return n.Notation }

// DisplayPrecision implements IFloat.
func (n *ConverterNode) DisplayPrecision() int64 { return n.Precision }

// convEnv layers the TO/FROM binding over a node's declared variables.
type convEnv struct {
	formulaEnv
	name  string
	value formula.Value
}

// Lookup implements formula.Env.
func (e convEnv) Lookup(name string) (formula.Value, error) {
	if name == e.name {
		return e.value, nil
	}
	return e.formulaEnv.Lookup(name)
}
