package genapi

import (
	"fmt"

	"github.com/genvis/genvis-core/internal/genapi/formula"
)

// VarKind discriminates the binding behind a formula identifier.
type VarKind int

const (
	// VarPNode reads another node's live value (pVariable).
	VarPNode VarKind = iota
	// VarConstInt and VarConstFloat are literals fixed at build time
	// (Constant).
	VarConstInt
	VarConstFloat
	// VarExpr evaluates a named sub-formula against the same bindings
	// (Expression).
	VarExpr
)

// FormulaVar binds one identifier of a formula to its source. The
// builder resolves name collisions with pVariable winning over
// Constant winning over Expression, so a slice holds at most one
// binding per name.
type FormulaVar struct {
	Name string
	Kind VarKind

	PNode  NodeID
	ConstI int64
	ConstF float64
	Expr   formula.Expr
}

// formulaEnv resolves formula identifiers against a node's declared
// bindings, reading pVariable targets through the evaluation context.
type formulaEnv struct {
	ev   *Eval
	vars []FormulaVar

	// active tracks Expression bindings currently being evaluated.
	// pVariable cycles are caught by the Eval resolution stack, but an
	// Expression binding has no node of its own, so re-entry is
	// detected here instead.
	active map[string]bool
}

// Lookup implements formula.Env.
func (e formulaEnv) Lookup(name string) (formula.Value, error) {
	for i := range e.vars {
		v := &e.vars[i]
		if v.Name != name {
			continue
		}
		switch v.Kind {
		case VarPNode:
			return e.nodeValue(v.PNode)
		case VarConstInt:
			return formula.Int(v.ConstI), nil
		case VarConstFloat:
			return formula.Float(v.ConstF), nil
		case VarExpr:
			if e.active[v.Name] {
				return formula.Value{}, fmt.Errorf("%w: expression binding %q references itself",
					ErrCycleDetected, v.Name)
			}
			if e.active == nil {
				e.active = make(map[string]bool)
			}
			e.active[v.Name] = true
			val, err := v.Expr.Eval(e)
			delete(e.active, v.Name)
			return val, err
		}
	}
	return formula.Value{}, fmt.Errorf("%w: unbound variable %q", formula.ErrEval, name)
}

// nodeValue reads a pVariable target, preserving its numeric family:
// float-capable targets stay float so mixed formulas promote correctly.
func (e formulaEnv) nodeValue(id NodeID) (formula.Value, error) {
	nd, err := e.ev.node(id)
	if err != nil {
		return formula.Value{}, err
	}
	if _, ok := nd.(IFloat); ok {
		f, ferr := e.ev.FloatValueOf(id)
		if ferr != nil {
			return formula.Value{}, ferr
		}
		return formula.Float(f), nil
	}
	i, ierr := e.ev.IntValueOf(id)
	if ierr != nil {
		return formula.Value{}, ierr
	}
	return formula.Int(i), nil
}

// SwissKnifeNode is a read-only float computed from a formula over
// other nodes and constants.
type SwissKnifeNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	Formula formula.Expr
	Vars    []FormulaVar

	Rep       Representation
	UnitStr   string
	Notation  DisplayNotation
	Precision int64
}

// NewSwissKnifeNode creates a float swiss knife node.
func NewSwissKnifeNode(attrs NodeAttributeBase) *SwissKnifeNode {
	return &SwissKnifeNode{Attrs: attrs, Base: newElementBase(), Precision: 6}
}

// NodeKind implements NodeData.
func (n *SwissKnifeNode) NodeKind() NodeKind { return KindSwissKnife }

// Attr implements NodeData.
func (n *SwissKnifeNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *SwissKnifeNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IFloat: it evaluates the formula against the
// current variable bindings.
func (n *SwissKnifeNode) Value(ev *Eval) (float64, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRO); err != nil {
		return 0, err
	}
	v, err := n.Formula.Eval(formulaEnv{ev: ev, vars: n.Vars})
	if err != nil {
		return 0, fmt.Errorf("%w: formula on node %q: %v", ErrInvalidData, n.Attrs.Name, err)
	}
	return v.Float64(), nil
}

// SetValue implements IFloat. Swiss knife nodes are intrinsically
// read-only; the denial goes through the usual access check so an
// imposed mode cannot widen it.
func (n *SwissKnifeNode) SetValue(ev *Eval, _ float64) error {
	return n.Base.checkWritable(ev, n.Attrs.Name, AccessRO)
}

// Min implements IFloat.
func (n *SwissKnifeNode) Min(*Eval) (float64, error) { return defaultFloatMin, nil }

// Max implements IFloat.
func (n *SwissKnifeNode) Max(*Eval) (float64, error) { return defaultFloatMax, nil }

// Inc implements IFloat.
func (n *SwissKnifeNode) Inc(*Eval) (float64, bool, error) { return 0, false, nil }

// IncMode implements IFloat.
func (n *SwissKnifeNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IFloat.
func (n *SwissKnifeNode) Representation() Representation { return n.Rep }

// Unit implements IFloat.
func (n *SwissKnifeNode) Unit() string { return n.UnitStr }

// DisplayNotation implements IFloat.
func (n *SwissKnifeNode) DisplayNotation() DisplayNotation { return n.Notation }

// DisplayPrecision implements IFloat.
func (n *SwissKnifeNode) DisplayPrecision() int64 { return n.Precision }
