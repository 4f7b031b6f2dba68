package genapi

import (
	"fmt"
	"math"

	"github.com/genvis/genvis-core/internal/camera"
)

// Eval bundles everything one engine operation needs: the device, the
// immutable node store and the exclusive value/cache context. Create
// one per top-level operation; it carries the resolution stack used for
// cycle detection, so it must not be shared between operations.
type Eval struct {
	Device camera.Device
	Store  *NodeStore
	Ctxt   *ValueCtxt

	// stack tracks nodes currently being resolved. A revisit means the
	// description contains a pValue/pIndex cycle.
	stack map[NodeID]bool
}

// NewEval creates an evaluation context. The caller must hold exclusive
// access to ctxt for the duration of the operation; even reads mutate
// the cache on a miss.
func NewEval(dev camera.Device, ns *NodeStore, ctxt *ValueCtxt) *Eval {
	return &Eval{
		Device: dev,
		Store:  ns,
		Ctxt:   ctxt,
		stack:  make(map[NodeID]bool),
	}
}

// enter pushes id onto the resolution stack, failing on a cycle.
func (ev *Eval) enter(id NodeID) error {
	if ev.stack[id] {
		return fmt.Errorf("%w: node %q references itself through its resolution chain",
			ErrCycleDetected, ev.Store.Name(id))
	}
	ev.stack[id] = true
	return nil
}

// leave pops id from the resolution stack.
func (ev *Eval) leave(id NodeID) {
	delete(ev.stack, id)
}

// node fetches id's data, reporting dangling references as ErrInvalidNode.
func (ev *Eval) node(id NodeID) (NodeData, error) {
	nd, ok := ev.Store.NodeOpt(id)
	if !ok {
		return nil, fmt.Errorf("%w: reference to undeclared node %q", ErrInvalidNode, ev.Store.Name(id))
	}
	return nd, nil
}

// ─── Capability dispatch ───────────────────────────────────────────

// AsInteger resolves id to its IInteger capability.
func (ev *Eval) AsInteger(id NodeID) (IInteger, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	i, ok := nd.(IInteger)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no integer capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return i, nil
}

// AsFloat resolves id to its IFloat capability.
func (ev *Eval) AsFloat(id NodeID) (IFloat, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	f, ok := nd.(IFloat)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no float capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return f, nil
}

// AsBoolean resolves id to its IBoolean capability.
func (ev *Eval) AsBoolean(id NodeID) (IBoolean, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	b, ok := nd.(IBoolean)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no boolean capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return b, nil
}

// AsString resolves id to its IString capability.
func (ev *Eval) AsString(id NodeID) (IString, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	s, ok := nd.(IString)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no string capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return s, nil
}

// AsRegister resolves id to its IRegister capability.
func (ev *Eval) AsRegister(id NodeID) (IRegister, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	r, ok := nd.(IRegister)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no register capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return r, nil
}

// AsCommand resolves id to its ICommand capability.
func (ev *Eval) AsCommand(id NodeID) (ICommand, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	c, ok := nd.(ICommand)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no command capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return c, nil
}

// AsEnumeration resolves id to its IEnumeration capability.
func (ev *Eval) AsEnumeration(id NodeID) (IEnumeration, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	e, ok := nd.(IEnumeration)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q has no enumeration capability",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return e, nil
}

// AsPort resolves id to its IPort capability.
func (ev *Eval) AsPort(id NodeID) (IPort, error) {
	nd, err := ev.node(id)
	if err != nil {
		return nil, err
	}
	p, ok := nd.(IPort)
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q is not a port",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
	return p, nil
}

// ─── Coercing pointer-to-node resolution ───────────────────────────
//
// Every *ValueOf helper guards the target with the resolution stack, so
// any pValue/pIndex cycle in the description is reported instead of
// recursing forever.

// IntValueOf resolves id's value as int64. Float-valued targets are
// rounded to the nearest integer, per the schema's coercion rule.
func (ev *Eval) IntValueOf(id NodeID) (int64, error) {
	if err := ev.enter(id); err != nil {
		return 0, err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return 0, err
	}
	switch t := nd.(type) {
	case IInteger:
		return t.Value(ev)
	case IFloat:
		f, ferr := t.Value(ev)
		if ferr != nil {
			return 0, ferr
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: cannot coerce %v from node %q to integer",
				ErrInvalidData, f, ev.Store.Name(id))
		}
		return int64(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("%w: %s node %q is not numeric",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// SetIntValueOf writes an int64 through id, coercing for float targets.
func (ev *Eval) SetIntValueOf(id NodeID, v int64) error {
	if err := ev.enter(id); err != nil {
		return err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return err
	}
	switch t := nd.(type) {
	case IInteger:
		return t.SetValue(ev, v)
	case IFloat:
		return t.SetValue(ev, float64(v))
	default:
		return fmt.Errorf("%w: %s node %q is not numeric",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// FloatValueOf resolves id's value as float64. Integer-valued targets
// convert exactly.
func (ev *Eval) FloatValueOf(id NodeID) (float64, error) {
	if err := ev.enter(id); err != nil {
		return 0, err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return 0, err
	}
	switch t := nd.(type) {
	case IFloat:
		return t.Value(ev)
	case IInteger:
		v, ierr := t.Value(ev)
		if ierr != nil {
			return 0, ierr
		}
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s node %q is not numeric",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// SetFloatValueOf writes a float64 through id. Integer targets round.
func (ev *Eval) SetFloatValueOf(id NodeID, v float64) error {
	if err := ev.enter(id); err != nil {
		return err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return err
	}
	switch t := nd.(type) {
	case IFloat:
		return t.SetValue(ev, v)
	case IInteger:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: cannot coerce %v to integer node %q",
				ErrInvalidData, v, ev.Store.Name(id))
		}
		return t.SetValue(ev, int64(math.Round(v)))
	default:
		return fmt.Errorf("%w: %s node %q is not numeric",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// BoolValueOf resolves id's value as bool. Boolean targets resolve
// directly; integer targets coerce with the nonzero-is-true rule. The
// finer OnValue/OffValue comparison lives in BooleanNode itself.
func (ev *Eval) BoolValueOf(id NodeID) (bool, error) {
	if err := ev.enter(id); err != nil {
		return false, err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return false, err
	}
	switch t := nd.(type) {
	case IBoolean:
		return t.Value(ev)
	case IInteger:
		v, ierr := t.Value(ev)
		if ierr != nil {
			return false, ierr
		}
		return v != 0, nil
	default:
		return false, fmt.Errorf("%w: %s node %q is not boolean-coercible",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// SetBoolValueOf writes a bool through id; integer targets get 1/0.
func (ev *Eval) SetBoolValueOf(id NodeID, v bool) error {
	if err := ev.enter(id); err != nil {
		return err
	}
	defer ev.leave(id)

	nd, err := ev.node(id)
	if err != nil {
		return err
	}
	switch t := nd.(type) {
	case IBoolean:
		return t.SetValue(ev, v)
	case IInteger:
		var iv int64
		if v {
			iv = 1
		}
		return t.SetValue(ev, iv)
	default:
		return fmt.Errorf("%w: %s node %q is not boolean-coercible",
			ErrInvalidNode, nd.NodeKind(), ev.Store.Name(id))
	}
}

// StrValueOf resolves id's value as a string. No coercion is defined
// for string targets.
func (ev *Eval) StrValueOf(id NodeID) (string, error) {
	if err := ev.enter(id); err != nil {
		return "", err
	}
	defer ev.leave(id)

	s, err := ev.AsString(id)
	if err != nil {
		return "", err
	}
	return s.Value(ev)
}

// SetStrValueOf writes a string through id.
func (ev *Eval) SetStrValueOf(id NodeID, v string) error {
	if err := ev.enter(id); err != nil {
		return err
	}
	defer ev.leave(id)

	s, err := ev.AsString(id)
	if err != nil {
		return err
	}
	return s.SetValue(ev, v)
}
