package genapi

import "fmt"

// NodeData is the storage form of every node variant: a tagged union
// addressed by NodeID. Kind-specific behaviour is reached through the
// capability interfaces, which each variant implements selectively.
type NodeData interface {
	// NodeKind returns the variant tag.
	NodeKind() NodeKind

	// Attr returns the identity attributes shared by every variant.
	Attr() *NodeAttributeBase

	// Elem returns the common element body shared by every variant.
	Elem() *NodeElementBase
}

// NodeAttributeBase carries the identity attributes every node element
// declares: its unique name plus namespace and merge metadata.
type NodeAttributeBase struct {
	// ID is the interned handle for Name.
	ID NodeID

	// Name is the globally unique node name within one graph.
	Name string

	NameSpace     NameSpace
	MergePriority MergePriority
}

// NodeElementBase carries the child elements common to every node kind:
// descriptive metadata plus the implemented/available/locked predicates
// and the imposed access mode.
type NodeElementBase struct {
	ToolTip     string
	Description string
	DisplayName string
	Visibility  Visibility
	DocuURL     string

	IsDeprecated bool

	// EventID links the node to a device event, when declared.
	EventID string

	// Predicates; NoNode when absent.
	PIsImplemented NodeID
	PIsAvailable   NodeID
	PIsLocked      NodeID
	PBlockPolling  NodeID

	// ImposedAccessMode restricts the node's intrinsic access mode.
	// Defaults to RW, meaning no restriction.
	ImposedAccessMode AccessMode

	// PErrors lists nodes that report errors for this node.
	PErrors []NodeID

	// Alias links; NoNode when absent.
	PAlias     NodeID
	PCastAlias NodeID
}

// newElementBase returns a base with unrestricted defaults.
func newElementBase() NodeElementBase {
	return NodeElementBase{
		Visibility:        VisibilityBeginner,
		PIsImplemented:    NoNode,
		PIsAvailable:      NoNode,
		PIsLocked:         NoNode,
		PBlockPolling:     NoNode,
		ImposedAccessMode: AccessRW,
		PAlias:            NoNode,
		PCastAlias:        NoNode,
	}
}

// IsImplemented resolves the pIsImplemented predicate; absent means true.
func (e *NodeElementBase) IsImplemented(ev *Eval) (bool, error) {
	if !e.PIsImplemented.IsValid() {
		return true, nil
	}
	return ev.BoolValueOf(e.PIsImplemented)
}

// IsAvailable resolves the pIsAvailable predicate; absent means true.
func (e *NodeElementBase) IsAvailable(ev *Eval) (bool, error) {
	if !e.PIsAvailable.IsValid() {
		return true, nil
	}
	return ev.BoolValueOf(e.PIsAvailable)
}

// IsLocked resolves the pIsLocked predicate; absent means false.
func (e *NodeElementBase) IsLocked(ev *Eval) (bool, error) {
	if !e.PIsLocked.IsValid() {
		return false, nil
	}
	return ev.BoolValueOf(e.PIsLocked)
}

// EffectiveAccess intersects the node's intrinsic mode with the imposed
// one from the description.
func (e *NodeElementBase) EffectiveAccess(intrinsic AccessMode) AccessMode {
	return intrinsic.Intersect(e.ImposedAccessMode)
}

// checkReadable fails with ErrAccessDenied unless the effective mode
// permits reads and the node is implemented and available.
func (e *NodeElementBase) checkReadable(ev *Eval, name string, intrinsic AccessMode) error {
	if !e.EffectiveAccess(intrinsic).Readable() {
		return fmt.Errorf("%w: node %q is not readable (mode %s)",
			ErrAccessDenied, name, e.EffectiveAccess(intrinsic))
	}
	return e.checkUsable(ev, name)
}

// checkWritable fails with ErrAccessDenied unless the effective mode
// permits writes and the node is neither locked nor unavailable.
func (e *NodeElementBase) checkWritable(ev *Eval, name string, intrinsic AccessMode) error {
	if !e.EffectiveAccess(intrinsic).Writable() {
		return fmt.Errorf("%w: node %q is not writable (mode %s)",
			ErrAccessDenied, name, e.EffectiveAccess(intrinsic))
	}
	if err := e.checkUsable(ev, name); err != nil {
		return err
	}
	locked, err := e.IsLocked(ev)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%w: node %q is locked", ErrAccessDenied, name)
	}
	return nil
}

// checkUsable fails when the node is unimplemented or unavailable.
func (e *NodeElementBase) checkUsable(ev *Eval, name string) error {
	impl, err := e.IsImplemented(ev)
	if err != nil {
		return err
	}
	if !impl {
		return fmt.Errorf("%w: node %q is not implemented on this device", ErrAccessDenied, name)
	}
	avail, err := e.IsAvailable(ev)
	if err != nil {
		return err
	}
	if !avail {
		return fmt.Errorf("%w: node %q is currently unavailable", ErrAccessDenied, name)
	}
	return nil
}
