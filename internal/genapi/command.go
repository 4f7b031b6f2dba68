package genapi

import "fmt"

// CommandNode triggers a device action by writing a command value to
// its target.
type CommandNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	// ValueSrc is the target the command value is written through;
	// usually a pointer to a register-backed integer node.
	ValueSrc IntSource

	// CommandValueSrc resolves the value written on Execute; default 1.
	CommandValueSrc IntSource

	PSelected []NodeID
}

// NewCommandNode creates a command node.
func NewCommandNode(attrs NodeAttributeBase) *CommandNode {
	return &CommandNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *CommandNode) NodeKind() NodeKind { return KindCommand }

// Attr implements NodeData.
func (n *CommandNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *CommandNode) Elem() *NodeElementBase { return &n.Base }

// commandValue resolves the value Execute writes.
func (n *CommandNode) commandValue(ev *Eval) (int64, error) {
	if !n.CommandValueSrc.IsValid() {
		return 1, nil
	}
	return n.CommandValueSrc.Resolve(ev)
}

// Execute implements ICommand.
func (n *CommandNode) Execute(ev *Eval) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	cmd, err := n.commandValue(ev)
	if err != nil {
		return err
	}
	if !n.ValueSrc.IsValid() {
		return fmt.Errorf("%w: command %q has no value target", ErrInvalidNode, n.Attrs.Name)
	}
	if err := n.ValueSrc.Set(ev, cmd); err != nil {
		return err
	}
	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// IsDone implements ICommand. The command is complete once the target
// no longer reads back the command value. Targets that cannot be read
// (write-only registers) are considered self-clearing and report done.
func (n *CommandNode) IsDone(ev *Eval) (bool, error) {
	if n.ValueSrc.IsImm() {
		return true, nil
	}
	cmd, err := n.commandValue(ev)
	if err != nil {
		return false, err
	}
	v, err := ev.IntValueOf(n.ValueSrc.PNode())
	if err != nil {
		if IsAccessDenied(err) {
			return true, nil
		}
		return false, err
	}
	return v != cmd, nil
}
