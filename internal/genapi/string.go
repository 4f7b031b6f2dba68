package genapi

// StringNode is a pure string parameter.
type StringNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	ValueSrc StrSource
}

// NewStringNode creates a string node.
func NewStringNode(attrs NodeAttributeBase) *StringNode {
	return &StringNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *StringNode) NodeKind() NodeKind { return KindString }

// Attr implements NodeData.
func (n *StringNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *StringNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IString.
func (n *StringNode) Value(ev *Eval) (string, error) {
	if err := n.Base.checkReadable(ev, n.Attrs.Name, AccessRW); err != nil {
		return "", err
	}
	return n.ValueSrc.Resolve(ev)
}

// SetValue implements IString.
func (n *StringNode) SetValue(ev *Eval, v string) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, AccessRW); err != nil {
		return err
	}
	if err := n.ValueSrc.Set(ev, v); err != nil {
		return err
	}
	ev.Ctxt.Cache.InvalidateBy(n.Attrs.ID)
	return nil
}

// MaxLength implements IString. A pure string node imposes no device
// limit; a pNode source delegates to the target.
func (n *StringNode) MaxLength(ev *Eval) (int64, error) {
	if n.ValueSrc.IsImm() {
		return int64(^uint64(0) >> 1), nil
	}
	target, err := ev.AsString(n.ValueSrc.pnode)
	if err != nil {
		return 0, err
	}
	return target.MaxLength(ev)
}
