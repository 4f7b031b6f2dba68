package genapi

// RegisterNode is a raw byte register with no value interpretation.
type RegisterNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
	Reg   RegisterBase
}

// NewRegisterNode creates a raw register node.
func NewRegisterNode(attrs NodeAttributeBase) *RegisterNode {
	return &RegisterNode{Attrs: attrs, Base: newElementBase(), Reg: newRegisterBase()}
}

// NodeKind implements NodeData.
func (n *RegisterNode) NodeKind() NodeKind { return KindRegister }

// Attr implements NodeData.
func (n *RegisterNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *RegisterNode) Elem() *NodeElementBase { return &n.Base }

// Read implements IRegister.
func (n *RegisterNode) Read(ev *Eval) ([]byte, error) {
	return n.Reg.read(ev, &n.Attrs, &n.Base)
}

// Write implements IRegister.
func (n *RegisterNode) Write(ev *Eval, data []byte) error {
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Address implements IRegister.
func (n *RegisterNode) Address(ev *Eval) (int64, error) {
	return n.Reg.address(ev)
}

// Length implements IRegister.
func (n *RegisterNode) Length(ev *Eval) (int64, error) {
	return n.Reg.length(ev)
}
