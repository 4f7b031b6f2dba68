package genapi

// PlainNode is the bare "Node" element: identity and common metadata
// with no value semantics of its own. Descriptions use it as a property
// holder referenced by other nodes' predicates.
type PlainNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
}

// NewPlainNode creates a plain node.
func NewPlainNode(attrs NodeAttributeBase) *PlainNode {
	return &PlainNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *PlainNode) NodeKind() NodeKind { return KindNode }

// Attr implements NodeData.
func (n *PlainNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *PlainNode) Elem() *NodeElementBase { return &n.Base }

// CategoryNode groups features for presentation. It carries no value.
type CategoryNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	// PFeatures lists member nodes in document order.
	PFeatures []NodeID
}

// NewCategoryNode creates a category node.
func NewCategoryNode(attrs NodeAttributeBase) *CategoryNode {
	return &CategoryNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *CategoryNode) NodeKind() NodeKind { return KindCategory }

// Attr implements NodeData.
func (n *CategoryNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *CategoryNode) Elem() *NodeElementBase { return &n.Base }

// Features implements ICategory.
func (n *CategoryNode) Features() []NodeID { return n.PFeatures }
