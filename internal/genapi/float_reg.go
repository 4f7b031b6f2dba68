package genapi

// FloatRegNode is a float parameter stored in device memory as IEEE-754
// single or double precision.
type FloatRegNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
	Reg   RegisterBase

	Endian    Endianness
	Rep       Representation
	UnitStr   string
	Notation  DisplayNotation
	Precision int64
	PSelected []NodeID
}

// NewFloatRegNode creates a float register node.
func NewFloatRegNode(attrs NodeAttributeBase) *FloatRegNode {
	return &FloatRegNode{Attrs: attrs, Base: newElementBase(), Reg: newRegisterBase(), Precision: 6}
}

// NodeKind implements NodeData.
func (n *FloatRegNode) NodeKind() NodeKind { return KindFloatReg }

// Attr implements NodeData.
func (n *FloatRegNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *FloatRegNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IFloat.
func (n *FloatRegNode) Value(ev *Eval) (float64, error) {
	data, err := n.Reg.read(ev, &n.Attrs, &n.Base)
	if err != nil {
		return 0, err
	}
	return decodeFloatReg(data, n.Endian)
}

// SetValue implements IFloat.
func (n *FloatRegNode) SetValue(ev *Eval, v float64) error {
	length, err := n.Reg.length(ev)
	if err != nil {
		return err
	}
	data, err := encodeFloatReg(v, int(length), n.Endian)
	if err != nil {
		return err
	}
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Min implements IFloat.
func (n *FloatRegNode) Min(*Eval) (float64, error) { return defaultFloatMin, nil }

// Max implements IFloat.
func (n *FloatRegNode) Max(*Eval) (float64, error) { return defaultFloatMax, nil }

// Inc implements IFloat.
func (n *FloatRegNode) Inc(*Eval) (float64, bool, error) { return 0, false, nil }

// IncMode implements IFloat.
func (n *FloatRegNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IFloat.
func (n *FloatRegNode) Representation() Representation { return n.Rep }

// Unit implements IFloat.
func (n *FloatRegNode) Unit() string { return n.UnitStr }

// DisplayNotation implements IFloat.
func (n *FloatRegNode) DisplayNotation() DisplayNotation { return n.Notation }

// DisplayPrecision implements IFloat.
func (n *FloatRegNode) DisplayPrecision() int64 { return n.Precision }

// Read implements IRegister.
func (n *FloatRegNode) Read(ev *Eval) ([]byte, error) {
	return n.Reg.read(ev, &n.Attrs, &n.Base)
}

// Write implements IRegister.
func (n *FloatRegNode) Write(ev *Eval, data []byte) error {
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Address implements IRegister.
func (n *FloatRegNode) Address(ev *Eval) (int64, error) { return n.Reg.address(ev) }

// Length implements IRegister.
func (n *FloatRegNode) Length(ev *Eval) (int64, error) { return n.Reg.length(ev) }
