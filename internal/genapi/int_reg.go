package genapi

import "fmt"

// IntRegNode is an integer parameter stored in device memory.
type IntRegNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
	Reg   RegisterBase

	Signedness Sign
	Endian     Endianness
	Rep        Representation
	UnitStr    string
	PSelected  []NodeID
}

// NewIntRegNode creates an integer register node.
func NewIntRegNode(attrs NodeAttributeBase) *IntRegNode {
	return &IntRegNode{Attrs: attrs, Base: newElementBase(), Reg: newRegisterBase()}
}

// NodeKind implements NodeData.
func (n *IntRegNode) NodeKind() NodeKind { return KindIntReg }

// Attr implements NodeData.
func (n *IntRegNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *IntRegNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IInteger: read raw bytes through the cache, decode
// per declared length, endianness and sign.
func (n *IntRegNode) Value(ev *Eval) (int64, error) {
	data, err := n.Reg.read(ev, &n.Attrs, &n.Base)
	if err != nil {
		return 0, err
	}
	return decodeIntReg(data, n.Endian, n.Signedness)
}

// SetValue implements IInteger: encode, write through the port, then
// invalidate dependents.
func (n *IntRegNode) SetValue(ev *Eval, v int64) error {
	length, err := n.Reg.length(ev)
	if err != nil {
		return err
	}
	data, err := encodeIntReg(v, int(length), n.Endian, n.Signedness)
	if err != nil {
		return err
	}
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Min implements IInteger: the smallest value the declared width and
// sign can represent.
func (n *IntRegNode) Min(ev *Eval) (int64, error) {
	length, err := n.Reg.length(ev)
	if err != nil {
		return 0, err
	}
	if length >= maxRegisterIntLen {
		if n.Signedness == Unsigned {
			return 0, nil
		}
		return defaultIntMin, nil
	}
	if n.Signedness == Unsigned {
		return 0, nil
	}
	return int64(-1) << uint(length*8-1), nil
}

// Max implements IInteger: the largest representable value.
func (n *IntRegNode) Max(ev *Eval) (int64, error) {
	length, err := n.Reg.length(ev)
	if err != nil {
		return 0, err
	}
	if length >= maxRegisterIntLen {
		return defaultIntMax, nil
	}
	bits := uint(length * 8)
	if n.Signedness == Unsigned {
		return int64(1)<<bits - 1, nil
	}
	return int64(1)<<(bits-1) - 1, nil
}

// Inc implements IInteger; registers declare no increment.
func (n *IntRegNode) Inc(*Eval) (int64, bool, error) { return 0, false, nil }

// IncMode implements IInteger.
func (n *IntRegNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IInteger.
func (n *IntRegNode) Representation() Representation { return n.Rep }

// Unit implements IInteger.
func (n *IntRegNode) Unit() string { return n.UnitStr }

// Read implements IRegister.
func (n *IntRegNode) Read(ev *Eval) ([]byte, error) {
	return n.Reg.read(ev, &n.Attrs, &n.Base)
}

// Write implements IRegister.
func (n *IntRegNode) Write(ev *Eval, data []byte) error {
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Address implements IRegister.
func (n *IntRegNode) Address(ev *Eval) (int64, error) { return n.Reg.address(ev) }

// Length implements IRegister.
func (n *IntRegNode) Length(ev *Eval) (int64, error) { return n.Reg.length(ev) }

// MaskedIntRegNode is an integer parameter occupying a bit field inside
// a wider register. The mask applies after byte decoding and before
// sign extension.
type MaskedIntRegNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
	Reg   RegisterBase

	Mask       BitMask
	Signedness Sign
	Endian     Endianness
	Rep        Representation
	UnitStr    string
	PSelected  []NodeID
}

// NewMaskedIntRegNode creates a masked integer register node.
func NewMaskedIntRegNode(attrs NodeAttributeBase) *MaskedIntRegNode {
	return &MaskedIntRegNode{Attrs: attrs, Base: newElementBase(), Reg: newRegisterBase()}
}

// NodeKind implements NodeData.
func (n *MaskedIntRegNode) NodeKind() NodeKind { return KindMaskedIntReg }

// Attr implements NodeData.
func (n *MaskedIntRegNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *MaskedIntRegNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IInteger: decode the whole register unsigned, then
// isolate the field and sign-extend if declared signed. Other bits of
// the register never leak into the result.
func (n *MaskedIntRegNode) Value(ev *Eval) (int64, error) {
	data, err := n.Reg.read(ev, &n.Attrs, &n.Base)
	if err != nil {
		return 0, err
	}
	if err := n.checkMask(len(data)); err != nil {
		return 0, err
	}
	raw, err := rawUint(data, n.Endian)
	if err != nil {
		return 0, err
	}
	return extractMask(raw, n.Mask, n.Signedness), nil
}

// SetValue implements IInteger: read-modify-write so the bits outside
// the field are preserved.
func (n *MaskedIntRegNode) SetValue(ev *Eval, v int64) error {
	if err := n.Base.checkWritable(ev, n.Attrs.Name, n.Reg.AccessMode); err != nil {
		return err
	}

	data, err := n.Reg.readUnchecked(ev, &n.Attrs)
	if err != nil {
		return err
	}
	if err := n.checkMask(len(data)); err != nil {
		return err
	}
	raw, err := rawUint(data, n.Endian)
	if err != nil {
		return err
	}
	merged, err := insertMask(raw, v, n.Mask, n.Signedness)
	if err != nil {
		return err
	}
	return n.Reg.write(ev, &n.Attrs, &n.Base, encodeRawUint(merged, len(data), n.Endian))
}

// Min implements IInteger: the field's representable lower bound.
func (n *MaskedIntRegNode) Min(*Eval) (int64, error) {
	width := uint(n.Mask.Width())
	if n.Signedness == Unsigned || width >= 64 {
		if n.Signedness == Unsigned {
			return 0, nil
		}
		return defaultIntMin, nil
	}
	return int64(-1) << (width - 1), nil
}

// Max implements IInteger: the field's representable upper bound.
func (n *MaskedIntRegNode) Max(*Eval) (int64, error) {
	width := uint(n.Mask.Width())
	if width >= 64 {
		return defaultIntMax, nil
	}
	if n.Signedness == Unsigned {
		return int64(1)<<width - 1, nil
	}
	return int64(1)<<(width-1) - 1, nil
}

// Inc implements IInteger.
func (n *MaskedIntRegNode) Inc(*Eval) (int64, bool, error) { return 0, false, nil }

// IncMode implements IInteger.
func (n *MaskedIntRegNode) IncMode() IncrementMode { return NoIncrement }

// Representation implements IInteger.
func (n *MaskedIntRegNode) Representation() Representation { return n.Rep }

// Unit implements IInteger.
func (n *MaskedIntRegNode) Unit() string { return n.UnitStr }

// Read implements IRegister.
func (n *MaskedIntRegNode) Read(ev *Eval) ([]byte, error) {
	return n.Reg.read(ev, &n.Attrs, &n.Base)
}

// Write implements IRegister.
func (n *MaskedIntRegNode) Write(ev *Eval, data []byte) error {
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Address implements IRegister.
func (n *MaskedIntRegNode) Address(ev *Eval) (int64, error) { return n.Reg.address(ev) }

// Length implements IRegister.
func (n *MaskedIntRegNode) Length(ev *Eval) (int64, error) { return n.Reg.length(ev) }

// checkMask validates the mask against the register width.
func (n *MaskedIntRegNode) checkMask(length int) error {
	bits := length * 8
	if int(n.Mask.MSB) >= bits || n.Mask.LSB > n.Mask.MSB {
		return fmt.Errorf("%w: bit mask [%d..%d] does not fit %d-byte register %q",
			ErrInvalidData, n.Mask.LSB, n.Mask.MSB, length, n.Attrs.Name)
	}
	return nil
}
