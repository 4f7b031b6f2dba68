package genapi

import (
	"bytes"
	"fmt"
)

// StringRegNode is a string parameter stored in device memory as a
// fixed-length, NUL-padded byte field.
type StringRegNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase
	Reg   RegisterBase
}

// NewStringRegNode creates a string register node.
func NewStringRegNode(attrs NodeAttributeBase) *StringRegNode {
	return &StringRegNode{Attrs: attrs, Base: newElementBase(), Reg: newRegisterBase()}
}

// NodeKind implements NodeData.
func (n *StringRegNode) NodeKind() NodeKind { return KindStringReg }

// Attr implements NodeData.
func (n *StringRegNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *StringRegNode) Elem() *NodeElementBase { return &n.Base }

// Value implements IString: the bytes up to the first NUL.
func (n *StringRegNode) Value(ev *Eval) (string, error) {
	data, err := n.Reg.read(ev, &n.Attrs, &n.Base)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

// SetValue implements IString: the value must fit the register, the
// remainder is zero-padded.
func (n *StringRegNode) SetValue(ev *Eval, v string) error {
	length, err := n.Reg.length(ev)
	if err != nil {
		return err
	}
	if int64(len(v)) > length {
		return fmt.Errorf("%w: string of %d bytes exceeds %d-byte register %q",
			ErrInvalidData, len(v), length, n.Attrs.Name)
	}
	data := make([]byte, length)
	copy(data, v)
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// MaxLength implements IString.
func (n *StringRegNode) MaxLength(ev *Eval) (int64, error) {
	return n.Reg.length(ev)
}

// Read implements IRegister.
func (n *StringRegNode) Read(ev *Eval) ([]byte, error) {
	return n.Reg.read(ev, &n.Attrs, &n.Base)
}

// Write implements IRegister.
func (n *StringRegNode) Write(ev *Eval, data []byte) error {
	return n.Reg.write(ev, &n.Attrs, &n.Base, data)
}

// Address implements IRegister.
func (n *StringRegNode) Address(ev *Eval) (int64, error) { return n.Reg.address(ev) }

// Length implements IRegister.
func (n *StringRegNode) Length(ev *Eval) (int64, error) { return n.Reg.length(ev) }
