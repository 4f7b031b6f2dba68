package genapi

import "fmt"

// PortNode is the channel through which register-backed nodes reach the
// device. It translates transport failures into the engine's error
// taxonomy without retrying or swallowing them.
type PortNode struct {
	Attrs NodeAttributeBase
	Base  NodeElementBase

	// ChunkID binds the port to a chunk data section. Chunk-backed
	// ports cannot serve device I/O until chunk data is attached,
	// which this engine does not implement; access surfaces
	// ErrChunkDataMissing.
	ChunkID string

	// SwapEndianness asks the port to swap byte order; descriptive
	// only, honoured by the decode layer through register Endianness.
	SwapEndianness bool
}

// NewPortNode creates a port node.
func NewPortNode(attrs NodeAttributeBase) *PortNode {
	return &PortNode{Attrs: attrs, Base: newElementBase()}
}

// NodeKind implements NodeData.
func (n *PortNode) NodeKind() NodeKind { return KindPort }

// Attr implements NodeData.
func (n *PortNode) Attr() *NodeAttributeBase { return &n.Attrs }

// Elem implements NodeData.
func (n *PortNode) Elem() *NodeElementBase { return &n.Base }

// PortRead implements IPort: read exactly len(buf) bytes at address.
func (n *PortNode) PortRead(ev *Eval, address int64, buf []byte) error {
	if n.ChunkID != "" {
		return fmt.Errorf("%w: port %q is chunk-backed", ErrChunkDataMissing, n.Attrs.Name)
	}
	if address < 0 {
		return fmt.Errorf("%w: negative address %d on port %q",
			ErrInvalidAddress, address, n.Attrs.Name)
	}
	if err := ev.Device.ReadMem(uint64(address), buf); err != nil {
		return deviceError("read", uint64(address), len(buf), err)
	}
	return nil
}

// PortWrite implements IPort: write exactly len(data) bytes at address.
func (n *PortNode) PortWrite(ev *Eval, address int64, data []byte) error {
	if n.ChunkID != "" {
		return fmt.Errorf("%w: port %q is chunk-backed", ErrChunkDataMissing, n.Attrs.Name)
	}
	if address < 0 {
		return fmt.Errorf("%w: negative address %d on port %q",
			ErrInvalidAddress, address, n.Attrs.Name)
	}
	if err := ev.Device.WriteMem(uint64(address), data); err != nil {
		return deviceError("write", uint64(address), len(data), err)
	}
	return nil
}
