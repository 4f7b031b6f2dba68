package genapi

import (
	"fmt"
	"time"
)

// AddressEntryKind discriminates the three address term forms.
type AddressEntryKind int

// Address term forms.
const (
	// AddrValue is an immediate or indirected constant.
	AddrValue AddressEntryKind = iota

	// AddrIntSwissKnife is an embedded formula node whose integer
	// result contributes to the address.
	AddrIntSwissKnife

	// AddrPIndex is an indexed term: index value times a stride (the
	// register's own length unless declared), plus an optional offset.
	AddrPIndex
)

// AddressEntry is one term of a register's address. A register's
// effective address is the sum of all its terms, which is what allows
// bank-switched and indexed register layouts.
type AddressEntry struct {
	Kind AddressEntryKind

	// Value is the constant for AddrValue.
	Value IntSource

	// PSwissKnife is the embedded IntSwissKnife node for AddrIntSwissKnife.
	PSwissKnife NodeID

	// PIndex is the index node for AddrPIndex.
	PIndex NodeID

	// Stride multiplies the index; when absent the register's own
	// length is used.
	Stride IntSource

	// Offset is added after the multiplication; optional.
	Offset IntSource
}

// RegisterBase is shared by all register-backed node kinds: the address
// description, length, access mode, the port for device I/O, caching
// behaviour and the declared invalidators.
type RegisterBase struct {
	AddressEntries []AddressEntry
	Length         IntSource
	AccessMode     AccessMode
	PPort          NodeID
	Cacheable      CachingMode

	// PollingTime asks clients to refresh periodically; zero means no
	// polling was declared.
	PollingTime time.Duration

	// PInvalidators lists nodes whose writes drop this register's cache.
	PInvalidators []NodeID
}

// newRegisterBase returns a base with GenICam defaults.
func newRegisterBase() RegisterBase {
	return RegisterBase{
		AccessMode: AccessRO,
		PPort:      NoNode,
		Cacheable:  CacheWriteThrough,
	}
}

// address resolves the effective byte address: the sum of every term.
func (r *RegisterBase) address(ev *Eval) (int64, error) {
	var sum int64
	for i := range r.AddressEntries {
		term, err := r.resolveEntry(ev, &r.AddressEntries[i])
		if err != nil {
			return 0, err
		}
		sum += term
	}
	return sum, nil
}

// resolveEntry evaluates one address term.
func (r *RegisterBase) resolveEntry(ev *Eval, e *AddressEntry) (int64, error) {
	switch e.Kind {
	case AddrValue:
		return e.Value.Resolve(ev)

	case AddrIntSwissKnife:
		return ev.IntValueOf(e.PSwissKnife)

	case AddrPIndex:
		index, err := ev.IntValueOf(e.PIndex)
		if err != nil {
			return 0, err
		}
		stride := int64(0)
		if e.Stride.IsValid() {
			stride, err = e.Stride.Resolve(ev)
		} else {
			stride, err = r.length(ev)
		}
		if err != nil {
			return 0, err
		}
		term := index * stride
		if e.Offset.IsValid() {
			off, offErr := e.Offset.Resolve(ev)
			if offErr != nil {
				return 0, offErr
			}
			term += off
		}
		return term, nil

	default:
		return 0, fmt.Errorf("%w: unknown address entry kind %d", ErrInvalidNode, e.Kind)
	}
}

// length resolves the register's byte length.
func (r *RegisterBase) length(ev *Eval) (int64, error) {
	if !r.Length.IsValid() {
		return 0, fmt.Errorf("%w: register has no length", ErrInvalidData)
	}
	n, err := r.Length.Resolve(ev)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: register length %d must be positive", ErrInvalidData, n)
	}
	return n, nil
}

// read returns the register's raw bytes. The cache is consulted first;
// on a miss the bytes are fetched through the port and cached, keyed by
// the requesting node. A failed device read never inserts a cache entry.
func (r *RegisterBase) read(ev *Eval, attr *NodeAttributeBase, elem *NodeElementBase) ([]byte, error) {
	if err := elem.checkReadable(ev, attr.Name, r.AccessMode); err != nil {
		return nil, err
	}

	address, err := r.address(ev)
	if err != nil {
		return nil, err
	}
	length, err := r.length(ev)
	if err != nil {
		return nil, err
	}

	if r.Cacheable != NoCache {
		if data, ok := ev.Ctxt.Cache.Cache(attr.ID, address, length); ok {
			return data, nil
		}
	}

	port, err := ev.AsPort(r.PPort)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if err := port.PortRead(ev, address, buf); err != nil {
		return nil, err
	}

	if r.Cacheable != NoCache {
		ev.Ctxt.Cache.StoreCache(attr.ID, address, length, buf)
	}
	return buf, nil
}

// write stores raw bytes through the port, then invalidates this node
// and everything it is an invalidator for. The next read re-fetches
// from the device. A failed device write invalidates nothing.
func (r *RegisterBase) write(ev *Eval, attr *NodeAttributeBase, elem *NodeElementBase, data []byte) error {
	if err := elem.checkWritable(ev, attr.Name, r.AccessMode); err != nil {
		return err
	}

	address, err := r.address(ev)
	if err != nil {
		return err
	}
	length, err := r.length(ev)
	if err != nil {
		return err
	}
	if int64(len(data)) != length {
		return fmt.Errorf("%w: writing %d bytes to %d-byte register %q",
			ErrInvalidData, len(data), length, attr.Name)
	}

	port, err := ev.AsPort(r.PPort)
	if err != nil {
		return err
	}
	if err := port.PortWrite(ev, address, data); err != nil {
		return err
	}

	ev.Ctxt.Cache.InvalidateBy(attr.ID)
	return nil
}

// readUnchecked fetches bytes bypassing the access-mode check. Used for
// read-modify-write cycles on write-only checks already performed.
func (r *RegisterBase) readUnchecked(ev *Eval, attr *NodeAttributeBase) ([]byte, error) {
	address, err := r.address(ev)
	if err != nil {
		return nil, err
	}
	length, err := r.length(ev)
	if err != nil {
		return nil, err
	}

	if r.Cacheable != NoCache {
		if data, ok := ev.Ctxt.Cache.Cache(attr.ID, address, length); ok {
			return data, nil
		}
	}

	port, err := ev.AsPort(r.PPort)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if err := port.PortRead(ev, address, buf); err != nil {
		return nil, err
	}
	if r.Cacheable != NoCache {
		ev.Ctxt.Cache.StoreCache(attr.ID, address, length, buf)
	}
	return buf, nil
}
