package genapi

// Capability interfaces. Each node kind implements the interfaces it
// semantically offers; callers dispatch with a type assertion (or the
// As* helpers on Eval) and get ErrInvalidNode when the capability is
// absent. No node kind implements both IInteger and IFloat, so the
// assertion is always unambiguous.

// IInteger is the capability of integer-valued nodes
// (Integer, IntReg, MaskedIntReg, IntConverter, IntSwissKnife,
// Enumeration).
type IInteger interface {
	// Value resolves the node's current integer value.
	Value(ev *Eval) (int64, error)

	// SetValue writes a new value through to the backing store and
	// invalidates dependents. Fails with ErrAccessDenied when the
	// effective access mode is not writable.
	SetValue(ev *Eval, v int64) error

	// Min resolves the lower bound, defaulting to math.MinInt64.
	Min(ev *Eval) (int64, error)

	// Max resolves the upper bound, defaulting to math.MaxInt64.
	Max(ev *Eval) (int64, error)

	// Inc resolves the increment. ok is false when the description
	// declares none.
	Inc(ev *Eval) (inc int64, ok bool, err error)

	// IncMode reports how the node constrains values.
	IncMode() IncrementMode

	// Representation is formatting metadata only.
	Representation() Representation

	// Unit is the physical unit, or "".
	Unit() string
}

// IFloat is the capability of float-valued nodes
// (Float, FloatReg, Converter, SwissKnife).
type IFloat interface {
	Value(ev *Eval) (float64, error)
	SetValue(ev *Eval, v float64) error
	Min(ev *Eval) (float64, error)
	Max(ev *Eval) (float64, error)
	Inc(ev *Eval) (inc float64, ok bool, err error)
	IncMode() IncrementMode
	Representation() Representation
	Unit() string

	// DisplayNotation and DisplayPrecision are formatting metadata only.
	DisplayNotation() DisplayNotation
	DisplayPrecision() int64
}

// IBoolean is the capability of Boolean nodes.
type IBoolean interface {
	Value(ev *Eval) (bool, error)
	SetValue(ev *Eval, v bool) error
}

// IString is the capability of string-valued nodes (String, StringReg).
type IString interface {
	Value(ev *Eval) (string, error)
	SetValue(ev *Eval, v string) error

	// MaxLength is the longest value SetValue accepts.
	MaxLength(ev *Eval) (int64, error)
}

// ICommand is the capability of Command nodes.
type ICommand interface {
	// Execute writes the command value to the command's target.
	Execute(ev *Eval) error

	// IsDone polls whether a previously executed command completed.
	IsDone(ev *Eval) (bool, error)
}

// IRegister is the capability shared by all register-backed nodes
// (Register, IntReg, MaskedIntReg, FloatReg, StringReg).
type IRegister interface {
	// Read returns the register's raw bytes, through the cache.
	Read(ev *Eval) ([]byte, error)

	// Write stores raw bytes to the device and invalidates dependents.
	Write(ev *Eval, data []byte) error

	// Address resolves the register's effective byte address.
	Address(ev *Eval) (int64, error)

	// Length resolves the register's byte length.
	Length(ev *Eval) (int64, error)
}

// IEnumeration is the capability of Enumeration nodes.
type IEnumeration interface {
	// Entries lists the declared entries in document order.
	Entries() []*EnumEntry

	// CurrentEntry resolves the entry matching the current value.
	CurrentEntry(ev *Eval) (*EnumEntry, error)

	// SetEntryByName writes the value of the named entry.
	SetEntryByName(ev *Eval, name string) error

	// SetEntryByValue writes the given entry value after validating it.
	SetEntryByValue(ev *Eval, value int64) error
}

// ICategory is the capability of Category nodes.
type ICategory interface {
	// Features lists the member nodes in document order.
	Features() []NodeID
}

// IPort is the capability of Port nodes: the channel through which
// register-backed nodes reach the device.
type IPort interface {
	PortRead(ev *Eval, address int64, buf []byte) error
	PortWrite(ev *Eval, address int64, data []byte) error
}
