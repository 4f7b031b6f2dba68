package genapi

import "math"

// NodeKind identifies the concrete variant of a stored node.
type NodeKind int

// Node kinds, matching the GenICam element tags the builder accepts.
const (
	KindNode NodeKind = iota
	KindCategory
	KindInteger
	KindIntReg
	KindMaskedIntReg
	KindBoolean
	KindCommand
	KindEnumeration
	KindFloat
	KindFloatReg
	KindString
	KindStringReg
	KindRegister
	KindConverter
	KindIntConverter
	KindSwissKnife
	KindIntSwissKnife
	KindPort
)

// String returns the GenICam element tag for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindNode:
		return "Node"
	case KindCategory:
		return "Category"
	case KindInteger:
		return "Integer"
	case KindIntReg:
		return "IntReg"
	case KindMaskedIntReg:
		return "MaskedIntReg"
	case KindBoolean:
		return "Boolean"
	case KindCommand:
		return "Command"
	case KindEnumeration:
		return "Enumeration"
	case KindFloat:
		return "Float"
	case KindFloatReg:
		return "FloatReg"
	case KindString:
		return "String"
	case KindStringReg:
		return "StringReg"
	case KindRegister:
		return "Register"
	case KindConverter:
		return "Converter"
	case KindIntConverter:
		return "IntConverter"
	case KindSwissKnife:
		return "SwissKnife"
	case KindIntSwissKnife:
		return "IntSwissKnife"
	case KindPort:
		return "Port"
	default:
		return "Unknown"
	}
}

// AccessMode is the read/write capability of a node.
type AccessMode int

// Access modes. NA means the node is not accessible at all.
const (
	AccessRW AccessMode = iota
	AccessRO
	AccessWO
	AccessNA
)

// Readable reports whether the mode permits reads.
func (m AccessMode) Readable() bool { return m == AccessRW || m == AccessRO }

// Writable reports whether the mode permits writes.
func (m AccessMode) Writable() bool { return m == AccessRW || m == AccessWO }

// Intersect combines an intrinsic mode with an imposed one, keeping
// only the directions both allow.
func (m AccessMode) Intersect(other AccessMode) AccessMode {
	r := m.Readable() && other.Readable()
	w := m.Writable() && other.Writable()
	switch {
	case r && w:
		return AccessRW
	case r:
		return AccessRO
	case w:
		return AccessWO
	default:
		return AccessNA
	}
}

// String returns the GenICam attribute value for the mode.
func (m AccessMode) String() string {
	switch m {
	case AccessRW:
		return "RW"
	case AccessRO:
		return "RO"
	case AccessWO:
		return "WO"
	default:
		return "NA"
	}
}

// NameSpace qualifies where a node name is defined.
type NameSpace int

// Name spaces.
const (
	NameSpaceCustom NameSpace = iota
	NameSpaceStandard
)

// Visibility is the recommended user-interface exposure of a node.
type Visibility int

// Visibility levels.
const (
	VisibilityBeginner Visibility = iota
	VisibilityExpert
	VisibilityGuru
	VisibilityInvisible
)

// String returns the GenICam attribute value for the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityBeginner:
		return "Beginner"
	case VisibilityExpert:
		return "Expert"
	case VisibilityGuru:
		return "Guru"
	default:
		return "Invisible"
	}
}

// MergePriority orders nodes merged from multiple description files.
type MergePriority int

// Merge priorities.
const (
	MergePriorityLow  MergePriority = -1
	MergePriorityMid  MergePriority = 0
	MergePriorityHigh MergePriority = 1
)

// CachingMode controls whether and when register contents are cached.
type CachingMode int

// Caching modes.
const (
	// CacheWriteThrough caches on read; a write invalidates the entry,
	// so the next read refetches from the device.
	CacheWriteThrough CachingMode = iota

	// CacheWriteAround caches on read only; writes drop the entry.
	CacheWriteAround

	// NoCache disables caching for the register entirely.
	NoCache
)

// Representation is descriptive metadata for how a numeric value should
// be formatted. It never affects the stored bits.
type Representation int

// Numeric representations.
const (
	RepresentationLinear Representation = iota
	RepresentationLogarithmic
	RepresentationBoolean
	RepresentationPureNumber
	RepresentationHexNumber
	RepresentationIPV4Address
	RepresentationMACAddress
)

// String returns the GenICam attribute value for the representation.
func (r Representation) String() string {
	switch r {
	case RepresentationLogarithmic:
		return "Logarithmic"
	case RepresentationBoolean:
		return "Boolean"
	case RepresentationPureNumber:
		return "PureNumber"
	case RepresentationHexNumber:
		return "HexNumber"
	case RepresentationIPV4Address:
		return "IPV4Address"
	case RepresentationMACAddress:
		return "MACAddress"
	default:
		return "Linear"
	}
}

// DisplayNotation is descriptive metadata for float formatting.
type DisplayNotation int

// Display notations.
const (
	DisplayNotationAutomatic DisplayNotation = iota
	DisplayNotationFixed
	DisplayNotationScientific
)

// Endianness is the byte order of a register-backed value.
type Endianness int

// Byte orders.
const (
	BigEndian Endianness = iota
	LittleEndian
)

// Sign declares whether a register-backed integer is two's-complement.
type Sign int

// Signedness.
const (
	Unsigned Sign = iota
	Signed
)

// IncrementMode describes how a numeric node constrains its values.
type IncrementMode int

// Increment modes. ListIncrement is accepted by the builder but its
// evaluation is not specified upstream and surfaces ErrNotImplemented.
const (
	NoIncrement IncrementMode = iota
	FixedIncrement
	ListIncrement
)

// BitMaskKind discriminates the two mask forms of MaskedIntReg.
type BitMaskKind int

// Bit mask kinds.
const (
	MaskSingleBit BitMaskKind = iota
	MaskRange
)

// BitMask selects a bit field inside a decoded register value. Bit 0 is
// the least significant bit of the decoded integer.
type BitMask struct {
	Kind BitMaskKind

	// Bit is the selected bit for MaskSingleBit.
	Bit uint8

	// LSB and MSB bound the field for MaskRange, inclusive.
	LSB uint8
	MSB uint8
}

// SingleBitMask builds a one-bit mask.
func SingleBitMask(bit uint8) BitMask {
	return BitMask{Kind: MaskSingleBit, Bit: bit, LSB: bit, MSB: bit}
}

// RangeMask builds an inclusive lsb..msb mask.
func RangeMask(lsb, msb uint8) BitMask {
	return BitMask{Kind: MaskRange, LSB: lsb, MSB: msb}
}

// Width returns the field width in bits.
func (m BitMask) Width() uint8 {
	if m.Kind == MaskSingleBit {
		return 1
	}
	return m.MSB - m.LSB + 1
}

// Natural numeric bounds used when a description omits Min/Max.
const (
	defaultIntMin   = math.MinInt64
	defaultIntMax   = math.MaxInt64
	defaultFloatMin = -math.MaxFloat64
	defaultFloatMax = math.MaxFloat64
)
