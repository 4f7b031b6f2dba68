package genapi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Byte-level codecs for register-backed nodes. Decoding accounts for
// the declared byte length, endianness, signedness, and (for masked
// integers) a bit mask applied after byte decoding and before sign
// extension.

// maxRegisterIntLen is the widest integer register length in bytes.
const maxRegisterIntLen = 8

// decodeIntReg converts raw register bytes to an int64.
func decodeIntReg(data []byte, endian Endianness, sign Sign) (int64, error) {
	n := len(data)
	if n == 0 || n > maxRegisterIntLen {
		return 0, fmt.Errorf("%w: integer register length must be 1-8 bytes, got %d",
			ErrInvalidData, n)
	}

	var raw uint64
	if endian == BigEndian {
		for _, b := range data {
			raw = raw<<8 | uint64(b)
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			raw = raw<<8 | uint64(data[i])
		}
	}

	if sign == Signed && n < maxRegisterIntLen {
		bits := uint(n * 8)
		if raw&(1<<(bits-1)) != 0 {
			raw |= ^uint64(0) << bits
		}
	}
	return int64(raw), nil
}

// encodeIntReg converts a value to raw register bytes, failing when the
// value does not fit the declared width.
func encodeIntReg(v int64, length int, endian Endianness, sign Sign) ([]byte, error) {
	if length <= 0 || length > maxRegisterIntLen {
		return nil, fmt.Errorf("%w: integer register length must be 1-8 bytes, got %d",
			ErrInvalidData, length)
	}

	if length < maxRegisterIntLen {
		bits := uint(length * 8)
		if sign == Signed {
			lo := int64(-1) << (bits - 1)
			hi := int64(1)<<(bits-1) - 1
			if v < lo || v > hi {
				return nil, fmt.Errorf("%w: value %d does not fit %d signed bytes",
					ErrInvalidData, v, length)
			}
		} else {
			if v < 0 || uint64(v) > (uint64(1)<<bits)-1 {
				return nil, fmt.Errorf("%w: value %d does not fit %d unsigned bytes",
					ErrInvalidData, v, length)
			}
		}
	} else if sign == Unsigned && v < 0 {
		return nil, fmt.Errorf("%w: negative value %d for unsigned register", ErrInvalidData, v)
	}

	raw := uint64(v)
	out := make([]byte, length)
	if endian == BigEndian {
		for i := length - 1; i >= 0; i-- {
			out[i] = byte(raw)
			raw >>= 8
		}
	} else {
		for i := 0; i < length; i++ {
			out[i] = byte(raw)
			raw >>= 8
		}
	}
	return out, nil
}

// rawUint decodes register bytes as an unsigned integer, used before
// mask extraction and for read-modify-write cycles.
func rawUint(data []byte, endian Endianness) (uint64, error) {
	n := len(data)
	if n == 0 || n > maxRegisterIntLen {
		return 0, fmt.Errorf("%w: integer register length must be 1-8 bytes, got %d",
			ErrInvalidData, n)
	}
	var raw uint64
	if endian == BigEndian {
		for _, b := range data {
			raw = raw<<8 | uint64(b)
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			raw = raw<<8 | uint64(data[i])
		}
	}
	return raw, nil
}

// extractMask isolates the mask's bit field from a decoded raw value
// and sign-extends it when the register is signed. Bit 0 is the least
// significant bit of the decoded value.
func extractMask(raw uint64, mask BitMask, sign Sign) int64 {
	width := uint(mask.Width())
	field := raw >> uint(mask.LSB)
	if width < 64 {
		field &= (uint64(1) << width) - 1
	}
	if sign == Signed && width < 64 && field&(uint64(1)<<(width-1)) != 0 {
		field |= ^uint64(0) << width
	}
	return int64(field)
}

// insertMask writes a field value into the mask's position inside raw,
// failing when the value does not fit the field width.
func insertMask(raw uint64, v int64, mask BitMask, sign Sign) (uint64, error) {
	width := uint(mask.Width())
	if width < 64 {
		if sign == Signed {
			lo := int64(-1) << (width - 1)
			hi := int64(1)<<(width-1) - 1
			if v < lo || v > hi {
				return 0, fmt.Errorf("%w: value %d does not fit %d-bit signed field",
					ErrInvalidData, v, width)
			}
		} else if v < 0 || uint64(v) > (uint64(1)<<width)-1 {
			return 0, fmt.Errorf("%w: value %d does not fit %d-bit unsigned field",
				ErrInvalidData, v, width)
		}
	}

	fieldMask := ^uint64(0)
	if width < 64 {
		fieldMask = (uint64(1)<<width - 1)
	}
	fieldMask <<= uint(mask.LSB)

	return (raw &^ fieldMask) | (uint64(v) << uint(mask.LSB) & fieldMask), nil
}

// encodeRawUint writes an unsigned raw value back to register bytes.
func encodeRawUint(raw uint64, length int, endian Endianness) []byte {
	out := make([]byte, length)
	if endian == BigEndian {
		for i := length - 1; i >= 0; i-- {
			out[i] = byte(raw)
			raw >>= 8
		}
	} else {
		for i := 0; i < length; i++ {
			out[i] = byte(raw)
			raw >>= 8
		}
	}
	return out
}

// decodeFloatReg converts raw register bytes to a float64. Only IEEE
// single (4 bytes) and double (8 bytes) widths are defined.
func decodeFloatReg(data []byte, endian Endianness) (float64, error) {
	switch len(data) {
	case 4:
		var bits uint32
		if endian == BigEndian {
			bits = binary.BigEndian.Uint32(data)
		} else {
			bits = binary.LittleEndian.Uint32(data)
		}
		return float64(math.Float32frombits(bits)), nil
	case 8:
		var bits uint64
		if endian == BigEndian {
			bits = binary.BigEndian.Uint64(data)
		} else {
			bits = binary.LittleEndian.Uint64(data)
		}
		return math.Float64frombits(bits), nil
	default:
		return 0, fmt.Errorf("%w: float register length must be 4 or 8 bytes, got %d",
			ErrInvalidData, len(data))
	}
}

// encodeFloatReg converts a float64 to raw register bytes.
func encodeFloatReg(v float64, length int, endian Endianness) ([]byte, error) {
	switch length {
	case 4:
		out := make([]byte, 4)
		bits := math.Float32bits(float32(v))
		if endian == BigEndian {
			binary.BigEndian.PutUint32(out, bits)
		} else {
			binary.LittleEndian.PutUint32(out, bits)
		}
		return out, nil
	case 8:
		out := make([]byte, 8)
		bits := math.Float64bits(v)
		if endian == BigEndian {
			binary.BigEndian.PutUint64(out, bits)
		} else {
			binary.LittleEndian.PutUint64(out, bits)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: float register length must be 4 or 8 bytes, got %d",
			ErrInvalidData, length)
	}
}
