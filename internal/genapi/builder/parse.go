package builder

import (
	"fmt"
	"strconv"

	"github.com/genvis/genvis-core/internal/genapi"
)

// Scalar and enumerated-attribute parsers. Integers accept the 0x
// prefix, since addresses are conventionally written in hex.

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		// Addresses like 0xFFFFFFFF_FFFFFFF0 overflow int64 but are
		// valid 64-bit register addresses.
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, fmt.Errorf("%w: bad integer %q", ErrDescription, s)
		}
		return int64(u), nil
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad float %q", ErrDescription, s)
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "Yes", "yes", "true", "True", "1":
		return true, nil
	case "No", "no", "false", "False", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: bad boolean %q", ErrDescription, s)
}

func parseNameSpace(s string) genapi.NameSpace {
	if s == "Standard" {
		return genapi.NameSpaceStandard
	}
	return genapi.NameSpaceCustom
}

func parseMergePriority(s string) genapi.MergePriority {
	switch s {
	case "1":
		return genapi.MergePriorityHigh
	case "-1":
		return genapi.MergePriorityLow
	default:
		return genapi.MergePriorityMid
	}
}

func parseVisibility(s string) genapi.Visibility {
	switch s {
	case "Expert":
		return genapi.VisibilityExpert
	case "Guru":
		return genapi.VisibilityGuru
	case "Invisible":
		return genapi.VisibilityInvisible
	default:
		return genapi.VisibilityBeginner
	}
}

func parseAccessMode(s string) (genapi.AccessMode, error) {
	switch s {
	case "RW":
		return genapi.AccessRW, nil
	case "RO":
		return genapi.AccessRO, nil
	case "WO":
		return genapi.AccessWO, nil
	case "NA":
		return genapi.AccessNA, nil
	}
	return 0, fmt.Errorf("%w: bad access mode %q", ErrDescription, s)
}

func parseCachingMode(s string) (genapi.CachingMode, error) {
	switch s {
	case "WriteThrough":
		return genapi.CacheWriteThrough, nil
	case "WriteAround":
		return genapi.CacheWriteAround, nil
	case "NoCache":
		return genapi.NoCache, nil
	}
	return 0, fmt.Errorf("%w: bad caching mode %q", ErrDescription, s)
}

func parseRepresentation(s string) genapi.Representation {
	switch s {
	case "Logarithmic":
		return genapi.RepresentationLogarithmic
	case "Boolean":
		return genapi.RepresentationBoolean
	case "PureNumber":
		return genapi.RepresentationPureNumber
	case "HexNumber":
		return genapi.RepresentationHexNumber
	case "IPV4Address":
		return genapi.RepresentationIPV4Address
	case "MACAddress":
		return genapi.RepresentationMACAddress
	default:
		return genapi.RepresentationLinear
	}
}

func parseNotation(s string) genapi.DisplayNotation {
	switch s {
	case "Fixed":
		return genapi.DisplayNotationFixed
	case "Scientific":
		return genapi.DisplayNotationScientific
	default:
		return genapi.DisplayNotationAutomatic
	}
}

func parseSign(s string) (genapi.Sign, error) {
	switch s {
	case "Signed":
		return genapi.Signed, nil
	case "Unsigned":
		return genapi.Unsigned, nil
	}
	return 0, fmt.Errorf("%w: bad sign %q", ErrDescription, s)
}

func parseEndianness(s string) (genapi.Endianness, error) {
	switch s {
	case "BigEndian":
		return genapi.BigEndian, nil
	case "LittleEndian":
		return genapi.LittleEndian, nil
	}
	return 0, fmt.Errorf("%w: bad endianness %q", ErrDescription, s)
}

// childTextOr returns the child's text or a default when absent.
func childTextOr(e *Element, tag, def string) string {
	if t, ok := e.ChildText(tag); ok {
		return t
	}
	return def
}
