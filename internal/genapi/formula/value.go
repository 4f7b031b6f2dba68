package formula

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for the formula package.
var (
	// ErrSyntax is returned when a formula fails to parse.
	ErrSyntax = errors.New("formula: syntax error")

	// ErrEval is returned when a formula cannot be evaluated: unknown
	// variable, integer division by zero, or a type rule violation.
	ErrEval = errors.New("formula: evaluation error")
)

// Value is the formula engine's numeric type: an int64 or a float64.
// Arithmetic keeps integers integral where the result is exact and
// promotes to float otherwise.
type Value struct {
	isFloat bool
	i       int64
	f       float64
}

// Int builds an integer value.
func Int(v int64) Value { return Value{i: v} }

// Float builds a float value.
func Float(v float64) Value { return Value{isFloat: true, f: v} }

// IsFloat reports whether the value is carried as a float.
func (v Value) IsFloat() bool { return v.isFloat }

// Float64 returns the value as a float64, converting integers exactly.
func (v Value) Float64() float64 {
	if v.isFloat {
		return v.f
	}
	return float64(v.i)
}

// Int64 returns the value as an int64, rounding floats to nearest.
// Non-finite floats cannot convert.
func (v Value) Int64() (int64, error) {
	if !v.isFloat {
		return v.i, nil
	}
	if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
		return 0, fmt.Errorf("%w: cannot convert %v to integer", ErrEval, v.f)
	}
	return int64(math.Round(v.f)), nil
}

// truthy reports the C-style truth of the value. NaN is truthy, like
// any nonzero float.
func (v Value) truthy() bool {
	if v.isFloat {
		return v.f != 0
	}
	return v.i != 0
}

// asInt converts for bitwise and shift operators, accepting floats
// only when they are exactly integral.
func (v Value) asInt(op string) (int64, error) {
	if !v.isFloat {
		return v.i, nil
	}
	if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) || math.IsNaN(v.f) {
		return 0, fmt.Errorf("%w: operator %s requires an integer, got %v", ErrEval, op, v.f)
	}
	return int64(v.f), nil
}

// String formats the value for diagnostics.
func (v Value) String() string {
	if v.isFloat {
		return fmt.Sprintf("%g", v.f)
	}
	return fmt.Sprintf("%d", v.i)
}

// Env supplies the current values of a formula's named variables.
// Lookup is called once per variable occurrence during evaluation.
type Env interface {
	Lookup(name string) (Value, error)
}

// EnvFunc adapts a function to the Env interface.
type EnvFunc func(name string) (Value, error)

// Lookup implements Env.
func (f EnvFunc) Lookup(name string) (Value, error) { return f(name) }

// MapEnv is a fixed-variable Env used by tests and constant bindings.
type MapEnv map[string]Value

// Lookup implements Env.
func (m MapEnv) Lookup(name string) (Value, error) {
	v, ok := m[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: unknown variable %q", ErrEval, name)
	}
	return v, nil
}
