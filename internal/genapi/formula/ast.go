package formula

import (
	"fmt"
	"math"
)

// Expr is a parsed formula node. Eval walks the tree against an Env.
type Expr interface {
	Eval(env Env) (Value, error)
}

// BinOp enumerates the binary operators.
type BinOp int

// Binary operators, in the source grammar's spelling.
const (
	OpAdd    BinOp = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpRem                 // %
	OpPow                 // **
	OpShl                 // <<
	OpShr                 // >>
	OpAnd                 // && (logical)
	OpOr                  // || (logical)
	OpXor                 // ^
	OpBitAnd              // &
	OpBitOr               // |
	OpEq                  // =
	OpNe                  // <>
	OpLt                  // <
	OpLe                  // <=
	OpGt                  // >
	OpGe                  // >=
)

// UnOp enumerates the unary operators and builtin functions.
type UnOp int

// Unary operators.
const (
	OpNeg   UnOp = iota // unary minus
	OpNot               // ~ (bitwise complement)
	OpSin               // SIN
	OpCos               // COS
	OpTan               // TAN
	OpAsin              // ASIN
	OpAcos              // ACOS
	OpAtan              // ATAN
	OpAbs               // ABS
	OpExp               // EXP
	OpLn                // LN
	OpLg                // LG
	OpSqrt              // SQRT
	OpTrunc             // TRUNC
	OpFloor             // FLOOR
	OpCeil              // CEIL
	OpRound             // ROUND
	OpSgn               // SGN
)

// IntLit is an integer literal.
type IntLit struct{ V int64 }

// Eval implements Expr.
func (e *IntLit) Eval(Env) (Value, error) { return Int(e.V), nil }

// FloatLit is a float literal, including INF and NaN.
type FloatLit struct{ V float64 }

// Eval implements Expr.
func (e *FloatLit) Eval(Env) (Value, error) { return Float(e.V), nil }

// Ident is a named variable resolved through the Env.
type Ident struct{ Name string }

// Eval implements Expr.
func (e *Ident) Eval(env Env) (Value, error) {
	v, err := env.Lookup(e.Name)
	if err == nil {
		return v, nil
	}
	// Builtin constants act as a fallback so descriptions may shadow
	// them with their own variables.
	switch e.Name {
	case "PI":
		return Float(math.Pi), nil
	case "E":
		return Float(math.E), nil
	}
	return Value{}, err
}

// Unary applies a unary operator or builtin function.
type Unary struct {
	Op UnOp
	X  Expr
}

// Eval implements Expr.
func (e *Unary) Eval(env Env) (Value, error) {
	x, err := e.X.Eval(env)
	if err != nil {
		return Value{}, err
	}
	return evalUnary(e.Op, x)
}

// Binary applies a binary operator. Logical && and || short-circuit.
type Binary struct {
	Op BinOp
	X  Expr
	Y  Expr
}

// Eval implements Expr.
func (e *Binary) Eval(env Env) (Value, error) {
	x, err := e.X.Eval(env)
	if err != nil {
		return Value{}, err
	}

	// Short-circuit before evaluating the right-hand side.
	switch e.Op {
	case OpAnd:
		if !x.truthy() {
			return Int(0), nil
		}
		y, yerr := e.Y.Eval(env)
		if yerr != nil {
			return Value{}, yerr
		}
		return boolValue(y.truthy()), nil
	case OpOr:
		if x.truthy() {
			return Int(1), nil
		}
		y, yerr := e.Y.Eval(env)
		if yerr != nil {
			return Value{}, yerr
		}
		return boolValue(y.truthy()), nil
	}

	y, err := e.Y.Eval(env)
	if err != nil {
		return Value{}, err
	}
	return evalBinary(e.Op, x, y)
}

// Ternary is the conditional operator cond ? then : else.
type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Eval implements Expr.
func (e *Ternary) Eval(env Env) (Value, error) {
	c, err := e.Cond.Eval(env)
	if err != nil {
		return Value{}, err
	}
	if c.truthy() {
		return e.Then.Eval(env)
	}
	return e.Else.Eval(env)
}

// boolValue encodes a comparison result as the grammar's 0/1 integers.
func boolValue(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// evalUnary applies op to x.
func evalUnary(op UnOp, x Value) (Value, error) {
	switch op {
	case OpNeg:
		if x.IsFloat() {
			return Float(-x.Float64()), nil
		}
		i, _ := x.Int64()
		return Int(-i), nil
	case OpNot:
		i, err := x.asInt("~")
		if err != nil {
			return Value{}, err
		}
		return Int(^i), nil
	case OpAbs:
		if x.IsFloat() {
			return Float(math.Abs(x.Float64())), nil
		}
		i, _ := x.Int64()
		if i < 0 {
			i = -i
		}
		return Int(i), nil
	case OpSgn:
		f := x.Float64()
		switch {
		case f > 0:
			return Int(1), nil
		case f < 0:
			return Int(-1), nil
		case math.IsNaN(f):
			return Float(f), nil
		default:
			return Int(0), nil
		}
	case OpSin:
		return Float(math.Sin(x.Float64())), nil
	case OpCos:
		return Float(math.Cos(x.Float64())), nil
	case OpTan:
		return Float(math.Tan(x.Float64())), nil
	case OpAsin:
		return Float(math.Asin(x.Float64())), nil
	case OpAcos:
		return Float(math.Acos(x.Float64())), nil
	case OpAtan:
		return Float(math.Atan(x.Float64())), nil
	case OpExp:
		return Float(math.Exp(x.Float64())), nil
	case OpLn:
		return Float(math.Log(x.Float64())), nil
	case OpLg:
		return Float(math.Log10(x.Float64())), nil
	case OpSqrt:
		return Float(math.Sqrt(x.Float64())), nil
	case OpTrunc:
		return Float(math.Trunc(x.Float64())), nil
	case OpFloor:
		return Float(math.Floor(x.Float64())), nil
	case OpCeil:
		return Float(math.Ceil(x.Float64())), nil
	case OpRound:
		return Float(math.Round(x.Float64())), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown unary operator %d", ErrEval, op)
	}
}

// evalBinary applies op to x and y. Integer pairs stay integral where
// the result is exact; anything else promotes to float.
func evalBinary(op BinOp, x, y Value) (Value, error) {
	bothInt := !x.IsFloat() && !y.IsFloat()

	switch op {
	case OpAdd:
		if bothInt {
			return Int(x.i + y.i), nil
		}
		return Float(x.Float64() + y.Float64()), nil

	case OpSub:
		if bothInt {
			return Int(x.i - y.i), nil
		}
		return Float(x.Float64() - y.Float64()), nil

	case OpMul:
		if bothInt {
			return Int(x.i * y.i), nil
		}
		return Float(x.Float64() * y.Float64()), nil

	case OpDiv:
		if bothInt {
			if y.i == 0 {
				return Value{}, fmt.Errorf("%w: integer division by zero", ErrEval)
			}
			if x.i%y.i == 0 {
				return Int(x.i / y.i), nil
			}
			return Float(float64(x.i) / float64(y.i)), nil
		}
		// IEEE semantics: float division by zero yields +-Inf or NaN.
		return Float(x.Float64() / y.Float64()), nil

	case OpRem:
		xi, err := x.asInt("%")
		if err != nil {
			return Value{}, err
		}
		yi, err := y.asInt("%")
		if err != nil {
			return Value{}, err
		}
		if yi == 0 {
			return Value{}, fmt.Errorf("%w: remainder by zero", ErrEval)
		}
		return Int(xi % yi), nil

	case OpPow:
		return Float(math.Pow(x.Float64(), y.Float64())), nil

	case OpShl:
		return shift(x, y, "<<", func(a int64, b uint) int64 { return a << b })

	case OpShr:
		return shift(x, y, ">>", func(a int64, b uint) int64 { return a >> b })

	case OpXor:
		return bitwise(x, y, "^", func(a, b int64) int64 { return a ^ b })

	case OpBitAnd:
		return bitwise(x, y, "&", func(a, b int64) int64 { return a & b })

	case OpBitOr:
		return bitwise(x, y, "|", func(a, b int64) int64 { return a | b })

	case OpEq:
		if bothInt {
			return boolValue(x.i == y.i), nil
		}
		return boolValue(x.Float64() == y.Float64()), nil

	case OpNe:
		if bothInt {
			return boolValue(x.i != y.i), nil
		}
		// NaN <> NaN is true, per IEEE.
		return boolValue(x.Float64() != y.Float64()), nil

	case OpLt:
		if bothInt {
			return boolValue(x.i < y.i), nil
		}
		return boolValue(x.Float64() < y.Float64()), nil

	case OpLe:
		if bothInt {
			return boolValue(x.i <= y.i), nil
		}
		return boolValue(x.Float64() <= y.Float64()), nil

	case OpGt:
		if bothInt {
			return boolValue(x.i > y.i), nil
		}
		return boolValue(x.Float64() > y.Float64()), nil

	case OpGe:
		if bothInt {
			return boolValue(x.i >= y.i), nil
		}
		return boolValue(x.Float64() >= y.Float64()), nil

	default:
		return Value{}, fmt.Errorf("%w: unknown binary operator %d", ErrEval, op)
	}
}

// shift applies a shift operator after integer coercion.
func shift(x, y Value, name string, fn func(int64, uint) int64) (Value, error) {
	xi, err := x.asInt(name)
	if err != nil {
		return Value{}, err
	}
	yi, err := y.asInt(name)
	if err != nil {
		return Value{}, err
	}
	if yi < 0 || yi > 63 {
		return Value{}, fmt.Errorf("%w: shift count %d out of range", ErrEval, yi)
	}
	return Int(fn(xi, uint(yi))), nil
}

// bitwise applies a bitwise operator after integer coercion.
func bitwise(x, y Value, name string, fn func(int64, int64) int64) (Value, error) {
	xi, err := x.asInt(name)
	if err != nil {
		return Value{}, err
	}
	yi, err := y.asInt(name)
	if err != nil {
		return Value{}, err
	}
	return Int(fn(xi, yi)), nil
}
