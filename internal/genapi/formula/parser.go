package formula

import (
	"fmt"
	"math"
)

// Parse compiles a formula string into an evaluable expression tree.
// Parsing and evaluation are separate so compiled formulas can be
// cached and re-evaluated against changing variable environments.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		t := p.peek()
		return nil, fmt.Errorf("%w: trailing input %q at offset %d", ErrSyntax, t.text, t.pos)
	}
	return e, nil
}

// MustParse is Parse for formulas known valid at compile time, such
// as literals in tests. It panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// unaryFuncs maps function-call identifiers to their operators.
var unaryFuncs = map[string]UnOp{
	"SIN":   OpSin,
	"COS":   OpCos,
	"TAN":   OpTan,
	"ASIN":  OpAsin,
	"ACOS":  OpAcos,
	"ATAN":  OpAtan,
	"EXP":   OpExp,
	"LN":    OpLn,
	"LG":    OpLg,
	"SQRT":  OpSqrt,
	"TRUNC": OpTrunc,
	"FLOOR": OpFloor,
	"CEIL":  OpCeil,
	"ROUND": OpRound,
	"ABS":   OpAbs,
	"SGN":   OpSgn,
}

// parser is a recursive-descent parser over the token stream. Each
// method handles one precedence level and calls the next-tighter one.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) at(k tokenKind) bool { return p.toks[p.pos].kind == k }

// atOp reports whether the current token is the given operator.
func (p *parser) atOp(text string) bool {
	t := p.toks[p.pos]
	return t.kind == tokOp && t.text == text
}

// acceptOp consumes the operator if present.
func (p *parser) acceptOp(text string) bool {
	if p.atOp(text) {
		p.pos++
		return true
	}
	return false
}

// expectOp consumes the operator or fails.
func (p *parser) expectOp(text string) error {
	if p.acceptOp(text) {
		return nil
	}
	t := p.peek()
	return fmt.Errorf("%w: expected %q at offset %d", ErrSyntax, text, t.pos)
}

// ternary = logicalOr [ "?" ternary ":" ternary ]
func (p *parser) ternary() (Expr, error) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if !p.acceptOp("?") {
		return cond, nil
	}
	then, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &Ternary{Cond: cond, Then: then, Else: els}, nil
}

// binaryLevel parses a left-associative run of the given operators
// over the next-tighter level.
func (p *parser) binaryLevel(next func() (Expr, error), ops map[string]BinOp) (Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return lhs, nil
		}
		op, ok := ops[t.text]
		if !ok {
			return lhs, nil
		}
		p.pos++
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &Binary{Op: op, X: lhs, Y: rhs}
	}
}

func (p *parser) logicalOr() (Expr, error) {
	return p.binaryLevel(p.logicalAnd, map[string]BinOp{"||": OpOr})
}

func (p *parser) logicalAnd() (Expr, error) {
	return p.binaryLevel(p.bitOr, map[string]BinOp{"&&": OpAnd})
}

func (p *parser) bitOr() (Expr, error) {
	return p.binaryLevel(p.bitXor, map[string]BinOp{"|": OpBitOr})
}

func (p *parser) bitXor() (Expr, error) {
	return p.binaryLevel(p.bitAnd, map[string]BinOp{"^": OpXor})
}

func (p *parser) bitAnd() (Expr, error) {
	return p.binaryLevel(p.equality, map[string]BinOp{"&": OpBitAnd})
}

func (p *parser) equality() (Expr, error) {
	return p.binaryLevel(p.relational, map[string]BinOp{"=": OpEq, "<>": OpNe})
}

func (p *parser) relational() (Expr, error) {
	return p.binaryLevel(p.shift, map[string]BinOp{
		"<": OpLt, ">": OpGt, "<=": OpLe, ">=": OpGe,
	})
}

func (p *parser) shift() (Expr, error) {
	return p.binaryLevel(p.additive, map[string]BinOp{"<<": OpShl, ">>": OpShr})
}

func (p *parser) additive() (Expr, error) {
	return p.binaryLevel(p.multiplicative, map[string]BinOp{"+": OpAdd, "-": OpSub})
}

func (p *parser) multiplicative() (Expr, error) {
	return p.binaryLevel(p.power, map[string]BinOp{"*": OpMul, "/": OpDiv, "%": OpRem})
}

// power = unary [ "**" power ]   (right-associative)
func (p *parser) power() (Expr, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}
	if !p.acceptOp("**") {
		return base, nil
	}
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: OpPow, X: base, Y: exp}, nil
}

// unary = ("-" | "~") unary | primary
func (p *parser) unary() (Expr, error) {
	if p.acceptOp("-") {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNeg, X: x}, nil
	}
	if p.acceptOp("~") {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNot, X: x}, nil
	}
	return p.primary()
}

// primary = number | "INF" | "NAN" | func "(" ternary ")"
//         | identifier | "(" ternary ")"
func (p *parser) primary() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.pos++
		return &IntLit{V: t.i}, nil

	case tokFloat:
		p.pos++
		return &FloatLit{V: t.f}, nil

	case tokIdent:
		p.pos++
		switch t.text {
		case "INF":
			return &FloatLit{V: math.Inf(1)}, nil
		case "NAN":
			return &FloatLit{V: math.NaN()}, nil
		}
		if op, ok := unaryFuncs[t.text]; ok && p.atOp("(") {
			p.pos++
			arg, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &Unary{Op: op, X: arg}, nil
		}
		return &Ident{Name: t.text}, nil

	case tokOp:
		if t.text == "(" {
			p.pos++
			e, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected token %q at offset %d", ErrSyntax, t.text, t.pos)
}
