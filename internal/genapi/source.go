package genapi

// The *Source types are the engine's indirection primitive: an
// attribute that is either an immediate literal (a typed handle into
// the ValueStore) or a pointer to another node whose live value is
// coerced at evaluation time. Almost every attribute of every node kind
// is one of these rather than a plain value.

// IntSource is an integer-valued immediate-or-pNode attribute.
type IntSource struct {
	imm   IntegerID
	pnode NodeID
	isImm bool
	valid bool
}

// ImmInt builds an immediate integer source.
func ImmInt(id IntegerID) IntSource {
	return IntSource{imm: id, pnode: NoNode, isImm: true, valid: true}
}

// PNodeInt builds a pointer-to-node integer source.
func PNodeInt(n NodeID) IntSource {
	return IntSource{pnode: n, valid: true}
}

// IsValid reports whether the attribute was declared at all.
func (s IntSource) IsValid() bool { return s.valid }

// IsImm reports whether the source is an immediate literal.
func (s IntSource) IsImm() bool { return s.isImm }

// PNode returns the referenced node for pointer sources, else NoNode.
func (s IntSource) PNode() NodeID {
	if s.isImm {
		return NoNode
	}
	return s.pnode
}

// Resolve evaluates the source to an int64.
func (s IntSource) Resolve(ev *Eval) (int64, error) {
	if s.isImm {
		return ev.Ctxt.Values.Integer(s.imm), nil
	}
	return ev.IntValueOf(s.pnode)
}

// Set writes a new value to the source: immediates update the value
// store, pointer sources write through the referenced node.
func (s IntSource) Set(ev *Eval, v int64) error {
	if s.isImm {
		ev.Ctxt.Values.SetInteger(s.imm, v)
		return nil
	}
	return ev.SetIntValueOf(s.pnode, v)
}

// FloatSource is a float-valued immediate-or-pNode attribute.
type FloatSource struct {
	imm   FloatID
	pnode NodeID
	isImm bool
	valid bool
}

// ImmFloat builds an immediate float source.
func ImmFloat(id FloatID) FloatSource {
	return FloatSource{imm: id, pnode: NoNode, isImm: true, valid: true}
}

// PNodeFloat builds a pointer-to-node float source.
func PNodeFloat(n NodeID) FloatSource {
	return FloatSource{pnode: n, valid: true}
}

// IsValid reports whether the attribute was declared at all.
func (s FloatSource) IsValid() bool { return s.valid }

// IsImm reports whether the source is an immediate literal.
func (s FloatSource) IsImm() bool { return s.isImm }

// PNode returns the referenced node for pointer sources, else NoNode.
func (s FloatSource) PNode() NodeID {
	if s.isImm {
		return NoNode
	}
	return s.pnode
}

// Resolve evaluates the source to a float64.
func (s FloatSource) Resolve(ev *Eval) (float64, error) {
	if s.isImm {
		return ev.Ctxt.Values.Float(s.imm), nil
	}
	return ev.FloatValueOf(s.pnode)
}

// Set writes a new value to the source.
func (s FloatSource) Set(ev *Eval, v float64) error {
	if s.isImm {
		ev.Ctxt.Values.SetFloat(s.imm, v)
		return nil
	}
	return ev.SetFloatValueOf(s.pnode, v)
}

// StrSource is a string-valued immediate-or-pNode attribute.
type StrSource struct {
	imm   StringID
	pnode NodeID
	isImm bool
	valid bool
}

// ImmStr builds an immediate string source.
func ImmStr(id StringID) StrSource {
	return StrSource{imm: id, pnode: NoNode, isImm: true, valid: true}
}

// PNodeStr builds a pointer-to-node string source.
func PNodeStr(n NodeID) StrSource {
	return StrSource{pnode: n, valid: true}
}

// IsValid reports whether the attribute was declared at all.
func (s StrSource) IsValid() bool { return s.valid }

// IsImm reports whether the source is an immediate literal.
func (s StrSource) IsImm() bool { return s.isImm }

// Resolve evaluates the source to a string.
func (s StrSource) Resolve(ev *Eval) (string, error) {
	if s.isImm {
		return ev.Ctxt.Values.String(s.imm), nil
	}
	return ev.StrValueOf(s.pnode)
}

// Set writes a new value to the source.
func (s StrSource) Set(ev *Eval, v string) error {
	if s.isImm {
		ev.Ctxt.Values.SetString(s.imm, v)
		return nil
	}
	return ev.SetStrValueOf(s.pnode, v)
}

// BoolSource is a boolean-valued immediate-or-pNode attribute.
type BoolSource struct {
	imm   BooleanID
	pnode NodeID
	isImm bool
	valid bool
}

// ImmBool builds an immediate boolean source.
func ImmBool(id BooleanID) BoolSource {
	return BoolSource{imm: id, pnode: NoNode, isImm: true, valid: true}
}

// PNodeBool builds a pointer-to-node boolean source.
func PNodeBool(n NodeID) BoolSource {
	return BoolSource{pnode: n, valid: true}
}

// IsValid reports whether the attribute was declared at all.
func (s BoolSource) IsValid() bool { return s.valid }

// IsImm reports whether the source is an immediate literal.
func (s BoolSource) IsImm() bool { return s.isImm }

// PNode returns the referenced node for pointer sources, else NoNode.
func (s BoolSource) PNode() NodeID {
	if s.isImm {
		return NoNode
	}
	return s.pnode
}
