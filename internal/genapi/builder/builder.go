package builder

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/genvis/genvis-core/internal/genapi"
	"github.com/genvis/genvis-core/internal/genapi/formula"
)

// ErrDescription marks a malformed or unsupported node description.
var ErrDescription = errors.New("builder: invalid description")

// Build consumes a parsed description tree and populates fresh node
// and value stores. Children of the root are processed in document
// order; name references resolve lazily, so a node may reference one
// declared later. After the whole document is processed every
// referenced name must have been declared.
func Build(root *Element) (*genapi.NodeStore, *genapi.ValueStore, error) {
	b := &builder{
		nodes:  genapi.NewNodeStore(),
		values: genapi.NewValueStore(),
	}
	for _, el := range root.Children {
		if err := b.buildNode(el); err != nil {
			return nil, nil, err
		}
	}
	if err := b.checkResolved(); err != nil {
		return nil, nil, err
	}
	return b.nodes, b.values, nil
}

// BuildXML parses an XML description and builds the stores from it.
func BuildXML(r io.Reader) (*genapi.NodeStore, *genapi.ValueStore, error) {
	root, err := ParseXML(r)
	if err != nil {
		return nil, nil, err
	}
	return Build(root)
}

type builder struct {
	nodes  *genapi.NodeStore
	values *genapi.ValueStore

	// synth numbers the synthetic names given to inline address
	// formulas, which the schema allows to be anonymous.
	synth int
}

// ref interns a referenced node name.
func (b *builder) ref(name string) genapi.NodeID {
	return b.nodes.GetOrIntern(name)
}

// buildNode dispatches one description element by its tag.
func (b *builder) buildNode(el *Element) error {
	name := el.Attr("Name")
	if name == "" {
		return fmt.Errorf("%w: <%s> element with no Name attribute", ErrDescription, el.Tag)
	}
	id := b.nodes.GetOrIntern(name)
	attrs := genapi.NodeAttributeBase{
		ID:            id,
		Name:          name,
		NameSpace:     parseNameSpace(el.Attr("NameSpace")),
		MergePriority: parseMergePriority(el.Attr("MergePriority")),
	}

	var (
		data genapi.NodeData
		err  error
	)
	switch el.Tag {
	case "Node":
		data, err = b.buildPlain(el, attrs)
	case "Category":
		data, err = b.buildCategory(el, attrs)
	case "Integer":
		data, err = b.buildInteger(el, attrs)
	case "Float":
		data, err = b.buildFloat(el, attrs)
	case "Boolean":
		data, err = b.buildBoolean(el, attrs)
	case "String":
		data, err = b.buildString(el, attrs)
	case "Command":
		data, err = b.buildCommand(el, attrs)
	case "Enumeration":
		data, err = b.buildEnumeration(el, attrs)
	case "Register":
		data, err = b.buildRegister(el, attrs)
	case "IntReg":
		data, err = b.buildIntReg(el, attrs)
	case "MaskedIntReg":
		data, err = b.buildMaskedIntReg(el, attrs)
	case "FloatReg":
		data, err = b.buildFloatReg(el, attrs)
	case "StringReg":
		data, err = b.buildStringReg(el, attrs)
	case "SwissKnife":
		data, err = b.buildSwissKnife(el, attrs)
	case "IntSwissKnife":
		data, err = b.buildIntSwissKnife(el, attrs)
	case "Converter":
		data, err = b.buildConverter(el, attrs)
	case "IntConverter":
		data, err = b.buildIntConverter(el, attrs)
	case "Port":
		data, err = b.buildPort(el, attrs)
	default:
		return fmt.Errorf("%w: unsupported element <%s> (node %q)", ErrDescription, el.Tag, name)
	}
	if err != nil {
		return fmt.Errorf("node %q: %w", name, err)
	}

	b.nodes.StoreNode(id, data)
	return nil
}

// checkResolved fails when a name was referenced but never declared.
func (b *builder) checkResolved() error {
	var missing string
	for i := 0; i < b.nodes.Len(); i++ {
		if _, ok := b.nodes.NodeOpt(genapi.NodeID(i)); !ok {
			missing = b.nodes.Name(genapi.NodeID(i))
			break
		}
	}
	if missing != "" {
		return fmt.Errorf("%w: node %q is referenced but never declared", ErrDescription, missing)
	}
	return nil
}

// ─── Common elements ───────────────────────────────────────────────

// common parses the child elements shared by every node kind into the
// element base, and records explicit invalidator edges. Unknown tags
// are left for the kind-specific parser.
func (b *builder) common(el *Element, id genapi.NodeID, base *genapi.NodeElementBase) error {
	for _, c := range el.Children {
		switch c.Tag {
		case "ToolTip":
			base.ToolTip = c.Text
		case "Description":
			base.Description = c.Text
		case "DisplayName":
			base.DisplayName = c.Text
		case "Visibility":
			base.Visibility = parseVisibility(c.Text)
		case "DocuURL":
			base.DocuURL = c.Text
		case "IsDeprecated":
			v, err := parseBool(c.Text)
			if err != nil {
				return err
			}
			base.IsDeprecated = v
		case "EventID":
			base.EventID = c.Text
		case "pIsImplemented":
			base.PIsImplemented = b.ref(c.Text)
		case "pIsAvailable":
			base.PIsAvailable = b.ref(c.Text)
		case "pIsLocked":
			base.PIsLocked = b.ref(c.Text)
		case "pBlockPolling":
			base.PBlockPolling = b.ref(c.Text)
		case "ImposedAccessMode":
			m, err := parseAccessMode(c.Text)
			if err != nil {
				return err
			}
			base.ImposedAccessMode = m
		case "pError":
			base.PErrors = append(base.PErrors, b.ref(c.Text))
		case "pAlias":
			base.PAlias = b.ref(c.Text)
		case "pCastAlias":
			base.PCastAlias = b.ref(c.Text)
		case "pInvalidator":
			// Writing the named node drops this node's cache.
			b.nodes.AddInvalidator(b.ref(c.Text), id)
		}
	}
	return nil
}

// ─── Source helpers ────────────────────────────────────────────────

// intSource parses an imm/ptr element pair into an IntSource. The
// zero (invalid) source means neither was declared.
func (b *builder) intSource(el *Element, imm, ptr string) (genapi.IntSource, error) {
	if c := el.Child(imm); c != nil {
		v, err := parseInt(c.Text)
		if err != nil {
			return genapi.IntSource{}, err
		}
		return genapi.ImmInt(b.values.StoreInteger(v)), nil
	}
	if c := el.Child(ptr); c != nil {
		return genapi.PNodeInt(b.ref(c.Text)), nil
	}
	return genapi.IntSource{}, nil
}

func (b *builder) floatSource(el *Element, imm, ptr string) (genapi.FloatSource, error) {
	if c := el.Child(imm); c != nil {
		v, err := parseFloat(c.Text)
		if err != nil {
			return genapi.FloatSource{}, err
		}
		return genapi.ImmFloat(b.values.StoreFloat(v)), nil
	}
	if c := el.Child(ptr); c != nil {
		return genapi.PNodeFloat(b.ref(c.Text)), nil
	}
	return genapi.FloatSource{}, nil
}

func (b *builder) strSource(el *Element, imm, ptr string) genapi.StrSource {
	if c := el.Child(imm); c != nil {
		return genapi.ImmStr(b.values.StoreString(c.Text))
	}
	if c := el.Child(ptr); c != nil {
		return genapi.PNodeStr(b.ref(c.Text))
	}
	return genapi.StrSource{}
}

func (b *builder) boolSource(el *Element, imm, ptr string) (genapi.BoolSource, error) {
	if c := el.Child(imm); c != nil {
		v, err := parseBool(c.Text)
		if err != nil {
			return genapi.BoolSource{}, err
		}
		return genapi.ImmBool(b.values.StoreBoolean(v)), nil
	}
	if c := el.Child(ptr); c != nil {
		return genapi.PNodeBool(b.ref(c.Text)), nil
	}
	return genapi.BoolSource{}, nil
}

// ─── Plain kinds ───────────────────────────────────────────────────

func (b *builder) buildPlain(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewPlainNode(attrs)
	return n, b.common(el, attrs.ID, &n.Base)
}

func (b *builder) buildCategory(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewCategoryNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	for _, c := range el.Children {
		if c.Tag == "pFeature" {
			n.PFeatures = append(n.PFeatures, b.ref(c.Text))
		}
	}
	return n, nil
}

func (b *builder) buildInteger(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewIntegerNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.ValueSrc, err = b.intSource(el, "Value", "pValue"); err != nil {
		return nil, err
	}
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: Integer needs Value or pValue", ErrDescription)
	}
	if n.MinSrc, err = b.intSource(el, "Min", "pMin"); err != nil {
		return nil, err
	}
	if n.MaxSrc, err = b.intSource(el, "Max", "pMax"); err != nil {
		return nil, err
	}
	if n.IncSrc, err = b.intSource(el, "Inc", "pInc"); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	for _, c := range el.Children {
		switch c.Tag {
		case "pValueCopy":
			n.PValueCopies = append(n.PValueCopies, b.ref(c.Text))
		case "pSelected":
			n.PSelected = append(n.PSelected, b.ref(c.Text))
		case "ValidValueSet", "pValidValueSet":
			n.HasValidValueSet = true
		}
	}
	return n, nil
}

func (b *builder) buildFloat(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewFloatNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.ValueSrc, err = b.floatSource(el, "Value", "pValue"); err != nil {
		return nil, err
	}
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: Float needs Value or pValue", ErrDescription)
	}
	if n.MinSrc, err = b.floatSource(el, "Min", "pMin"); err != nil {
		return nil, err
	}
	if n.MaxSrc, err = b.floatSource(el, "Max", "pMax"); err != nil {
		return nil, err
	}
	if n.IncSrc, err = b.floatSource(el, "Inc", "pInc"); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	n.Notation = parseNotation(childTextOr(el, "DisplayNotation", ""))
	if t, ok := el.ChildText("DisplayPrecision"); ok {
		p, perr := parseInt(t)
		if perr != nil {
			return nil, perr
		}
		n.Precision = p
	}
	for _, c := range el.Children {
		switch c.Tag {
		case "pValueCopy":
			n.PValueCopies = append(n.PValueCopies, b.ref(c.Text))
		case "pSelected":
			n.PSelected = append(n.PSelected, b.ref(c.Text))
		}
	}
	return n, nil
}

func (b *builder) buildBoolean(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewBooleanNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.ValueSrc, err = b.boolSource(el, "Value", "pValue"); err != nil {
		return nil, err
	}
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: Boolean needs Value or pValue", ErrDescription)
	}
	if t, ok := el.ChildText("OnValue"); ok {
		if n.OnValue, err = parseInt(t); err != nil {
			return nil, err
		}
	}
	if t, ok := el.ChildText("OffValue"); ok {
		if n.OffValue, err = parseInt(t); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (b *builder) buildString(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewStringNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	n.ValueSrc = b.strSource(el, "Value", "pValue")
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: String needs Value or pValue", ErrDescription)
	}
	return n, nil
}

func (b *builder) buildCommand(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewCommandNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.ValueSrc, err = b.intSource(el, "Value", "pValue"); err != nil {
		return nil, err
	}
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: Command needs Value or pValue", ErrDescription)
	}
	if n.CommandValueSrc, err = b.intSource(el, "CommandValue", "pCommandValue"); err != nil {
		return nil, err
	}
	for _, c := range el.Children {
		if c.Tag == "pSelected" {
			n.PSelected = append(n.PSelected, b.ref(c.Text))
		}
	}
	return n, nil
}

func (b *builder) buildEnumeration(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewEnumerationNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.ValueSrc, err = b.intSource(el, "Value", "pValue"); err != nil {
		return nil, err
	}
	if !n.ValueSrc.IsValid() {
		return nil, fmt.Errorf("%w: Enumeration needs Value or pValue", ErrDescription)
	}
	n.UnitStr, _ = el.ChildText("Unit")

	for _, c := range el.Children {
		switch c.Tag {
		case "EnumEntry":
			e, eerr := b.buildEnumEntry(c)
			if eerr != nil {
				return nil, eerr
			}
			n.EntryList = append(n.EntryList, e)
		case "pSelected":
			n.PSelected = append(n.PSelected, b.ref(c.Text))
		}
	}
	if len(n.EntryList) == 0 {
		return nil, fmt.Errorf("%w: Enumeration has no EnumEntry", ErrDescription)
	}
	return n, nil
}

func (b *builder) buildEnumEntry(el *Element) (*genapi.EnumEntry, error) {
	name := el.Attr("Name")
	if name == "" {
		return nil, fmt.Errorf("%w: EnumEntry with no Name attribute", ErrDescription)
	}
	t, ok := el.ChildText("Value")
	if !ok {
		return nil, fmt.Errorf("%w: EnumEntry %q has no Value", ErrDescription, name)
	}
	v, err := parseInt(t)
	if err != nil {
		return nil, err
	}
	e := &genapi.EnumEntry{Name: name, Value: v, NumericValue: float64(v)}
	if nt, ok := el.ChildText("NumericValue"); ok {
		if e.NumericValue, err = parseFloat(nt); err != nil {
			return nil, err
		}
	}
	if st, ok := el.ChildText("IsSelfClearing"); ok {
		if e.IsSelfClearing, err = parseBool(st); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (b *builder) buildPort(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewPortNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	n.ChunkID, _ = el.ChildText("ChunkID")
	if t, ok := el.ChildText("SwapEndianess"); ok {
		v, err := parseBool(t)
		if err != nil {
			return nil, err
		}
		n.SwapEndianness = v
	}
	return n, nil
}

// ─── Register kinds ────────────────────────────────────────────────

func (b *builder) buildRegister(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewRegisterNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	return n, b.registerBase(el, attrs, &n.Reg)
}

func (b *builder) buildIntReg(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewIntRegNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	if err := b.registerBase(el, attrs, &n.Reg); err != nil {
		return nil, err
	}
	var err error
	if n.Signedness, err = parseSign(childTextOr(el, "Sign", "Unsigned")); err != nil {
		return nil, err
	}
	if n.Endian, err = parseEndianness(childTextOr(el, "Endianess", "BigEndian")); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	for _, c := range el.Children {
		if c.Tag == "pSelected" {
			n.PSelected = append(n.PSelected, b.ref(c.Text))
		}
	}
	return n, nil
}

func (b *builder) buildMaskedIntReg(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewMaskedIntRegNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	if err := b.registerBase(el, attrs, &n.Reg); err != nil {
		return nil, err
	}

	switch {
	case el.Child("Bit") != nil:
		t, _ := el.ChildText("Bit")
		bit, err := parseInt(t)
		if err != nil {
			return nil, err
		}
		if err := checkBitIndex(bit, "Bit"); err != nil {
			return nil, err
		}
		n.Mask = genapi.SingleBitMask(uint8(bit))
	case el.Child("LSB") != nil && el.Child("MSB") != nil:
		lt, _ := el.ChildText("LSB")
		mt, _ := el.ChildText("MSB")
		lsb, err := parseInt(lt)
		if err != nil {
			return nil, err
		}
		msb, err := parseInt(mt)
		if err != nil {
			return nil, err
		}
		if err := checkBitIndex(lsb, "LSB"); err != nil {
			return nil, err
		}
		if err := checkBitIndex(msb, "MSB"); err != nil {
			return nil, err
		}
		if msb < lsb {
			return nil, fmt.Errorf("%w: MSB %d below LSB %d", ErrDescription, msb, lsb)
		}
		n.Mask = genapi.RangeMask(uint8(lsb), uint8(msb))
	default:
		return nil, fmt.Errorf("%w: MaskedIntReg needs Bit or LSB+MSB", ErrDescription)
	}

	var err error
	if n.Signedness, err = parseSign(childTextOr(el, "Sign", "Unsigned")); err != nil {
		return nil, err
	}
	if n.Endian, err = parseEndianness(childTextOr(el, "Endianess", "BigEndian")); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	return n, nil
}

// checkBitIndex bounds a mask bit position to the widest integer
// register (8 bytes, bits 0..63).
func checkBitIndex(bit int64, tag string) error {
	if bit < 0 || bit > 63 {
		return fmt.Errorf("%w: %s %d out of range 0..63", ErrDescription, tag, bit)
	}
	return nil
}

func (b *builder) buildFloatReg(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewFloatRegNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	if err := b.registerBase(el, attrs, &n.Reg); err != nil {
		return nil, err
	}
	var err error
	if n.Endian, err = parseEndianness(childTextOr(el, "Endianess", "BigEndian")); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	n.Notation = parseNotation(childTextOr(el, "DisplayNotation", ""))
	if t, ok := el.ChildText("DisplayPrecision"); ok {
		p, perr := parseInt(t)
		if perr != nil {
			return nil, perr
		}
		n.Precision = p
	}
	return n, nil
}

func (b *builder) buildStringReg(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewStringRegNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	return n, b.registerBase(el, attrs, &n.Reg)
}

// registerBase parses the elements shared by every register-backed
// kind, recording implicit invalidator edges: a write to any node the
// address or length depends on must drop this register's cache.
func (b *builder) registerBase(el *Element, attrs genapi.NodeAttributeBase, reg *genapi.RegisterBase) error {
	id := attrs.ID
	for _, c := range el.Children {
		switch c.Tag {
		case "Address":
			v, err := parseInt(c.Text)
			if err != nil {
				return err
			}
			reg.AddressEntries = append(reg.AddressEntries, genapi.AddressEntry{
				Kind:  genapi.AddrValue,
				Value: genapi.ImmInt(b.values.StoreInteger(v)),
			})

		case "pAddress":
			dep := b.ref(c.Text)
			reg.AddressEntries = append(reg.AddressEntries, genapi.AddressEntry{
				Kind:  genapi.AddrValue,
				Value: genapi.PNodeInt(dep),
			})
			b.nodes.AddInvalidator(dep, id)

		case "IntSwissKnife":
			skID, err := b.inlineSwissKnife(c, attrs.Name, id)
			if err != nil {
				return err
			}
			reg.AddressEntries = append(reg.AddressEntries, genapi.AddressEntry{
				Kind:        genapi.AddrIntSwissKnife,
				PSwissKnife: skID,
			})

		case "pIndex":
			entry, err := b.indexEntry(c, id)
			if err != nil {
				return err
			}
			reg.AddressEntries = append(reg.AddressEntries, entry)

		case "Length":
			v, err := parseInt(c.Text)
			if err != nil {
				return err
			}
			reg.Length = genapi.ImmInt(b.values.StoreInteger(v))

		case "pLength":
			dep := b.ref(c.Text)
			reg.Length = genapi.PNodeInt(dep)
			b.nodes.AddInvalidator(dep, id)

		case "AccessMode":
			m, err := parseAccessMode(c.Text)
			if err != nil {
				return err
			}
			reg.AccessMode = m

		case "pPort":
			reg.PPort = b.ref(c.Text)

		case "Cachable":
			m, err := parseCachingMode(c.Text)
			if err != nil {
				return err
			}
			reg.Cacheable = m

		case "PollingTime":
			ms, err := parseInt(c.Text)
			if err != nil {
				return err
			}
			reg.PollingTime = time.Duration(ms) * time.Millisecond

		case "pInvalidator":
			// Already recorded as a graph edge by common; registers also
			// keep the list for introspection.
			reg.PInvalidators = append(reg.PInvalidators, b.ref(c.Text))
		}
	}

	if len(reg.AddressEntries) == 0 {
		return fmt.Errorf("%w: register has no address", ErrDescription)
	}
	if !reg.Length.IsValid() {
		return fmt.Errorf("%w: register has no length", ErrDescription)
	}
	if !reg.PPort.IsValid() {
		return fmt.Errorf("%w: register has no pPort", ErrDescription)
	}
	return nil
}

// inlineSwissKnife builds an anonymous IntSwissKnife embedded in an
// address list as a real stored node with a synthetic name, so address
// evaluation reuses the normal node path. Its variables become
// invalidator edges of the enclosing register.
func (b *builder) inlineSwissKnife(el *Element, regName string, regID genapi.NodeID) (genapi.NodeID, error) {
	name := el.Attr("Name")
	if name == "" {
		b.synth++
		name = fmt.Sprintf("_%s_AddrFormula%d", regName, b.synth)
	}
	id := b.nodes.GetOrIntern(name)

	attrs := genapi.NodeAttributeBase{ID: id, Name: name}
	n := genapi.NewIntSwissKnifeNode(attrs)
	if err := b.common(el, id, &n.Base); err != nil {
		return genapi.NoNode, err
	}
	ft, ok := el.ChildText("Formula")
	if !ok {
		return genapi.NoNode, fmt.Errorf("%w: IntSwissKnife %q has no Formula", ErrDescription, name)
	}
	expr, err := formula.Parse(ft)
	if err != nil {
		return genapi.NoNode, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	n.Formula = expr
	if n.Vars, err = b.formulaVars(el); err != nil {
		return genapi.NoNode, err
	}
	for _, v := range n.Vars {
		if v.Kind == genapi.VarPNode {
			b.nodes.AddInvalidator(v.PNode, regID)
		}
	}

	b.nodes.StoreNode(id, n)
	return id, nil
}

// indexEntry parses a pIndex address term. The index node and any
// offset node become invalidator edges of the register.
func (b *builder) indexEntry(el *Element, regID genapi.NodeID) (genapi.AddressEntry, error) {
	if el.Text == "" {
		return genapi.AddressEntry{}, fmt.Errorf("%w: pIndex names no node", ErrDescription)
	}
	idx := b.ref(el.Text)
	b.nodes.AddInvalidator(idx, regID)

	entry := genapi.AddressEntry{Kind: genapi.AddrPIndex, PIndex: idx}

	if t := el.Attr("Offset"); t != "" {
		v, err := parseInt(t)
		if err != nil {
			return genapi.AddressEntry{}, err
		}
		entry.Offset = genapi.ImmInt(b.values.StoreInteger(v))
	} else if t := el.Attr("pOffset"); t != "" {
		dep := b.ref(t)
		entry.Offset = genapi.PNodeInt(dep)
		b.nodes.AddInvalidator(dep, regID)
	}

	if t := el.Attr("Stride"); t != "" {
		v, err := parseInt(t)
		if err != nil {
			return genapi.AddressEntry{}, err
		}
		entry.Stride = genapi.ImmInt(b.values.StoreInteger(v))
	} else if t := el.Attr("pStride"); t != "" {
		dep := b.ref(t)
		entry.Stride = genapi.PNodeInt(dep)
		b.nodes.AddInvalidator(dep, regID)
	}

	return entry, nil
}

// ─── Formula kinds ─────────────────────────────────────────────────

func (b *builder) buildSwissKnife(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewSwissKnifeNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	ft, ok := el.ChildText("Formula")
	if !ok {
		return nil, fmt.Errorf("%w: SwissKnife has no Formula", ErrDescription)
	}
	expr, err := formula.Parse(ft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	n.Formula = expr
	if n.Vars, err = b.formulaVars(el); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	n.Notation = parseNotation(childTextOr(el, "DisplayNotation", ""))
	return n, nil
}

func (b *builder) buildIntSwissKnife(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewIntSwissKnifeNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	ft, ok := el.ChildText("Formula")
	if !ok {
		return nil, fmt.Errorf("%w: IntSwissKnife has no Formula", ErrDescription)
	}
	expr, err := formula.Parse(ft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	n.Formula = expr
	if n.Vars, err = b.formulaVars(el); err != nil {
		return nil, err
	}
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	return n, nil
}

func (b *builder) buildConverter(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewConverterNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.FormulaFrom, n.FormulaTo, err = b.converterFormulas(el); err != nil {
		return nil, err
	}
	if n.Vars, err = b.formulaVars(el); err != nil {
		return nil, err
	}
	t, ok := el.ChildText("pValue")
	if !ok {
		return nil, fmt.Errorf("%w: Converter has no pValue", ErrDescription)
	}
	n.PValue = b.ref(t)
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	n.Notation = parseNotation(childTextOr(el, "DisplayNotation", ""))
	return n, nil
}

func (b *builder) buildIntConverter(el *Element, attrs genapi.NodeAttributeBase) (genapi.NodeData, error) {
	n := genapi.NewIntConverterNode(attrs)
	if err := b.common(el, attrs.ID, &n.Base); err != nil {
		return nil, err
	}
	var err error
	if n.FormulaFrom, n.FormulaTo, err = b.converterFormulas(el); err != nil {
		return nil, err
	}
	if n.Vars, err = b.formulaVars(el); err != nil {
		return nil, err
	}
	t, ok := el.ChildText("pValue")
	if !ok {
		return nil, fmt.Errorf("%w: IntConverter has no pValue", ErrDescription)
	}
	n.PValue = b.ref(t)
	n.Rep = parseRepresentation(childTextOr(el, "Representation", ""))
	n.UnitStr, _ = el.ChildText("Unit")
	return n, nil
}

// converterFormulas parses the FormulaFrom/FormulaTo pair.
func (b *builder) converterFormulas(el *Element) (from, to formula.Expr, err error) {
	ft, ok := el.ChildText("FormulaFrom")
	if !ok {
		return nil, nil, fmt.Errorf("%w: converter has no FormulaFrom", ErrDescription)
	}
	if from, err = formula.Parse(ft); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	tt, ok := el.ChildText("FormulaTo")
	if !ok {
		return nil, nil, fmt.Errorf("%w: converter has no FormulaTo", ErrDescription)
	}
	if to, err = formula.Parse(tt); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDescription, err)
	}
	return from, to, nil
}

// formulaVars collects pVariable, Constant and Expression bindings.
// When a name is declared more than once, pVariable wins over Constant
// wins over Expression.
func (b *builder) formulaVars(el *Element) ([]genapi.FormulaVar, error) {
	byName := make(map[string]genapi.FormulaVar)
	var order []string

	add := func(v genapi.FormulaVar, rank int, ranks map[string]int) {
		prev, seen := ranks[v.Name]
		if seen && prev >= rank {
			return
		}
		if !seen {
			order = append(order, v.Name)
		}
		ranks[v.Name] = rank
		byName[v.Name] = v
	}
	ranks := make(map[string]int)

	for _, c := range el.Children {
		name := c.Attr("Name")
		switch c.Tag {
		case "Expression":
			if name == "" {
				return nil, fmt.Errorf("%w: Expression with no Name attribute", ErrDescription)
			}
			expr, err := formula.Parse(c.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDescription, err)
			}
			add(genapi.FormulaVar{Name: name, Kind: genapi.VarExpr, Expr: expr}, 1, ranks)

		case "Constant":
			if name == "" {
				return nil, fmt.Errorf("%w: Constant with no Name attribute", ErrDescription)
			}
			if i, err := strconv.ParseInt(c.Text, 0, 64); err == nil {
				add(genapi.FormulaVar{Name: name, Kind: genapi.VarConstInt, ConstI: i}, 2, ranks)
				break
			}
			f, err := parseFloat(c.Text)
			if err != nil {
				return nil, err
			}
			add(genapi.FormulaVar{Name: name, Kind: genapi.VarConstFloat, ConstF: f}, 2, ranks)

		case "pVariable":
			if name == "" {
				return nil, fmt.Errorf("%w: pVariable with no Name attribute", ErrDescription)
			}
			add(genapi.FormulaVar{Name: name, Kind: genapi.VarPNode, PNode: b.ref(c.Text)}, 3, ranks)
		}
	}

	vars := make([]genapi.FormulaVar, 0, len(order))
	for _, name := range order {
		vars = append(vars, byName[name])
	}
	return vars, nil
}
