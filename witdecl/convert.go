package witdecl

import (
	"reflect"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
	"github.com/wippyai/typedesc/internal/layout"
)

// Unit is the descriptor of an absent payload: a primitive with no size.
var Unit = descriptor.PrimitiveOf[struct{}]()

var (
	discTypes = map[uintptr]reflect.Type{
		1: reflect.TypeFor[uint8](),
		2: reflect.TypeFor[uint16](),
		4: reflect.TypeFor[uint32](),
	}
	flagTypes = []reflect.Type{
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
	}
)

// Converter maps WIT types to descriptors whose representations follow the
// Canonical ABI. Typedefs are converted once and cached. A Converter is not
// safe for concurrent use.
type Converter struct {
	cache map[*wit.TypeDef]descriptor.Descriptor
	slice descriptor.Descriptor
}

func NewConverter() *Converter {
	return &Converter{
		cache: make(map[*wit.TypeDef]descriptor.Descriptor),
	}
}

// Convert maps t with a fresh converter.
func Convert(t wit.Type) (descriptor.Descriptor, error) {
	return NewConverter().Convert(t)
}

// ConvertName maps a primitive WIT type name such as "u32" or "string".
func ConvertName(name string) (descriptor.Descriptor, error) {
	t, err := wit.ParseType(name)
	if err != nil {
		return nil, errors.ParseFailed("WIT type "+strconv.Quote(name), err)
	}
	return Convert(t)
}

func (c *Converter) Convert(t wit.Type) (descriptor.Descriptor, error) {
	return c.convert(t, nil)
}

func (c *Converter) convert(t wit.Type, path []string) (descriptor.Descriptor, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return descriptor.Of[bool](), nil
	case wit.U8:
		return descriptor.Of[uint8](), nil
	case wit.S8:
		return descriptor.Of[int8](), nil
	case wit.U16:
		return descriptor.Of[uint16](), nil
	case wit.S16:
		return descriptor.Of[int16](), nil
	case wit.U32:
		return descriptor.Of[uint32](), nil
	case wit.S32:
		return descriptor.Of[int32](), nil
	case wit.U64:
		return descriptor.Of[uint64](), nil
	case wit.S64:
		return descriptor.Of[int64](), nil
	case wit.F32:
		return descriptor.Of[float32](), nil
	case wit.F64:
		return descriptor.Of[float64](), nil
	case wit.Char:
		return descriptor.Of[rune](), nil
	case wit.String:
		return c.sliceHeader(), nil
	case *wit.TypeDef:
		return c.convertTypeDef(typ, path)
	}
	return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type: %T", t).
		Build()
}

func (c *Converter) convertTypeDef(t *wit.TypeDef, path []string) (descriptor.Descriptor, error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	name := typeName(t)
	var (
		d   descriptor.Descriptor
		err error
	)
	switch kind := t.Kind.(type) {
	case *wit.Record:
		members := make([]member, len(kind.Fields))
		for i, f := range kind.Fields {
			members[i] = member{name: f.Name, t: f.Type}
		}
		d, err = c.structure(name, members, path)
	case *wit.Tuple:
		members := make([]member, len(kind.Types))
		for i, elem := range kind.Types {
			members[i] = member{name: strconv.Itoa(i), t: elem}
		}
		d, err = c.structure(name, members, path)
	case *wit.List:
		if _, err = c.convert(kind.Type, child(path, "list")); err == nil {
			d = c.sliceHeader()
		}
	case *wit.Enum:
		d = enumeration(name, kind)
	case *wit.Flags:
		d = flags(len(kind.Flags))
	case *wit.Option:
		d, err = c.variant([]wit.Type{nil, kind.Type}, path)
	case *wit.Result:
		d, err = c.variant([]wit.Type{kind.OK, kind.Err}, path)
	case *wit.Variant:
		cases := make([]wit.Type, len(kind.Cases))
		for i, cs := range kind.Cases {
			cases[i] = cs.Type
		}
		d, err = c.variant(cases, path)
	case *wit.Own, *wit.Borrow:
		d = descriptor.Of[uint32]()
	case wit.Type:
		d, err = c.convert(kind, path)
	default:
		err = errors.New(errors.PhaseResolve, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT typedef kind: %T", t.Kind).
			Build()
	}
	if err != nil {
		return nil, err
	}

	c.cache[t] = d
	debugf("converted %s: %s", name, d)
	return d, nil
}

// sliceHeader is the {ptr, len} pair strings and lists lower to.
func (c *Converter) sliceHeader() descriptor.Descriptor {
	if c.slice != nil {
		return c.slice
	}
	u32 := reflect.TypeFor[uint32]()
	b := layout.NewStructBuilder()
	b.Add("ptr", u32, 0)
	b.Add("len", u32, 0)
	repr, _ := b.Build()
	c.slice = descriptor.NewStructure(repr, "slice", nil,
		descriptor.NewField("ptr", u32),
		descriptor.NewField("len", u32),
	)
	return c.slice
}

type member struct {
	t    wit.Type
	name string
}

func (c *Converter) structure(name string, members []member, path []string) (descriptor.Descriptor, error) {
	b := layout.NewStructBuilder()
	fields := make([]descriptor.Field, len(members))
	for i, m := range members {
		d, err := c.convert(m.t, child(path, m.name))
		if err != nil {
			return nil, err
		}
		repr, err := descriptor.Representation(d)
		if err != nil {
			return nil, err
		}
		align, err := descriptor.AlignOf(d)
		if err != nil {
			return nil, err
		}
		b.Add(m.name, repr, align)
		fields[i] = descriptor.NewField(m.name, d)
	}
	repr, info := b.Build()
	var d descriptor.Descriptor = descriptor.NewStructure(repr, name, nil, fields...)
	if info.Align > uintptr(repr.Align()) {
		d = descriptor.AlignedTo(info.Align, d)
	}
	return d, nil
}

func enumeration(name string, e *wit.Enum) descriptor.Descriptor {
	repr := discTypes[abi.DiscriminantSize(len(e.Cases))]
	opts := make([]descriptor.Option, len(e.Cases))
	for i, cs := range e.Cases {
		opts[i] = descriptor.NewOption(cs.Name)
	}
	return descriptor.NewEnumeration(repr, name, repr, opts...)
}

// flags packs up to 64 flags into the smallest unsigned integer; wider sets
// use consecutive u32 words.
func flags(n int) descriptor.Descriptor {
	switch {
	case n == 0:
		return Unit
	case n <= 64:
		for i, t := range flagTypes {
			if n <= 8<<i {
				return descriptor.Canonical(t)
			}
		}
	}
	return descriptor.StaticArrayOf(reflect.TypeFor[uint32](), (n+31)/32)
}

// variant lowers a tagged union: a discriminant followed by a payload slot
// large enough for every case. The discriminant selects the candidate.
func (c *Converter) variant(cases []wit.Type, path []string) (descriptor.Descriptor, error) {
	if len(cases) == 0 {
		return Unit, nil
	}

	cands := make([]any, len(cases))
	var size, align uintptr = 0, 1
	for i, t := range cases {
		if t == nil {
			cands[i] = Unit
			continue
		}
		d, err := c.convert(t, child(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		s, err := descriptor.SizeOf(d)
		if err != nil {
			return nil, err
		}
		a, err := descriptor.AlignOf(d)
		if err != nil {
			return nil, err
		}
		size, align = max(size, s), max(align, a)
		cands[i] = d
	}

	payload, ok := layout.Blob(size, align)
	if !ok {
		return nil, errors.Overflow(errors.PhaseRepresent, path, size, "variant payload")
	}
	b := layout.NewStructBuilder()
	b.Add("disc", discTypes[abi.DiscriminantSize(len(cases))], 0)
	b.Add("payload", payload, align)
	base, info := b.Build()

	return descriptor.NewDynamicVariantSelf(base, descriptor.FieldCount(base, info.FieldNames["disc"]), cands...), nil
}

func typeName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	switch t.Kind.(type) {
	case *wit.Record:
		return "record"
	case *wit.Tuple:
		return "tuple"
	case *wit.Enum:
		return "enum"
	}
	return ""
}

func child(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
