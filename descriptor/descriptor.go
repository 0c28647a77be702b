package descriptor

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/wippyai/typedesc/label"
)

// Descriptor describes the logical shape of data without being the data.
// The set of descriptor kinds is closed; modifiers extend it by embedding
// Mod.
type Descriptor interface {
	Kind() Kind
	String() string
	descriptor()
}

// Field is a named slot of a structure or union.
type Field struct {
	Type Descriptor
	Name label.Label
}

// NewField resolves decl and pairs it with name.
func NewField(name string, decl any) Field {
	return Field{Name: label.New(name), Type: ResolveDecl(decl)}
}

// Option is a named enumeration value. Fixed options carry an explicit value.
type Option struct {
	Name  label.Label
	Value int64
	Fixed bool
}

func NewOption(name string) Option {
	return Option{Name: label.New(name)}
}

func FixedOption(name string, value int64) Option {
	return Option{Name: label.New(name), Value: value, Fixed: true}
}

// Primitive wraps a Go type that is stored as-is.
type Primitive struct {
	repr reflect.Type
}

// NewPrimitive returns the primitive descriptor for t. Primitives are
// interned: equal types yield the identical descriptor.
func NewPrimitive(t reflect.Type) *Primitive {
	if t == nil {
		return &Primitive{}
	}
	if p, ok := primitives.Load(t); ok {
		return p.(*Primitive)
	}
	p, _ := primitives.LoadOrStore(t, &Primitive{repr: t})
	return p.(*Primitive)
}

func PrimitiveOf[R any]() *Primitive {
	return NewPrimitive(reflect.TypeFor[R]())
}

func (p *Primitive) Kind() Kind         { return KindPrimitive }
func (p *Primitive) Repr() reflect.Type { return p.repr }
func (*Primitive) descriptor()          {}

func (p *Primitive) String() string {
	return "primitive<" + typeString(p.repr) + ">"
}

// Structure is a named record whose storage is a user-declared Go type.
// Fields describe meaning; the representation describes storage.
type Structure struct {
	repr   reflect.Type
	base   Descriptor
	name   label.Label
	fields []Field
}

// NewStructure declares a structure. base may be nil.
func NewStructure(repr reflect.Type, name string, base any, fields ...Field) *Structure {
	return &Structure{
		repr:   repr,
		name:   label.New(name),
		base:   ResolveDecl(base),
		fields: append([]Field(nil), fields...),
	}
}

func StructureOf[R any](name string, base any, fields ...Field) *Structure {
	return NewStructure(reflect.TypeFor[R](), name, base, fields...)
}

func (s *Structure) Kind() Kind         { return KindStructure }
func (s *Structure) Repr() reflect.Type { return s.repr }
func (s *Structure) Name() label.Label  { return s.name }
func (s *Structure) Base() Descriptor   { return s.base }
func (s *Structure) NumField() int      { return len(s.fields) }
func (s *Structure) Field(i int) Field  { return s.fields[i] }
func (*Structure) descriptor()          {}

// Fields returns a copy of the declared fields in order.
func (s *Structure) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// AllFields returns the fields inherited from a structure base followed by
// the structure's own fields.
func (s *Structure) AllFields() []Field {
	var out []Field
	if base, ok := Desugar(s.base).(*Structure); ok && base != nil {
		out = base.AllFields()
	}
	return append(out, s.fields...)
}

func (s *Structure) FieldByName(name string) (Field, bool) {
	return fieldByName(s.fields, name)
}

func (s *Structure) String() string {
	return "structure " + s.name.String()
}

// Union selects one of its fields from a parent value through a
// discriminator. The discriminator is stored, not interpreted.
type Union struct {
	repr   reflect.Type
	disc   Discriminator
	name   label.Label
	fields []Field
}

func NewUnion(repr reflect.Type, name string, disc Discriminator, fields ...Field) *Union {
	return &Union{
		repr:   repr,
		name:   label.New(name),
		disc:   disc,
		fields: append([]Field(nil), fields...),
	}
}

// UnionOf declares a union stored as R whose branch is chosen by fn from a
// parent P.
func UnionOf[R, P any](name string, fn func(*P) int, fields ...Field) *Union {
	return NewUnion(reflect.TypeFor[R](), name, Resolver(fn), fields...)
}

func (u *Union) Kind() Kind                   { return KindUnion }
func (u *Union) Repr() reflect.Type           { return u.repr }
func (u *Union) Name() label.Label            { return u.name }
func (u *Union) Parent() reflect.Type         { return u.disc.Parent() }
func (u *Union) Discriminator() Discriminator { return u.disc }
func (u *Union) NumField() int                { return len(u.fields) }
func (u *Union) Field(i int) Field            { return u.fields[i] }
func (*Union) descriptor()                    {}

func (u *Union) Fields() []Field {
	return append([]Field(nil), u.fields...)
}

func (u *Union) FieldByName(name string) (Field, bool) {
	return fieldByName(u.fields, name)
}

func (u *Union) String() string {
	return "union " + u.name.String()
}

// Enumeration is a set of named integer values over an underlying descriptor.
type Enumeration struct {
	repr       reflect.Type
	underlying Descriptor
	name       label.Label
	options    []Option
}

func NewEnumeration(repr reflect.Type, name string, underlying any, opts ...Option) *Enumeration {
	return &Enumeration{
		repr:       repr,
		name:       label.New(name),
		underlying: ResolveDecl(underlying),
		options:    append([]Option(nil), opts...),
	}
}

// EnumerationOf declares an enumeration stored as R. Passing the
// underlying's own Go type as R is the common case.
func EnumerationOf[R any](name string, underlying any, opts ...Option) *Enumeration {
	return NewEnumeration(reflect.TypeFor[R](), name, underlying, opts...)
}

func (e *Enumeration) Kind() Kind             { return KindEnumeration }
func (e *Enumeration) Repr() reflect.Type     { return e.repr }
func (e *Enumeration) Name() label.Label      { return e.name }
func (e *Enumeration) Underlying() Descriptor { return e.underlying }
func (*Enumeration) descriptor()              {}

func (e *Enumeration) Options() []Option {
	return append([]Option(nil), e.options...)
}

// Values assigns each option its value: fixed options keep theirs, the
// others follow the previous option by one, starting at zero.
func (e *Enumeration) Values() []int64 {
	vals := make([]int64, len(e.options))
	next := int64(0)
	for i, o := range e.options {
		v := next
		if o.Fixed {
			v = o.Value
		}
		vals[i] = v
		next = v + 1
	}
	return vals
}

func (e *Enumeration) String() string {
	return "enumeration " + e.name.String()
}

// Pointer points at a target descriptor.
type Pointer struct {
	target Descriptor
}

// PointerTo returns the pointer descriptor for decl. Pointers are interned
// by target.
func PointerTo(decl any) *Pointer {
	target := ResolveDecl(decl)
	if !internable(target) {
		return &Pointer{target: target}
	}
	if p, ok := pointers.Load(target); ok {
		return p.(*Pointer)
	}
	p, _ := pointers.LoadOrStore(target, &Pointer{target: target})
	return p.(*Pointer)
}

func (p *Pointer) Kind() Kind         { return KindPointer }
func (p *Pointer) Target() Descriptor { return p.target }
func (*Pointer) descriptor()          {}

func (p *Pointer) String() string {
	return "pointer<" + describe(p.target) + ">"
}

// StaticArray repeats an element a fixed number of times.
type StaticArray struct {
	elem   Descriptor
	length int
}

type arrayKey struct {
	elem   Descriptor
	length int
}

// StaticArrayOf returns the array descriptor of n elements of decl. Arrays
// are interned by element and length.
func StaticArrayOf(decl any, n int) *StaticArray {
	elem := ResolveDecl(decl)
	if !internable(elem) {
		return &StaticArray{elem: elem, length: n}
	}
	key := arrayKey{elem: elem, length: n}
	if a, ok := arrays.Load(key); ok {
		return a.(*StaticArray)
	}
	a, _ := arrays.LoadOrStore(key, &StaticArray{elem: elem, length: n})
	return a.(*StaticArray)
}

func (a *StaticArray) Kind() Kind       { return KindStaticArray }
func (a *StaticArray) Elem() Descriptor { return a.elem }
func (a *StaticArray) Len() int         { return a.length }
func (*StaticArray) descriptor()        {}

func (a *StaticArray) String() string {
	return "static_array<" + describe(a.elem) + ", " + strconv.Itoa(a.length) + ">"
}

// DynamicArray repeats an element a number of times read from a parent
// value at runtime. It has no compile-time size.
type DynamicArray struct {
	elem Descriptor
	disc Discriminator
}

func NewDynamicArray(decl any, count Discriminator) *DynamicArray {
	return &DynamicArray{elem: ResolveDecl(decl), disc: count}
}

// DynamicArrayOf declares an array of decl whose length fn reads from a
// parent P.
func DynamicArrayOf[P any](decl any, fn func(*P) int) *DynamicArray {
	return NewDynamicArray(decl, Resolver(fn))
}

func (a *DynamicArray) Kind() Kind                   { return KindDynamicArray }
func (a *DynamicArray) Elem() Descriptor             { return a.elem }
func (a *DynamicArray) Parent() reflect.Type         { return a.disc.Parent() }
func (a *DynamicArray) Discriminator() Discriminator { return a.disc }
func (*DynamicArray) descriptor()                    {}

func (a *DynamicArray) String() string {
	return "dynamic_array<" + describe(a.elem) + ">"
}

// DynamicVariant is stored as base; which candidate the value holds is
// chosen by a discriminator over a separate parent.
type DynamicVariant struct {
	base       reflect.Type
	disc       Discriminator
	candidates []Descriptor
}

func NewDynamicVariant(base reflect.Type, disc Discriminator, candidates ...any) *DynamicVariant {
	return &DynamicVariant{base: base, disc: disc, candidates: resolveAll(candidates)}
}

func DynamicVariantOf[B, P any](fn func(*P) int, candidates ...any) *DynamicVariant {
	return NewDynamicVariant(reflect.TypeFor[B](), Resolver(fn), candidates...)
}

func (v *DynamicVariant) Kind() Kind                   { return KindDynamicVariant }
func (v *DynamicVariant) Base() reflect.Type           { return v.base }
func (v *DynamicVariant) Parent() reflect.Type         { return v.disc.Parent() }
func (v *DynamicVariant) Discriminator() Discriminator { return v.disc }
func (*DynamicVariant) descriptor()                    {}

func (v *DynamicVariant) Candidates() []Descriptor {
	return append([]Descriptor(nil), v.candidates...)
}

func (v *DynamicVariant) String() string {
	return "dynamic_variant<" + typeString(v.base) + ">"
}

// DynamicVariantSelf is a dynamic variant tagged by its own base value.
type DynamicVariantSelf struct {
	base       reflect.Type
	disc       Discriminator
	candidates []Descriptor
}

func NewDynamicVariantSelf(base reflect.Type, disc Discriminator, candidates ...any) *DynamicVariantSelf {
	return &DynamicVariantSelf{base: base, disc: disc, candidates: resolveAll(candidates)}
}

func DynamicVariantSelfOf[B any](fn func(*B) int, candidates ...any) *DynamicVariantSelf {
	return NewDynamicVariantSelf(reflect.TypeFor[B](), Resolver(fn), candidates...)
}

func (v *DynamicVariantSelf) Kind() Kind                   { return KindDynamicVariantSelf }
func (v *DynamicVariantSelf) Base() reflect.Type           { return v.base }
func (v *DynamicVariantSelf) Discriminator() Discriminator { return v.disc }
func (*DynamicVariantSelf) descriptor()                    {}

func (v *DynamicVariantSelf) Candidates() []Descriptor {
	return append([]Descriptor(nil), v.candidates...)
}

func (v *DynamicVariantSelf) String() string {
	return "dynamic_variant_self<" + typeString(v.base) + ">"
}

// Unresolved is what canonicalization yields for a type no rule covers.
// Deriving a representation from it fails.
type Unresolved struct {
	goType reflect.Type
	value  any
}

func (u *Unresolved) Kind() Kind           { return KindInvalid }
func (u *Unresolved) GoType() reflect.Type { return u.goType }
func (u *Unresolved) Value() any           { return u.value }
func (*Unresolved) descriptor()            {}

func (u *Unresolved) String() string {
	if u.goType != nil {
		return "unresolved<" + u.goType.String() + ">"
	}
	return fmt.Sprintf("unresolved<%T>", u.value)
}

func fieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name.String() == name {
			return f, true
		}
	}
	return Field{}, false
}

func resolveAll(decls []any) []Descriptor {
	out := make([]Descriptor, len(decls))
	for i, d := range decls {
		out[i] = ResolveDecl(d)
	}
	return out
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

func describe(d Descriptor) string {
	if isNil(d) {
		return "nil"
	}
	return d.String()
}

// isNil also catches typed nil pointers stored in a Descriptor.
func isNil(d Descriptor) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func internable(d Descriptor) bool {
	return d == nil || reflect.TypeOf(d).Comparable()
}
