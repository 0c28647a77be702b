package layout

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/typedesc/internal/abi"
)

// Info is the size and alignment of a representation, plus field offsets
// and Go field names for synthesized structures.
type Info struct {
	FieldOffs  map[string]uintptr
	FieldNames map[string]string
	Size       uintptr
	Align      uintptr
}

// Natural returns the Go size and alignment of t.
func Natural(t reflect.Type) Info {
	return Info{Size: t.Size(), Align: uintptr(t.Align())}
}

// ArrayOf is reflect.ArrayOf with the size overflow reported instead of
// panicking.
func ArrayOf(n int, elem reflect.Type) (reflect.Type, bool) {
	if n < 0 {
		return nil, false
	}
	if _, ok := abi.SafeMul(uintptr(n), elem.Size()); !ok {
		return nil, false
	}
	return reflect.ArrayOf(n, elem), true
}

// Unbounded is the marker representation of an array of unknown extent: a
// zero-length array of elem. It has elem's alignment and no size.
func Unbounded(elem reflect.Type) reflect.Type {
	return reflect.ArrayOf(0, elem)
}

// storageUnits maps an alignment to the unsigned integer type carrying it.
var storageUnits = map[uintptr]reflect.Type{
	1: reflect.TypeFor[uint8](),
	2: reflect.TypeFor[uint16](),
	4: reflect.TypeFor[uint32](),
	8: reflect.TypeFor[uint64](),
}

// Blob returns an opaque storage type of at least size bytes aligned to
// align. Alignments above 8 are clamped to the widest Go integer.
func Blob(size, align uintptr) (reflect.Type, bool) {
	if align == 0 {
		align = 1
	}
	if align > 8 {
		align = 8
	}
	unit, ok := storageUnits[align]
	if !ok {
		return nil, false
	}
	count := abi.AlignTo(size, align) / align
	return ArrayOf(int(count), unit)
}

// StructBuilder synthesizes Go struct types field by field, inserting
// padding for alignments stronger than a field's natural alignment.
type StructBuilder struct {
	offs     map[string]uintptr
	names    map[string]string
	fields   []reflect.StructField
	offset   uintptr
	maxAlign uintptr
	pads     int
}

func NewStructBuilder() *StructBuilder {
	return &StructBuilder{
		offs:     make(map[string]uintptr),
		names:    make(map[string]string),
		maxAlign: 1,
	}
}

// Add appends a field named name of type t. align overrides the natural
// alignment when it is larger.
func (b *StructBuilder) Add(name string, t reflect.Type, align uintptr) bool {
	natural := uintptr(t.Align())
	if align < natural {
		align = natural
	}

	target := abi.AlignTo(b.offset, align)
	if target != abi.AlignTo(b.offset, natural) {
		b.pad(target - b.offset)
	}
	b.offset = target

	if t.Size() == 0 {
		b.AddTrailing(name, align)
		return true
	}

	goName := ExportedName(name, len(b.fields))
	b.fields = append(b.fields, reflect.StructField{Name: goName, Type: t})
	b.offs[name] = b.offset
	b.names[name] = goName

	end, ok := abi.SafeAdd(b.offset, t.Size())
	if !ok {
		return false
	}
	b.offset = end
	if align > b.maxAlign {
		b.maxAlign = align
	}
	return true
}

func (b *StructBuilder) pad(n uintptr) {
	b.fields = append(b.fields, reflect.StructField{
		Name: "XPad" + strconv.Itoa(b.pads),
		Type: reflect.ArrayOf(int(n), storageUnits[1]),
	})
	b.pads++
	b.offset += n
}

// AddTrailing records the offset of a member of unknown extent (a dynamic
// array) without adding storage for it. Go pads structs ending in a
// zero-sized field, so the member must stay out of the struct type.
func (b *StructBuilder) AddTrailing(name string, align uintptr) {
	b.offs[name] = abi.AlignTo(b.offset, align)
	if align > b.maxAlign {
		b.maxAlign = align
	}
}

// Build returns the struct type and its layout. Trailing padding rounds the
// size up to the strongest requested alignment.
func (b *StructBuilder) Build() (reflect.Type, Info) {
	if want := abi.AlignTo(b.offset, b.maxAlign); want > b.offset {
		b.pad(want - b.offset)
	}
	t := reflect.StructOf(b.fields)
	return t, Info{
		Size:       t.Size(),
		Align:      b.maxAlign,
		FieldOffs:  b.offs,
		FieldNames: b.names,
	}
}

// ExportedName turns a declaration name into an exported Go identifier.
// Names that do not start with a letter get an F<index> prefix.
func ExportedName(name string, index int) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_' || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		return "F" + strconv.Itoa(index) + "_" + s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
