package schema

import (
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
)

// primitives are the built-in type names of declaration files.
var primitives = map[string]reflect.Type{
	"bool":    reflect.TypeFor[bool](),
	"u8":      reflect.TypeFor[uint8](),
	"i8":      reflect.TypeFor[int8](),
	"u16":     reflect.TypeFor[uint16](),
	"i16":     reflect.TypeFor[int16](),
	"u32":     reflect.TypeFor[uint32](),
	"i32":     reflect.TypeFor[int32](),
	"u64":     reflect.TypeFor[uint64](),
	"i64":     reflect.TypeFor[int64](),
	"f32":     reflect.TypeFor[float32](),
	"f64":     reflect.TypeFor[float64](),
	"uintptr": reflect.TypeFor[uintptr](),
	"cstring": reflect.TypeFor[*byte](),
	"voidptr": reflect.TypeFor[unsafe.Pointer](),
}

// integers may drive counts and selectors and underlie enumerations.
var integers = map[string]bool{
	"u8": true, "i8": true, "u16": true, "i16": true,
	"u32": true, "i32": true, "u64": true, "i64": true,
	"uintptr": true,
}

// typeRef is a parsed type reference: a name, *T or [N]T.
type typeRef struct {
	elem    *typeRef
	name    string
	length  int
	pointer bool
}

func parseRef(s string) (*typeRef, *errors.Error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, errors.InvalidInput(errors.PhaseParse, "empty type reference")
	case strings.HasPrefix(s, "*"):
		elem, err := parseRef(s[1:])
		if err != nil {
			return nil, err
		}
		return &typeRef{pointer: true, elem: elem}, nil
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, errors.InvalidInput(errors.PhaseParse, "unterminated array length in "+strconv.Quote(s))
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(s[1:end]))
		if convErr != nil || n < 0 {
			return nil, errors.InvalidInput(errors.PhaseParse, "invalid array length in "+strconv.Quote(s))
		}
		elem, err := parseRef(s[end+1:])
		if err != nil {
			return nil, err
		}
		return &typeRef{length: n, elem: elem}, nil
	}
	if !isIdent(s) {
		return nil, errors.InvalidInput(errors.PhaseParse, "invalid type name "+strconv.Quote(s))
	}
	return &typeRef{name: s}, nil
}

// root is the name the reference is built from.
func (r *typeRef) root() string {
	for r.elem != nil {
		r = r.elem
	}
	return r.name
}

// resolve builds the descriptor of r, looking declared names up in named.
func (r *typeRef) resolve(named func(string) (descriptor.Descriptor, bool)) (descriptor.Descriptor, bool) {
	switch {
	case r.pointer:
		elem, ok := r.elem.resolve(named)
		if !ok {
			return nil, false
		}
		return descriptor.PointerTo(elem), true
	case r.elem != nil:
		elem, ok := r.elem.resolve(named)
		if !ok {
			return nil, false
		}
		return descriptor.StaticArrayOf(elem, r.length), true
	}
	if t, ok := primitives[r.name]; ok {
		return descriptor.Canonical(t), true
	}
	return named(r.name)
}
