package descriptor

import (
	"reflect"
	"strconv"
	"unsafe"

	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/layout"
)

var voidPointer = reflect.TypeFor[unsafe.Pointer]()

// Representation returns the Go type storing values of d.
//
// Dynamic arrays have no extent of their own; they are represented by a
// zero-length array of the element so that alignment survives. A pointer to
// nothing is unsafe.Pointer. Modifiers do not change storage.
func Representation(d Descriptor) (reflect.Type, error) {
	return representation(d, nil)
}

func representation(d Descriptor, path []string) (reflect.Type, error) {
	if isNil(d) {
		return nil, errors.NilDescriptor(errors.PhaseRepresent, path)
	}
	if IsModifier(d) {
		return representation(d.(Modifier).Inner(), path)
	}

	var repr reflect.Type
	switch v := d.(type) {
	case *Primitive:
		repr = v.repr
	case *Structure:
		repr = v.repr
	case *Union:
		repr = v.repr
	case *Enumeration:
		repr = v.repr
	case *DynamicVariant:
		repr = v.base
	case *DynamicVariantSelf:
		repr = v.base
	case *Pointer:
		if isNil(v.target) {
			return voidPointer, nil
		}
		target, err := representation(v.target, childPath(path, "*"))
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(target), nil
	case *StaticArray:
		elem, err := representation(v.elem, childPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		arr, ok := layout.ArrayOf(v.length, elem)
		if !ok {
			return nil, errors.Overflow(errors.PhaseRepresent, path, v.length, "array of "+elem.String())
		}
		return arr, nil
	case *DynamicArray:
		elem, err := representation(v.elem, childPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		return layout.Unbounded(elem), nil
	}

	if repr == nil {
		return nil, errors.InvalidDescription(errors.PhaseRepresent, path, d.String())
	}
	return repr, nil
}

// MustRepresentation is Representation for descriptors known to be valid.
func MustRepresentation(d Descriptor) reflect.Type {
	t, err := Representation(d)
	if err != nil {
		panic(err)
	}
	return t
}

func indexPath(path []string, i int) []string {
	return append(path[:len(path):len(path)], strconv.Itoa(i))
}

func childPath(path []string, name string) []string {
	return append(path[:len(path):len(path)], name)
}
