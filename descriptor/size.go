package descriptor

import (
	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
)

// SizeOf returns the compile-time size of d's representation. It fails for
// a dynamic array, and for any static array whose elements are, since
// neither has a size without a parent value.
//
// Structures and unions report their representation's size even when they
// end in a dynamic array; the trailing member contributes nothing, like a
// flexible array member.
func SizeOf(d Descriptor) (uintptr, error) {
	core := Desugar(d)
	if dynamicHead(core) {
		return 0, errors.DynamicSize(nil, core.String())
	}
	repr, err := Representation(core)
	if err != nil {
		return 0, err
	}
	return repr.Size(), nil
}

// AlignOf returns the alignment of d. The outermost Aligned modifier wins;
// otherwise the representation's alignment applies. A dynamic array aligns
// as its element.
func AlignOf(d Descriptor) (uintptr, error) {
	for IsModifier(d) {
		if a, ok := d.(*Aligned); ok {
			return a.alignment, nil
		}
		d = d.(Modifier).Inner()
	}
	if arr, ok := d.(*DynamicArray); ok {
		return AlignOf(arr.elem)
	}
	repr, err := Representation(d)
	if err != nil {
		return 0, err
	}
	return uintptr(repr.Align()), nil
}

// IsRealigned reports whether an Aligned modifier wraps d.
func IsRealigned(d Descriptor) bool {
	return HasModifier(ModAligned, d)
}

// IsDynamic reports whether d has no compile-time size.
func IsDynamic(d Descriptor) bool {
	return dynamicHead(Desugar(d))
}

func dynamicHead(d Descriptor) bool {
	for {
		switch v := d.(type) {
		case *DynamicArray:
			return true
		case *StaticArray:
			d = Desugar(v.elem)
		default:
			return false
		}
	}
}

// DynamicSizeOf returns the size of d given the parent value its
// discriminators read from. self is the value described by d; it is
// accepted for discriminators that inspect their own storage and is passed
// through unchanged.
//
// A dynamic array is count(parent) elements of the element's dynamic size.
// Everything else falls back to SizeOf, so a static array of dynamic arrays
// still fails.
func DynamicSizeOf(d Descriptor, parent, self any) (uintptr, error) {
	return dynamicSizeOf(Desugar(d), parent, self, nil)
}

func dynamicSizeOf(d Descriptor, parent, self any, path []string) (uintptr, error) {
	var (
		count   int
		elem    Descriptor
		dynamic bool
	)
	switch v := d.(type) {
	case *DynamicArray:
		n, err := v.disc.Call(parent)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return 0, e.WithPath(path...)
			}
			return 0, err
		}
		count, elem, dynamic = n, v.elem, true
	}
	if !dynamic {
		size, err := SizeOf(d)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return 0, e.WithPath(path...)
			}
		}
		return size, err
	}

	if isNil(elem) {
		return 0, errors.NilDescriptor(errors.PhaseRuntime, childPath(path, "[]"))
	}
	each, err := dynamicSizeOf(Desugar(elem), parent, self, childPath(path, "[]"))
	if err != nil {
		return 0, err
	}
	total, ok := abi.SafeMul(uintptr(count), each)
	if !ok {
		return 0, errors.Overflow(errors.PhaseRuntime, path, count, "size of "+d.String())
	}
	return total, nil
}
