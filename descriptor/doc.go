// Package descriptor declares the logical layout of data and derives its
// storage from the declaration alone.
//
// A Descriptor is an immutable value naming one of a closed set of kinds:
// primitives, structures, unions, enumerations, pointers, static and dynamic
// arrays, and dynamic variants. Modifiers such as Aligned wrap a descriptor
// and change one derived property without changing its kind.
//
// # Derivations
//
//	Representation(d)           the Go type storing d
//	SizeOf(d), AlignOf(d)       compile-time size and alignment
//	DynamicSizeOf(d, parent, _) size of a dynamic array given its parent
//
// Go types enter the algebra through Canonical, which maps fundamental
// types to primitives, pointers to Pointer and arrays to StaticArray:
//
//	type Header struct {
//		Count uint32
//		Tag   [4]byte
//	}
//
//	header := descriptor.StructureOf[Header]("header", nil,
//		descriptor.NewField("count", reflect.TypeFor[uint32]()),
//		descriptor.NewField("tag", reflect.TypeFor[[4]byte]()),
//	)
//	samples := descriptor.DynamicArrayOf(descriptor.Of[float32](),
//		func(h *Header) int { return int(h.Count) })
//
//	size, err := descriptor.DynamicSizeOf(samples, &Header{Count: 3}, nil)
//
// A Compiler checks a whole descriptor graph once and reports the first
// invalid slot by path.
package descriptor
