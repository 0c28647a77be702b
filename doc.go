// Package typedesc describes the memory layout of native data types at
// runtime.
//
// A descriptor says how a value is laid out: primitives, structures with
// optional base structures, discriminated unions, enumerations, pointers,
// fixed and count-driven arrays, variants whose concrete shape is chosen by
// a discriminator, and modifiers such as alignment overrides stacked on top.
// From a descriptor the library derives a Go representation type, a static
// size and alignment, and for count-driven arrays a size computed from a
// parent value.
//
// # Architecture Overview
//
//	typedesc/
//	├── descriptor/      Descriptor kinds, canonicalization, modifiers,
//	│                    representation, size/alignment and the compiler
//	├── schema/          YAML declaration files built into descriptor sets
//	├── witdecl/         WIT (Component Model) types as descriptors with
//	│                    Canonical ABI layouts
//	├── label/           Fixed-capacity names for fields and options
//	├── errors/          Structured error types for debugging
//	└── cmd/typedesc/    CLI: describe, check, size, wit and browse
//
// # Quick Start
//
// Describe a header followed by a count-driven array:
//
//	type header struct {
//	    Count uint32
//	}
//
//	samples := descriptor.DynamicArrayOf(reflect.TypeFor[float32](),
//	    func(h *header) int { return int(h.Count) })
//
//	size, err := descriptor.DynamicSizeOf(samples, &header{Count: 4}, nil)
//	fmt.Println(size) // 16
//
// Validate a graph and inspect its derived layout:
//
//	l, err := descriptor.NewCompiler().Compile(d)
//	l.Walk(func(n *descriptor.Layout, depth int) bool {
//	    fmt.Println(strings.Repeat("  ", depth), n.Name, n.Size, n.Align)
//	    return true
//	})
//
// # Thread Safety
//
// Descriptors are immutable and safe for concurrent use. Canonical
// registrations are meant to happen during init; lookups may run
// concurrently with them. A witdecl.Converter is not thread-safe.
package typedesc
