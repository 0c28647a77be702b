// Package schema loads descriptor declarations from YAML files.
//
// A file lists named types:
//
//	types:
//	  - name: header
//	    kind: structure
//	    fields:
//	      - {name: count, type: u32}
//	      - {name: flags, type: u16, align: 8}
//	      - {name: data, type: f32, count: count}
//	  - name: color
//	    kind: enumeration
//	    underlying: u8
//	    options: [{name: red}, {name: green, value: 5}, {name: blue}]
//
// Type references are primitive names (bool, u8 .. i64, f32, f64, uintptr,
// cstring, voidptr), declared names, *T and [N]T. A field with count is a
// trailing dynamic array whose length is the named sibling field.
//
// Build synthesizes a Go representation for every structure and union with
// reflect.StructOf and returns a Set of descriptors.
package schema
