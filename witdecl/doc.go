// Package witdecl converts WebAssembly Component Model (WIT) types into
// descriptors whose representations follow the Canonical ABI layout rules.
//
// Records and tuples become structures with synthesized representations.
// Options, results and variants become self-discriminated dynamic variants:
// the base is a {disc, payload} pair and the discriminant value selects the
// candidate. Strings and lists lower to a {ptr, len} pair of u32.
//
//	d, err := witdecl.Convert(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
//	size, _ := descriptor.SizeOf(d) // 8
//
// ConvertResolve converts every named typedef of a loaded package.
package witdecl
