// Package abi provides internal arithmetic and coercion helpers shared by
// the descriptor, schema and witdecl packages.
//
// # Contents
//
//   - helpers.go: alignment rounding and overflow-checked size arithmetic
//   - coerce.go: coercion of loosely typed integers (YAML, reflected fields)
//
// This package is internal to the module.
package abi
