// Package layout computes natural sizes and alignments of representation
// types and synthesizes Go struct and storage types for descriptors that
// have no hand-written representation.
//
// # Layout Rules
//
//   - Natural: size and alignment as the Go toolchain lays the type out
//   - Structures: fields laid out sequentially, padded to each alignment
//   - Members of unknown extent: recorded at their aligned offset, no storage
//   - Blobs: opaque storage sized and aligned for the largest union member
//
// This package is internal to the module.
package layout
