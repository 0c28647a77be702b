// Package errors provides structured error types for the typedesc module.
//
// Errors are categorized by Phase (which derivation failed) and Kind (error
// category). The Error type carries the slot path inside the descriptor
// graph, the Go type and descriptor involved, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRepresent, errors.KindInvalidDescription).
//		Path("header", "payload").
//		GoType("chan int").
//		Detail("invalid reflection description").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DynamicSize(path, "dynamic_array<u32>")
//	err := errors.Overflow(errors.PhaseRuntime, path, count, "uintptr")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
