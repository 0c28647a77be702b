package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which derivation produced the error
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // canonicalization and slot resolution
	PhaseRepresent Phase = "represent" // representation derivation
	PhaseSize      Phase = "size"      // size and alignment derivation
	PhaseValidate  Phase = "validate"  // descriptor graph validation
	PhaseRuntime   Phase = "runtime"   // dynamic sizing with a parent value
	PhaseLoad      Phase = "load"      // declaration file loading
	PhaseParse     Phase = "parse"     // declaration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidDescription Kind = "invalid_description"
	KindDynamicSize        Kind = "dynamic_size"
	KindNilDescriptor      Kind = "nil_descriptor"
	KindTypeMismatch       Kind = "type_mismatch"
	KindInvalidData        Kind = "invalid_data"
	KindOverflow           Kind = "overflow"
	KindUnsupported        Kind = "unsupported"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindDuplicate          Kind = "duplicate"
	KindCycle              Kind = "cycle"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	Descriptor string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Descriptor != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Descriptor != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", descriptor ")
			b.WriteString(e.Descriptor)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("descriptor ")
			b.WriteString(e.Descriptor)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Descriptor != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// WithPath returns a copy of e with prefix prepended to its path.
func (e *Error) WithPath(prefix ...string) *Error {
	cp := *e
	cp.Path = append(append([]string(nil), prefix...), e.Path...)
	return &cp
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the slot path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Descriptor sets the descriptor name
func (b *Builder) Descriptor(d string) *Builder {
	b.err.Descriptor = d
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidDescription reports a descriptor that no derivation rule accepts
func InvalidDescription(phase Phase, path []string, desc string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindInvalidDescription,
		Path:       path,
		Descriptor: desc,
		Detail:     "invalid reflection description",
	}
}

// DynamicSize reports a compile-time size query on a dynamically sized descriptor
func DynamicSize(path []string, desc string) *Error {
	return &Error{
		Phase:      PhaseSize,
		Kind:       KindDynamicSize,
		Path:       path,
		Descriptor: desc,
		Detail:     "cannot take size of a dynamic array",
	}
}

// NilDescriptor reports an empty descriptor slot
func NilDescriptor(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilDescriptor,
		Path:   path,
		Detail: "nil descriptor",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, desc string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTypeMismatch,
		Path:       path,
		GoType:     goType,
		Descriptor: desc,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, what),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate reports a name declared twice
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
	}
}

// Cycle reports a declaration that depends on itself
func Cycle(phase Phase, chain []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCycle,
		Path:   chain,
		Detail: "recursive declaration",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a declaration file loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
