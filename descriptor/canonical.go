package descriptor

import (
	"reflect"
	"sync"
)

var (
	// registered holds explicit reflect.Type -> Descriptor overrides.
	registered sync.Map

	canonicalCache sync.Map
	primitives     sync.Map
	pointers       sync.Map
	arrays         sync.Map
	aligned        sync.Map
	unresolved     sync.Map
)

var opaqueByte = reflect.TypeFor[*byte]()

// RegisterCanonical makes d the canonical descriptor of t. It takes
// precedence over every structural rule. Registration is meant for program
// initialization; lookups already served may have cached the old answer, so
// the cache is reset.
// Registering a nil descriptor removes the override.
func RegisterCanonical(t reflect.Type, d Descriptor) {
	if isNil(d) {
		registered.Delete(t)
	} else {
		registered.Store(t, d)
	}
	canonicalCache.Clear()
	debugf("registered canonical %s -> %s", t, describe(d))
}

// Register is RegisterCanonical for the static type T.
func Register[T any](d Descriptor) {
	RegisterCanonical(reflect.TypeFor[T](), d)
}

// Of returns the canonical descriptor of T.
func Of[T any]() Descriptor {
	return Canonical(reflect.TypeFor[T]())
}

// Canonical maps a Go type to its descriptor:
//
//   - a registered override wins
//   - *byte and unsafe.Pointer are opaque primitives
//   - booleans and numeric types are primitives
//   - *T is a pointer to Canonical(T)
//   - [N]T is a static array of N Canonical(T)
//
// Anything else is Unresolved. Results are stable: asking twice for the same
// type returns the identical descriptor.
//
// A type reached again while it is being canonicalized, such as the target
// of type P *P, is Unresolved at that point.
func Canonical(t reflect.Type) Descriptor {
	return canonical(t, nil)
}

func canonical(t reflect.Type, visiting map[reflect.Type]bool) Descriptor {
	if t == nil {
		return nil
	}
	if d, ok := canonicalCache.Load(t); ok {
		return d.(Descriptor)
	}
	if visiting[t] {
		return unresolvedOf(t)
	}
	if visiting == nil {
		visiting = make(map[reflect.Type]bool)
	}
	visiting[t] = true
	d := canonicalize(t, visiting)
	delete(visiting, t)

	actual, _ := canonicalCache.LoadOrStore(t, d)
	return actual.(Descriptor)
}

func canonicalize(t reflect.Type, visiting map[reflect.Type]bool) Descriptor {
	if d, ok := registered.Load(t); ok {
		return d.(Descriptor)
	}
	if t == opaqueByte || t.Kind() == reflect.UnsafePointer {
		return NewPrimitive(t)
	}
	if isFundamental(t.Kind()) {
		return NewPrimitive(t)
	}
	switch t.Kind() {
	case reflect.Pointer:
		return PointerTo(canonical(t.Elem(), visiting))
	case reflect.Array:
		return StaticArrayOf(canonical(t.Elem(), visiting), t.Len())
	}
	debugf("no canonical rule for %s", t)
	return unresolvedOf(t)
}

func unresolvedOf(t reflect.Type) *Unresolved {
	if u, ok := unresolved.Load(t); ok {
		return u.(*Unresolved)
	}
	u, _ := unresolved.LoadOrStore(t, &Unresolved{goType: t})
	return u.(*Unresolved)
}

func isFundamental(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// ResolveDecl turns a declaration slot into a descriptor. Descriptors pass
// through, Go types are canonicalized, and nil stays nil (an absent base).
// Other values cannot describe anything and resolve to Unresolved.
func ResolveDecl(decl any) Descriptor {
	switch d := decl.(type) {
	case nil:
		return nil
	case Descriptor:
		if isNil(d) {
			return nil
		}
		return d
	case reflect.Type:
		return Canonical(d)
	}
	return &Unresolved{value: decl}
}
