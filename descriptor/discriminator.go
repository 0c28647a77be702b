package descriptor

import (
	"reflect"

	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
)

// Discriminator reads a selector or a count from a parent value. It is
// bound to the parent's Go type so that it can be checked before use.
type Discriminator struct {
	parent reflect.Type
	fn     func(any) (int, error)
	bind   func() Discriminator
}

// Resolver binds fn to the parent type P. The returned discriminator
// accepts either a *P or a P.
func Resolver[P any](fn func(*P) int) Discriminator {
	parent := reflect.TypeFor[P]()
	if fn == nil {
		return Discriminator{parent: parent}
	}
	return Discriminator{
		parent: parent,
		fn: func(v any) (int, error) {
			switch p := v.(type) {
			case *P:
				if p == nil {
					return 0, errors.InvalidData(errors.PhaseRuntime, nil, "nil parent")
				}
				return fn(p), nil
			case P:
				return fn(&p), nil
			}
			return 0, errors.TypeMismatch(errors.PhaseRuntime, nil, abi.TypeName(v), parent.String())
		},
	}
}

// NewDiscriminator builds a discriminator for a parent type known only at
// runtime. fn receives the parent as passed to Call.
func NewDiscriminator(parent reflect.Type, fn func(any) (int, error)) Discriminator {
	return Discriminator{parent: parent, fn: fn}
}

// FieldCount returns a discriminator reading the integer field named field
// of a struct parent.
func FieldCount(parent reflect.Type, field string) Discriminator {
	return NewDiscriminator(parent, func(v any) (int, error) {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if !rv.IsValid() || rv.Type() != parent {
			return 0, errors.TypeMismatch(errors.PhaseRuntime, nil, abi.TypeName(v), parent.String())
		}
		f := rv.FieldByName(field)
		if !f.IsValid() {
			return 0, errors.NotFound(errors.PhaseRuntime, "field", field)
		}
		n, ok := abi.CoerceToCount(f.Interface())
		if !ok {
			return 0, errors.InvalidData(errors.PhaseRuntime, []string{field}, "not a count")
		}
		return n, nil
	})
}

// Deferred returns a discriminator whose parent type is not known yet,
// such as a selector reading the structure that contains the selected
// member. bind is asked for the actual discriminator on every use and must
// not be consulted before the parent exists.
func Deferred(bind func() Discriminator) Discriminator {
	return Discriminator{bind: bind}
}

func (d Discriminator) resolved() Discriminator {
	if d.bind != nil {
		return d.bind()
	}
	return d
}

func (d Discriminator) Parent() reflect.Type { return d.resolved().parent }

// IsZero reports whether no function is bound.
func (d Discriminator) IsZero() bool { return d.bind == nil && d.fn == nil }

// Call evaluates the discriminator against parent. Negative results are
// rejected since they can neither select a branch nor count elements.
func (d Discriminator) Call(parent any) (int, error) {
	d = d.resolved()
	if d.fn == nil {
		return 0, errors.NilDescriptor(errors.PhaseRuntime, []string{"discriminator"})
	}
	n, err := d.fn(parent)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New(errors.PhaseRuntime, errors.KindInvalidData).
			Value(n).
			Detail("discriminator returned %d", n).
			Build()
	}
	return n, nil
}
