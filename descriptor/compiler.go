package descriptor

import (
	"reflect"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
)

// Layout is a compiled descriptor: the derived representation, size and
// alignment of every slot of a descriptor graph.
type Layout struct {
	Desc      Descriptor
	Repr      reflect.Type
	Name      string
	Modifiers []ModifierID
	Children  []*Layout
	Kind      Kind
	Size      uintptr
	Align     uintptr
	Dynamic   bool
}

// Walk visits l and its children depth first. Returning false from fn
// skips the children of that node.
func (l *Layout) Walk(fn func(l *Layout, depth int) bool) {
	l.walk(fn, 0)
}

func (l *Layout) walk(fn func(*Layout, int) bool, depth int) {
	if !fn(l, depth) {
		return
	}
	for _, c := range l.Children {
		c.walk(fn, depth+1)
	}
}

// Compiler validates descriptor graphs and derives their layouts. Results
// are cached per descriptor, so compiling shared subgraphs is cheap.
type Compiler struct {
	cache sync.Map // Descriptor -> *Layout
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

var defaultCompiler = NewCompiler()

// Validate reports the first problem found in d, or nil.
func Validate(d Descriptor) error {
	_, err := defaultCompiler.Compile(d)
	return err
}

// Compile validates d and returns its layout. Errors carry the path of the
// offending slot.
func (c *Compiler) Compile(d Descriptor) (*Layout, error) {
	l, err := c.compile(d, nil)
	if err != nil {
		Logger().Debug("compile failed", zap.String("descriptor", describe(d)), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (c *Compiler) compile(d Descriptor, path []string) (*Layout, error) {
	if isNil(d) {
		return nil, errors.NilDescriptor(errors.PhaseValidate, path)
	}
	key := internable(d)
	if key {
		if cached, ok := c.cache.Load(d); ok {
			return cached.(*Layout), nil
		}
	}

	l, err := c.build(d, path)
	if err != nil {
		return nil, err
	}
	if key {
		actual, _ := c.cache.LoadOrStore(d, l)
		l = actual.(*Layout)
	}
	debugf("compiled %s: size=%d align=%d dynamic=%v", l.Desc, l.Size, l.Align, l.Dynamic)
	return l, nil
}

func (c *Compiler) build(d Descriptor, path []string) (*Layout, error) {
	if err := c.checkModifiers(d, path); err != nil {
		return nil, err
	}
	core := Desugar(d)
	if isNil(core) {
		return nil, errors.NilDescriptor(errors.PhaseValidate, childPath(path, "inner"))
	}

	l := &Layout{
		Desc:      d,
		Kind:      core.Kind(),
		Modifiers: Modifiers(d),
	}

	var err error
	switch v := core.(type) {
	case *Unresolved:
		return nil, errors.InvalidDescription(errors.PhaseValidate, path, v.String())
	case *Primitive:
	case *Structure:
		if v.base != nil {
			if err = c.child(l, v.base, "base", path); err != nil {
				return nil, err
			}
		}
		err = c.fields(l, v.fields, path)
	case *Union:
		if err = checkDisc(v.disc, path); err != nil {
			return nil, err
		}
		err = c.fields(l, v.fields, path)
	case *Enumeration:
		err = c.child(l, v.underlying, "underlying", path)
	case *Pointer:
		if v.target != nil {
			err = c.child(l, v.target, "*", path)
		}
	case *StaticArray:
		if v.length < 0 {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidData).
				Path(path...).
				Value(v.length).
				Detail("negative array length %d", v.length).
				Build()
		}
		if IsDynamic(v.elem) {
			return nil, errors.DynamicSize(childPath(path, "[]"), describe(v.elem))
		}
		err = c.child(l, v.elem, "[]", path)
	case *DynamicArray:
		if err = checkDisc(v.disc, path); err != nil {
			return nil, err
		}
		err = c.child(l, v.elem, "[]", path)
	case *DynamicVariant:
		if err = checkDisc(v.disc, path); err != nil {
			return nil, err
		}
		err = c.candidates(l, v.candidates, path)
	case *DynamicVariantSelf:
		if err = checkDisc(v.disc, path); err != nil {
			return nil, err
		}
		if v.base != v.disc.Parent() {
			return nil, errors.TypeMismatch(errors.PhaseValidate, path, typeString(v.disc.Parent()), v.String())
		}
		err = c.candidates(l, v.candidates, path)
	default:
		return nil, errors.Unsupported(errors.PhaseValidate, "descriptor "+core.String())
	}
	if err != nil {
		return nil, err
	}

	if l.Repr, err = representation(d, path); err != nil {
		return nil, err
	}
	if l.Align, err = AlignOf(d); err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidDescription, err, "alignment").WithPath(path...)
	}
	if IsDynamic(d) {
		l.Dynamic = true
	} else if l.Size, err = SizeOf(d); err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidDescription, err, "size").WithPath(path...)
	}
	return l, nil
}

func (c *Compiler) checkModifiers(d Descriptor, path []string) error {
	for IsModifier(d) {
		if a, ok := d.(*Aligned); ok && !abi.IsPowerOfTwo(a.alignment) {
			return errors.New(errors.PhaseValidate, errors.KindInvalidData).
				Path(path...).
				Descriptor(a.String()).
				Value(a.alignment).
				Detail("alignment %d is not a power of two", a.alignment).
				Build()
		}
		d = d.(Modifier).Inner()
	}
	return nil
}

// child compiles d into a named child of l. Cached layouts are shared, so
// a named copy is attached instead of the cached node.
func (c *Compiler) child(l *Layout, d Descriptor, name string, path []string) error {
	p := childPath(path, name)
	cl, err := c.compile(d, p)
	if err != nil {
		return err
	}
	named := *cl
	named.Name = name
	l.Children = append(l.Children, &named)
	return nil
}

func (c *Compiler) fields(l *Layout, fields []Field, path []string) error {
	for i, f := range fields {
		name := f.Name.String()
		if name == "" {
			name = strconv.Itoa(i)
		}
		if err := c.child(l, f.Type, name, path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) candidates(l *Layout, cands []Descriptor, path []string) error {
	for i, cand := range cands {
		if err := c.child(l, cand, strconv.Itoa(i), path); err != nil {
			return err
		}
	}
	return nil
}

func checkDisc(d Discriminator, path []string) error {
	if d.IsZero() {
		return errors.NilDescriptor(errors.PhaseValidate, childPath(path, "discriminator"))
	}
	if d.Parent() == nil {
		return errors.InvalidDescription(errors.PhaseValidate, childPath(path, "discriminator"), "discriminator without parent type")
	}
	return nil
}
