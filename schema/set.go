package schema

import (
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
	"github.com/wippyai/typedesc/internal/layout"
)

// baseMember is the storage slot of an inherited structure. It cannot
// collide with a declared field since field names start with a letter.
const baseMember = "_base"

// Set is the result of building a declaration file: one descriptor per
// declared name, with synthesized representations.
type Set struct {
	descs    map[string]descriptor.Descriptor
	decls    map[string]*TypeDecl
	reprs    map[string]reflect.Type
	structs  map[string]layout.Info
	compiler *descriptor.Compiler
	names    []string
}

// Build turns the declarations into descriptors. Every descriptor is
// compiled once, so a Set never holds an invalid graph.
func (f *File) Build() (*Set, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	order, err := f.order()
	if err != nil {
		return nil, err
	}

	s := &Set{
		descs:    make(map[string]descriptor.Descriptor, len(f.Types)),
		decls:    make(map[string]*TypeDecl, len(f.Types)),
		reprs:    make(map[string]reflect.Type, len(f.Types)),
		structs:  make(map[string]layout.Info),
		compiler: descriptor.NewCompiler(),
	}
	for i := range f.Types {
		s.decls[f.Types[i].Name] = &f.Types[i]
		s.names = append(s.names, f.Types[i].Name)
	}

	for _, name := range order {
		d, err := s.build(s.decls[name])
		if err != nil {
			return nil, err
		}
		s.descs[name] = d
		debugf("built %s: %s", name, d)
	}
	// Selectors may read a structure built after the member they select,
	// so nothing is compiled until every declaration exists.
	for _, name := range order {
		if _, err := s.compiler.Compile(s.descs[name]); err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.WithPath(name)
			}
			return nil, err
		}
	}
	Logger().Debug("declarations built", zap.String("source", f.Source), zap.Int("types", len(order)))
	return s, nil
}

// Lookup returns the descriptor declared as name.
func (s *Set) Lookup(name string) (descriptor.Descriptor, bool) {
	d, ok := s.descs[name]
	return d, ok
}

// Names returns the declared names in file order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Layout returns the compiled layout of name.
func (s *Set) Layout(name string) (*descriptor.Layout, error) {
	d, ok := s.descs[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "type", name)
	}
	return s.compiler.Compile(d)
}

// Offsets returns the byte offset of every member of the structure name,
// trailing counted members included.
func (s *Set) Offsets(name string) (map[string]uintptr, bool) {
	info, ok := s.structs[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]uintptr, len(info.FieldOffs))
	for k, v := range info.FieldOffs {
		if k != baseMember {
			out[k] = v
		}
	}
	return out, true
}

// Fields returns the integer and enumeration fields of structure name that
// NewValue can set, sorted.
func (s *Set) Fields(name string) []string {
	decl, ok := s.decls[name]
	if !ok || decl.Kind != "structure" {
		return nil
	}
	var out []string
	for _, fd := range decl.Fields {
		if fd.Count == "" && (integers[fd.Type] || s.isEnumeration(fd.Type)) {
			out = append(out, fd.Name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Set) isEnumeration(name string) bool {
	decl, ok := s.decls[name]
	return ok && decl.Kind == "enumeration"
}

// NewValue allocates a value of the structure name with the given integer
// fields set. It returns a pointer, suitable as a discriminator parent.
func (s *Set) NewValue(name string, values map[string]int64) (any, error) {
	decl, ok := s.decls[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "type", name)
	}
	info, ok := s.structs[name]
	if decl.Kind != "structure" || !ok {
		return nil, errors.Unsupported(errors.PhaseRuntime, name+" is not a structure")
	}

	v := reflect.New(s.reprs[name])
	for field, val := range values {
		goName, ok := info.FieldNames[field]
		if !ok {
			return nil, errors.NotFound(errors.PhaseRuntime, "field", name+"."+field)
		}
		if err := setInt(v.Elem().FieldByName(goName), val); err != nil {
			return nil, err.WithPath(name, field)
		}
	}
	return v.Interface(), nil
}

func setInt(f reflect.Value, val int64) *errors.Error {
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f.OverflowInt(val) {
			return errors.Overflow(errors.PhaseRuntime, nil, val, f.Type().String())
		}
		f.SetInt(val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if val < 0 || f.OverflowUint(uint64(val)) {
			return errors.Overflow(errors.PhaseRuntime, nil, val, f.Type().String())
		}
		f.SetUint(uint64(val))
	case reflect.Bool:
		f.SetBool(val != 0)
	default:
		return errors.Unsupported(errors.PhaseRuntime, "cannot set "+f.Type().String()+" from an integer")
	}
	return nil
}

// ParentOf names the structure whose fields DynamicSize reads for name,
// or "" when name has a static size.
func (s *Set) ParentOf(name string) string {
	decl, ok := s.decls[name]
	if !ok {
		return ""
	}
	switch decl.Kind {
	case "dynamic_array":
		return decl.Parent
	case "structure":
		if n := len(decl.Fields); n > 0 && decl.Fields[n-1].Count != "" {
			return name
		}
	}
	return ""
}

// DynamicSize returns the extent of name for a parent built from values.
// A dynamic array is counted against its declared parent. A structure is
// its own parent: the size covers its counted trailing member. Any other
// declaration has a static size and values are ignored.
func (s *Set) DynamicSize(name string, values map[string]int64) (uintptr, error) {
	decl, ok := s.decls[name]
	if !ok {
		return 0, errors.NotFound(errors.PhaseRuntime, "type", name)
	}
	d := s.descs[name]

	switch decl.Kind {
	case "dynamic_array":
		parent, err := s.NewValue(decl.Parent, values)
		if err != nil {
			return 0, err
		}
		return descriptor.DynamicSizeOf(d, parent, nil)
	case "structure":
		fixed, err := descriptor.SizeOf(d)
		if err != nil {
			return 0, err
		}
		if len(decl.Fields) == 0 || decl.Fields[len(decl.Fields)-1].Count == "" {
			return fixed, nil
		}
		trailing := decl.Fields[len(decl.Fields)-1:]
		parent, err := s.NewValue(name, values)
		if err != nil {
			return 0, err
		}
		member, _ := descriptor.Desugar(d).(*descriptor.Structure).FieldByName(trailing[0].Name)
		n, err := descriptor.DynamicSizeOf(member.Type, parent, nil)
		if err != nil {
			return 0, withPath(err, name, trailing[0].Name)
		}
		end, ok := abi.SafeAdd(s.structs[name].FieldOffs[trailing[0].Name], n)
		if !ok {
			return 0, errors.Overflow(errors.PhaseSize, []string{name}, n, "structure size")
		}
		return max(fixed, end), nil
	}
	return descriptor.SizeOf(d)
}

func (s *Set) build(decl *TypeDecl) (descriptor.Descriptor, error) {
	switch decl.Kind {
	case "structure":
		return s.buildStructure(decl)
	case "union":
		return s.buildUnion(decl)
	case "enumeration":
		underlying := descriptor.Canonical(primitives[decl.Underlying])
		opts := make([]descriptor.Option, len(decl.Options))
		for i, o := range decl.Options {
			if o.Value != nil {
				opts[i] = descriptor.FixedOption(o.Name, *o.Value)
			} else {
				opts[i] = descriptor.NewOption(o.Name)
			}
		}
		return descriptor.NewEnumeration(primitives[decl.Underlying], decl.Name, underlying, opts...), nil
	case "pointer":
		target, err := s.resolve(decl, "target", decl.Target)
		if err != nil {
			return nil, err
		}
		return descriptor.PointerTo(target), nil
	case "static_array":
		elem, err := s.resolve(decl, "element", decl.Element)
		if err != nil {
			return nil, err
		}
		return descriptor.StaticArrayOf(elem, decl.Length), nil
	case "dynamic_array":
		elem, err := s.resolve(decl, "element", decl.Element)
		if err != nil {
			return nil, err
		}
		return descriptor.NewDynamicArray(elem, s.selector(decl.Parent, decl.Count)), nil
	case "dynamic_variant":
		base, err := s.resolve(decl, "base", decl.Base)
		if err != nil {
			return nil, err
		}
		repr, err := descriptor.Representation(base)
		if err != nil {
			return nil, err
		}
		cands, err := s.candidates(decl)
		if err != nil {
			return nil, err
		}
		return descriptor.NewDynamicVariant(repr, s.selector(decl.Parent, decl.Selector), cands...), nil
	case "dynamic_variant_self":
		cands, err := s.candidates(decl)
		if err != nil {
			return nil, err
		}
		return descriptor.NewDynamicVariantSelf(s.reprs[decl.Base], s.selector(decl.Base, decl.Selector), cands...), nil
	case kindAligned:
		target, err := s.resolve(decl, "target", decl.Target)
		if err != nil {
			return nil, err
		}
		return descriptor.AlignedTo(uintptr(decl.Align), target), nil
	}
	return nil, declError(decl, "unknown kind %q", decl.Kind)
}

type trailingMember struct {
	elem  descriptor.Descriptor
	name  string
	count string
	align uintptr
}

func (s *Set) buildStructure(decl *TypeDecl) (descriptor.Descriptor, error) {
	b := layout.NewStructBuilder()

	var base descriptor.Descriptor
	if decl.Base != "" {
		base = s.descs[decl.Base]
		b.Add(baseMember, s.reprs[decl.Base], s.structs[decl.Base].Align)
	}

	fields := make([]descriptor.Field, 0, len(decl.Fields))
	var trailing *trailingMember
	for _, fd := range decl.Fields {
		d, err := s.resolve(decl, fd.Name, fd.Type)
		if err != nil {
			return nil, err
		}

		if fd.Count != "" {
			align, err := descriptor.AlignOf(d)
			if err != nil {
				return nil, err
			}
			if uintptr(fd.Align) > align {
				align = uintptr(fd.Align)
			}
			b.AddTrailing(fd.Name, align)
			trailing = &trailingMember{elem: d, name: fd.Name, count: fd.Count, align: uintptr(fd.Align)}
			continue
		}

		if fd.Align != 0 {
			d = descriptor.AlignedTo(uintptr(fd.Align), d)
		}
		repr, err := descriptor.Representation(d)
		if err != nil {
			return nil, withPath(err, decl.Name, fd.Name)
		}
		align, err := descriptor.AlignOf(d)
		if err != nil {
			return nil, withPath(err, decl.Name, fd.Name)
		}
		if !b.Add(fd.Name, repr, align) {
			return nil, errors.Overflow(errors.PhaseRepresent, []string{decl.Name, fd.Name}, fd.Type, "structure size")
		}
		fields = append(fields, descriptor.NewField(fd.Name, d))
	}

	repr, info := b.Build()
	s.reprs[decl.Name] = repr
	s.structs[decl.Name] = info

	if trailing != nil {
		var d descriptor.Descriptor = descriptor.NewDynamicArray(trailing.elem,
			descriptor.FieldCount(repr, info.FieldNames[trailing.count]))
		if trailing.align != 0 {
			d = descriptor.AlignedTo(trailing.align, d)
		}
		fields = append(fields, descriptor.NewField(trailing.name, d))
	}
	return overaligned(descriptor.NewStructure(repr, decl.Name, base, fields...), repr, info.Align), nil
}

// overaligned wraps d in an Aligned modifier when its synthesized layout
// needs a stronger alignment than the Go type carries.
func overaligned(d descriptor.Descriptor, repr reflect.Type, align uintptr) descriptor.Descriptor {
	if align > uintptr(repr.Align()) {
		return descriptor.AlignedTo(align, d)
	}
	return d
}

func (s *Set) buildUnion(decl *TypeDecl) (descriptor.Descriptor, error) {
	var size, align uintptr = 0, 1
	fields := make([]descriptor.Field, 0, len(decl.Fields))
	for _, fd := range decl.Fields {
		d, err := s.resolve(decl, fd.Name, fd.Type)
		if err != nil {
			return nil, err
		}
		if fd.Align != 0 {
			d = descriptor.AlignedTo(uintptr(fd.Align), d)
		}
		fs, err := descriptor.SizeOf(d)
		if err != nil {
			return nil, withPath(err, decl.Name, fd.Name)
		}
		fa, err := descriptor.AlignOf(d)
		if err != nil {
			return nil, withPath(err, decl.Name, fd.Name)
		}
		size = max(size, fs)
		align = max(align, fa)
		fields = append(fields, descriptor.NewField(fd.Name, d))
	}

	repr, ok := layout.Blob(size, align)
	if !ok {
		return nil, errors.Overflow(errors.PhaseRepresent, []string{decl.Name}, size, "union storage")
	}
	s.reprs[decl.Name] = repr
	u := descriptor.NewUnion(repr, decl.Name, s.selector(decl.Parent, decl.Selector), fields...)
	return overaligned(u, repr, align), nil
}

func (s *Set) candidates(decl *TypeDecl) ([]any, error) {
	out := make([]any, len(decl.Candidates))
	for i, c := range decl.Candidates {
		d, err := s.resolve(decl, "candidates", c)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// selector reads the integer field of a parent structure. A parent not
// built yet, typically the structure holding the selected member, is bound
// on first use.
func (s *Set) selector(parent, field string) descriptor.Discriminator {
	if info, ok := s.structs[parent]; ok {
		return descriptor.FieldCount(s.reprs[parent], info.FieldNames[field])
	}
	return descriptor.Deferred(func() descriptor.Discriminator {
		return descriptor.FieldCount(s.reprs[parent], s.structs[parent].FieldNames[field])
	})
}

func (s *Set) resolve(decl *TypeDecl, slot, ref string) (descriptor.Descriptor, error) {
	r, perr := parseRef(ref)
	if perr != nil {
		return nil, perr.WithPath(decl.Name, slot)
	}
	d, ok := r.resolve(func(name string) (descriptor.Descriptor, bool) {
		d, ok := s.descs[name]
		return d, ok
	})
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "type", r.root()).WithPath(decl.Name, slot)
	}
	return d, nil
}

func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithPath(path...)
	}
	return err
}
