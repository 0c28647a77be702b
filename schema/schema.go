package schema

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
	"github.com/wippyai/typedesc/internal/abi"
	"github.com/wippyai/typedesc/internal/layout"
)

// File is a parsed declaration file.
type File struct {
	// Types lists the declarations. Later declarations may be referenced
	// by earlier ones; order only affects listing.
	Types []TypeDecl `yaml:"types"`

	// Source names the file in error messages.
	Source string `yaml:"-"`
}

// TypeDecl declares one named descriptor. Which keys apply depends on Kind.
type TypeDecl struct {
	Name string `yaml:"name"`

	// Kind is one of structure, union, enumeration, pointer, static_array,
	// dynamic_array, dynamic_variant, dynamic_variant_self or aligned.
	Kind string `yaml:"kind"`

	// Base is the inherited structure of a structure, or the storage type
	// of a dynamic variant.
	Base string `yaml:"base,omitempty"`

	// Fields of a structure or union.
	Fields []FieldDecl `yaml:"fields,omitempty"`

	// Underlying integer type and options of an enumeration.
	Underlying string       `yaml:"underlying,omitempty"`
	Options    []OptionDecl `yaml:"options,omitempty"`

	// Target of a pointer or aligned declaration.
	Target string `yaml:"target,omitempty"`

	// Element and Length of an array. Length applies to static arrays.
	Element string `yaml:"element,omitempty"`
	Length  int    `yaml:"length,omitempty"`

	// Parent names the structure whose value drives a union selector, a
	// dynamic array count or a dynamic variant selector.
	Parent   string `yaml:"parent,omitempty"`
	Count    string `yaml:"count,omitempty"`
	Selector string `yaml:"selector,omitempty"`

	Candidates []string `yaml:"candidates,omitempty"`

	// Align of an aligned declaration.
	Align uint64 `yaml:"align,omitempty"`
}

// FieldDecl is a structure or union member. A member with Count is a
// trailing dynamic array of Type whose length is the named sibling field.
type FieldDecl struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Align uint64 `yaml:"align,omitempty"`
	Count string `yaml:"count,omitempty"`
}

// OptionDecl is an enumeration option. Options without a value follow the
// previous one.
type OptionDecl struct {
	Value *int64 `yaml:"value,omitempty"`
	Name  string `yaml:"name"`
}

const kindAligned = "aligned"

// Load reads and parses a declaration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return Parse(data, path)
}

// Parse decodes declarations and validates them. source is used only in
// error messages.
func Parse(data []byte, source string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.ParseFailed(source, err)
	}
	f.Source = source
	if err := f.Validate(); err != nil {
		return nil, err
	}
	Logger().Debug("declarations loaded", zap.String("source", source), zap.Int("types", len(f.Types)))
	return &f, nil
}

// Validate checks every declaration for missing keys, unknown references
// and cycles.
func (f *File) Validate() error {
	if len(f.Types) == 0 {
		return errors.InvalidInput(errors.PhaseValidate, "no types declared")
	}

	seen := make(map[string]bool, len(f.Types))
	for i := range f.Types {
		decl := &f.Types[i]
		if !isIdent(decl.Name) {
			return declError(decl, "invalid type name %q", decl.Name)
		}
		if _, ok := primitives[decl.Name]; ok {
			return declError(decl, "type name shadows a primitive")
		}
		if seen[decl.Name] {
			return errors.Duplicate(errors.PhaseValidate, "type", decl.Name)
		}
		seen[decl.Name] = true
	}

	for i := range f.Types {
		if err := f.validateDecl(&f.Types[i]); err != nil {
			return err
		}
	}

	_, err := f.order()
	return err
}

func (f *File) validateDecl(decl *TypeDecl) error {
	if _, ok := kindOf(decl.Kind); !ok {
		return declError(decl, "unknown kind %q", decl.Kind)
	}
	switch decl.Kind {
	case "structure":
		if decl.Base != "" {
			if base := f.lookup(decl.Base); base == nil || base.Kind != "structure" {
				return declError(decl, "base %q is not a declared structure", decl.Base)
			}
		}
		return f.validateFields(decl, true)
	case "union":
		if len(decl.Fields) == 0 {
			return declError(decl, "union without fields")
		}
		if err := f.validateSelector(decl, decl.Parent, decl.Selector); err != nil {
			return err
		}
		return f.validateFields(decl, false)
	case "enumeration":
		if !integers[decl.Underlying] {
			return declError(decl, "underlying %q is not an integer type", decl.Underlying)
		}
		names := make(map[string]bool, len(decl.Options))
		for _, o := range decl.Options {
			if o.Name == "" || names[o.Name] {
				return declError(decl, "invalid or duplicate option %q", o.Name)
			}
			names[o.Name] = true
		}
	case "pointer":
		return f.validateRef(decl, "target", decl.Target)
	case "static_array":
		if decl.Length < 0 {
			return declError(decl, "negative length %d", decl.Length)
		}
		return f.validateRef(decl, "element", decl.Element)
	case "dynamic_array":
		if err := f.validateRef(decl, "element", decl.Element); err != nil {
			return err
		}
		return f.validateSelector(decl, decl.Parent, decl.Count)
	case "dynamic_variant":
		if err := f.validateRef(decl, "base", decl.Base); err != nil {
			return err
		}
		if err := f.validateSelector(decl, decl.Parent, decl.Selector); err != nil {
			return err
		}
		return f.validateCandidates(decl)
	case "dynamic_variant_self":
		if err := f.validateSelector(decl, decl.Base, decl.Selector); err != nil {
			return err
		}
		return f.validateCandidates(decl)
	case kindAligned:
		if !abi.IsPowerOfTwo(uintptr(decl.Align)) {
			return declError(decl, "alignment %d is not a power of two", decl.Align)
		}
		return f.validateRef(decl, "target", decl.Target)
	}
	return nil
}

func (f *File) validateFields(decl *TypeDecl, trailing bool) error {
	names := make(map[string]bool, len(decl.Fields))
	goNames := make(map[string]bool, len(decl.Fields))
	for i, fd := range decl.Fields {
		path := []string{decl.Name, fd.Name}
		if !isIdent(fd.Name) {
			return fieldError(path, "invalid field name %q", fd.Name)
		}
		goName := layout.ExportedName(fd.Name, 0)
		if names[fd.Name] || goNames[goName] {
			return errors.Duplicate(errors.PhaseValidate, "field", fd.Name).WithPath(decl.Name)
		}
		names[fd.Name] = true
		goNames[goName] = true

		if err := f.validateRef(decl, fd.Name, fd.Type); err != nil {
			return err
		}
		if fd.Align != 0 && !abi.IsPowerOfTwo(uintptr(fd.Align)) {
			return fieldError(path, "alignment %d is not a power of two", fd.Align)
		}
		if trailing && i != len(decl.Fields)-1 && f.isDynamicArray(fd.Type) {
			return fieldError(path, "dynamic member must be the last field")
		}
		if fd.Count == "" {
			continue
		}
		if !trailing {
			return fieldError(path, "counted member outside a structure")
		}
		if i != len(decl.Fields)-1 {
			return fieldError(path, "counted member must be the last field")
		}
		if err := f.checkCountField(decl, fd.Count, path); err != nil {
			return err
		}
	}
	return nil
}

// isDynamicArray reports whether ref names a declared dynamic array,
// directly or through aligned declarations.
func (f *File) isDynamicArray(ref string) bool {
	seen := make(map[string]bool)
	for !seen[ref] {
		seen[ref] = true
		decl := f.lookup(ref)
		if decl == nil {
			return false
		}
		switch decl.Kind {
		case "dynamic_array":
			return true
		case kindAligned:
			ref = decl.Target
		default:
			return false
		}
	}
	return false
}

// validateSelector checks that parent is a declared structure with an
// integer field named field.
func (f *File) validateSelector(decl *TypeDecl, parent, field string) error {
	p := f.lookup(parent)
	if p == nil || p.Kind != "structure" {
		return declError(decl, "parent %q is not a declared structure", parent)
	}
	return f.checkCountField(p, field, []string{decl.Name})
}

func (f *File) checkCountField(parent *TypeDecl, field string, path []string) error {
	for _, fd := range parent.Fields {
		if fd.Name != field {
			continue
		}
		if !f.isInteger(fd.Type) || fd.Count != "" {
			return fieldError(path, "%s.%s is not an integer field", parent.Name, field)
		}
		return nil
	}
	return errors.NotFound(errors.PhaseValidate, "field", parent.Name+"."+field).WithPath(path...)
}

func (f *File) validateCandidates(decl *TypeDecl) error {
	if len(decl.Candidates) == 0 {
		return declError(decl, "variant without candidates")
	}
	for _, c := range decl.Candidates {
		if err := f.validateRef(decl, "candidates", c); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) validateRef(decl *TypeDecl, slot, ref string) error {
	r, err := parseRef(ref)
	if err != nil {
		return err.WithPath(decl.Name, slot)
	}
	name := r.root()
	if _, ok := primitives[name]; ok {
		return nil
	}
	if f.lookup(name) == nil {
		return errors.NotFound(errors.PhaseValidate, "type", name).WithPath(decl.Name, slot)
	}
	return nil
}

// isInteger reports whether ref names an integer primitive or an
// enumeration.
func (f *File) isInteger(ref string) bool {
	if integers[ref] {
		return true
	}
	decl := f.lookup(ref)
	return decl != nil && decl.Kind == "enumeration"
}

func (f *File) lookup(name string) *TypeDecl {
	for i := range f.Types {
		if f.Types[i].Name == name {
			return &f.Types[i]
		}
	}
	return nil
}

// deps lists the declared names decl must be built after. A selector or
// count parent is not one of them: it is read at runtime, so a member may
// select on the structure containing it.
func (f *File) deps(decl *TypeDecl) []string {
	refs := []string{decl.Base, decl.Underlying, decl.Target, decl.Element}
	for _, fd := range decl.Fields {
		refs = append(refs, fd.Type)
	}
	refs = append(refs, decl.Candidates...)

	var out []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		r, err := parseRef(ref)
		if err != nil {
			continue
		}
		if f.lookup(r.root()) != nil {
			out = append(out, r.root())
		}
	}
	return out
}

// order sorts declarations so that every declaration follows its
// dependencies. Cycles are rejected with the chain that closes them.
func (f *File) order() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(f.Types))
	out := make([]string, 0, len(f.Types))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
				}
			}
			chain := append(append([]string(nil), stack[start:]...), name)
			return errors.Cycle(errors.PhaseValidate, chain)
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range f.deps(f.lookup(name)) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		out = append(out, name)
		return nil
	}

	for _, decl := range f.Types {
		if err := visit(decl.Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func declError(decl *TypeDecl, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
		Path(decl.Name).
		Detail(format, args...).
		Build()
}

func fieldError(path []string, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
		Path(path...).
		Detail(format, args...).
		Build()
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// kindOf maps a declaration kind to its descriptor kind. aligned maps to
// the modifier kind.
func kindOf(name string) (descriptor.Kind, bool) {
	if name == kindAligned {
		return descriptor.KindModifier, true
	}
	k, ok := descriptor.ParseKind(name)
	if !ok || k == descriptor.KindPrimitive || k == descriptor.KindModifier {
		return descriptor.KindInvalid, false
	}
	return k, true
}
