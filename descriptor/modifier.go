package descriptor

import (
	"strconv"
	"strings"
)

// ModifierID tags a modifier family. IDs are eight ASCII bytes packed into
// a uint64, like kinds.
type ModifierID uint64

const (
	ModAligned ModifierID = 0x414C49474E454430 // "ALIGNED0"
)

// String renders the packed ASCII tag, trimming trailing zero digits used
// as padding.
func (id ModifierID) String() string {
	var b [8]byte
	for i := range b {
		b[i] = byte(id >> (56 - 8*i))
	}
	return strings.ToLower(strings.TrimRight(string(b[:]), "0\x00"))
}

// Modifier wraps an inner descriptor and adds a property to it. Modifiers
// stack; the outermost is applied last.
type Modifier interface {
	Descriptor
	ModifierID() ModifierID
	Inner() Descriptor
}

// Mod is the embeddable base of a modifier.
type Mod struct {
	inner Descriptor
	id    ModifierID
}

func NewMod(id ModifierID, decl any) Mod {
	return Mod{id: id, inner: ResolveDecl(decl)}
}

func (m Mod) Kind() Kind             { return KindModifier }
func (m Mod) ModifierID() ModifierID { return m.id }
func (m Mod) Inner() Descriptor      { return m.inner }
func (Mod) descriptor()              {}

func (m Mod) String() string {
	return m.id.String() + "<" + describe(m.inner) + ">"
}

// Aligned raises the alignment of its inner descriptor. Its size is the
// inner size; the alignment is what placement inside a structure honors.
type Aligned struct {
	Mod
	alignment uintptr
}

type alignedKey struct {
	inner     Descriptor
	alignment uintptr
}

// AlignedTo returns the modifier aligning decl to n bytes. n is checked by
// validation, not here, so that errors carry the slot path.
func AlignedTo(n uintptr, decl any) *Aligned {
	inner := ResolveDecl(decl)
	if !internable(inner) {
		return &Aligned{Mod: Mod{id: ModAligned, inner: inner}, alignment: n}
	}
	key := alignedKey{inner: inner, alignment: n}
	if a, ok := aligned.Load(key); ok {
		return a.(*Aligned)
	}
	a, _ := aligned.LoadOrStore(key, &Aligned{Mod: Mod{id: ModAligned, inner: inner}, alignment: n})
	return a.(*Aligned)
}

func (a *Aligned) Alignment() uintptr { return a.alignment }

func (a *Aligned) String() string {
	return "aligned<" + strconv.FormatUint(uint64(a.alignment), 10) + ", " + describe(a.inner) + ">"
}

// IsModifier reports whether d is a modifier.
func IsModifier(d Descriptor) bool {
	if isNil(d) {
		return false
	}
	_, ok := d.(Modifier)
	return ok && d.Kind() == KindModifier
}

// HasModifier reports whether id appears anywhere in d's modifier chain.
// The search stops at the first non-modifier.
func HasModifier(id ModifierID, d Descriptor) bool {
	for IsModifier(d) {
		m := d.(Modifier)
		if m.ModifierID() == id {
			return true
		}
		d = m.Inner()
	}
	return false
}

// Desugar strips every modifier from d.
func Desugar(d Descriptor) Descriptor {
	for IsModifier(d) {
		d = d.(Modifier).Inner()
	}
	return d
}

// Modifiers lists the modifier chain of d from the outermost inward.
func Modifiers(d Descriptor) []ModifierID {
	var ids []ModifierID
	for IsModifier(d) {
		m := d.(Modifier)
		ids = append(ids, m.ModifierID())
		d = m.Inner()
	}
	return ids
}
