package descriptor

import (
	"github.com/wippyai/typedesc/descriptor/internal/kind"
)

type Kind = kind.Kind

const (
	KindInvalid            = kind.Invalid
	KindPrimitive          = kind.Primitive
	KindStructure          = kind.Structure
	KindUnion              = kind.Union
	KindEnumeration        = kind.Enumeration
	KindDynamicVariant     = kind.DynamicVariant
	KindDynamicVariantSelf = kind.DynamicVariantSelf
	KindPointer            = kind.Pointer
	KindDynamicArray       = kind.DynamicArray
	KindStaticArray        = kind.StaticArray
	KindModifier           = kind.Modifier
)

// ParseKind maps a kind name such as "dynamic_array" to its tag.
func ParseKind(name string) (Kind, bool) {
	return kind.Parse(name)
}
