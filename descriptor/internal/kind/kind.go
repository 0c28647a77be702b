package kind

// Kind tags every descriptor. Values are stable 64-bit tags (ASCII packed
// big-endian) so they survive serialization of descriptor graphs.
type Kind uint64

const (
	Invalid            Kind = 0
	Primitive          Kind = 0x5052494D54495645 // "PRIMTIVE"
	Structure          Kind = 0x5354525543545245 // "STRUCTRE"
	Union              Kind = 0x554E494F4E303030 // "UNION000"
	Enumeration        Kind = 0x454E554D5241544E // "ENUMRATN"
	DynamicVariant     Kind = 0x44594E414D494330 // "DYNAMIC0"
	DynamicVariantSelf Kind = 0x44594E414D494353 // "DYNAMICS"
	Pointer            Kind = 0x504F494E54455230 // "POINTER0"
	DynamicArray       Kind = 0x44594E4143415252 // "DYNACARR"
	StaticArray        Kind = 0x5354415443415252 // "STATCARR"
	Modifier           Kind = 0x4D4F444946494552 // "MODIFIER"
)

var kindNames = map[Kind]string{
	Invalid:            "invalid",
	Primitive:          "primitive",
	Structure:          "structure",
	Union:              "union",
	Enumeration:        "enumeration",
	DynamicVariant:     "dynamic_variant",
	DynamicVariantSelf: "dynamic_variant_self",
	Pointer:            "pointer",
	DynamicArray:       "dynamic_array",
	StaticArray:        "static_array",
	Modifier:           "modifier",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Parse maps a kind name back to its tag.
func Parse(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	if !ok || k == Invalid {
		return Invalid, false
	}
	return k, true
}

// IsComposite reports whether descriptors of this kind carry child descriptors.
func (k Kind) IsComposite() bool {
	switch k {
	case Structure, Union, Enumeration, DynamicVariant, DynamicVariantSelf,
		Pointer, DynamicArray, StaticArray, Modifier:
		return true
	default:
		return false
	}
}

// HasDiscriminator reports whether descriptors of this kind store a
// runtime discriminator.
func (k Kind) HasDiscriminator() bool {
	switch k {
	case Union, DynamicVariant, DynamicVariantSelf, DynamicArray:
		return true
	default:
		return false
	}
}
