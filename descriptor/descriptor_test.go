package descriptor

import (
	"reflect"
	"testing"
)

type header struct {
	Count uint32
	Kind  uint16
	Flags uint16
}

type extended struct {
	header
	Extra uint64
}

func TestStructure(t *testing.T) {
	base := StructureOf[header]("header", nil,
		NewField("count", reflect.TypeFor[uint32]()),
		NewField("kind", reflect.TypeFor[uint16]()),
		NewField("flags", reflect.TypeFor[uint16]()),
	)
	ext := StructureOf[extended]("extended", base,
		NewField("extra", reflect.TypeFor[uint64]()),
	)

	if base.Kind() != KindStructure {
		t.Errorf("Kind = %v, want structure", base.Kind())
	}
	if base.Base() != nil {
		t.Errorf("Base = %v, want nil", base.Base())
	}
	if ext.Base() != Descriptor(base) {
		t.Errorf("Base = %v, want header", ext.Base())
	}
	if got := ext.String(); got != "structure extended" {
		t.Errorf("String = %q", got)
	}
	if ext.NumField() != 1 {
		t.Errorf("NumField = %d, want 1", ext.NumField())
	}

	all := ext.AllFields()
	want := []string{"count", "kind", "flags", "extra"}
	if len(all) != len(want) {
		t.Fatalf("AllFields len = %d, want %d", len(all), len(want))
	}
	for i, f := range all {
		if f.Name.String() != want[i] {
			t.Errorf("AllFields[%d] = %q, want %q", i, f.Name.String(), want[i])
		}
	}

	f, ok := base.FieldByName("kind")
	if !ok || f.Type != Of[uint16]() {
		t.Errorf("FieldByName(kind) = %v, %v", f.Type, ok)
	}
	if _, ok := base.FieldByName("missing"); ok {
		t.Error("FieldByName(missing) should fail")
	}

	fields := base.Fields()
	fields[0] = NewField("clobbered", nil)
	if base.Field(0).Name.String() != "count" {
		t.Error("Fields must return a copy")
	}
}

func TestEnumerationValues(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []int64
	}{
		{"implicit", []Option{NewOption("a"), NewOption("b"), NewOption("c")}, []int64{0, 1, 2}},
		{"fixed resets", []Option{NewOption("red"), FixedOption("green", 5), NewOption("blue")}, []int64{0, 5, 6}},
		{"fixed first", []Option{FixedOption("x", -2), NewOption("y")}, []int64{-2, -1}},
		{"empty", nil, []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := EnumerationOf[uint8]("e", reflect.TypeFor[uint8](), tc.opts...)
			got := e.Values()
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Values = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEnumerationAccessors(t *testing.T) {
	e := EnumerationOf[uint8]("color", reflect.TypeFor[uint8](), NewOption("red"))
	if e.Underlying() != Of[uint8]() {
		t.Errorf("Underlying = %v", e.Underlying())
	}
	if e.Repr() != reflect.TypeFor[uint8]() {
		t.Errorf("Repr = %v", e.Repr())
	}
	if e.Name().String() != "color" {
		t.Errorf("Name = %q", e.Name().String())
	}
	if len(e.Options()) != 1 || e.Options()[0].Name.String() != "red" {
		t.Errorf("Options = %v", e.Options())
	}
}

func TestUnion(t *testing.T) {
	type storage struct{ Bits uint64 }

	u := UnionOf[storage, header]("value",
		func(h *header) int { return int(h.Kind) },
		NewField("int", reflect.TypeFor[int64]()),
		NewField("float", reflect.TypeFor[float64]()),
	)
	if u.Kind() != KindUnion {
		t.Errorf("Kind = %v", u.Kind())
	}
	if u.Parent() != reflect.TypeFor[header]() {
		t.Errorf("Parent = %v", u.Parent())
	}
	if u.NumField() != 2 {
		t.Errorf("NumField = %d", u.NumField())
	}
	sel, err := u.Discriminator().Call(&header{Kind: 1})
	if err != nil || sel != 1 {
		t.Errorf("selector = %d, %v", sel, err)
	}
	if f, ok := u.FieldByName("float"); !ok || f.Type != Of[float64]() {
		t.Errorf("FieldByName(float) = %v, %v", f.Type, ok)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		desc Descriptor
		want string
	}{
		{Of[int32](), "primitive<int32>"},
		{Of[*int32](), "pointer<primitive<int32>>"},
		{Of[[4]uint8](), "static_array<primitive<uint8>, 4>"},
		{AlignedTo(16, Of[int32]()), "aligned<16, primitive<int32>>"},
		{PointerTo(nil), "pointer<nil>"},
		{Of[string](), "unresolved<string>"},
		{ResolveDecl(42), "unresolved<int>"},
		{DynamicArrayOf(Of[uint16](), func(h *header) int { return 0 }), "dynamic_array<primitive<uint16>>"},
	}
	for _, tc := range tests {
		if got := tc.desc.String(); got != tc.want {
			t.Errorf("String = %q, want %q", got, tc.want)
		}
	}
}

func TestInterning(t *testing.T) {
	if PointerTo(Of[int8]()) != PointerTo(Of[int8]()) {
		t.Error("pointers to the same target must be identical")
	}
	if StaticArrayOf(Of[int8](), 3) != StaticArrayOf(Of[int8](), 3) {
		t.Error("equal static arrays must be identical")
	}
	if StaticArrayOf(Of[int8](), 3) == StaticArrayOf(Of[int8](), 4) {
		t.Error("arrays of different length must differ")
	}
	if AlignedTo(8, Of[int8]()) != AlignedTo(8, Of[int8]()) {
		t.Error("equal aligned modifiers must be identical")
	}
	if NewPrimitive(reflect.TypeFor[uint32]()) != PrimitiveOf[uint32]() {
		t.Error("primitives must be interned per type")
	}
}

func TestDynamicVariants(t *testing.T) {
	type tagged struct {
		Tag  uint8
		Data [8]byte
	}

	self := DynamicVariantSelfOf[tagged](func(v *tagged) int { return int(v.Tag) },
		reflect.TypeFor[uint32](), reflect.TypeFor[float64]())
	if self.Kind() != KindDynamicVariantSelf {
		t.Errorf("Kind = %v", self.Kind())
	}
	if self.Base() != reflect.TypeFor[tagged]() {
		t.Errorf("Base = %v", self.Base())
	}
	cands := self.Candidates()
	if len(cands) != 2 || cands[0] != Of[uint32]() || cands[1] != Of[float64]() {
		t.Errorf("Candidates = %v", cands)
	}

	other := DynamicVariantOf[[8]byte, header](func(h *header) int { return int(h.Kind) },
		reflect.TypeFor[int64]())
	if other.Kind() != KindDynamicVariant {
		t.Errorf("Kind = %v", other.Kind())
	}
	if other.Parent() != reflect.TypeFor[header]() {
		t.Errorf("Parent = %v", other.Parent())
	}
	if other.Base() != reflect.TypeFor[[8]byte]() {
		t.Errorf("Base = %v", other.Base())
	}
}
