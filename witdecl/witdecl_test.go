package witdecl

import (
	stderrors "errors"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
)

func name(s string) *string { return &s }

func record(fields ...wit.Field) *wit.TypeDef {
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
}

func flagsOf(n int) *wit.TypeDef {
	fl := make([]wit.Flag, n)
	return &wit.TypeDef{Kind: &wit.Flags{Flags: fl}}
}

func enumOf(n int) *wit.TypeDef {
	cases := make([]wit.EnumCase, n)
	for i := range cases {
		cases[i].Name = "c" + strconv.Itoa(i)
	}
	return &wit.TypeDef{Kind: &wit.Enum{Cases: cases}}
}

func TestConvertLayout(t *testing.T) {
	tests := []struct {
		typ   wit.Type
		name  string
		size  uintptr
		align uintptr
	}{
		{name: "bool", typ: wit.Bool{}, size: 1, align: 1},
		{name: "s16", typ: wit.S16{}, size: 2, align: 2},
		{name: "u64", typ: wit.U64{}, size: 8, align: 8},
		{name: "f32", typ: wit.F32{}, size: 4, align: 4},
		{name: "char", typ: wit.Char{}, size: 4, align: 4},
		{name: "string", typ: wit.String{}, size: 8, align: 4},
		{name: "list", typ: &wit.TypeDef{Kind: &wit.List{Type: wit.U64{}}}, size: 8, align: 4},
		{
			name: "record u8 u32",
			typ:  record(wit.Field{Name: "a", Type: wit.U8{}}, wit.Field{Name: "b", Type: wit.U32{}}),
			size: 8, align: 4,
		},
		{
			name: "tuple u8 u64 u8",
			typ:  &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U64{}, wit.U8{}}}},
			size: 24, align: 8,
		},
		{name: "empty record", typ: record(), size: 0, align: 1},
		{name: "option u8", typ: &wit.TypeDef{Kind: &wit.Option{Type: wit.U8{}}}, size: 2, align: 1},
		{name: "option u32", typ: &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}, size: 8, align: 4},
		{name: "option u64", typ: &wit.TypeDef{Kind: &wit.Option{Type: wit.U64{}}}, size: 16, align: 8},
		{
			name: "result u32 string",
			typ:  &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: wit.String{}}},
			size: 12, align: 4,
		},
		{name: "result unit unit", typ: &wit.TypeDef{Kind: &wit.Result{}}, size: 1, align: 1},
		{
			name: "variant none some",
			typ: &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
				{Name: "none"},
				{Name: "some", Type: wit.U32{}},
			}}},
			size: 8, align: 4,
		},
		{
			name: "variant of units",
			typ:  &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{{Name: "a"}, {Name: "b"}}}},
			size: 1, align: 1,
		},
		{name: "empty variant", typ: &wit.TypeDef{Kind: &wit.Variant{}}, size: 0, align: 1},
		{name: "enum 3", typ: enumOf(3), size: 1, align: 1},
		{name: "enum 300", typ: enumOf(300), size: 2, align: 2},
		{name: "flags 0", typ: flagsOf(0), size: 0, align: 1},
		{name: "flags 8", typ: flagsOf(8), size: 1, align: 1},
		{name: "flags 9", typ: flagsOf(9), size: 2, align: 2},
		{name: "flags 32", typ: flagsOf(32), size: 4, align: 4},
		{name: "flags 33", typ: flagsOf(33), size: 8, align: 8},
		{name: "flags 65", typ: flagsOf(65), size: 12, align: 4},
		{name: "own", typ: &wit.TypeDef{Kind: &wit.Own{}}, size: 4, align: 4},
		{name: "borrow", typ: &wit.TypeDef{Kind: &wit.Borrow{}}, size: 4, align: 4},
		{name: "alias", typ: &wit.TypeDef{Kind: wit.U32{}}, size: 4, align: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Convert(tt.typ)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			size, err := descriptor.SizeOf(d)
			if err != nil {
				t.Fatalf("SizeOf: %v", err)
			}
			align, err := descriptor.AlignOf(d)
			if err != nil {
				t.Fatalf("AlignOf: %v", err)
			}
			if size != tt.size || align != tt.align {
				t.Errorf("layout = %d/%d, want %d/%d", size, align, tt.size, tt.align)
			}
			if err := descriptor.Validate(d); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestNestedRecord(t *testing.T) {
	inner := record(wit.Field{Name: "x", Type: wit.U32{}}, wit.Field{Name: "y", Type: wit.U64{}})
	outer := record(wit.Field{Name: "inner", Type: inner}, wit.Field{Name: "flag", Type: wit.Bool{}})

	d, err := Convert(outer)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := descriptor.Desugar(d).(*descriptor.Structure)
	if !ok {
		t.Fatalf("got %T, want *descriptor.Structure", d)
	}
	if got := s.Repr().Size(); got != 24 {
		t.Errorf("size = %d, want 24", got)
	}

	var offs []uintptr
	for i := 0; i < s.Repr().NumField(); i++ {
		offs = append(offs, s.Repr().Field(i).Offset)
	}
	if diff := cmp.Diff([]uintptr{0, 16}, offs[:2]); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name.String())
	}
	if diff := cmp.Diff([]string{"inner", "flag"}, names); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestVariantDiscriminator(t *testing.T) {
	d, err := Convert(&wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
		{Name: "none"},
		{Name: "some", Type: wit.U32{}},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := d.(*descriptor.DynamicVariantSelf)
	if !ok {
		t.Fatalf("got %T, want *descriptor.DynamicVariantSelf", d)
	}
	if len(v.Candidates()) != 2 {
		t.Fatalf("candidates = %d, want 2", len(v.Candidates()))
	}
	if v.Candidates()[0] != Unit {
		t.Errorf("candidate 0 = %v, want unit", v.Candidates()[0])
	}

	val := reflect.New(v.Base())
	val.Elem().FieldByName("Disc").SetUint(1)
	n, err := v.Discriminator().Call(val.Interface())
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if n != 1 {
		t.Errorf("selected %d, want 1", n)
	}
}

func TestEnumeration(t *testing.T) {
	td := &wit.TypeDef{Name: name("level"), Kind: &wit.Enum{Cases: []wit.EnumCase{
		{Name: "low"}, {Name: "mid"}, {Name: "high"},
	}}}
	d, err := Convert(td)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := d.(*descriptor.Enumeration)
	if !ok {
		t.Fatalf("got %T, want *descriptor.Enumeration", d)
	}
	if got := e.Name().String(); got != "level" {
		t.Errorf("name = %q, want level", got)
	}
	if diff := cmp.Diff([]int64{0, 1, 2}, e.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestConverterCache(t *testing.T) {
	td := record(wit.Field{Name: "a", Type: wit.U8{}})
	c := NewConverter()
	first, err := c.Convert(td)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Convert(td)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("typedef converted twice")
	}
	s1, _ := c.Convert(wit.String{})
	s2, _ := c.Convert(&wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}})
	if s1 != s2 {
		t.Error("string and list should share the slice header")
	}
}

func TestConvertName(t *testing.T) {
	d, err := ConvertName("u16")
	if err != nil {
		t.Fatal(err)
	}
	if d != descriptor.Of[uint16]() {
		t.Errorf("got %v, want u16 primitive", d)
	}

	if _, err := ConvertName("not a type"); err == nil {
		t.Error("expected parse error")
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		typ  wit.Type
		name string
		path []string
	}{
		{name: "resource", typ: &wit.TypeDef{Kind: &wit.Resource{}}},
		{
			name: "nested resource",
			typ:  record(wit.Field{Name: "r", Type: &wit.TypeDef{Kind: &wit.Resource{}}}),
			path: []string{"r"},
		},
		{
			name: "list of resource",
			typ:  &wit.TypeDef{Kind: &wit.List{Type: &wit.TypeDef{Kind: &wit.Resource{}}}},
			path: []string{"list"},
		},
		{
			name: "option case",
			typ:  &wit.TypeDef{Kind: &wit.Option{Type: &wit.TypeDef{Kind: &wit.Resource{}}}},
			path: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.typ)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Kind: errors.KindUnsupported}) {
				t.Errorf("error = %v, want unsupported", err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error type = %T", err)
			}
			if diff := cmp.Diff(tt.path, e.Path); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertResolve(t *testing.T) {
	res := &wit.Resolve{TypeDefs: []*wit.TypeDef{
		{Name: name("point"), Kind: &wit.Record{Fields: []wit.Field{{Name: "x", Type: wit.S32{}}, {Name: "y", Type: wit.S32{}}}}},
		{Kind: &wit.Option{Type: wit.U8{}}},
		{Name: name("handle"), Kind: &wit.Resource{}},
		{Name: name("id"), Kind: wit.U64{}},
	}}

	got, err := ConvertResolve(res)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, n := range got {
		names = append(names, n.Name)
	}
	if diff := cmp.Diff([]string{"id", "point"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if _, err := ConvertResolve(nil); err == nil {
		t.Error("expected error for nil resolve")
	}

	bad := &wit.Resolve{TypeDefs: []*wit.TypeDef{
		{Name: name("broken"), Kind: &wit.Record{Fields: []wit.Field{{Name: "r", Type: &wit.TypeDef{Kind: &wit.Resource{}}}}}},
	}}
	_, err = ConvertResolve(bad)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v", err)
	}
	if diff := cmp.Diff([]string{"broken", "r"}, e.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("error = %v, want load error", err)
	}
}
