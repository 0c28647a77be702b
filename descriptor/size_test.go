package descriptor

import (
	"errors"
	"reflect"
	"testing"
	"unsafe"

	tderrors "github.com/wippyai/typedesc/errors"
)

type dims struct {
	Rows int32
	Cols int32
}

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want uintptr
	}{
		{"u8", Of[uint8](), 1},
		{"i64", Of[int64](), 8},
		{"pointer", Of[*int16](), unsafe.Sizeof(uintptr(0))},
		{"static array", Of[[3]uint32](), 12},
		{"nested static array", Of[[2][3]uint16](), 12},
		{"aligned keeps size", AlignedTo(16, reflect.TypeFor[int32]()), 4},
		{"structure is its repr", StructureOf[dims]("dims", nil), 8},
		{"enumeration", EnumerationOf[uint16]("e", reflect.TypeFor[uint16]()), 2},
		{"void pointer", PointerTo(nil), unsafe.Sizeof(uintptr(0))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SizeOf(tc.desc)
			if err != nil {
				t.Fatalf("SizeOf: %v", err)
			}
			if got != tc.want {
				t.Errorf("SizeOf = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSizeOfDynamic(t *testing.T) {
	arr := DynamicArrayOf(reflect.TypeFor[int32](), func(d *dims) int { return int(d.Rows) })

	tests := []struct {
		name string
		desc Descriptor
	}{
		{"dynamic array", arr},
		{"aligned dynamic array", AlignedTo(16, arr)},
		{"static array of dynamic arrays", StaticArrayOf(arr, 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SizeOf(tc.desc)
			if !errors.Is(err, ErrDynamicSize) {
				t.Fatalf("SizeOf error = %v, want dynamic size", err)
			}
			var e *tderrors.Error
			if !errors.As(err, &e) || e.Detail != "cannot take size of a dynamic array" {
				t.Errorf("error = %v", err)
			}
			if !IsDynamic(tc.desc) {
				t.Error("IsDynamic = false")
			}
		})
	}

	if IsDynamic(Of[[4]int32]()) {
		t.Error("static array reported dynamic")
	}
}

func TestAlignOf(t *testing.T) {
	arr := DynamicArrayOf(reflect.TypeFor[uint64](), func(d *dims) int { return int(d.Rows) })

	tests := []struct {
		name string
		desc Descriptor
		want uintptr
	}{
		{"natural", Of[uint16](), 2},
		{"aligned", AlignedTo(16, reflect.TypeFor[int32]()), 16},
		{"outermost wins", AlignedTo(4, AlignedTo(64, reflect.TypeFor[int8]())), 4},
		{"aligned below natural", AlignedTo(1, reflect.TypeFor[uint64]()), 1},
		{"dynamic array aligns as element", arr, 8},
		{"through other modifiers", tracedOf(AlignedTo(32, reflect.TypeFor[int8]())), 32},
		{"structure", StructureOf[dims]("dims", nil), 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AlignOf(tc.desc)
			if err != nil {
				t.Fatalf("AlignOf: %v", err)
			}
			if got != tc.want {
				t.Errorf("AlignOf = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRepresentation(t *testing.T) {
	inner := DynamicArrayOf(reflect.TypeFor[int32](), func(d *dims) int { return int(d.Cols) })
	outer := DynamicArrayOf(inner, func(d *dims) int { return int(d.Rows) })

	tests := []struct {
		name string
		desc Descriptor
		want reflect.Type
	}{
		{"primitive", Of[float32](), reflect.TypeFor[float32]()},
		{"aligned is transparent", AlignedTo(16, reflect.TypeFor[int32]()), reflect.TypeFor[int32]()},
		{"pointer", Of[*[2]int8](), reflect.TypeFor[*[2]int8]()},
		{"void pointer", PointerTo(nil), reflect.TypeFor[unsafe.Pointer]()},
		{"opaque byte pointer", Of[*byte](), reflect.TypeFor[*byte]()},
		{"dynamic array marker", inner, reflect.TypeFor[[0]int32]()},
		{"nested dynamic array", outer, reflect.TypeFor[[0][0]int32]()},
		{"pointer to structure", PointerTo(StructureOf[dims]("dims", nil)), reflect.TypeFor[*dims]()},
		{"variant base", DynamicVariantSelfOf[dims](func(d *dims) int { return 0 }), reflect.TypeFor[dims]()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Representation(tc.desc)
			if err != nil {
				t.Fatalf("Representation: %v", err)
			}
			if got != tc.want {
				t.Errorf("Representation = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := Representation(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("Representation(nil) error = %v", err)
	}
	if _, err := Representation(PointerTo(Of[string]())); !errors.Is(err, ErrInvalidDescription) {
		t.Errorf("pointer to unresolved error = %v", err)
	}
}

func TestDynamicSizeOf(t *testing.T) {
	inner := DynamicArrayOf(reflect.TypeFor[int32](), func(d *dims) int { return int(d.Cols) })
	outer := DynamicArrayOf(inner, func(d *dims) int { return int(d.Rows) })

	t.Run("nested arrays multiply", func(t *testing.T) {
		got, err := DynamicSizeOf(outer, &dims{Rows: 3, Cols: 4}, nil)
		if err != nil {
			t.Fatalf("DynamicSizeOf: %v", err)
		}
		if got != 48 {
			t.Errorf("DynamicSizeOf = %d, want 48", got)
		}
	})

	t.Run("parent by value", func(t *testing.T) {
		got, err := DynamicSizeOf(inner, dims{Cols: 5}, nil)
		if err != nil || got != 20 {
			t.Errorf("DynamicSizeOf = %d, %v, want 20", got, err)
		}
	})

	t.Run("aligned dynamic array", func(t *testing.T) {
		got, err := DynamicSizeOf(AlignedTo(16, inner), &dims{Cols: 2}, nil)
		if err != nil || got != 8 {
			t.Errorf("DynamicSizeOf = %d, %v, want 8", got, err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := DynamicSizeOf(outer, &dims{Rows: 0, Cols: 100}, nil)
		if err != nil || got != 0 {
			t.Errorf("DynamicSizeOf = %d, %v, want 0", got, err)
		}
	})

	t.Run("static fallback", func(t *testing.T) {
		got, err := DynamicSizeOf(Of[[3]uint16](), nil, nil)
		if err != nil || got != 6 {
			t.Errorf("DynamicSizeOf = %d, %v, want 6", got, err)
		}
	})

	t.Run("wrong parent", func(t *testing.T) {
		_, err := DynamicSizeOf(inner, &header{}, nil)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("error = %v, want type mismatch", err)
		}
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := DynamicSizeOf(inner, &dims{Cols: -1}, nil)
		if !errors.Is(err, &tderrors.Error{Kind: tderrors.KindInvalidData}) {
			t.Errorf("error = %v, want invalid data", err)
		}
	})

	t.Run("static array of dynamic arrays", func(t *testing.T) {
		_, err := DynamicSizeOf(StaticArrayOf(inner, 2), &dims{Cols: 1}, nil)
		if !errors.Is(err, ErrDynamicSize) {
			t.Errorf("error = %v, want dynamic size", err)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		huge := DynamicArrayOf(reflect.TypeFor[[1 << 20]byte](), func(d *dims) int { return int(d.Rows) })
		big := DynamicArrayOf(huge, func(d *dims) int { return int(d.Cols) })
		bigger := DynamicArrayOf(big, func(d *dims) int { return int(d.Cols) })
		_, err := DynamicSizeOf(bigger, &dims{Rows: 1 << 30, Cols: 1 << 30}, nil)
		if !errors.Is(err, &tderrors.Error{Kind: tderrors.KindOverflow}) {
			t.Errorf("error = %v, want overflow", err)
		}
	})
}
