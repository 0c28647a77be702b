package abi

import (
	"math"
	"testing"
)

func TestCoerceToInt64(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   int64
		wantOK bool
	}{
		{int64(-5), "int64", -5, true},
		{int(7), "int", 7, true},
		{int8(-1), "int8", -1, true},
		{uint8(255), "uint8", 255, true},
		{uint32(math.MaxUint32), "uint32 max", math.MaxUint32, true},
		{uint64(math.MaxUint64), "uint64 too large", 0, false},
		{uintptr(12), "uintptr", 12, true},
		{true, "bool true", 1, true},
		{false, "bool false", 0, true},
		{float64(42), "float64 whole", 42, true},
		{float64(3.5), "float64 fractional", 0, false},
		{"12", "string", 0, false},
		{nil, "nil", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceToInt64(tt.input)
			if ok != tt.wantOK {
				t.Errorf("CoerceToInt64(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CoerceToInt64(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceToCount(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   int
		wantOK bool
	}{
		{uint16(3), "uint16", 3, true},
		{int32(0), "zero", 0, true},
		{int(-1), "negative", 0, false},
		{float64(8), "float64", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceToCount(tt.input)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("CoerceToCount(%v) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoerceToUint64(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   uint64
		wantOK bool
	}{
		{uint64(math.MaxUint64), "uint64 max", math.MaxUint64, true},
		{int(5), "int", 5, true},
		{int(-5), "negative int", 0, false},
		{float64(-1), "negative float", 0, false},
		{uintptr(9), "uintptr", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceToUint64(tt.input)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("CoerceToUint64(%v) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
