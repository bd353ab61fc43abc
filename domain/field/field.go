package field

import (
	"fmt"
	"math"

	"clusterperm/domain/core"
)

// Field holds one real value per location of the non-observation space.
// Data is stored flattened in row-major order over Shape.
type Field struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Size returns the number of locations described by shape.
// A nil or empty shape describes a single scalar location.
func Size(shape []int) int {
	n := 1
	for _, dim := range shape {
		if dim <= 0 {
			return 0
		}
		n *= dim
	}
	return n
}

// New creates a zero-filled field for the given shape
func New(shape []int) (*Field, error) {
	n := Size(shape)
	if n == 0 {
		return nil, fmt.Errorf("%w: non-positive dimension in %v", core.ErrShapeMismatch, shape)
	}
	return &Field{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, n),
	}, nil
}

// FromData wraps flattened values in a field, validating the length
func FromData(shape []int, data []float64) (*Field, error) {
	n := Size(shape)
	if n == 0 || n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d",
			core.ErrShapeMismatch, shape, n, len(data))
	}
	return &Field{Shape: append([]int(nil), shape...), Data: data}, nil
}

// Len returns the number of locations
func (f *Field) Len() int {
	return len(f.Data)
}

// Clone returns a deep copy
func (f *Field) Clone() *Field {
	return &Field{
		Shape: append([]int(nil), f.Shape...),
		Data:  append([]float64(nil), f.Data...),
	}
}

// MaxAbs returns the largest finite absolute value in the field.
// NaN entries are skipped; returns 0 when every entry is NaN.
func (f *Field) MaxAbs() float64 {
	maxAbs := 0.0
	for _, v := range f.Data {
		if math.IsNaN(v) {
			continue
		}
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	return maxAbs
}

// SameShape reports whether two shapes describe the same location space
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
