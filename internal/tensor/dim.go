package tensor

import (
	"fmt"
	"strings"
)

// Dim describes the layout of a Tensor: an ordered list of axis extents,
// the row-major strides derived from them, and the number of independent
// instances stacked along the batch axis.
//
// Dim is a value type. Every accessor returns copies, so two Dims never share
// backing arrays.
type Dim struct {
	shape  []int
	stride []int
	batch  int
}

// NewDim creates a Dim with batch size 1.
// Strides are computed eagerly: stride[i] = product of shape[i+1:], stride[last] = 1.
//
// Example:
//
//	d := tensor.NewDim(3, 2)          // (3, 2), stride (2, 1)
//	b := tensor.NewDim(3, 2).WithBatch(4)
func NewDim(shape ...int) Dim {
	s := append([]int(nil), shape...)
	return Dim{
		shape:  s,
		stride: computeStrides(s),
		batch:  1,
	}
}

// WithBatch returns a copy of d with the given batch size.
func (d Dim) WithBatch(n int) Dim {
	return Dim{
		shape:  append([]int(nil), d.shape...),
		stride: append([]int(nil), d.stride...),
		batch:  n,
	}
}

// computeStrides calculates row-major strides for the shape.
func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	if len(shape) == 0 {
		return strides
	}

	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	return strides
}

// Size returns the number of elements in one batch slot (product of shape).
func (d Dim) Size() int {
	n := 1
	for _, e := range d.shape {
		n *= e
	}
	return n
}

// Total returns Size() * BatchSize(), the element count of a materialized buffer.
func (d Dim) Total() int {
	return d.Size() * d.BatchSize()
}

// Rank returns the number of axes.
func (d Dim) Rank() int {
	return len(d.shape)
}

// At returns the extent of the given axis.
func (d Dim) At(axis int) int {
	return d.shape[axis]
}

// StrideAt returns the stride of the given axis.
func (d Dim) StrideAt(axis int) int {
	return d.stride[axis]
}

// BatchSize returns the number of stacked instances. The zero Dim reports 1.
func (d Dim) BatchSize() int {
	if d.batch <= 0 {
		return 1
	}
	return d.batch
}

// Shape returns a copy of the axis extents.
func (d Dim) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Stride returns a copy of the strides.
func (d Dim) Stride() []int {
	return append([]int(nil), d.stride...)
}

// Equal reports whether the shapes match elementwise. Batch size is not compared.
func (d Dim) Equal(other Dim) bool {
	if len(d.shape) != len(other.shape) {
		return false
	}
	for i := range d.shape {
		if d.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// Validate checks that every extent and the batch size are positive.
func (d Dim) Validate() error {
	for i, e := range d.shape {
		if e <= 0 {
			return fmt.Errorf("invalid extent at axis %d: %d (must be > 0)", i, e)
		}
	}
	if d.batch <= 0 {
		return fmt.Errorf("invalid batch size %d (must be > 0)", d.batch)
	}
	return nil
}

// IsContiguous reports whether the strides are the row-major strides of the shape.
func (d Dim) IsContiguous() bool {
	want := computeStrides(d.shape)
	for i := range want {
		if d.stride[i] != want[i] {
			return false
		}
	}
	return true
}

// Transpose reverses the axis order of both shape and stride.
// The result describes a view over the same buffer; batch size is unaffected.
func (d Dim) Transpose() Dim {
	n := len(d.shape)
	t := Dim{
		shape:  make([]int, n),
		stride: make([]int, n),
		batch:  d.batch,
	}
	for k := 0; k < n; k++ {
		t.shape[k] = d.shape[n-1-k]
		t.stride[k] = d.stride[n-1-k]
	}
	return t
}

// offset maps a logical row-major element index to a buffer offset through the strides.
func (d Dim) offset(i int) int {
	off := 0
	for axis := len(d.shape) - 1; axis >= 0; axis-- {
		e := d.shape[axis]
		off += (i % e) * d.stride[axis]
		i /= e
	}
	return off
}

// String renders the shape and batch size, e.g. "(3,2)x4".
func (d Dim) String() string {
	parts := make([]string, len(d.shape))
	for i, e := range d.shape {
		parts[i] = fmt.Sprint(e)
	}
	s := "(" + strings.Join(parts, ",") + ")"
	if d.BatchSize() > 1 {
		s += fmt.Sprintf("x%d", d.BatchSize())
	}
	return s
}
