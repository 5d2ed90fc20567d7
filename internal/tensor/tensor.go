package tensor

import (
	"fmt"
	"strings"
)

// Ownership records who is responsible for a Tensor's buffer.
type Ownership int

const (
	// Owned buffers were allocated by this package, typically from an Arena
	// scoped to one forward or backward sweep.
	Owned Ownership = iota

	// Borrowed buffers belong to the caller (graph inputs). They are read, never freed.
	Borrowed

	// Aliased buffers belong to a parameter; the tensor is a view whose lifetime
	// is the parameter's.
	Aliased
)

// String returns a human-readable ownership name.
func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case Aliased:
		return "aliased"
	default:
		return "unknown"
	}
}

// Tensor is a typed view: a Dim interpreted over a flat float32 buffer.
//
// Batch slot b occupies data[b*Size() : (b+1)*Size()]; inside a slot, elements
// are addressed through the Dim strides, so a transposed view reads the same
// buffer in a different order.
//
// Tensor is a small value; copying it copies the view, not the buffer.
type Tensor struct {
	dim    Dim
	data   []float32
	own    Ownership
	contig bool
}

func makeTensor(d Dim, data []float32, own Ownership) Tensor {
	return Tensor{
		dim:    d,
		data:   data,
		own:    own,
		contig: d.IsContiguous(),
	}
}

// New allocates a zero-filled Owned tensor.
func New(d Dim) Tensor {
	return makeTensor(d, make([]float32, d.Total()), Owned)
}

// FromSlice creates an Owned tensor holding a copy of data.
func FromSlice(d Dim, data []float32) (Tensor, error) {
	if err := d.Validate(); err != nil {
		return Tensor{}, err
	}
	if len(data) != d.Total() {
		return Tensor{}, fmt.Errorf("%w: dim %v requires %d elements, but got %d",
			ErrShapeMismatch, d, d.Total(), len(data))
	}
	t := New(d)
	copy(t.data, data)
	return t, nil
}

// Borrow wraps caller-owned data without copying.
// Later writes to data are visible through the tensor.
func Borrow(d Dim, data []float32) (Tensor, error) {
	if err := d.Validate(); err != nil {
		return Tensor{}, err
	}
	if len(data) != d.Total() {
		return Tensor{}, fmt.Errorf("%w: dim %v requires %d elements, but got %d",
			ErrShapeMismatch, d, d.Total(), len(data))
	}
	return makeTensor(d, data, Borrowed), nil
}

// Alias returns the same view tagged as Aliased.
func (t Tensor) Alias() Tensor {
	t.own = Aliased
	return t
}

// Dim returns the tensor's layout.
func (t Tensor) Dim() Dim {
	return t.dim
}

// Data returns the backing buffer.
// WARNING: for non-contiguous views the buffer order is not the logical order.
func (t Tensor) Data() []float32 {
	return t.data
}

// Ownership returns the buffer ownership tag.
func (t Tensor) Ownership() Ownership {
	return t.own
}

// IsZero reports whether the tensor has no buffer (never materialized).
func (t Tensor) IsZero() bool {
	return t.data == nil
}

// index returns the buffer offset of logical element i in batch slot.
func (t Tensor) index(i, slot int) int {
	base := slot * t.dim.Size()
	if t.contig {
		return base + i
	}
	return base + t.dim.offset(i)
}

// At returns logical element i of batch slot b.
// A tensor with batch size 1 reads slot 0 for every b.
func (t Tensor) At(i, b int) float32 {
	if t.dim.BatchSize() == 1 {
		b = 0
	}
	return t.data[t.index(i, b)]
}

// Set writes logical element i of batch slot b.
func (t Tensor) Set(i, b int, v float32) {
	t.data[t.index(i, b)] = v
}

// Get returns the element at the given coordinates of batch slot b.
func (t Tensor) Get(b int, idx ...int) float32 {
	if len(idx) != t.dim.Rank() {
		panic(fmt.Sprintf("tensor.Get: expected %d indices, got %d", t.dim.Rank(), len(idx)))
	}
	off := b * t.dim.Size()
	for axis, i := range idx {
		off += i * t.dim.stride[axis]
	}
	return t.data[off]
}

// Len implements Expr.
func (t Tensor) Len() (int, error) {
	return t.dim.Size(), nil
}

// Batch implements Expr.
func (t Tensor) Batch() (int, error) {
	return t.dim.BatchSize(), nil
}

// Transpose returns a view with reversed axis order over the same buffer.
func (t Tensor) Transpose() Tensor {
	return makeTensor(t.dim.Transpose(), t.data, t.own)
}

// BatchElem returns a batch-1 view of slot b.
func (t Tensor) BatchElem(b int) Tensor {
	size := t.dim.Size()
	d := t.dim
	d.batch = 1
	return Tensor{
		dim:    d,
		data:   t.data[b*size : (b+1)*size],
		own:    t.own,
		contig: t.contig,
	}
}

// Values returns a copy of every element in logical order, batch slot by slot.
func (t Tensor) Values() []float32 {
	size := t.dim.Size()
	out := make([]float32, 0, t.dim.Total())
	for b := 0; b < t.dim.BatchSize(); b++ {
		for i := 0; i < size; i++ {
			out = append(out, t.data[t.index(i, b)])
		}
	}
	return out
}

// Clone returns an Owned contiguous copy.
func (t Tensor) Clone() Tensor {
	d := NewDim(t.dim.shape...).WithBatch(t.dim.BatchSize())
	return makeTensor(d, t.Values(), Owned)
}

// Fill sets every element to v.
func (t Tensor) Fill(v float32) {
	size := t.dim.Size()
	for b := 0; b < t.dim.BatchSize(); b++ {
		for i := 0; i < size; i++ {
			t.data[t.index(i, b)] = v
		}
	}
}

// Zero sets every element to 0.
func (t Tensor) Zero() {
	t.Fill(0)
}

// String returns a one-line summary such as "Tensor(3,2)x2[0 1 2 ...]".
func (t Tensor) String() string {
	if t.IsZero() {
		return "Tensor<nil>"
	}
	vals := t.Values()
	const maxShown = 8
	parts := make([]string, 0, maxShown+1)
	for i, v := range vals {
		if i == maxShown {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return "Tensor" + t.dim.String() + "[" + strings.Join(parts, " ") + "]"
}

// AsScalar returns element 0. Intended for single-element results such as a loss.
func AsScalar(t Tensor) float32 {
	return t.data[t.index(0, 0)]
}
