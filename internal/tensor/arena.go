package tensor

// Allocator hands out zero-filled Owned tensors.
type Allocator interface {
	Alloc(d Dim) Tensor
}

// Arena is a bump allocator scoped to one sweep over a graph.
//
// Buffers are recycled across Reset calls: after Reset, the next Alloc reuses
// the first retained buffer if it is large enough. Tensors handed out before
// a Reset must not be used after it.
//
// Arena is not safe for concurrent use.
type Arena struct {
	bufs [][]float32
	next int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc returns a zero-filled Owned tensor with layout d.
func (a *Arena) Alloc(d Dim) Tensor {
	n := d.Total()
	if a.next < len(a.bufs) && cap(a.bufs[a.next]) >= n {
		buf := a.bufs[a.next][:n]
		clear(buf)
		a.bufs[a.next] = buf
		a.next++
		return makeTensor(d, buf, Owned)
	}

	buf := make([]float32, n)
	if a.next < len(a.bufs) {
		a.bufs[a.next] = buf
	} else {
		a.bufs = append(a.bufs, buf)
	}
	a.next++
	return makeTensor(d, buf, Owned)
}

// Reset invalidates every tensor allocated so far and makes their buffers
// available for reuse.
func (a *Arena) Reset() {
	a.next = 0
}

// Live returns the number of tensors allocated since the last Reset.
func (a *Arena) Live() int {
	return a.next
}

// heap allocates fresh buffers on every call.
type heap struct{}

func (heap) Alloc(d Dim) Tensor { return New(d) }

// Heap is an Allocator backed by ordinary Go allocations.
var Heap Allocator = heap{}
