package tensor

import "fmt"

// ReduceDim returns the layout Sum produces for src and axis.
//
//   - axis == -1: one element per batch slot, shape (1).
//   - axis == Rank(): the shape is kept and the batch collapses to 1.
//   - otherwise: the axis is removed; removing the last remaining axis yields (1).
func ReduceDim(src Dim, axis int) (Dim, error) {
	rank := src.Rank()
	switch {
	case axis == -1:
		return NewDim(1).WithBatch(src.BatchSize()), nil
	case axis == rank:
		return NewDim(src.shape...), nil
	case axis < -1 || axis > rank:
		return Dim{}, fmt.Errorf("%w: axis %d for %v", ErrInvalidAxis, axis, src)
	}

	shape := make([]int, 0, rank)
	shape = append(shape, src.shape[:axis]...)
	shape = append(shape, src.shape[axis+1:]...)
	if len(shape) == 0 {
		shape = append(shape, 1)
	}
	return NewDim(shape...).WithBatch(src.BatchSize()), nil
}

// Sum accumulates the reduction of src along axis into dst (see ReduceDim for
// the three modes). A batch-1 dst additionally sums over src's batch slots.
//
// Example:
//
//	// (2,2,2) -> (2,2), summing the middle axis
//	dst := tensor.New(tensor.NewDim(2, 2))
//	err := tensor.Sum(src, dst, 1)
func Sum(src, dst Tensor, axis int) error {
	if err := checkReduced(src.dim, dst.dim, axis); err != nil {
		return err
	}
	if axis == src.dim.Rank() {
		return dst.AddAssign(src)
	}
	walkAxis(src, dst, axis, func(big, small int) {
		dst.data[small] += src.data[big]
	})
	return nil
}

// Expand is the adjoint of Sum: it adds src, broadcast back over the reduced
// axis, into every element of dst.
func Expand(src, dst Tensor, axis int) error {
	if err := checkReduced(dst.dim, src.dim, axis); err != nil {
		return err
	}
	if axis == dst.dim.Rank() {
		if src.dim.BatchSize() != 1 {
			return fmt.Errorf("%w: expand across batch needs a batch-1 source, got %v",
				ErrBatchMismatch, src.dim)
		}
		return dst.AddAssign(src)
	}
	walkAxis(dst, src, axis, func(big, small int) {
		dst.data[big] += src.data[small]
	})
	return nil
}

// checkReduced validates that small is the reduction of big along axis.
func checkReduced(big, small Dim, axis int) error {
	want, err := ReduceDim(big, axis)
	if err != nil {
		return err
	}
	if !small.Equal(want) {
		return fmt.Errorf("%w: reducing %v along axis %d gives %v, got %v",
			ErrShapeMismatch, big, axis, want, small)
	}
	if axis == big.Rank() {
		if small.BatchSize() != 1 && small.BatchSize() != big.BatchSize() {
			return fmt.Errorf("%w: %v vs %v", ErrBatchMismatch, big, small)
		}
		return nil
	}
	if _, err := BroadcastBatch(big.BatchSize(), small.BatchSize()); err != nil {
		return err
	}
	return nil
}

// walkAxis visits every element of big together with the element of small it
// reduces into, passing their buffer offsets. axis == -1 maps everything onto
// element 0. Batch slots follow the skip rule on both sides.
func walkAxis(big, small Tensor, axis int, fn func(big, small int)) {
	size := big.dim.Size()
	outer, n, inner := 1, size, 1
	if axis >= 0 {
		outer, n, inner = 1, big.dim.At(axis), 1
		for _, e := range big.dim.shape[:axis] {
			outer *= e
		}
		for _, e := range big.dim.shape[axis+1:] {
			inner *= e
		}
	}

	bb, sb := big.dim.BatchSize(), small.dim.BatchSize()
	nb := max(bb, sb)
	for b := 0; b < nb; b++ {
		bs, ss := b%bb, b%sb
		for o := 0; o < outer; o++ {
			for a := 0; a < n; a++ {
				for r := 0; r < inner; r++ {
					i := (o*n+a)*inner + r
					j := 0
					if axis >= 0 {
						j = o*inner + r
					}
					fn(big.index(i, bs), small.index(j, ss))
				}
			}
		}
	}
}
