package tensor

import "fmt"

// ConcatDim returns the layout of parts concatenated along axis.
// axis == Rank() stacks along the batch axis; the output batch is the sum of
// the part batches. Otherwise every other axis must match, and part batches
// follow the elementwise broadcast rule.
func ConcatDim(parts []Dim, axis int) (Dim, error) {
	if len(parts) == 0 {
		return Dim{}, fmt.Errorf("%w: concatenate needs at least one part", ErrShapeMismatch)
	}
	first := parts[0]
	rank := first.Rank()
	if axis < 0 || axis > rank {
		return Dim{}, fmt.Errorf("%w: axis %d for %v", ErrInvalidAxis, axis, first)
	}

	if axis == rank {
		batch := 0
		for _, p := range parts {
			if !p.Equal(first) {
				return Dim{}, fmt.Errorf("%w: concatenate along batch: %v vs %v", ErrShapeMismatch, first, p)
			}
			batch += p.BatchSize()
		}
		return NewDim(first.shape...).WithBatch(batch), nil
	}

	shape := first.Shape()
	shape[axis] = 0
	batch := 1
	for _, p := range parts {
		if p.Rank() != rank {
			return Dim{}, fmt.Errorf("%w: concatenate %v with %v", ErrShapeMismatch, first, p)
		}
		for k := 0; k < rank; k++ {
			if k != axis && p.At(k) != first.At(k) {
				return Dim{}, fmt.Errorf("%w: concatenate along axis %d: %v vs %v",
					ErrShapeMismatch, axis, first, p)
			}
		}
		shape[axis] += p.At(axis)
		nb, err := BroadcastBatch(batch, p.BatchSize())
		if err != nil {
			return Dim{}, err
		}
		batch = nb
	}
	return NewDim(shape...).WithBatch(batch), nil
}

// SplitDims divides whole into n equal parts along axis.
func SplitDims(whole Dim, n, axis int) ([]Dim, error) {
	rank := whole.Rank()
	if axis < 0 || axis > rank {
		return nil, fmt.Errorf("%w: axis %d for %v", ErrInvalidAxis, axis, whole)
	}
	extent := whole.BatchSize()
	if axis < rank {
		extent = whole.At(axis)
	}
	if n <= 0 || extent%n != 0 {
		return nil, fmt.Errorf("%w: cannot split extent %d of %v into %d parts",
			ErrShapeMismatch, extent, whole, n)
	}

	dims := make([]Dim, n)
	for i := range dims {
		if axis == rank {
			dims[i] = NewDim(whole.shape...).WithBatch(extent / n)
			continue
		}
		shape := whole.Shape()
		shape[axis] = extent / n
		dims[i] = NewDim(shape...).WithBatch(whole.BatchSize())
	}
	return dims, nil
}

// Concatenate writes parts, laid end to end along axis, into dst.
func Concatenate(parts []Tensor, dst Tensor, axis int) error {
	return transfer(dst, parts, axis, true, false)
}

// Split writes consecutive ranges of src along axis into parts.
// Split(Concatenate(xs)) reproduces xs exactly.
func Split(src Tensor, parts []Tensor, axis int) error {
	return transfer(src, parts, axis, false, false)
}

// AddConcatenated adds the concatenation of parts into dst.
func AddConcatenated(parts []Tensor, dst Tensor, axis int) error {
	return transfer(dst, parts, axis, true, true)
}

// AddSplit adds consecutive ranges of src along axis into parts.
// A batch-1 part receives the sum over src's batch slots.
func AddSplit(src Tensor, parts []Tensor, axis int) error {
	return transfer(src, parts, axis, false, true)
}

// transfer moves elements between whole and its parts along axis. Every
// layout is validated before the first element moves.
func transfer(whole Tensor, parts []Tensor, axis int, toWhole, accumulate bool) error {
	dims := make([]Dim, len(parts))
	for i, p := range parts {
		dims[i] = p.dim
	}
	want, err := ConcatDim(dims, axis)
	if err != nil {
		return err
	}
	if !whole.dim.Equal(want) {
		return fmt.Errorf("%w: parts concatenate to %v, whole is %v", ErrShapeMismatch, want, whole.dim)
	}

	wb := whole.dim.BatchSize()
	move := func(w, p int, part Tensor) {
		switch {
		case toWhole && accumulate:
			whole.data[w] += part.data[p]
		case toWhole:
			whole.data[w] = part.data[p]
		case accumulate:
			part.data[p] += whole.data[w]
		default:
			part.data[p] = whole.data[w]
		}
	}

	rank := whole.dim.Rank()
	if axis == rank {
		if want.BatchSize() != wb {
			return fmt.Errorf("%w: parts stack to batch %d, whole has %d", ErrBatchMismatch, want.BatchSize(), wb)
		}
		size := whole.dim.Size()
		base := 0
		for _, part := range parts {
			for s := 0; s < part.dim.BatchSize(); s++ {
				for i := 0; i < size; i++ {
					move(whole.index(i, base+s), part.index(i, s), part)
				}
			}
			base += part.dim.BatchSize()
		}
		return nil
	}

	for _, part := range parts {
		pb := part.dim.BatchSize()
		if pb != wb && (pb != 1 || (!toWhole && !accumulate)) {
			return fmt.Errorf("%w: part %v, whole %v", ErrBatchMismatch, part.dim, whole.dim)
		}
	}
	if want.BatchSize() != wb && want.BatchSize() != 1 {
		return fmt.Errorf("%w: parts have batch %d, whole has %d", ErrBatchMismatch, want.BatchSize(), wb)
	}

	outer, inner := 1, 1
	for _, e := range whole.dim.shape[:axis] {
		outer *= e
	}
	for _, e := range whole.dim.shape[axis+1:] {
		inner *= e
	}
	extent := whole.dim.At(axis)

	for b := 0; b < wb; b++ {
		start := 0
		for _, part := range parts {
			n := part.dim.At(axis)
			ps := b % part.dim.BatchSize()
			for o := 0; o < outer; o++ {
				for a := 0; a < n; a++ {
					for r := 0; r < inner; r++ {
						w := (o*extent+start+a)*inner + r
						p := (o*n+a)*inner + r
						move(whole.index(w, b), part.index(p, ps), part)
					}
				}
			}
			start += n
		}
	}
	return nil
}
