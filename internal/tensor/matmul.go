package tensor

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/parallel"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// batchParallel fans independent batch slots of a product out over CPUs.
var batchParallel = parallel.DefaultConfig().Coarse()

// MatMulDim returns the layout of lhs · rhs: (M, K) · (K, N) -> (M, N), with
// the broadcast batch size of the operands.
func MatMulDim(lhs, rhs Dim) (Dim, error) {
	if lhs.Rank() != 2 || rhs.Rank() != 2 {
		return Dim{}, fmt.Errorf("%w: matmul requires rank-2 operands, got %v and %v",
			ErrShapeMismatch, lhs, rhs)
	}
	if lhs.At(1) != rhs.At(0) {
		return Dim{}, fmt.Errorf("%w: matmul inner extents differ: %v · %v",
			ErrShapeMismatch, lhs, rhs)
	}
	nb, err := BroadcastBatch(lhs.BatchSize(), rhs.BatchSize())
	if err != nil {
		return Dim{}, err
	}
	return NewDim(lhs.At(0), rhs.At(1)).WithBatch(nb), nil
}

// MatMul accumulates lhs · rhs into dst: dst += lhs · rhs.
//
// Either operand may be a transposed view. Batch slots are paired with the
// usual skip rule, so a batch-1 operand is shared by every slot of the other.
// A batch-1 dst receives the sum of every slot's product.
//
// Example:
//
//	// y = W · x
//	y := tensor.New(tensor.NewDim(4, 1))
//	err := tensor.MatMul(w, x, y)
func MatMul(lhs, rhs, dst Tensor) error {
	want, err := MatMulDim(lhs.dim, rhs.dim)
	if err != nil {
		return err
	}
	if !dst.dim.Equal(want) {
		return fmt.Errorf("%w: matmul destination %v, want shape %v", ErrShapeMismatch, dst.dim, want)
	}
	nb := want.BatchSize()
	db := dst.dim.BatchSize()
	if db != nb && db != 1 {
		return fmt.Errorf("%w: matmul destination %v, operands have batch %d", ErrBatchMismatch, dst.dim, nb)
	}

	lb, rb := lhs.dim.BatchSize(), rhs.dim.BatchSize()
	slot := func(b int) error {
		return gemmSlot(lhs, b%lb, rhs, b%rb, dst, b%db)
	}
	if db == nb && nb > 1 {
		return parallel.For(nb, slot, batchParallel)
	}
	for b := 0; b < nb; b++ {
		if err := slot(b); err != nil {
			return err
		}
	}
	return nil
}

// gemmSlot computes one batch slot through BLAS when every operand maps onto
// a general matrix, and through a strided loop otherwise.
func gemmSlot(lhs Tensor, ls int, rhs Tensor, rs int, dst Tensor, ds int) error {
	a, ta, okA := general(lhs, ls)
	b, tb, okB := general(rhs, rs)
	c, tc, okC := general(dst, ds)
	if okA && okB && okC && tc == blas.NoTrans {
		blas32.Gemm(ta, tb, 1, a, b, 1, c)
		return nil
	}

	m, k, n := lhs.dim.At(0), lhs.dim.At(1), rhs.dim.At(1)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for p := 0; p < k; p++ {
				sum += lhs.elem(ls, i, p) * rhs.elem(rs, p, j)
			}
			dst.data[dst.offset2(ds, i, j)] += sum
		}
	}
	return nil
}

// general describes batch slot of a rank-2 tensor as a BLAS matrix.
// A transposed view of a row-major matrix is reported with blas.Trans.
func general(t Tensor, slot int) (blas32.General, blas.Transpose, bool) {
	rows, cols := t.dim.At(0), t.dim.At(1)
	s0, s1 := t.dim.StrideAt(0), t.dim.StrideAt(1)
	base := slot * t.dim.Size()

	switch {
	case s1 == 1 && s0 >= cols:
		return blas32.General{
			Rows:   rows,
			Cols:   cols,
			Stride: s0,
			Data:   t.data[base : base+(rows-1)*s0+cols],
		}, blas.NoTrans, true
	case s0 == 1 && s1 >= rows:
		return blas32.General{
			Rows:   cols,
			Cols:   rows,
			Stride: s1,
			Data:   t.data[base : base+(cols-1)*s1+rows],
		}, blas.Trans, true
	default:
		return blas32.General{}, blas.NoTrans, false
	}
}

func (t Tensor) offset2(slot, i, j int) int {
	return slot*t.dim.Size() + i*t.dim.stride[0] + j*t.dim.stride[1]
}

func (t Tensor) elem(slot, i, j int) float32 {
	return t.data[t.offset2(slot, i, j)]
}
