package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatMul(t *testing.T) {
	f := newFixtures(t)

	tests := []struct {
		name     string
		lhs, rhs Tensor
		dst      Dim
		want     [][]float32
	}{
		{
			name: "row major",
			lhs:  f.m1,
			rhs:  f.m4,
			dst:  NewDim(3, 3),
			want: [][]float32{{
				4, 5, 6,
				14, 19, 24,
				24, 33, 42,
			}},
		},
		{
			name: "transposed views",
			lhs:  f.m1.Transpose(),
			rhs:  f.m4.Transpose(),
			dst:  NewDim(2, 2),
			want: [][]float32{{16, 34, 22, 49}},
		},
		{
			name: "batched lhs",
			lhs:  f.mBatch3.Transpose(),
			rhs:  f.m4.Transpose(),
			dst:  NewDim(2, 2).WithBatch(2),
			want: [][]float32{
				{16, 34, 22, 49},
				{25, 58, 17, 44},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.dst)
			require.NoError(t, MatMul(tt.lhs, tt.rhs, res))
			for b, want := range tt.want {
				assert.Equal(t, want, res.BatchElem(b).Values(), "batch slot %d", b)
			}
		})
	}
}

func TestMatMul_Accumulates(t *testing.T) {
	f := newFixtures(t)
	res := New(NewDim(2, 2))
	res.Fill(1)

	require.NoError(t, MatMul(f.m1.Transpose(), f.m4.Transpose(), res))
	assert.Equal(t, []float32{17, 35, 23, 50}, res.Values())
}

func TestMatMul_BatchReduce(t *testing.T) {
	f := newFixtures(t)
	res := New(NewDim(2, 2))

	require.NoError(t, MatMul(f.mBatch3.Transpose(), f.m4.Transpose(), res))
	assert.Equal(t, []float32{41, 92, 39, 93}, res.Values())
}

func TestMatMul_StridedFallback(t *testing.T) {
	// A column taken out of a wider matrix maps onto no BLAS layout.
	wide := mustTensor(t, NewDim(2, 4),
		1, 2, 3, 4,
		5, 6, 7, 8)
	col := Tensor{
		dim:  Dim{shape: []int{2, 2}, stride: []int{4, 2}, batch: 1},
		data: wide.data,
		own:  Borrowed,
	}
	assert.Equal(t, []float32{1, 3, 5, 7}, col.Values())

	id := mustTensor(t, NewDim(2, 2), 1, 0, 0, 1)
	res := New(NewDim(2, 2))
	require.NoError(t, MatMul(col, id, res))
	assert.Equal(t, []float32{1, 3, 5, 7}, res.Values())
}

func TestMatMul_Errors(t *testing.T) {
	f := newFixtures(t)

	err := MatMul(f.m1, f.m1, New(NewDim(3, 2)))
	assert.ErrorIs(t, err, ErrShapeMismatch, "inner extents differ")

	err = MatMul(f.m1, f.m4, New(NewDim(2, 2)))
	assert.ErrorIs(t, err, ErrShapeMismatch, "wrong destination")

	err = MatMul(f.tensor3d, f.m4, New(NewDim(2, 3)))
	assert.ErrorIs(t, err, ErrShapeMismatch, "rank 3 operand")

	err = MatMul(f.mBatch, New(NewDim(2, 2).WithBatch(3)), New(NewDim(2, 2).WithBatch(3)))
	assert.ErrorIs(t, err, ErrBatchMismatch)

	err = MatMul(f.mBatch3.Transpose(), f.m4.Transpose(), New(NewDim(2, 2).WithBatch(3)))
	assert.ErrorIs(t, err, ErrBatchMismatch)
}

func TestSum(t *testing.T) {
	f := newFixtures(t)

	tests := []struct {
		name string
		src  Tensor
		axis int
		dst  Dim
		want []float32
	}{
		{"middle axis", f.tensor3d, 1, NewDim(2, 2), []float32{2, 4, 10, 12}},
		{"all elements", f.tensor3d, -1, NewDim(1), []float32{28}},
		{"batched axis", f.mBatch, 1, NewDim(2).WithBatch(2), []float32{1, 5, 9, 13}},
		{"batched elements", f.mBatch, -1, NewDim(1).WithBatch(2), []float32{6, 22}},
		{"along batch", f.mBatch, 2, NewDim(2, 2), []float32{4, 6, 8, 10}},
		{"first axis", f.m1, 0, NewDim(2), []float32{6, 9}},
		{"vector", New(NewDim(3)), 0, NewDim(1), []float32{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReduceDim(tt.src.Dim(), tt.axis)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.dst), "ReduceDim = %v, want %v", got, tt.dst)
			assert.Equal(t, tt.dst.BatchSize(), got.BatchSize())

			dst := New(tt.dst)
			require.NoError(t, Sum(tt.src, dst, tt.axis))
			assert.Equal(t, tt.want, dst.Values())
		})
	}
}

func TestSum_InvalidAxis(t *testing.T) {
	f := newFixtures(t)

	err := Sum(f.m1, New(NewDim(1)), 3)
	assert.ErrorIs(t, err, ErrInvalidAxis)

	err = Sum(f.m1, New(NewDim(1)), -2)
	assert.ErrorIs(t, err, ErrInvalidAxis)

	err = Sum(f.m1, New(NewDim(3)), 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestExpand(t *testing.T) {
	f := newFixtures(t)

	dst := New(NewDim(2, 2, 2))
	src := mustTensor(t, NewDim(2, 2), 1, 2, 3, 4)
	require.NoError(t, Expand(src, dst, 1))
	assert.Equal(t, []float32{1, 2, 1, 2, 3, 4, 3, 4}, dst.Values())

	all := New(NewDim(3, 2))
	require.NoError(t, Expand(mustTensor(t, NewDim(1), 2), all, -1))
	assert.Equal(t, []float32{2, 2, 2, 2, 2, 2}, all.Values())

	batched := New(NewDim(2, 2).WithBatch(2))
	require.NoError(t, Expand(src, batched, 2))
	assert.Equal(t, []float32{1, 2, 3, 4, 1, 2, 3, 4}, batched.Values())

	// A batch-1 destination collects every slot of a batched source.
	acc := New(f.m1.Dim())
	require.NoError(t, Expand(mustTensor(t, NewDim(3).WithBatch(2), 1, 2, 3, 4, 5, 6), acc, 1))
	assert.Equal(t, []float32{5, 5, 7, 7, 9, 9}, acc.Values())
}

func TestConcatenate(t *testing.T) {
	f := newFixtures(t)

	rows := New(NewDim(6, 2))
	require.NoError(t, Concatenate([]Tensor{f.m1, f.m2}, rows, 0))
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 6}, rows.Values())

	cols := New(NewDim(3, 4))
	require.NoError(t, Concatenate([]Tensor{f.m1, f.m2}, cols, 1))
	assert.Equal(t, []float32{0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6}, cols.Values())

	d, err := ConcatDim([]Dim{f.m1.Dim(), f.mBatch2.Dim()}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, d.BatchSize())

	batch := New(d)
	require.NoError(t, Concatenate([]Tensor{f.m1, f.mBatch2}, batch, 2))
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, batch.BatchElem(0).Values())
	assert.Equal(t, []float32{2, 3, 4, 5, 6, 7}, batch.BatchElem(1).Values())
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, batch.BatchElem(2).Values())
}

func TestSplit(t *testing.T) {
	f := newFixtures(t)

	dims, err := SplitDims(f.mBatch2.Dim(), 3, 0)
	require.NoError(t, err)
	parts := make([]Tensor, len(dims))
	for i, d := range dims {
		parts[i] = New(d)
	}
	require.NoError(t, Split(f.mBatch2, parts, 0))

	want := [][]float32{{2, 3, 0, 1}, {4, 5, 2, 3}, {6, 7, 4, 5}}
	for i, p := range parts {
		assert.Equal(t, 2, p.Dim().BatchSize())
		assert.Equal(t, want[i], p.Values(), "part %d", i)
	}

	dims, err = SplitDims(f.mBatch.Dim(), 2, 2)
	require.NoError(t, err)
	halves := []Tensor{New(dims[0]), New(dims[1])}
	require.NoError(t, Split(f.mBatch, halves, 2))
	assert.Equal(t, []float32{0, 1, 2, 3}, halves[0].Values())
	assert.Equal(t, []float32{4, 5, 6, 7}, halves[1].Values())

	_, err = SplitDims(f.m1.Dim(), 2, 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = SplitDims(f.m1.Dim(), 2, 5)
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestConcatSplit_RoundTrip(t *testing.T) {
	f := newFixtures(t)
	xs := []Tensor{f.m1, f.m3}

	for _, axis := range []int{0, 1, 2} {
		dims := []Dim{f.m1.Dim(), f.m3.Dim()}
		d, err := ConcatDim(dims, axis)
		require.NoError(t, err)

		whole := New(d)
		require.NoError(t, Concatenate(xs, whole, axis))

		parts := []Tensor{New(dims[0]), New(dims[1])}
		require.NoError(t, Split(whole, parts, axis))
		for i := range xs {
			if diff := cmp.Diff(xs[i].Values(), parts[i].Values(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("axis %d part %d mismatch (-want +got):\n%s", axis, i, diff)
			}
		}
	}
}

func TestAddSplit_Accumulates(t *testing.T) {
	f := newFixtures(t)

	parts := []Tensor{New(NewDim(3, 1)), New(NewDim(3, 1))}
	parts[0].Fill(1)
	require.NoError(t, AddSplit(f.mBatch2, parts, 1))
	assert.Equal(t, []float32{3, 7, 11}, parts[0].Values())
	assert.Equal(t, []float32{4, 8, 12}, parts[1].Values())

	whole := New(NewDim(3, 2))
	require.NoError(t, AddConcatenated(parts, whole, 1))
	require.NoError(t, AddConcatenated(parts, whole, 1))
	assert.Equal(t, []float32{6, 8, 14, 16, 22, 24}, whole.Values())
}

func TestConcatenate_Errors(t *testing.T) {
	f := newFixtures(t)

	err := Concatenate([]Tensor{f.m1, f.m4}, New(NewDim(5, 2)), 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = Concatenate([]Tensor{f.m1, f.m2}, New(NewDim(6, 2)), 3)
	assert.ErrorIs(t, err, ErrInvalidAxis)

	err = Concatenate([]Tensor{f.m1, f.m2}, New(NewDim(5, 2)), 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = Concatenate(nil, New(NewDim(1)), 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
