package tensor

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtures mirrors a small set of matrices reused across the algebra tests.
type fixtures struct {
	m1, m2, m3, m4    Tensor
	mBatch, mBatch2   Tensor
	mBatch3, tensor3d Tensor
}

func mustTensor(t *testing.T, d Dim, data ...float32) Tensor {
	t.Helper()
	x, err := FromSlice(d, data)
	require.NoError(t, err)
	return x
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	return fixtures{
		m1: mustTensor(t, NewDim(3, 2),
			0, 1,
			2, 3,
			4, 5),
		m2: mustTensor(t, NewDim(3, 2),
			1, 2,
			3, 4,
			5, 6),
		m3: mustTensor(t, NewDim(3, 2),
			2, 3,
			4, 5,
			6, 7),
		m4: mustTensor(t, NewDim(2, 3),
			1, 2, 3,
			4, 5, 6),
		mBatch: mustTensor(t, NewDim(2, 2).WithBatch(2),
			0, 1,
			2, 3,

			4, 5,
			6, 7),
		mBatch2: mustTensor(t, NewDim(3, 2).WithBatch(2),
			2, 3,
			4, 5,
			6, 7,

			0, 1,
			2, 3,
			4, 5),
		mBatch3: mustTensor(t, NewDim(3, 2).WithBatch(2),
			0, 1,
			2, 3,
			4, 5,

			2, 2,
			4, 6,
			5, 1),
		tensor3d: mustTensor(t, NewDim(2, 2, 2),
			0, 1,
			2, 3,

			4, 5,
			6, 7),
	}
}

func TestTensor_Access(t *testing.T) {
	f := newFixtures(t)

	assert.Equal(t, float32(0), f.m1.Get(0, 0, 0))
	assert.Equal(t, float32(1), f.m1.Get(0, 0, 1))
	assert.Equal(t, float32(2), f.m1.Get(0, 1, 0))
	assert.Equal(t, float32(5), f.m1.Get(0, 2, 1))
	assert.Equal(t, float32(6), f.mBatch.Get(1, 1, 0))
}

func TestTensor_Ownership(t *testing.T) {
	data := []float32{1, 2, 3}

	b, err := Borrow(NewDim(3), data)
	require.NoError(t, err)
	assert.Equal(t, Borrowed, b.Ownership())

	data[1] = 42
	assert.Equal(t, float32(42), b.At(1, 0), "borrowed tensor must see caller writes")

	c, err := FromSlice(NewDim(3), data)
	require.NoError(t, err)
	data[2] = -1
	assert.Equal(t, Owned, c.Ownership())
	assert.Equal(t, float32(3), c.At(2, 0), "FromSlice must copy")

	a := c.Alias()
	assert.Equal(t, Aliased, a.Ownership())
	a.Set(0, 0, 7)
	assert.Equal(t, float32(7), c.At(0, 0), "alias shares the buffer")

	assert.Equal(t, "borrowed", Borrowed.String())
}

func TestTensor_LengthMismatch(t *testing.T) {
	_, err := FromSlice(NewDim(3, 2), []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Borrow(NewDim(2).WithBatch(2), []float32{1, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestTensor_TransposeIsView(t *testing.T) {
	f := newFixtures(t)
	tr := f.m1.Transpose()

	assert.Equal(t, []int{2, 3}, tr.Dim().Shape())
	assert.Equal(t, []float32{0, 2, 4, 1, 3, 5}, tr.Values())

	tr.Set(1, 0, 100) // tr[0,1] == m1[1,0]
	assert.Equal(t, float32(100), f.m1.Get(0, 1, 0))

	back := tr.Transpose()
	assert.Equal(t, f.m1.Values(), back.Values())
}

func TestTensor_BatchElem(t *testing.T) {
	f := newFixtures(t)

	b1 := f.mBatch.BatchElem(1)
	assert.Equal(t, 1, b1.Dim().BatchSize())
	assert.Equal(t, []float32{4, 5, 6, 7}, b1.Values())
}

func TestTensor_Clone(t *testing.T) {
	f := newFixtures(t)
	c := f.m1.Transpose().Clone()

	assert.True(t, c.Dim().IsContiguous())
	assert.Equal(t, []float32{0, 2, 4, 1, 3, 5}, c.Data())
	c.Fill(9)
	assert.Equal(t, float32(1), f.m1.Get(0, 0, 1))
}

func TestExpr_ElementAdd(t *testing.T) {
	f := newFixtures(t)
	res := New(f.m1.Dim())

	require.NoError(t, res.Assign(Add(f.m1, f.m2)))
	assert.Equal(t, []float32{1, 3, 5, 7, 9, 11}, res.Values())
}

func TestExpr_ScalarMultiply(t *testing.T) {
	f := newFixtures(t)
	res := New(f.m1.Dim())

	require.NoError(t, res.Assign(Mul(Scalar(3), f.m1)))
	assert.Equal(t, []float32{0, 3, 6, 9, 12, 15}, res.Values())
}

func TestExpr_Lengthy(t *testing.T) {
	f := newFixtures(t)
	res := New(f.m1.Dim())

	require.NoError(t, res.Assign(Square(Mul(Sub(f.m1, f.m2), f.m3))))
	assert.Equal(t, []float32{4, 9, 16, 25, 36, 49}, res.Values())
}

func TestExpr_UnaryOps(t *testing.T) {
	x := mustTensor(t, NewDim(3), -1, 0, 2)
	res := New(x.Dim())

	require.NoError(t, res.Assign(Neg(x)))
	assert.Equal(t, []float32{1, 0, -2}, res.Values())

	require.NoError(t, res.Assign(Exp(x)))
	assert.InDelta(t, math32.Exp(-1), res.At(0, 0), 1e-6)
	assert.InDelta(t, 1, res.At(1, 0), 1e-6)

	require.NoError(t, res.Assign(Apply(x, math32.Abs)))
	assert.Equal(t, []float32{1, 0, 2}, res.Values())

	require.NoError(t, res.Assign(Div(Scalar(1), Add(x, Scalar(2)))))
	assert.Equal(t, []float32{1, 0.5, 0.25}, res.Values())
}

func TestExpr_BatchBroadcast(t *testing.T) {
	f := newFixtures(t)
	res := New(NewDim(3, 2).WithBatch(2))

	require.NoError(t, res.Assign(Add(f.m1, f.mBatch2)))
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, res.BatchElem(0).Values())
	assert.Equal(t, []float32{0, 2, 4, 6, 8, 10}, res.BatchElem(1).Values())
}

func TestExpr_BatchReduce(t *testing.T) {
	f := newFixtures(t)
	acc := New(NewDim(3, 2))

	require.NoError(t, acc.AddAssign(f.mBatch2))
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, acc.Values())

	require.NoError(t, acc.SubAssign(f.mBatch2))
	assert.Equal(t, make([]float32, 6), acc.Values())

	err := acc.Assign(f.mBatch2)
	assert.ErrorIs(t, err, ErrBatchMismatch, "only accumulation may reduce over the batch")
}

func TestExpr_MismatchFailsFast(t *testing.T) {
	f := newFixtures(t)

	a := New(NewDim(2, 2).WithBatch(2))
	b := New(NewDim(2, 2).WithBatch(3))
	dst := New(NewDim(2, 2).WithBatch(3))
	dst.Fill(5)

	err := dst.Assign(Add(a, b))
	assert.ErrorIs(t, err, ErrBatchMismatch)
	assert.Equal(t, float32(5), dst.At(0, 0), "nothing is written on failure")

	res := New(f.m1.Dim())
	err = res.Assign(Add(f.m1, f.tensor3d))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	small := New(NewDim(2))
	err = small.Assign(f.m1)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestExpr_InPlace(t *testing.T) {
	x := mustTensor(t, NewDim(2), 2, 8)

	require.NoError(t, x.MulAssign(Scalar(2)))
	assert.Equal(t, []float32{4, 16}, x.Values())

	require.NoError(t, x.DivAssign(mustTensor(t, NewDim(2), 4, 4)))
	assert.Equal(t, []float32{1, 4}, x.Values())

	require.NoError(t, x.AddAssign(Scalar(1)))
	assert.Equal(t, []float32{2, 5}, x.Values())
}

func TestExpr_TransposedOperand(t *testing.T) {
	f := newFixtures(t)
	res := New(NewDim(2, 3))

	require.NoError(t, res.Assign(Add(f.m1.Transpose(), f.m4)))
	assert.Equal(t, []float32{1, 4, 7, 5, 8, 11}, res.Values())
}

func TestAsScalar(t *testing.T) {
	x := mustTensor(t, NewDim(1), 4)
	assert.Equal(t, float32(4), AsScalar(x))
}

func TestArena_Reuse(t *testing.T) {
	a := NewArena()

	x := a.Alloc(NewDim(2, 2))
	x.Fill(3)
	y := a.Alloc(NewDim(3))
	assert.Equal(t, 2, a.Live())
	assert.Equal(t, Owned, y.Ownership())

	a.Reset()
	assert.Equal(t, 0, a.Live())

	z := a.Alloc(NewDim(4))
	assert.Equal(t, []float32{0, 0, 0, 0}, z.Values(), "reused buffers are zeroed")
	assert.Same(t, &x.Data()[0], &z.Data()[0])

	big := a.Alloc(NewDim(10))
	assert.Len(t, big.Data(), 10)

	h := Heap.Alloc(NewDim(2).WithBatch(2))
	assert.Len(t, h.Data(), 4)
}
