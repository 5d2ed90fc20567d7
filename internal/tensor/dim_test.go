package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDim_Strides(t *testing.T) {
	tests := []struct {
		name   string
		shape  []int
		stride []int
		size   int
	}{
		{"vector", []int{5}, []int{1}, 5},
		{"matrix", []int{3, 2}, []int{2, 1}, 6},
		{"3d", []int{2, 3, 4}, []int{12, 4, 1}, 24},
		{"5d", []int{2, 1, 5, 3, 4}, []int{60, 60, 12, 4, 1}, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDim(tt.shape...)
			assert.Equal(t, tt.stride, d.Stride())
			assert.Equal(t, tt.size, d.Size())
			assert.Equal(t, 1, d.BatchSize())
			assert.Equal(t, len(tt.shape), d.Rank())
			assert.True(t, d.IsContiguous())
		})
	}
}

func TestDim_EqualIgnoresBatch(t *testing.T) {
	a := NewDim(3, 2)
	b := NewDim(3, 2).WithBatch(4)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewDim(2, 3)))
	assert.False(t, a.Equal(NewDim(3, 2, 1)))
	assert.Equal(t, 24, b.Total())
}

func TestDim_NoSharedArrays(t *testing.T) {
	shape := []int{3, 2}
	d := NewDim(shape...)
	shape[0] = 99
	assert.Equal(t, 3, d.At(0))

	s := d.Shape()
	s[1] = 99
	assert.Equal(t, 2, d.At(1))

	b := d.WithBatch(2)
	assert.Equal(t, []int{3, 2}, b.Shape())
	assert.Equal(t, 1, d.BatchSize())
}

func TestDim_Transpose(t *testing.T) {
	d := NewDim(2, 1, 3, 4).WithBatch(3)
	tr := d.Transpose()

	assert.Equal(t, []int{4, 3, 1, 2}, tr.Shape())
	assert.Equal(t, []int{1, 4, 12, 12}, tr.Stride())
	assert.Equal(t, 3, tr.BatchSize())
	assert.False(t, tr.IsContiguous())

	back := tr.Transpose()
	assert.Equal(t, d.Shape(), back.Shape())
	assert.Equal(t, d.Stride(), back.Stride())
}

func TestDim_Validate(t *testing.T) {
	require.NoError(t, NewDim(1, 2, 3).Validate())
	assert.Error(t, NewDim(3, 0).Validate())
	assert.Error(t, NewDim(-1).Validate())
	assert.Error(t, NewDim(2).WithBatch(-2).Validate())
}

func TestDim_String(t *testing.T) {
	assert.Equal(t, "(3,2)", NewDim(3, 2).String())
	assert.Equal(t, "(3,2)x4", NewDim(3, 2).WithBatch(4).String())
}
