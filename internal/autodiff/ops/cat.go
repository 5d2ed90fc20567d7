package ops

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// ConcatOp concatenates its inputs along an axis.
// axis == rank stacks inputs along the batch axis.
//
// Backward pass: each input receives the sub-range of outputGrad it
// produced.
type ConcatOp struct {
	node
	axis int
}

// NewConcatOp creates a new ConcatOp reading the given slots.
func NewConcatOp(axis int, parts ...int) *ConcatOp {
	return &ConcatOp{node: newNode(parts...), axis: axis}
}

// Type returns "Concat".
func (op *ConcatOp) Type() string { return "Concat" }

// Forward computes the concatenation.
func (op *ConcatOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if len(inputs) == 0 || len(inputs) != len(op.args) {
		return nil, fmt.Errorf("%w: %s takes %d inputs, got %d", ErrArgCount, op.Type(), len(op.args), len(inputs))
	}
	dims := make([]tensor.Dim, len(inputs))
	for i, in := range inputs {
		dims[i] = in.Dim()
	}
	d, err := tensor.ConcatDim(dims, op.axis)
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := tensor.Concatenate(inputs, out, op.axis); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward slices outputGrad back onto the inputs.
func (op *ConcatOp) Backward(_, _, dEdy, dEdx []tensor.Tensor) error {
	return tensor.AddSplit(dEdy[0], dEdx, op.axis)
}

// SplitOp divides its input into n equal parts along an axis. It is the only
// node with more than one output slot.
//
// Backward pass: the gradient of each part flows only to its source range.
type SplitOp struct {
	node
	n    int
	axis int
}

// NewSplitOp creates a new SplitOp reading slot x.
func NewSplitOp(x, n, axis int) *SplitOp {
	return &SplitOp{node: newNode(x), n: n, axis: axis}
}

// Type returns "Split".
func (op *SplitOp) Type() string { return "Split" }

// NumOutputs returns the number of parts.
func (op *SplitOp) NumOutputs() int { return op.n }

// Forward computes the parts.
func (op *SplitOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 1); err != nil {
		return nil, err
	}
	dims, err := tensor.SplitDims(inputs[0].Dim(), op.n, op.axis)
	if err != nil {
		return nil, err
	}
	outs := make([]tensor.Tensor, len(dims))
	for i, d := range dims {
		outs[i] = alloc.Alloc(d)
	}
	if err := tensor.Split(inputs[0], outs, op.axis); err != nil {
		return nil, err
	}
	return outs, nil
}

// Backward concatenates the part gradients into the input gradient.
func (op *SplitOp) Backward(_, _, dEdy, dEdx []tensor.Tensor) error {
	return tensor.AddConcatenated(dEdy, dEdx[0], op.axis)
}
