package ops

import "github.com/born-ml/graphnet/internal/tensor"

// SumOp reduces its input along one axis.
//
// Axis -1 sums every element of a batch slot, axis == rank sums across the
// batch, and any other axis is removed from the shape.
//
// Backward pass: outputGrad is broadcast back over the reduced axis, since
// every summed element contributes with weight 1.
type SumOp struct {
	node
	axis int
}

// NewSumOp creates a new SumOp reading slot x.
func NewSumOp(x, axis int) *SumOp {
	return &SumOp{node: newNode(x), axis: axis}
}

// Type returns "Sum".
func (op *SumOp) Type() string { return "Sum" }

// Axis returns the reduced axis.
func (op *SumOp) Axis() int { return op.axis }

// Forward computes the reduction.
func (op *SumOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 1); err != nil {
		return nil, err
	}
	d, err := tensor.ReduceDim(inputs[0].Dim(), op.axis)
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := tensor.Sum(inputs[0], out, op.axis); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward broadcasts outputGrad into the input gradient.
func (op *SumOp) Backward(_, _, dEdy, dEdx []tensor.Tensor) error {
	return tensor.Expand(dEdy[0], dEdx[0], op.axis)
}
