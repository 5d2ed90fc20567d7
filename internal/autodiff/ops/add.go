package ops

import "github.com/born-ml/graphnet/internal/tensor"

// AddOp represents an element-wise addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a += outputGrad
//   - d(a+b)/db = 1, so grad_b += outputGrad
//
// A batch-1 operand broadcast in the forward pass receives the sum over the
// batch slots of outputGrad.
type AddOp struct {
	node
}

// NewAddOp creates a new AddOp reading slots a and b.
func NewAddOp(a, b int) *AddOp {
	return &AddOp{node: newNode(a, b)}
}

// Type returns "Add".
func (op *AddOp) Type() string { return "Add" }

// Forward computes a + b.
func (op *AddOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 2); err != nil {
		return nil, err
	}
	d, err := elementwiseDim(inputs[0].Dim(), inputs[1].Dim())
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := out.Assign(tensor.Add(inputs[0], inputs[1])); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward passes outputGrad through to both operands.
func (op *AddOp) Backward(_, _, dEdy, dEdx []tensor.Tensor) error {
	if err := dEdx[0].AddAssign(dEdy[0]); err != nil {
		return err
	}
	return dEdx[1].AddAssign(dEdy[0])
}
