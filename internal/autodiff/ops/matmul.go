package ops

import "github.com/born-ml/graphnet/internal/tensor"

// MatMulOp represents a matrix product: output = w · x.
//
// Backward pass:
//   - d(W·x)/dW = outputGrad · xᵀ
//   - d(W·x)/dx = Wᵀ · outputGrad
//
// The transposes are stride views; nothing is copied.
type MatMulOp struct {
	node
}

// NewMatMulOp creates a new MatMulOp reading slots w and x.
func NewMatMulOp(w, x int) *MatMulOp {
	return &MatMulOp{node: newNode(w, x)}
}

// Type returns "MatMul".
func (op *MatMulOp) Type() string { return "MatMul" }

// Forward computes w · x for every batch slot.
func (op *MatMulOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 2); err != nil {
		return nil, err
	}
	d, err := tensor.MatMulDim(inputs[0].Dim(), inputs[1].Dim())
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := tensor.MatMul(inputs[0], inputs[1], out); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates both matrix gradients.
func (op *MatMulOp) Backward(inputs, _, dEdy, dEdx []tensor.Tensor) error {
	w, x := inputs[0], inputs[1]

	// grad_w += outputGrad · xᵀ
	if err := tensor.MatMul(dEdy[0], x.Transpose(), dEdx[0]); err != nil {
		return err
	}

	// grad_x += wᵀ · outputGrad
	return tensor.MatMul(w.Transpose(), dEdy[0], dEdx[1])
}
