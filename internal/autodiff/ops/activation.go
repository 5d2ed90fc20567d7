package ops

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/graphnet/internal/tensor"
)

// TanhOp represents the hyperbolic tangent activation: output = tanh(x).
//
// Backward pass:
//   - d(tanh(x))/dx = 1 - tanh²(x) = 1 - output²
type TanhOp struct {
	node
}

// NewTanhOp creates a new TanhOp reading slot x.
func NewTanhOp(x int) *TanhOp {
	return &TanhOp{node: newNode(x)}
}

// Type returns "Tanh".
func (op *TanhOp) Type() string { return "Tanh" }

// Forward computes tanh(x).
func (op *TanhOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 1); err != nil {
		return nil, err
	}
	out := alloc.Alloc(inputs[0].Dim())
	if err := out.Assign(tensor.Apply(inputs[0], math32.Tanh)); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates g · (1 - y²).
func (op *TanhOp) Backward(_, outputs, dEdy, dEdx []tensor.Tensor) error {
	y := outputs[0]
	return dEdx[0].AddAssign(tensor.Mul(dEdy[0], tensor.Sub(tensor.Scalar(1), tensor.Square(y))))
}

// SigmoidOp represents the logistic activation: output = 1 / (1 + e^(-x)).
//
// Backward pass:
//   - dσ/dx = σ(x) · (1 - σ(x))
type SigmoidOp struct {
	node
}

// NewSigmoidOp creates a new SigmoidOp reading slot x.
func NewSigmoidOp(x int) *SigmoidOp {
	return &SigmoidOp{node: newNode(x)}
}

// Type returns "Sigmoid".
func (op *SigmoidOp) Type() string { return "Sigmoid" }

// Forward computes σ(x).
func (op *SigmoidOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 1); err != nil {
		return nil, err
	}
	one := tensor.Scalar(1)
	out := alloc.Alloc(inputs[0].Dim())
	if err := out.Assign(tensor.Div(one, tensor.Add(one, tensor.Exp(tensor.Neg(inputs[0]))))); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates g · y · (1 - y).
func (op *SigmoidOp) Backward(_, outputs, dEdy, dEdx []tensor.Tensor) error {
	y := outputs[0]
	return dEdx[0].AddAssign(tensor.Mul(tensor.Mul(dEdy[0], y), tensor.Sub(tensor.Scalar(1), y)))
}

// SquaredDistanceOp computes the element-wise squared difference (a - b)².
// Sum the result to obtain a scalar loss.
//
// Backward pass:
//   - grad_a += 2·g·(a - b)
//   - grad_b -= 2·g·(a - b)
type SquaredDistanceOp struct {
	node
}

// NewSquaredDistanceOp creates a new SquaredDistanceOp reading slots a and b.
func NewSquaredDistanceOp(a, b int) *SquaredDistanceOp {
	return &SquaredDistanceOp{node: newNode(a, b)}
}

// Type returns "SquaredDistance".
func (op *SquaredDistanceOp) Type() string { return "SquaredDistance" }

// Forward computes (a - b)².
func (op *SquaredDistanceOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 2); err != nil {
		return nil, err
	}
	d, err := elementwiseDim(inputs[0].Dim(), inputs[1].Dim())
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := out.Assign(tensor.Square(tensor.Sub(inputs[0], inputs[1]))); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates ±2·g·(a - b) into the two operands.
func (op *SquaredDistanceOp) Backward(inputs, _, dEdy, dEdx []tensor.Tensor) error {
	step := tensor.Mul(tensor.Mul(tensor.Scalar(2), dEdy[0]), tensor.Sub(inputs[0], inputs[1]))
	if err := dEdx[0].AddAssign(step); err != nil {
		return err
	}
	return dEdx[1].SubAssign(step)
}
