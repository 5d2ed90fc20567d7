package ops

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// DivOp represents an element-wise division: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b
//   - d(a/b)/db = -a/b² = -output/b
type DivOp struct {
	node
}

// NewDivOp creates a new DivOp reading slots a and b.
func NewDivOp(a, b int) *DivOp {
	return &DivOp{node: newNode(a, b)}
}

// Type returns "Divide".
func (op *DivOp) Type() string { return "Divide" }

// Forward computes a / b.
func (op *DivOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 2); err != nil {
		return nil, err
	}
	d, err := elementwiseDim(inputs[0].Dim(), inputs[1].Dim())
	if err != nil {
		return nil, err
	}
	out := alloc.Alloc(d)
	if err := out.Assign(tensor.Div(inputs[0], inputs[1])); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates grad_a += g/b and grad_b -= g·y/b.
func (op *DivOp) Backward(inputs, outputs, dEdy, dEdx []tensor.Tensor) error {
	b, y, g := inputs[1], outputs[0], dEdy[0]
	if err := dEdx[0].AddAssign(tensor.Div(g, b)); err != nil {
		return err
	}
	return dEdx[1].SubAssign(tensor.Div(tensor.Mul(g, y), b))
}

// ConstSide selects which operand of a DivConstOp is the constant.
type ConstSide int

const (
	// ConstDenominator computes x / c.
	ConstDenominator ConstSide = iota

	// ConstNumerator computes c / x.
	ConstNumerator
)

// DivConstOp divides by, or into, a constant.
//
// Backward pass:
//   - x / c: grad_x += g / c
//   - c / x: grad_x -= g · c/x² = g · y/x
type DivConstOp struct {
	node
	value float32
	side  ConstSide
}

// NewDivConstOp creates a new DivConstOp reading slot x.
func NewDivConstOp(x int, value float32, side ConstSide) *DivConstOp {
	return &DivConstOp{node: newNode(x), value: value, side: side}
}

// Type returns "DivideConst".
func (op *DivConstOp) Type() string { return "DivideConst" }

// Forward computes x / c or c / x.
func (op *DivConstOp) Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 1); err != nil {
		return nil, err
	}
	x := inputs[0]
	out := alloc.Alloc(x.Dim())

	var e tensor.Expr
	switch op.side {
	case ConstDenominator:
		e = tensor.Div(x, tensor.Scalar(op.value))
	case ConstNumerator:
		e = tensor.Div(tensor.Scalar(op.value), x)
	default:
		return nil, fmt.Errorf("unknown constant side %d", op.side)
	}
	if err := out.Assign(e); err != nil {
		return nil, err
	}
	return []tensor.Tensor{out}, nil
}

// Backward accumulates the gradient of the non-constant operand.
func (op *DivConstOp) Backward(inputs, outputs, dEdy, dEdx []tensor.Tensor) error {
	x, y, g := inputs[0], outputs[0], dEdy[0]
	if op.side == ConstDenominator {
		return dEdx[0].AddAssign(tensor.Div(g, tensor.Scalar(op.value)))
	}
	return dEdx[0].SubAssign(tensor.Div(tensor.Mul(g, y), x))
}
