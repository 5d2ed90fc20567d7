package ops

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// InputOp exposes caller-owned data as a graph leaf.
//
// The buffer is borrowed: every Forward re-reads it, so a training loop can
// overwrite the data between sweeps without rebuilding the graph.
type InputOp struct {
	node
	dim  tensor.Dim
	data []float32
}

// NewInputOp creates an input node over data laid out as dim.
func NewInputOp(dim tensor.Dim, data []float32) *InputOp {
	return &InputOp{node: newNode(), dim: dim, data: data}
}

// Type returns "Input".
func (op *InputOp) Type() string { return "Input" }

// Forward wraps the borrowed buffer.
func (op *InputOp) Forward(inputs []tensor.Tensor, _ tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 0); err != nil {
		return nil, err
	}
	t, err := tensor.Borrow(op.dim, op.data)
	if err != nil {
		return nil, err
	}
	return []tensor.Tensor{t}, nil
}

// Backward is a no-op: inputs are not learnable.
func (op *InputOp) Backward(_, _, _, _ []tensor.Tensor) error { return nil }

// ParameterOp exposes a learnable tensor by alias.
type ParameterOp struct {
	node
	src ParamSource
}

// NewParameterOp creates a parameter leaf.
func NewParameterOp(src ParamSource) *ParameterOp {
	return &ParameterOp{node: newNode(), src: src}
}

// Type returns "Parameter".
func (op *ParameterOp) Type() string { return "Parameter" }

// Source returns the backing storage.
func (op *ParameterOp) Source() ParamSource { return op.src }

// Forward returns an aliased view of the parameter value.
func (op *ParameterOp) Forward(inputs []tensor.Tensor, _ tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 0); err != nil {
		return nil, err
	}
	return []tensor.Tensor{op.src.Value().Alias()}, nil
}

// Backward is a no-op; see AccumulateGrad.
func (op *ParameterOp) Backward(_, _, _, _ []tensor.Tensor) error { return nil }

// AccumulateGrad adds dEdy into the parameter gradient.
func (op *ParameterOp) AccumulateGrad(dEdy tensor.Tensor) error {
	if err := op.src.Grad().AddAssign(dEdy); err != nil {
		return fmt.Errorf("parameter %q: %w", op.src.Name(), err)
	}
	return nil
}

// LookupOp exposes one row of a lookup table by alias.
type LookupOp struct {
	node
	src   LookupSource
	index int
}

// NewLookupOp creates a lookup leaf reading row index of src.
func NewLookupOp(src LookupSource, index int) *LookupOp {
	return &LookupOp{node: newNode(), src: src, index: index}
}

// Type returns "Lookup".
func (op *LookupOp) Type() string { return "Lookup" }

// Source returns the backing table.
func (op *LookupOp) Source() LookupSource { return op.src }

// Index returns the row key.
func (op *LookupOp) Index() int { return op.index }

// Forward returns an aliased view of the selected row.
func (op *LookupOp) Forward(inputs []tensor.Tensor, _ tensor.Allocator) ([]tensor.Tensor, error) {
	if err := checkArgs(op.Type(), inputs, 0); err != nil {
		return nil, err
	}
	if op.index < 0 || op.index >= op.src.Vocab() {
		return nil, fmt.Errorf("%w: %q has %d rows, index %d", ErrLookupIndex, op.src.Name(), op.src.Vocab(), op.index)
	}
	return []tensor.Tensor{op.src.Row(op.index).Alias()}, nil
}

// Backward is a no-op; see AccumulateGrad.
func (op *LookupOp) Backward(_, _, _, _ []tensor.Tensor) error { return nil }

// AccumulateGrad adds dEdy into the gradient row of the looked-up key.
func (op *LookupOp) AccumulateGrad(dEdy tensor.Tensor) error {
	if err := op.src.GradRow(op.index).AddAssign(dEdy); err != nil {
		return fmt.Errorf("lookup %q[%d]: %w", op.src.Name(), op.index, err)
	}
	return nil
}
