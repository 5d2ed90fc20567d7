// Package ops defines the closed set of graph nodes and their forward and
// backward rules.
//
// Every node implements Node:
//   - Forward: infers output layouts from its inputs and computes its output slot(s)
//   - Backward: adds dE/dx for each input into the matching gradient tensor
//
// Supported nodes:
//   - InputOp: borrowed external data
//   - ParameterOp, LookupOp: learnable leaves aliased from parameter storage
//   - AddOp: a + b
//   - MatMulOp: matrix product (dE/dW = dEdy·xᵀ, dE/dx = Wᵀ·dEdy)
//   - DivOp: a / b
//   - DivConstOp: a / c or c / a
//   - SumOp: reduction along an axis
//   - ConcatOp, SplitOp: concatenation and its inverse
//   - TanhOp, SigmoidOp: elementwise activations
//   - SquaredDistanceOp: (a - b)²
//
// Gradient tensors are never assigned, only accumulated into, so a value that
// feeds several consumers receives the sum of their contributions.
package ops

import (
	"errors"
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// ErrArgCount is returned when a node receives the wrong number of inputs.
var ErrArgCount = errors.New("wrong number of arguments")

// ErrLookupIndex is returned when a lookup key is outside the table.
var ErrLookupIndex = errors.New("lookup index out of range")

// Node is one operation in a computation graph.
type Node interface {
	// Type returns the operation name used in logs and errors.
	Type() string

	// Args returns the output slots this node reads, in argument order.
	Args() []int

	// Outputs returns the output slots this node writes.
	Outputs() []int

	// NumOutputs returns how many output slots the node needs.
	NumOutputs() int

	// Bind records the slots reserved for the node's outputs.
	// It must be called exactly once, before the first Forward.
	Bind(slots []int)

	// Forward computes the node's outputs from its inputs. Output buffers
	// come from alloc; leaves return views of caller or parameter storage.
	Forward(inputs []tensor.Tensor, alloc tensor.Allocator) ([]tensor.Tensor, error)

	// Backward adds dE/dx for every input into dEdx, given the forward inputs
	// and outputs and the gradients dEdy of the outputs.
	Backward(inputs, outputs, dEdy, dEdx []tensor.Tensor) error

	sealed()
}

// ParameterNode is a leaf backed by learnable storage.
type ParameterNode interface {
	Node

	// AccumulateGrad adds the gradient of the node's output into the owning
	// storage's gradient buffer.
	AccumulateGrad(dEdy tensor.Tensor) error
}

// ParamSource is learnable storage exposed to a ParameterOp.
type ParamSource interface {
	Name() string
	Value() tensor.Tensor
	Grad() tensor.Tensor
}

// LookupSource is a table of learnable rows exposed to a LookupOp.
type LookupSource interface {
	Name() string
	Vocab() int
	Row(i int) tensor.Tensor
	GradRow(i int) tensor.Tensor
}

// node carries the argument and output slot bookkeeping shared by all ops.
type node struct {
	args []int
	outs []int
}

func newNode(args ...int) node {
	return node{args: append([]int(nil), args...)}
}

// Args returns the input slots.
func (n *node) Args() []int { return n.args }

// Outputs returns the output slots.
func (n *node) Outputs() []int { return n.outs }

// NumOutputs returns 1; multi-output nodes override it.
func (n *node) NumOutputs() int { return 1 }

// Bind records the reserved output slots.
func (n *node) Bind(slots []int) {
	if n.outs != nil {
		panic("ops: node bound twice")
	}
	n.outs = append([]int(nil), slots...)
}

func (n *node) sealed() {}

// checkArgs validates the input count.
func checkArgs(op string, inputs []tensor.Tensor, want int) error {
	if len(inputs) != want {
		return fmt.Errorf("%w: %s takes %d inputs, got %d", ErrArgCount, op, want, len(inputs))
	}
	return nil
}

// elementwiseDim returns the output layout of an elementwise binary node:
// shapes must match and batches follow the broadcast rule.
func elementwiseDim(a, b tensor.Dim) (tensor.Dim, error) {
	if !a.Equal(b) {
		return tensor.Dim{}, fmt.Errorf("%w: %v vs %v", tensor.ErrShapeMismatch, a, b)
	}
	nb, err := tensor.BroadcastBatch(a.BatchSize(), b.BatchSize())
	if err != nil {
		return tensor.Dim{}, err
	}
	return tensor.NewDim(a.Shape()...).WithBatch(nb), nil
}
