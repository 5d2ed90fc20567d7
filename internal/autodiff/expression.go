package autodiff

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/autodiff/ops"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Expression is a handle to one output slot of a graph node.
// Building an expression appends a node; nothing is computed until Forward.
type Expression struct {
	g    *Graph
	node int
	slot int
}

// Graph returns the owning graph.
func (e Expression) Graph() *Graph { return e.g }

// Node returns the node index.
func (e Expression) Node() int { return e.node }

// Slot returns the output slot index.
func (e Expression) Slot() int { return e.slot }

// Forward evaluates the graph up to this expression's node and returns its
// value. The tensor stays valid until the next Forward on the graph.
func (e Expression) Forward() (tensor.Tensor, error) {
	e.check()
	if err := e.g.Forward(e.node); err != nil {
		return tensor.Tensor{}, err
	}
	return e.g.outputs[e.slot], nil
}

// Backward seeds this expression with ones, propagates gradients to every
// earlier node and accumulates them into parameter storage. The expression
// must have been computed by the most recent Forward.
func (e Expression) Backward() error {
	e.check()
	return e.g.backward(e.node, e.slot, true)
}

// Value returns the value computed by the most recent Forward, or the zero
// Tensor if the node was not computed.
func (e Expression) Value() tensor.Tensor {
	e.check()
	return e.g.outputs[e.slot]
}

// Grad returns dE/d(e) from the most recent Backward, or the zero Tensor if
// none reached this node.
func (e Expression) Grad() tensor.Tensor {
	e.check()
	return e.g.grads[e.slot]
}

func (e Expression) check() {
	if e.g == nil {
		panic("autodiff: zero Expression")
	}
}

// build appends n to g and returns a handle to its first output.
func build(g *Graph, n ops.Node) Expression {
	idx := g.add(n)
	return Expression{g: g, node: idx, slot: n.Outputs()[0]}
}

// sameGraph panics unless every expression belongs to one graph, which it returns.
func sameGraph(op string, xs ...Expression) *Graph {
	if len(xs) == 0 {
		panic(fmt.Sprintf("autodiff: %s needs at least one argument", op))
	}
	g := xs[0].g
	for _, x := range xs {
		x.check()
		if x.g != g {
			panic(fmt.Sprintf("autodiff: %s mixes expressions from different graphs", op))
		}
	}
	return g
}

// Input registers caller-owned data as a leaf. The buffer is borrowed, so
// writes to data between Forward calls feed new values through the graph.
func Input(g *Graph, dim tensor.Dim, data []float32) Expression {
	return build(g, ops.NewInputOp(dim, data))
}

// Param registers a learnable parameter.
//
// Unlike every other builder, Param does not always append a node: registering
// the same parameter twice in one graph returns the existing node. Each
// parameter then owns exactly one leaf, which CheckGradient relies on when it
// perturbs the parameter's storage. Backward results are the same either way.
func Param(g *Graph, p ops.ParamSource) Expression {
	if idx, ok := g.leaves[p]; ok {
		return Expression{g: g, node: idx, slot: g.nodes[idx].Outputs()[0]}
	}
	e := build(g, ops.NewParameterOp(p))
	g.leaves[p] = e.node
	return e
}

type lookupKey struct {
	src   ops.LookupSource
	index int
}

// Lookup registers row index of a lookup table as a learnable leaf. Like
// Param, a repeated (table, index) pair returns the existing node.
func Lookup(g *Graph, lp ops.LookupSource, index int) Expression {
	key := lookupKey{lp, index}
	if idx, ok := g.leaves[key]; ok {
		return Expression{g: g, node: idx, slot: g.nodes[idx].Outputs()[0]}
	}
	e := build(g, ops.NewLookupOp(lp, index))
	g.leaves[key] = e.node
	return e
}

// Add returns e + x.
func (e Expression) Add(x Expression) Expression {
	g := sameGraph("Add", e, x)
	return build(g, ops.NewAddOp(e.slot, x.slot))
}

// Mul returns the matrix product e · x.
func (e Expression) Mul(x Expression) Expression {
	g := sameGraph("Mul", e, x)
	return build(g, ops.NewMatMulOp(e.slot, x.slot))
}

// Div returns the element-wise quotient e / x.
func (e Expression) Div(x Expression) Expression {
	g := sameGraph("Div", e, x)
	return build(g, ops.NewDivOp(e.slot, x.slot))
}

// DivScalar returns e / c.
func (e Expression) DivScalar(c float32) Expression {
	g := sameGraph("DivScalar", e)
	return build(g, ops.NewDivConstOp(e.slot, c, ops.ConstDenominator))
}

// ScalarDiv returns c / e.
func ScalarDiv(c float32, e Expression) Expression {
	g := sameGraph("ScalarDiv", e)
	return build(g, ops.NewDivConstOp(e.slot, c, ops.ConstNumerator))
}

// Concat concatenates xs along axis; axis == rank stacks along the batch.
func Concat(xs []Expression, axis int) Expression {
	g := sameGraph("Concat", xs...)
	slots := make([]int, len(xs))
	for i, x := range xs {
		slots[i] = x.slot
	}
	return build(g, ops.NewConcatOp(axis, slots...))
}

// Split divides x into n equal parts along axis. The parts occupy n
// consecutive output slots of a single node.
func Split(x Expression, n, axis int) []Expression {
	g := sameGraph("Split", x)
	if n <= 0 {
		panic(fmt.Sprintf("autodiff: Split into %d parts", n))
	}
	op := ops.NewSplitOp(x.slot, n, axis)
	idx := g.add(op)

	parts := make([]Expression, n)
	for i, s := range op.Outputs() {
		parts[i] = Expression{g: g, node: idx, slot: s}
	}
	return parts
}

// Sum reduces x along axis: -1 sums every element of a batch slot, rank sums
// across the batch, anything else removes that axis.
func Sum(x Expression, axis int) Expression {
	g := sameGraph("Sum", x)
	return build(g, ops.NewSumOp(x.slot, axis))
}

// Tanh returns tanh(x).
func Tanh(x Expression) Expression {
	g := sameGraph("Tanh", x)
	return build(g, ops.NewTanhOp(x.slot))
}

// Sigmoid returns 1 / (1 + e^(-x)).
func Sigmoid(x Expression) Expression {
	g := sameGraph("Sigmoid", x)
	return build(g, ops.NewSigmoidOp(x.slot))
}

// SquaredDistance returns (a - b)² element-wise.
func SquaredDistance(a, b Expression) Expression {
	g := sameGraph("SquaredDistance", a, b)
	return build(g, ops.NewSquaredDistanceOp(a.slot, b.slot))
}
