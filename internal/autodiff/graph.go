// Package autodiff implements reverse-mode automatic differentiation over an
// append-only computation graph.
//
// Nodes are stored in creation order. Builders only accept handles to nodes
// that already exist, so the creation order is a valid topological order and
// no sort is ever needed: forward walks nodes 0..K, backward walks K..0.
//
// Usage:
//
//	g := autodiff.NewGraph()
//	w := autodiff.Param(g, weights)
//	x := autodiff.Input(g, tensor.NewDim(2, 1), buf)
//	loss := autodiff.Sum(autodiff.SquaredDistance(w.Mul(x), y), -1)
//	if _, err := loss.Forward(); err != nil { ... }
//	if err := loss.Backward(); err != nil { ... }
package autodiff

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/autodiff/ops"
	"github.com/born-ml/graphnet/internal/tensor"
)

// ErrArgCount is returned when a node receives the wrong number of inputs.
var ErrArgCount = ops.ErrArgCount

// ErrNotEvaluated is returned by Backward when the root was not computed by
// the most recent Forward.
var ErrNotEvaluated = errors.New("backward before forward")

// Graph is an append-only store of nodes with one output tensor and one
// gradient tensor per output slot.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	nodes []ops.Node

	// outputs and grads are indexed by output slot.
	outputs []tensor.Tensor
	grads   []tensor.Tensor

	params []int       // parameter-bearing node indices, ascending
	leaves map[any]int // dedup key -> node index

	fwd, bwd  *tensor.Arena
	evaluated int // last node computed by Forward, -1 if none
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make([]ops.Node, 0, 64),
		leaves:    make(map[any]int),
		fwd:       tensor.NewArena(),
		bwd:       tensor.NewArena(),
		evaluated: -1,
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns node i.
func (g *Graph) Node(i int) ops.Node {
	return g.nodes[i]
}

// ParameterNodes returns the indices of parameter-bearing nodes.
func (g *Graph) ParameterNodes() []int {
	return append([]int(nil), g.params...)
}

// add appends n, reserving NumOutputs() fresh contiguous slots, and returns
// the index of the new node.
func (g *Graph) add(n ops.Node) int {
	for _, a := range n.Args() {
		if a < 0 || a >= len(g.outputs) {
			panic(fmt.Sprintf("autodiff: %s argument slot %d does not exist (graph has %d slots)",
				n.Type(), a, len(g.outputs)))
		}
	}

	idx := len(g.nodes)
	first := len(g.outputs)
	slots := make([]int, n.NumOutputs())
	for i := range slots {
		slots[i] = first + i
	}
	n.Bind(slots)

	g.nodes = append(g.nodes, n)
	g.outputs = append(g.outputs, make([]tensor.Tensor, len(slots))...)
	g.grads = append(g.grads, make([]tensor.Tensor, len(slots))...)
	if _, ok := n.(ops.ParameterNode); ok {
		g.params = append(g.params, idx)
	}
	return idx
}

// gather returns the tensors held by slots.
func gather(from []tensor.Tensor, slots []int) []tensor.Tensor {
	out := make([]tensor.Tensor, len(slots))
	for i, s := range slots {
		out[i] = from[s]
	}
	return out
}

// Forward computes nodes 0..k in order. Nodes after k are neither read nor
// computed. Tensors produced by an earlier Forward are invalidated.
func (g *Graph) Forward(k int) error {
	if k < 0 || k >= len(g.nodes) {
		return fmt.Errorf("autodiff: forward to node %d of %d", k, len(g.nodes))
	}

	g.evaluated = -1
	g.fwd.Reset()
	clear(g.outputs)

	for i := 0; i <= k; i++ {
		n := g.nodes[i]
		outs, err := n.Forward(gather(g.outputs, n.Args()), g.fwd)
		if err != nil {
			return fmt.Errorf("node %d (%s): %w", i, n.Type(), err)
		}
		if len(outs) != n.NumOutputs() {
			return fmt.Errorf("node %d (%s): %w: produced %d outputs, want %d",
				i, n.Type(), ErrArgCount, len(outs), n.NumOutputs())
		}
		for j, s := range n.Outputs() {
			g.outputs[s] = outs[j]
		}
		if klog.V(4).Enabled() {
			klog.Infof("forward node %d (%s) -> %v", i, n.Type(), outs[0].Dim())
		}
	}

	g.evaluated = k
	return nil
}

// backward propagates dE/dy from slot of node k back to every node before it,
// seeding that slot with ones. Gradients are zeroed first and then only ever
// accumulated, so fan-out contributions sum. When accumulate is set, every
// parameter node adds its gradient into its owning storage.
func (g *Graph) backward(k, slot int, accumulate bool) error {
	if g.evaluated < k {
		return fmt.Errorf("%w: node %d not computed", ErrNotEvaluated, k)
	}

	g.bwd.Reset()
	clear(g.grads)
	last := g.nodes[k].Outputs()
	for s := 0; s <= last[len(last)-1]; s++ {
		d := g.outputs[s].Dim()
		g.grads[s] = g.bwd.Alloc(tensor.NewDim(d.Shape()...).WithBatch(d.BatchSize()))
	}
	g.grads[slot].Fill(1)

	for i := k; i >= 0; i-- {
		n := g.nodes[i]
		if len(n.Args()) == 0 {
			continue
		}
		err := n.Backward(
			gather(g.outputs, n.Args()),
			gather(g.outputs, n.Outputs()),
			gather(g.grads, n.Outputs()),
			gather(g.grads, n.Args()),
		)
		if err != nil {
			return fmt.Errorf("node %d (%s) backward: %w", i, n.Type(), err)
		}
		if klog.V(4).Enabled() {
			klog.Infof("backward node %d (%s)", i, n.Type())
		}
	}

	if !accumulate {
		return nil
	}
	for _, i := range g.params {
		if i > k {
			break
		}
		p := g.nodes[i].(ops.ParameterNode)
		if err := p.AccumulateGrad(g.grads[p.Outputs()[0]]); err != nil {
			return fmt.Errorf("node %d (%s): %w", i, p.Type(), err)
		}
	}
	return nil
}

// Backward propagates from node k's first output slot and accumulates every
// parameter gradient. It requires a preceding Forward that reached k.
func (g *Graph) Backward(k int) error {
	if k < 0 || k >= len(g.nodes) {
		return fmt.Errorf("autodiff: backward from node %d of %d", k, len(g.nodes))
	}
	return g.backward(k, g.nodes[k].Outputs()[0], true)
}
