package nn

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/autodiff"
)

// Linear implements a fully connected layer on column vectors.
//
// Performs the transformation: y = W·x + b
// where:
//   - x is the input with shape (in, 1), optionally batched
//   - W is the weight matrix with shape (out, in)
//   - b is the bias with shape (out, 1), shared by every batch slot
//   - y is the output with shape (out, 1) and the batch of x
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
}

// NewLinear creates a Linear layer and registers its parameters in c as
// name.weight and name.bias.
func NewLinear(c *Collection, name string, inFeatures, outFeatures int) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("nn.NewLinear: invalid features %d -> %d", inFeatures, outFeatures))
	}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      c.AddParameterWith(name+".weight", Xavier(c.Rand()), outFeatures, inFeatures),
		bias:        c.AddParameterWith(name+".bias", Constant(0), outFeatures, 1),
	}
}

// Forward computes W·x + b in x's graph.
func (l *Linear) Forward(x autodiff.Expression) autodiff.Expression {
	g := x.Graph()
	w := autodiff.Param(g, l.weight)
	b := autodiff.Param(g, l.bias)
	return w.Mul(x).Add(b)
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// MLP is a two-layer perceptron: y = W2·tanh(W1·x + b1) + b2.
type MLP struct {
	hidden *Linear
	output *Linear
}

// NewMLP creates an MLP with parameters hidden.* and output.* registered in c.
func NewMLP(c *Collection, in, hidden, out int) *MLP {
	return &MLP{
		hidden: NewLinear(c, "hidden", in, hidden),
		output: NewLinear(c, "output", hidden, out),
	}
}

// Forward computes the network output in x's graph.
func (m *MLP) Forward(x autodiff.Expression) autodiff.Expression {
	return m.output.Forward(autodiff.Tanh(m.hidden.Forward(x)))
}

// Parameters returns the hidden then output layer parameters.
func (m *MLP) Parameters() []*Parameter {
	return append(m.hidden.Parameters(), m.output.Parameters()...)
}

var (
	_ Module = (*Linear)(nil)
	_ Module = (*MLP)(nil)
)
