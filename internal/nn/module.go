// Package nn implements learnable parameter storage and small network
// building blocks on top of the autodiff graph.
//
// This package provides:
//   - Parameter: a dense learnable tensor with its gradient buffer
//   - LookupParameter: a table of learnable rows selected by key
//   - Collection: the owner of every parameter a model registers
//   - Initializers: Normal, Xavier, Constant
//   - Linear, MLP: layers built from graph expressions
//   - SquaredLoss: batch-averaged squared error
//
// Layers hold parameters, not graph nodes. Forward registers the parameters
// with the graph it is given, so one model can be evaluated in any number of
// graphs.
package nn

import (
	"github.com/born-ml/graphnet/internal/autodiff"
)

// Module is the base interface for network components.
//
// Modules can be composed:
//
//	c := nn.NewCollection(1)
//	mlp := nn.NewMLP(c, 2, 8, 1)
//	y := mlp.Forward(x)
type Module interface {
	// Forward appends the module's computation on x to x's graph and returns
	// the result.
	Forward(x autodiff.Expression) autodiff.Expression

	// Parameters returns every parameter the module reads.
	Parameters() []*Parameter
}
