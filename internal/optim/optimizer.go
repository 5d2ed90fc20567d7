// Package optim implements optimization algorithms for the parameters of an
// nn.Collection.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Step reads the gradients that Backward accumulated into each parameter,
// updates the values in place, and then zeroes the gradients.
//
// Example usage:
//
//	c := nn.NewCollection(seed)
//	mlp := nn.NewMLP(c, 2, 8, 1)
//	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.1})
//
//	for epoch := range epochs {
//	    if _, err := loss.Forward(); err != nil { ... }
//	    if err := loss.Backward(); err != nil { ... }
//	    if err := opt.Step(); err != nil { ... }
//	}
package optim

import (
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter from its accumulated
	// gradient and then zeroes the gradient.
	Step() error

	// ZeroGrad clears all parameter gradients without updating.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate.
	SetLR(lr float32)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// target is one learnable buffer: a dense parameter or a whole lookup table.
type target struct {
	name  string
	value tensor.Tensor
	grad  tensor.Tensor
}

// targets lists the buffers of c in registration order, dense parameters first.
func targets(c *nn.Collection) []target {
	out := make([]target, 0, len(c.Parameters())+len(c.LookupParameters()))
	for _, p := range c.Parameters() {
		out = append(out, target{name: p.Name(), value: p.Value(), grad: p.Grad()})
	}
	for _, lp := range c.LookupParameters() {
		out = append(out, target{name: lp.Name(), value: lp.Values(), grad: lp.Grads()})
	}
	return out
}

func zeroGrads(ts []target) {
	for _, t := range ts {
		t.grad.Zero()
	}
}
