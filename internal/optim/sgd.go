package optim

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(collection, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	targets    []target
	lr         float32
	momentum   float32
	velocities []tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.1)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over every parameter registered in c
// at the time of the call.
func NewSGD(c *nn.Collection, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.1
	}

	s := &SGD{
		targets:  targets(c),
		lr:       config.LR,
		momentum: config.Momentum,
	}
	if s.momentum != 0 {
		s.velocities = make([]tensor.Tensor, len(s.targets))
		for i, t := range s.targets {
			s.velocities[i] = tensor.New(t.value.Dim())
		}
	}
	return s
}

// Step performs a single optimization step and zeroes the gradients.
func (s *SGD) Step() error {
	lr := tensor.Scalar(s.lr)
	for i, t := range s.targets {
		step := tensor.Expr(t.grad)
		if s.momentum != 0 {
			v := s.velocities[i]
			if err := v.Assign(tensor.Add(tensor.Mul(tensor.Scalar(s.momentum), v), t.grad)); err != nil {
				return fmt.Errorf("sgd %q: %w", t.name, err)
			}
			step = v
		}
		if err := t.value.SubAssign(tensor.Mul(lr, step)); err != nil {
			return fmt.Errorf("sgd %q: %w", t.name, err)
		}
	}
	zeroGrads(s.targets)
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.targets)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
