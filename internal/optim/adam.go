package optim

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Lookup tables are updated as a whole: rows that received no gradient
// still move while their moments decay.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	targets []target
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int             // Timestep for bias correction
	m       []tensor.Tensor // First moment estimates
	v       []tensor.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over every parameter registered in c
// at the time of the call.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(c *nn.Collection, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	a := &Adam{
		targets: targets(c),
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
	}
	a.m = make([]tensor.Tensor, len(a.targets))
	a.v = make([]tensor.Tensor, len(a.targets))
	for i, t := range a.targets {
		a.m[i] = tensor.New(t.value.Dim())
		a.v[i] = tensor.New(t.value.Dim())
	}
	return a
}

// Step performs a single optimization step and zeroes the gradients.
func (a *Adam) Step() error {
	a.t++
	biasCorrection1 := 1 - math32.Pow(a.beta1, float32(a.t))
	biasCorrection2 := 1 - math32.Pow(a.beta2, float32(a.t))

	for i, t := range a.targets {
		a.update(t.value.Data(), t.grad.Data(), a.m[i].Data(), a.v[i].Data(), biasCorrection1, biasCorrection2)
	}
	zeroGrads(a.targets)
	return nil
}

// update performs the Adam update for one contiguous buffer.
func (a *Adam) update(param, grad, m, v []float32, biasCorrection1, biasCorrection2 float32) {
	for i := range param {
		g := grad[i]
		m[i] = a.beta1*m[i] + (1-a.beta1)*g
		v[i] = a.beta2*v[i] + (1-a.beta2)*g*g

		mHat := m[i] / biasCorrection1
		vHat := v[i] / biasCorrection2
		param[i] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.targets)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}

var (
	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*Adam)(nil)
)
