package optim_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/internal/autodiff"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/internal/tensor"
)

// scalarParam registers a one-element parameter holding v.
func scalarParam(c *nn.Collection, name string, v float32) *nn.Parameter {
	return c.AddParameterWith(name, nn.Constant(v), 1)
}

func TestSGD_SimpleUpdate(t *testing.T) {
	c := nn.NewCollection(1)
	x := scalarParam(c, "x", 2)
	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.1})

	x.Grad().Fill(1)
	require.NoError(t, opt.Step())

	// x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, x.Value().Values()[0], 1e-6)
	assert.Equal(t, []float32{0}, x.Grad().Values())
}

func TestSGD_WithMomentum(t *testing.T) {
	c := nn.NewCollection(1)
	x := scalarParam(c, "x", 1)
	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v1 = 1, x = 1 - 0.1 = 0.9
	x.Grad().Fill(1)
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.9, x.Value().Values()[0], 1e-6)

	// v2 = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	x.Grad().Fill(1)
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.71, x.Value().Values()[0], 1e-6)
}

func TestSGD_Defaults(t *testing.T) {
	opt := optim.NewSGD(nn.NewCollection(1), optim.SGDConfig{})
	assert.Equal(t, float32(0.1), opt.GetLR())
	opt.SetLR(0.5)
	assert.Equal(t, float32(0.5), opt.GetLR())
	assert.NoError(t, opt.Step())
}

func TestSGD_LookupRows(t *testing.T) {
	c := nn.NewCollection(1)
	lp := c.AddLookupParameter("emb", 3, 2)
	before := lp.Values().Values()
	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.5})

	lp.GradRow(1).Fill(2)
	require.NoError(t, opt.Step())

	after := lp.Values().Values()
	for i := range after {
		want := before[i]
		if i == 2 || i == 3 {
			want -= 1
		}
		assert.InDelta(t, want, after[i], 1e-6, "element %d", i)
	}
	assert.Equal(t, make([]float32, 6), lp.Grads().Values())
}

func TestSGD_ZeroGrad(t *testing.T) {
	c := nn.NewCollection(1)
	x := scalarParam(c, "x", 3)
	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.1})

	x.Grad().Fill(5)
	opt.ZeroGrad()
	assert.Equal(t, []float32{0}, x.Grad().Values())
	assert.Equal(t, []float32{3}, x.Value().Values())
}

func TestAdam_FirstStep(t *testing.T) {
	c := nn.NewCollection(1)
	x := scalarParam(c, "x", 1)
	opt := optim.NewAdam(c, optim.AdamConfig{LR: 0.1})

	// With bias correction the first step moves by lr * sign(grad).
	x.Grad().Fill(4)
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.9, x.Value().Values()[0], 1e-5)
	assert.Equal(t, 1, opt.GetTimestep())
	assert.Equal(t, []float32{0}, x.Grad().Values())
}

func TestAdam_Defaults(t *testing.T) {
	opt := optim.NewAdam(nn.NewCollection(1), optim.AdamConfig{})
	assert.Equal(t, float32(0.001), opt.GetLR())
	opt.SetLR(0.01)
	assert.Equal(t, float32(0.01), opt.GetLR())
}

// minimize runs steps of gradient descent on (x - 3)² and returns x.
func minimize(t *testing.T, newOpt func(c *nn.Collection) optim.Optimizer, steps int) float32 {
	t.Helper()
	c := nn.NewCollection(1)
	xp := scalarParam(c, "x", 0)
	opt := newOpt(c)

	g := autodiff.NewGraph()
	target := autodiff.Input(g, tensor.NewDim(1), []float32{3})
	loss := autodiff.SquaredDistance(autodiff.Param(g, xp), target)

	for i := 0; i < steps; i++ {
		_, err := loss.Forward()
		require.NoError(t, err)
		require.NoError(t, loss.Backward())
		require.NoError(t, opt.Step())
	}
	return xp.Value().Values()[0]
}

func TestOptimizers_Converge(t *testing.T) {
	tests := []struct {
		name   string
		newOpt func(c *nn.Collection) optim.Optimizer
		steps  int
	}{
		{"SGD", func(c *nn.Collection) optim.Optimizer {
			return optim.NewSGD(c, optim.SGDConfig{LR: 0.1})
		}, 100},
		{"SGDMomentum", func(c *nn.Collection) optim.Optimizer {
			return optim.NewSGD(c, optim.SGDConfig{LR: 0.05, Momentum: 0.5})
		}, 200},
		{"Adam", func(c *nn.Collection) optim.Optimizer {
			return optim.NewAdam(c, optim.AdamConfig{LR: 0.1})
		}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := minimize(t, tt.newOpt, tt.steps)
			assert.Less(t, math32.Abs(x-3), float32(0.05), "x = %g", x)
		})
	}
}
