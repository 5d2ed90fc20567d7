// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/autodiff"
	"github.com/born-ml/graphnet/nn"
	"github.com/born-ml/graphnet/optim"
	"github.com/born-ml/graphnet/tensor"
)

// TestModuleInterface verifies that concrete types implement Module.
func TestModuleInterface(t *testing.T) {
	c := nn.NewCollection(1)
	tests := []struct {
		name   string
		module nn.Module
		params int
	}{
		{"Linear", nn.NewLinear(c, "fc", 2, 2), 2},
		{"MLP", nn.NewMLP(c, 2, 3, 2), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := autodiff.NewGraph()
			x := autodiff.Input(g, tensor.NewDim(2, 1), []float32{1, 2})
			out, err := tt.module.Forward(x).Forward()
			require.NoError(t, err)
			assert.Equal(t, []int{2, 1}, out.Dim().Shape())
			assert.Len(t, tt.module.Parameters(), tt.params)
		})
	}
}

// TestPublicTrainingStep runs one update through the public packages only.
func TestPublicTrainingStep(t *testing.T) {
	c := nn.NewCollection(1)
	w := c.AddParameterWith("w", nn.Constant(1), 1, 2)
	opt := optim.NewSGD(c, optim.SGDConfig{LR: 0.5})

	g := autodiff.NewGraph()
	x := autodiff.Input(g, tensor.NewDim(2, 1), []float32{1, 2})
	loss := autodiff.Sum(autodiff.Param(g, w).Mul(x), -1)

	out, err := loss.Forward()
	require.NoError(t, err)
	assert.Equal(t, float32(3), tensor.AsScalar(out))

	require.NoError(t, loss.Backward())
	require.NoError(t, opt.Step())
	assert.Equal(t, []float32{0.5, 0}, w.Value().Values())
}
