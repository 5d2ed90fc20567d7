// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides learnable parameters and layers for graph models.
//
// Example:
//
//	c := nn.NewCollection(1)
//	mlp := nn.NewMLP(c, 2, 8, 1)
//
//	g := autodiff.NewGraph()
//	x := autodiff.Input(g, tensor.NewDim(2, 1), buf)
//	loss := nn.SquaredLoss(mlp.Forward(x), target, 1)
package nn

import (
	"github.com/born-ml/graphnet/autodiff"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/tensor"
)

// Module is the base interface for network components.
type Module = nn.Module

// Parameter is a learnable tensor and its gradient.
type Parameter = nn.Parameter

// LookupParameter is a table of learnable rows.
type LookupParameter = nn.LookupParameter

// Collection owns the parameters of a model.
type Collection = nn.Collection

// Initializer fills a new parameter.
type Initializer = nn.Initializer

// InitializerFunc adapts a function to Initializer.
type InitializerFunc = nn.InitializerFunc

// Linear is a fully connected layer.
type Linear = nn.Linear

// MLP is a two-layer tanh perceptron.
type MLP = nn.MLP

// NewCollection creates an empty collection seeded with seed.
func NewCollection(seed int64) *Collection { return nn.NewCollection(seed) }

// NewParameter allocates a standalone parameter.
func NewParameter(name string, d tensor.Dim, init Initializer) *Parameter {
	return nn.NewParameter(name, d, init)
}

// NewLookupParameter allocates a standalone vocab x emb table.
func NewLookupParameter(name string, vocab, emb int, init Initializer) *LookupParameter {
	return nn.NewLookupParameter(name, vocab, emb, init)
}

// Constant sets every element to v.
func Constant(v float32) Initializer { return nn.Constant(v) }

// NewLinear creates a Linear layer registered in c.
func NewLinear(c *Collection, name string, in, out int) *Linear { return nn.NewLinear(c, name, in, out) }

// NewMLP creates an MLP registered in c.
func NewMLP(c *Collection, in, hidden, out int) *MLP { return nn.NewMLP(c, in, hidden, out) }

// SquaredLoss returns the batch-averaged squared error.
func SquaredLoss(pred, target autodiff.Expression, batch int) autodiff.Expression {
	return nn.SquaredLoss(pred, target, batch)
}
