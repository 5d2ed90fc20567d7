// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over an
// append-only computation graph.
//
// Example:
//
//	g := autodiff.NewGraph()
//	w := autodiff.Param(g, weights)
//	x := autodiff.Input(g, tensor.NewDim(2, 1), buf)
//	loss := autodiff.Sum(w.Mul(x), -1)
//
//	if _, err := loss.Forward(); err != nil { ... }
//	if err := loss.Backward(); err != nil { ... }
//	// weights.Grad() now holds dloss/dw.
package autodiff

import (
	"github.com/born-ml/graphnet/internal/autodiff"
	"github.com/born-ml/graphnet/internal/autodiff/ops"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Graph is an append-only store of nodes.
type Graph = autodiff.Graph

// Expression is a handle to one output of a graph node.
type Expression = autodiff.Expression

// ParamSource is learnable storage that Param can register.
type ParamSource = ops.ParamSource

// LookupSource is a learnable table that Lookup can register.
type LookupSource = ops.LookupSource

// CheckOptions controls CheckGradient.
type CheckOptions = autodiff.CheckOptions

// Report is the result of CheckGradient.
type Report = autodiff.Report

// ElementCheck is one compared gradient element.
type ElementCheck = autodiff.ElementCheck

// Errors.
var (
	ErrArgCount     = autodiff.ErrArgCount
	ErrNotEvaluated = autodiff.ErrNotEvaluated
	ErrNotScalar    = autodiff.ErrNotScalar
	ErrLookupIndex  = ops.ErrLookupIndex
)

// NewGraph creates an empty graph.
func NewGraph() *Graph { return autodiff.NewGraph() }

// Input registers caller-owned data as a leaf.
func Input(g *Graph, dim tensor.Dim, data []float32) Expression { return autodiff.Input(g, dim, data) }

// Param registers a learnable parameter.
func Param(g *Graph, p ParamSource) Expression { return autodiff.Param(g, p) }

// Lookup registers row index of a lookup table.
func Lookup(g *Graph, lp LookupSource, index int) Expression { return autodiff.Lookup(g, lp, index) }

// ScalarDiv returns c / e.
func ScalarDiv(c float32, e Expression) Expression { return autodiff.ScalarDiv(c, e) }

// Concat concatenates xs along axis.
func Concat(xs []Expression, axis int) Expression { return autodiff.Concat(xs, axis) }

// Split divides x into n equal parts along axis.
func Split(x Expression, n, axis int) []Expression { return autodiff.Split(x, n, axis) }

// Sum reduces x along axis.
func Sum(x Expression, axis int) Expression { return autodiff.Sum(x, axis) }

// Tanh returns tanh(x).
func Tanh(x Expression) Expression { return autodiff.Tanh(x) }

// Sigmoid returns the logistic function of x.
func Sigmoid(x Expression) Expression { return autodiff.Sigmoid(x) }

// SquaredDistance returns (a - b)² elementwise.
func SquaredDistance(a, b Expression) Expression { return autodiff.SquaredDistance(a, b) }

// DefaultCheckOptions returns the default gradient check settings.
func DefaultCheckOptions() CheckOptions { return autodiff.DefaultCheckOptions() }

// CheckGradient compares analytic and finite-difference gradients of e.
func CheckGradient(e Expression, opts CheckOptions) (*Report, error) {
	return autodiff.CheckGradient(e, opts)
}
