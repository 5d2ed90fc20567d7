// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for strided, batched float32 tensors.
//
// A Tensor is a Dim (shape, stride and batch size) over a flat buffer.
// Elementwise arithmetic composes lazily through Expr and is evaluated only
// when stored into a materialized destination:
//
//	a, _ := tensor.FromSlice(tensor.NewDim(2, 2), []float32{1, 2, 3, 4})
//	b := tensor.New(a.Dim())
//	_ = b.Assign(tensor.Mul(a, tensor.Scalar(2)))
//
// An operand with batch size 1 is replicated across every batch slot of the
// other operand. No other broadcasting exists.
package tensor

import (
	"github.com/born-ml/graphnet/internal/tensor"
)

// Dim describes a tensor layout.
type Dim = tensor.Dim

// Tensor is a view of float32 data laid out by a Dim.
type Tensor = tensor.Tensor

// Expr is a lazily evaluated elementwise expression.
type Expr = tensor.Expr

// Ownership records who owns a tensor's buffer.
type Ownership = tensor.Ownership

// Ownership tags.
const (
	Owned    = tensor.Owned
	Borrowed = tensor.Borrowed
	Aliased  = tensor.Aliased
)

// Errors.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrBatchMismatch = tensor.ErrBatchMismatch
	ErrInvalidAxis   = tensor.ErrInvalidAxis
)

// NewDim creates a batch-1 layout with row-major strides.
func NewDim(shape ...int) Dim { return tensor.NewDim(shape...) }

// New allocates a zeroed, owned tensor.
func New(d Dim) Tensor { return tensor.New(d) }

// FromSlice copies data into a new owned tensor.
func FromSlice(d Dim, data []float32) (Tensor, error) { return tensor.FromSlice(d, data) }

// Borrow wraps data without copying.
func Borrow(d Dim, data []float32) (Tensor, error) { return tensor.Borrow(d, data) }

// AsScalar returns the first element of t.
func AsScalar(t Tensor) float32 { return tensor.AsScalar(t) }

// Scalar returns a constant expression.
func Scalar(v float32) Expr { return tensor.Scalar(v) }

// Add returns a + b.
func Add(a, b Expr) Expr { return tensor.Add(a, b) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return tensor.Sub(a, b) }

// Mul returns the elementwise product a * b.
func Mul(a, b Expr) Expr { return tensor.Mul(a, b) }

// Div returns a / b.
func Div(a, b Expr) Expr { return tensor.Div(a, b) }

// Neg returns -x.
func Neg(x Expr) Expr { return tensor.Neg(x) }

// Square returns x².
func Square(x Expr) Expr { return tensor.Square(x) }

// Exp returns e^x.
func Exp(x Expr) Expr { return tensor.Exp(x) }

// MatMul adds lhs · rhs into dst for every batch slot.
func MatMul(lhs, rhs, dst Tensor) error { return tensor.MatMul(lhs, rhs, dst) }

// Sum adds the reduction of src along axis into dst.
func Sum(src, dst Tensor, axis int) error { return tensor.Sum(src, dst, axis) }

// Concatenate writes parts end to end along axis into dst.
func Concatenate(parts []Tensor, dst Tensor, axis int) error {
	return tensor.Concatenate(parts, dst, axis)
}

// Split writes consecutive ranges of src along axis into parts.
func Split(src Tensor, parts []Tensor, axis int) error { return tensor.Split(src, parts, axis) }
