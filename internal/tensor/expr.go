package tensor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Expr is a lazily evaluated elementwise expression.
//
// Composing expressions never allocates; elements are computed one at a time
// when the expression is stored into a destination Tensor with Assign,
// AddAssign, SubAssign, MulAssign or DivAssign.
//
// Example:
//
//	// t = (a - b)² * c, evaluated in a single pass
//	err := t.Assign(tensor.Mul(tensor.Square(tensor.Sub(a, b)), c))
type Expr interface {
	// At returns element i of batch slot b. Operands with batch size 1
	// read slot 0 for every b.
	At(i, b int) float32

	// Len returns the element count per batch slot, or -1 for a scalar that
	// adapts to any length.
	Len() (int, error)

	// Batch returns the batch size of the expression.
	Batch() (int, error)
}

type scalar float32

// Scalar returns a zero-rank expression that evaluates to v everywhere.
func Scalar(v float32) Expr {
	return scalar(v)
}

func (s scalar) At(int, int) float32 { return float32(s) }
func (s scalar) Len() (int, error) { return -1, nil }
func (s scalar) Batch() (int, error) { return 1, nil }

type unary struct {
	x  Expr
	fn func(float32) float32
}

func (u unary) At(i, b int) float32 { return u.fn(u.x.At(i, b)) }
func (u unary) Len() (int, error) { return u.x.Len() }
func (u unary) Batch() (int, error) { return u.x.Batch() }

type binary struct {
	a, b Expr
	fn   func(x, y float32) float32
}

func (e binary) At(i, b int) float32 { return e.fn(e.a.At(i, b), e.b.At(i, b)) }

func (e binary) Len() (int, error) {
	la, err := e.a.Len()
	if err != nil {
		return 0, err
	}
	lb, err := e.b.Len()
	if err != nil {
		return 0, err
	}
	switch {
	case la < 0:
		return lb, nil
	case lb < 0, la == lb:
		return la, nil
	default:
		return 0, fmt.Errorf("%w: %d elements vs %d elements", ErrShapeMismatch, la, lb)
	}
}

func (e binary) Batch() (int, error) {
	ba, err := e.a.Batch()
	if err != nil {
		return 0, err
	}
	bb, err := e.b.Batch()
	if err != nil {
		return 0, err
	}
	return BroadcastBatch(ba, bb)
}

// BroadcastBatch returns the batch size of an elementwise combination of
// operands with batch sizes a and b. A batch of 1 is replicated across the
// other operand; unequal sizes both > 1 are rejected.
func BroadcastBatch(a, b int) (int, error) {
	switch {
	case a == b, b == 1:
		return a, nil
	case a == 1:
		return b, nil
	default:
		return 0, fmt.Errorf("%w: %d vs %d", ErrBatchMismatch, a, b)
	}
}

// Neg returns -x.
func Neg(x Expr) Expr {
	return unary{x: x, fn: func(v float32) float32 { return -v }}
}

// Square returns x².
func Square(x Expr) Expr {
	return unary{x: x, fn: func(v float32) float32 { return v * v }}
}

// Exp returns eˣ.
func Exp(x Expr) Expr {
	return unary{x: x, fn: math32.Exp}
}

// Apply returns fn applied to every element of x.
func Apply(x Expr, fn func(float32) float32) Expr {
	return unary{x: x, fn: fn}
}

// Add returns a + b.
func Add(a, b Expr) Expr {
	return binary{a: a, b: b, fn: func(x, y float32) float32 { return x + y }}
}

// Sub returns a - b.
func Sub(a, b Expr) Expr {
	return binary{a: a, b: b, fn: func(x, y float32) float32 { return x - y }}
}

// Mul returns the elementwise product a * b.
func Mul(a, b Expr) Expr {
	return binary{a: a, b: b, fn: func(x, y float32) float32 { return x * y }}
}

// Div returns the elementwise quotient a / b.
func Div(a, b Expr) Expr {
	return binary{a: a, b: b, fn: func(x, y float32) float32 { return x / y }}
}

// Assign evaluates e into t.
func (t Tensor) Assign(e Expr) error {
	return t.store(e, false, func(_, v float32) float32 { return v })
}

// AddAssign adds e into t. When t has batch size 1 and e does not, every
// batch slot of e is summed into t.
func (t Tensor) AddAssign(e Expr) error {
	return t.store(e, true, func(d, v float32) float32 { return d + v })
}

// SubAssign subtracts e from t, reducing over the batch like AddAssign.
func (t Tensor) SubAssign(e Expr) error {
	return t.store(e, true, func(d, v float32) float32 { return d - v })
}

// MulAssign multiplies t by e elementwise.
func (t Tensor) MulAssign(e Expr) error {
	return t.store(e, false, func(d, v float32) float32 { return d * v })
}

// DivAssign divides t by e elementwise.
func (t Tensor) DivAssign(e Expr) error {
	return t.store(e, false, func(d, v float32) float32 { return d / v })
}

// store validates e against t before writing anything, then walks every
// (element, batch slot) pair once.
func (t Tensor) store(e Expr, reduce bool, op func(dst, v float32) float32) error {
	n, err := e.Len()
	if err != nil {
		return err
	}
	size := t.dim.Size()
	if n >= 0 && n != size {
		return fmt.Errorf("%w: destination %v holds %d elements, expression has %d",
			ErrShapeMismatch, t.dim, size, n)
	}

	eb, err := e.Batch()
	if err != nil {
		return err
	}
	tb := t.dim.BatchSize()
	if eb != tb && eb != 1 && (tb != 1 || !reduce) {
		return fmt.Errorf("%w: destination %v, expression batch %d", ErrBatchMismatch, t.dim, eb)
	}

	nb := max(tb, eb)
	for b := 0; b < nb; b++ {
		slot := b % tb
		for i := 0; i < size; i++ {
			off := t.index(i, slot)
			t.data[off] = op(t.data[off], e.At(i, b))
		}
	}
	return nil
}
