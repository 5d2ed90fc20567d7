package nn

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/autodiff"
)

// SquaredLoss computes the squared error summed over elements and averaged
// over batch slots:
//
//	Loss = Σ_b Σ_i (pred - target)² / batch
//
// The result is a single-element, batch-1 expression.
func SquaredLoss(pred, target autodiff.Expression, batch int) autodiff.Expression {
	if batch <= 0 {
		panic(fmt.Sprintf("nn.SquaredLoss: batch %d", batch))
	}
	perSlot := autodiff.Sum(autodiff.SquaredDistance(pred, target), -1)
	// perSlot has shape (1); axis 1 is its batch axis.
	total := autodiff.Sum(perSlot, 1)
	if batch == 1 {
		return total
	}
	return total.DivScalar(float32(batch))
}
