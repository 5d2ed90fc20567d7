package tensor

import "errors"

// Sentinel errors returned by shape inference and the tensor algebra.
// Callers match them with errors.Is; messages are wrapped with the offending dims.
var (
	// ErrShapeMismatch reports operands whose shapes or element counts disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrBatchMismatch reports operands with unequal batch sizes that are both > 1.
	ErrBatchMismatch = errors.New("batch size mismatch")

	// ErrInvalidAxis reports an axis outside [-1, rank].
	ErrInvalidAxis = errors.New("invalid axis")
)
