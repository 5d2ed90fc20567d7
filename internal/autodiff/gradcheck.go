package autodiff

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/autodiff/ops"
	"github.com/born-ml/graphnet/internal/tensor"
)

// ErrNotScalar is returned by CheckGradient for a root with more than one element.
var ErrNotScalar = errors.New("gradient check root is not a scalar")

// CheckOptions controls CheckGradient.
type CheckOptions struct {
	// Alpha is the central-difference step.
	Alpha float32

	// Tolerance bounds the per-element error. Errors above it are first
	// rescaled by max(|numeric|, |analytic|) before being compared again.
	Tolerance float32
}

// DefaultCheckOptions returns Alpha 5e-3 and Tolerance 0.01.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{Alpha: 5e-3, Tolerance: 0.01}
}

// ElementCheck is the comparison for one parameter element.
type ElementCheck struct {
	Node     int
	Param    string
	Index    int
	Analytic float32
	Numeric  float32
	Diff     float32
	OK       bool
}

// Report is the result of CheckGradient.
type Report struct {
	Elements []ElementCheck
	OK       bool
}

// Failures returns the elements that exceeded the tolerance.
func (r *Report) Failures() []ElementCheck {
	var out []ElementCheck
	for _, c := range r.Elements {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}

// CheckGradient compares the analytic gradient of e with a central finite
// difference for every element of every parameter node before e. The value of
// e must hold exactly one element.
//
// Parameter values are restored after each perturbation and parameter
// gradients are left untouched.
func CheckGradient(e Expression, opts CheckOptions) (*Report, error) {
	e.check()
	g := e.g

	if err := g.Forward(e.node); err != nil {
		return nil, err
	}
	if d := g.outputs[e.slot].Dim(); d.Total() != 1 {
		return nil, fmt.Errorf("%w: %v", ErrNotScalar, d)
	}
	if err := g.backward(e.node, e.slot, false); err != nil {
		return nil, err
	}

	// Snapshot analytic gradients before the perturbed forwards reuse the arena.
	type leaf struct {
		node     int
		name     string
		value    tensor.Tensor
		analytic []float32
	}
	var leaves []leaf
	for _, i := range g.params {
		if i > e.node {
			break
		}
		slot := g.nodes[i].Outputs()[0]
		leaves = append(leaves, leaf{
			node:     i,
			name:     leafName(g.nodes[i]),
			value:    g.outputs[slot],
			analytic: g.grads[slot].Values(),
		})
	}

	report := &Report{OK: true}
	for _, l := range leaves {
		d := l.value.Dim()
		size := d.Size()
		for b := 0; b < d.BatchSize(); b++ {
			for i := 0; i < size; i++ {
				idx := b*size + i
				num, err := centralDifference(e, l.value, i, b, opts.Alpha)
				if err != nil {
					return nil, err
				}
				c := compare(l.analytic[idx], num, opts.Tolerance)
				c.Node, c.Param, c.Index = l.node, l.name, idx
				report.Elements = append(report.Elements, c)

				if !c.OK {
					report.OK = false
					klog.Warningf("gradient check: node %d (%s) element %d: numeric %g analytic %g diff %g",
						c.Node, c.Param, idx, num, c.Analytic, c.Diff)
				} else if klog.V(3).Enabled() {
					klog.Infof("gradient check: node %d (%s) element %d: numeric %g analytic %g",
						c.Node, c.Param, idx, num, c.Analytic)
				}
			}
		}
	}

	// Leave the graph holding the unperturbed forward values.
	if err := g.Forward(e.node); err != nil {
		return nil, err
	}
	return report, nil
}

// centralDifference returns (f(x+α) - f(x-α)) / 2α for element i of batch
// slot b of v, restoring the element afterwards.
func centralDifference(e Expression, v tensor.Tensor, i, b int, alpha float32) (float32, error) {
	orig := v.At(i, b)
	defer v.Set(i, b, orig)

	v.Set(i, b, orig+alpha)
	if err := e.g.Forward(e.node); err != nil {
		return 0, err
	}
	plus := tensor.AsScalar(e.g.outputs[e.slot])

	v.Set(i, b, orig-alpha)
	if err := e.g.Forward(e.node); err != nil {
		return 0, err
	}
	minus := tensor.AsScalar(e.g.outputs[e.slot])

	return (plus - minus) / (2 * alpha), nil
}

func compare(analytic, numeric, tol float32) ElementCheck {
	diff := math32.Abs(numeric - analytic)
	m := math32.Max(math32.Abs(numeric), math32.Abs(analytic))
	if diff > tol && m > 0 {
		diff /= m
	}
	return ElementCheck{Analytic: analytic, Numeric: numeric, Diff: diff, OK: diff <= tol}
}

func leafName(n ops.Node) string {
	switch op := n.(type) {
	case *ops.ParameterOp:
		return op.Source().Name()
	case *ops.LookupOp:
		return fmt.Sprintf("%s[%d]", op.Source().Name(), op.Index())
	}
	return n.Type()
}
