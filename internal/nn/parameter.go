package nn

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Parameter is a learnable tensor and its gradient buffer.
//
// Graph nodes alias the value, so an optimizer update is visible to the next
// Forward without rebuilding the graph. Backward adds into the gradient; it
// is cleared only by ZeroGrad.
//
// Example:
//
//	w := nn.NewParameter("w", tensor.NewDim(4, 2), nn.Constant(0))
//	e := autodiff.Param(g, w)
type Parameter struct {
	name  string
	value tensor.Tensor
	grad  tensor.Tensor
}

// NewParameter allocates a parameter of layout d and fills it with init.
// A nil init leaves the value zeroed.
func NewParameter(name string, d tensor.Dim, init Initializer) *Parameter {
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("nn.NewParameter %q: %v", name, err))
	}
	p := &Parameter{
		name:  name,
		value: tensor.New(d),
		grad:  tensor.New(d),
	}
	if init != nil {
		init.Init(p.value)
	}
	return p
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter value. Writes through it update the parameter.
func (p *Parameter) Value() tensor.Tensor {
	return p.value
}

// Grad returns the accumulated gradient.
func (p *Parameter) Grad() tensor.Tensor {
	return p.grad
}

// Dim returns the parameter layout.
func (p *Parameter) Dim() tensor.Dim {
	return p.value.Dim()
}

// ZeroGrad clears the gradient in place.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}

// String returns a one-line summary.
func (p *Parameter) String() string {
	return p.name + " " + p.value.String()
}

// LookupParameter is a table of vocab learnable rows of length emb, stored
// contiguously. Each row is exposed as a (emb, 1) column view so that it can
// be multiplied by a weight matrix directly.
type LookupParameter struct {
	name   string
	vocab  int
	emb    int
	values tensor.Tensor
	grads  tensor.Tensor
}

// NewLookupParameter allocates a vocab x emb table and fills it with init.
func NewLookupParameter(name string, vocab, emb int, init Initializer) *LookupParameter {
	d := tensor.NewDim(vocab, emb)
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("nn.NewLookupParameter %q: %v", name, err))
	}
	lp := &LookupParameter{
		name:   name,
		vocab:  vocab,
		emb:    emb,
		values: tensor.New(d),
		grads:  tensor.New(d),
	}
	if init != nil {
		init.Init(lp.values)
	}
	return lp
}

// Name returns the table name.
func (lp *LookupParameter) Name() string { return lp.name }

// Vocab returns the number of rows.
func (lp *LookupParameter) Vocab() int { return lp.vocab }

// Emb returns the row length.
func (lp *LookupParameter) Emb() int { return lp.emb }

// Values returns the whole (vocab, emb) table.
func (lp *LookupParameter) Values() tensor.Tensor { return lp.values }

// Grads returns the whole (vocab, emb) gradient table.
func (lp *LookupParameter) Grads() tensor.Tensor { return lp.grads }

// Row returns a view of row i.
func (lp *LookupParameter) Row(i int) tensor.Tensor {
	return lp.row(lp.values, i)
}

// GradRow returns a view of the gradient of row i.
func (lp *LookupParameter) GradRow(i int) tensor.Tensor {
	return lp.row(lp.grads, i)
}

func (lp *LookupParameter) row(t tensor.Tensor, i int) tensor.Tensor {
	if i < 0 || i >= lp.vocab {
		panic(fmt.Sprintf("nn.LookupParameter %q: row %d out of range [0, %d)", lp.name, i, lp.vocab))
	}
	r, err := tensor.Borrow(tensor.NewDim(lp.emb, 1), t.Data()[i*lp.emb:(i+1)*lp.emb])
	if err != nil {
		panic(err)
	}
	return r
}

// ZeroGrad clears every gradient row in place.
func (lp *LookupParameter) ZeroGrad() {
	lp.grads.Zero()
}
