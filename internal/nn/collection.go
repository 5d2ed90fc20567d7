package nn

import (
	"math/rand"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Collection owns every parameter of a model. Optimizers update exactly the
// parameters registered here, in registration order.
type Collection struct {
	params  []*Parameter
	lookups []*LookupParameter
	rng     *rand.Rand
}

// NewCollection creates an empty collection whose default initializer draws
// from a generator seeded with seed.
func NewCollection(seed int64) *Collection {
	return &Collection{
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Rand returns the collection's generator, for use with Normal and Xavier.
func (c *Collection) Rand() *rand.Rand {
	return c.rng
}

// AddParameter registers a parameter of the given shape initialized from N(0, 1).
func (c *Collection) AddParameter(name string, shape ...int) *Parameter {
	return c.AddParameterWith(name, Normal(c.rng, 0, 1), shape...)
}

// AddParameterWith registers a parameter of the given shape filled by init.
func (c *Collection) AddParameterWith(name string, init Initializer, shape ...int) *Parameter {
	p := NewParameter(name, tensor.NewDim(shape...), init)
	c.params = append(c.params, p)
	return p
}

// AddLookupParameter registers a vocab x emb table initialized from N(0, 1).
func (c *Collection) AddLookupParameter(name string, vocab, emb int) *LookupParameter {
	lp := NewLookupParameter(name, vocab, emb, Normal(c.rng, 0, 1))
	c.lookups = append(c.lookups, lp)
	return lp
}

// Parameters returns the registered dense parameters.
func (c *Collection) Parameters() []*Parameter {
	return c.params
}

// LookupParameters returns the registered lookup tables.
func (c *Collection) LookupParameters() []*LookupParameter {
	return c.lookups
}

// NumElements returns the total number of learnable scalars.
func (c *Collection) NumElements() int {
	n := 0
	for _, p := range c.params {
		n += p.Dim().Total()
	}
	for _, lp := range c.lookups {
		n += lp.vocab * lp.emb
	}
	return n
}

// ZeroGrad clears every gradient in the collection.
func (c *Collection) ZeroGrad() {
	for _, p := range c.params {
		p.ZeroGrad()
	}
	for _, lp := range c.lookups {
		lp.ZeroGrad()
	}
}
