package nn

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Initializer fills a freshly allocated parameter.
type Initializer interface {
	Init(t tensor.Tensor)
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(t tensor.Tensor)

// Init calls f(t).
func (f InitializerFunc) Init(t tensor.Tensor) { f(t) }

// Normal draws every element from N(mean, std²).
func Normal(rng *rand.Rand, mean, std float32) Initializer {
	return InitializerFunc(func(t tensor.Tensor) {
		data := t.Data()
		for i := range data {
			data[i] = mean + std*float32(rng.NormFloat64())
		}
	})
}

// Xavier (Glorot) initialization.
//
// Draws from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
// For an (out, in) matrix fan_in is in and fan_out is out; any other layout
// uses its element count for both.
func Xavier(rng *rand.Rand) Initializer {
	return InitializerFunc(func(t tensor.Tensor) {
		d := t.Dim()
		fanIn, fanOut := d.Size(), d.Size()
		if d.Rank() == 2 {
			fanIn, fanOut = d.At(1), d.At(0)
		}
		bound := math32.Sqrt(6 / float32(fanIn+fanOut))

		data := t.Data()
		for i := range data {
			data[i] = (rng.Float32()*2 - 1) * bound
		}
	})
}

// Constant sets every element to v.
func Constant(v float32) Initializer {
	return InitializerFunc(func(t tensor.Tensor) {
		t.Fill(v)
	})
}
