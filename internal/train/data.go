package train

// Dataset is a set of column-vector examples stored example by example.
type Dataset struct {
	X      []float32 // N*InDim inputs
	Y      []float32 // N*OutDim targets
	N      int
	InDim  int
	OutDim int
}

// XOR returns the four XOR cases with inputs and targets in {-1, 1}.
func XOR() *Dataset {
	d := &Dataset{N: 4, InDim: 2, OutDim: 1}
	for i := 0; i < d.N; i++ {
		x1, x2 := i%2 == 1, (i/2)%2 == 1
		d.X = append(d.X, sign(x1), sign(x2))
		d.Y = append(d.Y, sign(x1 != x2))
	}
	return d
}

// Example returns the input and target of example i as views into d.
func (d *Dataset) Example(i int) (x, y []float32) {
	return d.X[i*d.InDim : (i+1)*d.InDim], d.Y[i*d.OutDim : (i+1)*d.OutDim]
}

func sign(b bool) float32 {
	if b {
		return 1
	}
	return -1
}
