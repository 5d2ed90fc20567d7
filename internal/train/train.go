// Package train fits a two-layer tanh MLP to a small dataset, either one
// example per update or the whole set as one batched graph.
package train

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/autodiff"
	"github.com/born-ml/graphnet/internal/envconfig"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Training modes.
const (
	ModeExample = "example"
	ModeBatch   = "batch"
)

// Optimizer names.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// ErrInvalidConfig is returned for unusable training settings.
var ErrInvalidConfig = errors.New("invalid training config")

// Config holds the training hyperparameters.
type Config struct {
	Mode      string
	Optimizer string
	Epochs    int
	LR        float32
	Hidden    int
	Seed      int64
}

// DefaultConfig returns the settings from the GRAPHNET_* environment.
func DefaultConfig() Config {
	return Config{
		Mode:      envconfig.Mode(),
		Optimizer: envconfig.Optimizer(),
		Epochs:    int(envconfig.Epochs()),
		LR:        envconfig.LearningRate(),
		Hidden:    int(envconfig.Hidden()),
		Seed:      int64(envconfig.Seed()),
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Mode != ModeExample && c.Mode != ModeBatch:
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	case c.Optimizer != OptimizerSGD && c.Optimizer != OptimizerAdam:
		return fmt.Errorf("%w: optimizer %q", ErrInvalidConfig, c.Optimizer)
	case c.Epochs <= 0:
		return fmt.Errorf("%w: epochs %d", ErrInvalidConfig, c.Epochs)
	case c.Hidden <= 0:
		return fmt.Errorf("%w: hidden %d", ErrInvalidConfig, c.Hidden)
	case c.LR <= 0:
		return fmt.Errorf("%w: learning rate %g", ErrInvalidConfig, c.LR)
	}
	return nil
}

// Result is the outcome of a training run.
type Result struct {
	// Losses holds the mean loss of each epoch, measured before that
	// epoch's updates were applied.
	Losses     []float32
	Model      *nn.MLP
	Collection *nn.Collection
}

// Final returns the loss of the last epoch.
func (r *Result) Final() float32 {
	return r.Losses[len(r.Losses)-1]
}

// EpochFunc observes the mean loss of each finished epoch.
type EpochFunc func(epoch int, loss float32)

// Run trains a fresh model on data. ctx is checked between epochs.
func Run(ctx context.Context, cfg Config, data *Dataset, onEpoch EpochFunc) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := nn.NewCollection(cfg.Seed)
	model := nn.NewMLP(c, data.InDim, cfg.Hidden, data.OutDim)
	opt := newOptimizer(cfg, c)

	var epoch func() (float32, error)
	switch cfg.Mode {
	case ModeExample:
		epoch = perExample(model, opt, data)
	default:
		epoch = fullBatch(model, opt, data)
	}

	klog.V(2).Infof("training %s mode, %s lr=%g hidden=%d, %d parameters",
		cfg.Mode, cfg.Optimizer, cfg.LR, cfg.Hidden, c.NumElements())

	res := &Result{Model: model, Collection: c}
	for i := 0; i < cfg.Epochs; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		loss, err := epoch()
		if err != nil {
			return res, fmt.Errorf("epoch %d: %w", i, err)
		}
		res.Losses = append(res.Losses, loss)
		klog.V(1).Infof("epoch %d loss %.6f", i, loss)
		if onEpoch != nil {
			onEpoch(i, loss)
		}
	}
	return res, nil
}

func newOptimizer(cfg Config, c *nn.Collection) optim.Optimizer {
	if cfg.Optimizer == OptimizerAdam {
		return optim.NewAdam(c, optim.AdamConfig{LR: cfg.LR})
	}
	return optim.NewSGD(c, optim.SGDConfig{LR: cfg.LR})
}

// step runs one forward, backward and update and returns the loss.
func step(loss autodiff.Expression, opt optim.Optimizer) (float32, error) {
	out, err := loss.Forward()
	if err != nil {
		return 0, err
	}
	v := tensor.AsScalar(out)
	if err := loss.Backward(); err != nil {
		return 0, err
	}
	if err := opt.Step(); err != nil {
		return 0, err
	}
	return v, nil
}

// perExample builds one graph over single-example input buffers and updates
// after every example. The buffers are rewritten between sweeps.
func perExample(model *nn.MLP, opt optim.Optimizer, data *Dataset) func() (float32, error) {
	xBuf := make([]float32, data.InDim)
	yBuf := make([]float32, data.OutDim)

	g := autodiff.NewGraph()
	x := autodiff.Input(g, tensor.NewDim(data.InDim, 1), xBuf)
	y := autodiff.Input(g, tensor.NewDim(data.OutDim, 1), yBuf)
	loss := nn.SquaredLoss(model.Forward(x), y, 1)

	return func() (float32, error) {
		var total float32
		for i := 0; i < data.N; i++ {
			xi, yi := data.Example(i)
			copy(xBuf, xi)
			copy(yBuf, yi)
			v, err := step(loss, opt)
			if err != nil {
				return 0, fmt.Errorf("example %d: %w", i, err)
			}
			total += v
		}
		return total / float32(data.N), nil
	}
}

// fullBatch builds one graph with every example in its own batch slot and
// updates once per epoch.
func fullBatch(model *nn.MLP, opt optim.Optimizer, data *Dataset) func() (float32, error) {
	g := autodiff.NewGraph()
	x := autodiff.Input(g, tensor.NewDim(data.InDim, 1).WithBatch(data.N), data.X)
	y := autodiff.Input(g, tensor.NewDim(data.OutDim, 1).WithBatch(data.N), data.Y)
	loss := nn.SquaredLoss(model.Forward(x), y, data.N)

	return func() (float32, error) {
		return step(loss, opt)
	}
}

// Predict evaluates model on one input vector.
func Predict(model *nn.MLP, x []float32) ([]float32, error) {
	g := autodiff.NewGraph()
	out, err := model.Forward(autodiff.Input(g, tensor.NewDim(len(x), 1), x)).Forward()
	if err != nil {
		return nil, err
	}
	return out.Values(), nil
}
