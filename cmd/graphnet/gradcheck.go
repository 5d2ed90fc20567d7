package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/graphnet/internal/autodiff"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/tensor"
)

// checkCase builds a scalar loss over parameters registered in c.
type checkCase struct {
	name  string
	build func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression
}

// uniform registers a parameter drawn from U(0.5, 1.5), away from the poles
// of the division ops.
func uniform(c *nn.Collection, name string, shape ...int) *nn.Parameter {
	rng := c.Rand()
	return c.AddParameterWith(name, nn.InitializerFunc(func(t tensor.Tensor) {
		data := t.Data()
		for i := range data {
			data[i] = 0.5 + rng.Float32()
		}
	}), shape...)
}

var checkCases = []checkCase{
	{"add", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Param(g, uniform(c, "a", 3)).Add(autodiff.Param(g, uniform(c, "b", 3)))
	}},
	{"matmul", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Param(g, uniform(c, "w", 3, 2)).Mul(autodiff.Param(g, uniform(c, "x", 2, 4)))
	}},
	{"div", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Param(g, uniform(c, "a", 3)).Div(autodiff.Param(g, uniform(c, "b", 3)))
	}},
	{"div-const", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Param(g, uniform(c, "x", 3)).DivScalar(4)
	}},
	{"const-div", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.ScalarDiv(4, autodiff.Param(g, uniform(c, "x", 3)))
	}},
	{"sum", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Sum(autodiff.Param(g, uniform(c, "x", 2, 3)), 1)
	}},
	{"concat", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		a := autodiff.Param(g, uniform(c, "a", 2, 1))
		b := autodiff.Param(g, uniform(c, "b", 3, 1))
		return autodiff.Tanh(autodiff.Concat([]autodiff.Expression{a, b}, 0))
	}},
	{"split", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		parts := autodiff.Split(autodiff.Param(g, uniform(c, "x", 4)), 2, 0)
		return autodiff.SquaredDistance(parts[0], parts[1])
	}},
	{"tanh", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Tanh(autodiff.Param(g, uniform(c, "x", 3)))
	}},
	{"sigmoid", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.Sigmoid(autodiff.Param(g, uniform(c, "x", 3)))
	}},
	{"squared-distance", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		return autodiff.SquaredDistance(autodiff.Param(g, uniform(c, "a", 3)), autodiff.Param(g, uniform(c, "b", 3)))
	}},
	{"lookup", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		lp := c.AddLookupParameter("emb", 4, 3)
		return autodiff.Tanh(autodiff.Lookup(g, lp, 2))
	}},
	{"mlp", func(g *autodiff.Graph, c *nn.Collection) autodiff.Expression {
		m := nn.NewMLP(c, 2, 4, 1)
		x := autodiff.Input(g, tensor.NewDim(2, 1), []float32{1, -1})
		y := autodiff.Input(g, tensor.NewDim(1, 1), []float32{1})
		return nn.SquaredLoss(m.Forward(x), y, 1)
	}},
}

func newGradcheckCmd() *cobra.Command {
	defaults := autodiff.DefaultCheckOptions()

	cmd := &cobra.Command{
		Use:   "gradcheck",
		Short: "Compare analytic and numeric gradients of every op",
		Args:  cobra.NoArgs,
		RunE:  gradcheckHandler,
	}
	cmd.Flags().Float32("alpha", defaults.Alpha, "Finite-difference step")
	cmd.Flags().Float32("tolerance", defaults.Tolerance, "Per-element tolerance")
	cmd.Flags().Int64("seed", 1, "Parameter seed")
	return cmd
}

func gradcheckHandler(cmd *cobra.Command, _ []string) error {
	opts := autodiff.DefaultCheckOptions()
	var err error
	if opts.Alpha, err = cmd.Flags().GetFloat32("alpha"); err != nil {
		return err
	}
	if opts.Tolerance, err = cmd.Flags().GetFloat32("tolerance"); err != nil {
		return err
	}
	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"OP", "ELEMENTS", "MAX DIFF", "RESULT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	var failed []string
	for _, cc := range checkCases {
		g := autodiff.NewGraph()
		loss := autodiff.Sum(cc.build(g, nn.NewCollection(seed)), -1)

		report, err := autodiff.CheckGradient(loss, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", cc.name, err)
		}

		var maxDiff float32
		for _, e := range report.Elements {
			maxDiff = max(maxDiff, e.Diff)
		}
		result := "ok"
		if !report.OK {
			result = "FAIL"
			failed = append(failed, cc.name)
		}
		table.Append([]string{
			cc.name,
			strconv.Itoa(len(report.Elements)),
			strconv.FormatFloat(float64(maxDiff), 'g', 3, 32),
			result,
		})
	}
	table.Render()

	if len(failed) > 0 {
		return fmt.Errorf("gradient check failed: %v", failed)
	}
	return nil
}
