package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/train"
)

func newTrainCmd() *cobra.Command {
	defaults := train.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a tanh MLP on XOR",
		Args:  cobra.NoArgs,
		RunE:  trainHandler,
	}
	cmd.Flags().String("mode", defaults.Mode, "Training mode: example or batch")
	cmd.Flags().String("optimizer", defaults.Optimizer, "Optimizer: sgd or adam")
	cmd.Flags().Int("epochs", defaults.Epochs, "Number of epochs")
	cmd.Flags().Float32("lr", defaults.LR, "Learning rate")
	cmd.Flags().Int("hidden", defaults.Hidden, "Hidden layer width")
	cmd.Flags().Int64("seed", defaults.Seed, "Initialization seed")
	return cmd
}

func trainConfig(cmd *cobra.Command) (train.Config, error) {
	var cfg train.Config
	var err error
	flags := cmd.Flags()
	if cfg.Mode, err = flags.GetString("mode"); err != nil {
		return cfg, err
	}
	if cfg.Optimizer, err = flags.GetString("optimizer"); err != nil {
		return cfg, err
	}
	if cfg.Epochs, err = flags.GetInt("epochs"); err != nil {
		return cfg, err
	}
	if cfg.LR, err = flags.GetFloat32("lr"); err != nil {
		return cfg, err
	}
	if cfg.Hidden, err = flags.GetInt("hidden"); err != nil {
		return cfg, err
	}
	if cfg.Seed, err = flags.GetInt64("seed"); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func trainHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := trainConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	data := train.XOR()
	res, err := train.Run(cmd.Context(), cfg, data, func(epoch int, loss float32) {
		fmt.Fprintf(out, "epoch %d loss %.6f\n", epoch+1, loss)
	})
	if err != nil {
		return err
	}
	klog.V(1).Infof("final loss %.6f", res.Final())

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"X1", "X2", "TARGET", "PREDICTION"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)
	for i := 0; i < data.N; i++ {
		x, y := data.Example(i)
		p, err := train.Predict(res.Model, x)
		if err != nil {
			return err
		}
		table.Append([]string{fmtFloat(x[0]), fmtFloat(x[1]), fmtFloat(y[0]), fmtFloat(p[0])})
	}
	table.Render()
	return nil
}

func fmtFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 4, 32)
}
