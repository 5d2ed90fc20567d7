package main

import (
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/envconfig"
)

const version = "v0.1.0-dev"

// appendEnvDocs adds the environment variables a command reads to its usage.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the root command with every subcommand attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "graphnet",
		Short:         "Reverse-mode autodiff on batched tensors",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	if envconfig.Debug() {
		_ = fs.Set("v", "4")
	}
	rootCmd.PersistentFlags().AddGoFlagSet(fs)

	envVars := envconfig.AsMap()
	trainCmd := newTrainCmd()
	appendEnvDocs(trainCmd, []envconfig.EnvVar{
		envVars["GRAPHNET_MODE"],
		envVars["GRAPHNET_OPTIMIZER"],
		envVars["GRAPHNET_EPOCHS"],
		envVars["GRAPHNET_LR"],
		envVars["GRAPHNET_HIDDEN"],
		envVars["GRAPHNET_SEED"],
		envVars["GRAPHNET_DEBUG"],
	})

	rootCmd.AddCommand(
		trainCmd,
		newGradcheckCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "graphnet version %s\n", version)
		},
	}
}
