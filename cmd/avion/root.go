package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avion/internal/config"
)

var version = "0.1.0"

// NewRootCommand builds the avion command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "avion",
		Short: "Multi-agent UAV preliminary design",
		Long: `avion runs a coordinator and five engineering agents through an
iterative loop until the drone design converges. Requirements go in,
a mission plan, aerodynamic, propulsion, structural and manufacturing
designs come out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("model", "", "chat-completion model identifier")
	flags.Int("max-iterations", 0, "iteration budget for a design run")
	flags.Int("stability-threshold", 0, "iterations without updates before the design counts as stable")
	flags.Bool("mock", false, "run without a provider, using canned responses")
	flags.BoolP("verbose", "v", false, "verbose logging")

	v := viper.New()
	v.SetEnvPrefix("AVION")
	v.AutomaticEnv()
	cobra.CheckErr(v.BindPFlag("model", flags.Lookup("model")))
	cobra.CheckErr(v.BindPFlag("max_iterations", flags.Lookup("max-iterations")))
	cobra.CheckErr(v.BindPFlag("stability_threshold", flags.Lookup("stability-threshold")))
	cobra.CheckErr(v.BindPFlag("mock", flags.Lookup("mock")))
	cobra.CheckErr(v.BindPFlag("verbose", flags.Lookup("verbose")))

	// Bare invocation runs the built-in example project.
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runProject(cmd, v, "", "")
	}

	root.AddCommand(newRunCommand(v))
	root.AddCommand(newRoutingCommand(v))
	root.AddCommand(newConfigCommand(v))
	root.AddCommand(newVersionCommand())
	return root
}

// loadConfig resolves the effective configuration: flag and AVION_* values
// seen through viper become overrides on top of the file and environment
// layers the config package reads itself. The integer flags only become
// overrides when the user actually passed them, so an explicit 0 is
// forwarded and rejected by validation instead of masked by the default.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	return config.Load(config.WithOverrides(cliOverrides(cmd, v)))
}

func cliOverrides(cmd *cobra.Command, v *viper.Viper) config.Overrides {
	o := config.Overrides{
		Model:      v.GetString("model"),
		MockClient: v.GetBool("mock"),
		Verbose:    v.GetBool("verbose"),
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("max-iterations") {
		n := v.GetInt("max_iterations")
		o.MaxIterations = &n
	}
	if flags.Changed("stability-threshold") {
		n := v.GetInt("stability_threshold")
		o.StabilityThreshold = &n
	}
	return o
}
