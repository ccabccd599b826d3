package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avion/internal/llm"
	"avion/internal/logging"
	"avion/internal/observability"
	"avion/internal/prompts"
	"avion/internal/state"
	"avion/internal/tools"
	"avion/internal/workflow"
)

// defaultRequirements is the built-in example project, used when no
// requirements are given.
const defaultRequirements = `Design a surveillance UAV with these requirements:
- Range: 50 km
- Payload: 2 kg camera system
- Flight time: 1.5 hours
- Altitude: 1000-2000 m
- Budget: $25,000
- Must be manufacturable and cost-effective
- Weather resistance for light rain
- Autonomous operation capability`

func newRunCommand(v *viper.Viper) *cobra.Command {
	var requirements string
	var file string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a design project",
		Long: `Run the full design loop for one set of requirements. Without
--requirements or --file the built-in surveillance UAV example is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, v, requirements, file)
		},
	}

	cmd.Flags().StringVarP(&requirements, "requirements", "r", "", "design requirements text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read design requirements from a file")
	return cmd
}

func runProject(cmd *cobra.Command, v *viper.Viper, requirements, file string) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}
	if cfg.Verbose() {
		logging.SetLevel(logging.DEBUG)
	}

	reqs := requirements
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read requirements file: %w", err)
		}
		reqs = string(data)
	}
	reqs = strings.TrimSpace(reqs)
	if reqs == "" {
		reqs = defaultRequirements
	}

	client, err := llm.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	loader, err := prompts.NewLoader()
	if err != nil {
		return err
	}
	metrics := observability.MustNewMetrics()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold("UAV Design Agent Coordination System"))
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Model: %s\n", cyan(cfg.Model()))
	fmt.Fprintf(out, "Requirements:\n%s\n", gray(reqs))
	fmt.Fprintln(out, strings.Repeat("=", 60))

	engine := workflow.NewEngine(cfg, client, tools.NewRegistry(), loader, metrics,
		workflow.WithProgress(func(iteration int, st *state.DesignState) {
			fmt.Fprintf(out, "%s %s\n",
				blue(fmt.Sprintf("iteration %d", iteration)),
				gray(fmt.Sprintf("outputs=%d messages=%d", len(st.LatestOutputs()), st.TotalMessages())))
		}))

	result, err := engine.Run(cmd.Context(), reqs)
	if err != nil {
		return err
	}

	printFinalDesign(out, result)
	printIterationSummary(out, result)
	printStatistics(out, result, metrics)
	return nil
}
