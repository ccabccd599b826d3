package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avion/internal/config"
)

func newConfigCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				// Still print the rest of the configuration when the
				// credential is missing.
				cfg, err = loadConfigMock(cmd, v)
				if err != nil {
					return err
				}
			}

			credential := red("not set")
			if v, ok := os.LookupEnv(config.CredentialEnvVar); ok && v != "" {
				credential = green("set")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", bold("Effective configuration:"))
			fmt.Fprintf(out, "   model:               %s\n", cfg.Model())
			fmt.Fprintf(out, "   base_url:            %s\n", cfg.BaseURL())
			fmt.Fprintf(out, "   %s: %s\n", config.CredentialEnvVar, credential)
			fmt.Fprintf(out, "   max_iterations:      %d\n", cfg.MaxIterations())
			fmt.Fprintf(out, "   stability_threshold: %d\n", cfg.StabilityThreshold())
			fmt.Fprintf(out, "   temperature:         %g\n", cfg.Temperature())
			fmt.Fprintf(out, "   top_p:               %g\n", cfg.TopP())
			fmt.Fprintf(out, "   max_tokens:          %d\n", cfg.MaxTokens())
			fmt.Fprintf(out, "   timeout_seconds:     %d\n", cfg.TimeoutSeconds())
			fmt.Fprintf(out, "   max_retries:         %d\n", cfg.MaxRetries())
			fmt.Fprintf(out, "   llm_cache_size:      %d\n", cfg.CacheSize())
			fmt.Fprintf(out, "   mock:                %v\n", v.GetBool("mock"))
			fmt.Fprintf(out, "   verbose:             %v\n", cfg.Verbose())
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "avion %s\n", version)
		},
	}
}
