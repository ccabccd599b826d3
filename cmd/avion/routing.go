package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avion/internal/config"
	"avion/internal/tools"
)

func newRoutingCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "routing [stage]",
		Short: "Show the stage routing table and tool assignments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				// Routing is compiled-in; show it even without a credential.
				cfg, err = loadConfigMock(cmd, v)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()

			if len(args) == 1 {
				participants, err := cfg.Routing(args[0])
				if err != nil {
					return err
				}
				names := make([]string, len(participants))
				for i, role := range participants {
					names[i] = string(role)
				}
				fmt.Fprintf(out, "%s -> %s\n", cyan(args[0]), strings.Join(names, ", "))
				return nil
			}

			fmt.Fprintln(out, bold("Stage routing:"))
			for _, stage := range cfg.Stages() {
				participants, err := cfg.Routing(string(stage))
				if err != nil {
					return err
				}
				names := make([]string, len(participants))
				for i, role := range participants {
					names[i] = string(role)
				}
				fmt.Fprintf(out, "   %s -> %s\n", cyan(string(stage)), strings.Join(names, ", "))
			}

			registry := tools.NewRegistry()
			fmt.Fprintf(out, "\n%s\n", bold("Tool assignments:"))
			for _, role := range cfg.EngineeringRoles() {
				definitions := registry.DefinitionsFor(role)
				names := make([]string, len(definitions))
				for i, def := range definitions {
					names[i] = def.Name
				}
				fmt.Fprintf(out, "   %s -> %s\n", cyan(string(role)), strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func loadConfigMock(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	o := cliOverrides(cmd, v)
	o.MockClient = true
	return config.Load(config.WithOverrides(o))
}
