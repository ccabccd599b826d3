package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"avion/internal/config"
	"avion/internal/observability"
	"avion/internal/state"
	"avion/internal/workflow"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printFinalDesign(out io.Writer, result *workflow.Result) {
	fmt.Fprintf(out, "\n%s\n", bold("=== FINAL UAV DESIGN ==="))

	if plan, ok := result.Outputs[config.RoleMissionPlanner].(*state.MissionPlan); ok {
		fmt.Fprintf(out, "%s MTOW=%.1fkg, Range=%.0fkm, Payload=%.1fkg\n",
			cyan("Mission:"), plan.MTOW, plan.RangeKM, plan.PayloadKG)
	}
	if design, ok := result.Outputs[config.RoleAerodynamics].(*state.AeroDesign); ok {
		fmt.Fprintf(out, "%s Wing=%.1fm2, AR=%.1f, L/D=%.1f\n",
			cyan("Aerodynamics:"), design.WingAreaM2, design.AspectRatio, design.LiftToDragRatio)
	}
	if design, ok := result.Outputs[config.RolePropulsion].(*state.PropulsionDesign); ok {
		fmt.Fprintf(out, "%s %.1fkW %s, %.0fN thrust\n",
			cyan("Propulsion:"), design.EnginePowerKW, design.EngineType, design.ThrustN)
	}
	if design, ok := result.Outputs[config.RoleStructures].(*state.StructureDesign); ok {
		fmt.Fprintf(out, "%s %.1fkg %s\n",
			cyan("Structure:"), design.StructuralWeightKG, design.WingSparMaterial)
	}
	if plan, ok := result.Outputs[config.RoleManufacturing].(*state.ManufacturingPlan); ok {
		fmt.Fprintf(out, "%s $%.0f, Feasibility=%.2f\n",
			cyan("Manufacturing:"), plan.TotalCostUSD, plan.FeasibilityScore)
	}
}

func printIterationSummary(out io.Writer, result *workflow.Result) {
	fmt.Fprintf(out, "\n%s\n", bold("=== ITERATION SUMMARY ==="))

	labels := map[config.Role]string{
		config.RoleMissionPlanner: "Mission",
		config.RoleAerodynamics:   "Aero",
		config.RolePropulsion:     "Prop",
		config.RoleStructures:     "Struct",
		config.RoleManufacturing:  "Mfg",
	}

	roles := []config.Role{
		config.RoleMissionPlanner,
		config.RoleAerodynamics,
		config.RolePropulsion,
		config.RoleStructures,
		config.RoleManufacturing,
	}
	for iteration := 0; iteration <= result.Iterations; iteration++ {
		var active []string
		for _, role := range roles {
			if result.State.HasOutput(role, iteration) {
				active = append(active, labels[role])
			}
		}
		if len(active) > 0 {
			fmt.Fprintf(out, "Iteration %d: %s\n", iteration, strings.Join(active, ", "))
		}
	}
}

func printStatistics(out io.Writer, result *workflow.Result, metrics *observability.Metrics) {
	fmt.Fprintf(out, "\n%s\n", bold("Project Statistics:"))
	fmt.Fprintf(out, "   Total Iterations: %d\n", result.Iterations)
	fmt.Fprintf(out, "   Total Messages: %d\n", result.State.TotalMessages())
	fmt.Fprintf(out, "   Agents Completed: %d/5\n", len(result.Outputs))
	if result.Complete {
		fmt.Fprintf(out, "   Project Status: %s\n", green("Complete"))
	} else {
		fmt.Fprintf(out, "   Project Status: %s\n", red("Incomplete"))
	}
	if result.Reason != "" {
		fmt.Fprintf(out, "\n%s %s\n", yellow("Completion Reason:"), result.Reason)
	}

	snapshot, err := metrics.Snapshot()
	if err != nil {
		return
	}
	fmt.Fprintf(out, "\n%s\n", bold("Run Metrics:"))
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "   %s = %s\n", gray(name), fmt.Sprintf("%g", snapshot[name]))
	}
}
