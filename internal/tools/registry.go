// Package tools provides the engineering calculator registry. Built-in
// calculators are registered at construction and cannot be removed; extra
// tools may be registered and unregistered at runtime.
package tools

import (
	"fmt"
	"sync"

	"avion/internal/agent/ports"
	"avion/internal/config"
	"avion/internal/tools/builtin"
)

// Registry implements ports.ToolRegistry.
type Registry struct {
	static  map[string]ports.ToolExecutor
	dynamic map[string]ports.ToolExecutor
	mu      sync.RWMutex
}

var _ ports.ToolRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	r := &Registry{
		static:  make(map[string]ports.ToolExecutor),
		dynamic: make(map[string]ports.ToolExecutor),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) Register(tool ports.ToolExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Metadata().Name
	if _, exists := r.static[name]; exists {
		return fmt.Errorf("tool already exists: %s", name)
	}
	r.dynamic[name] = tool
	return nil
}

func (r *Registry) Get(name string) (ports.ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tool, ok := r.static[name]; ok {
		return tool, nil
	}
	if tool, ok := r.dynamic[name]; ok {
		return tool, nil
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

func (r *Registry) List() []ports.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var defs []ports.ToolDefinition
	for _, tool := range r.static {
		defs = append(defs, tool.Definition())
	}
	for _, tool := range r.dynamic {
		defs = append(defs, tool.Definition())
	}
	return defs
}

func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.static[name]; ok {
		return fmt.Errorf("cannot unregister built-in tool: %s", name)
	}
	delete(r.dynamic, name)
	return nil
}

func (r *Registry) registerBuiltins() {
	r.static[builtin.WeightEstimatorName] = builtin.NewWeightEstimator()
	r.static[builtin.AerodynamicCalculatorName] = builtin.NewAerodynamicCalculator()
	r.static[builtin.PowerCalculatorName] = builtin.NewPowerCalculator()
	r.static[builtin.CostEstimatorName] = builtin.NewCostEstimator()
	r.static[builtin.FeasibilityCheckerName] = builtin.NewFeasibilityChecker()
}

// roleTools maps each engineering role to the calculators it may invoke.
var roleTools = map[config.Role][]string{
	config.RoleMissionPlanner: {builtin.FeasibilityCheckerName},
	config.RoleAerodynamics:   {builtin.AerodynamicCalculatorName, builtin.WeightEstimatorName},
	config.RolePropulsion:     {builtin.PowerCalculatorName, builtin.WeightEstimatorName},
	config.RoleStructures:     {builtin.WeightEstimatorName, builtin.FeasibilityCheckerName},
	config.RoleManufacturing:  {builtin.CostEstimatorName, builtin.FeasibilityCheckerName},
}

// DefinitionsFor returns the tool schemas offered to a role's prompts.
func (r *Registry) DefinitionsFor(role config.Role) []ports.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := roleTools[role]
	defs := make([]ports.ToolDefinition, 0, len(names))
	for _, name := range names {
		if tool, ok := r.static[name]; ok {
			defs = append(defs, tool.Definition())
		}
	}
	return defs
}

// AllowedFor reports whether a role may invoke the named tool.
func (r *Registry) AllowedFor(role config.Role, name string) bool {
	for _, allowed := range roleTools[role] {
		if allowed == name {
			return true
		}
	}
	return false
}
