// Package agent implements the design roles: five engineering agents that
// run concurrently each iteration, and the coordinator that assigns tasks
// and decides when the project is done.
package agent

import "avion/internal/config"

// RoleSpec declares one engineering role: which roles' outputs it needs
// before it can work, and how those outputs are labelled in its prompt.
type RoleSpec struct {
	Role      config.Role
	DependsOn []config.Role
}

// DependencyLabel names a dependency section in the prompt context.
func DependencyLabel(role config.Role) string {
	if role == config.RoleMissionPlanner {
		return "mission_plan"
	}
	return string(role)
}

// RoleSpecs returns the specs for all engineering roles. The mission planner
// seeds the run; downstream roles wait for the outputs they build on.
func RoleSpecs() []RoleSpec {
	return []RoleSpec{
		{Role: config.RoleMissionPlanner},
		{Role: config.RoleAerodynamics, DependsOn: []config.Role{config.RoleMissionPlanner}},
		{Role: config.RolePropulsion, DependsOn: []config.Role{config.RoleMissionPlanner}},
		{Role: config.RoleStructures, DependsOn: []config.Role{config.RoleMissionPlanner, config.RoleAerodynamics}},
		{Role: config.RoleManufacturing, DependsOn: []config.Role{config.RoleStructures}},
	}
}
