package config

import (
	avionerrors "avion/internal/errors"
)

// routingTable maps a workflow stage to the ordered set of roles that
// participate in it. Insertion order is significant: downstream consumers use
// it as the consult order. The table is literal compiled-in data, constructed
// once and never mutated.
type routingTable struct {
	order   []Role
	entries map[Role][]Role
}

func defaultRoutingTable() routingTable {
	t := routingTable{entries: make(map[Role][]Role)}
	add := func(stage Role, participants ...Role) {
		t.order = append(t.order, stage)
		t.entries[stage] = participants
	}
	add(RoleMissionPlanner, RoleMissionPlanner, RoleAerodynamics, RolePropulsion, RoleStructures)
	add(RoleAerodynamics, RoleAerodynamics, RolePropulsion, RoleStructures)
	add(RolePropulsion, RolePropulsion, RoleStructures)
	add(RoleStructures, RoleAerodynamics, RolePropulsion, RoleStructures, RoleManufacturing)
	add(RoleManufacturing, RoleStructures, RoleManufacturing)
	return t
}

// Routing returns the ordered participant roles for the given stage. The
// returned slice is a copy; callers cannot mutate the table through it. An
// unknown stage yields a NotFoundError rather than a silent default, so
// configuration drift surfaces at the call site.
func (c *Config) Routing(stage string) ([]Role, error) {
	participants, ok := c.routing.entries[Role(stage)]
	if !ok {
		return nil, avionerrors.NewNotFoundError(stage)
	}
	out := make([]Role, len(participants))
	copy(out, participants)
	return out, nil
}

// Stages returns the stage keys in table order.
func (c *Config) Stages() []Role {
	out := make([]Role, len(c.routing.order))
	copy(out, c.routing.order)
	return out
}

// EngineeringRoles returns the roles that own a workflow stage, in table
// order. This is the set of engineering agents the coordinator manages.
func (c *Config) EngineeringRoles() []Role {
	return c.Stages()
}

// CanMessage reports whether from may send a mailbox message to: a role may
// address the participants of its own stage, excluding itself.
func (c *Config) CanMessage(from, to Role) bool {
	if from == to {
		return false
	}
	for _, participant := range c.routing.entries[from] {
		if participant == to {
			return true
		}
	}
	return false
}
