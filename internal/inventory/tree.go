// SPDX-License-Identifier: MPL-2.0

// Package inventory implements the environment discovery, loading, merging,
// and validation pipeline behind the labinv query surface. Environments are
// discovered under <root>/environments, loaded from YAML or flat inventory
// files into a normalized tree, and merged into a single Ansible-shaped
// inventory with per-host variable maps.
package inventory

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// RootGroupName is the synthetic top-level group every inventory has.
	RootGroupName = "all"
	// MetaKey is the reserved key carrying hostvars and environment info.
	MetaKey = "_meta"
)

type (
	// Tree is a normalized single-environment inventory: group names as
	// keys, each group holding optional hosts, vars, and child group names.
	Tree map[string]*Group

	// Group is one named collection of hosts and shared variables.
	Group struct {
		// Hosts lists the host names that belong to this group.
		Hosts []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
		// Vars holds group-scoped variables.
		Vars map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
		// Children lists child group names (group nesting).
		Children []string `json:"children,omitempty" yaml:"children,omitempty"`

		// HostVars carries inline per-host variables for inventories that
		// declare hosts in map form (host name -> variable map). It never
		// appears in serialized output; merged per-host variables live in
		// _meta.hostvars instead.
		HostVars map[string]map[string]any `json:"-" yaml:"-"`
	}
)

// UnmarshalYAML accepts both host declaration forms: a plain list of names,
// or a map of name -> variable map. The map form populates HostVars so the
// validator can check required per-host fields.
func (g *Group) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Hosts    yaml.Node      `yaml:"hosts"`
		Vars     map[string]any `yaml:"vars"`
		Children []string       `yaml:"children"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	g.Vars = raw.Vars
	g.Children = raw.Children

	switch raw.Hosts.Kind {
	case 0: // no hosts key
	case yaml.SequenceNode:
		if err := raw.Hosts.Decode(&g.Hosts); err != nil {
			return fmt.Errorf("invalid hosts list: %w", err)
		}
	case yaml.MappingNode:
		hostVars := make(map[string]map[string]any)
		if err := raw.Hosts.Decode(&hostVars); err != nil {
			// Hosts with a null value in map form ("host1:") decode to a
			// nil map entry; anything else is a real structural error.
			var loose map[string]any
			if err2 := raw.Hosts.Decode(&loose); err2 != nil {
				return fmt.Errorf("invalid hosts map: %w", err)
			}
			hostVars = make(map[string]map[string]any, len(loose))
			for name, v := range loose {
				if m, ok := v.(map[string]any); ok {
					hostVars[name] = m
				} else {
					hostVars[name] = nil
				}
			}
		}
		g.HostVars = hostVars
		g.Hosts = make([]string, 0, len(hostVars))
		for name := range hostVars {
			g.Hosts = append(g.Hosts, name)
		}
		sort.Strings(g.Hosts)
	default:
		return fmt.Errorf("invalid hosts declaration (want list or map)")
	}

	return nil
}

// Clone returns a deep copy of the group. The merge engine clones every
// group it copies into the merged tree so the source trees stay untouched.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	clone := &Group{
		Hosts:    append([]string(nil), g.Hosts...),
		Children: append([]string(nil), g.Children...),
		Vars:     cloneVars(g.Vars),
	}
	if g.HostVars != nil {
		clone.HostVars = make(map[string]map[string]any, len(g.HostVars))
		for name, vars := range g.HostVars {
			clone.HostVars[name] = cloneVars(vars)
		}
	}
	return clone
}

// GroupNames returns all group names in the tree, sorted.
func (t Tree) GroupNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cloneVars deep-copies a variable map. Nested maps and slices are copied;
// scalar values are shared (they are immutable once loaded).
func cloneVars(vars map[string]any) map[string]any {
	if vars == nil {
		return nil
	}
	clone := make(map[string]any, len(vars))
	for k, v := range vars {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneVars(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
