// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// requiredHostFields are the per-host fields every host is expected to
// declare. A missing field is a warning, not an error: it never flips an
// environment's valid flag.
var requiredHostFields = []string{"ansible_host", "environment", "cluster_role"}

type (
	// Report is the outcome of validating every discovered environment.
	// Valid is the logical AND of all per-environment valid flags.
	Report struct {
		Valid        bool                  `json:"valid"`
		Environments map[string]*EnvReport `json:"environments"`
		Errors       []string              `json:"errors"`
		Warnings     []string              `json:"warnings"`
	}

	// EnvReport is the validation outcome for one environment.
	EnvReport struct {
		Valid    bool     `json:"valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
		Hosts    []string `json:"hosts"`
		Groups   []string `json:"groups"`
	}

	// Validator checks structural invariants of each environment's raw
	// inventory tree, independent of the merge engine, so findings reflect
	// the unmerged single source.
	Validator struct {
		envsDir string
		loader  *Loader
		logger  *log.Logger
	}
)

// NewValidator creates a Validator over the given environments directory.
func NewValidator(envsDir string, loader *Loader, logger *log.Logger) *Validator {
	return &Validator{envsDir: envsDir, loader: loader, logger: logger}
}

// Validate walks every discovered environment and reports structural errors
// (empty or unparseable inventory, which flip validity) and host
// field-completeness warnings (which do not).
func (v *Validator) Validate(ctx context.Context) *Report {
	report := &Report{
		Valid:        true,
		Environments: map[string]*EnvReport{},
		Errors:       []string{},
		Warnings:     []string{},
	}

	for _, envName := range DiscoverEnvironments(v.envsDir) {
		envReport := v.validateEnvironment(ctx, envName)
		report.Environments[envName] = envReport
		if !envReport.Valid {
			report.Valid = false
		}
	}

	return report
}

func (v *Validator) validateEnvironment(ctx context.Context, envName string) *EnvReport {
	envReport := &EnvReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Hosts:    []string{},
		Groups:   []string{},
	}

	result := v.loader.LoadEnvironment(ctx, v.envsDir, envName)
	tree := result.Tree

	if len(tree) == 0 {
		envReport.Valid = false
		envReport.Errors = append(envReport.Errors, "Empty or invalid inventory file")
		v.logger.Debug("environment failed validation", "environment", envName, "status", result.Status)
		return envReport
	}

	rootGroup, hasRoot := tree[RootGroupName]
	if !hasRoot {
		envReport.Warnings = append(envReport.Warnings,
			fmt.Sprintf("Missing '%s' group in inventory", RootGroupName))
		return envReport
	}

	seen := map[string]bool{RootGroupName: true}
	v.walkGroups(tree, rootGroup, "", seen, envReport)

	return envReport
}

// walkGroups enumerates every group and host reachable through nested
// groups, recording group paths and warning on hosts that miss required
// fields. The seen set guards against child cycles in malformed trees.
func (v *Validator) walkGroups(tree Tree, group *Group, prefix string, seen map[string]bool, envReport *EnvReport) {
	for _, hostname := range group.Hosts {
		envReport.Hosts = append(envReport.Hosts, prefix+hostname)
		v.checkHostFields(hostname, group.HostVars[hostname], envReport)
	}

	for _, childName := range group.Children {
		if seen[childName] {
			continue
		}
		seen[childName] = true

		childPath := prefix + childName
		envReport.Groups = append(envReport.Groups, childPath)

		child, ok := tree[childName]
		if !ok {
			envReport.Warnings = append(envReport.Warnings,
				fmt.Sprintf("Group %s references undefined child: %s", orRoot(prefix), childName))
			continue
		}
		v.walkGroups(tree, child, childPath+"/", seen, envReport)
	}
}

// checkHostFields warns for each required field the host's inline variable
// map is missing. Hosts declared in list form carry no inline variables and
// get a single "no variables" warning, mirroring the field checks being
// impossible rather than failed.
func (v *Validator) checkHostFields(hostname string, hostVars map[string]any, envReport *EnvReport) {
	if hostVars == nil {
		envReport.Warnings = append(envReport.Warnings,
			fmt.Sprintf("Host %s has no variables", hostname))
		return
	}

	for _, field := range requiredHostFields {
		if _, ok := hostVars[field]; !ok {
			envReport.Warnings = append(envReport.Warnings,
				fmt.Sprintf("Host %s missing required field: %s", hostname, field))
		}
	}
}

func orRoot(prefix string) string {
	if prefix == "" {
		return RootGroupName
	}
	return prefix
}
