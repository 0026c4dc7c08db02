// SPDX-License-Identifier: MPL-2.0

package export

import (
	"context"
	"fmt"

	"labinv-cli/internal/inventory"

	"github.com/charmbracelet/log"
)

// DataSourceResult is the envelope the Terraform external data source
// consumes. Failures are reported in-band (Success=false plus Error) so
// Terraform always receives a well-formed document; the CLI additionally
// exits non-zero when Success is false.
type DataSourceResult struct {
	Hostname      string         `json:"hostname"`
	Environment   string         `json:"environment"`
	AnsibleData   map[string]any `json:"ansible_data"`
	TerraformVars map[string]any `json:"terraform_vars"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
}

// HostInfo queries the merged inventory for one host and assembles the data
// source envelope: the host's merged variables plus the Terraform variable
// map derived from the environment's variable files overlaid with the
// merged host variables.
func HostInfo(ctx context.Context, svc *inventory.Service, root, hostname, environment string, logger *log.Logger) *DataSourceResult {
	result := &DataSourceResult{
		Hostname:      hostname,
		Environment:   environment,
		AnsibleData:   map[string]any{},
		TerraformVars: map[string]any{},
	}
	if environment == "" {
		result.Environment = "unknown"
	}

	merged, err := svc.GetInventory(ctx, environment)
	if err != nil {
		result.Error = fmt.Sprintf("inventory query failed: %v", err)
		return result
	}

	hostVars, ok := merged.Meta.Hostvars[hostname]
	if !ok {
		result.Error = fmt.Sprintf("host %q not found in inventory", hostname)
		return result
	}
	result.AnsibleData = hostVars

	// The environment tag on the host pins the variable-file collectors
	// when no explicit environment was requested.
	envName := environment
	if envName == "" {
		if tag, ok := hostVars["environment"].(string); ok {
			envName = tag
			result.Environment = tag
		}
	}

	vars := map[string]any{}
	if envName != "" {
		vars = CollectHostVars(EnvironmentDir(root, envName), hostname, logger)
	}
	for k, v := range hostVars {
		vars[k] = v
	}

	result.TerraformVars = TerraformVars(vars)
	result.Success = true
	return result
}
