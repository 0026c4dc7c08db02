// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"os"
	"path/filepath"
	"sort"
)

const (
	// flatInventoryName is the flat-format inventory file name.
	flatInventoryName = "hosts.toml"
	// yamlInventoryName is the structured-format inventory file name.
	yamlInventoryName = "hosts.yaml"
)

// inventoryDir returns the inventory directory for one environment.
func inventoryDir(envsDir, envName string) string {
	return filepath.Join(envsDir, envName, "ansible", "inventory")
}

// hostVarsDir returns the host_vars directory for one environment.
func hostVarsDir(envsDir, envName string) string {
	return filepath.Join(envsDir, envName, "ansible", "host_vars")
}

// groupVarsDir returns the group_vars directory for one environment.
func groupVarsDir(envsDir, envName string) string {
	return filepath.Join(envsDir, envName, "ansible", "group_vars")
}

// DiscoverEnvironments scans envsDir for environment subdirectories that
// contain a recognized inventory file in either supported format, and
// returns their names sorted lexicographically. Merge order follows this
// ordering, so it must be deterministic. A missing envsDir yields an empty
// list, not an error.
func DiscoverEnvironments(envsDir string) []string {
	entries, err := os.ReadDir(envsDir)
	if err != nil {
		return nil
	}

	var environments []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		invDir := inventoryDir(envsDir, entry.Name())
		if fileExists(filepath.Join(invDir, flatInventoryName)) ||
			fileExists(filepath.Join(invDir, yamlInventoryName)) {
			environments = append(environments, entry.Name())
		}
	}

	sort.Strings(environments)
	return environments
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
