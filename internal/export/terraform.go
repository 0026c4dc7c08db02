// SPDX-License-Identifier: MPL-2.0

// Package export converts resolved inventory variables into the forms the
// provisioning tooling consumes: Terraform variable maps, HCL assignment
// lines, and the external data source result envelope.
package export

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// directMappings is the fixed table of inventory variable names that pass
// through to Terraform under the same (or a renamed) variable name.
var directMappings = map[string]string{
	"cluster_name":              "cluster_name",
	"talos_version":             "talos_version",
	"control_plane_count":       "control_plane_count",
	"worker_count":              "worker_count",
	"control_plane_vm_ids":      "control_plane_vm_ids",
	"control_plane_ips":         "control_plane_ips",
	"control_plane_cores":       "control_plane_cores",
	"control_plane_memory":      "control_plane_memory",
	"control_plane_disk_size":   "control_plane_disk_size",
	"worker_vm_ids":             "worker_vm_ids",
	"worker_ips":                "worker_ips",
	"worker_cores":              "worker_cores",
	"worker_memory":             "worker_memory",
	"worker_disk_size":          "worker_disk_size",
	"bridge_name":               "bridge_name",
	"talos_network_cidr":        "talos_network_cidr",
	"talos_network_gateway":     "talos_network_gateway",
	"management_network_cidr":   "management_network_cidr",
	"management_gateway":        "management_gateway",
	"enable_nat_gateway":        "enable_nat_gateway",
	"nat_gateway_vm_id":         "nat_gateway_vm_id",
	"nat_gateway_management_ip": "nat_gateway_management_ip",
	"nat_gateway_cluster_ip":    "nat_gateway_cluster_ip",
	"openwrt_version":           "openwrt_version",
	"enable_firewall":           "enable_firewall",
	"ssh_public_keys":           "ssh_public_keys",
	"template_vm_id":            "template_vm_id",
}

// fallbackDefaults supplies hard-coded values for infrastructure parameters
// Terraform always needs, used only when the resolved host variables do not
// provide them.
var fallbackDefaults = map[string]any{
	"proxmox_node":            "pve02",
	"storage_pool":            "storage-vms",
	"talos_network_cidr":      "10.10.0.0/24",
	"talos_network_gateway":   "10.10.0.1",
	"management_network_cidr": "10.0.0.0/24",
	"management_gateway":      "10.0.0.1",
	"control_plane_disk_size": 50,
	"worker_disk_size":        100,
	"template_vm_id":          9000,
}

// CollectHostVars gathers the group_vars hierarchy and then the host's own
// host_vars files for one environment, later files winning on key
// collisions. Missing directories contribute nothing; malformed files are
// skipped with a warning.
func CollectHostVars(envDir, hostname string, logger *log.Logger) map[string]any {
	vars := map[string]any{}

	groupVarsDir := filepath.Join(envDir, "ansible", "group_vars")
	collectYAMLFiles(groupVarsDir, vars, logger)

	hostVarsDir := filepath.Join(envDir, "ansible", "host_vars", hostname)
	collectYAMLFiles(hostVarsDir, vars, logger)

	return vars
}

// collectYAMLFiles loads every .yaml/.yml file under dir (recursively, in
// walk order) into vars.
func collectYAMLFiles(dir string, vars map[string]any, logger *log.Logger) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := filepath.Ext(d.Name())
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read vars file", "path", path, "err", err)
			return nil
		}
		var fileVars map[string]any
		if err := yaml.Unmarshal(data, &fileVars); err != nil {
			logger.Warn("failed to parse vars file", "path", path, "err", err)
			return nil
		}
		for k, v := range fileVars {
			vars[k] = v
		}
		return nil
	})
}

// TerraformVars converts resolved inventory variables into the Terraform
// variable map: the fixed mapping table first, then computed values, then
// fallback defaults for anything still absent.
func TerraformVars(inventoryVars map[string]any) map[string]any {
	tfVars := map[string]any{}

	for inventoryKey, terraformKey := range directMappings {
		if value, ok := inventoryVars[inventoryKey]; ok {
			tfVars[terraformKey] = value
		}
	}

	if node, ok := inventoryVars["inventory_hostname"]; ok {
		tfVars["proxmox_node"] = node
	}
	if pool, ok := inventoryVars["proxmox_default_storage_pool"]; ok {
		tfVars["storage_pool"] = pool
	}

	for key, value := range fallbackDefaults {
		if _, ok := tfVars[key]; !ok {
			tfVars[key] = value
		}
	}

	return tfVars
}

// EnvironmentDir returns the environment directory under root for the
// exporter's file collectors.
func EnvironmentDir(root, environment string) string {
	return filepath.Join(root, "environments", environment)
}
