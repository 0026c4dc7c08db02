// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"labinv-cli/internal/export"

	"github.com/spf13/cobra"
)

var varsFormat string

// varsCmd exports a host's variables in Terraform's vocabulary.
var varsCmd = &cobra.Command{
	Use:   "vars <host>",
	Short: "Export Terraform variables for a host",
	Long: `Export the variables the provisioning tooling needs for one host.

Variables are collected from the environment's group_vars and host_vars
files, overlaid with the host's merged inventory variables (secrets
included), renamed through the fixed Ansible-to-Terraform mapping table,
and completed with hard-coded defaults for infrastructure parameters
that are absent from the source.

Use --env to pin the environment; otherwise the host's environment tag
from the merged inventory is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hostname := args[0]
		svc, root, logger := newService(cmd)

		result := export.HostInfo(cmd.Context(), svc, root, hostname, effectiveEnv(), logger)
		if !result.Success {
			logger.Error("variable export failed", "host", hostname, "err", result.Error)
			return exitWithDocument(cmd, result, 1)
		}

		switch varsFormat {
		case "json":
			return writeDocument(cmd, result.TerraformVars)
		case "hcl":
			fmt.Fprint(cmd.OutOrStdout(), export.FormatHCL(result.TerraformVars))
			return nil
		default:
			return fmt.Errorf("unknown format %q (want json or hcl)", varsFormat)
		}
	},
}

func init() {
	varsCmd.Flags().StringVar(&varsFormat, "format", "json", "output format (json or hcl)")
}
