// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// envsCmd lists the discovered environments.
var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List available environments",
	Long: `List the environments discovered under <root>/environments.

An environment is any subdirectory that contains an inventory file in
one of the supported formats (ansible/inventory/hosts.yaml or hosts.toml).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, _ := newService(cmd)

		environments := svc.ListEnvironments()
		if environments == nil {
			environments = []string{}
		}

		return writeDocument(cmd, map[string]any{
			"environments": environments,
			"count":        len(environments),
		})
	},
}
