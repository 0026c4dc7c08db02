// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// configCmd groups configuration operations.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage labinv configuration",
}

// configShowCmd prints the effective configuration after defaults, the
// config file, and environment variables have been applied.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeDocument(cmd, map[string]any{
			"root":        effectiveRoot(),
			"environment": effectiveEnv(),
			"sops": map[string]any{
				"binary":          cfg.Sops.Binary,
				"probe_timeout":   cfg.Sops.ProbeTimeout.String(),
				"decrypt_timeout": cfg.Sops.DecryptTimeout.String(),
			},
			"ui": map[string]any{
				"verbose": verbose,
			},
		})
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
