// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"labinv-cli/internal/issue"

	"github.com/spf13/cobra"
)

// validateCmd runs structural validation over every environment.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate all inventory files",
	Long: `Validate every discovered environment's inventory file.

Empty or unparseable inventory files are errors and fail validation.
Hosts missing required fields (ansible_host, environment, cluster_role)
produce warnings but do not fail validation.

The full report is printed as JSON; the process exits non-zero when any
environment is invalid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, _ := newService(cmd)

		report := svc.Validate(cmd.Context())
		if !report.Valid {
			fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Inventory validation failed"))
			renderIssue(cmd.ErrOrStderr(), issue.ValidationFailedId)
			return exitWithDocument(cmd, report, 1)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("Inventory valid"))
		return writeDocument(cmd, report)
	},
}
