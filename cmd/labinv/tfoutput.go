// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"labinv-cli/internal/export"

	"github.com/spf13/cobra"
)

var tfHostname string

// tfOutputCmd emits the Terraform external data source envelope.
var tfOutputCmd = &cobra.Command{
	Use:   "tf-output",
	Short: "Query the inventory as a Terraform external data source",
	Long: `Emit the result envelope Terraform's external data source expects.

The envelope always parses as JSON; failures are reported in-band
(success=false plus an error message) and additionally exit non-zero so
Terraform aborts the plan.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, root, logger := newService(cmd)

		result := export.HostInfo(cmd.Context(), svc, root, tfHostname, effectiveEnv(), logger)
		if !result.Success {
			return exitWithDocument(cmd, result, 1)
		}
		return writeDocument(cmd, result)
	},
}

func init() {
	tfOutputCmd.Flags().StringVar(&tfHostname, "hostname", "", "name of the host to query")
	_ = tfOutputCmd.MarkFlagRequired("hostname")
}
