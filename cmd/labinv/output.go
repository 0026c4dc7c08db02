// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeDocument marshals v as an indented JSON document on stdout. Every
// query operation emits exactly one document.
func writeDocument(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// exitWithDocument emits a document and then signals a non-zero exit,
// silencing cobra's own error rendering so the document is the only output.
func exitWithDocument(cmd *cobra.Command, v any, code int) error {
	if err := writeDocument(cmd, v); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: code}
}
