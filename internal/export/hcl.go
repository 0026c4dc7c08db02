// SPDX-License-Identifier: MPL-2.0

package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatHCL renders a variable map as `key = value` assignment lines in the
// syntax Terraform's -var-file loader accepts, sorted by key for
// deterministic output.
func FormatHCL(vars map[string]any) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString(" = ")
		sb.WriteString(formatHCLValue(vars[key]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatHCLValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []any, map[string]any:
		// JSON is valid HCL2 for collection literals.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%q", fmt.Sprint(v))
		}
		return string(raw)
	default:
		return fmt.Sprint(v)
	}
}
