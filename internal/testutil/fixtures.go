// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// WriteInventory writes an inventory file for one environment under root.
// fileName selects the format (hosts.yaml or hosts.toml).
func WriteInventory(t testing.TB, root, env, fileName, content string) {
	t.Helper()
	path := filepath.Join(root, "environments", env, "ansible", "inventory", fileName)
	MustWriteFile(t, path, content)
}

// WriteHostVars writes host_vars/<host>/<fileName> for one environment.
func WriteHostVars(t testing.TB, root, env, host, fileName, content string) {
	t.Helper()
	path := filepath.Join(root, "environments", env, "ansible", "host_vars", host, fileName)
	MustWriteFile(t, path, content)
}

// WriteGroupVars writes group_vars/<group>/<fileName> for one environment.
func WriteGroupVars(t testing.TB, root, env, group, fileName, content string) {
	t.Helper()
	path := filepath.Join(root, "environments", env, "ansible", "group_vars", group, fileName)
	MustWriteFile(t, path, content)
}

// EncryptedSecretDoc is a minimal document that trips the encryption
// heuristic (both the sops metadata and per-value ciphertext markers).
const EncryptedSecretDoc = `db_password: enc:AES256_GCM,data:abcdef==
sops:
    version: 3.8.1
    lastmodified: "2024-01-01T00:00:00Z"
`

// WriteEncryptedSecrets writes a marker-bearing secrets.sops.yaml for one
// host. The content is not real ciphertext; tests pair it with a fake
// resolver that returns a plaintext bundle.
func WriteEncryptedSecrets(t testing.TB, root, env, host string) {
	t.Helper()
	WriteHostVars(t, root, env, host, "secrets.sops.yaml", EncryptedSecretDoc)
}
