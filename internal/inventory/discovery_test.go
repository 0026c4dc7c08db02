// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"path/filepath"
	"reflect"
	"testing"

	"labinv-cli/internal/testutil"
)

func TestDiscoverEnvironmentsSorted(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "staging", "hosts.yaml", "all:\n  children: []\n")
	testutil.WriteInventory(t, root, "dev", "hosts.toml", "[web]\nhost1\n")
	testutil.WriteInventory(t, root, "prod", "hosts.yaml", "all:\n  children: []\n")

	got := DiscoverEnvironments(filepath.Join(root, "environments"))
	want := []string{"dev", "prod", "staging"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverEnvironments() = %v, want %v", got, want)
	}
}

func TestDiscoverEnvironmentsSkipsIncomplete(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.yaml", "all:\n  children: []\n")
	// Directory without a recognized inventory file.
	testutil.MustMkdirAll(t, filepath.Join(root, "environments", "broken", "ansible", "inventory"), 0o755)
	// Stray file at the environments level.
	testutil.MustWriteFile(t, filepath.Join(root, "environments", "README.md"), "notes\n")

	got := DiscoverEnvironments(filepath.Join(root, "environments"))
	want := []string{"dev"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverEnvironments() = %v, want %v", got, want)
	}
}

func TestDiscoverEnvironmentsMissingDir(t *testing.T) {
	got := DiscoverEnvironments(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(got) != 0 {
		t.Errorf("DiscoverEnvironments() = %v, want empty", got)
	}
}
