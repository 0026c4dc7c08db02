// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"labinv-cli/internal/testutil"
)

func TestLoadEnvironmentFlatLegacy(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.toml", `# edge nodes
[web]
host1
host2

[db]
db1
`)

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "dev")

	if result.Status != LoadOK {
		t.Fatalf("status = %v, want %v", result.Status, LoadOK)
	}

	web, ok := result.Tree["web"]
	if !ok {
		t.Fatal("missing group web")
	}
	if want := []string{"host1", "host2"}; !reflect.DeepEqual(web.Hosts, want) {
		t.Errorf("web hosts = %v, want %v", web.Hosts, want)
	}

	// Grouped hosts never leak into the environment group.
	if env := result.Tree["dev"]; len(env.Hosts) != 0 {
		t.Errorf("dev hosts = %v, want none", env.Hosts)
	}
	if env := result.Tree["dev"]; !reflect.DeepEqual(env.Children, []string{"db", "web"}) {
		t.Errorf("dev children = %v, want [db web]", env.Children)
	}
	if all := result.Tree[RootGroupName]; !reflect.DeepEqual(all.Children, []string{"dev"}) {
		t.Errorf("all children = %v, want [dev]", all.Children)
	}
}

func TestLoadEnvironmentFlatUngroupedHosts(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.toml", "bare1\nbare2\n\n[web]\nhost1\n")

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "dev")

	if want := []string{"bare1", "bare2"}; !reflect.DeepEqual(result.Tree["dev"].Hosts, want) {
		t.Errorf("dev hosts = %v, want %v", result.Tree["dev"].Hosts, want)
	}
}

func TestLoadEnvironmentFlatTOML(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.toml", `web = ["host1", "host2"]

[db]
hosts = ["db1"]
`)

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "dev")

	if result.Status != LoadOK {
		t.Fatalf("status = %v, want %v", result.Status, LoadOK)
	}
	if want := []string{"host1", "host2"}; !reflect.DeepEqual(result.Tree["web"].Hosts, want) {
		t.Errorf("web hosts = %v, want %v", result.Tree["web"].Hosts, want)
	}
	if want := []string{"db1"}; !reflect.DeepEqual(result.Tree["db"].Hosts, want) {
		t.Errorf("db hosts = %v, want %v", result.Tree["db"].Hosts, want)
	}
}

func TestLoadEnvironmentYAMLListAndMapHosts(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "prod", "hosts.yaml", `all:
  children: [prod]
  vars:
    dns_server: 10.0.0.53
prod:
  children: [workers, control]
workers:
  hosts:
    - worker-01
    - worker-02
control:
  hosts:
    cp-01:
      ansible_host: 10.0.0.10
      cluster_role: control-plane
`)

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "prod")

	if result.Status != LoadOK {
		t.Fatalf("status = %v, want %v", result.Status, LoadOK)
	}
	if want := []string{"worker-01", "worker-02"}; !reflect.DeepEqual(result.Tree["workers"].Hosts, want) {
		t.Errorf("workers hosts = %v, want %v", result.Tree["workers"].Hosts, want)
	}

	control := result.Tree["control"]
	if want := []string{"cp-01"}; !reflect.DeepEqual(control.Hosts, want) {
		t.Errorf("control hosts = %v, want %v", control.Hosts, want)
	}
	if got := control.HostVars["cp-01"]["ansible_host"]; got != "10.0.0.10" {
		t.Errorf("cp-01 ansible_host = %v, want 10.0.0.10", got)
	}
}

func TestLoadEnvironmentYAMLMalformed(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.yaml", "all: [unclosed\n")

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "dev")

	if result.Status != LoadParseError {
		t.Errorf("status = %v, want %v", result.Status, LoadParseError)
	}
	if len(result.Tree) != 0 {
		t.Errorf("tree = %v, want empty", result.Tree)
	}
	if result.Err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadEnvironmentMissing(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "ghost")

	if result.Status != LoadNotFound {
		t.Errorf("status = %v, want %v", result.Status, LoadNotFound)
	}
	if len(result.Tree) != 0 {
		t.Errorf("tree = %v, want empty", result.Tree)
	}
}

func TestLoadEnvironmentPrefersFlat(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "dev", "hosts.toml", "[web]\nflat-host\n")
	testutil.WriteInventory(t, root, "dev", "hosts.yaml", "all:\n  children: []\n")

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "dev")

	if want := []string{"flat-host"}; !reflect.DeepEqual(result.Tree["web"].Hosts, want) {
		t.Errorf("web hosts = %v, want %v (flat file should win)", result.Tree["web"].Hosts, want)
	}
}

func TestLoadEnvironmentEncryptedYAML(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "vault", "hosts.yaml", testutil.EncryptedSecretDoc)

	resolver := &fakeResolver{
		available: true,
		byPath: map[string]map[string]any{
			"inventory": {
				"all": map[string]any{"children": []any{"vault"}},
				"vault": map[string]any{
					"hosts": []any{"sealed-01"},
				},
			},
		},
	}
	loader := NewLoader(resolver, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "vault")

	if result.Status != LoadOK {
		t.Fatalf("status = %v, want %v", result.Status, LoadOK)
	}
	if want := []string{"sealed-01"}; !reflect.DeepEqual(result.Tree["vault"].Hosts, want) {
		t.Errorf("vault hosts = %v, want %v", result.Tree["vault"].Hosts, want)
	}
	if len(resolver.calls) != 1 {
		t.Errorf("resolver calls = %d, want 1", len(resolver.calls))
	}
}

func TestLoadEnvironmentEncryptedDecryptFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteInventory(t, root, "vault", "hosts.yaml", testutil.EncryptedSecretDoc)

	loader := NewLoader(&fakeResolver{available: false}, newTestLogger())
	result := loader.LoadEnvironment(context.Background(), filepath.Join(root, "environments"), "vault")

	if result.Status != LoadParseError {
		t.Errorf("status = %v, want %v", result.Status, LoadParseError)
	}
	if len(result.Tree) != 0 {
		t.Errorf("tree = %v, want empty", result.Tree)
	}
}

func TestLoadHostVarsMergesMainFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteHostVars(t, root, "dev", "host1", "main.yaml", "ansible_host: 10.0.0.1\ncpu_cores: 4\n")
	testutil.WriteHostVars(t, root, "dev", "host1", "main.yml", "cpu_cores: 8\n")

	loader := NewLoader(&fakeResolver{}, newTestLogger())
	vars := loader.LoadHostVars(filepath.Join(root, "environments"), "dev", "host1")

	if got := vars["ansible_host"]; got != "10.0.0.1" {
		t.Errorf("ansible_host = %v, want 10.0.0.1", got)
	}
	if got := vars["cpu_cores"]; got != 8 {
		t.Errorf("cpu_cores = %v, want 8 (main.yml layered last)", got)
	}
}

func TestLoadStatusString(t *testing.T) {
	tests := []struct {
		status LoadStatus
		want   string
	}{
		{LoadOK, "ok"},
		{LoadNotFound, "not found"},
		{LoadParseError, "parse error"},
		{LoadStatus(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("LoadStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
