// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"labinv-cli/internal/testutil"

	"github.com/charmbracelet/log"
)

// fakeResolver implements secrets.Resolver without spawning processes.
// Decrypt answers from the byPath map keyed on the file's base directory
// name (the host directory for secret bundles).
type fakeResolver struct {
	available bool
	byPath    map[string]map[string]any
	calls     []string
}

func (f *fakeResolver) Available() bool {
	return f.available
}

func (f *fakeResolver) Decrypt(_ context.Context, path string) map[string]any {
	f.calls = append(f.calls, path)
	if !f.available {
		return nil
	}
	return f.byPath[filepath.Base(filepath.Dir(path))]
}

// newTestLogger returns a logger that swallows output.
func newTestLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestEngine creates an Engine over root's environments directory with
// the given resolver.
func newTestEngine(root string, resolver *fakeResolver) *Engine {
	return NewEngine(filepath.Join(root, "environments"), resolver, newTestLogger())
}

// writeYAMLEnv writes a single-group YAML inventory for env with one host
// declared in map form. inlineVars is the host's inline variable map in
// YAML flow notation ("{}" for none).
func writeYAMLEnv(t testing.TB, root, env, group, host, inlineVars string) {
	t.Helper()
	content := "all:\n  children: [" + env + "]\n" +
		env + ":\n  children: [" + group + "]\n" +
		group + ":\n  hosts:\n    " + host + ": " + inlineVars + "\n"
	testutil.WriteInventory(t, root, env, "hosts.yaml", content)
}
