// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"labinv-cli/internal/secrets"

	"github.com/charmbracelet/log"
)

// secretsFileNames are the per-host encrypted secret file names the engine
// scans for inside host_vars/<host>/ directories.
var secretsFileNames = []string{"secrets.sops.yaml", "secrets.sops.yml"}

// ErrUnknownEnvironment is returned when a requested environment filter
// does not match any discovered environment. The accompanying inventory is
// the explicit empty shape, never a partial tree.
var ErrUnknownEnvironment = errors.New("unknown environment")

type (
	// Engine orchestrates discovery, loading, and secret resolution across
	// environments and applies the precedence rules that produce one merged
	// inventory. The engine exclusively owns the merged tree during
	// construction; callers treat the returned value as immutable.
	Engine struct {
		envsDir  string
		loader   *Loader
		resolver secrets.Resolver
		logger   *log.Logger
	}

	// Merged is the root output artifact: the all group, every merged
	// group, and the _meta host-variable index. It is rebuilt from disk on
	// every query and never persisted.
	Merged struct {
		All    *RootGroup
		Groups map[string]*Group
		Meta   *Meta

		// ParseFailures counts environments whose inventory file existed
		// but could not be parsed (or decrypted). Never serialized; the
		// CLI uses it to point the operator at the validator.
		ParseFailures int

		// SecretFailures counts marked secret files that produced no
		// plaintext bundle. Never serialized.
		SecretFailures int
	}

	// RootGroup is the merged all group.
	RootGroup struct {
		Children []string       `json:"children"`
		Vars     map[string]any `json:"vars,omitempty"`
	}

	// Meta carries the host-variable index and per-environment statistics.
	Meta struct {
		Hostvars        map[string]map[string]any   `json:"hostvars"`
		EnvironmentInfo map[string]*EnvironmentInfo `json:"environment_info,omitempty"`
	}

	// EnvironmentInfo records per-environment merge statistics.
	EnvironmentInfo struct {
		Source       string `json:"source"`
		HostsCount   int    `json:"hosts_count"`
		GroupsCount  int    `json:"groups_count"`
		SecretsCount int    `json:"sops_secrets_count"`
	}
)

// NewEngine creates a merge engine over the given environments directory.
func NewEngine(envsDir string, resolver secrets.Resolver, logger *log.Logger) *Engine {
	return &Engine{
		envsDir:  envsDir,
		loader:   NewLoader(resolver, logger),
		resolver: resolver,
		logger:   logger,
	}
}

// Loader exposes the engine's loader for consumers that need raw
// single-environment trees (the validator, the variable exporter).
func (e *Engine) Loader() *Loader {
	return e.loader
}

// Environments returns the discovered environment names, sorted.
func (e *Engine) Environments() []string {
	return DiscoverEnvironments(e.envsDir)
}

// EmptyMerged returns the explicit empty inventory shape:
// {all: {children: []}, _meta: {hostvars: {}}}.
func EmptyMerged() *Merged {
	return &Merged{
		All:    &RootGroup{Children: []string{}},
		Groups: map[string]*Group{},
		Meta:   &Meta{Hostvars: map[string]map[string]any{}},
	}
}

// Merge discovers all environments (or the single requested one), loads
// each inventory, and merges them in discovery order. An unknown requested
// environment yields the explicit empty inventory plus ErrUnknownEnvironment;
// every other per-environment failure degrades to partial data with a log
// entry, never an aborted merge.
func (e *Engine) Merge(ctx context.Context, environment string) (*Merged, error) {
	available := e.Environments()
	if len(available) == 0 {
		e.logger.Warn("no environments found", "dir", e.envsDir)
		return EmptyMerged(), nil
	}

	if environment != "" {
		if !contains(available, environment) {
			e.logger.Error("environment not found",
				"environment", environment, "available", available)
			return EmptyMerged(), fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
		}
		available = []string{environment}
	}

	merged := &Merged{
		All: &RootGroup{
			Children: []string{},
			Vars:     map[string]any{},
		},
		Groups: map[string]*Group{},
		Meta: &Meta{
			Hostvars:        map[string]map[string]any{},
			EnvironmentInfo: map[string]*EnvironmentInfo{},
		},
	}

	for _, envName := range available {
		result := e.loader.LoadEnvironment(ctx, e.envsDir, envName)
		e.mergeEnvironment(ctx, merged, envName, result)
	}

	return merged, nil
}

// mergeEnvironment applies one environment to the merged tree, in order:
// secret bundles are decrypted first, the environment registers as a child
// of all, groups copy in verbatim (later environments silently overwrite
// identically-named groups), per-host variables layer into _meta.hostvars
// with secrets applied last, and environment-level vars land in the root
// vars map under an <env>_ prefix.
func (e *Engine) mergeEnvironment(ctx context.Context, merged *Merged, envName string, result LoadResult) {
	e.logger.Debug("merging environment", "environment", envName, "source", result.Path)

	if result.Status == LoadParseError {
		merged.ParseFailures++
	}

	secretBundles, marked := e.discoverSecretBundles(ctx, envName)
	merged.SecretFailures += marked - len(secretBundles)

	info := &EnvironmentInfo{
		Source:       result.Path,
		SecretsCount: len(secretBundles),
	}
	merged.Meta.EnvironmentInfo[envName] = info

	tree := result.Tree
	rootGroup := tree[RootGroupName]

	if rootGroup != nil && rootGroup.Children != nil {
		if !contains(merged.All.Children, envName) {
			merged.All.Children = append(merged.All.Children, envName)
		}

		for _, groupName := range tree.GroupNames() {
			if groupName == RootGroupName || groupName == MetaKey {
				continue
			}
			merged.Groups[groupName] = tree[groupName].Clone()
			if !contains(merged.All.Children, groupName) {
				merged.All.Children = append(merged.All.Children, groupName)
			}
			info.GroupsCount++
		}

		for _, groupName := range tree.GroupNames() {
			if groupName == RootGroupName || groupName == MetaKey {
				continue
			}
			group := tree[groupName]
			info.HostsCount += len(group.Hosts)
			for _, hostname := range group.Hosts {
				e.mergeHost(merged, envName, hostname, group.HostVars[hostname], secretBundles[hostname])
			}
		}
	}

	if rootGroup != nil {
		for varName, value := range rootGroup.Vars {
			merged.All.Vars[envName+"_"+varName] = cloneValue(value)
		}
	}

	for varName, value := range e.loader.LoadGroupVars(e.envsDir, envName, envName) {
		merged.All.Vars[envName+"_"+varName] = value
	}
}

// mergeHost layers one host's variables into _meta.hostvars. Order matters:
// inline inventory vars, then the host_vars file, then the environment tag,
// then the secret bundle. Secrets are applied last, so they win ties.
func (e *Engine) mergeHost(merged *Merged, envName, hostname string, inline, bundle map[string]any) {
	hostVars, ok := merged.Meta.Hostvars[hostname]
	if !ok {
		hostVars = map[string]any{}
		merged.Meta.Hostvars[hostname] = hostVars
	}

	for k, v := range inline {
		hostVars[k] = cloneValue(v)
	}
	for k, v := range e.loader.LoadHostVars(e.envsDir, envName, hostname) {
		hostVars[k] = v
	}

	hostVars["environment"] = envName

	if bundle != nil {
		for k, v := range bundle {
			hostVars[k] = v
		}
		e.logger.Debug("merged secret bundle", "host", hostname, "environment", envName)
	}
}

// discoverSecretBundles scans host_vars/<host>/ for marked secret files and
// decrypts them, returning hostname -> plaintext bundle plus the number of
// marked files encountered. Hosts whose decryption fails are absent from the
// result (the failure is logged by the resolver); they still merge with
// their plain variables.
func (e *Engine) discoverSecretBundles(ctx context.Context, envName string) (map[string]map[string]any, int) {
	bundles := map[string]map[string]any{}
	marked := 0

	hostsDir := hostVarsDir(e.envsDir, envName)
	entries, err := os.ReadDir(hostsDir)
	if err != nil {
		return bundles, marked
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		hostname := entry.Name()
		for _, fileName := range secretsFileNames {
			path := filepath.Join(hostsDir, hostname, fileName)
			data, err := os.ReadFile(path)
			if err != nil || !secrets.IsEncrypted(data) {
				continue
			}
			marked++
			if plain := e.resolver.Decrypt(ctx, path); plain != nil {
				bundles[hostname] = plain
				e.logger.Debug("loaded secret bundle",
					"host", hostname, "environment", envName)
			}
			break
		}
	}

	return bundles, marked
}

// MarshalJSON emits the Ansible inventory shape: the all group and every
// merged group as top-level keys plus the _meta index. Group names never
// collide with "all" or "_meta" (those keys are reserved by construction).
func (m *Merged) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(m.Groups)+2)
	doc[RootGroupName] = m.All
	doc[MetaKey] = m.Meta
	for name, group := range m.Groups {
		doc[name] = group
	}
	return json.Marshal(doc)
}

// HostVars returns the merged variable map for one host, or an empty map
// when the host is absent.
func (m *Merged) HostVars(hostname string) map[string]any {
	if vars, ok := m.Meta.Hostvars[hostname]; ok {
		return vars
	}
	return map[string]any{}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
