// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"labinv-cli/internal/secrets"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// LoadOK means the file was read and parsed into a tree.
	LoadOK LoadStatus = iota
	// LoadNotFound means no inventory file exists for the environment.
	LoadNotFound
	// LoadParseError means the file exists but could not be parsed.
	LoadParseError
)

type (
	// LoadStatus classifies the outcome of loading one inventory source.
	LoadStatus int

	// LoadResult is the outcome of loading a single environment's inventory.
	// NotFound and ParseError both carry an empty tree so the merge can
	// continue best-effort; Err holds the parse detail when present.
	LoadResult struct {
		Status LoadStatus
		Tree   Tree
		Path   string
		Err    error
	}

	// Loader reads a single environment's on-disk definition into a
	// normalized tree, routing encrypted files through the secret resolver.
	Loader struct {
		resolver secrets.Resolver
		logger   *log.Logger
	}
)

// String returns a human-readable status name.
func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadNotFound:
		return "not found"
	case LoadParseError:
		return "parse error"
	default:
		return "unknown"
	}
}

// NewLoader creates a Loader. The resolver handles encrypted files; the
// logger receives the best-effort warnings the loader emits instead of
// propagating per-file failures.
func NewLoader(resolver secrets.Resolver, logger *log.Logger) *Loader {
	return &Loader{resolver: resolver, logger: logger}
}

// LoadEnvironment loads the inventory for one environment. The flat format
// (hosts.toml) is preferred when both files exist, matching discovery.
// Read and parse failures degrade to an empty tree plus a logged warning:
// one malformed environment must not abort the whole merge.
func (l *Loader) LoadEnvironment(ctx context.Context, envsDir, envName string) LoadResult {
	invDir := inventoryDir(envsDir, envName)

	flatPath := filepath.Join(invDir, flatInventoryName)
	if fileExists(flatPath) {
		return l.loadFlat(ctx, flatPath, envName)
	}

	yamlPath := filepath.Join(invDir, yamlInventoryName)
	if fileExists(yamlPath) {
		return l.loadYAML(ctx, yamlPath)
	}

	l.logger.Debug("no inventory file found", "environment", envName)
	return LoadResult{Status: LoadNotFound, Tree: Tree{}, Path: yamlPath}
}

// loadYAML reads a structured inventory file. The file must already follow
// the normalized shape (group names as top-level keys). Encrypted files are
// decrypted first and the plaintext replaces the file contents.
func (l *Loader) loadYAML(ctx context.Context, path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("failed to read inventory file", "path", path, "err", err)
		return LoadResult{Status: LoadNotFound, Tree: Tree{}, Path: path, Err: err}
	}

	if secrets.IsEncrypted(data) {
		l.logger.Debug("detected encrypted inventory file", "path", path)
		plain := l.resolver.Decrypt(ctx, path)
		if plain == nil {
			l.logger.Warn("failed to decrypt inventory file", "path", path)
			return LoadResult{Status: LoadParseError, Tree: Tree{}, Path: path,
				Err: fmt.Errorf("decryption failed: %s", path)}
		}
		tree, err := treeFromPlain(plain)
		if err != nil {
			l.logger.Warn("decrypted inventory is not a valid tree", "path", path, "err", err)
			return LoadResult{Status: LoadParseError, Tree: Tree{}, Path: path, Err: err}
		}
		return LoadResult{Status: LoadOK, Tree: tree, Path: path}
	}

	var tree Tree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		l.logger.Warn("failed to parse inventory file", "path", path, "err", err)
		return LoadResult{Status: LoadParseError, Tree: Tree{}, Path: path, Err: err}
	}
	if tree == nil {
		tree = Tree{}
	}
	return LoadResult{Status: LoadOK, Tree: tree, Path: path}
}

// loadFlat reads a flat inventory file ([group] headers followed by bare
// host lines) and synthesizes the normalized tree shape for it. Well-formed
// TOML files take a typed fast path; legacy bare-line files fall back to
// the line parser, which never fails on content (unparseable lines are
// simply hosts).
func (l *Loader) loadFlat(ctx context.Context, path, envName string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("failed to read inventory file", "path", path, "err", err)
		return LoadResult{Status: LoadNotFound, Tree: Tree{}, Path: path, Err: err}
	}

	if secrets.IsEncrypted(data) {
		l.logger.Debug("detected encrypted inventory file", "path", path)
		plain := l.resolver.Decrypt(ctx, path)
		if plain == nil {
			l.logger.Warn("failed to decrypt inventory file", "path", path)
			return LoadResult{Status: LoadParseError, Tree: Tree{}, Path: path,
				Err: fmt.Errorf("decryption failed: %s", path)}
		}
		tree, err := treeFromPlain(plain)
		if err != nil {
			l.logger.Warn("decrypted inventory is not a valid tree", "path", path, "err", err)
			return LoadResult{Status: LoadParseError, Tree: Tree{}, Path: path, Err: err}
		}
		return LoadResult{Status: LoadOK, Tree: tree, Path: path}
	}

	groups, ok := parseTOMLSections(data)
	if !ok {
		groups = parseFlatSections(data)
	}

	return LoadResult{Status: LoadOK, Tree: flatToTree(groups, envName), Path: path}
}

// parseTOMLSections handles hosts.toml files that are well-formed TOML:
// top-level arrays of host names, or tables with a hosts array. Returns
// false when the file is not valid TOML (legacy bare-line files).
func parseTOMLSections(data []byte) (map[string][]string, bool) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, false
	}

	groups := make(map[string][]string, len(doc))
	for name, value := range doc {
		switch v := value.(type) {
		case []any:
			groups[name] = stringList(v)
		case map[string]any:
			if hosts, ok := v["hosts"].([]any); ok {
				groups[name] = stringList(hosts)
			} else {
				groups[name] = nil
			}
		default:
			return nil, false
		}
	}
	return groups, true
}

// parseFlatSections parses the legacy line syntax: [group] headers, bare
// host lines, '#' comments. Ungrouped lines land in the implicit all bucket.
func parseFlatSections(data []byte) map[string][]string {
	groups := make(map[string][]string)
	currentGroup := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentGroup = strings.TrimSpace(line[1 : len(line)-1])
			if _, seen := groups[currentGroup]; !seen {
				groups[currentGroup] = nil
			}
			continue
		}

		if currentGroup != "" {
			groups[currentGroup] = append(groups[currentGroup], line)
		} else {
			groups[RootGroupName] = append(groups[RootGroupName], line)
		}
	}

	return groups
}

// flatToTree synthesizes the normalized shape from flat sections: the
// environment becomes a child of all, hosts from the all bucket attach to
// the environment group, and every other section becomes a child group of
// the environment with only a hosts list.
func flatToTree(groups map[string][]string, envName string) Tree {
	tree := Tree{
		RootGroupName: {
			Children: []string{envName},
			Vars:     map[string]any{},
		},
		envName: {
			Children: []string{},
			Hosts:    []string{},
			Vars:     map[string]any{},
		},
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hosts := groups[name]
		if name == RootGroupName {
			tree[envName].Hosts = append(tree[envName].Hosts, hosts...)
			continue
		}
		tree[envName].Children = append(tree[envName].Children, name)
		tree[name] = &Group{Hosts: append([]string{}, hosts...)}
	}

	return tree
}

// treeFromPlain converts decrypted structured data into a normalized tree
// by round-tripping through YAML, so both forms of host declarations are
// accepted exactly as they are from on-disk files.
func treeFromPlain(plain map[string]any) (Tree, error) {
	raw, err := yaml.Marshal(plain)
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = Tree{}
	}
	return tree, nil
}

// loadVarsFile reads one YAML variable file into a flat map. Missing files
// yield an empty map; malformed files yield an empty map plus a warning.
func (l *Loader) loadVarsFile(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("failed to read vars file", "path", path, "err", err)
		}
		return nil
	}

	var vars map[string]any
	if err := yaml.Unmarshal(data, &vars); err != nil {
		l.logger.Warn("failed to parse vars file", "path", path, "err", err)
		return nil
	}
	return vars
}

// LoadHostVars merges host_vars/<host>/main.yaml (and main.yml) for a host.
func (l *Loader) LoadHostVars(envsDir, envName, hostname string) map[string]any {
	hostDir := filepath.Join(hostVarsDir(envsDir, envName), hostname)
	return l.loadMainVars(hostDir)
}

// LoadGroupVars merges group_vars/<group>/main.yaml (and main.yml) for a group.
func (l *Loader) LoadGroupVars(envsDir, envName, groupName string) map[string]any {
	groupDir := filepath.Join(groupVarsDir(envsDir, envName), groupName)
	return l.loadMainVars(groupDir)
}

func (l *Loader) loadMainVars(dir string) map[string]any {
	vars := make(map[string]any)
	for _, name := range []string{"main.yaml", "main.yml"} {
		for k, v := range l.loadVarsFile(filepath.Join(dir, name)) {
			vars[k] = v
		}
	}
	return vars
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
