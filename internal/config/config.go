// SPDX-License-Identifier: MPL-2.0

// Package config loads labinv configuration from the platform config
// directory, the working directory, and LABINV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"labinv-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "labinv"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"

	// EnvironmentsDirName is the directory under the repository root that
	// holds per-environment inventory subtrees.
	EnvironmentsDirName = "environments"
)

// configFilePathOverride allows the --config flag to force a specific file.
var configFilePathOverride string

// SetConfigFilePathOverride forces config loading from a specific file path.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// ConfigDir returns the labinv configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads configuration from defaults, the config file (if any), and
// LABINV_* environment variables, in increasing precedence order.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("environment", defaults.Environment)
	v.SetDefault("sops.binary", defaults.Sops.Binary)
	v.SetDefault("sops.probe_timeout", defaults.Sops.ProbeTimeout)
	v.SetDefault("sops.decrypt_timeout", defaults.Sops.DecryptTimeout)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
		if err := v.ReadInConfig(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("read config file").
				WithResource(configFilePathOverride).
				WithSuggestion("Check the YAML syntax of the config file").
				WithSuggestion("Verify the --config path exists and is readable").
				Wrap(err).
				BuildError()
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		if cfgDir, err := ConfigDir(); err == nil {
			v.AddConfigPath(cfgDir)
		}
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			// Missing config files fall back to defaults; anything else
			// (unreadable, malformed) is surfaced to the caller.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, issue.NewErrorContext().
					WithOperation("read config").
					WithResource(v.ConfigFileUsed()).
					WithSuggestion("Check the YAML syntax of the config file").
					WithSuggestion("Remove the config file to use defaults").
					Wrap(err).
					BuildError()
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse config").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Check the config values against the documented keys").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// FindRepoRoot walks upward from start looking for a directory that contains
// either an environments/ directory or a .git directory. When neither is
// found the start directory itself is returned.
func FindRepoRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for {
		if dirExists(filepath.Join(dir, EnvironmentsDirName)) || dirExists(filepath.Join(dir, ".git")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	return abs
}

// EnvironmentsDir returns the environments directory under the given root.
func EnvironmentsDir(root string) string {
	return filepath.Join(root, EnvironmentsDirName)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
