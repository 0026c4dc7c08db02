// SPDX-License-Identifier: MPL-2.0

package config

import "time"

type (
	// Config holds the labinv configuration loaded from the config file,
	// environment variables, and defaults.
	Config struct {
		// Root is the repository root containing the environments/ directory.
		// Empty means "discover by walking up from the working directory".
		Root string `mapstructure:"root"`

		// Environment is a default environment filter applied when no
		// --env flag is given (the ANSIBLE_INVENTORY_ENV variable still
		// takes precedence over this value).
		Environment string `mapstructure:"environment"`

		// Sops configures the external secret decryption tool.
		Sops SopsConfig `mapstructure:"sops"`

		// UI contains user interface settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// SopsConfig configures how the sops binary is located and invoked.
	SopsConfig struct {
		// Binary is the sops executable name or absolute path.
		Binary string `mapstructure:"binary"`
		// ProbeTimeout bounds the availability probe (`sops --version`).
		ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
		// DecryptTimeout bounds a single decryption invocation.
		DecryptTimeout time.Duration `mapstructure:"decrypt_timeout"`
	}

	// UIConfig contains user interface settings.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Sops: SopsConfig{
			Binary:         "sops",
			ProbeTimeout:   10 * time.Second,
			DecryptTimeout: 30 * time.Second,
		},
	}
}
