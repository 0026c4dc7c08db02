// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for labinv.
//
// The root command implements the Ansible dynamic inventory protocol
// (--list / --host) so the binary can be pointed at directly from
// ansible.cfg; subcommands cover the human-facing operations (envs,
// validate, vars, tf-output, config).
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"labinv-cli/internal/config"
	"labinv-cli/internal/inventory"
	"labinv-cli/internal/issue"
	"labinv-cli/internal/secrets"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// rootDir overrides the repository root discovery
	rootDir string
	// envFilter restricts queries to a single environment
	envFilter string

	// Ansible dynamic inventory protocol flags
	listFlag bool
	hostFlag string

	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "labinv",
		Short: "Dynamic inventory for homelab infrastructure",
		Long: TitleStyle.Render("labinv") + SubtitleStyle.Render(" - Dynamic inventory for homelab infrastructure") + `

labinv discovers per-environment inventory files under environments/,
decrypts SOPS secrets through the external sops binary, and merges
everything into a single Ansible-shaped inventory document.

` + SubtitleStyle.Render("Ansible protocol:") + `
  labinv --list                 List all hosts and groups
  labinv --host pve02           Get host-specific variables
  labinv --list --env dev       List only the dev environment

` + SubtitleStyle.Render("Other operations:") + `
  labinv envs                   List available environments
  labinv validate               Validate all inventory files
  labinv vars pve02             Export Terraform variables for a host`,
		RunE: runRoot,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/labinv/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "repository root (default is discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&envFilter, "env", "", "filter by specific environment (or set ANSIBLE_INVENTORY_ENV)")

	rootCmd.Flags().BoolVar(&listFlag, "list", false, "list all hosts and groups")
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "get host-specific variables")

	rootCmd.AddCommand(envsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(tfOutputCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		renderIssue(os.Stderr, issue.ConfigLoadFailedId)
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// runRoot handles the Ansible dynamic inventory protocol. Without --list or
// --host the help text is shown and the process exits non-zero, matching
// what Ansible expects from a misconfigured inventory source.
func runRoot(cmd *cobra.Command, _ []string) error {
	if !listFlag && hostFlag == "" {
		_ = cmd.Help()
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	svc, _, logger := newService(cmd)

	if hostFlag != "" {
		hostVars, err := svc.GetHostVars(cmd.Context(), hostFlag)
		if err != nil {
			logger.Error("host variable lookup failed", "host", hostFlag, "err", err)
			return exitWithDocument(cmd, hostVars, 1)
		}
		return writeDocument(cmd, hostVars)
	}

	merged, err := svc.GetInventory(cmd.Context(), effectiveEnv())
	if err != nil {
		if errors.Is(err, inventory.ErrUnknownEnvironment) {
			renderIssue(cmd.ErrOrStderr(), issue.EnvironmentNotFoundId)
			// Emit the explicit empty shape so downstream consumers never
			// see a partial or corrupt tree.
			return exitWithDocument(cmd, merged, 1)
		}
		return err
	}
	if merged.ParseFailures > 0 {
		renderIssue(cmd.ErrOrStderr(), issue.InventoryParseErrorId)
	}
	if merged.SecretFailures > 0 && !svc.SecretsAvailable() {
		renderIssue(cmd.ErrOrStderr(), issue.SopsUnavailableId)
	}
	return writeDocument(cmd, merged)
}

// newService builds the query facade from the effective configuration:
// resolved repo root, sops resolver, injected logger.
func newService(cmd *cobra.Command) (*inventory.Service, string, *log.Logger) {
	logger := newLogger()

	root := effectiveRoot()
	logger.Debug("resolved repository root", "root", root)

	resolver := secrets.NewSopsResolver(cmd.Context(), secrets.Options{
		Binary:         cfg.Sops.Binary,
		ProbeTimeout:   cfg.Sops.ProbeTimeout,
		DecryptTimeout: cfg.Sops.DecryptTimeout,
	}, logger)

	envsDir := config.EnvironmentsDir(root)
	if info, err := os.Stat(envsDir); err != nil || !info.IsDir() {
		renderIssue(cmd.ErrOrStderr(), issue.RootNotFoundId)
	}

	svc := inventory.NewService(envsDir, resolver, logger)
	return svc, root, logger
}

// newLogger builds the stderr logger shared by all components.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// effectiveRoot resolves the repository root: flag, then config, then
// upward discovery from the working directory.
func effectiveRoot() string {
	if rootDir != "" {
		return rootDir
	}
	if cfg.Root != "" {
		return cfg.Root
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return config.FindRepoRoot(cwd)
}

// effectiveEnv resolves the environment filter: flag, then the
// ANSIBLE_INVENTORY_ENV variable, then config.
func effectiveEnv() string {
	if envFilter != "" {
		return envFilter
	}
	if env := os.Getenv("ANSIBLE_INVENTORY_ENV"); env != "" {
		return env
	}
	return cfg.Environment
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue writes an issue-catalog entry to w. Rendering failures fall
// back to the raw markdown.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	out, err := entry.Render("auto")
	if err != nil {
		out = string(entry.MarkdownMsg())
	}
	fmt.Fprintln(w, out)
}
