// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"

	"labinv-cli/internal/secrets"

	"github.com/charmbracelet/log"
)

// Service is the read-only query surface over the merge engine, consumed by
// the CLI and by the Terraform data source adapter. Every operation is a
// pure function of on-disk state at call time: no caching, no memoization
// across calls.
type Service struct {
	engine *Engine
}

// NewService creates a Service over the environments directory under root.
func NewService(envsDir string, resolver secrets.Resolver, logger *log.Logger) *Service {
	return &Service{engine: NewEngine(envsDir, resolver, logger)}
}

// GetInventory returns the merged inventory, optionally filtered to a
// single environment. An unknown environment yields the explicit empty
// inventory together with ErrUnknownEnvironment.
func (s *Service) GetInventory(ctx context.Context, environment string) (*Merged, error) {
	return s.engine.Merge(ctx, environment)
}

// GetHostVars returns one host's merged variable map, or an empty map when
// the host is not present in any environment.
func (s *Service) GetHostVars(ctx context.Context, hostname string) (map[string]any, error) {
	merged, err := s.engine.Merge(ctx, "")
	if err != nil {
		return map[string]any{}, err
	}
	return merged.HostVars(hostname), nil
}

// ListEnvironments returns the discovered environment names, sorted.
func (s *Service) ListEnvironments() []string {
	return s.engine.Environments()
}

// SecretsAvailable reports whether the secret resolver answered its
// availability probe.
func (s *Service) SecretsAvailable() bool {
	return s.engine.resolver.Available()
}

// Validate runs the validator over every discovered environment.
func (s *Service) Validate(ctx context.Context) *Report {
	return NewValidator(s.engine.envsDir, s.engine.Loader(), s.engine.logger).Validate(ctx)
}
