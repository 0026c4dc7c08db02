// SPDX-License-Identifier: MPL-2.0

// Package secrets resolves SOPS-encrypted files into plaintext variable maps
// by invoking the external sops binary. The resolver is an injected
// capability so callers (and tests) can swap in alternative implementations
// without spawning real processes.
package secrets

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	// structuralMarker is the SOPS metadata key present in every file the
	// tool has encrypted, regardless of the file's own format.
	structuralMarker = "sops:"
	// encryptionMarker is the per-value ciphertext prefix marker.
	encryptionMarker = "enc:"

	// DefaultProbeTimeout bounds the availability probe.
	DefaultProbeTimeout = 10 * time.Second
	// DefaultDecryptTimeout bounds a single decryption invocation.
	DefaultDecryptTimeout = 30 * time.Second
)

type (
	// Resolver decrypts an encrypted file into a flat variable map.
	// Decrypt returns nil (with no error) when the resolver is unavailable
	// or decryption fails; failures are reported through the logger so the
	// caller can continue with partial data.
	Resolver interface {
		// Available reports whether the decryption capability is usable.
		Available() bool
		// Decrypt decrypts the file at path and returns its plaintext
		// key-value content, or nil on any failure.
		Decrypt(ctx context.Context, path string) map[string]any
	}

	// SopsResolver invokes the sops binary as an external process.
	SopsResolver struct {
		binary         string
		decryptTimeout time.Duration
		available      bool
		logger         *log.Logger
	}

	// Options configures a SopsResolver.
	Options struct {
		// Binary is the sops executable name or path (default "sops").
		Binary string
		// ProbeTimeout bounds the `sops --version` availability probe.
		ProbeTimeout time.Duration
		// DecryptTimeout bounds each `sops --decrypt` invocation.
		DecryptTimeout time.Duration
	}
)

// IsEncrypted reports whether content looks like a SOPS-encrypted document.
// This is a purely textual heuristic (both the metadata marker and the
// per-value ciphertext marker must be present), not a cryptographic check.
func IsEncrypted(content []byte) bool {
	return bytes.Contains(content, []byte(structuralMarker)) &&
		bytes.Contains(content, []byte(encryptionMarker))
}

// NewSopsResolver probes for the sops binary once and returns a resolver.
// An unavailable binary degrades to Available() == false rather than failing
// construction; every later Decrypt call then returns nil with a warning.
func NewSopsResolver(ctx context.Context, opts Options, logger *log.Logger) *SopsResolver {
	if opts.Binary == "" {
		opts.Binary = "sops"
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.DecryptTimeout <= 0 {
		opts.DecryptTimeout = DefaultDecryptTimeout
	}

	r := &SopsResolver{
		binary:         opts.Binary,
		decryptTimeout: opts.DecryptTimeout,
		logger:         logger,
	}
	r.available = r.probe(ctx, opts.ProbeTimeout)
	if !r.available {
		logger.Debug("sops binary not available", "binary", opts.Binary)
	}
	return r
}

// Available reports whether the sops binary answered the version probe.
func (r *SopsResolver) Available() bool {
	return r.available
}

// Decrypt runs `sops --decrypt <path>` with a bounded timeout and parses the
// plaintext output as YAML. Non-zero exit, timeout, and malformed output all
// map to nil plus a logged error; no failure escapes to the caller.
func (r *SopsResolver) Decrypt(ctx context.Context, path string) map[string]any {
	if !r.available {
		r.logger.Warn("sops not available, cannot decrypt", "path", path)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.decryptTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "--decrypt", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			r.logger.Error("sops decryption timeout", "path", path)
			return nil
		}
		r.logger.Error("sops decryption failed",
			"path", path, "err", err, "stderr", stderr.String())
		return nil
	}

	var data map[string]any
	if err := yaml.Unmarshal(stdout.Bytes(), &data); err != nil {
		r.logger.Error("failed to parse decrypted sops output", "path", path, "err", err)
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}

	r.logger.Debug("decrypted sops file", "path", path)
	return data
}

// probe runs `sops --version` with a short timeout.
func (r *SopsResolver) probe(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, "--version")
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}

// String describes the resolver for diagnostics.
func (r *SopsResolver) String() string {
	return fmt.Sprintf("sops(binary=%s, available=%v)", r.binary, r.available)
}
