// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "load inventory"},
			want: "failed to load inventory",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "load inventory", Resource: "hosts.yaml"},
			want: "failed to load inventory: hosts.yaml",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "decrypt secrets",
				Resource:  "secrets.sops.yaml",
				Cause:     errors.New("exit status 1"),
			},
			want: "failed to decrypt secrets: secrets.sops.yaml: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	sentinel := errors.New("root cause")
	wrapped := fmt.Errorf("middle: %w", sentinel)
	err := NewErrorContext().
		WithOperation("merge environments").
		Wrap(wrapped).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() lost the wrapped cause")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	err := NewErrorContext().
		WithOperation("load inventory").
		WithResource("hosts.yaml").
		WithSuggestion("Check the YAML syntax").
		WithSuggestion("Run labinv validate").
		Wrap(fmt.Errorf("outer: %w", errors.New("inner"))).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check the YAML syntax") {
		t.Errorf("Format(false) missing suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) leaked the error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing the error chain:\n%s", verbose)
	}
	if !strings.Contains(verbose, "2. inner") {
		t.Errorf("Format(true) missing the unwrapped cause:\n%s", verbose)
	}
}

func TestErrorContextRequiresOperation(t *testing.T) {
	if got := NewErrorContext().WithResource("hosts.yaml").Build(); got != nil {
		t.Errorf("Build() = %v, want nil without an operation", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() = %v, want nil without an operation", got)
	}
}

func TestWrapWithOperation(t *testing.T) {
	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	err := WrapWithOperation(cause, "probe sops")
	if err == nil {
		t.Fatal("WrapWithOperation() = nil")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if got, want := err.Error(), "failed to probe sops: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
