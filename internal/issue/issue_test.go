// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGetKnownIds(t *testing.T) {
	ids := []Id{
		RootNotFoundId,
		EnvironmentNotFoundId,
		InventoryParseErrorId,
		SopsUnavailableId,
		ValidationFailedId,
		ConfigLoadFailedId,
	}
	for _, id := range ids {
		iss := Get(id)
		if iss == nil {
			t.Errorf("Get(%d) = nil, want an issue", id)
			continue
		}
		if iss.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, iss.Id())
		}
		if iss.MarkdownMsg() == "" {
			t.Errorf("Get(%d) has an empty message", id)
		}
	}
}

func TestGetUnknownId(t *testing.T) {
	if got := Get(Id(9999)); got != nil {
		t.Errorf("Get(9999) = %v, want nil", got)
	}
}

func TestValuesCoversCatalog(t *testing.T) {
	values := Values()
	if len(values) != 6 {
		t.Errorf("Values() returned %d issues, want 6", len(values))
	}
	seen := map[Id]bool{}
	for _, iss := range values {
		if seen[iss.Id()] {
			t.Errorf("duplicate issue id %d", iss.Id())
		}
		seen[iss.Id()] = true
	}
}

func TestExtLinksCloned(t *testing.T) {
	iss := Get(SopsUnavailableId)
	links := iss.ExtLinks()
	if len(links) == 0 {
		t.Fatal("sops issue should carry an external link")
	}
	links[0] = "mutated"
	if iss.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() returned the internal slice, want a clone")
	}
}

func TestRenderIncludesLinks(t *testing.T) {
	origRender := render
	defer func() { render = origRender }()
	render = func(in string, _ string) (string, error) { return in, nil }

	out, err := Get(SopsUnavailableId).Render("auto")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also:") {
		t.Errorf("rendered output missing the links section:\n%s", out)
	}
	if !strings.Contains(out, "https://github.com/getsops/sops") {
		t.Errorf("rendered output missing the external link:\n%s", out)
	}
}

func TestRenderWithoutLinks(t *testing.T) {
	origRender := render
	defer func() { render = origRender }()
	render = func(in string, _ string) (string, error) { return in, nil }

	out, err := Get(RootNotFoundId).Render("auto")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out, "See also:") {
		t.Errorf("rendered output has a links section without links:\n%s", out)
	}
}
