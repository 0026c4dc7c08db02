// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RootNotFoundId Id = iota + 1
	EnvironmentNotFoundId
	InventoryParseErrorId
	SopsUnavailableId
	ValidationFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.extLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# No repository root found!

We walked up from the working directory looking for an ` + "`environments/`" + `
directory (or a ` + "`.git`" + ` marker) but found neither.

## Things you can try:
- Run labinv from inside the infrastructure repository
- Point at the repository explicitly:
~~~
$ labinv --root /path/to/repo --list
~~~

- Or set the root in your config file (~/.config/labinv/config.yaml):
~~~yaml
root: /path/to/repo
~~~`,
	}

	environmentNotFoundIssue = &Issue{
		id: EnvironmentNotFoundId,
		mdMsg: `
# Environment not found!

The requested environment does not exist under environments/.

## Things you can try:
- List the environments that were discovered:
~~~
$ labinv envs
~~~

- Check for typos in the --env flag or ANSIBLE_INVENTORY_ENV variable
- Verify the environment directory contains an inventory file:
~~~
environments/<env>/ansible/inventory/hosts.yaml
environments/<env>/ansible/inventory/hosts.toml
~~~`,
	}

	inventoryParseErrorIssue = &Issue{
		id: InventoryParseErrorId,
		mdMsg: `
# Failed to parse an inventory file!

One of the environment inventory files contains syntax errors. The merge
continued without it, so the output may be missing that environment's
hosts and groups.

## Things you can try:
- Run the validator to see per-environment findings:
~~~
$ labinv validate
~~~

- Check the YAML syntax of hosts.yaml files
- For flat hosts.toml files, every non-comment line must be either a
  [group] header or a bare host name`,
	}

	sopsUnavailableIssue = &Issue{
		id: SopsUnavailableId,
		mdMsg: `
# sops is not available!

Encrypted secret files were found but the sops binary did not answer the
version probe, so secret bundles were skipped.

## Things you can try:
- Install sops:
  - Linux: ` + "`sudo apt install sops`" + ` or download from the releases page
  - macOS: ` + "`brew install sops`" + `
- Point at a specific binary in your config file:
~~~yaml
sops:
  binary: /usr/local/bin/sops
~~~
- Make sure your age key is configured (see .sops.yaml in the repository)`,
		extLinks: []HttpLink{"https://github.com/getsops/sops"},
	}

	validationFailedIssue = &Issue{
		id: ValidationFailedId,
		mdMsg: `
# Inventory validation failed!

At least one environment has an empty or unparseable inventory file.

## Things you can try:
- Read the per-environment errors in the validation report
- Confirm the inventory file is non-empty and well-formed
- Host warnings (missing ansible_host, environment, or cluster_role) do
  not fail validation but are worth fixing`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the labinv configuration file.

## Configuration file locations:
- Linux: ~/.config/labinv/config.yaml
- macOS: ~/Library/Application Support/labinv/config.yaml
- Windows: %APPDATA%\labinv\config.yaml

## Things you can try:
- Check the YAML syntax of the config file
- Remove the config file to use defaults
- Use --config to point at a known-good file`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.Id():        rootNotFoundIssue,
		environmentNotFoundIssue.Id(): environmentNotFoundIssue,
		inventoryParseErrorIssue.Id(): inventoryParseErrorIssue,
		sopsUnavailableIssue.Id():     sopsUnavailableIssue,
		validationFailedIssue.Id():    validationFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
