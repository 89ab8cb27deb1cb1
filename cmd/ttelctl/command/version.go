package command

import "github.com/mitchellh/cli"

// VersionCommand prints ttelctl's version.
type VersionCommand struct {
	Version string
	UI      cli.Ui
}

func (c *VersionCommand) Help() string { return "" }

func (c *VersionCommand) Run(_ []string) int {
	c.UI.Output("ttelctl " + c.Version)
	return 0
}

func (c *VersionCommand) Synopsis() string {
	return "Prints the ttelctl version"
}
