// Package command holds ttelctl's mitchellh/cli subcommands.
package command

import (
	"os"

	"github.com/mitchellh/cli"
)

// Version is stamped at build time in a release; it is a plain constant
// here since this module has no release pipeline of its own.
const Version = "0.1.0-dev"

// Commands is the subcommand table cli.CLI dispatches against.
var Commands map[string]cli.CommandFactory

func init() {
	ui := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	}

	Commands = map[string]cli.CommandFactory{
		"record": func() (cli.Command, error) {
			return &RecordCommand{UI: ui}, nil
		},
		"replay": func() (cli.Command, error) {
			return &ReplayCommand{UI: ui}, nil
		},
		"inspect": func() (cli.Command, error) {
			return &InspectCommand{UI: ui}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{UI: ui, Version: Version}, nil
		},
	}
}
