package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mitchellh/cli"

	"github.com/scriptlab/ttel/cmd/ttelctl/command"
)

func main() {
	log.SetOutput(io.Discard)

	c := cli.NewCLI("ttelctl", command.Version)
	c.Args = os.Args[1:]
	c.Commands = command.Commands
	c.HelpFunc = cli.BasicHelpFunc("ttelctl")

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
