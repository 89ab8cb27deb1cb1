package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/scriptlab/ttel"
	"github.com/scriptlab/ttel/internal/hostsim"
)

// ReplayCommand loads a previously recorded event log and drives it to
// completion against a fresh simulated host, reporting whether replay
// reached the end of the log cleanly.
type ReplayCommand struct {
	UI cli.Ui
}

func (c *ReplayCommand) Help() string {
	helpText := `
Usage: ttelctl replay [options]

  Loads an event log previously written by "ttelctl record" and replays
  it to completion against a fresh simulated host.

Options:

  -dir=ttel-data       Directory to read the event log from.
  -config=""           Optional JSON file overlaying ttel.Config fields.
`
	return strings.TrimSpace(helpText)
}

func (c *ReplayCommand) Synopsis() string {
	return "Replay a previously recorded event log"
}

func (c *ReplayCommand) Run(args []string) int {
	var dir, configPath string

	flags := flag.NewFlagSet("replay", flag.ContinueOnError)
	flags.Usage = func() { c.UI.Output(c.Help()) }
	flags.StringVar(&dir, "dir", "ttel-data", "event log directory")
	flags.StringVar(&configPath, "config", "", "JSON config overlay")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	cfg := ttel.DefaultConfig()
	cfg.Dir = dir
	if err := loadConfigOverlay(configPath, &cfg); err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	host := hostsim.New()
	log, err := ttel.New(cfg, host)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error creating log: %s", err))
		return 1
	}
	defer log.Close()

	if err := log.Load(); err != nil {
		c.UI.Error(fmt.Sprintf("Error loading log: %s", err))
		return 1
	}
	if err := log.BeginDebugging(); err != nil {
		c.UI.Error(fmt.Sprintf("Error entering debugging mode: %s", err))
		return 1
	}

	var abort *ttel.TTDebuggerAbort
	err = log.ReplayFullTrace(context.Background())
	switch {
	case err == nil:
		c.UI.Output(fmt.Sprintf("Replayed %d events cleanly. Final objects: %d", log.Len(), host.ObjectCount()))
		return 0
	case errors.As(err, &abort):
		c.UI.Info(fmt.Sprintf("Replay aborted: %s", abort))
		return 0
	default:
		c.UI.Error(fmt.Sprintf("Replay failed: %s", err))
		return 1
	}
}
