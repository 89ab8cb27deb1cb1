package command

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/ryanuber/columnize"

	"github.com/scriptlab/ttel"
	"github.com/scriptlab/ttel/internal/hostsim"
	"github.com/scriptlab/ttel/property"
)

// InspectCommand loads an event log without replaying it and prints a
// tabular summary of its properties and memory counters, the same
// role "serf members" plays for cluster state.
type InspectCommand struct {
	UI cli.Ui
}

func (c *InspectCommand) Help() string {
	helpText := `
Usage: ttelctl inspect [options]

  Loads an event log and prints its property pin set and memory
  counters without replaying it.

Options:

  -dir=ttel-data       Directory to read the event log from.
  -props=""            Only show pinned properties whose name has this prefix.
`
	return strings.TrimSpace(helpText)
}

func (c *InspectCommand) Synopsis() string {
	return "Inspect a recorded event log"
}

func (c *InspectCommand) Run(args []string) int {
	var dir, prefix string

	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags.Usage = func() { c.UI.Output(c.Help()) }
	flags.StringVar(&dir, "dir", "ttel-data", "event log directory")
	flags.StringVar(&prefix, "props", "", "property name prefix filter")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	cfg := ttel.DefaultConfig()
	cfg.Dir = dir

	log, err := ttel.New(cfg, hostsim.New())
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error creating log: %s", err))
		return 1
	}
	defer log.Close()

	if err := log.Load(); err != nil {
		c.UI.Error(fmt.Sprintf("Error loading log: %s", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Events: %d   Used: %d bytes   Reserved: %d bytes   Snapshots: %d",
		log.Len(), log.UsedMemory(), log.ReservedMemory(), log.SnapshotCount()))
	c.UI.Output("")

	lines := []string{"ID | Name | Numeric | Bound | Symbol"}
	props := log.Properties()
	if prefix != "" {
		props = filterByPrefix(props, prefix)
	}
	for _, p := range props {
		lines = append(lines, fmt.Sprintf("%d | %s | %v | %v | %v", p.ID, p.Name, p.Numeric, p.Bound, p.Symbol))
	}
	out, _ := columnize.SimpleFormat(lines)
	c.UI.Output(out)
	return 0
}

func filterByPrefix(props []property.Entry, prefix string) []property.Entry {
	var out []property.Entry
	for _, p := range props {
		if strings.HasPrefix(p.Name, prefix) {
			out = append(out, p)
		}
	}
	return out
}
