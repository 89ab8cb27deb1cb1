// Package telemetry wires up github.com/armon/go-metrics the same way
// command/agent/command.go configures Serf's agent metrics: an
// in-memory sink registered as the process-wide default, with a
// SIGUSR1 dump handler for ad-hoc inspection.
package telemetry

import (
	"time"

	"github.com/armon/go-metrics"
)

// Setup installs a ten-second-interval in-memory metrics sink as the
// global default and returns it so callers can also export a point-in-
// time summary.
func Setup(serviceName string) *metrics.InmemSink {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	cfg := metrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false
	metrics.NewGlobal(cfg, inm)
	return inm
}
