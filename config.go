package ttel

import (
	"io"
	"os"
	"time"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/stream"
)

// Config controls how a Log allocates, persists, and reports itself.
// It is a flat struct of knobs: no builder, no options pattern, fields
// set directly or left at DefaultConfig's zero-cost defaults.
type Config struct {
	// Dir is where snapshot blobs and the persisted event stream live.
	Dir string

	// Arch is the architecture tag stamped into the persisted stream
	// header and checked against on load.
	Arch string

	// DiagEnabled mirrors the engine build's diagnostics flag; it
	// gates conditional copies (property names, verbose payload
	// fields) and is checked against a loaded stream's own flag.
	DiagEnabled bool

	// BlockSize sizes the backing arena.Slab's blocks.
	BlockSize int

	// SnapshotThreshold is the elapsed-time policy snapshot.Coordinator
	// uses to decide whether a root call should carry an inline
	// snapshot. Zero disables time-based placement.
	SnapshotThreshold time.Duration

	// Stream is the pluggable transport Flush/Load use to persist and
	// reload the event log.
	Stream stream.Stream

	// LogOutput is where level-filtered log lines are written.
	LogOutput io.Writer

	// LogLevel is one of "DEBUG", "INFO", "WARN", "ERROR", following
	// hashicorp/logutils's level-filter convention.
	LogLevel string

	// ServiceName labels the metrics this Log's telemetry emits.
	ServiceName string

	// RecentKindWindow sizes the ring buffer RecentKinds reports from.
	RecentKindWindow int64
}

// DefaultConfig returns the Config a standalone ttelctl invocation
// starts from.
func DefaultConfig() Config {
	return Config{
		Dir:               "ttel-data",
		Arch:              defaultArch(),
		DiagEnabled:       false,
		BlockSize:         arena.DefaultBlockSize,
		SnapshotThreshold: 30 * time.Second,
		Stream:            stream.FileStream{},
		LogOutput:         os.Stderr,
		LogLevel:          "INFO",
		ServiceName:       "ttel",
		RecentKindWindow:  64,
	}
}
