// Package snapshot implements placement policy, nearest-prior-snapshot
// selection, and the extract/serialize/inflate protocol: a coordinator
// owning a directory, an on-demand blob reload, and a policy for when to
// persist, here holding an engine snapshot blob and its tag counters
// rather than a node list and clock checkpoint.
package snapshot

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/armon/go-metrics"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/eventlist"
)

// Hooks lets Coordinator call back into the owning ttel.Log for the
// pieces of inflation that belong to the Log rather than the
// coordinator: tag-counter resets, event-time repositioning, cursor
// seeking, and call-stack reset. Coordinator never reaches into those
// structures directly.
type Hooks struct {
	ResetTagCounters func(logTag, identityTag uint64)
	SetEventTime     func(int64)
	SeekCursor       func(target int64) bool
	ResetCallStack   func()
}

// Coordinator owns snapshot placement, persistence, and inflation.
type Coordinator struct {
	dir       string
	host      event.Host
	hooks     Hooks
	threshold time.Duration
	logger    *log.Logger

	lastSnapshotAt           time.Time
	lastInflatedEventTime    int64
	haveInflated             bool
	residentBlob             []byte
	residentRestoreEventTime int64
	count                    int
}

// New returns a Coordinator persisting blobs under dir.
func New(dir string, host event.Host, threshold time.Duration, hooks Hooks, logger *log.Logger) *Coordinator {
	return &Coordinator{dir: dir, host: host, threshold: threshold, hooks: hooks, logger: logger, lastInflatedEventTime: -1}
}

// ShouldTake reports whether the elapsed time since the last snapshot
// has crossed the policy threshold, the explicit placement trigger.
// ttel.Log consults it only while recording a root CallFunctionBegin;
// no snapshot is placed lazily during replay.
func (c *Coordinator) ShouldTake(now time.Time) bool {
	if c.threshold <= 0 {
		return false
	}
	return c.lastSnapshotAt.IsZero() || now.Sub(c.lastSnapshotAt) >= c.threshold
}

// Take extracts engine state via the host, persists it to disk, and
// returns the Snapshot record to append to the event list. The caller
// is responsible for wrapping this call with excluded execution; the
// extractor is invoked with roots only; no set of script contexts is
// passed.
func (c *Coordinator) Take(ctx context.Context, roots []event.Value, restoreEventTime int64) (*event.Record, error) {
	defer metrics.MeasureSince([]string{"ttel", "snapshot", "take"}, time.Now())

	blob, logTag, identityTag, err := c.host.Extract(ctx, roots)
	if err != nil {
		return nil, fmt.Errorf("snapshot: extract failed: %w", err)
	}
	if err := c.persist(restoreEventTime, blob); err != nil {
		return nil, err
	}
	c.lastSnapshotAt = time.Now()
	c.count++
	metrics.IncrCounter([]string{"ttel", "snapshot", "count"}, 1)
	return &event.Record{
		EventTime: restoreEventTime,
		Payload: event.SnapshotPayload{
			RestoreEventTime: restoreEventTime,
			Blob:             blob,
			LogTag:           logTag,
			IdentityTag:      identityTag,
		},
	}, nil
}

func (c *Coordinator) persist(restoreEventTime int64, blob []byte) error {
	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir %s: %w", c.dir, err)
	}
	path := c.blobPath(restoreEventTime)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}

func (c *Coordinator) blobPath(restoreEventTime int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("snapshot-%d.bin", restoreEventTime))
}

// Load reads a previously persisted blob back from disk, used when a
// restore point's record carries no blob in memory.
func (c *Coordinator) Load(restoreEventTime int64) ([]byte, error) {
	return os.ReadFile(c.blobPath(restoreEventTime))
}

// FindRestorePoint walks list backwards from the tail looking for the
// first Snapshot or root-CallFunctionBegin-with-inline-snapshot record
// with EventTime <= target. decode resolves the list's arena handles
// into Records.
func FindRestorePoint(list *eventlist.List, decode func(h arena.Handle) *event.Record, target int64) (*event.Record, bool) {
	it := list.Back()
	for it.Prev() {
		rec := decode(it.Handle())
		if rec.EventTime > target {
			continue
		}
		switch p := rec.Payload.(type) {
		case event.SnapshotPayload:
			return rec, true
		case event.CallFunctionBeginPayload:
			if p.IsRootCall && p.InlineSnapshot != nil {
				return rec, true
			}
		}
	}
	return nil, false
}

// NeedsNewContext reports whether inflating rec requires a fresh
// script context: true iff the last inflated snapshot's event time
// differs from rec's, or nothing has been inflated yet.
func (c *Coordinator) NeedsNewContext(rec *event.Record) bool {
	restoreAt, ok := restoreEventTimeOf(rec)
	if !ok {
		return true
	}
	return !c.haveInflated || c.lastInflatedEventTime != restoreAt
}

func restoreEventTimeOf(rec *event.Record) (int64, bool) {
	switch p := rec.Payload.(type) {
	case event.SnapshotPayload:
		return p.RestoreEventTime, true
	case event.CallFunctionBeginPayload:
		if p.InlineSnapshot != nil {
			return p.InlineSnapshot.RestoreEventTime, true
		}
	}
	return 0, false
}

// Inflate implements the seven-step restore protocol: GC, locate,
// inflate, reset tags, reset event time, seek cursor, reset call stack.
func (c *Coordinator) Inflate(ctx context.Context, rec *event.Record) error {
	defer metrics.MeasureSince([]string{"ttel", "snapshot", "inflate"}, time.Now())

	restoreAt, ok := restoreEventTimeOf(rec)
	if !ok {
		return fmt.Errorf("snapshot: record at event time %d carries no snapshot payload", rec.EventTime)
	}
	reuse := !c.NeedsNewContext(rec)

	// Step 1: force a full GC of the host. The Go runtime's own
	// collector stands in for the engine's heap GC here; there is no
	// third-party analog for "collect this process's garbage".
	runtime.GC()

	// Step 2: locate the chosen snapshot, deserializing it if its
	// payload was eagerly unloaded to disk.
	blob, logTag, identityTag, err := c.resolveBlob(rec, restoreAt)
	if err != nil {
		return err
	}

	// Step 3: reuse or rebuild the InflateMap. Only this blob is kept
	// as the resident one; payloads of other snapshot records held in
	// the event list are not unloaded.
	if err := c.host.Inflate(ctx, blob, reuse); err != nil {
		return fmt.Errorf("snapshot: inflate failed: %w", err)
	}
	c.residentBlob = blob
	c.residentRestoreEventTime = restoreAt
	c.haveInflated = true
	c.lastInflatedEventTime = restoreAt

	// Step 4: reset tag counters and event_time.
	if c.hooks.ResetTagCounters != nil {
		c.hooks.ResetTagCounters(logTag, identityTag)
	}
	if c.hooks.SetEventTime != nil {
		c.hooks.SetEventTime(restoreAt)
	}

	// Step 6: position the cursor at restoreAt; if rec is itself the
	// snapshot event, the caller (ttel.Log) advances once more so
	// replay starts at the first post-snapshot event. Coordinator
	// only knows how to seek, not whether rec is a bare Snapshot vs an
	// inline-snapshot CallFunctionBegin, so that one extra Advance is
	// the caller's call.
	if c.hooks.SeekCursor != nil {
		c.hooks.SeekCursor(restoreAt)
	}

	// Step 7: reset call stack for a new top-level call.
	if c.hooks.ResetCallStack != nil {
		c.hooks.ResetCallStack()
	}

	metrics.IncrCounter([]string{"ttel", "snapshot", "inflate_count"}, 1)
	return nil
}

func (c *Coordinator) resolveBlob(rec *event.Record, restoreAt int64) (blob []byte, logTag, identityTag uint64, err error) {
	switch p := rec.Payload.(type) {
	case event.SnapshotPayload:
		blob, logTag, identityTag = p.Blob, p.LogTag, p.IdentityTag
	case event.CallFunctionBeginPayload:
		if p.InlineSnapshot != nil {
			blob, logTag, identityTag = p.InlineSnapshot.Blob, p.InlineSnapshot.LogTag, p.InlineSnapshot.IdentityTag
		}
	}
	if blob == nil {
		blob, err = c.Load(restoreAt)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("snapshot: blob for event time %d not resident and not on disk: %w", restoreAt, err)
		}
	}
	return blob, logTag, identityTag, nil
}

// Count returns the number of snapshots taken during this Coordinator's
// lifetime.
func (c *Coordinator) Count() int { return c.count }

// Close releases any resources the Coordinator holds. It never fails
// in the file-backed implementation but returns an error to keep the
// signature stable for alternative backends.
func (c *Coordinator) Close() error {
	c.residentBlob = nil
	return nil
}
