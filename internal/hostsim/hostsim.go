// Package hostsim is a minimal, deterministic fake of the event.Host
// contract, standing in for the real script engine, which is a
// separate concern from TTEL itself. It exists only so the facade's
// record/replay control flow and the CLI's demo subcommands have
// something real to drive.
package hostsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sean-/seed"

	"github.com/scriptlab/ttel/event"
)

// Host is a tiny in-memory object heap, just enough to give Execute
// something real to mutate.
type Host struct {
	clock    time.Time
	rng      *rand.Rand
	objects  map[uint64]map[uint32]event.Value
	nextRef  uint64
	excSet   bool
	excValue event.Value
}

// New returns a Host seeded from a secure, non-deterministic source at
// record start via github.com/sean-/seed's "seed once at boot" helper.
func New() *Host {
	if err := seed.Init(); err != nil {
		// seed.Init falls back to less-ideal entropy on failure rather
		// than erroring out the caller; a simulated host has no
		// security requirement riding on this, so it is logged by the
		// caller if it wants to and otherwise ignored.
		_ = err
	}
	return &Host{
		clock:   time.Unix(1_600_000_000, 0),
		rng:     rand.New(rand.NewSource(rand.Int63())),
		objects: make(map[uint64]map[uint32]event.Value),
	}
}

func (h *Host) Now() time.Time {
	h.clock = h.clock.Add(time.Millisecond)
	return h.clock
}

func (h *Host) RandomSeed() uint64 {
	return h.rng.Uint64()
}

type snapshotBlob struct {
	Objects map[uint64]map[uint32]event.Value
	NextRef uint64
	Clock   time.Time
}

func (h *Host) Extract(ctx context.Context, roots []event.Value) ([]byte, uint64, uint64, error) {
	blob, err := json.Marshal(snapshotBlob{Objects: h.objects, NextRef: h.nextRef, Clock: h.clock})
	if err != nil {
		return nil, 0, 0, err
	}
	return blob, uint64(len(h.objects)), h.nextRef, nil
}

func (h *Host) Inflate(ctx context.Context, blob []byte, reuse bool) error {
	var sb snapshotBlob
	if err := json.Unmarshal(blob, &sb); err != nil {
		return err
	}
	h.objects = sb.Objects
	if h.objects == nil {
		h.objects = make(map[uint64]map[uint32]event.Value)
	}
	h.nextRef = sb.NextRef
	h.clock = sb.Clock
	return nil
}

var errUnknownObject = errors.New("hostsim: unknown object reference")

// Execute re-applies a single HostAction record against the in-memory
// heap, giving the record/replay round trip a real, observable effect
// to compare before and after replay.
func (h *Host) Execute(rec *event.Record) error {
	switch p := rec.Payload.(type) {
	case event.AllocObjectPayload:
		h.nextRef++
		h.objects[h.nextRef] = make(map[uint32]event.Value)
		return nil
	case event.SetPropertyPayload:
		obj, ok := h.objects[p.ObjectRef]
		if !ok {
			return fmt.Errorf("%w: %d", errUnknownObject, p.ObjectRef)
		}
		obj[p.PropertyID] = p.Value
		return nil
	case event.GetPropertyPayload:
		if _, ok := h.objects[p.ObjectRef]; !ok {
			return fmt.Errorf("%w: %d", errUnknownObject, p.ObjectRef)
		}
		return nil
	case event.DeletePropertyPayload:
		obj, ok := h.objects[p.ObjectRef]
		if !ok {
			return fmt.Errorf("%w: %d", errUnknownObject, p.ObjectRef)
		}
		delete(obj, p.PropertyID)
		return nil
	default:
		// Every other HostAction kind is a no-op for the purposes of
		// this simulator: it has no observable state to mutate, but
		// still must round-trip through record/replay cleanly.
		return nil
	}
}

func (h *Host) HasImmediateExceptionFrame() bool {
	return h.excSet
}

// RaiseException marks an exception as pending, for tests exercising
// the ScopeGuard exception path.
func (h *Host) RaiseException(v event.Value) {
	h.excSet = true
	h.excValue = v
}

// ClearException clears a pending exception.
func (h *Host) ClearException() {
	h.excSet = false
	h.excValue = event.Value{}
}

// PropertyOf returns the value stored at (objRef, propID), for test
// assertions comparing pre-record and post-replay state.
func (h *Host) PropertyOf(objRef uint64, propID uint32) (event.Value, bool) {
	obj, ok := h.objects[objRef]
	if !ok {
		return event.Value{}, false
	}
	v, ok := obj[propID]
	return v, ok
}

// ObjectCount returns the number of live objects, for snapshot
// round-trip assertions.
func (h *Host) ObjectCount() int { return len(h.objects) }
