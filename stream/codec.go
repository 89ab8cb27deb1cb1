package stream

import (
	"io"

	"github.com/ugorji/go/codec"

	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/property"
)

var msgpackHandle = &codec.MsgpackHandle{}

// wireLog is the on-the-wire projection of the structured log record.
// Event nesting (Begin increases indent, matching End decreases) is
// cosmetic only and is not represented here.
type wireLog struct {
	Arch           string
	DiagEnabled    bool
	UsedMemory     int64
	ReservedMemory int64
	Events         []event.Wire
	Props          []property.Entry
}

// Writer emits the structured log record.
type Writer struct{}

// Write encodes the full record to w in one shot. The underlying
// writer is responsible for flush/close semantics (FileStream's
// os.File or any other Stream implementation).
func (Writer) Write(w io.Writer, arch string, diagEnabled bool, used, reserved int64, events []*event.Record, props []property.Entry) error {
	wl := wireLog{
		Arch:           arch,
		DiagEnabled:    diagEnabled,
		UsedMemory:     used,
		ReservedMemory: reserved,
		Props:          props,
	}
	wl.Events = make([]event.Wire, len(events))
	for i, rec := range events {
		wl.Events[i] = event.ToWire(rec)
	}
	enc := codec.NewEncoder(w, msgpackHandle)
	return enc.Encode(&wl)
}

// Reader parses a structured log record written by Writer.
type Reader struct{}

// Parse decodes the full record from r.
func (Reader) Parse(r io.Reader) (arch string, diagEnabled bool, used, reserved int64, events []*event.Record, props []property.Entry, err error) {
	var wl wireLog
	dec := codec.NewDecoder(r, msgpackHandle)
	if err = dec.Decode(&wl); err != nil {
		return "", false, 0, 0, nil, nil, err
	}
	events = make([]*event.Record, len(wl.Events))
	for i, w := range wl.Events {
		events[i] = event.FromWire(w)
	}
	return wl.Arch, wl.DiagEnabled, wl.UsedMemory, wl.ReservedMemory, events, wl.Props, nil
}
