package stream

import (
	"bytes"
	"testing"

	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/property"
)

func TestEmitParseRoundTrip(t *testing.T) {
	events := []*event.Record{
		{EventTime: 0, Payload: event.DoublePayload{Value: 17.0}},
		{EventTime: 1, Payload: event.RandomSeedPayload{Value: 42}},
		{EventTime: 2, Payload: event.ExternalCallBeginPayload{RootNestingDepth: 1}},
	}
	props := []property.Entry{{ID: 1, Name: "length", Numeric: true}}

	var buf bytes.Buffer
	if err := (Writer{}).Write(&buf, "amd64", true, 1024, 4096, events, props); err != nil {
		t.Fatalf("Write: %v", err)
	}

	arch, diag, used, reserved, gotEvents, gotProps, err := (Reader{}).Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if arch != "amd64" || !diag || used != 1024 || reserved != 4096 {
		t.Fatalf("header mismatch: %s %v %d %d", arch, diag, used, reserved)
	}
	if len(gotEvents) != len(events) {
		t.Fatalf("got %d events, want %d", len(gotEvents), len(events))
	}
	for i, e := range events {
		if gotEvents[i].EventTime != e.EventTime || gotEvents[i].Kind() != e.Kind() {
			t.Fatalf("event %d mismatch: got %+v want %+v", i, gotEvents[i], e)
		}
	}
	if len(gotProps) != 1 || gotProps[0].Name != "length" {
		t.Fatalf("props mismatch: %+v", gotProps)
	}
}

func TestFileStreamRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := FileStream{}
	w, err := fs.OpenWrite(dir)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if err := (Writer{}).Write(w, "arm64", false, 0, 0, nil, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := fs.OpenRead(dir)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()
	arch, _, _, _, _, _, err := (Reader{}).Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if arch != "arm64" {
		t.Fatalf("arch = %q, want arm64", arch)
	}
}
