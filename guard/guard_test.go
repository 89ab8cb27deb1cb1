package guard

import (
	"errors"
	"testing"

	"github.com/scriptlab/ttel/event"
)

type fakeRecorder struct {
	ends      []endCall
	immediate bool
}

type endCall struct {
	begin                     int64
	depth                     int
	scriptExc, terminatingExc bool
	ret                       event.Value
}

func (f *fakeRecorder) RecordExternalCallEnd(beginTime int64, depth int, scriptExc, terminatingExc bool, ret event.Value) {
	f.ends = append(f.ends, endCall{beginTime, depth, scriptExc, terminatingExc, ret})
}
func (f *fakeRecorder) HasImmediateExceptionFrame() bool { return f.immediate }

func doNormalWork(log Recorder) (err error) {
	g := Begin(log, 3, 1)
	defer g.Close()
	g.NormalReturn(false, event.Value{Kind: event.ValueString, Str: "x"})
	return nil
}

func doFailingWork(log Recorder) (err error) {
	g := Begin(log, 3, 1)
	defer g.Close()
	return errors.New("boom")
}

func TestNormalReturnRecordsEnd(t *testing.T) {
	log := &fakeRecorder{immediate: true}
	doNormalWork(log)
	if len(log.ends) != 1 {
		t.Fatalf("got %d end calls, want 1", len(log.ends))
	}
	if log.ends[0].scriptExc || log.ends[0].terminatingExc {
		t.Fatalf("unexpected exception flags on normal return: %+v", log.ends[0])
	}
}

func TestCloseOnExceptionRecordsTerminalEnd(t *testing.T) {
	log := &fakeRecorder{immediate: true}
	_ = doFailingWork(log)
	if len(log.ends) != 1 {
		t.Fatalf("got %d end calls, want 1", len(log.ends))
	}
	if !log.ends[0].scriptExc || !log.ends[0].terminatingExc {
		t.Fatalf("expected script+terminating exception flags set: %+v", log.ends[0])
	}
}

func TestCloseAfterNormalReturnIsNoOp(t *testing.T) {
	log := &fakeRecorder{}
	g := Begin(log, 1, 0)
	g.NormalReturn(false, event.Value{})
	g.Close()
	if len(log.ends) != 1 {
		t.Fatalf("got %d end calls, want exactly 1", len(log.ends))
	}
}
