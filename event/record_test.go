package event

import (
	"context"
	"testing"
	"time"
)

type fakeHost struct {
	executed []Kind
}

func (f *fakeHost) Now() time.Time      { return time.Unix(0, 0) }
func (f *fakeHost) RandomSeed() uint64  { return 42 }
func (f *fakeHost) Extract(ctx context.Context, roots []Value) ([]byte, uint64, uint64, error) {
	return nil, 0, 0, nil
}
func (f *fakeHost) Inflate(ctx context.Context, blob []byte, reuse bool) error { return nil }
func (f *fakeHost) Execute(rec *Record) error {
	f.executed = append(f.executed, rec.Kind())
	return nil
}
func (f *fakeHost) HasImmediateExceptionFrame() bool { return false }

func TestExecuteDispatchesHostActionsOnly(t *testing.T) {
	h := &fakeHost{}
	r := &Record{EventTime: 1, Payload: AllocNumberPayload{Value: 3.14}}
	if err := r.Execute(h); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(h.executed) != 1 || h.executed[0] != KindAllocNumber {
		t.Fatalf("executed = %v", h.executed)
	}

	nonAction := &Record{EventTime: 2, Payload: DoublePayload{Value: 1.0}}
	if err := nonAction.Execute(h); err != ErrNotExecutable {
		t.Fatalf("Execute on non-action = %v, want ErrNotExecutable", err)
	}
}

func TestWireRoundTrip(t *testing.T) {
	cases := []*Record{
		{EventTime: 0, Payload: DoublePayload{Value: 17.0}},
		{EventTime: 3, Payload: ExternalCallBeginPayload{RootNestingDepth: 1, HostCallbackID: 9}},
		{EventTime: 4, Payload: ExternalCallEndPayload{MatchingBeginTime: 3, RootNestingDepth: 1, ReturnValue: Value{Kind: ValueString, Str: "x"}}},
		{EventTime: 10, Payload: SnapshotPayload{RestoreEventTime: 10, Blob: []byte{1, 2, 3}, LogTag: 7, IdentityTag: 8}},
		{EventTime: 11, Payload: SetPropertyPayload{ObjectRef: 5, PropertyID: 2, Value: Value{Kind: ValueNumber, Number: 9}}},
	}
	for _, want := range cases {
		got := FromWire(ToWire(want))
		if got.EventTime != want.EventTime || got.Kind() != want.Kind() {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}
