// Package guard implements scoped objects for external-call and
// host-call boundaries that guarantee a balanced Begin/End event pair
// even when the guarded call panics. The RAII-destructor idiom this
// replaces has no Go equivalent, so guard uses a deferred Close that is
// a no-op once NormalReturn has already run.
package guard

import "github.com/scriptlab/ttel/event"

// Recorder is the subset of ttel.Log a guard needs: appending the
// paired Begin/End records and querying whether an exception frame has
// already been reported for this nesting level.
type Recorder interface {
	RecordExternalCallEnd(matchingBeginTime int64, rootNestingDepth int, hasScriptException, hasTerminatingException bool, ret event.Value)
	HasImmediateExceptionFrame() bool
}

// External guards one external-call boundary. Begin returns a guard
// whose Close must be deferred immediately; calling
// NormalReturn before Close fires records the ordinary exit path, and
// Close becomes a no-op.
type External struct {
	log              Recorder
	beginTime        int64
	rootNestingDepth int
	done             bool
}

// Begin does not append the …Begin record; the caller must already have
// appended it (ttel.Log.BeginExternalCall does). It returns a guard
// tracking beginTime/rootNestingDepth for the matching …End.
func Begin(log Recorder, beginTime int64, rootNestingDepth int) *External {
	return &External{log: log, beginTime: beginTime, rootNestingDepth: rootNestingDepth}
}

// NormalReturn records the matching …End for a call that completed
// without propagating an exception. hasScriptException reflects
// whether a script exception is pending despite the normal return
// (e.g. was caught and cleared inside the call).
func (g *External) NormalReturn(hasScriptException bool, ret event.Value) {
	if g.done {
		return
	}
	g.done = true
	g.log.RecordExternalCallEnd(g.beginTime, g.rootNestingDepth, hasScriptException, false, ret)
}

// Close fires the terminal …End for a call that is unwinding due to a
// propagating exception. It must be deferred right after Begin; it is
// a no-op if NormalReturn already ran. Nested guards avoid
// double-reporting by consulting HasImmediateExceptionFrame; only the
// frame that first observes the exception marks it terminating.
func (g *External) Close() {
	if g.done {
		return
	}
	g.done = true
	terminating := g.log.HasImmediateExceptionFrame()
	g.log.RecordExternalCallEnd(g.beginTime, g.rootNestingDepth, true, terminating, event.Value{Kind: event.ValueUndefined})
}

// HostCallRecorder is the host-invoking-script mirror of Recorder: the
// payload shape differs (no terminating-exception flag is meaningful
// from the engine's own perspective calling out to itself), but the
// begin/end pairing discipline is identical.
type HostCallRecorder interface {
	RecordCallFunctionEnd(matchingBeginTime int64, ret event.Value)
	HasImmediateExceptionFrame() bool
}

// HostCall guards one script-invoking-host-invoking-script boundary:
// the CallFunctionBegin/CallFunctionEnd pair.
type HostCall struct {
	log       HostCallRecorder
	beginTime int64
	done      bool
}

// BeginHostCall mirrors Begin for the CallFunctionBegin/End family.
func BeginHostCall(log HostCallRecorder, beginTime int64) *HostCall {
	return &HostCall{log: log, beginTime: beginTime}
}

// NormalReturn records CallFunctionEnd for an ordinary return.
func (g *HostCall) NormalReturn(ret event.Value) {
	if g.done {
		return
	}
	g.done = true
	g.log.RecordCallFunctionEnd(g.beginTime, ret)
}

// Close fires CallFunctionEnd with an undefined return for a call
// unwinding due to exception, exactly once, deferred right after
// BeginHostCall.
func (g *HostCall) Close() {
	if g.done {
		return
	}
	g.done = true
	g.log.RecordCallFunctionEnd(g.beginTime, event.Value{Kind: event.ValueUndefined})
}
