package ttel

import (
	"time"

	"github.com/scriptlab/ttel/event"
)

// This file implements the Record* hook family: the instrumentation
// points a host engine calls at every non-deterministic query and
// every host-visible action. RecordNow and RecordRandomSeed always
// query l.host and log the answer only while ShouldRecord; the other
// query hooks only log what they are given. HostAction hooks, only
// while ShouldRecord, log the action and execute it against l.host (see
// recordHostAction). Replaying never calls any of these; see replay.go.

// RecordNow logs the host's wall-clock time, consumed by Date.now()
// and similar queries.
func (l *Log) RecordNow() time.Time {
	now := l.host.Now()
	if l.mode.Current().ShouldRecord() {
		l.record(event.DoublePayload{Value: float64(now.UnixNano()) / 1e6})
	}
	return now
}

// RecordRandomSeed logs a freshly drawn PRNG seed.
func (l *Log) RecordRandomSeed() uint64 {
	seed := l.host.RandomSeed()
	if l.mode.Current().ShouldRecord() {
		l.record(event.RandomSeedPayload{Value: seed})
	}
	return seed
}

// RecordSymbolCreation logs a host-generated Symbol's description
// string, e.g. for Symbol() with no explicit well-known identity.
func (l *Log) RecordSymbolCreation(description string) {
	if l.mode.Current().ShouldRecord() {
		l.record(event.SymbolCreationPayload{Description: description})
	}
}

// RecordPropertyEnumStep logs one step of a for-in/Object.keys property
// enumeration. name is only copied when diagnostics are enabled or
// propertyID is the sentinel 0.
func (l *Log) RecordPropertyEnumStep(returnCode bool, propertyID uint32, attributes uint32, name *string) {
	if !l.mode.Current().ShouldRecord() {
		return
	}
	var namep *string
	if l.cfg.DiagEnabled || propertyID == 0 {
		namep = name
	}
	l.record(event.PropertyEnumStepPayload{
		ReturnCode: returnCode,
		PropertyID: propertyID,
		Attributes: attributes,
		Name:       namep,
	})
}

// recordHostAction appends a HostAction record and immediately
// re-invokes the host with it. Everywhere else in this file "record"
// means "log what the engine already did"; here, because ttelctl's own
// demo session has no separate engine of its own, the Host stands in
// for both, the same way internal/hostsim.Host's Execute is also the
// thing driving ReplaySingleEntry.
func (l *Log) recordHostAction(payload event.Payload) {
	rec := l.record(payload)
	if err := l.host.Execute(rec); err != nil {
		l.logger.Printf("[WARN] host action %s failed during record: %v", rec.Kind(), err)
	}
}

// RecordAllocNumber logs a boxed-number allocation.
func (l *Log) RecordAllocNumber(v float64) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocNumberPayload{Value: v})
	}
}

// RecordAllocString logs a string allocation.
func (l *Log) RecordAllocString(v string) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocStringPayload{Value: v})
	}
}

// RecordAllocSymbol logs a Symbol allocation distinct from the
// higher-level SymbolCreation query.
func (l *Log) RecordAllocSymbol(description string) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocSymbolPayload{Description: description})
	}
}

// RecordAllocObject logs a plain-object allocation.
func (l *Log) RecordAllocObject(protoRef uint64) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocObjectPayload{ProtoRef: protoRef})
	}
}

// RecordAllocArray logs an array allocation of the given initial length.
func (l *Log) RecordAllocArray(length uint32) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocArrayPayload{Length: length})
	}
}

// RecordAllocBuffer logs a typed-array-backing buffer allocation.
func (l *Log) RecordAllocBuffer(length uint32) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocBufferPayload{Length: length})
	}
}

// RecordAllocFunction logs a function object allocation.
func (l *Log) RecordAllocFunction(name string) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.AllocFunctionPayload{Name: name})
	}
}

// RecordGetProperty logs a named-property read.
func (l *Log) RecordGetProperty(objectRef uint64, propertyID uint32) error {
	if err := l.checkPropertyGap(propertyID); err != nil {
		return err
	}
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.GetPropertyPayload{ObjectRef: objectRef, PropertyID: propertyID})
	}
	return nil
}

// RecordSetProperty logs a named-property write.
func (l *Log) RecordSetProperty(objectRef uint64, propertyID uint32, v event.Value) error {
	if err := l.checkPropertyGap(propertyID); err != nil {
		return err
	}
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.SetPropertyPayload{ObjectRef: objectRef, PropertyID: propertyID, Value: v})
	}
	return nil
}

// RecordDeleteProperty logs a named-property delete.
func (l *Log) RecordDeleteProperty(objectRef uint64, propertyID uint32) error {
	if err := l.checkPropertyGap(propertyID); err != nil {
		return err
	}
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.DeletePropertyPayload{ObjectRef: objectRef, PropertyID: propertyID})
	}
	return nil
}

// RecordGetIndex logs an indexed (array/typed-array) read.
func (l *Log) RecordGetIndex(objectRef uint64, index uint32) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.GetIndexPayload{ObjectRef: objectRef, Index: index})
	}
}

// RecordSetIndex logs an indexed write.
func (l *Log) RecordSetIndex(objectRef uint64, index uint32, v event.Value) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.SetIndexPayload{ObjectRef: objectRef, Index: index, Value: v})
	}
}

// RecordDefineProperty logs an Object.defineProperty-style call.
func (l *Log) RecordDefineProperty(objectRef uint64, propertyID uint32, attributes uint32) error {
	if err := l.checkPropertyGap(propertyID); err != nil {
		return err
	}
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.DefinePropertyPayload{ObjectRef: objectRef, PropertyID: propertyID, Attributes: attributes})
	}
	return nil
}

// RecordSetPrototype logs a prototype-chain mutation.
func (l *Log) RecordSetPrototype(objectRef, protoRef uint64) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.SetPrototypePayload{ObjectRef: objectRef, ProtoRef: protoRef})
	}
}

// RecordConstructCall logs a `new`-expression invocation.
func (l *Log) RecordConstructCall(functionRef uint64, args []event.Value) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.ConstructCallPayload{FunctionRef: functionRef, Args: event.CopyArgs(args)})
	}
}

// RecordCallbackOp logs an opaque host-callback invocation (timers,
// promise jobs, and similar host-scheduled work folded into a single
// catch-all kind).
func (l *Log) RecordCallbackOp(callbackID uint64, args []event.Value) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.CallbackOpPayload{CallbackID: callbackID, Args: event.CopyArgs(args)})
	}
}

// RecordCodeParse logs a script source's text and URL at parse time.
func (l *Log) RecordCodeParse(source, url string) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.CodeParsePayload{Source: source, URL: url})
	}
}

// RecordGetAndClearException logs the pending exception value returned
// by a GetAndClearException call, and clears the call stack's
// exception-tracking state to match.
func (l *Log) RecordGetAndClearException(v event.Value) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.GetAndClearExceptionPayload{Value: v})
	}
	l.calls.ClearException()
}

// RecordVarConvert logs a value coercion (ToString, ToNumber, and
// similar abstract operations whose result depends on, e.g., a
// user-defined valueOf/toString and so is not safely re-derivable on
// replay).
func (l *Log) RecordVarConvert(from event.Value, to event.ValueKind) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.VarConvertPayload{From: from, To: to})
	}
}

// RecordGetTypedArrayInfo logs a typed array's backing-buffer geometry
// at the moment it is queried.
func (l *Log) RecordGetTypedArrayInfo(objectRef uint64, byteLength, byteOffset uint32) {
	if l.mode.Current().ShouldRecord() {
		l.recordHostAction(event.GetTypedArrayInfoPayload{ObjectRef: objectRef, ByteLength: byteLength, ByteOffset: byteOffset})
	}
}
