package event

import "time"

// Wire is the flat, msgpack-friendly projection of a Record used by
// package stream to persist and reload the event array.
// ugorji/go/codec encodes structs directly but has no notion of Go
// interfaces, so Payload is flattened into one struct carrying every
// field any variant might need; ToWire/FromWire do the conversion and
// keep that flattening out of the rest of the codebase.
type Wire struct {
	Kind      Kind
	EventTime int64

	Num1 float64
	Num2 float64
	Str1 string
	Str2 string
	U1   uint64
	U2   uint64
	U3   uint32
	U4   uint32
	B1   bool
	B2   bool
	I1   int
	I64  int64
	Time1 time.Time
	Time2 time.Time
	Val1  Value
	Val2  Value
	Args  []Value
	Blob  []byte
	NamePtr *string
}

// ToWire flattens r into its wire projection.
func ToWire(r *Record) Wire {
	w := Wire{Kind: r.Kind(), EventTime: r.EventTime}
	switch p := r.Payload.(type) {
	case DoublePayload:
		w.Num1 = p.Value
	case StringPayload:
		w.Str1 = p.Value
	case RandomSeedPayload:
		w.U1 = p.Value
	case SymbolCreationPayload:
		w.Str1 = p.Description
	case PropertyEnumStepPayload:
		w.B1 = p.ReturnCode
		w.U3 = p.PropertyID
		w.U4 = p.Attributes
		w.NamePtr = p.Name
	case ExternalCallBeginPayload:
		w.I1 = p.RootNestingDepth
		w.Time1 = p.WallClockBegin
		w.U1 = p.HostCallbackID
	case ExternalCallEndPayload:
		w.I64 = p.MatchingBeginTime
		w.I1 = p.RootNestingDepth
		w.Time1 = p.WallClockEnd
		w.B1 = p.HasScriptException
		w.B2 = p.HasTerminatingException
		w.Val1 = p.ReturnValue
	case SnapshotPayload:
		w.I64 = p.RestoreEventTime
		w.Blob = p.Blob
		w.U1 = p.LogTag
		w.U2 = p.IdentityTag
	case CallFunctionBeginPayload:
		w.U1 = p.FunctionRef
		w.Args = p.Args
		w.B1 = p.IsRootCall
		w.U2 = p.HostCallbackID
		if p.InlineSnapshot != nil {
			w.B2 = true
			w.I64 = p.InlineSnapshot.RestoreEventTime
			w.Blob = p.InlineSnapshot.Blob
			w.U3 = uint32(p.InlineSnapshot.LogTag)
			w.U4 = uint32(p.InlineSnapshot.IdentityTag)
		}
	case CallFunctionEndPayload:
		w.I64 = p.MatchingBeginTime
		w.Val1 = p.ReturnValue
	case AllocNumberPayload:
		w.Num1 = p.Value
	case AllocStringPayload:
		w.Str1 = p.Value
	case AllocSymbolPayload:
		w.Str1 = p.Description
	case AllocObjectPayload:
		w.U1 = p.ProtoRef
	case AllocArrayPayload:
		w.U3 = p.Length
	case AllocBufferPayload:
		w.U3 = p.Length
	case AllocFunctionPayload:
		w.Str1 = p.Name
	case GetPropertyPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.PropertyID
	case SetPropertyPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.PropertyID
		w.Val1 = p.Value
	case DeletePropertyPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.PropertyID
	case GetIndexPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.Index
	case SetIndexPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.Index
		w.Val1 = p.Value
	case DefinePropertyPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.PropertyID
		w.U4 = p.Attributes
	case SetPrototypePayload:
		w.U1 = p.ObjectRef
		w.U2 = p.ProtoRef
	case ConstructCallPayload:
		w.U1 = p.FunctionRef
		w.Args = p.Args
	case CallbackOpPayload:
		w.U1 = p.CallbackID
		w.Args = p.Args
	case CodeParsePayload:
		w.Str1 = p.Source
		w.Str2 = p.URL
	case GetAndClearExceptionPayload:
		w.Val1 = p.Value
	case VarConvertPayload:
		w.Val1 = p.From
		w.U3 = uint32(p.To)
	case GetTypedArrayInfoPayload:
		w.U1 = p.ObjectRef
		w.U3 = p.ByteLength
		w.U4 = p.ByteOffset
	}
	return w
}

// FromWire reconstructs a Record from its wire projection.
func FromWire(w Wire) *Record {
	r := &Record{EventTime: w.EventTime}
	switch w.Kind {
	case KindDouble:
		r.Payload = DoublePayload{Value: w.Num1}
	case KindString:
		r.Payload = StringPayload{Value: w.Str1}
	case KindRandomSeed:
		r.Payload = RandomSeedPayload{Value: w.U1}
	case KindSymbolCreation:
		r.Payload = SymbolCreationPayload{Description: w.Str1}
	case KindPropertyEnumStep:
		r.Payload = PropertyEnumStepPayload{
			ReturnCode: w.B1,
			PropertyID: w.U3,
			Attributes: w.U4,
			Name:       w.NamePtr,
		}
	case KindExternalCallBegin:
		r.Payload = ExternalCallBeginPayload{
			RootNestingDepth: w.I1,
			WallClockBegin:   w.Time1,
			HostCallbackID:   w.U1,
		}
	case KindExternalCallEnd:
		r.Payload = ExternalCallEndPayload{
			MatchingBeginTime:       w.I64,
			RootNestingDepth:        w.I1,
			WallClockEnd:            w.Time1,
			HasScriptException:      w.B1,
			HasTerminatingException: w.B2,
			ReturnValue:             w.Val1,
		}
	case KindSnapshot:
		r.Payload = SnapshotPayload{
			RestoreEventTime: w.I64,
			Blob:             w.Blob,
			LogTag:           w.U1,
			IdentityTag:      w.U2,
		}
	case KindCallFunctionBegin:
		p := CallFunctionBeginPayload{
			FunctionRef:    w.U1,
			Args:           w.Args,
			IsRootCall:     w.B1,
			HostCallbackID: w.U2,
		}
		if w.B2 {
			p.InlineSnapshot = &SnapshotPayload{
				RestoreEventTime: w.I64,
				Blob:             w.Blob,
				LogTag:           uint64(w.U3),
				IdentityTag:      uint64(w.U4),
			}
		}
		r.Payload = p
	case KindCallFunctionEnd:
		r.Payload = CallFunctionEndPayload{MatchingBeginTime: w.I64, ReturnValue: w.Val1}
	case KindAllocNumber:
		r.Payload = AllocNumberPayload{Value: w.Num1}
	case KindAllocString:
		r.Payload = AllocStringPayload{Value: w.Str1}
	case KindAllocSymbol:
		r.Payload = AllocSymbolPayload{Description: w.Str1}
	case KindAllocObject:
		r.Payload = AllocObjectPayload{ProtoRef: w.U1}
	case KindAllocArray:
		r.Payload = AllocArrayPayload{Length: w.U3}
	case KindAllocBuffer:
		r.Payload = AllocBufferPayload{Length: w.U3}
	case KindAllocFunction:
		r.Payload = AllocFunctionPayload{Name: w.Str1}
	case KindGetProperty:
		r.Payload = GetPropertyPayload{ObjectRef: w.U1, PropertyID: w.U3}
	case KindSetProperty:
		r.Payload = SetPropertyPayload{ObjectRef: w.U1, PropertyID: w.U3, Value: w.Val1}
	case KindDeleteProperty:
		r.Payload = DeletePropertyPayload{ObjectRef: w.U1, PropertyID: w.U3}
	case KindGetIndex:
		r.Payload = GetIndexPayload{ObjectRef: w.U1, Index: w.U3}
	case KindSetIndex:
		r.Payload = SetIndexPayload{ObjectRef: w.U1, Index: w.U3, Value: w.Val1}
	case KindDefineProperty:
		r.Payload = DefinePropertyPayload{ObjectRef: w.U1, PropertyID: w.U3, Attributes: w.U4}
	case KindSetPrototype:
		r.Payload = SetPrototypePayload{ObjectRef: w.U1, ProtoRef: w.U2}
	case KindConstructCall:
		r.Payload = ConstructCallPayload{FunctionRef: w.U1, Args: w.Args}
	case KindCallbackOp:
		r.Payload = CallbackOpPayload{CallbackID: w.U1, Args: w.Args}
	case KindCodeParse:
		r.Payload = CodeParsePayload{Source: w.Str1, URL: w.Str2}
	case KindGetAndClearException:
		r.Payload = GetAndClearExceptionPayload{Value: w.Val1}
	case KindVarConvert:
		r.Payload = VarConvertPayload{From: w.Val1, To: ValueKind(w.U3)}
	case KindGetTypedArrayInfo:
		r.Payload = GetTypedArrayInfoPayload{ObjectRef: w.U1, ByteLength: w.U3, ByteOffset: w.U4}
	}
	return r
}
