package event

// Value is a deep-copied, engine-agnostic representation of a value
// crossing the TTEL boundary: a HostAction argument, a recorded return
// value, or an enumerated property name. TTEL never interprets a
// Value's contents beyond its Kind; the script engine is the only
// consumer that knows how to turn it back into a live object.
type Value struct {
	Kind    ValueKind
	Number  float64
	Str     string
	Bool    bool
	Ref     uint64 // opaque engine-object identity, valid only within one Host
}

// ValueKind discriminates the payload carried by a Value.
type ValueKind int

const (
	ValueUndefined ValueKind = iota
	ValueNull
	ValueBool
	ValueNumber
	ValueString
	ValueObjectRef
)

// CopyArgs deep-copies a slice of Values so a Record's payload does not
// alias caller-owned memory. Value already holds only scalars and a Go
// string (itself immutable and therefore safe to alias), so the copy
// is a plain slice copy. The copied slice stays in the Record itself;
// it is not serialized into an arena.Slab.
func CopyArgs(args []Value) []Value {
	if len(args) == 0 {
		return nil
	}
	out := make([]Value, len(args))
	copy(out, args)
	return out
}
