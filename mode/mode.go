// Package mode implements the mode machine: a stack of mode tokens
// whose index 0 is always exactly one base mode, and whose higher
// indices are ExcludedExecution modifiers pushed and popped in LIFO
// order. Every mutation recomputes and publishes a single derived
// value, so nothing reads stale state.
package mode

import "fmt"

// Base is the mutually-exclusive mode a Stack's index 0 always holds.
type Base int

const (
	Pending Base = iota
	Detached
	RecordEnabled
	DebuggingEnabled
)

func (b Base) String() string {
	switch b {
	case Pending:
		return "Pending"
	case Detached:
		return "Detached"
	case RecordEnabled:
		return "RecordEnabled"
	case DebuggingEnabled:
		return "DebuggingEnabled"
	default:
		return fmt.Sprintf("Base(%d)", int(b))
	}
}

// Effective is the OR of a Stack's base mode and every ExcludedExecution
// modifier currently pushed. It exposes the gate predicates every
// caller needs to decide whether to record, replay, or tag.
type Effective struct {
	base     Base
	excluded bool
}

func (e Effective) Base() Base { return e.base }

func (e Effective) ShouldRecord() bool {
	return e.base == RecordEnabled && !e.excluded
}

func (e Effective) ShouldReplay() bool {
	return e.base == DebuggingEnabled && !e.excluded
}

func (e Effective) ShouldTagJsrt() bool {
	return (e.base == Pending || e.base == RecordEnabled) && !e.excluded
}

func (e Effective) ShouldTagExternal() bool {
	return (e.base == Pending || e.base == RecordEnabled || e.base == DebuggingEnabled) && !e.excluded
}

func (e Effective) IsActive() bool {
	return e.base == RecordEnabled || e.base == DebuggingEnabled
}

func (e Effective) IsDetached() bool {
	return e.base == Detached
}

func (e Effective) String() string {
	if e.excluded {
		return e.base.String() + "|ExcludedExecution"
	}
	return e.base.String()
}

// OnChange is invoked after every mutation with the freshly recomputed
// Effective mode, letting ttel.Log propagate the change to its
// attached script context.
type OnChange func(Effective)

// Stack is the mode stack: one base mode plus a LIFO excluded-execution
// depth.
type Stack struct {
	base        Base
	excludeDepth int
	onChange    OnChange
}

// NewStack returns a Stack whose index 0 holds base.
func NewStack(base Base) *Stack {
	return &Stack{base: base}
}

// SetOnChange installs the publication callback. It is not invoked
// immediately; only subsequent mutations trigger it.
func (s *Stack) SetOnChange(fn OnChange) { s.onChange = fn }

// SetBase replaces the base mode at index 0.
func (s *Stack) SetBase(b Base) {
	s.base = b
	s.publish()
}

// PushExcluded pushes an ExcludedExecution modifier and returns a
// token that must be passed to the matching PopExcluded. Pushes and
// pops must balance.
func (s *Stack) PushExcluded() (token int) {
	s.excludeDepth++
	token = s.excludeDepth
	s.publish()
	return token
}

// PopExcluded pops the modifier pushed with the matching token. It
// panics if tokens are popped out of LIFO order, treating that as the
// programming error it is.
func (s *Stack) PopExcluded(token int) {
	if token != s.excludeDepth {
		panic(fmt.Sprintf("mode: PopExcluded(%d) does not match current depth %d", token, s.excludeDepth))
	}
	s.excludeDepth--
	s.publish()
}

// Current returns the Stack's currently effective mode.
func (s *Stack) Current() Effective {
	return Effective{base: s.base, excluded: s.excludeDepth > 0}
}

// Base returns the mode stack's base mode.
func (s *Stack) Base() Base { return s.base }

func (s *Stack) publish() {
	if s.onChange != nil {
		s.onChange(s.Current())
	}
}
