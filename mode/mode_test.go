package mode

import "testing"

func TestGatePredicates(t *testing.T) {
	s := NewStack(Pending)
	s.SetBase(RecordEnabled)
	tok := s.PushExcluded()
	if s.Current().ShouldRecord() {
		t.Fatalf("should_record must be false while excluded")
	}
	s.PopExcluded(tok)
	if !s.Current().ShouldRecord() {
		t.Fatalf("should_record must be true after popping exclusion")
	}
}

func TestExactlyOneBase(t *testing.T) {
	s := NewStack(Pending)
	if s.Current().Base() != Pending {
		t.Fatalf("base = %v, want Pending", s.Current().Base())
	}
	s.PushExcluded()
	if s.Current().Base() != Pending {
		t.Fatalf("pushing an exclusion must not change base")
	}
}

func TestPublishOnChange(t *testing.T) {
	s := NewStack(Pending)
	var seen []Effective
	s.SetOnChange(func(e Effective) { seen = append(seen, e) })
	s.SetBase(RecordEnabled)
	tok := s.PushExcluded()
	s.PopExcluded(tok)
	if len(seen) != 3 {
		t.Fatalf("onChange fired %d times, want 3", len(seen))
	}
}

func TestIsActive(t *testing.T) {
	for _, tc := range []struct {
		base Base
		want bool
	}{
		{Pending, false},
		{Detached, false},
		{RecordEnabled, true},
		{DebuggingEnabled, true},
	} {
		s := NewStack(tc.base)
		if got := s.Current().IsActive(); got != tc.want {
			t.Fatalf("IsActive(%v) = %v, want %v", tc.base, got, tc.want)
		}
	}
}
