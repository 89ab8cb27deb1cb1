package property

import "testing"

func TestPinAndLookup(t *testing.T) {
	p := New()
	p.Pin(1, "length", true, false, false)
	e, ok := p.Lookup(1)
	if !ok || e.Name != "length" {
		t.Fatalf("Lookup(1) = %+v, %v", e, ok)
	}
}

func TestGapReportsMissing(t *testing.T) {
	p := New()
	p.Pin(1, "a", false, false, false)
	missing := p.Gap([]uint32{1, 2, 3})
	if len(missing) != 2 || missing[0] != 2 || missing[1] != 3 {
		t.Fatalf("Gap = %v", missing)
	}
}

func TestWithPrefix(t *testing.T) {
	p := New()
	p.Pin(1, "toString", false, false, false)
	p.Pin(2, "toFixed", false, false, false)
	p.Pin(3, "valueOf", false, false, false)
	got := p.WithPrefix("to")
	if len(got) != 2 {
		t.Fatalf("WithPrefix(to) = %v", got)
	}
}
