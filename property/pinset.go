// Package property implements the interned set of property-id/name
// bindings every event referencing a property id must be able to
// resolve. It is backed by
// github.com/hashicorp/go-immutable-radix keyed on the property name,
// giving prefix-scoped lookup (WithPrefix) and a cheap
// persistent snapshot of the pin set for free, a closer fit than a
// plain map for a structure that TTEL wants to branch copy-on-write
// when time-travelling between snapshots.
package property

import (
	"sort"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Entry describes one pinned property record.
type Entry struct {
	ID      uint32
	Name    string
	Numeric bool
	Bound   bool
	Symbol  bool
}

// PinSet is the interned property-record set.
type PinSet struct {
	byName *iradix.Tree
	byID   map[uint32]Entry
}

// New returns an empty PinSet.
func New() *PinSet {
	return &PinSet{byName: iradix.New(), byID: make(map[uint32]Entry)}
}

// Pin interns (id, name) with the given attribute flags. Re-pinning an
// existing id overwrites its entry.
func (p *PinSet) Pin(id uint32, name string, numeric, bound, symbol bool) {
	e := Entry{ID: id, Name: name, Numeric: numeric, Bound: bound, Symbol: symbol}
	if old, ok := p.byID[id]; ok && old.Name != name {
		tree, _, _ := p.byName.Delete([]byte(old.Name))
		p.byName = tree
	}
	p.byID[id] = e
	tree, _, _ := p.byName.Insert([]byte(name), e)
	p.byName = tree
}

// Lookup returns the pinned entry for id, if any.
func (p *PinSet) Lookup(id uint32) (Entry, bool) {
	e, ok := p.byID[id]
	return e, ok
}

// WithPrefix returns all pinned entries whose name starts with prefix,
// sorted by name.
func (p *PinSet) WithPrefix(prefix string) []Entry {
	var out []Entry
	p.byName.Root().WalkPrefix([]byte(prefix), func(k []byte, v interface{}) bool {
		out = append(out, v.(Entry))
		return false
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Gap returns the subset of ids that are not currently pinned,
// surfaced by ttel.Log as a *PropertyGapError.
func (p *PinSet) Gap(ids []uint32) []uint32 {
	var missing []uint32
	for _, id := range ids {
		if _, ok := p.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Len returns the number of pinned entries.
func (p *PinSet) Len() int { return len(p.byID) }

// All returns every pinned entry, sorted by id, used when persisting
// the property-record array.
func (p *PinSet) All() []Entry {
	out := make([]Entry, 0, len(p.byID))
	for _, e := range p.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
