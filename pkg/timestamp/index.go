package timestamp

import (
	"slices"
	"time"
)

// Entry is an identifier together with its instant.
type Entry struct {
	ID   string
	Time time.Time

	// Seq is the insertion order of the identifier, starting at zero.
	Seq int

	// Duplicate is true when an earlier identifier carries the same instant.
	Duplicate bool
}

// Index maps identifiers to instants. It is not safe for concurrent use.
type Index struct {
	entries []Entry
	owners  map[time.Time]int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{owners: make(map[time.Time]int)}
}

// key normalises t so equal instants map to the same key regardless of
// location or monotonic clock reading.
func key(t time.Time) time.Time {
	return t.Round(0).UTC()
}

// Add records id with instant t and reports whether t was already owned by
// an earlier identifier.
func (x *Index) Add(id string, t time.Time) bool {
	k := key(t)
	_, dup := x.owners[k]
	if !dup {
		x.owners[k] = len(x.entries)
	}
	x.entries = append(x.entries, Entry{
		ID:        id,
		Time:      t,
		Seq:       len(x.entries),
		Duplicate: dup,
	})
	return dup
}

// Len returns the number of identifiers added.
func (x *Index) Len() int {
	return len(x.entries)
}

// Distinct returns the number of distinct instants.
func (x *Index) Distinct() int {
	return len(x.owners)
}

// Instants returns each distinct instant once, in order of first insertion.
func (x *Index) Instants() []time.Time {
	out := make([]time.Time, 0, len(x.owners))
	for _, e := range x.entries {
		if !e.Duplicate {
			out = append(out, e.Time)
		}
	}
	return out
}

// Owner returns the identifier that owns instant t.
func (x *Index) Owner(t time.Time) (string, bool) {
	i, ok := x.owners[key(t)]
	if !ok {
		return "", false
	}
	return x.entries[i].ID, true
}

// Entries returns a copy of all entries in insertion order.
func (x *Index) Entries() []Entry {
	return slices.Clone(x.entries)
}

// Classification splits identifiers by a keep decision on their instants.
// Both slices are sorted by instant, then insertion order.
type Classification struct {
	Keep    []Entry
	Discard []Entry
}

// Resolve classifies every identifier. An identifier is kept when kept
// reports true for its instant and it owns that instant; duplicates are
// always discarded.
func (x *Index) Resolve(kept func(time.Time) bool) Classification {
	sorted := slices.Clone(x.entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return a.Seq - b.Seq
	})

	var c Classification
	for _, e := range sorted {
		if !e.Duplicate && kept(e.Time) {
			c.Keep = append(c.Keep, e)
		} else {
			c.Discard = append(c.Discard, e)
		}
	}
	return c
}

// IDs returns the identifiers of entries in order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
