package source

import (
	"context"
	"time"
)

// Record is an identifier together with its extracted instant.
type Record struct {
	ID   string
	Time time.Time
}

// Batch is the result of reading a source once.
type Batch struct {
	// Records holds every identifier with a timestamp, in source order.
	Records []Record

	// Unmatched holds identifiers from which no timestamp was extracted.
	Unmatched []string
}

// Len returns the number of identifiers read, matched or not.
func (b *Batch) Len() int {
	return len(b.Records) + len(b.Unmatched)
}

// Source produces record batches.
type Source interface {
	// Read reads the whole source. It honours ctx cancellation between
	// records.
	Read(ctx context.Context) (*Batch, error)

	// String describes the source for logs and reports.
	String() string
}

// Extractor extracts an instant from an identifier.
type Extractor interface {
	Extract(s string) (time.Time, bool)
}

// add classifies id into b using x.
func (b *Batch) add(x Extractor, id string) {
	if t, ok := x.Extract(id); ok {
		b.Records = append(b.Records, Record{ID: id, Time: t})
		return
	}
	b.Unmatched = append(b.Unmatched, id)
}
