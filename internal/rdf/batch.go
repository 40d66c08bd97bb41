package rdf

import (
	"strconv"
	"time"
)

// Entity names one subject's worth of statements: its prefix ("osmnode",
// "osmway", "osmrel"), its numeric id, and the ordered statement list
// the handler produced for it.
type Entity struct {
	Prefix     string
	ID         int64
	Statements []Statement
}

// Subject renders the prefixed subject IRI for e, e.g. "osmnode:12345".
func (e Entity) Subject() string {
	return e.Prefix + ":" + strconv.FormatInt(e.ID, 10)
}

// Batch is an ordered sequence of entities with a monotonically tracked
// high-water timestamp, the unit the file-writer producer accumulates
// handler output into and hands to its workers.
type Batch struct {
	Entities       []Entity
	HighWater      time.Time
	StatementCount int
}

// Add appends e to the batch and advances HighWater if ts is newer.
func (b *Batch) Add(e Entity, ts time.Time) {
	b.Entities = append(b.Entities, e)
	b.StatementCount += len(e.Statements)
	if ts.After(b.HighWater) {
		b.HighWater = ts
	}
}

// Reset empties the batch for reuse, keeping its backing array.
func (b *Batch) Reset() {
	b.Entities = b.Entities[:0]
	b.StatementCount = 0
}
