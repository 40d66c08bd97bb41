// Package sparqlpipeline implements the incremental SPARQL 1.1 Update
// pipeline: an UpdateBuffer that batches deletes/inserts per subject,
// a builder that renders the buffer to a single Update request body,
// and an HTTP client that posts it the way the family's RDF4J/PoolParty
// clients post their own requests (form-encoded body, Basic Auth,
// explicit status-code checks).
package sparqlpipeline

import (
	"fmt"

	"osm2rdf.sophox.org/internal/rdf"
)

// entry is either "delete-only" (Statements nil) or a full set of
// rendered delete+insert statement lines for one subject.
type entry struct {
	statements []string
}

// Buffer maps a prefixed-subject IRI to its pending entry, preserving
// the order subjects were first inserted so generated SPARQL is
// deterministic. If a subject already present is finalized again
// (duplicate within one diff), the caller must flush before inserting;
// Buffer.Put panics if asked to overwrite an existing key, to surface
// that bookkeeping bug immediately rather than silently losing a
// delete.
type Buffer struct {
	order      []string
	entries    map[string]entry
	statements int
	threshold  int
}

// NewBuffer constructs an empty buffer that reports itself full once
// its pending statement count exceeds threshold (the design default is
// 5000).
func NewBuffer(threshold int) *Buffer {
	if threshold <= 0 {
		threshold = 5000
	}
	return &Buffer{entries: make(map[string]entry), threshold: threshold}
}

// Has reports whether subject already has a pending entry.
func (b *Buffer) Has(subject string) bool {
	_, ok := b.entries[subject]
	return ok
}

// PutDeleted records subject as delete-only (the object was removed).
func (b *Buffer) PutDeleted(subject string) {
	b.put(subject, entry{statements: nil})
}

// Put records subject's rendered statement lines (delete+insert).
func (b *Buffer) Put(subject string, statements []string) {
	b.put(subject, entry{statements: statements})
}

func (b *Buffer) put(subject string, e entry) {
	if _, exists := b.entries[subject]; exists {
		panic(fmt.Sprintf("sparqlpipeline: subject %s already buffered; flush before re-inserting", subject))
	}
	b.order = append(b.order, subject)
	b.entries[subject] = e
	b.statements += len(e.statements)
}

// Full reports whether the buffer has grown past its flush threshold.
func (b *Buffer) Full() bool {
	return b.statements > b.threshold
}

// Inconsistent reports the bookkeeping-bug case the design calls out:
// no pending subjects but a nonzero statement count.
func (b *Buffer) Inconsistent() bool {
	return len(b.order) == 0 && b.statements != 0
}

// Empty reports whether the buffer has no pending subjects.
func (b *Buffer) Empty() bool {
	return len(b.order) == 0
}

// Reset clears the buffer after a successful flush.
func (b *Buffer) Reset() {
	b.order = b.order[:0]
	b.entries = make(map[string]entry)
	b.statements = 0
}

// Subjects returns the pending subjects in insertion order.
func (b *Buffer) Subjects() []string {
	return append([]string(nil), b.order...)
}

// render walks subjects in order, splitting them into the delete-set
// (every subject) and the per-subject insert statement lines, for the
// builder to assemble into one SPARQL Update request.
func (b *Buffer) render() (deleteSubjects []string, inserts map[string][]string) {
	inserts = make(map[string][]string, len(b.order))
	for _, s := range b.order {
		deleteSubjects = append(deleteSubjects, s)
		if e := b.entries[s]; len(e.statements) > 0 {
			inserts[s] = e.statements
		}
	}
	return deleteSubjects, inserts
}

// RenderEntity converts a finished rdf.Entity's statements into the
// subject/object line strings the buffer stores, e.g.
// "osmnode:10 osmt:highway \"bus_stop\" .".
func RenderEntity(e rdf.Entity) []string {
	subject := e.Subject()
	lines := make([]string, len(e.Statements))
	for i, s := range e.Statements {
		lines[i] = subject + " " + s.Render() + " ."
	}
	return lines
}
