package sparqlpipeline

import (
	"fmt"
	"time"

	"osm2rdf.sophox.org/internal/rdf"
	"osm2rdf.sophox.org/internal/vocab"
)

// Sink implements osmhandler.Sink for the incremental pipeline: it
// buffers finished entities and flushes a SPARQL Update transaction
// either when the buffer is full or when the same subject is finalized
// twice within one diff (invariant 5 — exactly one delete-subject entry
// per object per flush window).
type Sink struct {
	Client    *Client
	Buffer    *Buffer
	HighWater time.Time

	flushCount int
}

// NewSink constructs a Sink posting flushes through client.
func NewSink(client *Client, threshold int) *Sink {
	return &Sink{Client: client, Buffer: NewBuffer(threshold)}
}

// Accept buffers entity, flushing first if its subject is already
// pending (a duplicate within the current diff).
func (s *Sink) Accept(entity rdf.Entity, timestamp time.Time, deleted bool) error {
	subject := entity.Subject()
	if s.Buffer.Has(subject) {
		if err := s.Flush(nil); err != nil {
			return err
		}
	}

	if timestamp.After(s.HighWater) {
		s.HighWater = timestamp
	}

	if deleted {
		s.Buffer.PutDeleted(subject)
	} else {
		s.Buffer.Put(subject, RenderEntity(entity))
	}

	if s.Buffer.Full() {
		return s.Flush(nil)
	}
	return nil
}

// Flush issues one SPARQL Update transaction for the buffer's current
// contents. seqID, if non-nil, is written as the new osmroot:
// schema:version alongside schema:dateModified. It is a bookkeeping
// bug for Flush to be called with statements pending but an empty
// buffer (can't happen through Accept; guarded here defensively since
// the design calls for a hard failure, not a silent no-op).
func (s *Sink) Flush(seqID *int64) error {
	if s.Buffer.Inconsistent() {
		panic("sparqlpipeline: flush called with pending statements but no buffered subjects")
	}
	if s.Buffer.Empty() && seqID == nil {
		return nil
	}

	sparql := BuildUpdate(s.Buffer, seqID, highWaterLiteral(s.HighWater))
	if err := s.Client.Update(sparql); err != nil {
		return fmt.Errorf("flush sparql update: %w", err)
	}
	s.Buffer.Reset()
	s.flushCount++
	return nil
}

func highWaterLiteral(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return vocab.DateLiteral(t)
}
