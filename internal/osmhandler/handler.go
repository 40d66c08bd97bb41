// Package osmhandler implements the entity handler: the component that
// turns a stream of osmsource.Object values into rdf.Entity statement
// lists, maintains the high-water timestamp and per-kind counters, and
// hands finished entities to whichever pipeline (file writer or SPARQL
// buffer) is driving it.
package osmhandler

import (
	"fmt"
	"strconv"
	"time"

	"osm2rdf.sophox.org/internal/osmsource"
	"osm2rdf.sophox.org/internal/rdf"
	"osm2rdf.sophox.org/internal/vocab"
)

// Sink receives one finished entity at a time, in handler-visit order.
type Sink interface {
	Accept(entity rdf.Entity, timestamp time.Time, deleted bool) error
}

// Options configures handler behavior that varies by CLI flag.
type Options struct {
	// AddWayLocation mirrors the negation of --skip-way-geo: when true,
	// ways get a representative-point location statement.
	AddWayLocation bool
}

// Counts holds the per-kind bookkeeping the design calls for:
// added/skipped/deleted per entity kind, plus the running total of
// emitted statements.
type Counts struct {
	AddedNodes, AddedWays, AddedRelations  int
	SkippedNodes, SkippedWays, SkippedRels int
	DeletedNodes, DeletedWays, DeletedRels int
	NewStatements                         int
}

// Handler consumes OSM objects and drives a Sink. It is not safe for
// concurrent use: the parser visits objects on a single goroutine and
// the handler mutates its counters and high-water timestamp in place.
type Handler struct {
	opts Options
	sink Sink

	lastTimestamp time.Time
	counts        Counts
	lastStats     string
}

// New constructs a Handler that hands finished entities to sink.
func New(sink Sink, opts Options) *Handler {
	return &Handler{sink: sink, opts: opts}
}

// LastTimestamp returns the monotonically non-decreasing high-water
// timestamp observed so far.
func (h *Handler) LastTimestamp() time.Time {
	return h.lastTimestamp
}

// Counts returns a snapshot of the running counters.
func (h *Handler) Counts() Counts {
	return h.counts
}

// VisitNode implements the per-node procedure of 4.C.
func (h *Handler) VisitNode(obj osmsource.Object) error {
	if obj.Deleted {
		h.counts.DeletedNodes++
		return h.finalize(obj, nil)
	}

	stmts := h.tagStatements(obj.Tags)
	if len(stmts) == 0 {
		h.counts.SkippedNodes++
		return h.finalize(obj, nil)
	}

	if len(obj.PointWKB) > 0 {
		stmts = append(stmts, rdf.Point(vocab.OsmMeta.String()+":loc", obj.PointWKB))
	} else {
		stmts = append(stmts, rdf.Str(vocab.OsmMeta.String()+":loc:error", "node has no geometry"))
	}

	h.counts.AddedNodes++
	return h.finalize(obj, stmts)
}

// VisitWay implements the per-way procedure of 4.C.
func (h *Handler) VisitWay(obj osmsource.Object) error {
	if obj.Deleted {
		h.counts.DeletedWays++
		return h.finalize(obj, nil)
	}

	stmts := h.tagStatements(obj.Tags)
	if len(stmts) == 0 {
		h.counts.SkippedWays++
		return h.finalize(obj, nil)
	}

	stmts = append(stmts, rdf.Bool(vocab.OsmMeta.String()+":isClosed", obj.IsClosed))

	if h.opts.AddWayLocation {
		if len(obj.LineWKB) == 0 {
			stmts = append(stmts, rdf.Str(vocab.OsmMeta.String()+":loc:error", "way has no geometry"))
		} else {
			// Way.Render computes the representative point lazily and
			// falls back to an osmm:loc:error statement on decode
			// failure, so no separate validation is needed here.
			stmts = append(stmts, rdf.Way(vocab.OsmMeta.String()+":loc", obj.LineWKB))
		}
	}

	h.counts.AddedWays++
	return h.finalize(obj, stmts)
}

// VisitRelation implements the per-relation procedure of 4.C.
func (h *Handler) VisitRelation(obj osmsource.Object) error {
	if obj.Deleted {
		h.counts.DeletedRels++
		return h.finalize(obj, nil)
	}

	stmts := h.tagStatements(obj.Tags)
	if len(obj.Members) == 0 && len(stmts) == 0 {
		h.counts.SkippedRels++
		return h.finalize(obj, nil)
	}

	for _, m := range obj.Members {
		memberIRI := memberSubject(m.Type, m.Ref)
		stmts = append(stmts, rdf.Ref(vocab.OsmMeta.String()+":has", memberIRI))
		stmts = append(stmts, rdf.Str(memberIRI, m.Role))
	}

	h.counts.AddedRelations++
	return h.finalize(obj, stmts)
}

// Flush is the terminal operation; the entity handler itself carries no
// buffered state beyond counters, so this only exists to satisfy the
// documented visit/flush interface and to give callers a place to log a
// final FormatStats line.
func (h *Handler) Flush() {}

func memberSubject(kind string, ref int64) string {
	switch kind {
	case "n":
		return vocab.OsmNode.String() + ":" + strconv.FormatInt(ref, 10)
	case "w":
		return vocab.OsmWay.String() + ":" + strconv.FormatInt(ref, 10)
	case "r":
		return vocab.OsmRel.String() + ":" + strconv.FormatInt(ref, 10)
	default:
		return "osmunknown:" + strconv.FormatInt(ref, 10)
	}
}

// tagStatements renders the object's tag list, dropping created_by tags
// silently per invariant 4.
func (h *Handler) tagStatements(tags []osmsource.Tag) []rdf.Statement {
	stmts := make([]rdf.Statement, 0, len(tags))
	for _, t := range tags {
		if t.Key == "created_by" {
			continue
		}
		stmts = append(stmts, rdf.Tag(t.Key, t.Value))
	}
	return stmts
}

// finalize advances the high-water timestamp and hands the finished
// entity to the sink, unconditionally: the sink must learn about every
// visited object, deleted or tag-stripped, so it can register a
// delete-subject entry clearing that subject's stale triples. Only
// statement emission is conditional on stmts being non-empty — a
// deleted or now-untagged object is handed to the sink with no
// statements at all, which Accept records as a delete-only entry.
func (h *Handler) finalize(obj osmsource.Object, stmts []rdf.Statement) error {
	if obj.Timestamp.After(h.lastTimestamp) {
		h.lastTimestamp = obj.Timestamp
	}

	entity := rdf.Entity{
		Prefix: obj.Prefix(),
		ID:     obj.ID,
	}

	if len(stmts) == 0 {
		return h.sink.Accept(entity, obj.Timestamp, obj.Deleted)
	}

	stmts = append(stmts,
		rdf.Str(vocab.OsmMeta.String()+":type", obj.TypeCode()),
		rdf.Int(vocab.OsmMeta.String()+":version", int64(obj.Version)),
		rdf.Str(vocab.OsmMeta.String()+":user", obj.User),
		rdf.Date(vocab.OsmMeta.String()+":timestamp", obj.Timestamp),
		rdf.Int(vocab.OsmMeta.String()+":changeset", obj.Changeset),
	)

	h.counts.NewStatements += len(stmts)
	entity.Statements = stmts
	return h.sink.Accept(entity, obj.Timestamp, obj.Deleted)
}

// FormatStats renders the compact human stats line, e.g.
// "n:12/3/0 w:4/0/0 r:0/0/0 new:112". Consecutive identical results are
// suppressed: a second call with unchanged counters returns "".
func (h *Handler) FormatStats() string {
	s := fmt.Sprintf("n:%d/%d/%d w:%d/%d/%d r:%d/%d/%d new:%d",
		h.counts.AddedNodes, h.counts.SkippedNodes, h.counts.DeletedNodes,
		h.counts.AddedWays, h.counts.SkippedWays, h.counts.DeletedWays,
		h.counts.AddedRelations, h.counts.SkippedRels, h.counts.DeletedRels,
		h.counts.NewStatements,
	)
	if s == h.lastStats {
		return ""
	}
	h.lastStats = s
	return s
}
