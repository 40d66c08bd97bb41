// Package osmsource adapts the paulmach/osm object model to the
// OsmObject view the entity handler consumes, keeping the handler
// itself free of any dependency on the PBF/OSC parsing library.
package osmsource

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/osm"
)

// Kind discriminates the three OSM entity types.
type Kind int

const (
	KindNode Kind = iota
	KindWay
	KindRelation
)

// Tag is an ordered OSM key/value pair.
type Tag struct {
	Key   string
	Value string
}

// Member is one element of a relation's ordered member list.
type Member struct {
	Type string // "n", "w", or "r"
	Ref  int64
	Role string
}

// Object is the read-only view of a single OSM entity the handler
// borrows for the duration of one visit; it never outlives the visit.
type Object struct {
	Kind      Kind
	ID        int64
	Version   int
	Changeset int64
	User      string
	Timestamp time.Time
	Deleted   bool
	Tags      []Tag

	// Node: WKB point geometry.
	PointWKB []byte

	// Way: WKB linestring geometry and closed-ness.
	LineWKB  []byte
	IsClosed bool

	// Relation: ordered member list.
	Members []Member
}

// Prefix returns the entity's subject prefix ("osmnode", "osmway",
// "osmrel").
func (o Object) Prefix() string {
	switch o.Kind {
	case KindNode:
		return "osmnode"
	case KindWay:
		return "osmway"
	case KindRelation:
		return "osmrel"
	default:
		return "osmunknown"
	}
}

// TypeCode returns the single-letter metadata type code OSM uses:
// "n", "w", "r".
func (o Object) TypeCode() string {
	switch o.Kind {
	case KindNode:
		return "n"
	case KindWay:
		return "w"
	case KindRelation:
		return "r"
	default:
		return "?"
	}
}

// FromNode adapts a paulmach/osm Node. The node's Lat/Lon are marshaled
// to a WKB point so the handler and geometry package never need to know
// about the upstream coordinate representation.
func FromNode(n *osm.Node) Object {
	obj := Object{
		Kind:      KindNode,
		ID:        int64(n.ID),
		Version:   n.Version,
		Changeset: int64(n.ChangesetID),
		User:      n.User,
		Timestamp: n.Timestamp,
		Deleted:   !n.Visible,
		Tags:      fromOSMTags(n.Tags),
	}
	if blob, err := wkb.Marshal(orb.Point{n.Lon, n.Lat}); err == nil {
		obj.PointWKB = blob
	}
	return obj
}

// FromWay adapts a paulmach/osm Way. nodeCoords resolves each way-node
// id to its (lon, lat); unresolved nodes are skipped, shrinking the
// linestring rather than failing the whole way.
func FromWay(w *osm.Way, nodeCoords func(id osm.NodeID) (orb.Point, bool)) Object {
	obj := Object{
		Kind:      KindWay,
		ID:        int64(w.ID),
		Version:   w.Version,
		Changeset: int64(w.ChangesetID),
		User:      w.User,
		Timestamp: w.Timestamp,
		Deleted:   !w.Visible,
		Tags:      fromOSMTags(w.Tags),
	}

	line := make(orb.LineString, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		if nodeCoords != nil {
			if pt, ok := nodeCoords(wn.ID); ok {
				line = append(line, pt)
				continue
			}
		}
		if wn.Lon != 0 || wn.Lat != 0 {
			line = append(line, orb.Point{wn.Lon, wn.Lat})
		}
	}
	obj.IsClosed = len(line) > 1 && line[0] == line[len(line)-1]
	if len(line) > 0 {
		if blob, err := wkb.Marshal(line); err == nil {
			obj.LineWKB = blob
		}
	}
	return obj
}

// FromRelation adapts a paulmach/osm Relation.
func FromRelation(r *osm.Relation) Object {
	members := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, Member{
			Type: memberTypeCode(m.Type),
			Ref:  m.Ref,
			Role: m.Role,
		})
	}
	return Object{
		Kind:      KindRelation,
		ID:        int64(r.ID),
		Version:   r.Version,
		Changeset: int64(r.ChangesetID),
		User:      r.User,
		Timestamp: r.Timestamp,
		Deleted:   !r.Visible,
		Tags:      fromOSMTags(r.Tags),
		Members:   members,
	}
}

func memberTypeCode(t osm.Type) string {
	switch t {
	case osm.TypeNode:
		return "n"
	case osm.TypeWay:
		return "w"
	case osm.TypeRelation:
		return "r"
	default:
		return "?"
	}
}

func fromOSMTags(tags osm.Tags) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, Tag{Key: t.Key, Value: t.Value})
	}
	return out
}
