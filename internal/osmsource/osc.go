package osmsource

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/paulmach/osm"
)

// Diff is the decoded contents of one minutely-replication .osc file: an
// ordered list of create/modify/delete groups, each carrying the nodes,
// ways and relations affected.
type Diff struct {
	change osm.Change
}

// ParseDiff decodes an OsmChange XML document (already gzip-decompressed
// by the caller) into a Diff.
func ParseDiff(r io.Reader) (*Diff, error) {
	var c osm.Change
	if err := xml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode osmChange: %w", err)
	}
	return &Diff{change: c}, nil
}

// Empty reports whether the diff carries no entities at all.
func (d *Diff) Empty() bool {
	return len(d.entities(d.change.Create)) == 0 &&
		len(d.entities(d.change.Modify)) == 0 &&
		len(d.entities(d.change.Delete)) == 0
}

// Each visits every object in the diff in create, modify, delete order,
// which is also document order within the OsmChange file; nodes, then
// ways, then relations within each group, matching osmChange layout.
// Deleted entities are marked Deleted so the handler treats them as
// tombstones instead of re-emitting statements for them.
func (d *Diff) Each(visit func(Object) error) error {
	if err := d.eachGroup(d.change.Create, false, visit); err != nil {
		return err
	}
	if err := d.eachGroup(d.change.Modify, false, visit); err != nil {
		return err
	}
	return d.eachGroup(d.change.Delete, true, visit)
}

func (d *Diff) entities(group *osm.OSM) []Object {
	if group == nil {
		return nil
	}
	out := make([]Object, 0, len(group.Nodes)+len(group.Ways)+len(group.Relations))
	for _, n := range group.Nodes {
		out = append(out, FromNode(n))
	}
	for _, w := range group.Ways {
		out = append(out, FromWay(w, nil))
	}
	for _, r := range group.Relations {
		out = append(out, FromRelation(r))
	}
	return out
}

func (d *Diff) eachGroup(group *osm.OSM, deleted bool, visit func(Object) error) error {
	if group == nil {
		return nil
	}
	for _, obj := range d.entities(group) {
		obj.Deleted = obj.Deleted || deleted
		if err := visit(obj); err != nil {
			return err
		}
	}
	return nil
}
