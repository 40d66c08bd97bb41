// Package geometry decodes the WKB blobs the OSM source adapters attach
// to nodes and ways into the (x, y[, z]) coordinates the rdf package
// renders as geo:wktLiteral points. Way geometries are reduced to a
// single representative point: the point at half the line's length,
// which lies on the line itself. Closed ways are handled the same way,
// so their point lies on the ring, not inside the enclosed area.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// DecodePoint decodes a WKB point blob into its coordinates. z/hasZ are
// always zero/false: the node geometries this module receives are 2D.
func DecodePoint(blob []byte) (x, y, z float64, hasZ bool, err error) {
	geom, err := wkb.Unmarshal(blob)
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("decode point wkb: %w", err)
	}
	pt, ok := geom.(orb.Point)
	if !ok {
		return 0, 0, 0, false, fmt.Errorf("decode point wkb: geometry is %T, not a point", geom)
	}
	return pt[0], pt[1], 0, false, nil
}

// RepresentativePoint decodes a WKB linestring and returns an interior
// point of the line. A line with exactly one coordinate falls back to
// treating the way as that single node, per the way-with-one-node rule.
func RepresentativePoint(blob []byte) (x, y, z float64, hasZ bool, err error) {
	geom, err := wkb.Unmarshal(blob)
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("decode way wkb: %w", err)
	}
	line, ok := geom.(orb.LineString)
	if !ok {
		return 0, 0, 0, false, fmt.Errorf("decode way wkb: geometry is %T, not a linestring", geom)
	}
	if len(line) == 0 {
		return 0, 0, 0, false, errors.New("decode way wkb: empty linestring")
	}
	if len(line) == 1 {
		return line[0][0], line[0][1], 0, false, nil
	}
	pt := midpoint(line)
	return pt[0], pt[1], 0, false, nil
}

// midpoint walks line and returns the point at half its total length,
// a cheap stand-in for a geometry engine's "point on surface" that is
// always guaranteed to lie on the line itself.
func midpoint(line orb.LineString) orb.Point {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += segmentLength(line[i-1], line[i])
	}
	if total == 0 {
		return line[len(line)/2]
	}
	target := total / 2
	walked := 0.0
	for i := 1; i < len(line); i++ {
		seg := segmentLength(line[i-1], line[i])
		if walked+seg >= target {
			frac := (target - walked) / seg
			return orb.Point{
				line[i-1][0] + frac*(line[i][0]-line[i-1][0]),
				line[i-1][1] + frac*(line[i][1]-line[i-1][1]),
			}
		}
		walked += seg
	}
	return line[len(line)-1]
}

func segmentLength(a, b orb.Point) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}
