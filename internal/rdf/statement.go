// Package rdf implements the Statement tagged union and its rendering to
// Turtle predicate-object fragments. Rendering is total: it never
// returns an error, substituting an osmm:loc:error statement for
// geometry payloads that fail to decode.
package rdf

import (
	"time"

	"osm2rdf.sophox.org/internal/geometry"
	"osm2rdf.sophox.org/internal/vocab"
)

// Kind discriminates the statement variants.
type Kind int

const (
	KindBool Kind = iota
	KindDate
	KindInt
	KindRef
	KindStr
	KindTag
	KindWay
	KindPoint
)

// Statement is a closed tagged union with one arm per statement kind. A
// given value only populates the fields relevant to its Kind; Render
// dispatches on Kind and ignores the rest.
type Statement struct {
	Kind Kind

	// Predicate is the prefixed predicate IRI, e.g. "osmm:type". Used by
	// every kind except Tag, which derives its own predicate from
	// TagKey.
	Predicate string

	BoolValue bool
	DateValue time.Time
	IntValue  int64
	RefValue  string // prefixed object IRI, e.g. "osmway:99"
	StrValue  string

	// Tag payload: a raw OSM key/value pair, validated and rewritten at
	// render time by vocab.RenderTag.
	TagKey   string
	TagValue string

	// WKB holds raw geometry bytes: a point for KindPoint, a linestring
	// for KindWay (reduced to its representative point at render time).
	WKB []byte
}

// Bool builds an (osmm:isClosed-style) boolean statement.
func Bool(predicate string, v bool) Statement {
	return Statement{Kind: KindBool, Predicate: predicate, BoolValue: v}
}

// Date builds a metadata timestamp statement.
func Date(predicate string, v time.Time) Statement {
	return Statement{Kind: KindDate, Predicate: predicate, DateValue: v}
}

// Int builds a metadata integer statement.
func Int(predicate string, v int64) Statement {
	return Statement{Kind: KindInt, Predicate: predicate, IntValue: v}
}

// Ref builds a reference-object statement, e.g. osmm:has <member-iri>.
func Ref(predicate, objectIRI string) Statement {
	return Statement{Kind: KindRef, Predicate: predicate, RefValue: objectIRI}
}

// Str builds a plain string-literal statement.
func Str(predicate, v string) Statement {
	return Statement{Kind: KindStr, Predicate: predicate, StrValue: v}
}

// Tag builds a raw OSM tag statement; rendering applies the bad-key,
// Wikidata and Wikipedia rewriting rules.
func Tag(key, value string) Statement {
	return Statement{Kind: KindTag, TagKey: key, TagValue: value}
}

// Point builds a node-location statement from a WKB point blob.
func Point(predicate string, wkb []byte) Statement {
	return Statement{Kind: KindPoint, Predicate: predicate, WKB: wkb}
}

// Way builds a way-location statement from a WKB linestring blob; it
// reduces to the line's representative interior point at render time.
func Way(predicate string, wkb []byte) Statement {
	return Statement{Kind: KindWay, Predicate: predicate, WKB: wkb}
}

// Render produces the "<predicate> <object>" Turtle fragment for s. It
// never fails: geometry decode errors become an osmm:loc:error Str
// statement instead, and the Tag variant always yields a legal fragment
// (badkey, wikidata, wikipedia, or the plain osmt: form).
func (s Statement) Render() string {
	switch s.Kind {
	case KindBool:
		return s.Predicate + " " + vocab.BoolLiteral(s.BoolValue)
	case KindDate:
		return s.Predicate + " " + vocab.DateLiteral(s.DateValue)
	case KindInt:
		return s.Predicate + " " + vocab.IntLiteral(s.IntValue)
	case KindRef:
		return s.Predicate + " " + s.RefValue
	case KindStr:
		return s.Predicate + " " + vocab.StringLiteral(s.StrValue)
	case KindTag:
		return vocab.RenderTag(s.TagKey, s.TagValue)
	case KindPoint:
		x, y, z, hasZ, err := geometry.DecodePoint(s.WKB)
		if err != nil {
			return vocab.OsmMeta.String() + ":loc:error " + vocab.StringLiteral(err.Error())
		}
		return s.Predicate + " " + vocab.PointLiteral(x, y, z, hasZ)
	case KindWay:
		x, y, z, hasZ, err := geometry.RepresentativePoint(s.WKB)
		if err != nil {
			return vocab.OsmMeta.String() + ":loc:error " + vocab.StringLiteral(err.Error())
		}
		return s.Predicate + " " + vocab.PointLiteral(x, y, z, hasZ)
	default:
		return vocab.OsmMeta.String() + ":loc:error " + vocab.StringLiteral("unknown statement kind")
	}
}
