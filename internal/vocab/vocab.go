// Package vocab holds the fixed IRI prefix map and the literal/tag
// rendering rules shared by the file and SPARQL pipelines. Every output
// statement, whether bound for a .ttl.gz file or a SPARQL Update request,
// goes through the renderers in this package so the two pipelines never
// disagree on how a tag or a timestamp looks on the wire.
package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Prefix is one of the ten fixed namespace abbreviations used throughout
// the output. The set and the order below is normative: it is emitted
// verbatim as the header of every .ttl.gz file and as the preamble of
// every SPARQL Update request.
type Prefix string

const (
	Wikidata  Prefix = "wd"
	XSD       Prefix = "xsd"
	Geo       Prefix = "geo"
	Schema    Prefix = "schema"
	OsmRoot   Prefix = "osmroot"
	OsmNode   Prefix = "osmnode"
	OsmWay    Prefix = "osmway"
	OsmRel    Prefix = "osmrel"
	OsmTag    Prefix = "osmt"
	OsmMeta   Prefix = "osmm"
)

// PrefixOrder is the fixed emission order of the prefix map.
var PrefixOrder = []Prefix{Wikidata, XSD, Geo, Schema, OsmRoot, OsmNode, OsmWay, OsmRel, OsmTag, OsmMeta}

// PrefixIRI maps every known prefix to its full namespace IRI.
var PrefixIRI = map[Prefix]string{
	Wikidata: "http://www.wikidata.org/entity/",
	XSD:      "http://www.w3.org/2001/XMLSchema#",
	Geo:      "http://www.opengis.net/ont/geosparql#",
	Schema:   "http://schema.org/",
	OsmRoot:  "https://www.openstreetmap.org",
	OsmNode:  "https://www.openstreetmap.org/node/",
	OsmWay:   "https://www.openstreetmap.org/way/",
	OsmRel:   "https://www.openstreetmap.org/relation/",
	OsmTag:   "https://wiki.openstreetmap.org/wiki/Key:",
	OsmMeta:  "https://www.openstreetmap.org/meta/",
}

// Header renders the ten @prefix declarations, one per line, in the fixed
// order, followed by a trailing blank line, matching the .ttl.gz file
// layout in the output-file-format section of the design.
func Header() string {
	var buf bytes.Buffer
	for _, p := range PrefixOrder {
		fmt.Fprintf(&buf, "@prefix %s: <%s> .\n", p, PrefixIRI[p])
	}
	buf.WriteByte('\n')
	return buf.String()
}

// SparqlPreamble renders the PREFIX declarations SPARQL 1.1 Update
// expects in front of a request body.
func SparqlPreamble() string {
	var buf bytes.Buffer
	for _, p := range PrefixOrder {
		fmt.Fprintf(&buf, "PREFIX %s: <%s>\n", p, PrefixIRI[p])
	}
	return buf.String()
}

// EntitySubject renders the prefixed subject IRI for an OSM entity, e.g.
// "osmnode:12345". kind must be one of "n", "w", "r".
func EntitySubject(kind string, id int64) string {
	switch kind {
	case "n":
		return fmt.Sprintf("%s:%d", OsmNode, id)
	case "w":
		return fmt.Sprintf("%s:%d", OsmWay, id)
	case "r":
		return fmt.Sprintf("%s:%d", OsmRel, id)
	default:
		return fmt.Sprintf("osmunknown:%d", id)
	}
}

// StringLiteral JSON-escapes s (preserving non-ASCII verbatim, no \uXXXX
// expansion) and wraps it in double quotes.
func StringLiteral(s string) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	// encoding/json escapes '<', '>' and '&' by default (HTML escaping);
	// disable that so markup characters in tag values round-trip as-is.
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return `""`
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// DateLiteral renders t as an ISO-8601 second-precision UTC xsd:dateTime
// literal: "YYYY-MM-DDTHH:MM:SSZ"^^xsd:dateTime.
func DateLiteral(t time.Time) string {
	return fmt.Sprintf(`"%s"^^%s:dateTime`, t.UTC().Format("2006-01-02T15:04:05Z"), XSD)
}

// IntLiteral renders n as "<digits>"^^xsd:integer.
func IntLiteral(n int64) string {
	return fmt.Sprintf(`"%d"^^%s:integer`, n, XSD)
}

// BoolLiteral renders b as "true"^^xsd:boolean / "false"^^xsd:boolean.
func BoolLiteral(b bool) string {
	return fmt.Sprintf(`"%t"^^%s:boolean`, b, XSD)
}

// PointLiteral renders a WKT Point as a geo:wktLiteral. z is included,
// space-separated, only when present (hasZ true).
func PointLiteral(x, y, z float64, hasZ bool) string {
	if hasZ {
		return fmt.Sprintf(`"Point(%s %s %s)"^^%s:wktLiteral`, trimFloat(x), trimFloat(y), trimFloat(z), Geo)
	}
	return fmt.Sprintf(`"Point(%s %s)"^^%s:wktLiteral`, trimFloat(x), trimFloat(y), Geo)
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

// KeyRegex is the normative local-name regex for OSM tag keys: letters,
// digits or underscore at either end, letters/digits/underscore/colon/
// hyphen in the middle, overall length at most 60. Reproduced bit-exact
// per the design notes. A colon splits the key into fragments; the rule
// is applied to the whole string, but the fragment preceding the first
// colon additionally may not begin with a digit (it must look like a
// namespace, not a number) — this is what makes "3d:shape" a bad key
// even though a bare "3dshape" would be fine.
var KeyRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_:\-]{0,58}[A-Za-z0-9_]$|^[A-Za-z0-9_]$`)

var keyFirstFragmentDigitLeading = regexp.MustCompile(`^[0-9][^:]*:`)

// ValidKey reports whether k is a legal osmt: local name.
func ValidKey(k string) bool {
	if len(k) > 60 {
		return false
	}
	if !KeyRegex.MatchString(k) {
		return false
	}
	return !keyFirstFragmentDigitLeading.MatchString(k)
}

// WikidataID matches a single Wikidata QID.
var WikidataID = regexp.MustCompile(`^Q[1-9][0-9]{0,18}$`)

// WikidataIDList matches a semicolon-separated list of two or more QIDs.
var WikidataIDList = regexp.MustCompile(`^Q[1-9][0-9]{0,18}(;Q[1-9][0-9]{0,18})+$`)

// WikipediaTag matches "lang:title" values, e.g. "de:Berlin".
var WikipediaTag = regexp.MustCompile(`^([-a-z]+):(.+)$`)

// WikipediaSafeSet is the URL-encoding safe set preserved (not
// percent-encoded) in Wikipedia title links. The superset with '#' is
// chosen over the narrower variant so anchor fragments survive intact.
const WikipediaSafeSet = ";@$!*(),/~:#"
