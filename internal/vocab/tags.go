package vocab

import (
	"strings"
)

// RenderTag implements the four-step tag rendering procedure: bad-key
// fallback, Wikidata QID/list shorthand, Wikipedia link synthesis, and
// the plain osmt: string fallback. It returns the rendered
// "<predicate> <object>" fragment (no trailing punctuation, no subject).
//
// Callers are expected to have already dropped `created_by` tags; this
// function does not special-case that key.
func RenderTag(key, value string) string {
	if !ValidKey(key) {
		return OsmMeta.String() + ":badkey " + StringLiteral(key)
	}

	if strings.Contains(key, "wikidata") {
		if WikidataID.MatchString(value) {
			return OsmTag.String() + ":" + key + " " + Wikidata.String() + ":" + value
		}
		if WikidataIDList.MatchString(value) {
			ids := strings.Split(value, ";")
			objects := make([]string, len(ids))
			for i, id := range ids {
				objects[i] = Wikidata.String() + ":" + id
			}
			return OsmTag.String() + ":" + key + " " + strings.Join(objects, ",")
		}
		return OsmTag.String() + ":" + key + " " + StringLiteral(value)
	}

	if strings.Contains(key, "wikipedia") {
		if m := WikipediaTag.FindStringSubmatch(value); m != nil {
			lang, title := m[1], m[2]
			return OsmTag.String() + ":" + key + " <" + wikipediaURL(lang, title) + ">"
		}
	}

	return OsmTag.String() + ":" + key + " " + StringLiteral(value)
}

func wikipediaURL(lang, title string) string {
	underscored := strings.ReplaceAll(title, " ", "_")
	return "https://" + lang + ".wikipedia.org/wiki/" + encodeSafeSet(underscored)
}

// encodeSafeSet percent-encodes every byte of s except the URL
// unreserved characters (ASCII letters, digits, '-', '.', '_', '~') and
// the characters in WikipediaSafeSet, which pass through unescaped.
// Non-ASCII runes are encoded one UTF-8 byte at a time.
func encodeSafeSet(s string) string {
	const hex = "0123456789ABCDEF"
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) || strings.IndexByte(WikipediaSafeSet, b) >= 0 {
			buf.WriteByte(b)
			continue
		}
		buf.WriteByte('%')
		buf.WriteByte(hex[b>>4])
		buf.WriteByte(hex[b&0xf])
	}
	return buf.String()
}

func isUnreserved(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

// String renders a Prefix as its bare name, e.g. "osmt".
func (p Prefix) String() string {
	return string(p)
}
