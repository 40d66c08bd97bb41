package vocab

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeaderOrder(t *testing.T) {
	h := Header()
	assert.Contains(t, h, "@prefix wd: <http://www.wikidata.org/entity/> .")
	assert.Contains(t, h, "@prefix osmm: <https://www.openstreetmap.org/meta/> .")
	assert.Less(t, strings.Index(h, "@prefix wd:"), strings.Index(h, "@prefix osmm:"))
	assert.True(t, len(h) > 0 && h[len(h)-1] == '\n' && h[len(h)-2] == '\n')
}

func TestLiterals(t *testing.T) {
	t.Run("date literal", func(t *testing.T) {
		ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, `"2020-01-01T00:00:00Z"^^xsd:dateTime`, DateLiteral(ts))
	})

	t.Run("int literal", func(t *testing.T) {
		assert.Equal(t, `"5"^^xsd:integer`, IntLiteral(5))
	})

	t.Run("bool literal", func(t *testing.T) {
		assert.Equal(t, `"true"^^xsd:boolean`, BoolLiteral(true))
		assert.Equal(t, `"false"^^xsd:boolean`, BoolLiteral(false))
	})

	t.Run("point literal 2d", func(t *testing.T) {
		assert.Equal(t, `"Point(13 52)"^^geo:wktLiteral`, PointLiteral(13, 52, 0, false))
	})

	t.Run("string literal preserves non-ascii", func(t *testing.T) {
		assert.Equal(t, `"Straße"`, StringLiteral("Straße"))
	})
}

func TestValidKey(t *testing.T) {
	t.Run("simple key", func(t *testing.T) {
		assert.True(t, ValidKey("highway"))
	})

	t.Run("digit-leading fragment before colon is invalid", func(t *testing.T) {
		assert.False(t, ValidKey("3d:shape"))
	})

	t.Run("digit leading with no colon is fine", func(t *testing.T) {
		assert.True(t, ValidKey("3dshape"))
	})

	t.Run("too long", func(t *testing.T) {
		long := ""
		for i := 0; i < 61; i++ {
			long += "a"
		}
		assert.False(t, ValidKey(long))
	})
}

func TestRenderTag(t *testing.T) {
	t.Run("plain tag", func(t *testing.T) {
		assert.Equal(t, `osmt:highway "bus_stop"`, RenderTag("highway", "bus_stop"))
	})

	t.Run("bad key", func(t *testing.T) {
		assert.Equal(t, `osmm:badkey "3d:shape"`, RenderTag("3d:shape", "cube"))
	})

	t.Run("wikidata single qid", func(t *testing.T) {
		assert.Equal(t, "osmt:wikidata wd:Q64", RenderTag("wikidata", "Q64"))
	})

	t.Run("wikidata qid list", func(t *testing.T) {
		assert.Equal(t, "osmt:wikidata wd:Q64,wd:Q42", RenderTag("wikidata", "Q64;Q42"))
	})

	t.Run("wikidata non-matching value falls through to string", func(t *testing.T) {
		assert.Equal(t, `osmt:wikidata "foo"`, RenderTag("wikidata", "foo"))
	})

	t.Run("wikipedia link", func(t *testing.T) {
		got := RenderTag("wikipedia", "de:Berlin, Haupt straße")
		assert.Equal(t, "osmt:wikipedia <https://de.wikipedia.org/wiki/Berlin,_Haupt_stra%C3%9Fe>", got)
	})
}
