package sparqlpipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm2rdf.sophox.org/internal/rdf"
)

func TestBufferPutPanicsOnDuplicate(t *testing.T) {
	b := NewBuffer(5000)
	b.Put("osmnode:1", []string{"osmnode:1 osmm:type \"n\" ."})

	assert.Panics(t, func() {
		b.Put("osmnode:1", []string{"osmnode:1 osmm:type \"n\" ."})
	})
}

func TestBufferFullThreshold(t *testing.T) {
	b := NewBuffer(2)
	assert.False(t, b.Full())
	b.Put("osmnode:1", []string{"a", "b", "c"})
	assert.True(t, b.Full())
}

func TestBufferResetClearsState(t *testing.T) {
	b := NewBuffer(5000)
	b.Put("osmnode:1", []string{"a"})
	require.False(t, b.Empty())
	b.Reset()
	assert.True(t, b.Empty())
	assert.False(t, b.Has("osmnode:1"))
}

func TestRenderEntity(t *testing.T) {
	e := rdf.Entity{
		Prefix: "osmnode",
		ID:     10,
		Statements: []rdf.Statement{
			rdf.Tag("highway", "bus_stop"),
		},
	}
	lines := RenderEntity(e)
	require.Len(t, lines, 1)
	assert.Equal(t, `osmnode:10 osmt:highway "bus_stop" .`, lines[0])
}

func TestBuildUpdateIncludesDeleteAndInsert(t *testing.T) {
	b := NewBuffer(5000)
	b.Put("osmnode:1", []string{`osmnode:1 osmm:type "n" .`})
	b.PutDeleted("osmnode:2")

	sparql := BuildUpdate(b, nil, "")
	assert.Contains(t, sparql, "PREFIX osmm: <https://www.openstreetmap.org/meta/>")
	assert.Contains(t, sparql, "DELETE { ?s ?p ?o } WHERE { VALUES ?s { osmnode:1 osmnode:2 }")
	assert.Contains(t, sparql, "FILTER (osmm:task != ?p)")
	assert.Contains(t, sparql, `INSERT { osmnode:1 osmm:type "n" . } WHERE {};`)
	assert.NotContains(t, sparql, "INSERT { osmnode:2")
}

func TestBuildUpdateWithSeqID(t *testing.T) {
	b := NewBuffer(5000)
	b.Put("osmnode:1", []string{`osmnode:1 osmm:type "n" .`})
	seq := int64(42)

	sparql := BuildUpdate(b, &seq, `"2024-01-02T03:04:05Z"^^xsd:dateTime`)
	assert.Contains(t, sparql, `schema:version "42"^^xsd:integer`)
	assert.Contains(t, sparql, "schema:dateModified \"2024-01-02T03:04:05Z\"^^xsd:dateTime")
}
