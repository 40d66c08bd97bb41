package filepipeline

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm2rdf.sophox.org/internal/rdf"
)

func TestWriteTurtleGzProducesHeaderAndEntity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osm-000001.ttl.gz")

	batch := &rdf.Batch{
		Entities: []rdf.Entity{
			{
				Prefix: "osmnode",
				ID:     10,
				Statements: []rdf.Statement{
					rdf.Tag("highway", "bus_stop"),
					rdf.Str("osmm:type", "n"),
				},
			},
		},
	}
	highWater := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := writeTurtleGz(path, batch, highWater)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "@prefix wd: <http://www.wikidata.org/entity/> .")
	assert.Contains(t, content, "osmnode:10\n")
	assert.Contains(t, content, `osmt:highway "bus_stop";`)
	assert.Contains(t, content, `osmm:type "n".`)
	assert.Contains(t, content, "osmroot: schema:dateModified")
}

func TestWriteTurtleGzOmitsWatermarkBeforeEpoch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osm-000001.ttl.gz")

	batch := &rdf.Batch{Entities: []rdf.Entity{{Prefix: "osmnode", ID: 1, Statements: []rdf.Statement{rdf.Str("osmm:type", "n")}}}}

	err := writeTurtleGz(path, batch, time.Time{})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "schema:dateModified")
}

func TestProducerFlushesOnThreshold(t *testing.T) {
	dir := t.TempDir()
	pool := NewPool(dir, 2, nil)
	pool.Start()

	producer := NewProducer(pool, 1, nil)
	for i := 0; i < 5; i++ {
		err := producer.Accept(rdf.Entity{
			Prefix:     "osmnode",
			ID:         int64(i),
			Statements: []rdf.Statement{rdf.Str("osmm:type", "n"), rdf.Str("osmm:user", "x")},
		}, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), false)
		require.NoError(t, err)
	}
	require.NoError(t, producer.Finish())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Regexp(t, `^osm-\d{6}\.ttl\.gz$`, e.Name())
	}
}
