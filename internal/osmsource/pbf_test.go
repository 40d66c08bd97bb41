package osmsource

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.cache")

	want := map[osm.NodeID]orb.Point{
		1: {11.5, 48.1},
		2: {11.6, 48.2},
	}
	require.NoError(t, saveNodeCache(path, want))

	got, err := loadNodeCache(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadNodeCacheMissingFile(t *testing.T) {
	_, err := loadNodeCache(filepath.Join(t.TempDir(), "missing.cache"))
	assert.Error(t, err)
}
