package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePoint(t *testing.T) {
	t.Run("valid point", func(t *testing.T) {
		blob, err := wkb.Marshal(orb.Point{13.0, 52.0})
		require.NoError(t, err)

		x, y, _, hasZ, err := DecodePoint(blob)
		require.NoError(t, err)
		assert.Equal(t, 13.0, x)
		assert.Equal(t, 52.0, y)
		assert.False(t, hasZ)
	})

	t.Run("malformed blob", func(t *testing.T) {
		_, _, _, _, err := DecodePoint([]byte{0x01, 0x02, 0x03})
		assert.Error(t, err)
	})

	t.Run("wrong geometry type", func(t *testing.T) {
		blob, err := wkb.Marshal(orb.LineString{{0, 0}, {1, 1}})
		require.NoError(t, err)

		_, _, _, _, err = DecodePoint(blob)
		assert.Error(t, err)
	})
}

func TestRepresentativePoint(t *testing.T) {
	t.Run("single node way falls back to that node", func(t *testing.T) {
		blob, err := wkb.Marshal(orb.LineString{{13.4, 52.5}})
		require.NoError(t, err)

		x, y, _, _, err := RepresentativePoint(blob)
		require.NoError(t, err)
		assert.Equal(t, 13.4, x)
		assert.Equal(t, 52.5, y)
	})

	t.Run("straight line midpoint lies on the line", func(t *testing.T) {
		blob, err := wkb.Marshal(orb.LineString{{0, 0}, {10, 0}})
		require.NoError(t, err)

		x, y, _, _, err := RepresentativePoint(blob)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, x, 1e-9)
		assert.InDelta(t, 0.0, y, 1e-9)
	})

	t.Run("empty linestring errors", func(t *testing.T) {
		blob, err := wkb.Marshal(orb.LineString{})
		require.NoError(t, err)

		_, _, _, _, err = RepresentativePoint(blob)
		assert.Error(t, err)
	})
}
