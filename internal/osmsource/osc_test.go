package osmsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChange = `<?xml version="1.0" encoding="UTF-8"?>
<osmChange version="0.6" generator="test">
  <create>
    <node id="1" version="1" changeset="10" user="alice" uid="1" lat="48.1" lon="11.5" timestamp="2022-01-01T00:00:00Z">
      <tag k="amenity" v="cafe"/>
    </node>
  </create>
  <modify>
    <way id="2" version="2" changeset="11" user="bob" uid="2" timestamp="2022-01-02T00:00:00Z">
      <nd ref="1"/>
      <tag k="highway" v="residential"/>
    </way>
  </modify>
  <delete>
    <node id="3" version="3" changeset="12" user="carol" uid="3" visible="false" timestamp="2022-01-03T00:00:00Z"/>
  </delete>
</osmChange>`

func TestParseDiffVisitsInCreateModifyDeleteOrder(t *testing.T) {
	diff, err := ParseDiff(strings.NewReader(sampleChange))
	require.NoError(t, err)
	assert.False(t, diff.Empty())

	var kinds []Kind
	var deleted []bool
	require.NoError(t, diff.Each(func(obj Object) error {
		kinds = append(kinds, obj.Kind)
		deleted = append(deleted, obj.Deleted)
		return nil
	}))

	require.Len(t, kinds, 3)
	assert.Equal(t, []Kind{KindNode, KindWay, KindNode}, kinds)
	assert.Equal(t, []bool{false, false, true}, deleted)
}

func TestParseDiffEmpty(t *testing.T) {
	diff, err := ParseDiff(strings.NewReader(`<osmChange version="0.6"></osmChange>`))
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}
