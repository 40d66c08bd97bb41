package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencePath(t *testing.T) {
	assert.Equal(t, "000/000/001", sequencePath(1))
	assert.Equal(t, "001/234/567", sequencePath(1234567))
}

func TestParseSequenceFromState(t *testing.T) {
	body := []byte("#comment\ntimestamp=2024-01-02T03\\:04\\:05Z\nsequenceNumber=42\n")
	seq, err := parseSequenceFromState(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestParseSequenceFromStateMissing(t *testing.T) {
	_, err := parseSequenceFromState([]byte("nothing here"))
	assert.Error(t, err)
}

func TestDeriveStartSequencePrefersFlag(t *testing.T) {
	flag := int64(99)
	seq, err := DeriveStartSequence(&flag, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(99), seq)
}
