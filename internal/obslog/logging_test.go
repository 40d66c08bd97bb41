package obslog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputSplitterRoutesByLevel(t *testing.T) {
	splitter := &OutputSplitter{}

	tests := []struct {
		name    string
		message []byte
	}{
		{"ErrorLevel", []byte(`time="2024-01-15T10:30:00Z" level=error msg="flush failed"`)},
		{"InfoLevel", []byte(`time="2024-01-15T10:30:00Z" level=info msg="replication tick"`)},
		{"WarnLevel", []byte(`time="2024-01-15T10:30:00Z" level=warning msg="fetch diff failed"`)},
		{"ErrorWordInMessage", []byte(`time="2024-01-15T10:30:00Z" level=info msg="no error here"`)},
		{"Empty", []byte(``)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := splitter.Write(tt.message)
			assert.NoError(t, err)
			assert.Equal(t, len(tt.message), n)
		})
	}
}

func TestOutputSplitterCaseSensitive(t *testing.T) {
	assert.True(t, bytes.Contains([]byte("prefix level=error suffix"), []byte("level=error")))
	assert.False(t, bytes.Contains([]byte("LEVEL=ERROR"), []byte("level=error")))
}

func TestLoggerInitialized(t *testing.T) {
	assert.NotNil(t, Logger)
	_, ok := Logger.Out.(*OutputSplitter)
	assert.True(t, ok, "package Logger should use OutputSplitter")
}

func TestNewAppliesLevelAndFormat(t *testing.T) {
	logger := New(Config{Level: LevelDebug, Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestContextLoggerFieldsAreImmutableAcrossDerivation(t *testing.T) {
	base := WithFields(New(DefaultConfig()), map[string]interface{}{"command": "parse"})
	child := base.WithField("seq", int64(42))

	assert.Equal(t, map[string]interface{}{"command": "parse"}, map[string]interface{}(toMap(base.fields)))
	assert.Equal(t, int64(42), child.fields["seq"])
	_, baseHasSeq := base.fields["seq"]
	assert.False(t, baseHasSeq)
}

func toMap(f logrus.Fields) map[string]interface{} {
	m := make(map[string]interface{}, len(f))
	for k, v := range f {
		m[k] = v
	}
	return m
}

func TestCommandLoggerTagsCommandVersionAndRunID(t *testing.T) {
	cl := CommandLogger(New(DefaultConfig()), "parse")
	assert.Equal(t, "parse", cl.fields["command"])
	assert.NotEmpty(t, cl.fields["version"])
	runID, ok := cl.fields["run_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, runID, "run-")
}

func TestStructuredLogLevelSelection(t *testing.T) {
	sl := NewStructuredLog(nil).Level(LevelWarn)
	assert.Equal(t, logrus.WarnLevel, sl.level)
}

func TestLogOperationReturnsFnError(t *testing.T) {
	logger := WithFields(New(DefaultConfig()), nil)
	wantErr := errors.New("boom")

	err := LogOperation(logger, "parse", func() error { return wantErr })
	assert.Equal(t, wantErr, err)

	err = LogOperation(logger, "parse", func() error { return nil })
	assert.NoError(t, err)
}

func TestLogDurationLogsOnInvocation(t *testing.T) {
	logger := WithFields(New(DefaultConfig()), nil)
	stop := LogDuration(logger, "update")
	assert.NotPanics(t, stop)
}

func TestLogPanicReturnsNilWithoutPanic(t *testing.T) {
	logger := WithFields(New(DefaultConfig()), nil)

	func() {
		defer func() {
			r := LogPanic(logger)
			assert.Nil(t, r)
		}()
	}()
}

func TestLogPanicRecoversAndReturnsValue(t *testing.T) {
	logger := WithFields(New(DefaultConfig()), nil)
	var recovered interface{}

	func() {
		defer func() {
			recovered = LogPanic(logger)
		}()
		panic("kaboom")
	}()

	require.NotNil(t, recovered)
	assert.Equal(t, "kaboom", recovered)
}

func TestIngestFieldsShape(t *testing.T) {
	fields := IngestFields("n:1/0/0 w:0/0/0 r:0/0/0 new:5", 3, 2*time.Second)
	assert.Equal(t, "n:1/0/0 w:0/0/0 r:0/0/0 new:5", fields["stats"])
	assert.Equal(t, 3, fields["files"])
	assert.Equal(t, int64(2000), fields["duration_ms"])
}

func TestReplicationFieldsShape(t *testing.T) {
	fields := ReplicationFields(42, 5*time.Second, 10, 60*time.Second)
	assert.Equal(t, int64(42), fields["seq"])
	assert.Equal(t, 5, fields["lag_seconds"])
	assert.Equal(t, 10, fields["objects"])
	assert.Equal(t, "1m0s", fields["elapsed"])
}
