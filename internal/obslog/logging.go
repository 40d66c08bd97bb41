// Package obslog provides the structured logging infrastructure shared by
// the parse, update, and replication commands. It is built on logrus, with
// a custom output splitter that routes error-level records to stderr while
// everything else goes to stdout, so containerized deployments can apply
// different handling per stream.
package obslog

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes logrus output to stdout or stderr depending on
// whether the formatted record is an error, so shell pipelines and log
// collectors can separate the two streams without parsing JSON.
type OutputSplitter struct{}

// Write implements io.Writer, inspecting the formatted log line for the
// "level=error" marker logrus' text and JSON formatters both emit.
func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the process-wide default logger, used by WithFields and
// NewStructuredLog when they are given a nil logger. The subcommands do
// not reconfigure it: cli/root.go builds their logger with New from the
// resolved --log-format/-v flags.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}
