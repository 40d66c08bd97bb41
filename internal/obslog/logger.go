package obslog

import (
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"osm2rdf.sophox.org/version"
)

// Level is one of the standard logrus severities, by name. The CLI
// selects LevelDebug with -v/--verbose and LevelInfo otherwise.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Config configures a logger built by New.
type Config struct {
	Level      Level
	Format     string // "json" or "text"
	AddCaller  bool
	TimeFormat string
}

// DefaultConfig returns the logger configuration used when no flags
// override it.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     "text",
		AddCaller:  false,
		TimeFormat: time.RFC3339,
	}
}

// New builds a logrus.Logger from config, routed through OutputSplitter.
func New(config Config) *logrus.Logger {
	logger := logrus.New()

	switch config.Level {
	case LevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		logger.SetLevel(logrus.WarnLevel)
	case LevelError:
		logger.SetLevel(logrus.ErrorLevel)
	case LevelFatal:
		logger.SetLevel(logrus.FatalLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: config.TimeFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: config.TimeFormat,
			FullTimestamp:   true,
		})
	}

	logger.SetReportCaller(config.AddCaller)
	logger.SetOutput(&OutputSplitter{})

	return logger
}

// ContextLogger carries a fixed set of structured fields (job, sequence id,
// subcommand, ...) through a call chain without re-stating them at every
// call site.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// WithFields returns a ContextLogger rooted at logger (or the package
// Logger if nil) carrying the given base fields.
func WithFields(logger *logrus.Logger, fields map[string]interface{}) *ContextLogger {
	if logger == nil {
		logger = Logger
	}
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

// WithField returns a copy of cl with key=value added.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	return cl.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a copy of cl with the given fields merged in.
func (cl *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	merged := make(logrus.Fields, len(cl.fields)+len(fields))
	for k, v := range cl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ContextLogger{logger: cl.logger, fields: merged}
}

// WithError adds the error's message as a field.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	return cl.WithField("error", err.Error())
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Debugf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Debugf(format, args...)
}
func (cl *ContextLogger) Info(msg string) { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Infof(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Infof(format, args...)
}
func (cl *ContextLogger) Warn(msg string) { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Warnf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Warnf(format, args...)
}
func (cl *ContextLogger) Error(msg string) { cl.logger.WithFields(cl.fields).Error(msg) }
func (cl *ContextLogger) Errorf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Errorf(format, args...)
}
func (cl *ContextLogger) Fatal(msg string) { cl.logger.WithFields(cl.fields).Fatal(msg) }

// CommandLogger creates a logger pre-tagged with the running subcommand
// name, module version, and a fresh run id, used as the base for
// parse/update loggers. The run id gives every log line from one
// invocation a shared correlation id, the way run-%s.../op-%s... ids tag
// a single workflow execution in this family's tracing middleware.
func CommandLogger(logger *logrus.Logger, command string) *ContextLogger {
	return WithFields(logger, map[string]interface{}{
		"command": command,
		"version": version.ModuleVersion(),
		"run_id":  fmt.Sprintf("run-%s", uuid.New().String()[:8]),
	})
}

// LogOperation logs the start and end of fn, including duration, and
// returns fn's error unchanged.
func LogOperation(logger *ContextLogger, operation string, fn func() error) error {
	start := time.Now()
	logger.WithField("operation", operation).Info("operation started")

	err := fn()

	entry := logger.WithFields(map[string]interface{}{
		"operation":   operation,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
		return err
	}
	entry.Info("operation completed")
	return nil
}

// LogDuration returns a function that logs the elapsed time since it was
// created, for use with defer around a single operation.
func LogDuration(logger *ContextLogger, operation string) func() {
	start := time.Now()
	return func() {
		logger.WithFields(map[string]interface{}{
			"operation":   operation,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("operation completed")
	}
}

// LogPanic recovers a panic, logs it with a stack trace, and returns the
// recovered value (nil if there was no panic) so the caller can decide
// whether to turn it into an error or re-raise it.
func LogPanic(logger *ContextLogger) interface{} {
	r := recover()
	if r == nil {
		return nil
	}
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	logger.WithFields(map[string]interface{}{
		"panic":      fmt.Sprintf("%v", r),
		"stacktrace": string(buf[:n]),
	}).Error("panic recovered")
	return r
}

// IngestFields returns standard fields for a parse-subcommand progress
// log line.
func IngestFields(stats string, fileCount int, duration time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"stats":       stats,
		"files":       fileCount,
		"duration_ms": duration.Milliseconds(),
	}
}

// ReplicationFields returns standard fields for a replication tick log
// line: sequence id, replication lag behind the last observed object
// timestamp, objects handled since the last tick, and time elapsed
// since the last tick.
func ReplicationFields(seqID int64, lag time.Duration, objects int, elapsed time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"seq":         seqID,
		"lag_seconds": int(lag.Seconds()),
		"objects":     objects,
		"elapsed":     elapsed.String(),
	}
}

// StructuredLog is a builder for one-off structured log entries at a
// chosen level.
type StructuredLog struct {
	logger *logrus.Logger
	fields logrus.Fields
	level  logrus.Level
}

// NewStructuredLog creates a structured log builder rooted at logger (or
// the package Logger if nil).
func NewStructuredLog(logger *logrus.Logger) *StructuredLog {
	if logger == nil {
		logger = Logger
	}
	return &StructuredLog{logger: logger, fields: make(logrus.Fields), level: logrus.InfoLevel}
}

func (sl *StructuredLog) WithField(key string, value interface{}) *StructuredLog {
	sl.fields[key] = value
	return sl
}

func (sl *StructuredLog) WithFields(fields map[string]interface{}) *StructuredLog {
	for k, v := range fields {
		sl.fields[k] = v
	}
	return sl
}

func (sl *StructuredLog) Level(level Level) *StructuredLog {
	switch level {
	case LevelDebug:
		sl.level = logrus.DebugLevel
	case LevelWarn:
		sl.level = logrus.WarnLevel
	case LevelError:
		sl.level = logrus.ErrorLevel
	case LevelFatal:
		sl.level = logrus.FatalLevel
	default:
		sl.level = logrus.InfoLevel
	}
	return sl
}

func (sl *StructuredLog) Log(msg string) {
	sl.logger.WithFields(sl.fields).Log(sl.level, msg)
}
