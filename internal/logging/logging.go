// Package logging provides the append-only rotating query log.
//
// Logging is best-effort: a sink that cannot be opened degrades to a
// no-op logger so that query execution is never blocked by log failures.
package logging

import (
	"fmt"
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the rotating file sink.
type Config struct {
	// File is the log file path. Empty disables file logging.
	File string

	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to retain.
	MaxBackups int
}

// Logger writes structured single-line records for query and call events.
type Logger struct {
	l      *log.Logger
	closer io.Closer
}

// New opens a rotating file logger. It never returns an error: if the sink
// cannot be used the returned logger discards output.
func New(cfg Config) *Logger {
	if cfg.File == "" {
		return &Logger{l: log.New(io.Discard, "", 0)}
	}
	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return &Logger{
		l:      log.New(sink, "", log.LstdFlags),
		closer: sink,
	}
}

// Discard returns a logger that drops everything. Used in tests and as the
// fallback when no sink is configured.
func Discard() *Logger {
	return &Logger{l: log.New(io.Discard, "", 0)}
}

// Infof writes an INFO line tagged with the originating component.
func (lg *Logger) Infof(component, format string, args ...interface{}) {
	lg.l.Printf("INFO  | [%s] %s", component, fmt.Sprintf(format, args...))
}

// Warnf writes a WARN line tagged with the originating component.
func (lg *Logger) Warnf(component, format string, args ...interface{}) {
	lg.l.Printf("WARN  | [%s] %s", component, fmt.Sprintf(format, args...))
}

// Errorf writes an ERROR line tagged with the originating component.
func (lg *Logger) Errorf(component, format string, args ...interface{}) {
	lg.l.Printf("ERROR | [%s] %s", component, fmt.Sprintf(format, args...))
}

// Close flushes and closes the underlying sink, if any.
func (lg *Logger) Close() error {
	if lg.closer == nil {
		return nil
	}
	return lg.closer.Close()
}
