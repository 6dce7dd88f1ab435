// Package logs implements the minimal subsystem-tagged logging backend that
// the core's logger package builds on: a shared Backend fans each log line
// out to a set of BackendWriters (e.g. stdout, a rotating file), and each
// subsystem gets its own Logger with an independently adjustable Level.
package logs

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// BackendWriter receives formatted log lines for a subset of levels.
type BackendWriter struct {
	w        io.Writer
	minLevel Level
	errOnly  bool
}

// NewAllLevelsBackendWriter returns a writer that receives every level.
func NewAllLevelsBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelTrace}
}

// NewErrorBackendWriter returns a writer that receives only Error and above.
func NewErrorBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelError, errOnly: true}
}

// Backend fans log records out to its writers and owns the per-subsystem
// Logger instances created from it.
type Backend struct {
	mtx     sync.Mutex
	writers []*BackendWriter
}

// NewBackend constructs a Backend writing to the given writers.
func NewBackend(writers []*BackendWriter) *Backend {
	return &Backend{writers: writers}
}

// Logger returns a new Logger bound to this backend at LevelInfo.
func (b *Backend) Logger(subsystemTag string) Logger {
	return Logger{backend: b, tag: subsystemTag, level: &int32Level{v: LevelInfo}}
}

// Close flushes and closes every underlying writer that supports it.
func (b *Backend) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, bw := range b.writers {
		if c, ok := bw.w.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func (b *Backend) write(level Level, tag string, msg string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	line := fmt.Sprintf("%s [%s] %s %s\n", time.Now().Format("2006-01-02 15:04:05.000"), level, tag, msg)
	for _, bw := range b.writers {
		if level < bw.minLevel {
			continue
		}
		if _, err := io.WriteString(bw.w, line); err != nil {
			fmt.Fprintf(os.Stderr, "log write failed: %v\n", err)
		}
	}
}

type int32Level struct {
	mtx sync.RWMutex
	v   Level
}

// Logger is a handle to a single subsystem's logging configuration.
type Logger struct {
	backend *Backend
	tag     string
	level   *int32Level
}

func (l Logger) SetLevel(level Level) {
	l.level.mtx.Lock()
	defer l.level.mtx.Unlock()
	l.level.v = level
}

func (l Logger) Level() Level {
	l.level.mtx.RLock()
	defer l.level.mtx.RUnlock()
	return l.level.v
}

func (l Logger) Backend() *Backend { return l.backend }

func (l Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.tag, fmt.Sprintf(format, args...))
}

func (l Logger) Tracef(format string, args ...interface{})    { l.logf(LevelTrace, format, args...) }
func (l Logger) Debugf(format string, args ...interface{})    { l.logf(LevelDebug, format, args...) }
func (l Logger) Infof(format string, args ...interface{})     { l.logf(LevelInfo, format, args...) }
func (l Logger) Warnf(format string, args ...interface{})     { l.logf(LevelWarn, format, args...) }
func (l Logger) Errorf(format string, args ...interface{})    { l.logf(LevelError, format, args...) }
func (l Logger) Criticalf(format string, args ...interface{}) { l.logf(LevelCritical, format, args...) }
