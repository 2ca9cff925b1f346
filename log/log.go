// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the leveled logger this module's parser and CLI
// report diagnostics through. It is deliberately small: a Logger interface
// any backend can implement, a level Filter, and a Helper that gives
// call sites Debugf/Infof/Warnf/Errorf without repeating a level argument.
package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a log severity, ordered low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every backend implements. Log receives a
// level and an already-formatted message; callers normally reach it
// through a Helper rather than directly.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes timestamped lines to an io.Writer.
type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes "time level message" lines to
// w, the default backend when a caller supplies no Options.Logger.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, msg string) error {
	_, err := fmt.Fprintf(l.w, "%s %s %s\n", time.Now().Format(time.RFC3339), level, msg)
	return err
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// FilterLevel sets the minimum level a Filter passes through to its
// underlying Logger; everything below it is silently dropped.
func FilterLevel(level Level) FilterOption {
	return func(f *Filter) { f.level = level }
}

// Filter wraps a Logger and drops messages below a configured level.
type Filter struct {
	logger Logger
	level  Level
}

// NewFilter wraps logger with a Filter, defaulting to LevelInfo when no
// FilterLevel option is given.
func NewFilter(logger Logger, opts ...FilterOption) *Filter {
	f := &Filter{logger: logger, level: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, msg string) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, msg)
}

// Helper adds leveled, printf-style convenience methods over a Logger, the
// shape every decode/dump call site in this module logs through.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper. A nil logger is valid: every method
// becomes a no-op, so callers that pass no logger pay no formatting cost
// beyond the nil check.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}

func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }
func (h *Helper) Infof(format string, args ...interface{})  { h.log(LevelInfo, format, args...) }
func (h *Helper) Warnf(format string, args ...interface{})  { h.log(LevelWarn, format, args...) }
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }

// defaultLogger backs the package-level Debugf/Infof/Warnf/Errorf helpers
// for callers that do not carry a Helper value around.
var defaultLogger = NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelWarn)))

func Debugf(format string, args ...interface{}) { defaultLogger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { defaultLogger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { defaultLogger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }
