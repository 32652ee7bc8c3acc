// Copyright 2026 The duplicityfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the mount's structured logger: severity
// filtering, text or JSON output, and optional rotation to a file via
// lumberjack. It wraps log/slog rather than replacing it, following the
// teacher's approach of a thin package-level facade over a swappable
// defaultLogger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mbrt/ruplicity-fuse/internal/config"
)

// Custom levels give TRACE and OFF a place in slog's otherwise
// four-level scheme, spaced the way slog's own Debug/Info/Warn/Error
// are (multiples of 4).
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug // -4
	LevelInfo  slog.Level = slog.LevelInfo  // 0
	LevelWarn  slog.Level = slog.LevelWarn  // 4
	LevelError slog.Level = slog.LevelError // 8
	LevelOff   slog.Level = 12
)

var severityNames = map[string]slog.Level{
	config.TRACE:   LevelTrace,
	config.DEBUG:   LevelDebug,
	config.INFO:    LevelInfo,
	config.WARNING: LevelWarn,
	config.ERROR:   LevelError,
	config.OFF:     LevelOff,
}

func levelString(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// loggerFactory owns everything needed to (re)build defaultLogger: the
// destination (a rotating file or stderr), the chosen format, and the
// rotation settings used only when the destination is a file.
type loggerFactory struct {
	filePath        string
	writer          io.Writer // stderr, or an *AsyncLogger over a lumberjack.Logger
	format          string
	level           string
	logRotateConfig config.LogRotateConfig
}

var defaultLoggerFactory = &loggerFactory{
	writer:          os.Stderr,
	format:          "text",
	level:           config.INFO,
	logRotateConfig: config.DefaultLogRotateConfig(),
}

var defaultLogger *slog.Logger

func init() {
	rebuild()
}

func rebuild() {
	programLevel := new(slog.LevelVar)
	setLoggingLevel(defaultLoggerFactory.level, programLevel)

	w := defaultLoggerFactory.writer
	if w == nil {
		w = os.Stderr
	}

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
}

// createJsonOrTextHandler builds the slog.Handler for w at the given
// level, prefixing every message with prefix when it is non-empty
// (rebuild passes an empty prefix).
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			a.Key = "severity"
			a.Value = slog.StringValue(levelString(slog.Level(a.Value.Any().(slog.Level))))
		}
		if a.Key == slog.MessageKey && prefix != "" {
			a.Value = slog.StringValue(prefix + a.Value.String())
		}
		return a
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replace}

	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func setLoggingLevel(level string, v *slog.LevelVar) {
	l, ok := severityNames[level]
	if !ok {
		l = LevelInfo
	}
	v.Set(l)
}

// Init (re)configures the default logger to log at severity using
// format, writing to stderr.
func Init(severity, format string) {
	defaultLoggerFactory = &loggerFactory{
		writer:          os.Stderr,
		format:          format,
		level:           severity,
		logRotateConfig: config.DefaultLogRotateConfig(),
	}
	rebuild()
}

// asyncBufferSize bounds how many pending log lines InitLogFile buffers
// before a write to the rotating file catches up.
const asyncBufferSize = 256

// InitLogFile points the default logger at cfg.FilePath, rotating
// according to cfg.LogRotateConfig via lumberjack and decoupling FUSE
// op handlers from disk latency via AsyncLogger. An empty FilePath is a
// no-op, leaving the logger on stderr.
func InitLogFile(cfg config.LoggingConfig) error {
	if cfg.FilePath == "" {
		return nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.LogRotateConfig.MaxFileSizeMB,
		MaxBackups: cfg.LogRotateConfig.BackupFileCount,
		Compress:   cfg.LogRotateConfig.Compress,
	}

	defaultLoggerFactory = &loggerFactory{
		filePath:        cfg.FilePath,
		writer:          NewAsyncLogger(lj, asyncBufferSize),
		format:          cfg.Format,
		level:           cfg.Severity,
		logRotateConfig: cfg.LogRotateConfig,
	}
	rebuild()
	return nil
}

func Tracef(format string, v ...any) { defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...)) }
func Debugf(format string, v ...any) { defaultLogger.Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { defaultLogger.Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { defaultLogger.Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { defaultLogger.Error(fmt.Sprintf(format, v...)) }
