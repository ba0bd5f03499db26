// This file is part of memoria - https://github.com/memoria-core/memoria
//
// Copyright 2025 The memoria Authors.
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

// Package log provides the process-wide logger. Logs go to stderr by default
// since stdout carries the VM output.
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

// Logger wraps the slog logger and the file it writes to, if any.
type Logger struct {
	logger *slog.Logger
	level  *slog.LevelVar
	file   *os.File
}

var globalLogger = newLogger(os.Stderr, nil)

func newLogger(w io.Writer, file *os.File) *Logger {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{
					Key:   slog.TimeKey,
					Value: slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000")),
				}
			}
			return a
		},
	})
	return &Logger{
		logger: slog.New(handler),
		level:  level,
		file:   file,
	}
}

// SetOutput redirects log output to w. The current level is preserved.
func SetOutput(w io.Writer) {
	l := newLogger(w, nil)
	l.level.Set(globalLogger.level.Level())
	Close()
	globalLogger = l
}

// SetFileOutput configures the logger to append to the specified file.
func SetFileOutput(filename string) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	l := newLogger(file, file)
	l.level.Set(globalLogger.level.Level())
	Close()
	globalLogger = l
	return nil
}

// SetDebug enables or disables debug level logging.
func SetDebug(debug bool) {
	if debug {
		globalLogger.level.Set(slog.LevelDebug)
	} else {
		globalLogger.level.Set(slog.LevelWarn)
	}
}

// Standard logging methods
func Debug(msg string, args ...any) {
	globalLogger.logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	globalLogger.logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	globalLogger.logger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	globalLogger.logger.Error(msg, args...)
}

// Close closes the log file, if any.
func Close() {
	if globalLogger.file != nil {
		globalLogger.file.Close()
		globalLogger.file = nil
	}
}
