// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the process-wide printf-style logger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging priority.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(InfoLevel)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *zap.SugaredLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// SetLogLevel changes the minimum level that is emitted.
func SetLogLevel(l Level) {
	level.SetLevel(l)
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown names yield InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(format string, args ...any) { get().Debugf(trim(format), args...) }
func Info(format string, args ...any)  { get().Infof(trim(format), args...) }
func Warn(format string, args ...any)  { get().Warnf(trim(format), args...) }
func Error(format string, args ...any) { get().Errorf(trim(format), args...) }

// Sync flushes buffered entries.
func Sync() {
	_ = get().Sync()
}

// callers often end formats with "\n"; the encoder adds its own.
func trim(format string) string {
	return strings.TrimRight(format, "\n")
}
