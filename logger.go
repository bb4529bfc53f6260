// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"log"
	"os"
)

// Logger is implemented by any logger compatible with the standard
// library's log.Logger, matching the shape callers of database drivers in
// this family already provide. Decode never uses a Logger for control
// flow; it is strictly a diagnostic hook.
type Logger interface {
	Print(v ...any)
}

type nopLogger struct{}

func (nopLogger) Print(v ...any) {}

// defaultLogger is the Logger returned by NewDefaultLogger and replaced by
// SetDefaultLogger. DecodeWithOptions uses it only when a caller passes it
// as Options.Logger; a nil Options.Logger means nopLogger.
var defaultLogger Logger = log.New(os.Stderr, "[pgcopy] ", log.Ldate|log.Ltime|log.Lshortfile)

// SetDefaultLogger replaces the package-level default logger returned by
// NewDefaultLogger. It is not consulted unless a caller explicitly passes
// NewDefaultLogger() as Options.Logger.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	defaultLogger = logger
}

// NewDefaultLogger returns the package's standard-library-backed logger,
// writing to stderr with the same prefix/flag conventions as this family
// of drivers. Decode does not use it unless a caller opts in via
// Options.Logger.
func NewDefaultLogger() Logger {
	return defaultLogger
}
