// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Print(v ...any) {
	r.lines = append(r.lines, fmtPrint(v...))
}

func fmtPrint(v ...any) string {
	s := ""
	for _, x := range v {
		if sv, ok := x.(string); ok {
			s += sv
		} else {
			s += "?"
		}
	}
	return s
}

func TestSetDefaultLoggerReplacesNewDefaultLogger(t *testing.T) {
	original := NewDefaultLogger()
	defer SetDefaultLogger(original)

	rec := &recordingLogger{}
	SetDefaultLogger(rec)
	assert.Same(t, Logger(rec), NewDefaultLogger())

	NewDefaultLogger().Print("pgcopy: test message")
	assert.Contains(t, rec.lines, "pgcopy: test message")
}

func TestSetDefaultLoggerNilFallsBackToNop(t *testing.T) {
	original := NewDefaultLogger()
	defer SetDefaultLogger(original)

	SetDefaultLogger(nil)
	assert.IsType(t, nopLogger{}, NewDefaultLogger())
}
