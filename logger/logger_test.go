// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"testing"

	"github.com/sassoftware/viya-pdf-struct/tracer"
	"github.com/stretchr/testify/assert"
)

type entry struct {
	level   LogLevel
	msg     string
	keyvals []interface{}
}

func capture(t *testing.T) *[]entry {
	t.Helper()
	var got []entry
	SetLogger(func(level LogLevel, msg string, keyvals ...interface{}) {
		got = append(got, entry{level, msg, keyvals})
	})
	t.Cleanup(func() {
		SetLogger(func(LogLevel, string, ...interface{}) {})
	})
	return &got
}

func TestDebug_TraceFlag(t *testing.T) {
	got := capture(t)
	tracer.Enable(true)
	defer tracer.Enable(false)
	tracer.Reset()

	Debug("traced", "k", 1, true)
	Debug("not traced", "k", 2)

	assert.Equal(t, []entry{
		{DebugLevel, "traced", []interface{}{"k", 1}},
		{DebugLevel, "not traced", []interface{}{"k", 2}},
	}, *got)
	assert.Equal(t, []string{"traced"}, tracer.Messages())
	tracer.Reset()
}

func TestError_Level(t *testing.T) {
	got := capture(t)
	Error("boom", "err", "x")
	assert.Len(t, *got, 1)
	assert.Equal(t, ErrorLevel, (*got)[0].level)
}

func TestSetLogger_IgnoresNil(t *testing.T) {
	got := capture(t)
	SetLogger(nil)
	Debug("still captured")
	assert.Len(t, *got, 1)
}
