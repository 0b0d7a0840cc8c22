// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"fmt"
	"io"
	"sync"
)

var (
	mu            sync.Mutex
	enabled       bool
	traceMessages []string
)

// Enable turns trace recording on or off. Recording is off by default.
func Enable(on bool) {
	mu.Lock()
	enabled = on
	mu.Unlock()
}

// Log just adds a message to the trace log.
func Log(msg string) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	traceMessages = append(traceMessages, msg)
}

// Messages returns a copy of the accumulated trace log.
func Messages() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(traceMessages))
	copy(out, traceMessages)
	return out
}

// Flush writes the accumulated trace log to w and resets it.
func Flush(w io.Writer) {
	mu.Lock()
	msgs := traceMessages
	// reset so the next run starts fresh
	traceMessages = nil
	mu.Unlock()
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}
}

// Reset drops the accumulated trace log.
func Reset() {
	mu.Lock()
	traceMessages = nil
	mu.Unlock()
}
