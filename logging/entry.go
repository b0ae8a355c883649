// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import "strings"

// LogEntry is one immutable message recorded during a case.
type LogEntry struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Stack    string   `json:"stack,omitempty"`
}

// NilErrorMessage is the message of an entry logged with a nil error.
const NilErrorMessage = "<nil error>"

// NewEntry builds an entry from err, capturing its stack trace if it
// carries one. A nil err still records an entry, with NilErrorMessage.
func NewEntry(sev Severity, err error) LogEntry {
	if err == nil {
		return LogEntry{Severity: sev, Message: NilErrorMessage}
	}
	return LogEntry{Severity: sev, Message: err.Error(), Stack: StackOf(err)}
}

// Format renders the entry as "severity: message" followed by the stack.
// With firstLineOnly set, only the first line of the message is kept and
// the stack is dropped; reports use this for expected failures.
func (e LogEntry) Format(firstLineOnly bool) string {
	if firstLineOnly {
		e = e.FirstLine()
	}
	if e.Stack == "" {
		return e.Severity.String() + ": " + e.Message
	}
	return e.Severity.String() + ": " + e.Message + "\n" + e.Stack
}

// FirstLine returns a copy of e with only the first message line and no
// stack.
func (e LogEntry) FirstLine() LogEntry {
	if i := strings.IndexByte(e.Message, '\n'); i >= 0 {
		e.Message = e.Message[:i]
	}
	e.Stack = ""
	return e
}
