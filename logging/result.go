// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

// Result is the serializable outcome of one case.
type Result struct {
	Status   Status         `json:"status"`
	TimeMS   float64        `json:"timems"`
	Logs     []LogEntry     `json:"logs,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Patch overrides fields of a Result. Nil fields are left alone.
type Patch struct {
	Status   *Status
	TimeMS   *float64
	Logs     []LogEntry
	Metadata map[string]any
}
