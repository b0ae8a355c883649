// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome of a test case. Higher values are worse; a case's
// status only ever escalates.
type Status uint8

const (
	StatusPass Status = iota
	StatusSkip
	StatusWarn
	StatusFail
)

var statusNames = [...]string{
	StatusPass: "pass",
	StatusSkip: "skip",
	StatusWarn: "warn",
	StatusFail: "fail",
}

// String returns the lowercase status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("logging: unknown status %q", s)
}

// MarshalJSON encodes the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Severity classifies a log entry.
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityWarn
	SeverityFail
	SeveritySkip
	SeverityException
)

var severityNames = [...]string{
	SeverityDebug:     "debug",
	SeverityWarn:      "warn",
	SeverityFail:      "fail",
	SeveritySkip:      "skip",
	SeverityException: "exception",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// MarshalJSON encodes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("logging: unknown severity %q", name)
}
