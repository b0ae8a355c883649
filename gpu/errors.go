// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
)

// Operational errors.
var (
	// ErrDeviceLost is returned by every call on a destroyed or lost device.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrNoAdapter is returned when no hardware adapter can be found.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrBackendUnavailable is returned when the requested HAL backend is
	// not compiled in.
	ErrBackendUnavailable = errors.New("gpu: backend not available")

	// ErrEmptyErrorScope is returned by PopErrorScope with no scope pushed.
	ErrEmptyErrorScope = errors.New("gpu: error scope stack is empty")

	// ErrUnsupportedFeature is returned when a device or reservation asks
	// for a feature the adapter cannot provide.
	ErrUnsupportedFeature = errors.New("gpu: feature not supported")
)

// ErrorFilter selects which GPU errors an error scope captures.
type ErrorFilter uint8

const (
	ErrorFilterValidation ErrorFilter = iota
	ErrorFilterOutOfMemory
	ErrorFilterInternal
)

func (f ErrorFilter) String() string {
	switch f {
	case ErrorFilterValidation:
		return "validation"
	case ErrorFilterOutOfMemory:
		return "out-of-memory"
	case ErrorFilterInternal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorFilter(%d)", uint8(f))
	}
}

// Error is a GPU error raised by a device call.
type Error struct {
	Filter  ErrorFilter
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error in %s: %s", e.Filter, e.Op, e.Message)
}

// IsValidation reports whether err is a validation Error.
func IsValidation(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Filter == ErrorFilterValidation
}
