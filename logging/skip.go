// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"fmt"

	"github.com/pkg/errors"
)

// SkipError signals that a case cannot run in the current environment.
// Returning one from a test body marks the case skipped, not failed.
type SkipError struct {
	Reason string
	cause  error
}

func (e *SkipError) Error() string { return e.Reason }

// Unwrap returns the stack-carrying error captured at the skip site.
func (e *SkipError) Unwrap() error { return e.cause }

// Skip returns a SkipError with the given reason.
func Skip(reason string) error {
	return &SkipError{Reason: reason, cause: errors.New(reason)}
}

// Skipf is Skip with a formatted reason.
func Skipf(format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	return &SkipError{Reason: reason, cause: errors.New(reason)}
}

// IsSkip reports whether err is, or wraps, a SkipError.
func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}
