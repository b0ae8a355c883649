// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"errors"
	"fmt"
)

// Configuration error kinds.
var (
	// ErrDuplicateKey is returned when a parameter name is declared twice.
	ErrDuplicateKey = errors.New("params: duplicate parameter")

	// ErrUnknownKey is returned when a predicate or generator reads a
	// parameter that has not been declared earlier in the chain.
	ErrUnknownKey = errors.New("params: parameter not declared")

	// ErrTypeMismatch is returned when a typed accessor finds a value of
	// another type.
	ErrTypeMismatch = errors.New("params: parameter type mismatch")

	// ErrMultipleSubcaseBoundaries is returned when BeginSubcases appears
	// more than once in a chain.
	ErrMultipleSubcaseBoundaries = errors.New("params: BeginSubcases called more than once")
)

// ConfigError describes a malformed parameter space declaration.
// It is an authoring bug, not a per-case runtime condition.
type ConfigError struct {
	// Op is the builder operation that detected the problem.
	Op string
	// Key is the parameter name involved, if any.
	Key string
	// Err is one of the ErrXxx kinds above.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%v (in %s)", e.Err, e.Op)
	}
	return fmt.Sprintf("%v %q (in %s)", e.Err, e.Key, e.Op)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// keyPanic carries a ConfigError out of Case accessors called from user
// predicates and generators. Expansion recovers it; nothing else should.
type keyPanic struct {
	err *ConfigError
}

// guard runs fn and converts a keyPanic raised inside it into an error.
// fn must not yield to a range-over-func loop body: recovering a panic that
// crossed a yield is a runtime error.
func guard(op string, fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		kp, ok := r.(keyPanic)
		if !ok {
			panic(r)
		}
		kp.err.Op = op
		err = kp.err
	}()
	fn()
	return nil
}
