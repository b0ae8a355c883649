// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package logging records the outcome of one executing test case.
//
// A Recorder collects ordered log entries, escalates the case status
// (pass < skip < warn < fail) and measures elapsed time. Finish hands off
// an immutable Result that reporters serialize.
//
//	rec := logging.NewRecorder(logging.WithDebug(false))
//	rec.Start()
//	rec.Warn(errors.New("slow path taken"))
//	res := rec.Finish() // res.Status == logging.StatusWarn
//
// Calls outside the Start/Finish window are programming errors and panic.
// All methods are safe for concurrent use so that asynchronous expectations
// can log from other goroutines.
package logging
