// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Frames from these packages are plumbing, not test code.
var trimmedPrefixes = []string{
	"runtime.",
	"testing.",
	"github.com/gogpu/cts/runner.",
	"github.com/gogpu/cts/fixture.(*",
	"github.com/gogpu/cts/internal/parallel.",
	"github.com/gogpu/cts/params.",
	"github.com/gogpu/cts/testgroup.",
}

// StackOf returns the stack trace recorded by the innermost error in err's
// chain that carries one (see github.com/pkg/errors), keeping only test
// code frames: runtime, testing, runner and case expansion are removed. It returns "" when no stack is available.
func StackOf(err error) string {
	var st stackTracer
	var found bool
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := e.(stackTracer); ok {
			st, found = s, true
		}
	}
	if !found {
		return ""
	}
	var sb strings.Builder
	for _, f := range st.StackTrace() {
		if trimmed(frameFunc(f)) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%+v", f)
	}
	return sb.String()
}

func frameFunc(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return ""
	}
	return fn.Name()
}

func trimmed(name string) bool {
	for _, p := range trimmedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
