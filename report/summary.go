// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary is the per-status count of a run.
type Summary struct {
	RunID        string
	Total        int
	Pass         int
	Skip         int
	Warn         int
	Fail         int
	ExpectedFail int
	Subcases     int
	Duration     time.Duration
}

// Print writes the summary with numbers formatted for tag, e.g. with
// thousands separators for language.English.
func (s Summary) Print(w io.Writer, tag language.Tag) error {
	p := message.NewPrinter(tag)
	pct := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}
		return 100 * float64(n) / float64(s.Total)
	}

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = p.Fprintf(w, format, args...)
		}
	}
	printf("run %s\n", s.RunID)
	printf("%d cases (%d subcases) in %v\n", s.Total, s.Subcases, s.Duration.Round(time.Millisecond))
	printf("  pass: %7d (%.1f%%)\n", s.Pass, pct(s.Pass))
	printf("  warn: %7d (%.1f%%)\n", s.Warn, pct(s.Warn))
	printf("  skip: %7d (%.1f%%)\n", s.Skip, pct(s.Skip))
	printf("  fail: %7d (%.1f%%)\n", s.Fail, pct(s.Fail))
	if s.ExpectedFail > 0 {
		printf("  expected fail: %d\n", s.ExpectedFail)
	}
	return err
}
