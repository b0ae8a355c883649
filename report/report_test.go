// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/query"
)

func result(q string, st logging.Status) CaseResult {
	return CaseResult{Query: q, Result: logging.Result{Status: st, TimeMS: 0.5}, Subcases: 2}
}

func sampleRun() *Run {
	run := NewRun()
	run.Duration = 1500 * time.Millisecond
	run.Results = []CaseResult{
		result("s:f:a:", logging.StatusPass),
		result("s:f:b:x=1", logging.StatusSkip),
		result("s:f:b:x=2", logging.StatusWarn),
		result("s:f:c:", logging.StatusFail),
	}
	return run
}

// ---------------------------------------------------------------------------
// Run and Summary
// ---------------------------------------------------------------------------

func TestNewRunID(t *testing.T) {
	a, b := NewRun(), NewRun()
	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", a.RunID, err)
	}
	if a.RunID == b.RunID {
		t.Error("two runs share an id")
	}
}

func TestSummary(t *testing.T) {
	run := sampleRun()
	run.Results = append(run.Results, CaseResult{
		Query: "s:f:d:", Result: logging.Result{Status: logging.StatusFail}, Expected: true,
	})
	got := run.Summary()
	want := Summary{
		RunID: run.RunID, Total: 5, Pass: 1, Skip: 1, Warn: 1, Fail: 1, ExpectedFail: 1,
		Subcases: 8, Duration: 1500 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}
}

func TestFailed(t *testing.T) {
	run := sampleRun()
	if !run.Failed() {
		t.Error("Failed() = false with a failing case")
	}
	run.Results[3].Expected = true
	if run.Failed() {
		t.Error("Failed() = true when the only failure is expected")
	}
}

func TestSummaryPrintGroupsThousands(t *testing.T) {
	s := Summary{RunID: "r", Total: 1234, Pass: 1234, Subcases: 56789}
	var buf bytes.Buffer
	if err := s.Print(&buf, language.English); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"run r\n", "1,234 cases (56,789 subcases)", "1,234 (100.0%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "expected fail") {
		t.Error("expected fail line printed with no expected failures")
	}
}

func TestIncomplete(t *testing.T) {
	r := Incomplete("s:f:t:", "timed out")
	if r.Status != logging.StatusFail || len(r.Logs) != 1 {
		t.Fatalf("Incomplete() = %+v", r)
	}
	if got, want := r.Logs[0].Message, "case did not finish: timed out"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

func TestWriteRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	run := sampleRun()
	run.Adapter = &Adapter{Name: "Noop Adapter", Backend: "empty"}
	if err := w.WriteRun(run); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID   string `json:"runId"`
		Results []struct {
			Query  string  `json:"query"`
			Status string  `json:"status"`
			TimeMS float64 `json:"timems"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID != run.RunID || len(decoded.Results) != 4 {
		t.Fatalf("decoded %+v", decoded)
	}
	if r := decoded.Results[1]; r.Query != "s:f:b:x=1" || r.Status != "skip" || r.TimeMS != 0.5 {
		t.Errorf("result[1] = %+v", r)
	}

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(summary), "4 cases (8 subcases)") {
		t.Errorf("summary.txt = %q", summary)
	}
	exp, err := os.ReadFile(filepath.Join(dir, ExpectationsFile))
	if err != nil {
		t.Fatal(err)
	}
	if want := "s:f:b:x=1 skip\ns:f:b:x=2 warn\ns:f:c: fail\n"; string(exp) != want {
		t.Errorf("expectations.txt = %q, want %q", exp, want)
	}
}

// ---------------------------------------------------------------------------
// Expectations
// ---------------------------------------------------------------------------

func TestReadExpectations(t *testing.T) {
	in := `# known failures
webgpu:api,validation,*  fail

webgpu:shader:types:s="a b";* skip
`
	got, err := ReadExpectations(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d expectations, want 2", len(got))
	}
	if got[0].Query.String() != "webgpu:api,validation,*" || got[0].Status != logging.StatusFail {
		t.Errorf("expectation[0] = %v %v", got[0].Query, got[0].Status)
	}
	id := query.TestCaseID{Suite: "webgpu", File: []string{"shader"}, Test: []string{"types"}, Params: `s="a b";n=1`}
	if !got[1].Query.Matches(id) || got[1].Status != logging.StatusSkip {
		t.Errorf("expectation[1] = %v %v", got[1].Query, got[1].Status)
	}
}

func TestReadExpectationsErrors(t *testing.T) {
	for _, in := range []string{
		"webgpu:*",
		"webgpu fail",
		"webgpu:* broken",
	} {
		if _, err := ReadExpectations(strings.NewReader(in)); err == nil {
			t.Errorf("ReadExpectations(%q) succeeded", in)
		}
	}
}
