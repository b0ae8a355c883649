// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

// File names written into the run directory.
const (
	ResultsFile      = "results.json"
	SummaryFile      = "summary.txt"
	ExpectationsFile = "expectations.txt"
)

// Writer writes run artifacts into one directory.
type Writer struct {
	RunDir string
}

// NewWriter creates the run directory.
func NewWriter(runDir string) (*Writer, error) {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create run dir: %w", err)
	}
	return &Writer{RunDir: runDir}, nil
}

// WriteJSON writes value as indented JSON and returns the file path.
func (w *Writer) WriteJSON(name string, value any) (string, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode %s: %w", name, err)
	}
	return w.WriteBytes(name, payload)
}

// WriteBytes writes data to a file under the run directory.
func (w *Writer) WriteBytes(name string, data []byte) (string, error) {
	path := filepath.Join(w.RunDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", name, err)
	}
	return path, nil
}

// WriteRun writes results.json, summary.txt and expectations.txt.
func (w *Writer) WriteRun(run *Run) error {
	if _, err := w.WriteJSON(ResultsFile, run); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := run.Summary().Print(&buf, language.English); err != nil {
		return err
	}
	if _, err := w.WriteBytes(SummaryFile, buf.Bytes()); err != nil {
		return err
	}

	buf.Reset()
	if err := WriteExpectations(&buf, run.Results); err != nil {
		return err
	}
	_, err := w.WriteBytes(ExpectationsFile, buf.Bytes())
	return err
}
