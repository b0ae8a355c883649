// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/query"
)

// Expectation marks the cases matched by Query as expected to end with
// Status.
type Expectation struct {
	Query  query.Query
	Status logging.Status
}

// ReadExpectations parses lines of the form
//
//	webgpu:api,validation,createTexture:mip:* fail
//
// Blank lines and lines starting with '#' are ignored.
func ReadExpectations(r io.Reader) ([]Expectation, error) {
	var out []Expectation
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.LastIndexAny(line, " \t")
		if i < 0 {
			return nil, fmt.Errorf("report: expectations line %d: want \"<query> <status>\"", n)
		}
		q, err := query.Parse(strings.TrimSpace(line[:i]))
		if err != nil {
			return nil, fmt.Errorf("report: expectations line %d: %w", n, err)
		}
		st, err := logging.ParseStatus(line[i+1:])
		if err != nil {
			return nil, fmt.Errorf("report: expectations line %d: %w", n, err)
		}
		out = append(out, Expectation{Query: q, Status: st})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("report: read expectations: %w", err)
	}
	return out, nil
}

// WriteExpectations writes one "<query> <status>" line per result that did
// not pass, in the form ReadExpectations accepts.
func WriteExpectations(w io.Writer, results []CaseResult) error {
	for _, c := range results {
		if c.Status == logging.StatusPass {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", c.Query, c.Status); err != nil {
			return err
		}
	}
	return nil
}
