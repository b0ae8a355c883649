// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package query parses and matches test selection strings.
//
// A query names a subtree of the test tree:
//
//	suite:file,path:test,path:key=value;key=value
//
// Each level after the suite may end in a '*' wildcard, after which no
// further levels follow:
//
//	webgpu:*                                          every test in the suite
//	webgpu:api,validation,*                           every file under api/validation
//	webgpu:api,validation,createTexture:*             every test in one file
//	webgpu:api,validation,createTexture:mip:*         every case of one test
//	webgpu:api,validation,createTexture:mip:dimension="2d";*
//	webgpu:api,validation,createTexture:mip:dimension="2d";size=[4,4,1]
//
// Parameter values are written in their JSON form, the same form
// params.Case.String produces.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("query: invalid syntax")

// Level is how much of the test tree a query pins down.
type Level uint8

const (
	// MultiFile matches a file-path prefix.
	MultiFile Level = iota + 1
	// MultiTest matches a test-path prefix within one file.
	MultiTest
	// MultiCase matches a subset of the cases of one test.
	MultiCase
	// SingleCase names exactly one case.
	SingleCase
)

func (l Level) String() string {
	switch l {
	case MultiFile:
		return "multi-file"
	case MultiTest:
		return "multi-test"
	case MultiCase:
		return "multi-case"
	case SingleCase:
		return "single-case"
	default:
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
}

// Query selects test cases. The zero value matches nothing; use Parse.
type Query struct {
	Suite  string
	File   []string
	Test   []string
	Params []string // key=value entries in query order
	Level  Level
}

// Parse parses a query string.
func Parse(s string) (Query, error) {
	bad := func(msg string) (Query, error) {
		return Query{}, fmt.Errorf("%w: %q: %s", ErrSyntax, s, msg)
	}

	parts := strings.SplitN(s, ":", 4)
	q := Query{Suite: parts[0]}
	if q.Suite == "" || strings.ContainsAny(q.Suite, "*,") {
		return bad("suite must be a plain name")
	}
	if len(parts) < 2 {
		return bad("missing file level")
	}

	file, wild, err := splitPath(parts[1])
	if err != nil {
		return bad("file " + err.Error())
	}
	q.File = file
	if wild {
		if len(parts) > 2 {
			return bad("nothing may follow a file wildcard")
		}
		q.Level = MultiFile
		return q, nil
	}
	if len(file) == 0 {
		return bad("empty file path")
	}
	if len(parts) < 3 {
		return bad("file path must end in * or be followed by a test")
	}

	test, wild, err := splitPath(parts[2])
	if err != nil {
		return bad("test " + err.Error())
	}
	q.Test = test
	if wild {
		if len(parts) > 3 {
			return bad("nothing may follow a test wildcard")
		}
		q.Level = MultiTest
		return q, nil
	}
	if len(test) == 0 {
		return bad("empty test path")
	}
	if len(parts) < 4 {
		return bad("test path must end in * or be followed by params")
	}

	entries, wild, err := splitParams(parts[3])
	if err != nil {
		return bad(err.Error())
	}
	q.Params = entries
	q.Level = SingleCase
	if wild {
		q.Level = MultiCase
	}
	return q, nil
}

// MustParse is like Parse but panics on error. It is meant for queries
// written in source code.
func MustParse(s string) Query {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

// splitPath splits a comma-separated path and reports a trailing '*'.
func splitPath(s string) (path []string, wild bool, err error) {
	if s == "" {
		return nil, false, nil
	}
	path = strings.Split(s, ",")
	if path[len(path)-1] == "*" {
		path, wild = path[:len(path)-1], true
	}
	for _, p := range path {
		if p == "" {
			return nil, false, errors.New("path has an empty element")
		}
		if strings.Contains(p, "*") {
			return nil, false, errors.New("wildcard must be the last element")
		}
	}
	return path, wild, nil
}

// splitParams splits key=value entries on ';' outside JSON strings,
// arrays and objects.
func splitParams(s string) (entries []string, wild bool, err error) {
	if s == "" {
		return nil, false, nil
	}
	var (
		depth    int
		inString bool
		escaped  bool
		start    int
	)
	var raw []string
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		case c == ';' && depth == 0:
			raw = append(raw, s[start:i])
			start = i + 1
		}
	}
	if inString || depth != 0 {
		return nil, false, errors.New("unbalanced parameter value")
	}
	raw = append(raw, s[start:])

	if raw[len(raw)-1] == "*" {
		raw, wild = raw[:len(raw)-1], true
	}
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		k, _, ok := strings.Cut(e, "=")
		if !ok || k == "" || strings.Contains(k, "*") {
			return nil, false, fmt.Errorf("bad parameter %q", e)
		}
		if seen[k] {
			return nil, false, fmt.Errorf("duplicate parameter %q", k)
		}
		seen[k] = true
	}
	return raw, wild, nil
}

// String returns the canonical form of q; Parse(q.String()) equals q.
func (q Query) String() string {
	var sb strings.Builder
	sb.WriteString(q.Suite)
	sb.WriteByte(':')
	writePath(&sb, q.File, q.Level == MultiFile)
	if q.Level == MultiFile {
		return sb.String()
	}
	sb.WriteByte(':')
	writePath(&sb, q.Test, q.Level == MultiTest)
	if q.Level == MultiTest {
		return sb.String()
	}
	sb.WriteByte(':')
	entries := q.Params
	if q.Level == MultiCase {
		entries = append(slices.Clip(entries), "*")
	}
	sb.WriteString(strings.Join(entries, ";"))
	return sb.String()
}

func writePath(sb *strings.Builder, path []string, wild bool) {
	if wild {
		path = append(slices.Clip(path), "*")
	}
	sb.WriteString(strings.Join(path, ","))
}

// Matches reports whether the case id falls under q.
func (q Query) Matches(id TestCaseID) bool {
	if q.Level == 0 || q.Suite != id.Suite {
		return false
	}
	if q.Level == MultiFile {
		return hasPrefix(id.File, q.File)
	}
	if !slices.Equal(q.File, id.File) {
		return false
	}
	if q.Level == MultiTest {
		return hasPrefix(id.Test, q.Test)
	}
	if !slices.Equal(q.Test, id.Test) {
		return false
	}

	caseEntries, _, err := splitParams(id.Params)
	if err != nil {
		return false
	}
	have := make(map[string]string, len(caseEntries))
	for _, e := range caseEntries {
		k, v, _ := strings.Cut(e, "=")
		have[k] = v
	}
	for _, e := range q.Params {
		k, v, _ := strings.Cut(e, "=")
		if cv, ok := have[k]; !ok || cv != v {
			return false
		}
	}
	return q.Level == MultiCase || len(q.Params) == len(caseEntries)
}

// Selects reports whether q could match some case of the given test. The
// registry uses it to skip expanding tests a query cannot reach.
func (q Query) Selects(suite string, file, test []string) bool {
	if q.Level == 0 || q.Suite != suite {
		return false
	}
	if q.Level == MultiFile {
		return hasPrefix(file, q.File)
	}
	if !slices.Equal(q.File, file) {
		return false
	}
	if q.Level == MultiTest {
		return hasPrefix(test, q.Test)
	}
	return slices.Equal(q.Test, test)
}

func hasPrefix(s, prefix []string) bool {
	return len(s) >= len(prefix) && slices.Equal(s[:len(prefix)], prefix)
}

// TestCaseID identifies one top-level case.
type TestCaseID struct {
	Suite  string
	File   []string
	Test   []string
	Params string // params.Case.String() of the top-level case
}

// String returns the single-case query naming id.
func (id TestCaseID) String() string {
	return id.Suite + ":" + strings.Join(id.File, ",") + ":" +
		strings.Join(id.Test, ",") + ":" + id.Params
}

// Query returns the single-case query naming id.
func (id TestCaseID) Query() Query {
	entries, _, _ := splitParams(id.Params)
	return Query{
		Suite:  id.Suite,
		File:   slices.Clone(id.File),
		Test:   slices.Clone(id.Test),
		Params: entries,
		Level:  SingleCase,
	}
}
