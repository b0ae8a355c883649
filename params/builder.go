// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"iter"
	"slices"
)

// opKind identifies a builder operation.
type opKind uint8

const (
	opCombine opKind = iota
	opCombineWithParams
	opExpand
	opExpandWithParams
	opFilter
)

// op is one declared operation. Only the fields relevant to kind are set.
type op struct {
	kind    opKind
	name    string
	values  []any
	records []Case
	gen     func(Case) iter.Seq[any]
	genRecs func(Case) iter.Seq[Case]
	pred    func(Case) bool
	keep    bool // filter keeps cases where pred(c) == keep
}

// Builder is an immutable description of a parameter space.
//
// Every method returns a new Builder and leaves the receiver unchanged, so a
// partially built space can be shared as a prefix:
//
//	base := params.New().Combine("format", formats...)
//	withMips := base.Combine("mipLevelCount", 1, 2)
//	withLayers := base.Combine("layers", 1, 6)
//
// The zero value is an empty space containing exactly one empty case.
type Builder struct {
	ops        []op
	subcaseAt  int // index of the first subcase op; valid when boundaries > 0
	boundaries int
}

// New returns an empty parameter space.
func New() Builder {
	return Builder{}
}

func (b Builder) push(o op) Builder {
	b.ops = append(slices.Clip(b.ops), o)
	return b
}

// Combine multiplies every case by values under the parameter name.
func (b Builder) Combine(name string, values ...any) Builder {
	return b.push(op{kind: opCombine, name: name, values: slices.Clone(values)})
}

// CombineWithParams multiplies every case by a list of partial records, each
// contributing one or more parameters at once.
func (b Builder) CombineWithParams(records ...Case) Builder {
	return b.push(op{kind: opCombineWithParams, records: slices.Clone(records)})
}

// Expand multiplies every case by the values fn generates for it. fn sees
// the case built so far, so later parameters can depend on earlier ones.
func (b Builder) Expand(name string, fn func(Case) iter.Seq[any]) Builder {
	return b.push(op{kind: opExpand, name: name, gen: fn})
}

// ExpandWithParams is Expand for generators that yield partial records.
func (b Builder) ExpandWithParams(fn func(Case) iter.Seq[Case]) Builder {
	return b.push(op{kind: opExpandWithParams, genRecs: fn})
}

// Filter drops cases for which pred returns false.
func (b Builder) Filter(pred func(Case) bool) Builder {
	return b.push(op{kind: opFilter, pred: pred, keep: true})
}

// Unless drops cases for which pred returns true.
func (b Builder) Unless(pred func(Case) bool) Builder {
	return b.push(op{kind: opFilter, pred: pred, keep: false})
}

// BeginSubcases marks the boundary between top-level and subcase
// parameters. It may appear at most once in a chain; a second call is
// reported as ErrMultipleSubcaseBoundaries when the space is expanded.
func (b Builder) BeginSubcases() Builder {
	if b.boundaries == 0 {
		b.subcaseAt = len(b.ops)
	}
	b.boundaries++
	return b
}

// HasSubcases reports whether the chain declares a subcase boundary.
func (b Builder) HasSubcases() bool {
	return b.boundaries > 0
}

// Seq returns a sequence over values, for use in Expand generators.
func Seq(values ...any) iter.Seq[any] {
	return slices.Values(values)
}

// Records returns a sequence over partial records, for use in
// ExpandWithParams generators.
func Records(records ...Case) iter.Seq[Case] {
	return slices.Values(records)
}
