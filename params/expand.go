// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"iter"
	"slices"
)

// TopLevel returns the lazy sequence of top-level cases.
//
// On a configuration error the sequence yields (Case{}, err) once and stops.
// The sequence can be ranged over any number of times; each traversal
// re-expands the space from scratch.
func (b Builder) TopLevel() iter.Seq2[Case, error] {
	if err := b.checkBoundaries(); err != nil {
		return fail(err)
	}
	return fold(single(Case{}), b.topOps())
}

// Subcases returns the lazy sequence of subcases of top, each merged with
// top's parameters. Without a subcase boundary the sequence is exactly top.
func (b Builder) Subcases(top Case) iter.Seq2[Case, error] {
	if err := b.checkBoundaries(); err != nil {
		return fail(err)
	}
	return fold(single(top), b.subOps())
}

// All returns every case in execution order: for each top-level case, each
// of its subcases.
func (b Builder) All() iter.Seq2[Case, error] {
	return func(yield func(Case, error) bool) {
		for top, err := range b.TopLevel() {
			if err != nil {
				yield(Case{}, err)
				return
			}
			for c, err := range b.Subcases(top) {
				if !yield(c, err) || err != nil {
					return
				}
			}
		}
	}
}

// Validate expands the whole space once and returns the first
// configuration error, if any.
func (b Builder) Validate() error {
	for _, err := range b.All() {
		if err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of top-level cases and the total number of
// executions (top-level cases times their subcases).
func (b Builder) Count() (top, total int, err error) {
	for tc, err := range b.TopLevel() {
		if err != nil {
			return 0, 0, err
		}
		top++
		for _, err := range b.Subcases(tc) {
			if err != nil {
				return 0, 0, err
			}
			total++
		}
	}
	return top, total, nil
}

func (b Builder) checkBoundaries() error {
	if b.boundaries > 1 {
		return &ConfigError{Op: "BeginSubcases", Err: ErrMultipleSubcaseBoundaries}
	}
	return nil
}

func (b Builder) topOps() []op {
	if b.boundaries == 0 {
		return b.ops
	}
	return b.ops[:b.subcaseAt]
}

func (b Builder) subOps() []op {
	if b.boundaries == 0 {
		return nil
	}
	return b.ops[b.subcaseAt:]
}

func single(c Case) iter.Seq2[Case, error] {
	return func(yield func(Case, error) bool) {
		yield(c, nil)
	}
}

func fail(err error) iter.Seq2[Case, error] {
	return func(yield func(Case, error) bool) {
		yield(Case{}, err)
	}
}

// fold applies ops left to right over seq.
func fold(seq iter.Seq2[Case, error], ops []op) iter.Seq2[Case, error] {
	for _, o := range ops {
		seq = o.apply(seq)
	}
	return seq
}

// apply returns seq transformed by the operation. Errors from upstream are
// forwarded unchanged and end the sequence.
func (o op) apply(seq iter.Seq2[Case, error]) iter.Seq2[Case, error] {
	return func(yield func(Case, error) bool) {
		for c, err := range seq {
			if err != nil {
				yield(Case{}, err)
				return
			}
			if !o.each(c, yield) {
				return
			}
		}
	}
}

// each emits the cases o derives from c. It returns false when the
// consumer stopped or an error was emitted.
func (o op) each(c Case, yield func(Case, error) bool) bool {
	switch o.kind {
	case opCombine:
		return o.multiply(c, "Combine", o.values, yield)

	case opCombineWithParams:
		return o.multiplyRecords(c, "CombineWithParams", o.records, yield)

	case opExpand:
		var values []any
		if err := guard("Expand", func() { values = slices.Collect(o.gen(c)) }); err != nil {
			yield(Case{}, err)
			return false
		}
		return o.multiply(c, "Expand", values, yield)

	case opExpandWithParams:
		var records []Case
		if err := guard("ExpandWithParams", func() { records = slices.Collect(o.genRecs(c)) }); err != nil {
			yield(Case{}, err)
			return false
		}
		return o.multiplyRecords(c, "ExpandWithParams", records, yield)

	case opFilter:
		var got bool
		if err := guard("Filter", func() { got = o.pred(c) }); err != nil {
			yield(Case{}, err)
			return false
		}
		if got != o.keep {
			return true
		}
		return yield(c, nil)
	}
	return true
}

func (o op) multiply(c Case, opName string, values []any, yield func(Case, error) bool) bool {
	if c.Has(o.name) {
		yield(Case{}, &ConfigError{Op: opName, Key: o.name, Err: ErrDuplicateKey})
		return false
	}
	for _, v := range values {
		next, err := c.with(opName, o.name, v)
		if err != nil {
			yield(Case{}, err)
			return false
		}
		if !yield(next, nil) {
			return false
		}
	}
	return true
}

func (o op) multiplyRecords(c Case, opName string, records []Case, yield func(Case, error) bool) bool {
	for _, r := range records {
		next, err := c.merge(opName, r)
		if err != nil {
			yield(Case{}, err)
			return false
		}
		if !yield(next, nil) {
			return false
		}
	}
	return true
}
