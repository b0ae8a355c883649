// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Case is one parameter record: an ordered mapping from parameter name to
// value, in declaration order.
//
// A Case is immutable once built. With and Merge return new records and
// leave the receiver untouched, so cases can be shared freely between
// goroutines. The zero value is the empty record.
type Case struct {
	m *orderedmap.OrderedMap[string, any]
}

// Of builds a partial record from alternating keys and values, for use with
// CombineWithParams and ExpandWithParams:
//
//	params.Of("width", 1, "height", 1)
//
// Of panics if given an odd number of arguments, a non-string key, or the
// same key twice.
func Of(kv ...any) Case {
	if len(kv)%2 == 1 {
		panic("params: Of called with odd argument count")
	}
	c := Case{m: orderedmap.New[string, any](len(kv) / 2)}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("params: Of key %d is %T, not string", i/2, kv[i]))
		}
		if _, dup := c.m.Set(key, kv[i+1]); dup {
			panic("params: Of called twice for " + key)
		}
	}
	return c
}

// Len returns the number of parameters in the record.
func (c Case) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Keys returns parameter names in declaration order.
func (c Case) Keys() []string {
	keys := make([]string, 0, c.Len())
	for k := range c.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over parameters in declaration order.
func (c Case) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if c.m == nil {
			return
		}
		for p := c.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Has reports whether the record declares key.
func (c Case) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Lookup returns the value of key and whether it is declared.
func (c Case) Lookup(key string) (any, bool) {
	if c.m == nil {
		return nil, false
	}
	return c.m.Get(key)
}

// Get returns the value of key.
//
// Get is meant for predicates and generators. Reading a parameter that is
// not declared yet is a configuration error: expansion stops and reports
// ErrUnknownKey. Outside expansion Get panics instead.
func (c Case) Get(key string) any {
	v, ok := c.Lookup(key)
	if !ok {
		panic(keyPanic{err: &ConfigError{Op: "get", Key: key, Err: ErrUnknownKey}})
	}
	return v
}

// Value returns the value of key as a T.
// It has the same failure behavior as Case.Get, and additionally reports
// ErrTypeMismatch when the declared value is not a T.
func Value[T any](c Case, key string) T {
	v := c.Get(key)
	t, ok := v.(T)
	if !ok {
		panic(keyPanic{err: &ConfigError{Op: "get", Key: key, Err: ErrTypeMismatch}})
	}
	return t
}

// With returns a copy of the record with key set to v.
// Declaring a key twice returns ErrDuplicateKey; existing values are never
// overwritten.
func (c Case) With(key string, v any) (Case, error) {
	return c.with("with", key, v)
}

func (c Case) with(op, key string, v any) (Case, error) {
	if c.Has(key) {
		return Case{}, &ConfigError{Op: op, Key: key, Err: ErrDuplicateKey}
	}
	out := c.clone(1)
	out.m.Set(key, v)
	return out, nil
}

// Merge returns a copy of the record extended with every parameter of o,
// in o's order. Any key present in both is ErrDuplicateKey.
func (c Case) Merge(o Case) (Case, error) {
	return c.merge("merge", o)
}

func (c Case) merge(op string, o Case) (Case, error) {
	for k := range o.All() {
		if c.Has(k) {
			return Case{}, &ConfigError{Op: op, Key: k, Err: ErrDuplicateKey}
		}
	}
	out := c.clone(o.Len())
	for k, v := range o.All() {
		out.m.Set(k, v)
	}
	return out, nil
}

// Tail returns the parameters after the first n, in order.
// For a subcase record, Tail(top.Len()) is the subcase-only view.
func (c Case) Tail(n int) Case {
	out := Case{m: orderedmap.New[string, any](max(c.Len()-n, 0))}
	i := 0
	for k, v := range c.All() {
		if i >= n {
			out.m.Set(k, v)
		}
		i++
	}
	return out
}

func (c Case) clone(extra int) Case {
	out := Case{m: orderedmap.New[string, any](c.Len() + extra)}
	for k, v := range c.All() {
		out.m.Set(k, v)
	}
	return out
}

// String renders the record in query form: key=value pairs joined by ';'
// in declaration order, values JSON-encoded. Values implementing
// fmt.Stringer are rendered as their string form.
//
//	x=1;format="rgba8unorm";mapped=true
func (c Case) String() string {
	var sb strings.Builder
	first := true
	for k, v := range c.All() {
		if !first {
			sb.WriteByte(';')
		}
		first = false
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(FormatValue(v))
	}
	return sb.String()
}

// FormatValue renders a single parameter value the way Case.String does.
func FormatValue(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		v = s.String()
	}
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// MarshalJSON encodes the record as a JSON object with keys in declaration
// order.
func (c Case) MarshalJSON() ([]byte, error) {
	if c.m == nil {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}
