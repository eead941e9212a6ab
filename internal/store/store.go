// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store implements the symbolic store (spec.md §4.1): the
// path-sensitive instance→signal→value map the statement visitor
// reads and extends while walking a basic-block path, plus fresh
// symbolic name generation for unconstrained inputs.
//
// The persistent-chain-with-flattening representation is adapted
// from the teacher's rtcheck/val.go ValState/frameValState: each
// binding is a link in an immutable chain so branching to a sibling
// path is a cheap pointer copy rather than a deep copy, and the chain
// collapses into a flat map once it grows past a budget so lookups on
// a long-lived path don't degrade to a linear scan.
package store

import (
	"encoding/hex"
	"fmt"

	"github.com/aclements/symexec/internal/smt"
	"golang.org/x/crypto/blake2b"
)

// Kind tags which case of the symbolic value union a Value holds
// (spec.md §4.1).
type Kind int

const (
	// Concrete is a known bit-vector constant.
	Concrete Kind = iota
	// Symbol is an opaque, unconstrained free variable.
	Symbol
	// Expression is a structured SMT expression built from other
	// values (e.g. the right-hand side of an assignment before it's
	// bound to a signal).
	Expression
)

// Value is the symbolic store's value type: a small tagged union over
// a concrete bit-vector constant, an opaque symbol, or a structured
// expression, each carrying a bit width (spec.md §4.1).
type Value struct {
	Kind  Kind
	Width int

	bits uint64     // valid when Kind == Concrete
	name string     // valid when Kind == Symbol
	expr  *smt.Expr // valid when Kind == Expression
}

func NewConcrete(width int, bits uint64) Value {
	if width < 64 {
		bits &= (uint64(1) << uint(width)) - 1
	}
	return Value{Kind: Concrete, Width: width, bits: bits}
}

func NewSymbol(width int, name string) Value {
	return Value{Kind: Symbol, Width: width, name: name}
}

func NewExpression(width int, e *smt.Expr) Value {
	return Value{Kind: Expression, Width: width, expr: e}
}

// ToExpr lowers v to the smt.Expr the solver reasons about.
func (v Value) ToExpr() *smt.Expr {
	switch v.Kind {
	case Concrete:
		return smt.BVConst(v.Width, v.bits)
	case Symbol:
		return smt.BVVar(v.name, v.Width)
	case Expression:
		return v.expr
	}
	panic("store: invalid Value")
}

func (v Value) String() string {
	switch v.Kind {
	case Concrete:
		return fmt.Sprintf("%d'h%x", v.Width, v.bits)
	case Symbol:
		return v.name
	case Expression:
		return v.expr.String()
	}
	return "<invalid>"
}

// signalKey identifies one signal inside one module instance, the
// store's two-level addressing scheme (spec.md §4.1).
type signalKey struct {
	Instance string
	Signal   string
}

// node is one link in the persistent binding chain, mirroring
// frameValState's parent/bind/val/flat shape.
type node struct {
	parent *node
	budget int

	// If flat is non-nil, parent, key, and val are unused: the whole
	// chain above this point has been collapsed into flat.
	flat map[signalKey]Value

	key signalKey
	val Value
	set bool // false would mark key as unbound; Set always stores true
}

// chainBudget bounds how many links accumulate before flatten
// collapses them into a map, trading a bit of allocation for
// bounded-depth lookups on long paths.
const chainBudget = 32

// Store is an immutable snapshot of every signal's current symbolic
// value across all module instances. Set returns a new Store
// sharing structure with its parent; the zero Store is empty.
type Store struct {
	n *node
}

// Get returns the current value of instance.signal and whether it is
// bound.
func (s Store) Get(instance, signal string) (Value, bool) {
	key := signalKey{instance, signal}
	for n := s.n; n != nil; n = n.parent {
		if n.flat != nil {
			v, ok := n.flat[key]
			return v, ok
		}
		if n.key == key {
			return n.val, n.set
		}
	}
	return Value{}, false
}

// Set returns a new Store like s but with instance.signal bound to v.
func (s Store) Set(instance, signal string, v Value) Store {
	budget := chainBudget
	if s.n != nil {
		budget = s.n.budget - 1
	}
	n := &node{parent: s.n, budget: budget, key: signalKey{instance, signal}, val: v, set: true}
	if budget <= 0 {
		n.flat = n.flatten()
		n.parent = nil
	}
	return Store{n}
}

// flatten collapses the chain rooted at n into a single map, with the
// most recent binding for each key winning.
func (n *node) flatten() map[signalKey]Value {
	if n == nil {
		return nil
	}
	if n.flat != nil {
		return n.flat
	}
	flat := make(map[signalKey]Value)
	seen := make(map[signalKey]bool)
	for cur := n; cur != nil; cur = cur.parent {
		if cur.flat != nil {
			for k, v := range cur.flat {
				if !seen[k] {
					seen[k] = true
					flat[k] = v
				}
			}
			continue
		}
		if !seen[cur.key] {
			seen[cur.key] = true
			if cur.set {
				flat[cur.key] = cur.val
			}
		}
	}
	return flat
}

// Signals lists every (instance, signal) pair currently bound, in no
// particular order. It is intended for debug printing and snapshot
// comparison in tests, not for hot-path use.
func (s Store) Signals() map[string]map[string]Value {
	out := map[string]map[string]Value{}
	flat := s.n.flatten()
	for k, v := range flat {
		m, ok := out[k.Instance]
		if !ok {
			m = map[string]Value{}
			out[k.Instance] = m
		}
		m[k.Signal] = v
	}
	return out
}

// FreshSymbol deterministically derives a new symbol name from seed
// (in this module "<instance>.<signal>", or "<instance>.<signal>@<cycle>"
// for a per-cycle input), so that re-running the
// same combination of instance/cycle/path produces byte-identical
// symbol names for golden-output comparison rather than relying on
// process-global counters or randomness.
func FreshSymbol(seed string) string {
	sum := blake2b.Sum256([]byte(seed))
	return "sym_" + hex.EncodeToString(sum[:8])
}
