// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smt

import "strings"

// PathCondition accumulates the guard predicates collected while
// walking one basic-block path (spec.md §4.1 "Path condition") on top
// of a Solver. It exists mainly to enforce the push/pop discipline the
// statement visitor relies on: every guard push is undone by exactly
// one pop when the visitor backs out of that branch, and Depth lets
// callers assert that discipline in tests.
type PathCondition struct {
	solver Solver
	depth  int
	// stack[i] holds the assertions added at scope i, for String's
	// debug rendering; it does not affect solving.
	stack [][]*Expr
}

func NewPathCondition(s Solver) *PathCondition {
	return &PathCondition{solver: s, stack: [][]*Expr{nil}}
}

// Push opens a new guard scope, e.g. on entering a conditional's
// branch.
func (pc *PathCondition) Push() {
	pc.solver.Push()
	pc.depth++
	pc.stack = append(pc.stack, nil)
}

// Pop closes the most recently opened guard scope.
func (pc *PathCondition) Pop() {
	if pc.depth == 0 {
		panic("smt: PathCondition.Pop without matching Push")
	}
	pc.solver.Pop()
	pc.depth--
	pc.stack = pc.stack[:len(pc.stack)-1]
}

// Depth reports the number of currently open scopes.
func (pc *PathCondition) Depth() int {
	return pc.depth
}

// Add asserts a guard predicate in the current scope.
func (pc *PathCondition) Add(e *Expr) {
	pc.solver.Assert(e)
	top := len(pc.stack) - 1
	pc.stack[top] = append(pc.stack[top], e)
}

// Check reports whether the accumulated path condition is
// satisfiable.
func (pc *PathCondition) Check() Result {
	return pc.solver.CheckSat()
}

// Model returns the model for the most recent satisfiable Check.
func (pc *PathCondition) Model() Model {
	return pc.solver.Model()
}

// String renders the accumulated conjunction of guards, most deeply
// nested last, for debug logging (spec.md's "ambient stack" logging
// requirement).
func (pc *PathCondition) String() string {
	var parts []string
	for _, scope := range pc.stack {
		for _, e := range scope {
			parts = append(parts, e.String())
		}
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " ∧ ")
}
