// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smt

// Result is the outcome of a CheckSat query.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model maps free-variable names to a satisfying concrete assignment.
type Model map[string]uint64

// Solver is the external SMT context the spec assumes (spec.md §1):
// push/pop scoping, incremental assertion, satisfiability checking,
// and model extraction over fixed-width bit-vector and boolean
// expressions. Nothing in this module depends on a specific binding;
// internal/smt/bruteforce.go is the one shipped here, standing in for
// a real SMT backend.
type Solver interface {
	// Push opens a new assertion scope.
	Push()
	// Pop discards the most recently opened scope and its assertions.
	// It is a programming error to call Pop without a matching prior
	// Push; implementations may panic.
	Pop()
	// Assert adds e, which must have SortBool, to the current scope.
	Assert(e *Expr)
	// CheckSat reports whether the conjunction of all asserted
	// expressions across all open scopes is satisfiable.
	CheckSat() Result
	// Model returns a satisfying assignment for the most recent Sat
	// result from CheckSat. Its return value is unspecified otherwise.
	Model() Model
}
