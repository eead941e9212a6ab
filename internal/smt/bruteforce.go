// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smt

import (
	"log"
	"sort"
)

// BruteForce is a small in-process decision procedure for the
// fixed-width bit-vector/boolean fragment the statement visitor
// emits (spec.md's domain-stack note: "a small in-process bit-vector
// decision procedure sufficient for the fragment the statement
// visitor emits"). It is not a general SMT solver: satisfiability is
// decided by enumerating every free variable's domain up to a bounded
// total, which is exact for the widths a test fixture or small design
// is expected to use and degrades to a pessimistic Unsat (never
// Unknown, per spec.md's solver-failure policy) once the search
// space exceeds MaxCombinations. Swap in a real binding behind Solver
// for anything larger.
type BruteForce struct {
	scopes    [][]*Expr
	lastModel Model

	// MaxCombinations bounds the total number of assignments tried
	// before giving up and reporting Unsat. Zero selects a default.
	MaxCombinations int
}

const defaultMaxCombinations = 1 << 20

func NewBruteForce() *BruteForce {
	return &BruteForce{scopes: [][]*Expr{nil}}
}

func (s *BruteForce) Push() {
	s.scopes = append(s.scopes, nil)
}

func (s *BruteForce) Pop() {
	if len(s.scopes) == 1 {
		panic("smt: BruteForce.Pop without matching Push")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *BruteForce) Assert(e *Expr) {
	top := len(s.scopes) - 1
	s.scopes[top] = append(s.scopes[top], e)
}

func (s *BruteForce) Model() Model {
	return s.lastModel
}

func (s *BruteForce) asserts() []*Expr {
	var out []*Expr
	for _, scope := range s.scopes {
		out = append(out, scope...)
	}
	return out
}

func (s *BruteForce) CheckSat() Result {
	s.lastModel = nil
	asserts := s.asserts()
	if len(asserts) == 0 {
		return Sat
	}

	widths := map[string]int{}
	var order []string
	for _, e := range asserts {
		for _, name := range e.Vars() {
			if _, ok := widths[name]; !ok {
				order = append(order, name)
				widths[name] = varWidth(e, name)
			}
		}
	}

	if len(order) == 0 {
		if evalConjunction(asserts, nil) {
			return Sat
		}
		return Unsat
	}

	domains := make(map[string][]uint64, len(order))
	max := s.MaxCombinations
	if max == 0 {
		max = defaultMaxCombinations
	}
	total := 1
	for _, name := range order {
		w := widths[name]
		var d []uint64
		if w <= 30 {
			n := uint64(1) << uint(w)
			d = make([]uint64, n)
			for v := range d {
				d[v] = uint64(v)
			}
		} else {
			d = sampleDomain(asserts, name, w)
			if d == nil {
				// No usable comparisons to sample from, and the full
				// domain is too large to enumerate; treat as an
				// unresolvable query: answered Unsat, pessimistically,
				// with a logged warning.
				log.Printf("smt: %d-bit variable %s has no constant comparison to sample; treating query as unsat", w, name)
				return Unsat
			}
		}
		if total > max/len(d) {
			return Unsat
		}
		domains[name] = d
		total *= len(d)
	}

	env := make(map[string]uint64, len(order))
	found := enumerate(order, domains, 0, env, asserts)
	if found {
		model := make(Model, len(env))
		for k, v := range env {
			model[k] = v
		}
		s.lastModel = model
		return Sat
	}
	return Unsat
}

// sampleDomain builds a representative domain for a variable too wide
// to enumerate exhaustively: every constant it's directly compared
// against anywhere in asserts, plus 0, plus one value guaranteed
// distinct from all of those (spec.md's solver-failure policy would
// otherwise make any guard on a wide, Lookup-less signal such as a
// plain "en" unsatisfiable by construction). Returns nil if name never
// appears in a direct comparison, since then no finite sample can
// stand in for the full domain.
func sampleDomain(asserts []*Expr, name string, width int) []uint64 {
	seen := map[uint64]bool{0: true}
	found := false
	var walk func(e *Expr)
	walk = func(e *Expr) {
		switch e.Op {
		case OpEq, OpDistinct, OpBVULt, OpBVULe, OpBVUGt, OpBVUGe:
			a, b := e.Args[0], e.Args[1]
			if a.Op == opVar && a.Name == name && b.Op == opConst {
				seen[b.Const] = true
				found = true
			}
			if b.Op == opVar && b.Name == name && a.Op == opConst {
				seen[a.Const] = true
				found = true
			}
		}
		for _, a := range e.Args {
			walk(a)
		}
	}
	for _, e := range asserts {
		walk(e)
	}
	if !found {
		return nil
	}

	mask := uint64(1)<<uint(width) - 1
	fresh := mask
	for seen[fresh] {
		fresh--
	}
	seen[fresh] = true

	domain := make([]uint64, 0, len(seen))
	for v := range seen {
		domain = append(domain, v)
	}
	sort.Slice(domain, func(i, j int) bool { return domain[i] < domain[j] })
	return domain
}

func enumerate(order []string, domains map[string][]uint64, i int, env map[string]uint64, asserts []*Expr) bool {
	if i == len(order) {
		return evalConjunction(asserts, env)
	}
	name := order[i]
	for _, v := range domains[name] {
		env[name] = v
		if enumerate(order, domains, i+1, env, asserts) {
			return true
		}
	}
	delete(env, name)
	return false
}

func evalConjunction(asserts []*Expr, env map[string]uint64) bool {
	for _, e := range asserts {
		if !evalBool(e, env) {
			return false
		}
	}
	return true
}

// varWidth finds the bit width a variable was declared with inside e,
// returning 0 if e never mentions it (shouldn't happen given how
// order/widths is built).
func varWidth(e *Expr, name string) int {
	if e.Op == opVar && e.Name == name {
		return e.Width
	}
	for _, a := range e.Args {
		if w := varWidth(a, name); w != 0 {
			return w
		}
	}
	return 0
}

func evalBV(e *Expr, env map[string]uint64) (uint64, int) {
	switch e.Op {
	case opConst:
		return e.Const, e.Width
	case opVar:
		return env[e.Name], e.Width
	}
	mask := func(w int, v uint64) uint64 {
		if w >= 64 {
			return v
		}
		return v & ((uint64(1) << uint(w)) - 1)
	}
	if len(e.Args) == 1 {
		x, w := evalBV(e.Args[0], env)
		switch e.Op {
		case OpBVNot:
			return mask(w, ^x), w
		case OpBVNeg:
			return mask(w, -x), w
		}
	}
	x, w := evalBV(e.Args[0], env)
	y, _ := evalBV(e.Args[1], env)
	switch e.Op {
	case OpBVAdd:
		return mask(w, x+y), w
	case OpBVSub:
		return mask(w, x-y), w
	case OpBVMul:
		return mask(w, x*y), w
	case OpBVUDiv:
		if y == 0 {
			return mask(w, ^uint64(0)), w
		}
		return mask(w, x/y), w
	case OpBVURem:
		if y == 0 {
			return x, w
		}
		return mask(w, x%y), w
	case OpBVAnd:
		return mask(w, x&y), w
	case OpBVOr:
		return mask(w, x|y), w
	case OpBVXor:
		return mask(w, x^y), w
	case OpBVShl:
		return mask(w, x<<uint(y)), w
	case OpBVLShr:
		return mask(w, x>>uint(y)), w
	case OpBVAShr:
		signBit := uint64(1) << uint(w-1)
		if w < 64 && x&signBit != 0 {
			shifted := x >> uint(y)
			fill := ^uint64(0) << uint(w-int(y))
			if int(y) >= w {
				return mask(w, ^uint64(0)), w
			}
			return mask(w, shifted|fill), w
		}
		return mask(w, x>>uint(y)), w
	}
	return 0, w
}

func evalBool(e *Expr, env map[string]uint64) bool {
	switch e.Op {
	case opConst:
		return e.Const != 0
	case OpAnd:
		for _, a := range e.Args {
			if !evalBool(a, env) {
				return false
			}
		}
		return true
	case OpOr:
		for _, a := range e.Args {
			if evalBool(a, env) {
				return true
			}
		}
		return false
	case OpNot:
		return !evalBool(e.Args[0], env)
	case OpEq:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x == y
	case OpDistinct:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x != y
	case OpBVULt:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x < y
	case OpBVULe:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x <= y
	case OpBVUGt:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x > y
	case OpBVUGe:
		x, _ := evalBV(e.Args[0], env)
		y, _ := evalBV(e.Args[1], env)
		return x >= y
	}
	return false
}
