// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exec walks one concrete basic-block path of a CFG, carrying
// a symbolic store and path condition (spec.md §4.5 "Statement
// visitor"). It dispatches on statement kind through a small handler
// table, the same shape as the teacher's rtcheck/handlers.go
// callHandlers map, adapted from "one handler per runtime function
// call" to "one handler per rtlast.StmtKind".
package exec

import (
	"log"

	"github.com/aclements/symexec/internal/cfg"
	"github.com/aclements/symexec/internal/rtlast"
	"github.com/aclements/symexec/internal/smt"
	"github.com/aclements/symexec/internal/store"
	"github.com/aclements/symexec/internal/translate"
)

// Violation records an assertion that failed on some path (spec.md §4.6).
type Violation struct {
	Instance string
	Kind     rtlast.AssertKind
	Pos      rtlast.Pos
	Model    smt.Model
}

// pendingWrite is a nonblocking assignment queued until the end of
// the always block's execution for this cycle (spec.md §4.5: "<="
// takes effect only after every statement in the block has run).
type pendingWrite struct {
	Signal string
	Value  store.Value
}

// Executor walks a single path within one module instance's always
// block, threading the store and path condition through each
// statement in order.
type Executor struct {
	Store    store.Store
	PC       *smt.PathCondition
	Instance string
	Lookup   translate.Lookup

	nonblocking []pendingWrite
	violations  []Violation

	// StopOnFirstViolation ends Run as soon as one assertion fails,
	// per the engine's --stop-on-first option.
	StopOnFirstViolation bool
	stopped              bool

	// abandoned is set once a branch guard is pushed and found
	// unsatisfiable under the accumulated path condition (spec.md
	// §4.5's conditional rule: "check: if unsatisfiable, mark the path
	// abandoned"). The rest of the path is skipped once this is set.
	abandoned bool
}

// Violations returns the assertion failures recorded by the most
// recent Run.
func (ex *Executor) Violations() []Violation { return ex.violations }

// Abandoned reports whether the most recent Run hit an infeasible
// branch guard and stopped short (spec.md §4.5, §8's abandoned-path
// property).
func (ex *Executor) Abandoned() bool { return ex.abandoned }

type stmtHandler func(ex *Executor, s *rtlast.Stmt, next int) error

var stmtHandlers map[rtlast.StmtKind]stmtHandler

func init() {
	// StmtIf, StmtCase, and StmtLoop are branching statements handled
	// directly by execBranch in exec, not through this table: which
	// guard to assert depends on which successor the concrete path
	// took, not just the statement's own fields.
	stmtHandlers = map[rtlast.StmtKind]stmtHandler{
		rtlast.StmtBlockingAssign:    wrap((*Executor).execBlockingAssign),
		rtlast.StmtNonblockingAssign: wrap((*Executor).execNonblockingAssign),
		rtlast.StmtAssert:            wrap((*Executor).execAssert),
		rtlast.StmtCall:              wrap((*Executor).execCall),
	}
}

func wrap(f func(*Executor, *rtlast.Stmt) error) stmtHandler {
	return func(ex *Executor, s *rtlast.Stmt, _ int) error { return f(ex, s) }
}

// Run executes every basic block of path (excluding the dummy
// entry/exit sentinels) against g, in order, flushing nonblocking
// writes once the whole path has executed (spec.md §4.5). A branch
// guard found infeasible under the path condition so far sets
// Abandoned and stops the walk early, same as hitting a violation
// with StopOnFirstViolation.
func (ex *Executor) Run(g *cfg.Graph, path cfg.Path) error {
	dirs := path.Direction()
	for i, blockIdx := range path {
		if blockIdx == cfg.EntryID || blockIdx == cfg.ExitID {
			continue
		}
		if ex.stopped || ex.abandoned {
			break
		}
		block := g.Blocks[blockIdx]
		next := cfg.ExitID
		if i+1 < len(path) {
			next = path[i+1]
		}
		// dirs[i-1] is the path's direction bit for the transition out
		// of this block (cfg.Path.Direction; the loop skips the
		// sentinels at i==0 and i==len(path)-1, so i-1 always indexes
		// within dirs).
		dir := dirs[i-1]
		for j, node := range block.Nodes {
			if node.Stmt == nil {
				continue // dummy placeholder for an empty branch arm
			}
			isLast := j == len(block.Nodes)-1
			target := next
			if !isLast {
				// Only the closing statement of a block branches; every
				// other statement falls through within the same block.
				target = -3 // sentinel meaning "not a branch"
			}
			if err := ex.exec(g, blockIdx, node.Stmt, target, dir); err != nil {
				return err
			}
			if ex.stopped || ex.abandoned {
				break
			}
		}
	}
	ex.flushNonblocking()
	return nil
}

func (ex *Executor) exec(g *cfg.Graph, blockIdx int, s *rtlast.Stmt, next, dir int) error {
	if s.Kind == rtlast.StmtIf || s.Kind == rtlast.StmtCase || s.Kind == rtlast.StmtLoop {
		return ex.execBranch(g, blockIdx, s, next, dir)
	}
	h, ok := stmtHandlers[s.Kind]
	if !ok {
		log.Printf("exec: no handler for statement kind %v at %v, skipping", s.Kind, s.Pos)
		return nil
	}
	return h(ex, s, next)
}

// execBranch asserts the guard for the arm the path actually took,
// then probes feasibility: push the guard, check, and if the solver
// reports Unsat, pop it back off and mark the path abandoned without
// committing it, instead of asserting an edge the path condition
// already rules out (spec.md §4.5's conditional rule, §8's abandoned-
// path property). A satisfiable guard is kept, but at the same stack
// depth Add would have left it at: push/pop here is strictly a probe,
// not a scope the rest of the path executes inside.
//
// For If/Loop the arm is read off dir, the path's direction bit for
// this transition (cfg.Path.Direction): 1 selects the then/fall-
// through edge, 0 the else edge. Case arms aren't binary, so they're
// still recovered by locating next's position among blockIdx's
// recorded successors (cfg.Graph.Out preserves arm order).
func (ex *Executor) execBranch(g *cfg.Graph, blockIdx int, s *rtlast.Stmt, next, dir int) error {
	succ := g.Out(blockIdx)
	pos := -1
	for i, n := range succ {
		if n == next {
			pos = i
			break
		}
	}
	if pos < 0 {
		log.Printf("exec: branch at %v did not match any recorded successor, treating as unconstrained", s.Pos)
		return nil
	}

	var guard *smt.Expr
	switch s.Kind {
	case rtlast.StmtIf, rtlast.StmtLoop:
		cond := s.Cond
		if s.Kind == rtlast.StmtLoop {
			cond = s.LoopCond
		}
		var st store.Store
		guard, st = ex.translateBool(cond)
		ex.Store = st
		if dir == 0 {
			guard = smt.Not(guard)
		}

	case rtlast.StmtCase:
		var st store.Store
		guard, st = ex.caseArmGuard(s, pos)
		ex.Store = st
	}
	if guard == nil {
		return nil
	}

	ex.PC.Push()
	ex.PC.Add(guard)
	sat := ex.PC.Check()
	ex.PC.Pop()
	if sat != smt.Sat {
		ex.abandoned = true
		return nil
	}
	ex.PC.Add(guard)
	return nil
}

// caseArmGuard builds the predicate selecting arm index pos of a case
// statement: the disjunction of selector==value for a labeled arm, or
// the negation of every other arm's disjunction for the default arm
// (spec.md §4.5's case-statement semantics).
func (ex *Executor) caseArmGuard(s *rtlast.Stmt, pos int) (*smt.Expr, store.Store) {
	tr := translate.New(ex.Store, ex.Instance, ex.Lookup)
	sel, st := tr.Expr(s.Selector)
	ex.Store = st

	armEq := func(item rtlast.CaseItem) *smt.Expr {
		var eqs []*smt.Expr
		for _, v := range item.Values {
			tr := translate.New(ex.Store, ex.Instance, ex.Lookup)
			val, st := tr.Expr(v)
			ex.Store = st
			eqs = append(eqs, smt.Cmp(smt.OpEq, sel, val))
		}
		if len(eqs) == 1 {
			return eqs[0]
		}
		return smt.Or(eqs...)
	}

	item := s.Items[pos]
	if len(item.Values) > 0 {
		return armEq(item), ex.Store
	}
	// Default arm: none of the other labeled arms matched.
	var others []*smt.Expr
	for i, it := range s.Items {
		if i == pos || len(it.Values) == 0 {
			continue
		}
		others = append(others, armEq(it))
	}
	if len(others) == 0 {
		return smt.BoolConst(true), ex.Store
	}
	return smt.Not(smt.Or(others...)), ex.Store
}

func (ex *Executor) translateBool(e *rtlast.Expr) (*smt.Expr, store.Store) {
	tr := translate.New(ex.Store, ex.Instance, ex.Lookup)
	v, st := tr.Expr(e)
	return smt.FromBV(v), st
}

func (ex *Executor) execBlockingAssign(s *rtlast.Stmt) error {
	tr := translate.New(ex.Store, ex.Instance, ex.Lookup)
	val, st := tr.Expr(s.RHS)
	ex.Store = st.Set(ex.Instance, s.LHS, store.NewExpression(width(val), val))
	return nil
}

func (ex *Executor) execNonblockingAssign(s *rtlast.Stmt) error {
	tr := translate.New(ex.Store, ex.Instance, ex.Lookup)
	val, st := tr.Expr(s.RHS)
	ex.Store = st
	ex.nonblocking = append(ex.nonblocking, pendingWrite{s.LHS, store.NewExpression(width(val), val)})
	return nil
}

// flushNonblocking applies every queued nonblocking write, in program
// order, once the path has finished executing (spec.md §4.5). Later
// writes to the same signal within one cycle win, matching how real
// simulators resolve last-assignment-wins for nonblocking updates to
// the same variable.
func (ex *Executor) flushNonblocking() {
	for _, w := range ex.nonblocking {
		ex.Store = ex.Store.Set(ex.Instance, w.Signal, w.Value)
	}
	ex.nonblocking = nil
}

func (ex *Executor) execAssert(s *rtlast.Stmt) error {
	if s.AssertKind == rtlast.AssertProperty && s.Predicate == nil {
		log.Printf("exec: assert property %q at %v not resolved to an expression, skipping", s.PropertyName, s.Pos)
		return nil
	}
	pred, st := ex.translateBool(s.Predicate)
	ex.Store = st

	if s.AssertKind == rtlast.AssumeImmediate {
		ex.PC.Add(pred)
		return nil
	}
	if s.AssertKind == rtlast.CoverImmediate {
		// Cover statements don't constrain the path; they're purely
		// observational (spec.md Non-goals: coverage is not tracked).
		return nil
	}

	// assert: check whether the negation is satisfiable under the
	// current path condition; if so the assertion can fail here.
	ex.PC.Push()
	ex.PC.Add(smt.Not(pred))
	if ex.PC.Check() == smt.Sat {
		ex.violations = append(ex.violations, Violation{
			Instance: ex.Instance,
			Kind:     s.AssertKind,
			Pos:      s.Pos,
			Model:    ex.PC.Model(),
		})
		if ex.StopOnFirstViolation {
			ex.stopped = true
		}
	}
	ex.PC.Pop()
	return nil
}

func (ex *Executor) execCall(s *rtlast.Stmt) error {
	log.Printf("exec: call %q at %v has no modeled side effect, skipping", s.CallText, s.Pos)
	return nil
}

func width(e *smt.Expr) int {
	if e.Sort == smt.SortBool {
		return 1
	}
	return e.Width
}
