// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"testing"

	"github.com/aclements/symexec/internal/cfg"
	"github.com/aclements/symexec/internal/rtlast"
	"github.com/aclements/symexec/internal/smt"
	"github.com/aclements/symexec/internal/store"
)

func newExecutor() *Executor {
	return &Executor{
		PC:       smt.NewPathCondition(smt.NewBruteForce()),
		Instance: "top",
	}
}

func TestTriviallyFalseAssertion(t *testing.T) {
	body := &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
		{Kind: rtlast.StmtAssert, AssertKind: rtlast.AssertImmediate, Predicate: rtlast.Lit(1, 0)},
	}}
	g := cfg.Build(body)
	if len(g.Paths) != 1 {
		t.Fatalf("expected a single path through a straight-line block, got %d", len(g.Paths))
	}

	ex := newExecutor()
	if err := ex.Run(g, g.Paths[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ex.Violations()) != 1 {
		t.Fatalf("assert(0): want 1 violation, got %d", len(ex.Violations()))
	}
}

func TestAssertPropertyWithResolvedPredicateIsChecked(t *testing.T) {
	body := &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
		{Kind: rtlast.StmtAssert, AssertKind: rtlast.AssertProperty, Predicate: rtlast.Lit(1, 0)},
	}}
	g := cfg.Build(body)

	ex := newExecutor()
	if err := ex.Run(g, g.Paths[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ex.Violations()) != 1 {
		t.Fatalf("a resolved property predicate should be checked like an immediate assertion, got %d violations", len(ex.Violations()))
	}
}

func TestAssertPropertyWithoutPredicateIsSkipped(t *testing.T) {
	body := &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
		{Kind: rtlast.StmtAssert, AssertKind: rtlast.AssertProperty, PropertyName: "p_never_en"},
	}}
	g := cfg.Build(body)

	ex := newExecutor()
	if err := ex.Run(g, g.Paths[0]); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ex.Violations()) != 0 {
		t.Fatalf("an unresolved property reference should be skipped, got %d violations", len(ex.Violations()))
	}
}

func TestConditionalCounterFindsViolation(t *testing.T) {
	// if (en) begin count = count + 1; assert(count < 4); end
	// else assert(count < 4);
	assertCountLt4 := func() *rtlast.Stmt {
		return &rtlast.Stmt{Kind: rtlast.StmtAssert, AssertKind: rtlast.AssertImmediate,
			Predicate: rtlast.Bin(rtlast.OpLt, rtlast.Ident("count"), rtlast.Lit(4, 4))}
	}
	body := &rtlast.Stmt{
		Kind: rtlast.StmtIf,
		Cond: rtlast.Ident("en"),
		Then: &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
			{Kind: rtlast.StmtBlockingAssign, LHS: "count", RHS: rtlast.Bin(rtlast.OpAdd, rtlast.Ident("count"), rtlast.Lit(4, 1))},
			assertCountLt4(),
		}},
		Else: &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{assertCountLt4()}},
	}
	g := cfg.Build(body)
	if len(g.Paths) != 2 {
		t.Fatalf("expected 2 paths (en taken / not taken), got %d", len(g.Paths))
	}

	var sawViolation bool
	for _, p := range g.Paths {
		ex := newExecutor()
		ex.Store = ex.Store.Set("top", "count", store.NewSymbol(4, "count0"))
		if err := ex.Run(g, p); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(ex.Violations()) > 0 {
			sawViolation = true
		}
	}
	if !sawViolation {
		t.Fatalf("expected at least one path to expose a reachable count<4 violation")
	}
}

func TestNestedContradictoryGuardAbandonsPath(t *testing.T) {
	// if (a) begin if (a == 0) y = 1; end
	//
	// The outer then-arm commits a != 0; the inner then-arm would add
	// a == 0 on top of that, which is unsatisfiable, so exactly the
	// outer-then/inner-then path should be abandoned before "y = 1" runs.
	body := &rtlast.Stmt{
		Kind: rtlast.StmtIf,
		Cond: rtlast.Ident("a"),
		Then: &rtlast.Stmt{
			Kind: rtlast.StmtIf,
			Cond: rtlast.Bin(rtlast.OpEq, rtlast.Ident("a"), rtlast.Lit(32, 0)),
			Then: &rtlast.Stmt{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 1)},
		},
	}
	g := cfg.Build(body)
	if len(g.Paths) != 3 {
		t.Fatalf("expected 3 paths (outer skipped, outer-then/inner-skipped, outer-then/inner-then), got %d", len(g.Paths))
	}

	var abandoned int
	for _, p := range g.Paths {
		ex := newExecutor()
		if err := ex.Run(g, p); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if ex.Abandoned() {
			abandoned++
			if _, ok := ex.Store.Get("top", "y"); ok {
				t.Errorf("abandoned path still executed the statement past the infeasible guard")
			}
		}
	}
	if abandoned != 1 {
		t.Fatalf("expected exactly 1 abandoned path, got %d", abandoned)
	}
}

func TestElseIfChainThreeFeasiblePaths(t *testing.T) {
	// if (x==0) y=1; else if (x==1) y=2; else y=3;
	body := &rtlast.Stmt{
		Kind: rtlast.StmtIf,
		Cond: rtlast.Bin(rtlast.OpEq, rtlast.Ident("x"), rtlast.Lit(2, 0)),
		Then: &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
			{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 1)},
		}},
		Else: &rtlast.Stmt{
			Kind: rtlast.StmtIf,
			Cond: rtlast.Bin(rtlast.OpEq, rtlast.Ident("x"), rtlast.Lit(2, 1)),
			Then: &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
				{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 2)},
			}},
			Else: &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
				{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 3)},
			}},
		},
	}
	g := cfg.Build(body)
	if len(g.Paths) != 3 {
		t.Fatalf("expected 3 top-level paths through an if/else-if/else chain, got %d", len(g.Paths))
	}

	wantY := []uint64{1, 2, 3}
	for i, p := range g.Paths {
		ex := newExecutor()
		if err := ex.Run(g, p); err != nil {
			t.Fatalf("path %d: Run: %v", i, err)
		}
		if ex.PC.Check() != smt.Sat {
			t.Fatalf("path %d: expected feasible, got %s", i, ex.PC.Check())
		}
		v, ok := ex.Store.Get("top", "y")
		if !ok {
			t.Fatalf("path %d: y not bound", i)
		}
		e := v.ToExpr()
		if e.Sort != smt.SortBV || e.Const != wantY[i] {
			t.Errorf("path %d: y = %v, want constant %d", i, e, wantY[i])
		}
	}
}

func TestCaseDefaultArmGuardExcludesLabeledValues(t *testing.T) {
	body := &rtlast.Stmt{Kind: rtlast.StmtCase, Selector: rtlast.Ident("sel"), Items: []rtlast.CaseItem{
		{Values: []*rtlast.Expr{rtlast.Lit(2, 0)}, Body: &rtlast.Stmt{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 1)}},
		{Values: []*rtlast.Expr{rtlast.Lit(2, 1)}, Body: &rtlast.Stmt{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 2)}},
		{Body: &rtlast.Stmt{Kind: rtlast.StmtBlockingAssign, LHS: "y", RHS: rtlast.Lit(2, 3)}},
	}}
	g := cfg.Build(body)
	if len(g.Paths) != 3 {
		t.Fatalf("expected 3 case arms as 3 paths, got %d", len(g.Paths))
	}

	// The default arm's path (the third, in arm order) stays feasible,
	// and its model picks a selector other than the labeled 0 and 1.
	ex := newExecutor()
	if err := ex.Run(g, g.Paths[2]); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.Abandoned() {
		t.Fatalf("default arm: path abandoned, want feasible")
	}
	if got := ex.PC.Check(); got != smt.Sat {
		t.Fatalf("default arm: path condition %s, want sat", got)
	}
	v, ok := ex.Store.Get("top", "sel")
	if !ok {
		t.Fatalf("default arm: sel not bound")
	}
	if got := ex.PC.Model()[v.ToExpr().Name]; got == 0 || got == 1 {
		t.Errorf("default arm: model sel = %d, want a value other than 0 or 1", got)
	}
}
