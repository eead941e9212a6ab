// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package translate

import (
	"testing"

	"github.com/aclements/symexec/internal/rtlast"
	"github.com/aclements/symexec/internal/smt"
	"github.com/aclements/symexec/internal/store"
)

func TestLiteralAndArithmetic(t *testing.T) {
	tr := New(store.Store{}, "top", nil)
	e := rtlast.Bin(rtlast.OpAdd, rtlast.Lit(8, 1), rtlast.Lit(8, 2))
	got, _ := tr.Expr(e)
	want := "(bvadd (_ bv1 8) (_ bv2 8))"
	if got.String() != want {
		t.Errorf("1+2 = %s, want %s", got.String(), want)
	}
}

func TestIdentBindsFreshSymbolOnce(t *testing.T) {
	tr := New(store.Store{}, "top", nil)
	id := rtlast.Ident("count")

	first, s1 := tr.Expr(id)
	tr.Store = s1
	second, s2 := tr.Expr(id)

	if first.String() != second.String() {
		t.Errorf("repeated read of unbound signal produced different symbols: %s vs %s", first, second)
	}
	if _, ok := s2.Get("top", "count"); !ok {
		t.Errorf("fresh symbol for count was not bound into the store")
	}
}

func TestComparisonProducesBoolSort(t *testing.T) {
	tr := New(store.Store{}, "top", nil)
	e := rtlast.Bin(rtlast.OpLt, rtlast.Ident("count"), rtlast.Lit(8, 4))
	got, _ := tr.Expr(e)
	if got.Sort != smt.SortBool {
		t.Errorf("count < 4 has sort %v, want SortBool", got.Sort)
	}
}

func TestLogicalOperatorsConvertBitVectors(t *testing.T) {
	tr := New(store.Store{}, "top", nil)
	e := rtlast.Bin(rtlast.OpLogAnd, rtlast.Ident("a"), rtlast.Ident("b"))
	got, _ := tr.Expr(e)
	if got.Sort != smt.SortBool || got.Op != smt.OpAnd {
		t.Errorf("a && b = %s, want a top-level 'and'", got.String())
	}
}

func TestUnsupportedExprKindFallsBackWithoutPanicking(t *testing.T) {
	tr := New(store.Store{}, "top", nil)
	e := &rtlast.Expr{Kind: rtlast.ExprUnsupported}
	got, _ := tr.Expr(e)
	if got.Sort != smt.SortBV || got.Op != "const" {
		t.Errorf("unsupported expr kind = %s, want a zero bit-vector constant", got.String())
	}
}
