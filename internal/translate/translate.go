// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package translate lowers rtlast expressions into SMT bit-vector and
// boolean expressions against a symbolic store (spec.md §4.2). It is
// a pure function of (expression, store): it never mutates the store
// it is given, but returns an extended store with any fresh symbols it
// minted already bound; the visitor adopts that store so later reads
// see the same value.
//
// The operator dispatch is modeled on the original implementation's
// helpers/rvalue_to_z3.py, which walks a parsed expression tree and
// switches on operator text to build the matching Z3 term; here the
// switch is over rtlast.Operator instead of parser token strings.
package translate

import (
	"fmt"
	"log"

	"github.com/aclements/symexec/internal/rtlast"
	"github.com/aclements/symexec/internal/smt"
	"github.com/aclements/symexec/internal/store"
)

// DefaultWidth is the bit width assumed for a bare identifier or
// literal whose width can't be determined from the design (spec.md
// §4.2's fallback case). Most hardware designs this engine targets
// use this as their default packed-signal width.
const DefaultWidth = 32

// Lookup resolves a signal's declared width; current values come from
// the store. Translate calls back into it so callers can supply
// elaboration-derived widths
// without this package depending on internal/elaborate.
type Lookup interface {
	Width(instance, signal string) (int, bool)
}

// Translator lowers expressions against one instance's view of the
// store.
type Translator struct {
	Store    store.Store
	Instance string
	Lookup   Lookup

	// fresh is called to mint a store binding for a signal read
	// before it was ever written (spec.md §4.1's "inputs are seeded
	// with fresh symbols" rule). It returns the updated store and the
	// value bound.
	fresh func(store.Store, string, string, int) (store.Store, store.Value)
}

// New returns a Translator that seeds never-before-seen signals with
// fresh symbols derived deterministically from their name.
func New(s store.Store, instance string, lookup Lookup) *Translator {
	return &Translator{
		Store:    s,
		Instance: instance,
		Lookup:   lookup,
		fresh: func(s store.Store, instance, signal string, width int) (store.Store, store.Value) {
			name := store.FreshSymbol(instance + "." + signal)
			v := store.NewSymbol(width, name)
			return s.Set(instance, signal, v), v
		},
	}
}

// Expr translates e into an SMT expression, returning the possibly
// updated store (if a fresh symbol had to be minted for an unbound
// identifier).
func (t *Translator) Expr(e *rtlast.Expr) (*smt.Expr, store.Store) {
	switch e.Kind {
	case rtlast.ExprLiteral:
		return smt.BVConst(widthOrDefault(e.Width), e.Literal), t.Store

	case rtlast.ExprIdent:
		width := widthOrDefault(e.Width)
		if t.Lookup != nil {
			if w, ok := t.Lookup.Width(t.Instance, e.Name); ok {
				width = w
			}
		}
		if v, ok := t.Store.Get(t.Instance, e.Name); ok {
			return v.ToExpr(), t.Store
		}
		t.Store, _ = t.fresh(t.Store, t.Instance, e.Name, width)
		v, _ := t.Store.Get(t.Instance, e.Name)
		return v.ToExpr(), t.Store

	case rtlast.ExprUnary:
		x, s := t.Expr(e.X)
		t.Store = s
		return t.unary(e.Op, x), t.Store

	case rtlast.ExprBinary:
		x, s := t.Expr(e.X)
		t.Store = s
		y, s := t.Expr(e.Y)
		t.Store = s
		return t.binary(e.Op, x, y), t.Store

	default:
		log.Printf("translate: unsupported expression kind %v at %v, using zero bit-vector", e.Kind, e.Pos)
		return smt.BVConst(DefaultWidth, 0), t.Store
	}
}

func widthOrDefault(w int) int {
	if w <= 0 {
		return DefaultWidth
	}
	return w
}

// unary lowers a prefix unary operator (spec.md §4.2).
func (t *Translator) unary(op rtlast.Operator, x *smt.Expr) *smt.Expr {
	switch op {
	case rtlast.OpBitNot:
		return smt.BVUnOp(smt.OpBVNot, x)
	case rtlast.OpNeg:
		return smt.BVUnOp(smt.OpBVNeg, x)
	case rtlast.OpLogNot:
		return smt.Not(smt.FromBV(x))
	default:
		log.Printf("translate: unsupported unary operator %q, using operand unchanged", op)
		return x
	}
}

// binary lowers an infix operator (spec.md §4.2's operator table).
func (t *Translator) binary(op rtlast.Operator, x, y *smt.Expr) *smt.Expr {
	switch op {
	case rtlast.OpAdd:
		return smt.BVBinOp(smt.OpBVAdd, x, y)
	case rtlast.OpSub:
		return smt.BVBinOp(smt.OpBVSub, x, y)
	case rtlast.OpMul:
		return smt.BVBinOp(smt.OpBVMul, x, y)
	case rtlast.OpDiv:
		return smt.BVBinOp(smt.OpBVUDiv, x, y)
	case rtlast.OpMod:
		return smt.BVBinOp(smt.OpBVURem, x, y)

	case rtlast.OpBitAnd:
		return smt.BVBinOp(smt.OpBVAnd, x, y)
	case rtlast.OpBitOr:
		return smt.BVBinOp(smt.OpBVOr, x, y)
	case rtlast.OpBitXor:
		return smt.BVBinOp(smt.OpBVXor, x, y)

	case rtlast.OpShl:
		return smt.BVBinOp(smt.OpBVShl, x, y)
	case rtlast.OpShr:
		return smt.BVBinOp(smt.OpBVLShr, x, y)
	case rtlast.OpAShr:
		return smt.BVBinOp(smt.OpBVAShr, x, y)

	case rtlast.OpEq:
		return smt.Cmp(smt.OpEq, x, y)
	case rtlast.OpNeq:
		return smt.Cmp(smt.OpDistinct, x, y)
	case rtlast.OpLt:
		return smt.Cmp(smt.OpBVULt, x, y)
	case rtlast.OpLe:
		return smt.Cmp(smt.OpBVULe, x, y)
	case rtlast.OpGt:
		return smt.Cmp(smt.OpBVUGt, x, y)
	case rtlast.OpGe:
		return smt.Cmp(smt.OpBVUGe, x, y)

	case rtlast.OpLogAnd:
		return smt.And(smt.FromBV(x), smt.FromBV(y))
	case rtlast.OpLogOr:
		return smt.Or(smt.FromBV(x), smt.FromBV(y))

	default:
		log.Printf("translate: unsupported binary operator %q, using left operand unchanged", op)
		return x
	}
}

// String is a debug helper used by the visitor's trace logging.
func String(e *smt.Expr) string {
	return fmt.Sprint(e)
}
