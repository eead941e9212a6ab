// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smt is the narrow boundary the spec draws around the SMT
// decision procedure (spec.md §1: "an external solver provides a
// context supporting push/pop, assert, check-sat, and model
// extraction over fixed-width bit-vector logic"). It defines a
// structured bit-vector/boolean expression type, the Solver interface
// that boundary implies, and one concrete (bounded, brute-force)
// implementation good enough to discharge the fragment the statement
// visitor actually emits. A production deployment is expected to
// swap Solver for a real binding; nothing outside this package
// depends on the concrete implementation.
package smt

import (
	"fmt"
	"strings"
)

// Sort is the SMT sort of an expression: fixed-width bit-vector or
// boolean.
type Sort int

const (
	SortBV Sort = iota
	SortBool
)

// Op names an SMT operator using its standard SMT-LIB-ish spelling,
// per the operator-mapping table in spec.md §4.2.
type Op string

const (
	OpBVAdd  Op = "bvadd"
	OpBVSub  Op = "bvsub"
	OpBVMul  Op = "bvmul"
	OpBVUDiv Op = "bvudiv"
	OpBVURem Op = "bvurem"
	OpBVAnd  Op = "bvand"
	OpBVOr   Op = "bvor"
	OpBVXor  Op = "bvxor"
	OpBVNot  Op = "bvnot"
	OpBVNeg  Op = "bvneg"
	OpBVShl  Op = "bvshl"
	OpBVLShr Op = "bvlshr"
	OpBVAShr Op = "bvashr"

	OpEq       Op = "="
	OpDistinct Op = "distinct"
	OpBVULt    Op = "bvult"
	OpBVULe    Op = "bvule"
	OpBVUGt    Op = "bvugt"
	OpBVUGe    Op = "bvuge"

	OpAnd Op = "and"
	OpOr  Op = "or"
	OpNot Op = "not"

	opConst Op = "const"
	opVar   Op = "var"
)

// Expr is a structured SMT expression: a leaf (a bit-vector constant
// or a named variable) or an operator applied to argument
// expressions. Using a tree with structural sharing rather than
// string concatenation (spec.md §9 design note) keeps construction
// cheap and makes String() usable as a stable cache key (spec.md §6
// "Cache format").
type Expr struct {
	Sort  Sort
	Op    Op
	Width int // meaningful for SortBV
	Const uint64
	Name  string
	Args  []*Expr
}

func BVConst(width int, val uint64) *Expr {
	if width < 64 {
		val &= (uint64(1) << uint(width)) - 1
	}
	return &Expr{Sort: SortBV, Op: opConst, Width: width, Const: val}
}

func BVVar(name string, width int) *Expr {
	return &Expr{Sort: SortBV, Op: opVar, Width: width, Name: name}
}

func bvOp(op Op, width int, args ...*Expr) *Expr {
	return &Expr{Sort: SortBV, Op: op, Width: width, Args: args}
}

func BVBinOp(op Op, x, y *Expr) *Expr { return bvOp(op, x.Width, x, y) }
func BVUnOp(op Op, x *Expr) *Expr     { return bvOp(op, x.Width, x) }

func boolOp(op Op, args ...*Expr) *Expr {
	return &Expr{Sort: SortBool, Op: op, Args: args}
}

func Cmp(op Op, x, y *Expr) *Expr { return boolOp(op, x, y) }
func And(args ...*Expr) *Expr     { return boolOp(OpAnd, args...) }
func Or(args ...*Expr) *Expr      { return boolOp(OpOr, args...) }
func Not(x *Expr) *Expr           { return boolOp(OpNot, x) }

// BoolConst returns a Boolean literal: a SortBool constant node whose
// Const is 1 for true and 0 for false (Width is left unset).
func BoolConst(b bool) *Expr {
	v := uint64(0)
	if b {
		v = 1
	}
	return &Expr{Sort: SortBool, Op: opConst, Const: v}
}

// FromBV converts a bit-vector expression to boolean via "x != 0",
// the rule spec.md §4.2 gives for `&& || !` operands.
func FromBV(x *Expr) *Expr {
	if x.Sort == SortBool {
		return x
	}
	return Cmp(OpDistinct, x, BVConst(x.Width, 0))
}

// String renders a stable s-expression form, used for debug output
// and as the literal cache key spec.md §6 describes ("the textual
// form of a guard expression").
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case opConst:
		if e.Sort == SortBool {
			if e.Const != 0 {
				return "true"
			}
			return "false"
		}
		return fmt.Sprintf("(_ bv%d %d)", e.Const, e.Width)
	case opVar:
		return e.Name
	}
	parts := make([]string, 0, len(e.Args)+1)
	parts = append(parts, string(e.Op))
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Vars returns the distinct free-variable names referenced by e, in
// first-occurrence order.
func (e *Expr) Vars() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*Expr)
	walk = func(e *Expr) {
		if e == nil {
			return
		}
		if e.Op == opVar && !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e.Name)
		}
		for _, a := range e.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}
