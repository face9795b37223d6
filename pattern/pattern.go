// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pattern is the query tree matched against the expression tree in
// package ir. A Pattern is a closed tagged variant mirroring the shape of
// ir.Expr, plus predicates (attribute/type/shape/dtype constraints) and
// combinators (alternation, conjunction, negation, dominator relation).
//
// Pattern identity matters: the matcher's memo table is keyed by the
// pattern pointer, not by its content, so two structurally identical
// Pattern values are distinct unless they are the same Go pointer.
package pattern

import (
	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/dataflow-matcher/ir"
)

// Pattern is any node in the pattern tree.
type Pattern interface {
	// node marks a structure as a pattern of this package, closing the
	// variant set to what is declared here.
	node()
	String() string
}

type (
	// Wildcard matches any expression. The blank field (here and in
	// Constant and RuntimeDepShape) keeps the struct from being zero-size,
	// so every allocation has its own address and is a distinct pattern.
	Wildcard struct{ _ byte }

	// ExprLiteral matches an expression structurally equal to Expr.
	ExprLiteral struct {
		Expr ir.Expr
	}

	// Var matches an ir.Var. An empty NameHint matches any var.
	Var struct {
		NameHint string
	}

	// DataflowVar matches an ir.DataflowVar. An empty NameHint matches any.
	DataflowVar struct {
		NameHint string
	}

	// GlobalVar matches an ir.GlobalVar by name. An empty NameHint matches
	// any global var.
	GlobalVar struct {
		NameHint string
	}

	// ExternFunc matches an ir.ExternFunc by symbol. An empty Symbol
	// matches any extern function.
	ExternFunc struct {
		Symbol string
	}

	// Constant matches any ir.Constant; its value is not inspected.
	Constant struct{ _ byte }

	// RuntimeDepShape matches an expression whose Shape() is
	// ir.RuntimeDepShape.
	RuntimeDepShape struct{ _ byte }

	// Tuple matches an ir.Tuple. When Fields is non-nil, arity must match
	// and each field matches pairwise; when nil, arity is unconstrained.
	Tuple struct {
		Fields []Pattern
	}

	// TupleGetItem matches an ir.TupleGetItem. Index == -1 accepts any
	// index.
	TupleGetItem struct {
		TuplePat Pattern
		Index    int64
	}

	// Call matches an ir.Call. When Args is non-nil, arity must match and
	// each argument matches pairwise, subject to the commutative and
	// associative rewrites of the call-pattern matching rules.
	Call struct {
		Op   Pattern
		Args []Pattern
	}

	// Function matches an ir.Function. When Params is non-nil, arity must
	// match and each parameter matches pairwise.
	Function struct {
		Params []Pattern
		Body   Pattern
	}

	// If matches an ir.If.
	If struct {
		Cond Pattern
		Then Pattern
		Else Pattern
	}

	// Attr requires Inner to match, then requires expr's attributes to
	// satisfy every entry of Attrs (see matcher.MatchRetValue).
	Attr struct {
		Inner Pattern
		Attrs map[string]any
	}

	// Type requires expr's checked type to equal Typ structurally, then
	// requires Inner to match.
	Type struct {
		Inner Pattern
		Typ   ir.Type
	}

	// Shape requires expr's shape to be a ShapeExpr whose dimensions
	// equal Dims elementwise (under the arithmetic analyzer), then
	// requires Inner to match.
	Shape struct {
		Inner Pattern
		Dims  []ir.PrimExpr
	}

	// DataType requires expr's checked type to be a tensor type with
	// dtype DType, then requires Inner to match.
	DataType struct {
		Inner Pattern
		DType dtype.DataType
	}

	// PrimArr matches an ir.ShapeExpr whose Values equal Values elementwise
	// under the arithmetic analyzer.
	PrimArr struct {
		Values []ir.PrimExpr
	}

	// Alt (alternation/or) succeeds iff Left or Right matches.
	Alt struct {
		Left, Right Pattern
	}

	// And succeeds iff both Left and Right match.
	And struct {
		Left, Right Pattern
	}

	// Not succeeds iff Reject fails to match.
	Not struct {
		Reject Pattern
	}

	// Dominator expresses a dominator-tree relationship over the graph
	// rooted at the matcher's root: Child matches some node N, every
	// non-callee input reached from N matches Parent or matches Path and
	// recursively satisfies the same rule, and some node that N dominates
	// (a dominator-tree descendant, on N's operand side) matches Parent.
	Dominator struct {
		Child  Pattern
		Path   Pattern
		Parent Pattern
	}
)

var (
	_ Pattern = (*Wildcard)(nil)
	_ Pattern = (*ExprLiteral)(nil)
	_ Pattern = (*Var)(nil)
	_ Pattern = (*DataflowVar)(nil)
	_ Pattern = (*GlobalVar)(nil)
	_ Pattern = (*ExternFunc)(nil)
	_ Pattern = (*Constant)(nil)
	_ Pattern = (*RuntimeDepShape)(nil)
	_ Pattern = (*Tuple)(nil)
	_ Pattern = (*TupleGetItem)(nil)
	_ Pattern = (*Call)(nil)
	_ Pattern = (*Function)(nil)
	_ Pattern = (*If)(nil)
	_ Pattern = (*Attr)(nil)
	_ Pattern = (*Type)(nil)
	_ Pattern = (*Shape)(nil)
	_ Pattern = (*DataType)(nil)
	_ Pattern = (*PrimArr)(nil)
	_ Pattern = (*Alt)(nil)
	_ Pattern = (*And)(nil)
	_ Pattern = (*Not)(nil)
	_ Pattern = (*Dominator)(nil)
)

func (*Wildcard) node()        {}
func (*ExprLiteral) node()     {}
func (*Var) node()             {}
func (*DataflowVar) node()     {}
func (*GlobalVar) node()       {}
func (*ExternFunc) node()      {}
func (*Constant) node()        {}
func (*RuntimeDepShape) node() {}
func (*Tuple) node()           {}
func (*TupleGetItem) node()    {}
func (*Call) node()            {}
func (*Function) node()        {}
func (*If) node()              {}
func (*Attr) node()            {}
func (*Type) node()            {}
func (*Shape) node()           {}
func (*DataType) node()        {}
func (*PrimArr) node()         {}
func (*Alt) node()             {}
func (*And) node()             {}
func (*Not) node()             {}
func (*Dominator) node()       {}

// String representations, for debugging and test failure messages. They
// are not used by the matcher itself.

func (*Wildcard) String() string        { return "*" }
func (p *ExprLiteral) String() string  { return "Literal(" + p.Expr.String() + ")" }
func (p *Var) String() string          { return "Var(" + p.NameHint + ")" }
func (p *DataflowVar) String() string  { return "DataflowVar(" + p.NameHint + ")" }
func (p *GlobalVar) String() string    { return "GlobalVar(" + p.NameHint + ")" }
func (p *ExternFunc) String() string   { return "ExternFunc(" + p.Symbol + ")" }
func (*Constant) String() string        { return "Constant" }
func (*RuntimeDepShape) String() string { return "RuntimeDepShape" }
func (p *Tuple) String() string        { return "Tuple" }
func (p *TupleGetItem) String() string { return "TupleGetItem" }
func (p *Call) String() string         { return "Call(" + p.Op.String() + ")" }
func (p *Function) String() string     { return "Function" }
func (p *If) String() string           { return "If" }
func (p *Attr) String() string         { return "Attr(" + p.Inner.String() + ")" }
func (p *Type) String() string         { return "Type(" + p.Inner.String() + ")" }
func (p *Shape) String() string        { return "Shape(" + p.Inner.String() + ")" }
func (p *DataType) String() string     { return "DataType(" + p.Inner.String() + ")" }
func (p *PrimArr) String() string      { return "PrimArr" }
func (p *Alt) String() string          { return "Or(" + p.Left.String() + ", " + p.Right.String() + ")" }
func (p *And) String() string          { return "And(" + p.Left.String() + ", " + p.Right.String() + ")" }
func (p *Not) String() string          { return "Not(" + p.Reject.String() + ")" }
func (p *Dominator) String() string    { return "Dominator(" + p.Child.String() + ")" }
