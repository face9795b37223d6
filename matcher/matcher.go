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

// Package matcher decides whether a pattern tree (package pattern)
// matches an expression tree (package ir). It is a recursive-descent
// matcher with memoization and a rollback stack, supporting combinators,
// commutative/associative call rewriting, dominator-relationship
// matching and type/shape/dtype predicates.
//
// A Matcher is built once for a root expression — the expression graph
// (package-private graph.go) is derived from that root at construction
// time — and can then run any number of independent Match calls against
// that root or any of its subexpressions.
package matcher

import (
	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/matcher/opattr"
	"github.com/gx-org/dataflow-matcher/pattern"
)

// TypeOracle resolves the checked type of an expression. It is a pure
// function: same expr, same result, every time. The non-auto-jumping
// match entry point uses it for Type/Shape/DataType patterns; the
// auto-jumping entry point instead trusts CheckedType/Shape already
// carried by the expression.
type TypeOracle func(ir.Expr) ir.Type

// Matcher holds the state of one logical matching session: the
// expression graph derived from its root, the arithmetic analyzer used
// for symbolic shape comparisons, and the per-attempt memo/rollback
// state reset at the start of every Match/MatchAuto call.
type Matcher struct {
	graph    *exprGraph
	analyzer *ir.Analyzer
	typeOf   TypeOracle
	opAttrs  *opattr.Registry

	memo         map[pattern.Pattern]ir.Expr
	matchedNodes []pattern.Pattern

	memoize  bool
	autojump bool
	var2val  map[*ir.Var]ir.Expr
}

// Option configures optional Matcher collaborators.
type Option func(*Matcher)

// WithOpAttrs supplies the op-attribute registry an Attr pattern
// consults when matched against a bare ir.Op (spec.md §4.4).
func WithOpAttrs(r *opattr.Registry) Option {
	return func(m *Matcher) { m.opAttrs = r }
}

// New returns a matcher whose expression graph is rooted at root.
// typeOf resolves the checked type of any expression reachable from
// root; it is used by the non-auto-jumping Type/Shape/DataType pattern
// rules. Pass nil when only the auto-jumping entry point (MatchAuto)
// will be used.
func New(root ir.Expr, typeOf TypeOracle, opts ...Option) *Matcher {
	m := &Matcher{
		graph:    buildExprGraph(root),
		analyzer: ir.NewAnalyzer(),
		typeOf:   typeOf,
		opAttrs:  opattr.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match reports whether pattern matches expr, without auto-jumping
// variables to their bound values.
func (m *Matcher) Match(pat pattern.Pattern, expr ir.Expr) bool {
	return m.run(pat, expr, false, nil)
}

// MatchAuto reports whether pattern matches expr, auto-jumping a Var
// expression to var2val[v] wherever the current pattern variant cares
// about the value rather than the variable itself (every variant except
// Var, DataflowVar, Shape and DataType — spec-mandated opt-outs).
// var2val must be non-nil; a nil map is an invariant violation, since
// auto-jump without a binding table is meaningless.
func (m *Matcher) MatchAuto(pat pattern.Pattern, expr ir.Expr, var2val map[*ir.Var]ir.Expr) bool {
	if var2val == nil {
		invariantf("MatchAuto requires a non-nil var2val mapping")
	}
	return m.run(pat, expr, true, var2val)
}

func (m *Matcher) run(pat pattern.Pattern, expr ir.Expr, autojump bool, var2val map[*ir.Var]ir.Expr) bool {
	m.memo = map[pattern.Pattern]ir.Expr{}
	m.matchedNodes = nil
	m.memoize = true
	m.autojump = autojump
	m.var2val = var2val
	out := m.visit(pat, expr)
	if !out {
		m.memo = map[pattern.Pattern]ir.Expr{}
		m.matchedNodes = nil
	}
	return out
}

// Memo exposes the capture table of the most recent successful Match or
// MatchAuto call: each pattern node traversed maps to the single
// expression it matched. The spec deliberately keeps this ambiguity-free
// by requiring a pattern bind to at most one expression per attempt.
func (m *Matcher) Memo() map[pattern.Pattern]ir.Expr { return m.memo }

// skipsAutojump is the opt-out table of spec.md §4.5-4.6: these pattern
// variants are about the variable (or its shape/dtype) itself, not the
// value it is bound to, so they must see the raw Var even when auto-jump
// is enabled.
func skipsAutojump(pat pattern.Pattern) bool {
	switch pat.(type) {
	case *pattern.Var, *pattern.DataflowVar, *pattern.Shape, *pattern.DataType:
		return true
	default:
		return false
	}
}

// visit is the dispatcher of §4.1: optional auto-jump substitution,
// memo lookup, and otherwise a watermarked dispatch-and-commit-or-
// rollback over the pattern's variant.
func (m *Matcher) visit(pat pattern.Pattern, expr ir.Expr) bool {
	if m.autojump && !skipsAutojump(pat) {
		if v, ok := expr.(*ir.Var); ok {
			if bound, ok := m.var2val[v]; ok {
				expr = bound
			}
		}
	}
	if m.memoize {
		if bound, ok := m.memo[pat]; ok {
			return expr == bound
		}
	}
	watermark := len(m.matchedNodes)
	out := m.dispatch(pat, expr)
	if out {
		m.commit(pat, expr)
	} else {
		m.rollback(watermark)
	}
	return out
}

// commit records a successful match. The two-different-expressions
// invariant (spec.md §7) only holds while memoize is enabled: a
// dominator pattern's matchesPath exploration (matcher/dominator.go)
// deliberately disables memoization and tries the same path/parent
// pattern against a sequence of different candidate inputs, so
// rebinding there is expected rather than a bug.
func (m *Matcher) commit(pat pattern.Pattern, expr ir.Expr) {
	if m.memoize {
		if prev, ok := m.memo[pat]; ok && prev != expr {
			invariantf("pattern %s memoized with two different expressions", pat)
		}
	}
	m.memo[pat] = expr
	m.matchedNodes = append(m.matchedNodes, pat)
}

// rollback undoes every binding made since watermark was captured,
// restoring the §3 invariant that matched_nodes.len() == memo.len().
func (m *Matcher) rollback(watermark int) {
	for _, pat := range m.matchedNodes[watermark:] {
		delete(m.memo, pat)
	}
	m.matchedNodes = m.matchedNodes[:watermark]
}

// dispatch routes to the per-variant matching rule. It never touches
// memo/matchedNodes directly: visit owns commit/rollback around it.
func (m *Matcher) dispatch(pat pattern.Pattern, expr ir.Expr) bool {
	switch p := pat.(type) {
	case *pattern.Wildcard:
		return true
	case *pattern.ExprLiteral:
		return ir.StructuralEqual(p.Expr, expr)
	case *pattern.Var:
		return m.matchVar(p, expr)
	case *pattern.DataflowVar:
		return m.matchDataflowVar(p, expr)
	case *pattern.GlobalVar:
		return m.matchGlobalVar(p, expr)
	case *pattern.ExternFunc:
		return m.matchExternFunc(p, expr)
	case *pattern.Constant:
		_, ok := expr.(*ir.Constant)
		return ok
	case *pattern.RuntimeDepShape:
		_, ok := expr.Shape().(ir.RuntimeDepShape)
		return ok
	case *pattern.Tuple:
		return m.matchTuple(p, expr)
	case *pattern.TupleGetItem:
		return m.matchTupleGetItem(p, expr)
	case *pattern.Call:
		return m.matchCall(p, expr)
	case *pattern.Function:
		return m.matchFunction(p, expr)
	case *pattern.If:
		return m.matchIf(p, expr)
	case *pattern.Attr:
		return m.matchAttr(p, expr)
	case *pattern.Type:
		return m.matchType(p, expr)
	case *pattern.Shape:
		return m.matchShape(p, expr)
	case *pattern.DataType:
		return m.matchDataType(p, expr)
	case *pattern.PrimArr:
		return m.matchPrimArr(p, expr)
	case *pattern.Alt:
		return m.visit(p.Left, expr) || m.visit(p.Right, expr)
	case *pattern.And:
		return m.visit(p.Left, expr) && m.visit(p.Right, expr)
	case *pattern.Not:
		return m.matchNot(p, expr)
	case *pattern.Dominator:
		return m.matchDominator(p, expr)
	default:
		invariantf("unhandled pattern variant %T", pat)
		return false
	}
}
