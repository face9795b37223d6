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

package matcher

import (
	"github.com/gx-org/dataflow-matcher/base/iter"
	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/pattern"
)

// matchDominator implements spec.md §4.7: child must match expr
// outright; then every input on the way from expr must either satisfy
// parent or satisfy path-and-recurse (matchesPath, non-committing); if
// that holds, some genuine dominator-tree descendant of expr must
// satisfy parent (dominatesParent, committing).
func (m *Matcher) matchDominator(p *pattern.Dominator, expr ir.Expr) bool {
	if !m.visit(p.Child, expr) {
		return false
	}
	pathOK := m.matchesPath(p, expr)
	m.memoize = true
	if !pathOK {
		return false
	}
	return m.dominatesParent(p, expr)
}

// matchesPath explores expr's inputs (skipping a call's own callee
// position) with memoization suspended: every input must match parent
// outright, or match path and recursively satisfy matchesPath. This is
// the AND semantics spec.md documents as the intended reading of an
// otherwise ambiguous original routine: a single input that matches
// neither parent nor path-and-recurse fails the whole check, even
// though sibling inputs may have already matched.
func (m *Matcher) matchesPath(p *pattern.Dominator, expr ir.Expr) bool {
	m.memoize = false
	op := callOp(expr)
	notCallee := func(in ir.Expr) bool { return op == nil || in != op }
	for in := range iter.Filter(notCallee, m.graph.Inputs(expr)) {
		if m.tryParent(p, in) {
			continue
		}
		m.memoize = false
		if !m.visit(p.Path, in) || !m.matchesPath(p, in) {
			return false
		}
	}
	return true
}

// tryParent attempts a parent match with memoization enabled, as
// spec.md §4.7 requires ("only parent matches commit"), then restores
// the non-committing mode matchesPath otherwise runs in.
func (m *Matcher) tryParent(p *pattern.Dominator, expr ir.Expr) bool {
	m.memoize = true
	ok := m.visit(p.Parent, expr)
	m.memoize = false
	return ok
}

// dominatesParent performs an iterative DFS over expr's dominator-tree
// descendants, succeeding as soon as one matches parent.
func (m *Matcher) dominatesParent(p *pattern.Dominator, expr ir.Expr) bool {
	visited := map[ir.Expr]bool{}
	stack := []ir.Expr{expr}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, kid := range m.graph.DominatorChildren(cur) {
			if visited[kid] {
				continue
			}
			if m.visit(p.Parent, kid) {
				return true
			}
			stack = append(stack, kid)
			visited[kid] = true
		}
	}
	return false
}
