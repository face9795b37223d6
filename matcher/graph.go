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

import "github.com/gx-org/dataflow-matcher/ir"

// exprGraph is the expression DAG derived from a matcher's root
// expression: for every node reachable from the root, its direct
// data-flow inputs, and the immediate-dominator relation over that DAG
// (root as entry). It is built once per Matcher and never mutated.
type exprGraph struct {
	root   ir.Expr
	inputs map[ir.Expr][]ir.Expr
	idom   map[ir.Expr]ir.Expr
	domKid map[ir.Expr][]ir.Expr
}

// operandsOf returns the direct structural operands of expr: the
// arguments of a call (including its callee), the fields of a tuple, the
// subject of a tuple projection, the branches of an if, and the body of
// a function. Leaves (vars, constants, globals, externs, ops) have none.
func operandsOf(e ir.Expr) []ir.Expr {
	switch t := e.(type) {
	case *ir.Tuple:
		return t.Fields
	case *ir.TupleGetItem:
		return []ir.Expr{t.TupleValue}
	case *ir.Call:
		ops := make([]ir.Expr, 0, len(t.Args)+1)
		ops = append(ops, t.Op)
		ops = append(ops, t.Args...)
		return ops
	case *ir.Function:
		return []ir.Expr{t.Body}
	case *ir.If:
		return []ir.Expr{t.Cond, t.Then, t.Else}
	default:
		return nil
	}
}

// callOp returns the callee of expr when expr is a *ir.Call, else nil.
// matchesPath skips a call's own op position while walking its inputs
// (the call's operator is not itself a data-flow value in the sense the
// dominator pattern cares about).
func callOp(e ir.Expr) ir.Expr {
	if c, ok := e.(*ir.Call); ok {
		return c.Op
	}
	return nil
}

// buildExprGraph discovers every node reachable from root via operandsOf,
// then computes immediate dominators with the iterative fixed-point
// algorithm of Cooper, Harvey & Kennedy, "A Simple, Fast Dominance
// Algorithm" (reverse postorder, repeated predecessor intersection until
// quiescence). The IR is a DAG (no cycles, spec §9), so a single pass in
// reverse postorder already reaches the fixpoint; we loop defensively in
// case a future caller feeds a graph with forward-shared nodes visited
// out of order.
func buildExprGraph(root ir.Expr) *exprGraph {
	g := &exprGraph{
		root:   root,
		inputs: map[ir.Expr][]ir.Expr{},
	}

	var postorder []ir.Expr
	visited := map[ir.Expr]bool{}
	var visit func(ir.Expr)
	visit = func(e ir.Expr) {
		if e == nil || visited[e] {
			return
		}
		visited[e] = true
		ops := operandsOf(e)
		g.inputs[e] = ops
		for _, op := range ops {
			visit(op)
		}
		postorder = append(postorder, e)
	}
	visit(root)

	preds := map[ir.Expr][]ir.Expr{}
	for _, n := range postorder {
		for _, op := range g.inputs[n] {
			preds[op] = append(preds[op], n)
		}
	}

	postNum := make(map[ir.Expr]int, len(postorder))
	for i, n := range postorder {
		postNum[n] = i
	}
	rpo := make([]ir.Expr, len(postorder))
	for i, n := range postorder {
		rpo[len(postorder)-1-i] = n
	}

	idom := map[ir.Expr]ir.Expr{root: root}
	intersect := func(a, b ir.Expr) ir.Expr {
		for a != b {
			for postNum[a] < postNum[b] {
				a = idom[a]
			}
			for postNum[b] < postNum[a] {
				b = idom[b]
			}
		}
		return a
	}
	for changed := true; changed; {
		changed = false
		for _, n := range rpo {
			if n == root {
				continue
			}
			var newIdom ir.Expr
			found := false
			for _, p := range preds[n] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !found {
					newIdom, found = p, true
					continue
				}
				newIdom = intersect(p, newIdom)
			}
			if found && idom[n] != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}
	delete(idom, root)
	g.idom = idom

	g.domKid = map[ir.Expr][]ir.Expr{}
	for n, d := range idom {
		g.domKid[d] = append(g.domKid[d], n)
	}
	return g
}

// Inputs returns expr's direct data-flow operands, in a stable order.
func (g *exprGraph) Inputs(expr ir.Expr) []ir.Expr { return g.inputs[expr] }

// DominatorChildren returns the nodes whose immediate dominator is expr.
func (g *exprGraph) DominatorChildren(expr ir.Expr) []ir.Expr { return g.domKid[expr] }
