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
	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/pattern"
)

// matchCall implements spec.md §4.3: match the callee, then the
// arguments in order; on argument mismatch retry commutatively for add
// and multiply; on callee mismatch fall through to the associative
// divide/multiply rewrites.
func (m *Matcher) matchCall(p *pattern.Call, expr ir.Expr) bool {
	callExpr, ok := expr.(*ir.Call)
	if !ok {
		return false
	}
	watermark := len(m.matchedNodes)
	if m.visit(p.Op, callExpr.Op) {
		watermark2 := len(m.matchedNodes)
		if m.matchCallArgs(p.Args, callExpr.Args) {
			return true
		}
		m.rollback(watermark2)
		if name, ok := patternOpName(p.Op); ok && (name == "add" || name == "multiply") {
			if m.matchCallArgs(reverseArgs(p.Args), callExpr.Args) {
				return true
			}
			m.rollback(watermark2)
		}
		return false
	}
	m.rollback(watermark)
	return m.matchCallAssociative(p, callExpr)
}

func (m *Matcher) matchCallArgs(patArgs []pattern.Pattern, exprArgs []ir.Expr) bool {
	if patArgs == nil {
		return true
	}
	if len(patArgs) != len(exprArgs) {
		return false
	}
	for i, pa := range patArgs {
		if !m.visit(pa, exprArgs[i]) {
			return false
		}
	}
	return true
}

func reverseArgs(args []pattern.Pattern) []pattern.Pattern {
	if args == nil {
		return nil
	}
	out := make([]pattern.Pattern, len(args))
	for i, a := range args {
		out[len(args)-1-i] = a
	}
	return out
}

// matchCallAssociative implements the two hard-coded divide/multiply
// rewrites of spec.md §4.3. They build synthetic sub-patterns and
// recurse; they never mutate the caller's pattern tree.
func (m *Matcher) matchCallAssociative(p *pattern.Call, expr *ir.Call) bool {
	watermark := len(m.matchedNodes)

	if isPatternOp(p.Op, "divide") && len(p.Args) == 2 {
		if argCall, ok := p.Args[0].(*pattern.Call); ok &&
			isPatternOp(argCall.Op, "multiply") && len(argCall.Args) == 2 &&
			isExprOp(expr, "multiply") && len(expr.Args) == 2 &&
			(isExprOp(expr.Args[0], "divide") || isExprOp(expr.Args[1], "divide")) {
			for argID := 0; argID < 2; argID++ {
				other := argCall.Args[(argID+1)%2]
				div := &pattern.Call{Op: p.Op, Args: []pattern.Pattern{argCall.Args[argID], p.Args[1]}}
				mul := &pattern.Call{Op: argCall.Op, Args: []pattern.Pattern{other, div}}
				if m.visit(mul, expr) {
					return true
				}
				m.rollback(watermark)
			}
			return false
		}
	}

	if isPatternOp(p.Op, "multiply") && len(p.Args) == 2 {
		for argID := 0; argID < 2; argID++ {
			argCall, ok := p.Args[argID].(*pattern.Call)
			if !ok || !isPatternOp(argCall.Op, "divide") || len(argCall.Args) != 2 {
				continue
			}
			if isExprOp(expr, "divide") && len(expr.Args) == 2 &&
				(isExprOp(expr.Args[0], "multiply") || isExprOp(expr.Args[1], "multiply")) {
				mul := &pattern.Call{Op: p.Op, Args: []pattern.Pattern{argCall.Args[0], p.Args[(argID+1)%2]}}
				div := &pattern.Call{Op: argCall.Op, Args: []pattern.Pattern{mul, argCall.Args[1]}}
				return m.visit(div, expr)
			}
		}
	}
	return false
}

func patternOpName(pat pattern.Pattern) (string, bool) {
	lit, ok := pat.(*pattern.ExprLiteral)
	if !ok {
		return "", false
	}
	op, ok := lit.Expr.(*ir.Op)
	if !ok {
		return "", false
	}
	return op.Name, true
}

func isPatternOp(pat pattern.Pattern, name string) bool {
	n, ok := patternOpName(pat)
	return ok && n == name
}

func isExprOp(expr ir.Expr, name string) bool {
	c, ok := expr.(*ir.Call)
	if !ok {
		return false
	}
	op, ok := c.Op.(*ir.Op)
	return ok && op.Name == name
}
