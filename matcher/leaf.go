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

func (m *Matcher) matchVar(p *pattern.Var, expr ir.Expr) bool {
	v, ok := expr.(*ir.Var)
	if !ok {
		return false
	}
	return p.NameHint == "" || p.NameHint == v.NameHint
}

func (m *Matcher) matchDataflowVar(p *pattern.DataflowVar, expr ir.Expr) bool {
	v, ok := expr.(*ir.DataflowVar)
	if !ok {
		return false
	}
	return p.NameHint == "" || p.NameHint == v.NameHint
}

func (m *Matcher) matchGlobalVar(p *pattern.GlobalVar, expr ir.Expr) bool {
	v, ok := expr.(*ir.GlobalVar)
	if !ok {
		return false
	}
	return p.NameHint == "" || p.NameHint == v.Name
}

func (m *Matcher) matchExternFunc(p *pattern.ExternFunc, expr ir.Expr) bool {
	f, ok := expr.(*ir.ExternFunc)
	if !ok {
		return false
	}
	return p.Symbol == "" || p.Symbol == f.Symbol
}

func (m *Matcher) matchTuple(p *pattern.Tuple, expr ir.Expr) bool {
	t, ok := expr.(*ir.Tuple)
	if !ok {
		return false
	}
	if p.Fields == nil {
		return true
	}
	if len(p.Fields) != len(t.Fields) {
		return false
	}
	for i, fp := range p.Fields {
		if !m.visit(fp, t.Fields[i]) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchTupleGetItem(p *pattern.TupleGetItem, expr ir.Expr) bool {
	g, ok := expr.(*ir.TupleGetItem)
	if !ok {
		return false
	}
	if p.Index != -1 && p.Index != g.Index {
		return false
	}
	return m.visit(p.TuplePat, g.TupleValue)
}

func (m *Matcher) matchFunction(p *pattern.Function, expr ir.Expr) bool {
	f, ok := expr.(*ir.Function)
	if !ok {
		return false
	}
	if p.Params != nil {
		if len(p.Params) != len(f.Params) {
			return false
		}
		for i, pp := range p.Params {
			if !m.visit(pp, f.Params[i]) {
				return false
			}
		}
	}
	return m.visit(p.Body, f.Body)
}

func (m *Matcher) matchIf(p *pattern.If, expr ir.Expr) bool {
	i, ok := expr.(*ir.If)
	if !ok {
		return false
	}
	return m.visit(p.Cond, i.Cond) && m.visit(p.Then, i.Then) && m.visit(p.Else, i.Else)
}

func (m *Matcher) matchNot(p *pattern.Not, expr ir.Expr) bool {
	watermark := len(m.matchedNodes)
	ok := m.visit(p.Reject, expr)
	m.rollback(watermark)
	return !ok
}
