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

// checkedType resolves expr's type, preferring the type oracle supplied
// at construction and falling back to the type the expression already
// carries (the path the auto-jumping entry point relies on, per
// spec.md §6: "infer_type is not used by the auto-jumping form, which
// relies on the expression already carrying checked types").
func (m *Matcher) checkedType(expr ir.Expr) ir.Type {
	if m.typeOf != nil && !m.autojump {
		return m.typeOf(expr)
	}
	return expr.CheckedType()
}

func (m *Matcher) matchType(p *pattern.Type, expr ir.Expr) bool {
	if !ir.StructuralEqual(p.Typ, m.checkedType(expr)) {
		return false
	}
	return m.visit(p.Inner, expr)
}

func (m *Matcher) matchShape(p *pattern.Shape, expr ir.Expr) bool {
	shapeLike := expr.Shape()
	if m.typeOf != nil && !m.autojump {
		if tt, ok := m.typeOf(expr).(*ir.TensorType); ok && tt.Shp != nil {
			shapeLike = tt.Shp
		}
	}
	shp, ok := shapeLike.(*ir.ShapeExpr)
	if !ok {
		return false
	}
	if len(shp.Values) != len(p.Dims) {
		return false
	}
	for i, dim := range p.Dims {
		if !m.analyzer.Equal(dim, shp.Values[i]) {
			return false
		}
	}
	return m.visit(p.Inner, expr)
}

func (m *Matcher) matchDataType(p *pattern.DataType, expr ir.Expr) bool {
	tt, ok := m.checkedType(expr).(*ir.TensorType)
	if !ok || tt.DType != p.DType {
		return false
	}
	return m.visit(p.Inner, expr)
}

func (m *Matcher) matchPrimArr(p *pattern.PrimArr, expr ir.Expr) bool {
	shp, ok := expr.(*ir.ShapeExpr)
	if !ok {
		return false
	}
	if len(shp.Values) != len(p.Values) {
		return false
	}
	for i, v := range p.Values {
		if !m.analyzer.Equal(v, shp.Values[i]) {
			return false
		}
	}
	return true
}
