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

// matchAttr implements spec.md §4.4: inner must match first, then the
// requested attributes must be satisfied according to expr's variant.
func (m *Matcher) matchAttr(p *pattern.Attr, expr ir.Expr) bool {
	if !m.visit(p.Inner, expr) {
		return false
	}
	switch e := expr.(type) {
	case *ir.Op:
		for name, want := range p.Attrs {
			if !m.opAttrs.HasAttrMap(name) {
				return false
			}
			got, ok := m.opAttrs.AttrMap(name)[e.Name]
			if !ok || !MatchRetValue(want, got) {
				return false
			}
		}
		return true
	case *ir.Call:
		for name, want := range p.Attrs {
			got, ok := e.Attrs[name]
			if !ok || !MatchRetValue(want, got) {
				return false
			}
		}
		return true
	case *ir.Function:
		for name, want := range p.Attrs {
			got, ok := e.Attrs[name]
			if !ok {
				return false
			}
			wantNode, wok := want.(ir.Node)
			gotNode, gok := got.(ir.Node)
			if wok && gok {
				// Strict: a Function's attributes often name a callee
				// (e.g. a GlobalVar or ExternFunc reference); two
				// same-named globals with different declared types are
				// different callees, not the same one.
				if !ir.StructuralEqualStrict(wantNode, gotNode) {
					return false
				}
				continue
			}
			if want != got {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MatchRetValue implements spec.md §4.8: compare a pattern attribute
// literal against a runtime-tagged attribute value by kind. want is
// typically an *ir.IntImm, *ir.FloatImm, *ir.StringImm, a bare string
// (for a dtype name), or an arbitrary ir.Node compared via
// StructuralEqualStrict. got is whatever value the op/call attribute
// carries.
//
// Unsupported literal kinds are an invariant violation (spec.md §7):
// the matcher has no silent fallback for an attribute value it doesn't
// know how to compare.
func MatchRetValue(want, got any) bool {
	switch w := want.(type) {
	case *ir.IntImm:
		g, ok := toInt64(got)
		return ok && g == w.Value
	case *ir.FloatImm:
		g, ok := toFloat64(got)
		return ok && g == w.Value
	case *ir.StringImm:
		g, ok := toString(got)
		return ok && g == w.Value
	case string:
		g, ok := toString(got)
		return ok && g == w
	case ir.Node:
		gotNode, ok := got.(ir.Node)
		if !ok {
			return false
		}
		return ir.StructuralEqualStrict(w, gotNode)
	default:
		invariantf("MatchRetValue: unsupported attribute literal kind %T", want)
		return false
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case *ir.IntImm:
		return t.Value, true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case *ir.FloatImm:
		return t.Value, true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *ir.StringImm:
		return t.Value, true
	}
	return "", false
}
