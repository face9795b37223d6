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

package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Analyzer simplifies PrimExpr values and decides whether two of them are
// arithmetically equal. It generalizes the dimension arithmetic the IR
// otherwise performs ad hoc (compare a computed integer and a symbolic
// name, as in the evaluator's dimension-equality checks) into a single
// normal form: a linear combination of named dimensions plus a constant.
//
// Expressions that are not linear (e.g. the product of two dimension
// variables) fall back to a syntactic canonical form: commutative operands
// are sorted so that `n*m` and `m*n` compare equal without being linear.
type Analyzer struct{}

// NewAnalyzer returns a new arithmetic simplifier.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// linear is a linear combination `sum(coeffs[name] * name) + konst`.
type linear struct {
	coeffs map[string]int64
	konst  int64
}

func constLinear(v int64) linear { return linear{coeffs: map[string]int64{}, konst: v} }

func isConst(l linear) bool { return len(l.coeffs) == 0 }

func isZero(l linear) bool { return l.konst == 0 && len(l.coeffs) == 0 }

func addLinear(a, b linear, sign int64) linear {
	out := linear{coeffs: make(map[string]int64, len(a.coeffs)+len(b.coeffs)), konst: a.konst + sign*b.konst}
	for k, v := range a.coeffs {
		out.coeffs[k] += v
	}
	for k, v := range b.coeffs {
		out.coeffs[k] += sign * v
	}
	for k, v := range out.coeffs {
		if v == 0 {
			delete(out.coeffs, k)
		}
	}
	return out
}

func scaleLinear(l linear, factor int64) linear {
	out := linear{coeffs: make(map[string]int64, len(l.coeffs)), konst: l.konst * factor}
	for k, v := range l.coeffs {
		if scaled := v * factor; scaled != 0 {
			out.coeffs[k] = scaled
		}
	}
	return out
}

// tryLinear attempts to put e into normal form. ok is false when e is not
// a linear combination of its dimension variables (e.g. n*m).
func (a *Analyzer) tryLinear(e PrimExpr) (l linear, ok bool) {
	switch t := e.(type) {
	case *IntDim:
		return constLinear(t.Value), true
	case *DimVar:
		return linear{coeffs: map[string]int64{t.Name: 1}}, true
	case *BinaryDim:
		lx, okx := a.tryLinear(t.X)
		ly, oky := a.tryLinear(t.Y)
		if !okx || !oky {
			return linear{}, false
		}
		switch t.Op {
		case PrimAdd:
			return addLinear(lx, ly, 1), true
		case PrimSub:
			return addLinear(lx, ly, -1), true
		case PrimMul:
			switch {
			case isConst(lx):
				return scaleLinear(ly, lx.konst), true
			case isConst(ly):
				return scaleLinear(lx, ly.konst), true
			default:
				return linear{}, false
			}
		case PrimDiv:
			if isConst(lx) && isConst(ly) && ly.konst != 0 {
				return constLinear(lx.konst / ly.konst), true
			}
			return linear{}, false
		}
	}
	return linear{}, false
}

// canonical returns a syntactic normal form for e, sorting the operands of
// commutative operators so that equivalent expressions print identically.
func (a *Analyzer) canonical(e PrimExpr) string {
	switch t := e.(type) {
	case *IntDim:
		return fmt.Sprintf("%d", t.Value)
	case *DimVar:
		return t.Name
	case *BinaryDim:
		x, y := a.canonical(t.X), a.canonical(t.Y)
		if (t.Op == PrimAdd || t.Op == PrimMul) && x > y {
			x, y = y, x
		}
		return fmt.Sprintf("(%s%s%s)", x, t.Op, y)
	default:
		return e.String()
	}
}

// Simplify reduces e to a normal form. Linear expressions are rewritten as
// a sorted sum of scaled dimension variables plus a constant; anything
// else is returned unchanged (its operands are not reordered).
func (a *Analyzer) Simplify(e PrimExpr) PrimExpr {
	l, ok := a.tryLinear(e)
	if !ok {
		return e
	}
	names := make([]string, 0, len(l.coeffs))
	for name := range l.coeffs {
		names = append(names, name)
	}
	sort.Strings(names)
	var out PrimExpr = &IntDim{Value: l.konst}
	if l.konst == 0 && len(names) > 0 {
		out = nil
	}
	for _, name := range names {
		term := PrimExpr(&DimVar{Name: name})
		if coeff := l.coeffs[name]; coeff != 1 {
			term = &BinaryDim{Op: PrimMul, X: &IntDim{Value: coeff}, Y: term}
		}
		if out == nil {
			out = term
		} else {
			out = &BinaryDim{Op: PrimAdd, X: out, Y: term}
		}
	}
	return out
}

// Equal reports whether x and y simplify to the same value for every
// assignment of their dimension variables.
func (a *Analyzer) Equal(x, y PrimExpr) bool {
	lx, okx := a.tryLinear(x)
	ly, oky := a.tryLinear(y)
	if okx && oky {
		return isZero(addLinear(lx, ly, -1))
	}
	return a.canonical(x) == a.canonical(y)
}

// String renders a linear combination for debugging.
func (l linear) String() string {
	var parts []string
	names := make([]string, 0, len(l.coeffs))
	for name := range l.coeffs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d*%s", l.coeffs[name], name))
	}
	if l.konst != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d", l.konst))
	}
	return strings.Join(parts, "+")
}
