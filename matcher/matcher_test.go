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

package matcher_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/ir/irhelper"
	"github.com/gx-org/dataflow-matcher/matcher"
	"github.com/gx-org/dataflow-matcher/pattern"
)

func TestWildcardMatchesAnything(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2, 3))
	m := matcher.New(x, nil)
	if !m.Match(pattern.Any(), x) {
		t.Errorf("wildcard failed to match a var")
	}
}

func TestWildcardIsIdempotent(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2, 3))
	m := matcher.New(x, nil)
	w := pattern.Any()
	if !m.Match(w, x) {
		t.Fatalf("first match failed")
	}
	if !m.Match(w, x) {
		t.Errorf("second match with the same wildcard pattern failed")
	}
}

func TestVarNameHint(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2, 3))
	m := matcher.New(x, nil)
	if !m.Match(pattern.IsVar("x"), x) {
		t.Errorf("named var pattern failed to match var with the same name")
	}
	if m.Match(pattern.IsVar("y"), x) {
		t.Errorf("named var pattern matched a var with a different name")
	}
	if !m.Match(pattern.IsVar(""), x) {
		t.Errorf("empty-hint var pattern failed to match any var")
	}
}

func TestCallArityAndArgOrder(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.Call(irhelper.Op("subtract"), a, b)
	m := matcher.New(call, nil)

	pat := pattern.IsCall(pattern.IsOp("subtract"), pattern.IsVar("a"), pattern.IsVar("b"))
	if !m.Match(pat, call) {
		t.Errorf("call pattern failed to match in-order arguments")
	}
	reversed := pattern.IsCall(pattern.IsOp("subtract"), pattern.IsVar("b"), pattern.IsVar("a"))
	if m.Match(reversed, call) {
		t.Errorf("subtract is not commutative; reversed-argument pattern should not match")
	}
}

func TestCallCommutativeAdd(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.Call(irhelper.Op("add"), a, b)
	m := matcher.New(call, nil)

	pat := pattern.IsCall(pattern.IsOp("add"), pattern.IsVar("b"), pattern.IsVar("a"))
	if !m.Match(pat, call) {
		t.Errorf("add is commutative; reversed-argument pattern should still match")
	}
}

func TestCallCommutativeMultiply(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.Call(irhelper.Op("multiply"), a, b)
	m := matcher.New(call, nil)

	pat := pattern.IsCall(pattern.IsOp("multiply"), pattern.IsVar("b"), pattern.IsVar("a"))
	if !m.Match(pat, call) {
		t.Errorf("multiply is commutative; reversed-argument pattern should still match")
	}
}

func TestCallAssociativeDivideOfMultiply(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	c := irhelper.Var("c", irhelper.Tensor(dtype.Float32, 2))
	// (a * b) / c, expressed instead as a * (b / c).
	divC := irhelper.Call(irhelper.Op("divide"), b, c)
	expr := irhelper.Call(irhelper.Op("multiply"), a, divC)
	m := matcher.New(expr, nil)

	pat := pattern.IsCall(pattern.IsOp("divide"),
		pattern.IsCall(pattern.IsOp("multiply"), pattern.IsVar("a"), pattern.IsVar("b")),
		pattern.IsVar("c"))
	if !m.Match(pat, expr) {
		t.Errorf("divide-of-multiply pattern failed against the associative rewrite a*(b/c)")
	}
}

func TestCallAssociativeMultiplyOfDivide(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	c := irhelper.Var("c", irhelper.Tensor(dtype.Float32, 2))
	// (a * b) / c, matched by multiply(divide(a, c), b).
	mulAB := irhelper.Call(irhelper.Op("multiply"), a, b)
	expr := irhelper.Call(irhelper.Op("divide"), mulAB, c)
	m := matcher.New(expr, nil)

	pat := pattern.IsCall(pattern.IsOp("multiply"),
		pattern.IsCall(pattern.IsOp("divide"), pattern.IsVar("a"), pattern.IsVar("c")),
		pattern.IsVar("b"))
	if !m.Match(pat, expr) {
		t.Errorf("multiply-of-divide pattern failed against (a*b)/c")
	}
}

func TestTupleArity(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	tup := irhelper.Tuple(a, b)
	m := matcher.New(tup, nil)

	if !m.Match(pattern.IsTuple(pattern.IsVar("a"), pattern.IsVar("b")), tup) {
		t.Errorf("tuple pattern failed to match fields in order")
	}
	if m.Match(pattern.IsTuple(pattern.IsVar("a")), tup) {
		t.Errorf("wrong-arity tuple pattern should not match")
	}
	if !m.Match(pattern.IsTuple(), tup) {
		t.Errorf("empty-fields tuple pattern (unconstrained arity) should match")
	}
}

func TestNotRollsBackItsOwnBindings(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2))
	m := matcher.New(x, nil)

	namedX := pattern.IsVar("x")
	notNamedX := pattern.Negate(namedX)
	if m.Match(notNamedX, x) {
		t.Errorf("Not(Var(x)) should fail to match x")
	}
	if len(m.Memo()) != 0 {
		t.Errorf("a failed top-level match must leave memo empty, got %d entries", len(m.Memo()))
	}

	y := irhelper.Var("y", irhelper.Tensor(dtype.Float32, 2))
	if !m.Match(notNamedX, y) {
		t.Errorf("Not(Var(x)) should match y")
	}
	if _, bound := m.Memo()[namedX]; bound {
		t.Errorf("Not must never commit bindings made while probing its rejected pattern")
	}
}

func TestAndRequiresBoth(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	both := pattern.Both(pattern.IsVar(""), pattern.IsVar("a"))
	bothWrong := pattern.Both(pattern.IsVar(""), pattern.IsVar("b"))
	m := matcher.New(a, nil)
	if !m.Match(both, a) {
		t.Errorf("And of two satisfiable patterns should match")
	}
	if m.Match(bothWrong, a) {
		t.Errorf("And should fail once either side fails")
	}
}

func TestOrTriesBothSides(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	or := pattern.Or(pattern.IsVar("b"), pattern.IsVar("a"))
	m := matcher.New(a, nil)
	if !m.Match(or, a) {
		t.Errorf("Or should match once its second alternative matches")
	}
}

func TestFailedMatchLeavesNoResidue(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	b := irhelper.Var("b", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.Call(irhelper.Op("add"), a, b)
	m := matcher.New(call, nil)

	bad := pattern.IsCall(pattern.IsOp("add"), pattern.IsVar("a"), pattern.IsVar("z"))
	if m.Match(bad, call) {
		t.Fatalf("pattern should not have matched")
	}
	if len(m.Memo()) != 0 {
		t.Errorf("failed match must clear memo, got %d entries", len(m.Memo()))
	}
}

func TestTypeAndDTypePatterns(t *testing.T) {
	typ := irhelper.Tensor(dtype.Float32, 2, 3)
	x := irhelper.Var("x", typ)
	m := matcher.New(x, nil)

	if !m.Match(pattern.HasType(pattern.Any(), typ), x) {
		t.Errorf("HasType failed to match the var's own checked type")
	}
	if !m.Match(pattern.HasDType(pattern.Any(), dtype.Float32), x) {
		t.Errorf("HasDType failed to match the var's own dtype")
	}
	if m.Match(pattern.HasDType(pattern.Any(), dtype.Int32), x) {
		t.Errorf("HasDType matched the wrong dtype")
	}
}

func TestTypePatternMatchesStructurallyEqualDistinctInstance(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2, 3))
	m := matcher.New(x, nil)

	// independently built, not the same *ir.TensorType pointer x carries
	other := irhelper.Tensor(dtype.Float32, 2, 3)
	if !m.Match(pattern.HasType(pattern.Any(), other), x) {
		t.Errorf("HasType should match a structurally equal type built as a distinct instance")
	}

	differentShape := irhelper.Tensor(dtype.Float32, 2, 4)
	if m.Match(pattern.HasType(pattern.Any(), differentShape), x) {
		t.Errorf("HasType matched a type with a different shape")
	}
}

func TestShapePattern(t *testing.T) {
	typ := irhelper.Tensor(dtype.Float32, 2, 3)
	x := irhelper.Var("x", typ)
	m := matcher.New(x, nil)

	dims := []ir.PrimExpr{&ir.IntDim{Value: 2}, &ir.IntDim{Value: 3}}
	if !m.Match(pattern.HasShape(pattern.Any(), dims...), x) {
		t.Errorf("HasShape failed to match the var's own shape")
	}
	wrong := []ir.PrimExpr{&ir.IntDim{Value: 3}, &ir.IntDim{Value: 2}}
	if m.Match(pattern.HasShape(pattern.Any(), wrong...), x) {
		t.Errorf("HasShape matched a transposed shape")
	}
}

func TestShapePatternSymbolicDims(t *testing.T) {
	typ := irhelper.SymbolicTensor(dtype.Float32, "n", "m")
	x := irhelper.Var("x", typ)
	m := matcher.New(x, nil)

	dims := []ir.PrimExpr{&ir.DimVar{Name: "n"}, &ir.DimVar{Name: "m"}}
	if !m.Match(pattern.HasShape(pattern.Any(), dims...), x) {
		t.Errorf("HasShape failed to match the var's own symbolic shape by dimension name")
	}

	// n+0 is arithmetically equal to n: exercises the analyzer's linear
	// normal form rather than a purely syntactic comparison.
	nPlusZero := &ir.BinaryDim{Op: ir.PrimAdd, X: &ir.DimVar{Name: "n"}, Y: &ir.IntDim{Value: 0}}
	equivDims := []ir.PrimExpr{nPlusZero, &ir.DimVar{Name: "m"}}
	if !m.Match(pattern.HasShape(pattern.Any(), equivDims...), x) {
		t.Errorf("HasShape should match a dimension arithmetically equal to n, even if not syntactically identical")
	}

	wrongName := []ir.PrimExpr{&ir.DimVar{Name: "k"}, &ir.DimVar{Name: "m"}}
	if m.Match(pattern.HasShape(pattern.Any(), wrongName...), x) {
		t.Errorf("HasShape matched a differently named symbolic dimension")
	}
}

func TestAttrOnCall(t *testing.T) {
	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.CallAttr(irhelper.Op("strided_slice"), map[string]any{
		"axis": &ir.IntImm{Value: 1},
	}, a)
	m := matcher.New(call, nil)

	ok := pattern.HasAttr(pattern.IsCall(pattern.IsOp("strided_slice")), map[string]any{
		"axis": &ir.IntImm{Value: 1},
	})
	if !m.Match(ok, call) {
		t.Errorf("HasAttr failed to match a present, equal attribute")
	}

	wrong := pattern.HasAttr(pattern.IsCall(pattern.IsOp("strided_slice")), map[string]any{
		"axis": &ir.IntImm{Value: 0},
	})
	if m.Match(wrong, call) {
		t.Errorf("HasAttr matched a differing attribute value")
	}
}

func TestAttrNodeValueIsStrictOnGlobalVarType(t *testing.T) {
	f32Fn := &ir.FuncType{Result: irhelper.Tensor(dtype.Float32, 2)}
	i32Fn := &ir.FuncType{Result: irhelper.Tensor(dtype.Int32, 2)}
	callee := &ir.GlobalVar{Name: "custom_grad", Typ: f32Fn}

	a := irhelper.Var("a", irhelper.Tensor(dtype.Float32, 2))
	call := irhelper.CallAttr(irhelper.Op("call_tir"), map[string]any{
		"callee": callee,
	}, a)
	m := matcher.New(call, nil)

	sameType := pattern.HasAttr(pattern.IsCall(pattern.IsOp("call_tir")), map[string]any{
		"callee": &ir.GlobalVar{Name: "custom_grad", Typ: f32Fn},
	})
	if !m.Match(sameType, call) {
		t.Errorf("HasAttr failed to match a GlobalVar attribute with the same name and type")
	}

	differentType := pattern.HasAttr(pattern.IsCall(pattern.IsOp("call_tir")), map[string]any{
		"callee": &ir.GlobalVar{Name: "custom_grad", Typ: i32Fn},
	})
	if m.Match(differentType, call) {
		t.Errorf("HasAttr should not match a GlobalVar attribute with the same name but a different declared type")
	}
}

func TestMatchAutoSubstitutesBoundValue(t *testing.T) {
	// let y = relu(1); match relu(Constant) against y via var2val.
	relu := irhelper.Call(irhelper.Op("relu"), irhelper.Const(int64(1), irhelper.Tensor(dtype.Float32, 2)))
	y := irhelper.Var("y", irhelper.Tensor(dtype.Float32, 2))
	m := matcher.New(y, nil)

	pat := pattern.IsCall(pattern.IsOp("relu"), pattern.IsConst())
	var2val := map[*ir.Var]ir.Expr{y: relu}
	if !m.MatchAuto(pat, y, var2val) {
		t.Errorf("MatchAuto failed to jump from the var to its bound value")
	}

	if !m.MatchAuto(pattern.IsVar("y"), y, var2val) {
		t.Errorf("MatchAuto must still see the raw var for a Var pattern (opted out of auto-jump)")
	}
}

func TestMatchAutoRequiresVar2Val(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2))
	m := matcher.New(x, nil)
	defer func() {
		if recover() == nil {
			t.Errorf("MatchAuto with a nil var2val should panic as an invariant violation")
		}
	}()
	m.MatchAuto(pattern.Any(), x, nil)
}

func TestTypeOracleOverridesCheckedType(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2))
	oracle := func(e ir.Expr) ir.Type { return irhelper.Tensor(dtype.Int32, 2) }
	m := matcher.New(x, oracle)
	if !m.Match(pattern.HasDType(pattern.Any(), dtype.Int32), x) {
		t.Errorf("non-auto-jumping match should consult the type oracle, not the var's own type")
	}
}
