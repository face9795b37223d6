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

package ir_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/ir/irhelper"
)

func TestStructuralEqualSameVarIdentity(t *testing.T) {
	x := irhelper.Var("x", irhelper.Tensor(dtype.Float32, 2, 3))
	add := irhelper.Op("add")
	a := irhelper.Call(add, x, x)
	b := irhelper.Call(add, x, x)
	if !ir.StructuralEqual(a, b) {
		t.Errorf("expected structurally equal calls over the same Var")
	}
}

func TestStructuralEqualDistinctVars(t *testing.T) {
	typ := irhelper.Tensor(dtype.Float32, 2, 3)
	x1 := irhelper.Var("x", typ)
	x2 := irhelper.Var("x", typ)
	add := irhelper.Op("add")
	a := irhelper.Call(add, x1, x1)
	b := irhelper.Call(add, x2, x2)
	if ir.StructuralEqual(a, b) {
		t.Errorf("expected two distinct Var pointers with the same name hint to be unequal")
	}
}

func TestStructuralEqualConstantsAndOps(t *testing.T) {
	typ := irhelper.Tensor(dtype.Int32)
	a := irhelper.Call(irhelper.Op("multiply"), irhelper.Const(int64(2), typ), irhelper.Const(int64(2), typ))
	b := irhelper.Call(irhelper.Op("multiply"), irhelper.Const(int64(2), typ), irhelper.Const(int64(2), typ))
	if !ir.StructuralEqual(a, b) {
		t.Errorf("expected equal constants and op names to be structurally equal")
	}
	c := irhelper.Call(irhelper.Op("multiply"), irhelper.Const(int64(2), typ), irhelper.Const(int64(3), typ))
	if ir.StructuralEqual(a, c) {
		t.Errorf("expected differing constant values to be structurally unequal")
	}
}

func TestStructuralEqualStrictGlobalVarRequiresSameType(t *testing.T) {
	f32 := &ir.FuncType{Params: []ir.Type{irhelper.Tensor(dtype.Float32, 4)}, Result: irhelper.Tensor(dtype.Float32, 4)}
	i32 := &ir.FuncType{Params: []ir.Type{irhelper.Tensor(dtype.Int32, 4)}, Result: irhelper.Tensor(dtype.Int32, 4)}
	a := &ir.GlobalVar{Name: "relu", Typ: f32}
	b := &ir.GlobalVar{Name: "relu", Typ: f32}
	c := &ir.GlobalVar{Name: "relu", Typ: i32}

	if !ir.StructuralEqual(a, c) {
		t.Errorf("non-strict StructuralEqual should ignore the declared type and match by name alone")
	}
	if !ir.StructuralEqualStrict(a, b) {
		t.Errorf("expected two GlobalVars with the same name and type to be strictly equal")
	}
	if ir.StructuralEqualStrict(a, c) {
		t.Errorf("expected two GlobalVars with the same name but different types to be strictly unequal")
	}
}

func TestStructuralEqualStrictExternFuncRequiresSameType(t *testing.T) {
	f32 := &ir.FuncType{Result: irhelper.Tensor(dtype.Float32, 4)}
	i32 := &ir.FuncType{Result: irhelper.Tensor(dtype.Int32, 4)}
	a := &ir.ExternFunc{Symbol: "my_kernel", Typ: f32}
	b := &ir.ExternFunc{Symbol: "my_kernel", Typ: i32}

	if !ir.StructuralEqual(a, b) {
		t.Errorf("non-strict StructuralEqual should ignore the declared type and match by symbol alone")
	}
	if ir.StructuralEqualStrict(a, b) {
		t.Errorf("expected two ExternFuncs with the same symbol but different types to be strictly unequal")
	}
}

func TestStructuralEqualStrictExternFuncSameDTypeDifferentShapeRequiresSameType(t *testing.T) {
	wide := &ir.FuncType{Result: irhelper.Tensor(dtype.Float32, 4)}
	narrow := &ir.FuncType{Result: irhelper.Tensor(dtype.Float32, 8)}
	a := &ir.ExternFunc{Symbol: "my_kernel", Typ: wide}
	b := &ir.ExternFunc{Symbol: "my_kernel", Typ: narrow}

	if ir.StructuralEqualStrict(a, b) {
		t.Errorf("expected two ExternFuncs whose result tensors differ only in shape to be strictly unequal")
	}

	same := &ir.ExternFunc{Symbol: "my_kernel", Typ: &ir.FuncType{Result: irhelper.Tensor(dtype.Float32, 4)}}
	if !ir.StructuralEqualStrict(a, same) {
		t.Errorf("expected two ExternFuncs with the same symbol and structurally equal (but distinct) result types to be strictly equal")
	}
}

func TestStructuralEqualConstantNonComparableValueDoesNotPanic(t *testing.T) {
	a := &ir.Constant{Value: []int{1, 2, 3}}
	b := &ir.Constant{Value: []int{1, 2, 3}}
	c := &ir.Constant{Value: []int{1, 2, 4}}

	if !ir.StructuralEqual(a, b) {
		t.Errorf("expected two Constants wrapping equal slices to be structurally equal")
	}
	if ir.StructuralEqual(a, c) {
		t.Errorf("expected two Constants wrapping different slices to be structurally unequal")
	}
}

func TestStructuralEqualAttrs(t *testing.T) {
	typ := irhelper.Tensor(dtype.Float32)
	x := irhelper.Var("x", typ)
	op := irhelper.Op("strided_slice")
	a := irhelper.CallAttr(op, map[string]any{"axis": &ir.IntImm{Value: 1}}, x)
	b := irhelper.CallAttr(op, map[string]any{"axis": &ir.IntImm{Value: 1}}, x)
	c := irhelper.CallAttr(op, map[string]any{"axis": &ir.IntImm{Value: 2}}, x)
	if !ir.StructuralEqual(a, b) {
		t.Errorf("expected calls with equal attribute literals to be structurally equal")
	}
	if ir.StructuralEqual(a, c) {
		t.Errorf("expected calls with differing attribute literals to be structurally unequal")
	}
}
