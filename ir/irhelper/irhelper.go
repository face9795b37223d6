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

// Package irhelper provides helper functions to build IR expressions
// programmatically, mostly for use in tests.
package irhelper

import (
	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/dataflow-matcher/ir"
)

// Tensor returns a tensor type with a concrete, fully known shape.
func Tensor(dt dtype.DataType, axes ...int64) *ir.TensorType {
	dims := make([]ir.PrimExpr, len(axes))
	for i, ax := range axes {
		dims[i] = &ir.IntDim{Value: ax}
	}
	return &ir.TensorType{DType: dt, Shp: &ir.ShapeExpr{Values: dims}}
}

// SymbolicTensor returns a tensor type whose axes are named dimension
// variables, e.g. SymbolicTensor(dtype.Float32, "n", "m").
func SymbolicTensor(dt dtype.DataType, names ...string) *ir.TensorType {
	dims := make([]ir.PrimExpr, len(names))
	for i, name := range names {
		dims[i] = &ir.DimVar{Name: name}
	}
	return &ir.TensorType{DType: dt, Shp: &ir.ShapeExpr{Values: dims}}
}

// Var returns a free variable of the given name and type.
func Var(name string, typ ir.Type) *ir.Var {
	return &ir.Var{NameHint: name, Typ: typ, Shp: shapeOf(typ)}
}

// DataflowVar returns a dataflow-block-scoped variable.
func DataflowVar(name string, typ ir.Type) *ir.DataflowVar {
	return &ir.DataflowVar{NameHint: name, Typ: typ, Shp: shapeOf(typ)}
}

// Op returns a reference to a named primitive operator.
func Op(name string) *ir.Op { return &ir.Op{Name: name} }

// Call returns a call of op on args, with no attributes.
func Call(op ir.Expr, args ...ir.Expr) *ir.Call {
	return &ir.Call{Op: op, Args: args}
}

// CallAttr returns a call of op on args carrying the given attributes.
func CallAttr(op ir.Expr, attrs map[string]any, args ...ir.Expr) *ir.Call {
	return &ir.Call{Op: op, Args: args, Attrs: attrs}
}

// Const returns a constant expression wrapping an opaque value.
func Const(value any, typ ir.Type) *ir.Constant {
	return &ir.Constant{Value: value, Typ: typ, Shp: shapeOf(typ)}
}

// Tuple returns a tuple of the given fields.
func Tuple(fields ...ir.Expr) *ir.Tuple {
	return &ir.Tuple{Fields: fields}
}

// GetItem projects the i'th field out of a tuple expression.
func GetItem(tup ir.Expr, i int64) *ir.TupleGetItem {
	return &ir.TupleGetItem{TupleValue: tup, Index: i}
}

// Function returns a function expression closing over params and body.
func Function(body ir.Expr, params ...*ir.Var) *ir.Function {
	return &ir.Function{Params: params, Body: body}
}

func shapeOf(typ ir.Type) ir.ShapeLike {
	t, ok := typ.(*ir.TensorType)
	if !ok || t.Shp == nil {
		return ir.RuntimeDepShape{}
	}
	return t.Shp
}
