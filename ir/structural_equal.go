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

import "reflect"

// StructuralEqual reports whether a and b are the same expression up to the
// identity of free variables: two distinct *Var or *DataflowVar nodes are
// equal only if they are the same pointer, since a Var's identity is what
// ties a use back to its binding site. Every other node is compared field
// by field, recursively.
//
// This is what an ExprLiteral pattern uses to decide whether a matched
// subtree equals the pattern's reference expression. Attr patterns with a
// Node value use StructuralEqualStrict instead.
func StructuralEqual(a, b Node) bool {
	return structuralEqual(a, b, false)
}

// StructuralEqualStrict is like StructuralEqual but additionally requires
// GlobalVar and ExternFunc references to carry the same declared Type, not
// merely the same name or symbol.
func StructuralEqualStrict(a, b Node) bool {
	return structuralEqual(a, b, true)
}

func structuralEqual(a, b Node, strict bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x == y
	case *DataflowVar:
		y, ok := b.(*DataflowVar)
		return ok && x == y
	case *GlobalVar:
		y, ok := b.(*GlobalVar)
		if !ok || x.Name != y.Name {
			return false
		}
		return !strict || typeEqual(x.Typ, y.Typ, strict)
	case *ExternFunc:
		y, ok := b.(*ExternFunc)
		if !ok || x.Symbol != y.Symbol {
			return false
		}
		return !strict || typeEqual(x.Typ, y.Typ, strict)
	case *Op:
		y, ok := b.(*Op)
		return ok && x.Name == y.Name
	case *Constant:
		y, ok := b.(*Constant)
		return ok && reflect.DeepEqual(x.Value, y.Value)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !structuralEqual(x.Fields[i], y.Fields[i], strict) {
				return false
			}
		}
		return true
	case *TupleGetItem:
		y, ok := b.(*TupleGetItem)
		return ok && x.Index == y.Index && structuralEqual(x.TupleValue, y.TupleValue, strict)
	case *Call:
		y, ok := b.(*Call)
		if !ok || len(x.Args) != len(y.Args) || !structuralEqual(x.Op, y.Op, strict) {
			return false
		}
		for i := range x.Args {
			if !structuralEqual(x.Args[i], y.Args[i], strict) {
				return false
			}
		}
		return attrsEqual(x.Attrs, y.Attrs)
	case *Function:
		y, ok := b.(*Function)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !structuralEqual(x.Params[i], y.Params[i], strict) {
				return false
			}
		}
		return structuralEqual(x.Body, y.Body, strict)
	case *If:
		y, ok := b.(*If)
		return ok &&
			structuralEqual(x.Cond, y.Cond, strict) &&
			structuralEqual(x.Then, y.Then, strict) &&
			structuralEqual(x.Else, y.Else, strict)
	case *IntImm:
		y, ok := b.(*IntImm)
		return ok && x.Value == y.Value
	case *FloatImm:
		y, ok := b.(*FloatImm)
		return ok && x.Value == y.Value
	case *StringImm:
		y, ok := b.(*StringImm)
		return ok && x.Value == y.Value
	case *TensorType:
		y, ok := b.(*TensorType)
		return ok && x.DType == y.DType && shapeLikeEqual(x.Shp, y.Shp)
	case *TupleType:
		y, ok := b.(*TupleType)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !structuralEqual(x.Fields[i], y.Fields[i], strict) {
				return false
			}
		}
		return true
	case *FuncType:
		y, ok := b.(*FuncType)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !structuralEqual(x.Params[i], y.Params[i], strict) {
				return false
			}
		}
		return structuralEqual(x.Result, y.Result, strict)
	case *ObjectType:
		y, ok := b.(*ObjectType)
		return ok && x.Name == y.Name
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	default:
		return a == b
	}
}

// shapeLikeEqual compares two ShapeLike values structurally: two ShapeExprs
// are equal when they have the same rank and each axis's PrimExpr is
// syntactically equal; a RuntimeDepShape is only equal to another
// RuntimeDepShape.
func shapeLikeEqual(a, b ShapeLike) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ax, aok := a.(*ShapeExpr)
	bx, bok := b.(*ShapeExpr)
	if aok && bok {
		if len(ax.Values) != len(bx.Values) {
			return false
		}
		for i := range ax.Values {
			if !primExprEqual(ax.Values[i], bx.Values[i]) {
				return false
			}
		}
		return true
	}
	_, aRT := a.(RuntimeDepShape)
	_, bRT := b.(RuntimeDepShape)
	return aRT && bRT
}

func primExprEqual(a, b PrimExpr) bool {
	switch x := a.(type) {
	case *IntDim:
		y, ok := b.(*IntDim)
		return ok && x.Value == y.Value
	case *DimVar:
		y, ok := b.(*DimVar)
		return ok && x.Name == y.Name
	case *BinaryDim:
		y, ok := b.(*BinaryDim)
		return ok && x.Op == y.Op && primExprEqual(x.X, y.X) && primExprEqual(x.Y, y.Y)
	default:
		return false
	}
}

func typeEqual(a, b Type, strict bool) bool {
	return structuralEqual(a, b, strict)
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		an, aok := v.(Node)
		bn, bok := bv.(Node)
		if aok && bok {
			if !structuralEqual(an, bn, false) {
				return false
			}
			continue
		}
		if v != bv {
			return false
		}
	}
	return true
}
