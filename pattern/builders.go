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

package pattern

import (
	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/dataflow-matcher/ir"
)

// Any is a convenience alias for a wildcard pattern.
func Any() Pattern { return &Wildcard{} }

// IsVar returns a pattern matching any ir.Var with the given name hint, or
// any var at all when name is empty.
func IsVar(name string) *Var { return &Var{NameHint: name} }

// IsDataflowVar returns a pattern matching any ir.DataflowVar with the
// given name hint, or any dataflow var when name is empty.
func IsDataflowVar(name string) *DataflowVar { return &DataflowVar{NameHint: name} }

// IsConst returns a pattern matching any ir.Constant.
func IsConst() Pattern { return &Constant{} }

// IsOp returns a pattern matching the named ir.Op, via an ExprLiteral.
func IsOp(name string) Pattern { return &ExprLiteral{Expr: &ir.Op{Name: name}} }

// IsCall returns a pattern matching a Call of op against args. A nil args
// leaves arity unconstrained.
func IsCall(op Pattern, args ...Pattern) *Call { return &Call{Op: op, Args: args} }

// IsTuple returns a pattern matching a Tuple with the given fields. A nil
// fields leaves arity unconstrained.
func IsTuple(fields ...Pattern) *Tuple { return &Tuple{Fields: fields} }

// HasAttr returns a pattern requiring inner to match and its op/call/
// function attributes to satisfy attrs.
func HasAttr(inner Pattern, attrs map[string]any) *Attr {
	return &Attr{Inner: inner, Attrs: attrs}
}

// HasType returns a pattern requiring inner to match and its checked type
// to equal typ.
func HasType(inner Pattern, typ ir.Type) *Type {
	return &Type{Inner: inner, Typ: typ}
}

// HasShape returns a pattern requiring inner to match and its shape to
// equal dims elementwise.
func HasShape(inner Pattern, dims ...ir.PrimExpr) *Shape {
	return &Shape{Inner: inner, Dims: dims}
}

// HasDType returns a pattern requiring inner to match and its checked
// type to be a tensor of dtype dt.
func HasDType(inner Pattern, dt dtype.DataType) *DataType {
	return &DataType{Inner: inner, DType: dt}
}

// Or returns a pattern matching when either l or r matches.
func Or(l, r Pattern) *Alt { return &Alt{Left: l, Right: r} }

// Both returns a pattern matching when both l and r match.
func Both(l, r Pattern) *And { return &And{Left: l, Right: r} }

// Negate returns a pattern matching when reject fails to match.
func Negate(reject Pattern) *Not { return &Not{Reject: reject} }

// HasAncestor returns a dominator pattern: child matches some node N, the
// inputs reached from N match path until one matches parent, and parent
// matches some node that N dominates (see Dominator).
func HasAncestor(child, path, parent Pattern) *Dominator {
	return &Dominator{Child: child, Path: path, Parent: parent}
}
