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
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
)

// ShapeLike is the shape of an expression: either a symbolic ShapeExpr or
// a RuntimeDepShape sentinel for shapes that are unknown until runtime.
type ShapeLike interface {
	Node
	isShape()
	String() string
}

// ShapeExpr is a symbolic tensor shape: one PrimExpr per axis.
type ShapeExpr struct {
	Values []PrimExpr
}

// RuntimeDepShape marks a shape that cannot be determined statically.
type RuntimeDepShape struct{}

var (
	_ ShapeLike = (*ShapeExpr)(nil)
	_ ShapeLike = RuntimeDepShape{}
	_ Expr      = (*ShapeExpr)(nil)
)

func (*ShapeExpr) node()        {}
func (RuntimeDepShape) node()   {}
func (*ShapeExpr) isShape()     {}
func (RuntimeDepShape) isShape() {}

// CheckedType of a shape expression used as a value (e.g. a literal shape
// argument to an operator) is not tracked by this matcher: it is always
// nil.
func (s *ShapeExpr) CheckedType() Type { return nil }

// Shape of a shape expression is itself, by convention.
func (s *ShapeExpr) Shape() ShapeLike { return s }

// String renders the shape as "[d0, d1, ...]".
func (s *ShapeExpr) String() string {
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String representation of a runtime-dependent shape.
func (RuntimeDepShape) String() string { return "?" }

// Concrete returns the fully-resolved shape backing this symbolic shape,
// when every axis is a constant integer. It hands off to the backend's
// own shape representation, the same struct the compute graph and kernel
// layers consume.
func (s *ShapeExpr) Concrete(dt dtype.DataType) (*shape.Shape, bool) {
	lens := make([]int, len(s.Values))
	for i, v := range s.Values {
		d, ok := v.(*IntDim)
		if !ok {
			return nil, false
		}
		if d.Value < 0 {
			return nil, false
		}
		lens[i] = int(d.Value)
	}
	return &shape.Shape{DType: dt, AxisLengths: lens}, true
}

// ConcreteShape resolves t's shape to the backend's own representation,
// when t's shape is a ShapeExpr with every axis a constant integer.
func (t *TensorType) ConcreteShape() (*shape.Shape, bool) {
	se, ok := t.Shp.(*ShapeExpr)
	if !ok {
		return nil, false
	}
	return se.Concrete(t.DType)
}
