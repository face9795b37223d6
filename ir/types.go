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

	"github.com/gx-org/backend/dtype"
)

// Type is the static type of an expression.
type Type interface {
	Node
	String() string
}

type (
	// TensorType is the type of a (possibly symbolically shaped) tensor.
	TensorType struct {
		DType dtype.DataType
		Shp   ShapeLike
	}

	// TupleType is the type of a tuple of values.
	TupleType struct {
		Fields []Type
	}

	// FuncType is the type of a function value.
	FuncType struct {
		Params []Type
		Result Type
	}

	// ObjectType is an opaque, backend-defined type that is not a tensor,
	// tuple, or function (e.g. a PRNG key handle).
	ObjectType struct {
		Name string
	}

	// VoidType is the type of an expression with no result.
	VoidType struct{}
)

var (
	_ Type = (*TensorType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*FuncType)(nil)
	_ Type = (*ObjectType)(nil)
	_ Type = VoidType{}
)

func (*TensorType) node() {}
func (*TupleType) node()  {}
func (*FuncType) node()   {}
func (*ObjectType) node() {}
func (VoidType) node()    {}

// String representation of the tensor type. When the shape is fully
// concrete, the backend's resolved axis lengths are printed instead of
// the symbolic ShapeExpr, the same shape a compute graph or kernel layer
// consuming this type would see.
func (t *TensorType) String() string {
	if cs, ok := t.ConcreteShape(); ok {
		return fmt.Sprintf("Tensor[%v, %v]", t.DType, cs.AxisLengths)
	}
	return fmt.Sprintf("Tensor[%v, %v]", t.DType, t.Shp)
}

// String representation of the tuple type.
func (t *TupleType) String() string { return "Tuple" }

// String representation of the function type.
func (t *FuncType) String() string { return "Func" }

// String representation of the object type.
func (t *ObjectType) String() string { return t.Name }

// String representation of the void type.
func (VoidType) String() string { return "Void" }
