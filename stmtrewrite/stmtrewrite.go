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

// Package stmtrewrite mutates a dataflow block in place: replacing uses of
// a variable, inserting bindings, and removing bindings that have become
// dead. It is the collaborator spec.md §4.10 describes as a consumed
// interface; this package gives it a concrete implementation grounded in
// the original DataflowBlockRewriteNode it was distilled from.
package stmtrewrite

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gx-org/dataflow-matcher/base/ordered"
	"github.com/gx-org/dataflow-matcher/base/uname"
	"github.com/gx-org/dataflow-matcher/ir"
)

type (
	// Binding binds Var (a *ir.Var or *ir.DataflowVar) to Value within a
	// DataflowBlock.
	Binding struct {
		Var   ir.Expr
		Value ir.Expr
	}

	// DataflowBlock is an ordered sequence of bindings.
	DataflowBlock struct {
		Bindings []*Binding
	}

	// Function is the enclosing function a DataflowBlock is rewritten
	// within: its parameters and the expression it returns. Ret typically
	// references variables bound by the block.
	Function struct {
		Params []*ir.Var
		Ret    ir.Expr
		Typ    ir.Type
	}

	// IRModule maps global function names to their bodies.
	IRModule struct {
		Funcs map[string]*Function
	}
)

// Rewrite is spec.md §4.10's statement rewriter: it owns a mutable
// DataflowBlock and its enclosing Function, a pointer to the original
// function (for identifying it inside an IRModule), a var-to-users inverse
// map, the set of the function's output variables, and a fresh-name
// generator that avoids collisions with any name already bound in the
// block.
type Rewrite struct {
	block   *DataflowBlock
	fn      *Function
	origFn  *Function
	toUsers *ordered.Map[ir.Expr, []ir.Expr]
	outputs map[ir.Expr]bool
	names   *uname.Unique
	counter int
}

// New returns a rewriter over a copy of block's binding list, scoped to fn.
func New(block *DataflowBlock, fn *Function) *Rewrite {
	r := &Rewrite{
		block:   &DataflowBlock{Bindings: append([]*Binding{}, block.Bindings...)},
		fn:      fn,
		origFn:  fn,
		toUsers: ordered.NewMap[ir.Expr, []ir.Expr](),
		outputs: map[ir.Expr]bool{},
		names:   uname.New(),
	}
	for _, b := range r.block.Bindings {
		if name := varName(b.Var); name != "" {
			r.names.Name(name)
		}
		r.recordUsers(b.Value, b.Var)
	}
	freeVars(fn.Ret, r.outputs)
	return r
}

func varName(e ir.Expr) string {
	switch v := e.(type) {
	case *ir.Var:
		return v.NameHint
	case *ir.DataflowVar:
		return v.NameHint
	default:
		return ""
	}
}

// freeVars collects every *ir.Var/*ir.DataflowVar reachable from e into out.
func freeVars(e ir.Expr, out map[ir.Expr]bool) {
	if e == nil {
		return
	}
	switch t := e.(type) {
	case *ir.Var, *ir.DataflowVar:
		out[e] = true
	case *ir.Tuple:
		for _, f := range t.Fields {
			freeVars(f, out)
		}
	case *ir.TupleGetItem:
		freeVars(t.TupleValue, out)
	case *ir.Call:
		freeVars(t.Op, out)
		for _, a := range t.Args {
			freeVars(a, out)
		}
	case *ir.Function:
		freeVars(t.Body, out)
	case *ir.If:
		freeVars(t.Cond, out)
		freeVars(t.Then, out)
		freeVars(t.Else, out)
	}
}

func (r *Rewrite) recordUsers(value, user ir.Expr) {
	free := map[ir.Expr]bool{}
	freeVars(value, free)
	for v := range free {
		users, _ := r.toUsers.Load(v)
		r.toUsers.Store(v, append(users, user))
	}
}

func (r *Rewrite) dropUsers(value, user ir.Expr) {
	free := map[ir.Expr]bool{}
	freeVars(value, free)
	for v := range free {
		users, ok := r.toUsers.Load(v)
		if !ok {
			continue
		}
		out := make([]ir.Expr, 0, len(users))
		for _, u := range users {
			if u != user {
				out = append(out, u)
			}
		}
		r.toUsers.Store(v, out)
	}
}

// ReplaceAllUses rewrites every binding value and the function's return
// expression, substituting newVar wherever oldVar occurred.
func (r *Rewrite) ReplaceAllUses(oldVar, newVar ir.Expr) {
	for _, b := range r.block.Bindings {
		b.Value = substitute(b.Value, oldVar, newVar)
	}
	r.fn.Ret = substitute(r.fn.Ret, oldVar, newVar)

	if users, ok := r.toUsers.Load(oldVar); ok {
		existing, _ := r.toUsers.Load(newVar)
		r.toUsers.Store(newVar, append(existing, users...))
		r.toUsers.Store(oldVar, nil)
	}
	if r.outputs[oldVar] {
		delete(r.outputs, oldVar)
		r.outputs[newVar] = true
	}
}

// substitute rebuilds e's spine wherever it contains old, replacing it with
// newE. Subtrees untouched by the substitution are returned unchanged.
func substitute(e, old, newE ir.Expr) ir.Expr {
	if e == old {
		return newE
	}
	switch t := e.(type) {
	case *ir.Tuple:
		fields := make([]ir.Expr, len(t.Fields))
		changed := false
		for i, f := range t.Fields {
			fields[i] = substitute(f, old, newE)
			changed = changed || fields[i] != f
		}
		if !changed {
			return e
		}
		return &ir.Tuple{Fields: fields, Typ: t.Typ}
	case *ir.TupleGetItem:
		tv := substitute(t.TupleValue, old, newE)
		if tv == t.TupleValue {
			return e
		}
		return &ir.TupleGetItem{TupleValue: tv, Index: t.Index, Typ: t.Typ}
	case *ir.Call:
		op := substitute(t.Op, old, newE)
		args := make([]ir.Expr, len(t.Args))
		changed := op != t.Op
		for i, a := range t.Args {
			args[i] = substitute(a, old, newE)
			changed = changed || args[i] != a
		}
		if !changed {
			return e
		}
		return &ir.Call{Op: op, Args: args, Attrs: t.Attrs, Typ: t.Typ}
	case *ir.Function:
		body := substitute(t.Body, old, newE)
		if body == t.Body {
			return e
		}
		return &ir.Function{Params: t.Params, Body: body, Attrs: t.Attrs, Typ: t.Typ}
	case *ir.If:
		cond := substitute(t.Cond, old, newE)
		then := substitute(t.Then, old, newE)
		els := substitute(t.Else, old, newE)
		if cond == t.Cond && then == t.Then && els == t.Else {
			return e
		}
		return &ir.If{Cond: cond, Then: then, Else: els, Typ: t.Typ}
	default:
		return e
	}
}

// Add inserts binding at the end of the block.
func (r *Rewrite) Add(binding *Binding) {
	r.block.Bindings = append(r.block.Bindings, binding)
	r.recordUsers(binding.Value, binding.Var)
}

// AddNamed binds expr to a fresh var (or dataflow var) derived from name,
// suffixed if name collides with one already bound in the block, and
// returns that var.
func (r *Rewrite) AddNamed(name string, expr ir.Expr, isDataflow bool) ir.Expr {
	bound := map[string]bool{}
	for _, b := range r.block.Bindings {
		bound[varName(b.Var)] = true
	}
	unique := r.names.Name(name)
	for bound[unique] {
		unique = r.names.Name(name)
	}
	var v ir.Expr
	if isDataflow {
		v = &ir.DataflowVar{NameHint: unique, Typ: expr.CheckedType(), Shp: expr.Shape()}
	} else {
		v = &ir.Var{NameHint: unique, Typ: expr.CheckedType(), Shp: expr.Shape()}
	}
	r.Add(&Binding{Var: v, Value: expr})
	return v
}

// AddAuto binds expr to a fresh, automatically-named var (or dataflow var).
func (r *Rewrite) AddAuto(expr ir.Expr, isDataflow bool) ir.Expr {
	r.counter++
	return r.AddNamed(fmt.Sprintf("lv%d", r.counter), expr, isDataflow)
}

// RemoveUnused deletes the binding defining v, failing if v is a function
// output or still referenced by another binding's value.
func (r *Rewrite) RemoveUnused(v ir.Expr) error {
	if r.outputs[v] {
		return errors.Errorf("stmtrewrite: cannot remove %s: it is an output of the function", v)
	}
	if users, ok := r.toUsers.Load(v); ok && len(users) > 0 {
		return errors.Errorf("stmtrewrite: cannot remove %s: still used by %d binding(s)", v, len(users))
	}
	idx := -1
	for i, b := range r.block.Bindings {
		if b.Var == v {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Errorf("stmtrewrite: no binding defines %s", v)
	}
	removed := r.block.Bindings[idx]
	r.block.Bindings = append(r.block.Bindings[:idx], r.block.Bindings[idx+1:]...)
	r.dropUsers(removed.Value, v)
	return nil
}

// RemoveAllUnused repeatedly removes bindings with no remaining users and
// no function-output role, until no further binding qualifies. It collects
// per-binding failures rather than aborting on the first one, since a
// partial removal report is more useful to a caller driving a cleanup pass.
func (r *Rewrite) RemoveAllUnused() error {
	var errs error
	for {
		removedAny := false
		for _, b := range append([]*Binding{}, r.block.Bindings...) {
			if r.outputs[b.Var] {
				continue
			}
			if users, ok := r.toUsers.Load(b.Var); ok && len(users) > 0 {
				continue
			}
			if err := r.RemoveUnused(b.Var); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			removedAny = true
		}
		if !removedAny {
			break
		}
	}
	return errs
}

// MutatedDataflowBlock returns the rewritten block.
func (r *Rewrite) MutatedDataflowBlock() *DataflowBlock { return r.block }

// MutatedFunc returns the rewritten function.
func (r *Rewrite) MutatedFunc() *Function { return r.fn }

// MutateIRModule returns a copy of mod with the original function (matched
// by pointer identity) replaced by the rewritten one.
func (r *Rewrite) MutateIRModule(mod *IRModule) (*IRModule, error) {
	out := &IRModule{Funcs: make(map[string]*Function, len(mod.Funcs))}
	found := false
	for name, fn := range mod.Funcs {
		if fn == r.origFn {
			out.Funcs[name] = r.fn
			found = true
			continue
		}
		out.Funcs[name] = fn
	}
	if !found {
		return nil, errors.Errorf("stmtrewrite: original function not found in module")
	}
	return out, nil
}
