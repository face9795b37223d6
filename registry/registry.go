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

// Package registry exposes the matcher's two entry points under the
// stable symbolic names a scripting front-end would look them up by
// (spec.md §6): "relax.dataflow_pattern.match" and
// "relax.dataflow_pattern.match_expr". It is the Go-idiomatic analogue
// of TVM_REGISTER_GLOBAL, deliberately tiny since the real bridge to a
// scripting layer is out of scope (spec.md §1).
package registry

import (
	"github.com/pkg/errors"

	"github.com/gx-org/dataflow-matcher/ir"
	"github.com/gx-org/dataflow-matcher/matcher"
	"github.com/gx-org/dataflow-matcher/pattern"
)

var global = map[string]any{}

// Register binds name to fn in the global table, overwriting any prior
// registration. Mirrors TVM_REGISTER_GLOBAL's last-registration-wins
// behavior.
func Register(name string, fn any) {
	global[name] = fn
}

// Lookup returns the function registered under name.
func Lookup(name string) (any, bool) {
	fn, ok := global[name]
	return fn, ok
}

func init() {
	Register("relax.dataflow_pattern.match", MatchPattern)
	Register("relax.dataflow_pattern.match_expr", MatchExprPattern)
}

// MatchPattern is the non-auto-jumping entry point: it reports whether
// pat matches expr, with typeOf resolving checked types for the
// Type/Shape/DataType pattern variants. An invariant violation (e.g. an
// unsupported attribute-value kind) is returned as an error rather than
// left to panic, since a
// registry caller has no matcher-internal context to recover from one
// itself.
func MatchPattern(pat pattern.Pattern, expr ir.Expr, typeOf matcher.TypeOracle) (ok bool, err error) {
	defer matcher.Recover(&err)
	m := matcher.New(expr, typeOf)
	return m.Match(pat, expr), nil
}

// MatchExprPattern is the auto-jumping entry point: var2val supplies
// the bound value for every Var reachable from expr. var2val must be
// non-nil whatever the pattern; a nil map is returned as an
// *matcher.InvariantError.
func MatchExprPattern(pat pattern.Pattern, expr ir.Expr, var2val map[*ir.Var]ir.Expr) (ok bool, err error) {
	defer matcher.Recover(&err)
	m := matcher.New(expr, nil)
	return m.MatchAuto(pat, expr, var2val), nil
}

// MustLookup returns the function registered under name, panicking if
// absent. Intended for call sites that register their own entry points
// at init time and treat a missing one as a build-time mistake.
func MustLookup(name string) any {
	fn, ok := Lookup(name)
	if !ok {
		panic(errors.Errorf("registry: no function registered under %q", name))
	}
	return fn
}
