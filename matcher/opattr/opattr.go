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

// Package opattr is a small registry of op attribute maps, the
// collaborator an Attr pattern consults when it is matched against a
// bare ir.Op (spec.md §4.4: "a registered op-attribute map named name
// that contains this op"). A real compiler registers these once, at
// startup, for every op that carries a given attribute (e.g. every
// elementwise op registers a "TOpPattern" attribute used by the fusion
// pass); this package only needs to serve lookups.
package opattr

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Registry maps an attribute name to the set of ops that carry it and
// their value for that attribute.
type Registry struct {
	byAttr map[string]map[string]any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byAttr: map[string]map[string]any{}}
}

// Register records that op carries the named attribute with value.
func (r *Registry) Register(attrName, op string, value any) {
	m, ok := r.byAttr[attrName]
	if !ok {
		m = map[string]any{}
		r.byAttr[attrName] = m
	}
	m[op] = value
}

// HasAttrMap reports whether any op has registered the named attribute.
func (r *Registry) HasAttrMap(attrName string) bool {
	_, ok := r.byAttr[attrName]
	return ok
}

// AttrMap returns the op -> value map for the named attribute, or nil
// when no op has registered it.
func (r *Registry) AttrMap(attrName string) map[string]any {
	return r.byAttr[attrName]
}

// AttrNames returns the registered attribute names in a stable,
// deterministic order.
func (r *Registry) AttrNames() []string {
	names := maps.Keys(r.byAttr)
	sort.Strings(names)
	return names
}
