// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import (
	"maps"
	"slices"
)

// References is the set of free variables and functions an expression
// refers to.
type References struct {
	variables map[string]struct{}
	functions map[string]struct{}
}

// CollectReferences walks an expression and records every variable and
// function it names.
//
// Variables bound by a [Comprehension] are not free inside of it, so they are
// only recorded when they are used outside of their scope. Functions include
// operators, under their operator function names.
func CollectReferences(e *Expr) *References {
	refs := &References{
		variables: make(map[string]struct{}),
		functions: make(map[string]struct{}),
	}
	refs.collect(e, nil)
	return refs
}

// HasVariable returns whether name is referenced as a variable.
func (r *References) HasVariable(name string) bool {
	_, ok := r.variables[name]
	return ok
}

// HasFunction returns whether name is referenced as a function.
func (r *References) HasFunction(name string) bool {
	_, ok := r.functions[name]
	return ok
}

// Variables returns the referenced variables, sorted.
func (r *References) Variables() []string {
	return slices.Sorted(maps.Keys(r.variables))
}

// Functions returns the referenced functions, sorted.
func (r *References) Functions() []string {
	return slices.Sorted(maps.Keys(r.functions))
}

// collect records references in e; bound is the stack of names currently in
// scope due to enclosing comprehensions.
func (r *References) collect(e *Expr, bound []string) {
	switch n := e.node().(type) {
	case *Ident:
		if !slices.Contains(bound, n.Name) {
			r.variables[n.Name] = struct{}{}
		}
		return
	case *Call:
		r.functions[n.Function] = struct{}{}
	case *Comprehension:
		r.collect(n.IterRange, bound)
		r.collect(n.AccuInit, bound)

		loop := append(slices.Clip(bound), n.IterVar, n.AccuVar)
		r.collect(n.LoopCondition, loop)
		r.collect(n.LoopStep, loop)
		r.collect(n.Result, append(slices.Clip(bound), n.AccuVar))
		return
	}

	for child := range e.Children() {
		r.collect(child, bound)
	}
}
