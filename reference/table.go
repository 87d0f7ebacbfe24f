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

// Package reference provides the id-keyed side table produced alongside a
// parsed expression.
//
// The table records, for every expanded macro, the call that was written in
// the source; it also holds slots that later passes (such as a type checker)
// fill with the entity an identifier or call resolves to.
package reference

import (
	"errors"
	"fmt"
	"iter"

	"github.com/tidwall/btree"

	"github.com/bufbuild/celparse/ast"
)

// ErrNoSlot is returned by [Table.Resolve] when an id has no reserved
// resolution slot.
var ErrNoSlot = errors.New("no resolution slot reserved")

// Kind is the kind of a [Reference].
type Kind int8

const (
	KindInvalid Kind = iota
	KindMacro
	KindResolution
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindMacro:
		return "macro"
	case KindResolution:
		return "resolution"
	default:
		return fmt.Sprintf("reference.Kind(%d)", int(k))
	}
}

// MacroCall is the call expression a macro was expanded from.
//
// Target and Args are copies of the sub-trees as they were before the
// expansion of this macro; macros nested inside them have already been
// expanded.
type MacroCall struct {
	Name   string
	Target *ast.Expr
	Args   []*ast.Expr
}

// Expr reconstructs the call node this macro was written as, numbered with
// id. The returned tree shares nothing with m.
func (m *MacroCall) Expr(id ast.ID) *ast.Expr {
	args := make([]*ast.Expr, len(m.Args))
	for i, arg := range m.Args {
		args[i] = arg.Clone()
	}
	return &ast.Expr{ID: id, Node: &ast.Call{
		Target:   m.Target.Clone(),
		Function: m.Name,
		Args:     args,
	}}
}

// Resolution is the entity a name resolves to, as determined by some pass
// after parsing.
type Resolution struct {
	// The fully-qualified name of the variable or function.
	Name string
	// Overload ids, for calls.
	Overloads []string
}

// Reference is an entry in a [Table].
type Reference struct {
	kind       Kind
	macro      *MacroCall
	resolution *Resolution
}

// Kind returns what kind of reference this is.
func (r Reference) Kind() Kind {
	return r.kind
}

// Macro returns the macro record for this reference, or nil if it is not
// a macro reference.
func (r Reference) Macro() *MacroCall {
	return r.macro
}

// Resolution returns this reference's resolution, or nil if it is not a
// resolution slot or has not been resolved yet.
func (r Reference) Resolution() *Resolution {
	return r.resolution
}

// Table is a mapping from node ids to references.
//
// A zero Table is empty and ready to use. Tables are not safe for concurrent
// mutation.
type Table struct {
	refs btree.Map[ast.ID, Reference]
}

// AddMacro records that the node numbered id was expanded from call.
//
// This overwrites anything previously recorded for id.
func (t *Table) AddMacro(id ast.ID, call *MacroCall) {
	t.refs.Set(id, Reference{kind: KindMacro, macro: call})
}

// Reserve reserves an empty resolution slot for id. Does nothing if id already
// has an entry.
func (t *Table) Reserve(id ast.ID) {
	if _, ok := t.refs.Get(id); ok {
		return
	}
	t.refs.Set(id, Reference{kind: KindResolution})
}

// Resolve fills the resolution slot for id.
//
// Returns an error wrapping [ErrNoSlot] if [Table.Reserve] was never called
// for id.
func (t *Table) Resolve(id ast.ID, resolution Resolution) error {
	ref, ok := t.refs.Get(id)
	if !ok || ref.kind != KindResolution {
		return fmt.Errorf("resolve %v: %w", id, ErrNoSlot)
	}
	ref.resolution = &resolution
	t.refs.Set(id, ref)
	return nil
}

// Lookup returns the reference for id, if there is one.
func (t *Table) Lookup(id ast.ID) (Reference, bool) {
	return t.refs.Get(id)
}

// Macro returns the macro record for id, or nil if id is not an expanded
// macro.
func (t *Table) Macro(id ast.ID) *MacroCall {
	ref, _ := t.refs.Get(id)
	return ref.macro
}

// Macros returns an iterator over the macro records in this table, by
// ascending id.
func (t *Table) Macros() iter.Seq2[ast.ID, *MacroCall] {
	return func(yield func(ast.ID, *MacroCall) bool) {
		t.refs.Scan(func(id ast.ID, ref Reference) bool {
			if ref.kind != KindMacro {
				return true
			}
			return yield(id, ref.macro)
		})
	}
}

// All returns an iterator over every entry in this table, by ascending id.
func (t *Table) All() iter.Seq2[ast.ID, Reference] {
	return func(yield func(ast.ID, Reference) bool) {
		t.refs.Scan(yield)
	}
}

// Len returns the number of entries in this table.
func (t *Table) Len() int {
	return t.refs.Len()
}
