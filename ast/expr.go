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

// Expr is a node in an expression tree, together with its [ID].
//
// A nil *Expr, or one with a nil Node, has kind [KindInvalid].
type Expr struct {
	ID   ID
	Node Node
}

// Node is any of the node shapes an [Expr] can hold.
//
// The set of implementations is closed; see [Kind] for the full list.
type Node interface {
	// Kind returns which node shape this is.
	Kind() Kind

	node()
}

// Kind returns the kind of node this expression holds.
func (e *Expr) Kind() Kind {
	if e == nil || e.Node == nil {
		return KindInvalid
	}
	return e.Node.Kind()
}

// AsLiteral returns this expression's node if it is a [Literal].
//
// Otherwise, returns nil.
func (e *Expr) AsLiteral() *Literal {
	n, _ := e.node().(*Literal)
	return n
}

// AsIdent returns this expression's node if it is an [Ident].
//
// Otherwise, returns nil.
func (e *Expr) AsIdent() *Ident {
	n, _ := e.node().(*Ident)
	return n
}

// AsSelect returns this expression's node if it is a [Select].
//
// Otherwise, returns nil.
func (e *Expr) AsSelect() *Select {
	n, _ := e.node().(*Select)
	return n
}

// AsCall returns this expression's node if it is a [Call].
//
// Otherwise, returns nil.
func (e *Expr) AsCall() *Call {
	n, _ := e.node().(*Call)
	return n
}

// AsList returns this expression's node if it is a [List].
//
// Otherwise, returns nil.
func (e *Expr) AsList() *List {
	n, _ := e.node().(*List)
	return n
}

// AsStruct returns this expression's node if it is a [Struct].
//
// Otherwise, returns nil.
func (e *Expr) AsStruct() *Struct {
	n, _ := e.node().(*Struct)
	return n
}

// AsComprehension returns this expression's node if it is a [Comprehension].
//
// Otherwise, returns nil.
func (e *Expr) AsComprehension() *Comprehension {
	n, _ := e.node().(*Comprehension)
	return n
}

func (e *Expr) node() Node {
	if e == nil {
		return nil
	}
	return e.Node
}

// Literal is a constant.
type Literal struct {
	Value Val
}

// Ident is a bare reference to a name.
//
// Names that were written with a leading dot, such as .x, keep the dot.
type Ident struct {
	Name string
}

// Select is a field access, operand.field.
//
// If TestOnly is set, this is a presence test as produced by has(), rather
// than a read of the field.
type Select struct {
	Operand  *Expr
	Field    string
	TestOnly bool
}

// Call is a function call.
//
// Method-style calls, target.f(args), have a non-nil Target; free function
// calls and operators do not. Operators are calls to functions with the
// names listed in the parser package, such as "_+_".
type Call struct {
	Target   *Expr
	Function string
	Args     []*Expr
}

// IsMethod returns whether this is a method-style call.
func (c *Call) IsMethod() bool {
	return c.Target != nil
}

// List is a list literal.
type List struct {
	Elements []*Expr
}

// Struct is either a map literal, {k: v}, or a message literal,
// pkg.Message{field: v}.
//
// Map literals have an empty TypeName and use [Entry.Key]; message literals
// have a TypeName and use [Entry.Field].
type Struct struct {
	TypeName string
	Entries  []*Entry
}

// IsMap returns whether this is a map literal.
func (s *Struct) IsMap() bool {
	return s.TypeName == ""
}

// Entry is a single key-value pair inside of a [Struct].
//
// Entries are not expressions, but they are numbered by the same
// [Allocator] as expressions.
type Entry struct {
	ID    ID
	Field string
	Key   *Expr
	Value *Expr
}

// IsField returns whether this is a message field initializer rather than a
// map entry.
func (e *Entry) IsField() bool {
	return e.Key == nil
}

// Comprehension is the single looping construct of the core language.
//
// Evaluation binds AccuVar to AccuInit, then, for each element of IterRange
// bound to IterVar and while LoopCondition holds, rebinds AccuVar to
// LoopStep. The value of the comprehension is Result.
type Comprehension struct {
	IterVar       string
	IterRange     *Expr
	AccuVar       string
	AccuInit      *Expr
	LoopCondition *Expr
	LoopStep      *Expr
	Result        *Expr
}

func (*Literal) Kind() Kind       { return KindLiteral }
func (*Ident) Kind() Kind         { return KindIdent }
func (*Select) Kind() Kind        { return KindSelect }
func (*Call) Kind() Kind          { return KindCall }
func (*List) Kind() Kind          { return KindList }
func (*Struct) Kind() Kind        { return KindStruct }
func (*Comprehension) Kind() Kind { return KindComprehension }

func (*Literal) node()       {}
func (*Ident) node()         {}
func (*Select) node()        {}
func (*Call) node()          {}
func (*List) node()          {}
func (*Struct) node()        {}
func (*Comprehension) node() {}
