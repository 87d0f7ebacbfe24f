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
	"bytes"
	"iter"
)

// Children returns an iterator over the direct children of this expression,
// in source order.
//
// For a [Comprehension], the order is the order of its fields. Nil children
// are skipped.
func (e *Expr) Children() iter.Seq[*Expr] {
	return func(yield func(*Expr) bool) {
		each := func(children ...*Expr) bool {
			for _, child := range children {
				if child != nil && !yield(child) {
					return false
				}
			}
			return true
		}

		switch n := e.node().(type) {
		case *Select:
			each(n.Operand)
		case *Call:
			if each(n.Target) {
				each(n.Args...)
			}
		case *List:
			each(n.Elements...)
		case *Struct:
			for _, entry := range n.Entries {
				if !each(entry.Key, entry.Value) {
					return
				}
			}
		case *Comprehension:
			each(n.IterRange, n.AccuInit, n.LoopCondition, n.LoopStep, n.Result)
		}
	}
}

// Walk returns an iterator over every expression in the tree rooted at e,
// in pre-order.
func Walk(e *Expr) iter.Seq[*Expr] {
	return func(yield func(*Expr) bool) {
		walk(e, yield)
	}
}

func walk(e *Expr, yield func(*Expr) bool) bool {
	if e == nil {
		return true
	}
	if !yield(e) {
		return false
	}
	for child := range e.Children() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// IDs returns an iterator over every ID used in the tree rooted at e,
// including those of [Struct] entries, in pre-order.
func IDs(e *Expr) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for e := range Walk(e) {
			if !yield(e.ID) {
				return
			}
			if s := e.AsStruct(); s != nil {
				for _, entry := range s.Entries {
					if !yield(entry.ID) {
						return
					}
				}
			}
		}
	}
}

// Clone returns a deep copy of this expression.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}

	out := &Expr{ID: e.ID}
	switch n := e.Node.(type) {
	case *Literal:
		v := n.Value
		if b, ok := v.(Bytes); ok {
			v = Bytes(bytes.Clone(b))
		}
		out.Node = &Literal{Value: v}
	case *Ident:
		out.Node = &Ident{Name: n.Name}
	case *Select:
		out.Node = &Select{Operand: n.Operand.Clone(), Field: n.Field, TestOnly: n.TestOnly}
	case *Call:
		out.Node = &Call{Target: n.Target.Clone(), Function: n.Function, Args: cloneAll(n.Args)}
	case *List:
		out.Node = &List{Elements: cloneAll(n.Elements)}
	case *Struct:
		s := &Struct{TypeName: n.TypeName}
		if n.Entries != nil {
			s.Entries = make([]*Entry, len(n.Entries))
		}
		for i, entry := range n.Entries {
			s.Entries[i] = &Entry{
				ID:    entry.ID,
				Field: entry.Field,
				Key:   entry.Key.Clone(),
				Value: entry.Value.Clone(),
			}
		}
		out.Node = s
	case *Comprehension:
		out.Node = &Comprehension{
			IterVar:       n.IterVar,
			IterRange:     n.IterRange.Clone(),
			AccuVar:       n.AccuVar,
			AccuInit:      n.AccuInit.Clone(),
			LoopCondition: n.LoopCondition.Clone(),
			LoopStep:      n.LoopStep.Clone(),
			Result:        n.Result.Clone(),
		}
	}
	return out
}

func cloneAll(exprs []*Expr) []*Expr {
	if exprs == nil {
		return nil
	}
	out := make([]*Expr, len(exprs))
	for i, e := range exprs {
		out[i] = e.Clone()
	}
	return out
}
