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

package parser

import (
	"sync"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/internal/interval"
	"github.com/bufbuild/celparse/reference"
	"github.com/bufbuild/celparse/source"
)

// Result is the result of parsing one expression.
type Result struct {
	File       *source.File
	Expr       *ast.Expr
	References *reference.Table

	// Indexed by ast.ID.
	spans []source.Span

	once  sync.Once
	nodes interval.Nesting[int, *ast.Expr]
}

// Parse parses src as a single expression.
//
// The first error encountered aborts the parse; the returned error is an
// [ErrorWithPos], and no partial result is returned.
func Parse(src string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	return parseFile(source.NewFile(o.path, src), &o)
}

// ParseFile is like [Parse], but for an existing file.
func ParseFile(file *source.File, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	return parseFile(file, &o)
}

func parseFile(file *source.File, opts *options) (*Result, error) {
	tokens, err := lex(file)
	if err != nil {
		return nil, err
	}

	p := &parser{
		file:   file,
		opts:   opts,
		tokens: tokens,
		refs:   new(reference.Table),
	}
	expr, err := p.parse()
	if err != nil {
		return nil, err
	}

	// Later passes record what identifiers and calls refer to.
	for e := range ast.Walk(expr) {
		if k := e.Kind(); k == ast.KindIdent || k == ast.KindCall {
			p.refs.Reserve(e.ID)
		}
	}

	return &Result{
		File:       file,
		Expr:       expr,
		References: p.refs,
		spans:      p.spans,
	}, nil
}

// Span returns the span of source text for the node or struct entry with the
// given id.
//
// Nodes synthesized by macro expansion have the span of the macro call.
// Returns the zero span for unknown ids.
func (r *Result) Span(id ast.ID) source.Span {
	if id.IsZero() || id >= ast.ID(len(r.spans)) {
		return source.Span{}
	}
	return r.spans[id]
}

// NodeAt returns the innermost node whose span contains the given byte
// offset, or nil if there is none.
//
// Where a macro call was expanded, the comprehension is returned in preference
// to the nodes synthesized for it.
func (r *Result) NodeAt(offset int) *ast.Expr {
	r.once.Do(func() {
		for e := range ast.Walk(r.Expr) {
			span := r.Span(e.ID)
			if span.Len() > 0 {
				r.nodes.Insert(span.Start, span.End-1, e)
			}
		}
	})

	entry, ok := r.nodes.Innermost(offset)
	if !ok {
		return nil
	}
	return entry.Value
}

// Positions returns the byte offset of the start of every node and struct
// entry in the tree, keyed by id.
func (r *Result) Positions() map[ast.ID]int {
	positions := make(map[ast.ID]int)
	for id := range ast.IDs(r.Expr) {
		if span := r.Span(id); !span.IsZero() {
			positions[id] = span.Start
		}
	}
	return positions
}
