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
	"slices"
	"strings"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/reference"
	"github.com/bufbuild/celparse/source"
)

// AccumulatorName is the name of the accumulator variable in comprehensions
// produced by macro expansion.
const AccumulatorName = "@result"

// macro describes how calls to one macro are expanded.
type macro struct {
	name     string
	receiver bool  // Whether the macro is called as a method.
	arities  []int // Accepted argument counts.

	// expand rewrites call, whose id and argument count have already been
	// checked.
	expand func(p *parser, call *ast.Expr) (*ast.Expr, error)
}

type macroKey struct {
	name     string
	receiver bool
}

var macros = func() map[macroKey]*macro {
	table := []*macro{
		{name: "has", arities: []int{1}, expand: expandHas},
		{name: "all", receiver: true, arities: []int{2}, expand: expandAll},
		{name: "exists", receiver: true, arities: []int{2}, expand: expandExists},
		{name: "exists_one", receiver: true, arities: []int{2}, expand: expandExistsOne},
		{name: "map", receiver: true, arities: []int{2, 3}, expand: expandMap},
		{name: "filter", receiver: true, arities: []int{2}, expand: expandFilter},
	}
	byKey := make(map[macroKey]*macro, len(table))
	for _, m := range table {
		byKey[macroKey{m.name, m.receiver}] = m
	}
	return byKey
}()

// call builds a call node, expanding it if it is a macro call.
//
// The call's id is allocated before any nodes the expansion synthesizes, and
// is the id of the expanded node.
func (p *parser) call(target *ast.Expr, function string, args []*ast.Expr, span source.Span) (*ast.Expr, error) {
	call := p.newCall(target, function, args, span)

	m := macros[macroKey{function, target != nil}]
	if m == nil || !p.opts.macroEnabled(function) {
		return call, nil
	}
	if !slices.Contains(m.arities, len(args)) {
		return nil, &MacroArityError{
			Macro:    function,
			Expected: m.arities,
			Actual:   len(args),
			span:     span,
		}
	}
	return m.expand(p, call)
}

// expandHas rewrites has(e.f) to a presence test on e.f.
func expandHas(p *parser, call *ast.Expr) (*ast.Expr, error) {
	arg := call.AsCall().Args[0]
	sel := arg.AsSelect()
	if sel == nil || sel.TestOnly {
		return nil, &MacroBindingError{Macro: "has", span: p.span(arg)}
	}
	return &ast.Expr{ID: call.ID, Node: &ast.Select{
		Operand:  sel.Operand,
		Field:    sel.Field,
		TestOnly: true,
	}}, nil
}

// r.all(x, p)
func expandAll(p *parser, call *ast.Expr) (*ast.Expr, error) {
	return p.fold(call, func(b builder, _ string, args []*ast.Expr) fold {
		return fold{
			init:   b.literal(ast.Bool(true)),
			cond:   b.accu(),
			step:   b.call("_&&_", b.accu(), args[1]),
			result: b.accu(),
		}
	})
}

// r.exists(x, p)
func expandExists(p *parser, call *ast.Expr) (*ast.Expr, error) {
	return p.fold(call, func(b builder, _ string, args []*ast.Expr) fold {
		return fold{
			init:   b.literal(ast.Bool(false)),
			cond:   b.call("!_", b.accu()),
			step:   b.call("_||_", b.accu(), args[1]),
			result: b.accu(),
		}
	})
}

// r.exists_one(x, p)
func expandExistsOne(p *parser, call *ast.Expr) (*ast.Expr, error) {
	return p.fold(call, func(b builder, _ string, args []*ast.Expr) fold {
		return fold{
			init: b.literal(ast.Int(0)),
			cond: b.literal(ast.Bool(true)),
			step: b.call("_+_", b.accu(), b.call("_?_:_",
				args[1], b.literal(ast.Int(1)), b.literal(ast.Int(0)))),
			result: b.call("_==_", b.accu(), b.literal(ast.Int(1))),
		}
	})
}

// r.map(x, t) and r.map(x, p, t)
func expandMap(p *parser, call *ast.Expr) (*ast.Expr, error) {
	return p.fold(call, func(b builder, _ string, args []*ast.Expr) fold {
		f := fold{
			init: b.list(),
			cond: b.literal(ast.Bool(true)),
		}
		if len(args) == 2 {
			f.step = b.call("_+_", b.accu(), b.list(args[1]))
		} else {
			f.step = b.call("_?_:_", args[1], b.call("_+_", b.accu(), b.list(args[2])), b.accu())
		}
		f.result = b.accu()
		return f
	})
}

// r.filter(x, p)
func expandFilter(p *parser, call *ast.Expr) (*ast.Expr, error) {
	return p.fold(call, func(b builder, iterVar string, args []*ast.Expr) fold {
		return fold{
			init: b.list(),
			cond: b.literal(ast.Bool(true)),
			step: b.call("_?_:_",
				args[1], b.call("_+_", b.accu(), b.list(b.ident(iterVar))), b.accu()),
			result: b.accu(),
		}
	})
}

// fold is the accumulator half of a comprehension.
type fold struct {
	init, cond, step, result *ast.Expr
}

// fold expands a macro call of the form r.m(x, ...) into a comprehension
// over r binding x, recording the original call.
//
// body must build the parts of the fold in order: init, then cond, then step,
// then result.
func (p *parser) fold(call *ast.Expr, body func(b builder, iterVar string, args []*ast.Expr) fold) (*ast.Expr, error) {
	c := call.AsCall()
	binding := c.Args[0].AsIdent()
	if binding == nil || strings.HasPrefix(binding.Name, ".") {
		return nil, &MacroBindingError{Macro: c.Function, span: p.span(c.Args[0])}
	}

	record := &reference.MacroCall{
		Name:   c.Function,
		Target: c.Target.Clone(),
		Args:   make([]*ast.Expr, len(c.Args)),
	}
	for i, arg := range c.Args {
		record.Args[i] = arg.Clone()
	}

	f := body(builder{p: p, span: p.span(call)}, binding.Name, c.Args)
	p.refs.AddMacro(call.ID, record)

	return &ast.Expr{ID: call.ID, Node: &ast.Comprehension{
		IterVar:       binding.Name,
		IterRange:     c.Target,
		AccuVar:       AccumulatorName,
		AccuInit:      f.init,
		LoopCondition: f.cond,
		LoopStep:      f.step,
		Result:        f.result,
	}}, nil
}

// builder synthesizes nodes for a macro expansion. Every node it builds has
// the span of the macro call.
//
// Go evaluates arguments before the call they are passed to, so nested
// builder calls allocate ids in post-order.
type builder struct {
	p    *parser
	span source.Span
}

func (b builder) literal(v ast.Val) *ast.Expr {
	return b.p.newExpr(&ast.Literal{Value: v}, b.span)
}

func (b builder) ident(name string) *ast.Expr {
	return b.p.newExpr(&ast.Ident{Name: name}, b.span)
}

func (b builder) accu() *ast.Expr {
	return b.ident(AccumulatorName)
}

func (b builder) call(function string, args ...*ast.Expr) *ast.Expr {
	return b.p.newCall(nil, function, args, b.span)
}

func (b builder) list(elems ...*ast.Expr) *ast.Expr {
	if len(elems) == 0 {
		elems = nil
	}
	return b.p.newExpr(&ast.List{Elements: elems}, b.span)
}
