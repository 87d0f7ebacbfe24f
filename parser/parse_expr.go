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
	"math"
	"strings"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/reference"
	"github.com/bufbuild/celparse/source"
)

// Binary operators, by precedence level.
var (
	orOps       = map[string]string{"||": "_||_"}
	andOps      = map[string]string{"&&": "_&&_"}
	relationOps = map[string]string{
		"==": "_==_", "!=": "_!=_",
		"<": "_<_", "<=": "_<=_", ">": "_>_", ">=": "_>=_",
		"in": "@in",
	}
	additiveOps       = map[string]string{"+": "_+_", "-": "_-_"}
	multiplicativeOps = map[string]string{"*": "_*_", "/": "_/_", "%": "_%_"}
)

// parser is a recursive descent parser over a token stream.
//
// Every rule allocates the id of the node it builds after parsing that node's
// children, so ids are assigned in post-order.
type parser struct {
	file   *source.File
	opts   *options
	tokens []token
	pos    int

	ids   ast.Allocator
	refs  *reference.Table
	spans []source.Span // Indexed by ast.ID.
}

func (p *parser) parse() (*ast.Expr, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.unexpected(tok, "end of input")
	}
	return expr, nil
}

// parseExpr parses a conditional, the lowest-precedence construct.
func (p *parser) parseExpr() (*ast.Expr, error) {
	cond, err := p.parseBinary(orOps, p.parseAnd)
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept("?"); !ok {
		return cond, nil
	}

	then, err := p.parseBinary(orOps, p.parseAnd)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":", "`:`"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return p.newCall(nil, "_?_:_", []*ast.Expr{cond, then, els}, p.join(cond, els)), nil
}

func (p *parser) parseAnd() (*ast.Expr, error) {
	return p.parseBinary(andOps, p.parseRelation)
}

func (p *parser) parseRelation() (*ast.Expr, error) {
	return p.parseBinary(relationOps, p.parseAdditive)
}

func (p *parser) parseAdditive() (*ast.Expr, error) {
	return p.parseBinary(additiveOps, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (*ast.Expr, error) {
	return p.parseBinary(multiplicativeOps, p.parseUnary)
}

// parseBinary parses a left-associative chain of the operators in ops, whose
// operands are parsed by next.
func (p *parser) parseBinary(ops map[string]string, next func() (*ast.Expr, error)) (*ast.Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		function, ok := ops[tok.text]
		if !ok || tok.kind != tokenPunct {
			return lhs, nil
		}
		p.advance()

		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = p.newCall(nil, function, []*ast.Expr{lhs, rhs}, p.join(lhs, rhs))
	}
}

func (p *parser) parseUnary() (*ast.Expr, error) {
	tok := p.peek()
	var function string
	switch {
	case tok.is("!"):
		function = "!_"
	case tok.is("-") && !p.atSignedLiteral():
		function = "-_"
	default:
		return p.parseMember()
	}
	p.advance()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.newCall(nil, function, []*ast.Expr{operand}, source.Join(tok.span(p.file), p.span(operand))), nil
}

// parseMember parses a primary expression followed by any number of field
// selections, method calls and index operations.
func (p *parser) parseMember() (*ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch tok := p.peek(); {
		case tok.is("."):
			p.advance()
			name, err := p.expectIdent("field name")
			if err != nil {
				return nil, err
			}
			if !p.peek().is("(") {
				expr = p.newExpr(&ast.Select{Operand: expr, Field: name.text},
					source.Join(p.span(expr), name.span(p.file)))
				continue
			}

			args, end, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr, err = p.call(expr, name.text, args, source.Join(p.span(expr), end))
			if err != nil {
				return nil, err
			}

		case tok.is("["):
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			end, err := p.expect("]", "`]`")
			if err != nil {
				return nil, err
			}
			expr = p.newCall(nil, "_[_]", []*ast.Expr{expr, index},
				source.Join(p.span(expr), end.span(p.file)))

		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (*ast.Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenInt, tokenUint, tokenDouble, tokenString, tokenBytes,
		tokenTrue, tokenFalse, tokenNull:
		p.advance()
		return p.literal(tok, token{})

	case tokenIdent:
		return p.parseIdent()
	}

	switch {
	case tok.is("-") && p.atSignedLiteral():
		p.advance()
		return p.literal(p.advance(), tok)

	case tok.is("."):
		return p.parseIdent()

	case tok.is("("):
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")", "`)`"); err != nil {
			return nil, err
		}
		return expr, nil

	case tok.is("["):
		return p.parseList()

	case tok.is("{"):
		return p.parseMap()
	}

	return nil, p.unexpected(tok, "expression")
}

// literal builds a literal from tok. If minus is not the zero token, it is
// a minus sign immediately preceding tok, which is folded into the value.
func (p *parser) literal(tok, minus token) (*ast.Expr, error) {
	negate := minus.kind == tokenPunct
	span := tok.span(p.file)
	if negate {
		span = source.Join(minus.span(p.file), span)
	}

	var value ast.Val
	switch tok.kind {
	case tokenInt:
		limit := uint64(math.MaxInt64)
		if negate {
			limit++
		}
		if tok.uint > limit {
			return nil, &ParseError{Reason: "integer literal is out of range", span: span}
		}
		v := int64(tok.uint)
		if negate {
			v = -v
		}
		value = ast.Int(v)
	case tokenUint:
		value = ast.Uint(tok.uint)
	case tokenDouble:
		v := tok.double
		if negate {
			v = -v
		}
		value = ast.Double(v)
	case tokenString:
		value = ast.String(tok.str)
	case tokenBytes:
		value = ast.Bytes(tok.str)
	case tokenTrue:
		value = ast.Bool(true)
	case tokenFalse:
		value = ast.Bool(false)
	case tokenNull:
		value = ast.Null{}
	}
	return p.newExpr(&ast.Literal{Value: value}, span), nil
}

// parseIdent parses an identifier, a global call, or a message literal, any
// of which may be written with a leading dot.
func (p *parser) parseIdent() (*ast.Expr, error) {
	if p.atMessage() {
		return p.parseMessage()
	}

	start := p.peek()
	var dot string
	if _, ok := p.accept("."); ok {
		dot = "."
	}
	name, err := p.expectIdent("identifier")
	if err != nil {
		return nil, err
	}

	if !p.peek().is("(") {
		return p.newExpr(&ast.Ident{Name: dot + name.text},
			source.Join(start.span(p.file), name.span(p.file))), nil
	}

	args, end, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return p.call(nil, dot+name.text, args, source.Join(start.span(p.file), end))
}

// atMessage returns whether the upcoming tokens are a qualified name followed
// by a {, that is, the start of a message literal.
func (p *parser) atMessage() bool {
	i := p.pos
	if p.tokens[i].is(".") {
		i++
	}
	if p.tokens[i].kind != tokenIdent {
		return false
	}
	i++
	for p.tokens[i].is(".") && p.tokens[i+1].kind == tokenIdent {
		i += 2
	}
	return p.tokens[i].is("{")
}

// parseMessage parses a message literal, such as a.B{c: 1}.
func (p *parser) parseMessage() (*ast.Expr, error) {
	start := p.peek()
	var name strings.Builder
	if _, ok := p.accept("."); ok {
		name.WriteByte('.')
	}
	for {
		part, err := p.expectIdent("type name")
		if err != nil {
			return nil, err
		}
		name.WriteString(part.text)
		if _, ok := p.accept("."); !ok {
			break
		}
		name.WriteByte('.')
	}
	if _, err := p.expect("{", "`{`"); err != nil {
		return nil, err
	}

	var entries []*ast.Entry
	for !p.peek().is("}") {
		field, err := p.expectIdent("field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":", "`:`"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, p.newEntry(
			&ast.Entry{Field: field.text, Value: value},
			source.Join(field.span(p.file), p.span(value)),
		))
		if _, ok := p.accept(","); !ok {
			break
		}
	}

	end, err := p.expect("}", "`,` or `}`")
	if err != nil {
		return nil, err
	}
	return p.newExpr(&ast.Struct{TypeName: name.String(), Entries: entries},
		source.Join(start.span(p.file), end.span(p.file))), nil
}

func (p *parser) parseList() (*ast.Expr, error) {
	start := p.advance()

	var elems []*ast.Expr
	for !p.peek().is("]") {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if _, ok := p.accept(","); !ok {
			break
		}
	}

	end, err := p.expect("]", "`,` or `]`")
	if err != nil {
		return nil, err
	}
	return p.newExpr(&ast.List{Elements: elems},
		source.Join(start.span(p.file), end.span(p.file))), nil
}

func (p *parser) parseMap() (*ast.Expr, error) {
	start := p.advance()

	var entries []*ast.Entry
	for !p.peek().is("}") {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":", "`:`"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, p.newEntry(
			&ast.Entry{Key: key, Value: value},
			p.join(key, value),
		))
		if _, ok := p.accept(","); !ok {
			break
		}
	}

	end, err := p.expect("}", "`,` or `}`")
	if err != nil {
		return nil, err
	}
	return p.newExpr(&ast.Struct{Entries: entries},
		source.Join(start.span(p.file), end.span(p.file))), nil
}

// parseArgs parses a parenthesized argument list. Returns the span of the
// closing parenthesis.
func (p *parser) parseArgs() ([]*ast.Expr, source.Span, error) {
	p.advance() // (

	var args []*ast.Expr
	if !p.peek().is(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, source.Span{}, err
			}
			args = append(args, arg)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
	}

	end, err := p.expect(")", "`,` or `)`")
	if err != nil {
		return nil, source.Span{}, err
	}
	return args, end.span(p.file), nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

// atSignedLiteral returns whether the next two tokens are a minus sign and a
// signed numeric literal.
func (p *parser) atSignedLiteral() bool {
	if !p.peek().is("-") {
		return false
	}
	next := p.tokens[min(p.pos+1, len(p.tokens)-1)]
	return next.kind == tokenInt || next.kind == tokenDouble
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(punct string) (token, bool) {
	if tok := p.peek(); tok.is(punct) {
		return p.advance(), true
	}
	return token{}, false
}

func (p *parser) expect(punct, expected string) (token, error) {
	if tok, ok := p.accept(punct); ok {
		return tok, nil
	}
	return token{}, p.unexpected(p.peek(), expected)
}

func (p *parser) expectIdent(expected string) (token, error) {
	tok := p.peek()
	if tok.kind != tokenIdent {
		return token{}, p.unexpected(tok, expected)
	}
	return p.advance(), nil
}

func (p *parser) unexpected(tok token, expected string) error {
	return &ParseError{
		Expected: expected,
		Got:      tok.describe(),
		span:     tok.span(p.file),
	}
}

// newExpr allocates an id for node and records its span.
func (p *parser) newExpr(node ast.Node, span source.Span) *ast.Expr {
	id := p.ids.Next()
	p.setSpan(id, span)
	return &ast.Expr{ID: id, Node: node}
}

func (p *parser) newCall(target *ast.Expr, function string, args []*ast.Expr, span source.Span) *ast.Expr {
	return p.newExpr(&ast.Call{Target: target, Function: function, Args: args}, span)
}

func (p *parser) newEntry(entry *ast.Entry, span source.Span) *ast.Entry {
	entry.ID = p.ids.Next()
	p.setSpan(entry.ID, span)
	return entry
}

func (p *parser) setSpan(id ast.ID, span source.Span) {
	for ast.ID(len(p.spans)) <= id {
		p.spans = append(p.spans, source.Span{})
	}
	p.spans[id] = span
}

func (p *parser) span(e *ast.Expr) source.Span {
	if e == nil || e.ID >= ast.ID(len(p.spans)) {
		return source.Span{}
	}
	return p.spans[e.ID]
}

func (p *parser) join(a, b *ast.Expr) source.Span {
	return source.Join(p.span(a), p.span(b))
}
