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

package exprproto

import (
	"maps"
	"slices"

	exprpb "cel.dev/expr"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/parser"
	"github.com/bufbuild/celparse/reference"
	"github.com/bufbuild/celparse/source"
)

// Parsed is a decoded cel.expr.ParsedExpr.
type Parsed struct {
	Expr *ast.Expr
	// Macro records decoded from source_info.macro_calls, plus a reserved
	// resolution slot for every identifier and call in Expr.
	References *reference.Table

	// The path of the source text.
	Location string
	// The offset, in runes, of the start of every line after the first.
	LineOffsets []int
	// The offset, in runes, of the start of each node.
	Positions map[ast.ID]int
}

// ParsedToProto converts the result of a parse to a ParsedExpr, including
// its source info.
//
// Positions and line offsets are measured in runes. Each macro call is
// recorded as the call expression the macro was expanded from, with the id of
// the expansion.
func ParsedToProto(r *parser.Result) (*exprpb.ParsedExpr, error) {
	e, err := ToProto(r.Expr)
	if err != nil {
		return nil, err
	}

	info := &exprpb.SourceInfo{
		Location:  r.File.Path(),
		Positions: make(map[int64]int32),
	}
	for _, offset := range r.File.LineStarts(source.Runes) {
		info.LineOffsets = append(info.LineOffsets, int32(offset))
	}
	for id, offset := range r.Positions() {
		info.Positions[int64(id)] = int32(r.File.Convert(offset, source.Runes))
	}
	for id, call := range r.References.Macros() {
		pb, err := ToProto(call.Expr(id))
		if err != nil {
			return nil, err
		}
		if info.MacroCalls == nil {
			info.MacroCalls = make(map[int64]*exprpb.Expr)
		}
		info.MacroCalls[int64(id)] = pb
	}

	return &exprpb.ParsedExpr{Expr: e, SourceInfo: info}, nil
}

// ParsedFromProto converts a ParsedExpr back into an expression tree and its
// source info.
//
// The root of each entry in source_info.macro_calls must be a call, and may
// either have no id or the id of its map key.
func ParsedFromProto(p *exprpb.ParsedExpr) (*Parsed, error) {
	e, err := FromProto(p.GetExpr())
	if err != nil {
		return nil, err
	}
	out := &Parsed{
		Expr:       e,
		References: new(reference.Table),
	}

	info := p.GetSourceInfo()
	out.Location = info.GetLocation()
	for _, offset := range info.GetLineOffsets() {
		out.LineOffsets = append(out.LineOffsets, int(offset))
	}
	if len(info.GetPositions()) > 0 {
		out.Positions = make(map[ast.ID]int, len(info.GetPositions()))
	}
	for id, offset := range info.GetPositions() {
		if id <= 0 {
			return nil, &ConversionError{Kind: ErrInvalidID, Field: "source_info.positions", ID: id}
		}
		out.Positions[ast.ID(id)] = int(offset)
	}

	calls := info.GetMacroCalls()
	for _, id := range slices.Sorted(maps.Keys(calls)) {
		call, err := macroCall(id, calls[id])
		if err != nil {
			return nil, err
		}
		out.References.AddMacro(ast.ID(id), call)
	}

	for e := range ast.Walk(out.Expr) {
		if k := e.Kind(); k == ast.KindIdent || k == ast.KindCall {
			out.References.Reserve(e.ID)
		}
	}
	return out, nil
}

func macroCall(id int64, e *exprpb.Expr) (*reference.MacroCall, error) {
	const field = "source_info.macro_calls"
	if id <= 0 || (e.GetId() != 0 && e.GetId() != id) {
		return nil, &ConversionError{Kind: ErrInvalidID, Field: field, ID: id}
	}
	c := e.GetCallExpr()
	if c == nil {
		return nil, invalidKind(id, field)
	}

	// The arguments of a macro call are sub-trees of the expansion, so they
	// are checked for duplicates separately from the main tree.
	var d decoder
	out := &reference.MacroCall{Name: c.GetFunction()}
	var err error
	if c.GetTarget() != nil {
		if out.Target, err = d.expr(c.GetTarget(), id, field+".target"); err != nil {
			return nil, err
		}
	}
	if out.Args, err = d.all(c.GetArgs(), id, field+".args"); err != nil {
		return nil, err
	}
	return out, nil
}
