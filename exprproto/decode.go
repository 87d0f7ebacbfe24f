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
	"bytes"

	exprpb "cel.dev/expr"

	"github.com/bufbuild/celparse/ast"
)

// FromProto converts a protobuf expression to an expression tree.
//
// Repeated fields that are empty decode to nil slices, matching what the
// parser produces.
func FromProto(e *exprpb.Expr) (*ast.Expr, error) {
	var d decoder
	return d.expr(e, 0, "expr")
}

// decoder tracks the ids seen so far in the tree being decoded.
type decoder struct {
	seen map[int64]struct{}
}

func (d *decoder) id(id int64) (ast.ID, error) {
	if _, dup := d.seen[id]; id <= 0 || dup {
		return 0, &ConversionError{Kind: ErrInvalidID, Field: "id", ID: id}
	}
	if d.seen == nil {
		d.seen = make(map[int64]struct{})
	}
	d.seen[id] = struct{}{}
	return ast.ID(id), nil
}

// expr decodes e, which is the value of field in the expression with id
// parent.
func (d *decoder) expr(e *exprpb.Expr, parent int64, field string) (*ast.Expr, error) {
	if e == nil {
		return nil, missing(parent, field)
	}
	id, err := d.id(e.GetId())
	if err != nil {
		return nil, err
	}
	out := &ast.Expr{ID: id}
	pid := e.GetId()

	switch k := e.GetExprKind().(type) {
	case nil:
		return nil, missing(pid, "expr_kind")

	case *exprpb.Expr_ConstExpr:
		v, err := ConstantFromProto(k.ConstExpr)
		if err != nil {
			return nil, at(err, pid)
		}
		out.Node = &ast.Literal{Value: v}

	case *exprpb.Expr_IdentExpr:
		out.Node = &ast.Ident{Name: k.IdentExpr.GetName()}

	case *exprpb.Expr_SelectExpr:
		s := k.SelectExpr
		operand, err := d.expr(s.GetOperand(), pid, "select_expr.operand")
		if err != nil {
			return nil, err
		}
		out.Node = &ast.Select{Operand: operand, Field: s.GetField(), TestOnly: s.GetTestOnly()}

	case *exprpb.Expr_CallExpr:
		c := k.CallExpr
		call := &ast.Call{Function: c.GetFunction()}
		if c.GetTarget() != nil {
			if call.Target, err = d.expr(c.GetTarget(), pid, "call_expr.target"); err != nil {
				return nil, err
			}
		}
		if call.Args, err = d.all(c.GetArgs(), pid, "call_expr.args"); err != nil {
			return nil, err
		}
		out.Node = call

	case *exprpb.Expr_ListExpr:
		l := k.ListExpr
		if len(l.GetOptionalIndices()) > 0 {
			return nil, invalidKind(pid, "list_expr.optional_indices")
		}
		elems, err := d.all(l.GetElements(), pid, "list_expr.elements")
		if err != nil {
			return nil, err
		}
		out.Node = &ast.List{Elements: elems}

	case *exprpb.Expr_StructExpr:
		s := k.StructExpr
		node := &ast.Struct{TypeName: s.GetMessageName()}
		for _, entry := range s.GetEntries() {
			decoded, err := d.entry(entry, node.IsMap(), pid)
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, decoded)
		}
		out.Node = node

	case *exprpb.Expr_ComprehensionExpr:
		c := k.ComprehensionExpr
		if c.GetIterVar2() != "" {
			return nil, invalidKind(pid, "comprehension_expr.iter_var2")
		}
		node := &ast.Comprehension{IterVar: c.GetIterVar(), AccuVar: c.GetAccuVar()}
		parts := []struct {
			field string
			from  *exprpb.Expr
			to    **ast.Expr
		}{
			{"comprehension_expr.iter_range", c.GetIterRange(), &node.IterRange},
			{"comprehension_expr.accu_init", c.GetAccuInit(), &node.AccuInit},
			{"comprehension_expr.loop_condition", c.GetLoopCondition(), &node.LoopCondition},
			{"comprehension_expr.loop_step", c.GetLoopStep(), &node.LoopStep},
			{"comprehension_expr.result", c.GetResult(), &node.Result},
		}
		for _, part := range parts {
			if *part.to, err = d.expr(part.from, pid, part.field); err != nil {
				return nil, err
			}
		}
		out.Node = node

	default:
		return nil, invalidKind(pid, "expr_kind")
	}

	return out, nil
}

func (d *decoder) all(exprs []*exprpb.Expr, parent int64, field string) ([]*ast.Expr, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]*ast.Expr, len(exprs))
	for i, e := range exprs {
		var err error
		if out[i], err = d.expr(e, parent, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) entry(entry *exprpb.Expr_CreateStruct_Entry, isMap bool, parent int64) (*ast.Entry, error) {
	if entry == nil {
		return nil, missing(parent, "struct_expr.entries")
	}
	id, err := d.id(entry.GetId())
	if err != nil {
		return nil, err
	}
	eid := entry.GetId()
	if entry.GetOptionalEntry() {
		return nil, invalidKind(eid, "struct_expr.entries.optional_entry")
	}

	out := &ast.Entry{ID: id}
	switch k := entry.GetKeyKind().(type) {
	case nil:
		return nil, missing(eid, "struct_expr.entries.key_kind")
	case *exprpb.Expr_CreateStruct_Entry_FieldKey:
		if isMap {
			return nil, invalidKind(eid, "struct_expr.entries.field_key")
		}
		out.Field = k.FieldKey
	case *exprpb.Expr_CreateStruct_Entry_MapKey:
		if !isMap {
			return nil, invalidKind(eid, "struct_expr.entries.map_key")
		}
		if out.Key, err = d.expr(k.MapKey, eid, "struct_expr.entries.map_key"); err != nil {
			return nil, err
		}
	default:
		return nil, invalidKind(eid, "struct_expr.entries.key_kind")
	}

	if out.Value, err = d.expr(entry.GetValue(), eid, "struct_expr.entries.value"); err != nil {
		return nil, err
	}
	return out, nil
}

// ConstantFromProto converts a protobuf constant to a literal value.
//
// The deprecated duration_value and timestamp_value kinds are rejected.
func ConstantFromProto(c *exprpb.Constant) (ast.Val, error) {
	switch k := c.GetConstantKind().(type) {
	case nil:
		return nil, missing(0, "constant_kind")
	case *exprpb.Constant_NullValue:
		return ast.Null{}, nil
	case *exprpb.Constant_BoolValue:
		return ast.Bool(k.BoolValue), nil
	case *exprpb.Constant_Int64Value:
		return ast.Int(k.Int64Value), nil
	case *exprpb.Constant_Uint64Value:
		return ast.Uint(k.Uint64Value), nil
	case *exprpb.Constant_DoubleValue:
		return ast.Double(k.DoubleValue), nil
	case *exprpb.Constant_StringValue:
		return ast.String(k.StringValue), nil
	case *exprpb.Constant_BytesValue:
		return ast.Bytes(bytes.Clone(k.BytesValue)), nil
	case *exprpb.Constant_DurationValue:
		return nil, &ConversionError{Kind: ErrInvalidConstantKind, Field: "duration_value"}
	case *exprpb.Constant_TimestampValue:
		return nil, &ConversionError{Kind: ErrInvalidConstantKind, Field: "timestamp_value"}
	default:
		return nil, &ConversionError{Kind: ErrInvalidConstantKind, Field: "constant_kind"}
	}
}
