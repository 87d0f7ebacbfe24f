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
	"math"

	exprpb "cel.dev/expr"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bufbuild/celparse/ast"
)

// ToProto converts an expression tree to its protobuf form.
func ToProto(e *ast.Expr) (*exprpb.Expr, error) {
	if e == nil {
		return nil, missing(0, "expr")
	}
	return encode(e)
}

func encode(e *ast.Expr) (*exprpb.Expr, error) {
	id, err := encodeID(e.ID)
	if err != nil {
		return nil, err
	}
	out := &exprpb.Expr{Id: id}

	switch n := e.Node.(type) {
	case *ast.Literal:
		c, err := ConstantToProto(n.Value)
		if err != nil {
			return nil, at(err, id)
		}
		out.ExprKind = &exprpb.Expr_ConstExpr{ConstExpr: c}

	case *ast.Ident:
		out.ExprKind = &exprpb.Expr_IdentExpr{IdentExpr: &exprpb.Expr_Ident{Name: n.Name}}

	case *ast.Select:
		operand, err := encodeChild(n.Operand, id, "select_expr.operand")
		if err != nil {
			return nil, err
		}
		out.ExprKind = &exprpb.Expr_SelectExpr{SelectExpr: &exprpb.Expr_Select{
			Operand:  operand,
			Field:    n.Field,
			TestOnly: n.TestOnly,
		}}

	case *ast.Call:
		call := &exprpb.Expr_Call{Function: n.Function}
		if n.Target != nil {
			if call.Target, err = encode(n.Target); err != nil {
				return nil, err
			}
		}
		if call.Args, err = encodeAll(n.Args, id, "call_expr.args"); err != nil {
			return nil, err
		}
		out.ExprKind = &exprpb.Expr_CallExpr{CallExpr: call}

	case *ast.List:
		elems, err := encodeAll(n.Elements, id, "list_expr.elements")
		if err != nil {
			return nil, err
		}
		out.ExprKind = &exprpb.Expr_ListExpr{ListExpr: &exprpb.Expr_CreateList{Elements: elems}}

	case *ast.Struct:
		s := &exprpb.Expr_CreateStruct{MessageName: n.TypeName}
		for _, entry := range n.Entries {
			pb, err := encodeEntry(entry, n.IsMap(), id)
			if err != nil {
				return nil, err
			}
			s.Entries = append(s.Entries, pb)
		}
		out.ExprKind = &exprpb.Expr_StructExpr{StructExpr: s}

	case *ast.Comprehension:
		c := &exprpb.Expr_Comprehension{IterVar: n.IterVar, AccuVar: n.AccuVar}
		parts := []struct {
			field string
			from  *ast.Expr
			to    **exprpb.Expr
		}{
			{"comprehension_expr.iter_range", n.IterRange, &c.IterRange},
			{"comprehension_expr.accu_init", n.AccuInit, &c.AccuInit},
			{"comprehension_expr.loop_condition", n.LoopCondition, &c.LoopCondition},
			{"comprehension_expr.loop_step", n.LoopStep, &c.LoopStep},
			{"comprehension_expr.result", n.Result, &c.Result},
		}
		for _, part := range parts {
			if *part.to, err = encodeChild(part.from, id, part.field); err != nil {
				return nil, err
			}
		}
		out.ExprKind = &exprpb.Expr_ComprehensionExpr{ComprehensionExpr: c}

	default:
		return nil, invalidKind(id, "expr_kind")
	}

	return out, nil
}

func encodeChild(e *ast.Expr, parent int64, field string) (*exprpb.Expr, error) {
	if e == nil {
		return nil, missing(parent, field)
	}
	return encode(e)
}

func encodeAll(exprs []*ast.Expr, parent int64, field string) ([]*exprpb.Expr, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]*exprpb.Expr, len(exprs))
	for i, e := range exprs {
		var err error
		if out[i], err = encodeChild(e, parent, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeEntry(entry *ast.Entry, isMap bool, parent int64) (*exprpb.Expr_CreateStruct_Entry, error) {
	id, err := encodeID(entry.ID)
	if err != nil {
		return nil, at(err, parent)
	}
	out := &exprpb.Expr_CreateStruct_Entry{Id: id}

	switch {
	case !isMap && entry.Key == nil:
		out.KeyKind = &exprpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: entry.Field}
	case isMap && entry.Key != nil:
		key, err := encode(entry.Key)
		if err != nil {
			return nil, err
		}
		out.KeyKind = &exprpb.Expr_CreateStruct_Entry_MapKey{MapKey: key}
	case isMap:
		return nil, missing(id, "struct_expr.entries.map_key")
	default:
		return nil, invalidKind(id, "struct_expr.entries.map_key")
	}

	if out.Value, err = encodeChild(entry.Value, id, "struct_expr.entries.value"); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeID(id ast.ID) (int64, error) {
	if id.IsZero() || id > math.MaxInt64 {
		return 0, &ConversionError{Kind: ErrInvalidID, Field: "id"}
	}
	return int64(id), nil
}

// ConstantToProto converts a literal value to its protobuf form.
func ConstantToProto(v ast.Val) (*exprpb.Constant, error) {
	out := new(exprpb.Constant)
	switch v := v.(type) {
	case ast.Null:
		out.ConstantKind = &exprpb.Constant_NullValue{NullValue: structpb.NullValue_NULL_VALUE}
	case ast.Bool:
		out.ConstantKind = &exprpb.Constant_BoolValue{BoolValue: bool(v)}
	case ast.Int:
		out.ConstantKind = &exprpb.Constant_Int64Value{Int64Value: int64(v)}
	case ast.Uint:
		out.ConstantKind = &exprpb.Constant_Uint64Value{Uint64Value: uint64(v)}
	case ast.Double:
		out.ConstantKind = &exprpb.Constant_DoubleValue{DoubleValue: float64(v)}
	case ast.String:
		out.ConstantKind = &exprpb.Constant_StringValue{StringValue: string(v)}
	case ast.Bytes:
		out.ConstantKind = &exprpb.Constant_BytesValue{BytesValue: bytes.Clone(v)}
	default:
		return nil, &ConversionError{Kind: ErrInvalidConstantKind, Field: "constant_kind"}
	}
	return out, nil
}
