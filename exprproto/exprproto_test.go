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

package exprproto_test

import (
	"math"
	"testing"
	"time"

	exprpb "cel.dev/expr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/exprproto"
	"github.com/bufbuild/celparse/parser"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"a.b + 1",
		`f() && .g(x, "s", b"\x00\xff", 2u, -2.5, null)`,
		"[1, [2], []].filter(x, x != []) == {}",
		`{"k": {1: true}, 2: pkg.Msg{f: 1, g: .other.Msg{}}}["k"]`,
		"xs.map(x, x > 0, x * 2).exists_one(y, has(y.z)) ? -9223372036854775808 : 0",
		"m.all(k, m[k].exists(v, v in [k]))",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			result, err := parser.Parse(input)
			require.NoError(t, err)

			pb, err := exprproto.ToProto(result.Expr)
			require.NoError(t, err)
			got, err := exprproto.FromProto(pb)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(result.Expr, got))
		})
	}
}

func TestToProto(t *testing.T) {
	t.Parallel()

	result, err := parser.Parse("a.b + 1")
	require.NoError(t, err)
	got, err := exprproto.ToProto(result.Expr)
	require.NoError(t, err)

	want := &exprpb.Expr{Id: 4, ExprKind: &exprpb.Expr_CallExpr{CallExpr: &exprpb.Expr_Call{
		Function: "_+_",
		Args: []*exprpb.Expr{
			{Id: 2, ExprKind: &exprpb.Expr_SelectExpr{SelectExpr: &exprpb.Expr_Select{
				Operand: &exprpb.Expr{Id: 1, ExprKind: &exprpb.Expr_IdentExpr{
					IdentExpr: &exprpb.Expr_Ident{Name: "a"},
				}},
				Field: "b",
			}}},
			{Id: 3, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: &exprpb.Constant{
				ConstantKind: &exprpb.Constant_Int64Value{Int64Value: 1},
			}}},
		},
	}}}
	assert.Empty(t, cmp.Diff(want, got, protocmp.Transform()))

	result, err = parser.Parse(`{"k": 1}`)
	require.NoError(t, err)
	got, err = exprproto.ToProto(result.Expr)
	require.NoError(t, err)
	want = &exprpb.Expr{Id: 4, ExprKind: &exprpb.Expr_StructExpr{StructExpr: &exprpb.Expr_CreateStruct{
		Entries: []*exprpb.Expr_CreateStruct_Entry{{
			Id: 3,
			KeyKind: &exprpb.Expr_CreateStruct_Entry_MapKey{MapKey: &exprpb.Expr{
				Id: 1, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: &exprpb.Constant{
					ConstantKind: &exprpb.Constant_StringValue{StringValue: "k"},
				}},
			}},
			Value: &exprpb.Expr{Id: 2, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: &exprpb.Constant{
				ConstantKind: &exprpb.Constant_Int64Value{Int64Value: 1},
			}}},
		}},
	}}}
	assert.Empty(t, cmp.Diff(want, got, protocmp.Transform()))
}

func TestConstants(t *testing.T) {
	t.Parallel()

	values := []ast.Val{
		ast.Null{},
		ast.Bool(true),
		ast.Bool(false),
		ast.Int(0),
		ast.Int(-1),
		ast.Int(math.MaxInt64),
		ast.Int(math.MinInt64),
		ast.Uint(math.MaxUint64),
		ast.Double(3.14),
		ast.Double(math.NaN()),
		ast.Double(math.Inf(-1)),
		ast.String(""),
		ast.String("hello"),
		ast.Bytes{},
		ast.Bytes{1, 2},
	}
	for _, v := range values {
		pb, err := exprproto.ConstantToProto(v)
		require.NoError(t, err, "%v", v)
		got, err := exprproto.ConstantFromProto(pb)
		require.NoError(t, err, "%v", v)
		assert.True(t, ast.EqualVals(v, got), "%v != %v", v, got)
	}

	pb, err := exprproto.ConstantToProto(ast.Null{})
	require.NoError(t, err)
	assert.Equal(t, structpb.NullValue_NULL_VALUE, pb.GetNullValue())

	_, err = exprproto.ConstantToProto(nil)
	assert.ErrorIs(t, err, exprproto.ErrInvalidConstantKind)
}

func TestLegacyConstants(t *testing.T) {
	t.Parallel()

	legacy := map[string]*exprpb.Constant{
		"duration_value": {ConstantKind: &exprpb.Constant_DurationValue{
			DurationValue: durationpb.New(time.Second),
		}},
		"timestamp_value": {ConstantKind: &exprpb.Constant_TimestampValue{
			TimestampValue: timestamppb.New(time.Unix(0, 0)),
		}},
	}
	for field, c := range legacy {
		_, err := exprproto.ConstantFromProto(c)
		var cerr *exprproto.ConversionError
		require.ErrorAs(t, err, &cerr)
		assert.ErrorIs(t, err, exprproto.ErrInvalidConstantKind)
		assert.Equal(t, field, cerr.Field)

		// Inside an expression, the error names the expression.
		_, err = exprproto.FromProto(&exprpb.Expr{Id: 7, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: c}})
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, int64(7), cerr.ID)
		assert.Equal(t, "expr 7: "+field+": invalid constant kind", err.Error())
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	ident := func(id int64) *exprpb.Expr {
		return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_IdentExpr{IdentExpr: &exprpb.Expr_Ident{Name: "x"}}}
	}
	call := func(id int64, args ...*exprpb.Expr) *exprpb.Expr {
		return &exprpb.Expr{Id: id, ExprKind: &exprpb.Expr_CallExpr{CallExpr: &exprpb.Expr_Call{
			Function: "f",
			Args:     args,
		}}}
	}

	tests := []struct {
		name  string
		expr  *exprpb.Expr
		kind  error
		field string
		id    int64
	}{
		{
			name:  "nil",
			kind:  exprproto.ErrMissingField,
			field: "expr",
		},
		{
			name:  "no_expr_kind",
			expr:  &exprpb.Expr{Id: 1},
			kind:  exprproto.ErrMissingField,
			field: "expr_kind",
			id:    1,
		},
		{
			name:  "no_constant_kind",
			expr:  &exprpb.Expr{Id: 3, ExprKind: &exprpb.Expr_ConstExpr{ConstExpr: &exprpb.Constant{}}},
			kind:  exprproto.ErrMissingField,
			field: "constant_kind",
			id:    3,
		},
		{
			name:  "zero_id",
			expr:  ident(0),
			kind:  exprproto.ErrInvalidID,
			field: "id",
		},
		{
			name:  "negative_id",
			expr:  call(2, ident(-5)),
			kind:  exprproto.ErrInvalidID,
			field: "id",
			id:    -5,
		},
		{
			name:  "duplicate_id",
			expr:  call(3, ident(1), ident(1)),
			kind:  exprproto.ErrInvalidID,
			field: "id",
			id:    1,
		},
		{
			name: "no_operand",
			expr: &exprpb.Expr{Id: 2, ExprKind: &exprpb.Expr_SelectExpr{SelectExpr: &exprpb.Expr_Select{
				Field: "f",
			}}},
			kind:  exprproto.ErrMissingField,
			field: "select_expr.operand",
			id:    2,
		},
		{
			name: "optional_indices",
			expr: &exprpb.Expr{Id: 2, ExprKind: &exprpb.Expr_ListExpr{ListExpr: &exprpb.Expr_CreateList{
				Elements:        []*exprpb.Expr{ident(1)},
				OptionalIndices: []int32{0},
			}}},
			kind:  exprproto.ErrInvalidExpressionKind,
			field: "list_expr.optional_indices",
			id:    2,
		},
		{
			name: "optional_entry",
			expr: &exprpb.Expr{Id: 3, ExprKind: &exprpb.Expr_StructExpr{StructExpr: &exprpb.Expr_CreateStruct{
				MessageName: "Msg",
				Entries: []*exprpb.Expr_CreateStruct_Entry{{
					Id:            2,
					KeyKind:       &exprpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: "f"},
					Value:         ident(1),
					OptionalEntry: true,
				}},
			}}},
			kind:  exprproto.ErrInvalidExpressionKind,
			field: "struct_expr.entries.optional_entry",
			id:    2,
		},
		{
			name: "field_key_in_map",
			expr: &exprpb.Expr{Id: 3, ExprKind: &exprpb.Expr_StructExpr{StructExpr: &exprpb.Expr_CreateStruct{
				Entries: []*exprpb.Expr_CreateStruct_Entry{{
					Id:      2,
					KeyKind: &exprpb.Expr_CreateStruct_Entry_FieldKey{FieldKey: "f"},
					Value:   ident(1),
				}},
			}}},
			kind:  exprproto.ErrInvalidExpressionKind,
			field: "struct_expr.entries.field_key",
			id:    2,
		},
		{
			name: "iter_var2",
			expr: &exprpb.Expr{Id: 6, ExprKind: &exprpb.Expr_ComprehensionExpr{ComprehensionExpr: &exprpb.Expr_Comprehension{
				IterVar:       "k",
				IterVar2:      "v",
				IterRange:     ident(1),
				AccuVar:       "@result",
				AccuInit:      ident(2),
				LoopCondition: ident(3),
				LoopStep:      ident(4),
				Result:        ident(5),
			}}},
			kind:  exprproto.ErrInvalidExpressionKind,
			field: "comprehension_expr.iter_var2",
			id:    6,
		},
		{
			name: "no_result",
			expr: &exprpb.Expr{Id: 6, ExprKind: &exprpb.Expr_ComprehensionExpr{ComprehensionExpr: &exprpb.Expr_Comprehension{
				IterVar:       "k",
				IterRange:     ident(1),
				AccuVar:       "@result",
				AccuInit:      ident(2),
				LoopCondition: ident(3),
				LoopStep:      ident(4),
			}}},
			kind:  exprproto.ErrMissingField,
			field: "comprehension_expr.result",
			id:    6,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := exprproto.FromProto(test.expr)
			assert.Nil(t, got)
			var cerr *exprproto.ConversionError
			require.ErrorAs(t, err, &cerr)
			assert.ErrorIs(t, err, test.kind)
			assert.Equal(t, test.field, cerr.Field)
			assert.Equal(t, test.id, cerr.ID)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	_, err := exprproto.ToProto(nil)
	assert.ErrorIs(t, err, exprproto.ErrMissingField)

	_, err = exprproto.ToProto(&ast.Expr{Node: &ast.Ident{Name: "x"}})
	assert.ErrorIs(t, err, exprproto.ErrInvalidID)

	_, err = exprproto.ToProto(&ast.Expr{ID: 1})
	assert.ErrorIs(t, err, exprproto.ErrInvalidExpressionKind)

	_, err = exprproto.ToProto(&ast.Expr{ID: 2, Node: &ast.Call{
		Function: "f",
		Args:     []*ast.Expr{{ID: 1, Node: &ast.Literal{}}},
	}})
	var cerr *exprproto.ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, exprproto.ErrInvalidConstantKind)
	assert.Equal(t, int64(1), cerr.ID)

	_, err = exprproto.ToProto(&ast.Expr{ID: 2, Node: &ast.Select{Field: "f"}})
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, exprproto.ErrMissingField)
	assert.Equal(t, "expr 2: select_expr.operand: missing required field", err.Error())
}
