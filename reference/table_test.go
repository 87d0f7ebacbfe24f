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

package reference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/reference"
)

func TestTable(t *testing.T) {
	t.Parallel()

	call := &reference.MacroCall{
		Name:   "exists",
		Target: &ast.Expr{ID: 1, Node: &ast.Ident{Name: "r"}},
		Args: []*ast.Expr{
			{ID: 2, Node: &ast.Ident{Name: "x"}},
			{ID: 3, Node: &ast.Ident{Name: "p"}},
		},
	}

	var table reference.Table
	table.Reserve(3)
	table.AddMacro(4, call)
	table.Reserve(1)
	table.Reserve(4) // Already a macro; ignored.
	assert.Equal(t, 3, table.Len())

	ref, ok := table.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, reference.KindMacro, ref.Kind())
	assert.Same(t, call, ref.Macro())
	assert.Same(t, call, table.Macro(4))
	assert.Nil(t, table.Macro(3))

	ref, ok = table.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, reference.KindResolution, ref.Kind())
	assert.Nil(t, ref.Resolution())

	require.NoError(t, table.Resolve(3, reference.Resolution{Name: "p"}))
	ref, _ = table.Lookup(3)
	assert.Equal(t, &reference.Resolution{Name: "p"}, ref.Resolution())

	assert.ErrorIs(t, table.Resolve(2, reference.Resolution{Name: "x"}), reference.ErrNoSlot)
	assert.ErrorIs(t, table.Resolve(4, reference.Resolution{Name: "exists"}), reference.ErrNoSlot)

	var ids []ast.ID
	for id := range table.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []ast.ID{1, 3, 4}, ids)

	ids = nil
	for id, macro := range table.Macros() {
		ids = append(ids, id)
		assert.Equal(t, "exists", macro.Name)
	}
	assert.Equal(t, []ast.ID{4}, ids)
}

func TestMacroCallExpr(t *testing.T) {
	t.Parallel()

	call := &reference.MacroCall{
		Name:   "all",
		Target: &ast.Expr{ID: 1, Node: &ast.Ident{Name: "r"}},
		Args: []*ast.Expr{
			{ID: 2, Node: &ast.Ident{Name: "x"}},
			{ID: 3, Node: &ast.Literal{Value: ast.Bool(true)}},
		},
	}

	expr := call.Expr(4)
	assert.Equal(t, "r#1.all(x#2, true#3)#4", ast.Debug(expr))
	assert.NotSame(t, call.Target, expr.AsCall().Target)

	has := &reference.MacroCall{Name: "f"}
	assert.Equal(t, "f()#9", ast.Debug(has.Expr(9)))
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "macro", reference.KindMacro.String())
	assert.Equal(t, "resolution", reference.KindResolution.String())
	assert.Equal(t, "reference.Kind(0)", reference.KindInvalid.String())
}
