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

package parser_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/parser"
	"github.com/bufbuild/celparse/source"
)

func TestBatch(t *testing.T) {
	t.Parallel()

	var files []*source.File
	for i := range 50 {
		files = append(files, source.NewFile(
			fmt.Sprintf("expr%d.cel", i),
			fmt.Sprintf("xs.all(x, x > %d)", i),
		))
	}

	for _, par := range []int{0, 1, 4} {
		t.Run(fmt.Sprint(par), func(t *testing.T) {
			t.Parallel()

			batch := parser.Batch{MaxParallelism: par}
			results, err := batch.Parse(context.Background(), files...)
			require.NoError(t, err)
			require.Len(t, results, len(files))
			for i, result := range results {
				assert.Same(t, files[i], result.File)
				// Every parse numbers its nodes from one.
				want := fmt.Sprintf("__comprehension__(x, xs#1, @result, true#7, @result#8, "+
					"_&&_(@result#9, _>_(x#3, %d#4)#5)#10, @result#11)#6", i)
				assert.Equal(t, want, ast.Debug(result.Expr))
				assert.Equal(t, 1, countMacros(result.References))
			}
		})
	}
}

func TestBatchOptions(t *testing.T) {
	t.Parallel()

	batch := parser.Batch{Options: []parser.Option{parser.WithoutMacros()}}
	results, err := batch.Parse(context.Background(),
		source.NewFile("a.cel", "r.all(x)"),
		source.NewFile("b.cel", "has(a.b)"),
	)
	require.NoError(t, err)
	assert.Equal(t, "r#1.all(x#2)#3", ast.Debug(results[0].Expr))
	assert.Equal(t, "has(a#1.b#2)#3", ast.Debug(results[1].Expr))
}

func TestBatchErrors(t *testing.T) {
	t.Parallel()

	files := []*source.File{
		source.NewFile("one.cel", "1 + 2"),
		source.NewFile("two.cel", "a +"),
		source.NewFile("three.cel", ")"),
	}
	for _, par := range []int{1, 3} {
		batch := parser.Batch{MaxParallelism: par}
		results, err := batch.Parse(context.Background(), files...)
		assert.Nil(t, results)
		var ewp parser.ErrorWithPos
		require.ErrorAs(t, err, &ewp)
		assert.Equal(t, "two.cel", ewp.Span().Path())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := (&parser.Batch{}).Parse(ctx, files[0])
	assert.Nil(t, results)
	assert.ErrorIs(t, err, context.Canceled)

	results, err = (&parser.Batch{}).Parse(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchEarliestError(t *testing.T) {
	t.Parallel()

	// Every file from the tenth on fails; whichever finishes first, the
	// tenth is the one reported.
	var files []*source.File
	for i := range 40 {
		text := "a && b"
		if i >= 10 {
			text = ")"
		}
		files = append(files, source.NewFile(fmt.Sprintf("f%d.cel", i), text))
	}

	for _, par := range []int{2, 3, 8, 40} {
		for range 20 {
			_, err := (&parser.Batch{MaxParallelism: par}).Parse(context.Background(), files...)
			var ewp parser.ErrorWithPos
			require.ErrorAs(t, err, &ewp)
			assert.Equal(t, "f10.cel", ewp.Span().Path(), "parallelism %d", par)
		}
	}
}
