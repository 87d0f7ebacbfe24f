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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/celparse/parser"
	"github.com/bufbuild/celparse/report"
)

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src           string
		expected, got string
		start, end    int
	}{
		{src: "a +", expected: "expression", got: "end of input", start: 3, end: 3},
		{src: "(a", expected: "`)`", got: "end of input", start: 2, end: 2},
		{src: "a b", expected: "end of input", got: "identifier `b`", start: 2, end: 3},
		{src: "[1 2]", expected: "`,` or `]`", got: "int literal `2`", start: 3, end: 4},
		{src: "a ? b", expected: "`:`", got: "end of input", start: 5, end: 5},
		{src: "a.", expected: "field name", got: "end of input", start: 2, end: 2},
		{src: "Msg{1: 2}", expected: "field name", got: "int literal `1`", start: 4, end: 5},
		{src: "a.f(b)(c)", expected: "end of input", got: "`(`", start: 6, end: 7},
		{src: "f(a,)", expected: "expression", got: "`)`", start: 4, end: 5},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			t.Parallel()

			_, err := parser.Parse(test.src)
			var perr *parser.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, test.expected, perr.Expected)
			assert.Equal(t, test.got, perr.Got)
			assert.Equal(t, test.start, perr.Span().Start)
			assert.Equal(t, test.end, perr.Span().End)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("a +")
	require.Error(t, err)
	assert.Equal(t, "<input>:1:4: unexpected end of input; expected expression", err.Error())

	_, err = parser.Parse("x &&\n  r.all(y)", parser.WithPath("check.cel"))
	require.Error(t, err)
	assert.Equal(t, "check.cel:2:3: macro `all` expects 2 arguments, got 1", err.Error())

	_, err = parser.Parse("r.map(x)")
	require.Error(t, err)
	assert.Equal(t, "<input>:1:1: macro `map` expects 2 or 3 arguments, got 1", err.Error())

	var ewp parser.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, "r.map(x)", ewp.Span().Text())

	var r report.Report
	r.AddError(err)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "macro `map` expects 2 or 3 arguments, got 1", r.Diagnostics[0].Message())
	assert.Equal(t, ewp.Span(), r.Diagnostics[0].Primary())
}

func TestMacroErrors(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("r.all(x)")
	var arity *parser.MacroArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, "all", arity.Macro)
	assert.Equal(t, []int{2}, arity.Expected)
	assert.Equal(t, 1, arity.Actual)

	// Arity is only checked when expanding.
	_, err = parser.Parse("r.all(x)", parser.WithoutMacros())
	require.NoError(t, err)
	_, err = parser.Parse("all(x)")
	require.NoError(t, err)

	bindings := map[string]string{
		"r.exists(.x, p)":      ".x",
		"r.filter(x.y, p)":     "x.y",
		"r.map(1, 2)":          "1",
		"has(a)":               "a",
		"has(has(a.b))":        "has(a.b)",
		"has(a.b) && has(f())": "f()",
	}
	for src, arg := range bindings {
		_, err := parser.Parse(src)
		var binding *parser.MacroBindingError
		if assert.ErrorAs(t, err, &binding, "%s", src) {
			assert.Equal(t, arg, binding.Span().Text(), "%s", src)
		}
	}

	_, err = parser.Parse("r.exists(x p)")
	assert.False(t, errors.As(err, new(*parser.MacroBindingError)))
}
