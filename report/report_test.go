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

package report_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/celparse/report"
	"github.com/bufbuild/celparse/source"
)

type unexpected struct {
	span source.Span
}

func (e unexpected) Error() string { return "unexpected `)`" }

func (e unexpected) Diagnose(d *report.Diagnostic) {
	d.Apply(
		report.Message("unexpected `)`; expected expression"),
		report.Snippet(e.span, "expected expression"),
	)
}

func TestRenderFull(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.cel", "a + )")
	var r report.Report
	d := r.Error(unexpected{file.Span(4, 5)})
	assert.Equal(t, report.Error, d.Level())
	assert.Equal(t, file.Span(4, 5), d.Primary())

	text, errs, warns := report.Renderer{}.RenderString(&r)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, warns)
	assert.Equal(t, strings.Join([]string{
		"error: unexpected `)`; expected expression",
		"  --> test.cel:1:5",
		"   |",
		" 1 | a + )",
		"   |     ^ expected expression",
		"",
		"encountered 1 error",
		"",
	}, "\n"), text)
}

func TestRenderCompact(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test.cel", "a + )")
	var r report.Report
	r.Error(unexpected{file.Span(4, 5)})
	r.AddError(errors.New("something broke")).Apply(report.InFile("other.cel"))
	r.Errorf("no file")

	text, errs, _ := report.Renderer{Compact: true}.RenderString(&r)
	assert.Equal(t, 3, errs)
	assert.Equal(t, strings.Join([]string{
		"error: test.cel:1:5: unexpected `)`; expected expression",
		"error: other.cel: something broke",
		"error: no file",
		"",
	}, "\n"), text)

	asErr := &report.AsError{Report: r}
	assert.Equal(t, strings.TrimSuffix(text, "\n"), asErr.Error())
}

func TestRenderWidths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text string
		start, end int
		want       []string
	}{
		{
			name:  "tab",
			text:  "\tx + )",
			start: 5, end: 6,
			want: []string{
				"error: oops",
				"  --> w.cel:1:6",
				"   |",
				" 1 |     x + )",
				"   |         ^",
			},
		},
		{
			name:  "wide",
			text:  "日本 + )",
			start: 9, end: 10,
			want: []string{
				"error: oops",
				"  --> w.cel:1:6",
				"   |",
				" 1 | 日本 + )",
				"   |        ^",
			},
		},
		{
			name:  "multiline",
			text:  "foo(\nbar)",
			start: 0, end: 9,
			want: []string{
				"error: oops",
				"  --> w.cel:1:1",
				"   |",
				" 1 | foo(",
				"   | ^^^^",
			},
		},
		{
			name:  "second-line",
			text:  "x\n  yy",
			start: 4, end: 6,
			want: []string{
				"error: oops",
				"  --> w.cel:2:3",
				"   |",
				" 2 |   yy",
				"   |   ^^",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			file := source.NewFile("w.cel", test.text)
			var r report.Report
			d := r.Errorf("oops").Apply(report.Snippet(file.Span(test.start, test.end)))
			assert.Equal(t, strings.Join(test.want, "\n"), report.Renderer{}.Diagnostic(d))
		})
	}
}

func TestFooters(t *testing.T) {
	t.Parallel()

	var r report.Report
	d := r.Errorf("bad macro").Apply(
		report.InFile("m.cel"),
		report.Note("macros are expanded\nbefore checking"),
		report.Help("use `has(a.b)`"),
	)
	assert.Equal(t, strings.Join([]string{
		"error: bad macro",
		"  --> m.cel",
		"   = note: macros are expanded",
		"           before checking",
		"   = help: use `has(a.b)`",
	}, "\n"), report.Renderer{}.Diagnostic(d))
	assert.Equal(t, []string{"macros are expanded\nbefore checking"}, d.Notes())
}

func TestLevels(t *testing.T) {
	t.Parallel()

	file := source.NewFile("", "x")
	var r report.Report
	r.Warn(unexpected{file.Span(0, 1)})
	r.Remarkf("just so you know")
	assert.False(t, r.HasErrors())

	text, errs, warns := report.Renderer{Compact: true}.RenderString(&r)
	assert.Equal(t, 0, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, "warning: <input>:1:1: unexpected `)`; expected expression\n", text)

	text, errs, warns = report.Renderer{Compact: true, WarningsAreErrors: true, ShowRemarks: true}.RenderString(&r)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, warns)
	assert.Equal(t, "error: <input>:1:1: unexpected `)`; expected expression\nremark: just so you know\n", text)

	text, _, _ = report.Renderer{Compact: true, Colorize: true}.RenderString(&r)
	assert.Equal(t, "\033[0;33mwarning: <input>:1:1: unexpected `)`; expected expression\033[0m\n", text)
}

func TestSnippetPanics(t *testing.T) {
	t.Parallel()

	var r report.Report
	file := source.NewFile("p.cel", "x")
	require.Panics(t, func() {
		r.Errorf("x").Apply(report.Snippet(file.Span(0, 1), 42))
	})
	require.Panics(t, func() {
		r.Errorf("x").Apply(report.Message("twice"))
	})
	assert.Nil(t, report.Snippet(source.Span{}))
}
