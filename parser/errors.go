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
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/celparse/report"
	"github.com/bufbuild/celparse/source"
)

// ErrorWithPos is an error about an expression that also includes the
// source span where the error was found.
type ErrorWithPos interface {
	error
	// Span returns the span of source text the error refers to.
	Span() source.Span
}

var (
	_ ErrorWithPos    = (*ParseError)(nil)
	_ ErrorWithPos    = (*MacroArityError)(nil)
	_ ErrorWithPos    = (*MacroBindingError)(nil)
	_ report.Diagnose = (*ParseError)(nil)
	_ report.Diagnose = (*MacroArityError)(nil)
	_ report.Diagnose = (*MacroBindingError)(nil)
)

// ParseError is a lexical or syntactic error.
type ParseError struct {
	// A description of the construct the parser was looking for, like
	// "expression" or "`)`". May be empty.
	Expected string
	// A description of the token that was found instead.
	Got string
	// If set, describes the error instead of Expected and Got. Lexical errors
	// set this.
	Reason string

	span source.Span
	help string
}

// Span implements [ErrorWithPos].
func (e *ParseError) Span() source.Span {
	return e.span
}

// Error implements [error].
func (e *ParseError) Error() string {
	return position(e.span) + ": " + e.message()
}

// Diagnose implements [report.Diagnose].
func (e *ParseError) Diagnose(d *report.Diagnostic) {
	d.Apply(report.Message("%s", e.message()))
	if e.Expected != "" {
		d.Apply(report.Snippet(e.span, "expected %s", e.Expected))
	} else {
		d.Apply(report.Snippet(e.span))
	}
	if e.help != "" {
		d.Apply(report.Help("%s", e.help))
	}
}

func (e *ParseError) message() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Expected != "":
		return fmt.Sprintf("unexpected %s; expected %s", e.Got, e.Expected)
	default:
		return "unexpected " + e.Got
	}
}

// MacroArityError is returned when a macro is called with the wrong number of
// arguments.
type MacroArityError struct {
	Macro    string
	Expected []int // The numbers of arguments the macro accepts.
	Actual   int

	span source.Span
}

// Span implements [ErrorWithPos].
func (e *MacroArityError) Span() source.Span {
	return e.span
}

// Error implements [error].
func (e *MacroArityError) Error() string {
	return position(e.span) + ": " + e.message()
}

// Diagnose implements [report.Diagnose].
func (e *MacroArityError) Diagnose(d *report.Diagnostic) {
	d.Apply(
		report.Message("%s", e.message()),
		report.Snippet(e.span, "called with %d %s", e.Actual, plural(e.Actual, "argument")),
	)
}

func (e *MacroArityError) message() string {
	counts := make([]string, len(e.Expected))
	for i, n := range e.Expected {
		counts[i] = strconv.Itoa(n)
	}
	last := 0
	if len(e.Expected) > 0 {
		last = e.Expected[len(e.Expected)-1]
	}
	return fmt.Sprintf("macro `%s` expects %s %s, got %d",
		e.Macro, strings.Join(counts, " or "), plural(last, "argument"), e.Actual)
}

// MacroBindingError is returned when a macro's binding argument, or the
// argument to has(), has the wrong shape.
type MacroBindingError struct {
	Macro string

	span source.Span
}

// Span implements [ErrorWithPos].
func (e *MacroBindingError) Span() source.Span {
	return e.span
}

// Error implements [error].
func (e *MacroBindingError) Error() string {
	return position(e.span) + ": " + e.message()
}

// Diagnose implements [report.Diagnose].
func (e *MacroBindingError) Diagnose(d *report.Diagnostic) {
	d.Apply(report.Message("%s", e.message()))
	if e.Macro == "has" {
		d.Apply(
			report.Snippet(e.span, "expected a field selection"),
			report.Help("has() tests for the presence of a field, as in `has(msg.field)`"),
		)
		return
	}
	d.Apply(report.Snippet(e.span, "expected an identifier"))
}

func (e *MacroBindingError) message() string {
	if e.Macro == "has" {
		return "invalid argument to has() macro"
	}
	return fmt.Sprintf("invalid binding in `%s` macro; first argument must be a simple identifier", e.Macro)
}

// position formats the start of span as path:line:column.
func position(span source.Span) string {
	path := span.Path()
	if path == "" {
		path = "<input>"
	}
	start := span.StartLoc()
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Column)
}

func plural(n int, what string) string {
	if n == 1 {
		return what
	}
	return what + "s"
}
