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

package report

import (
	"fmt"

	"github.com/bufbuild/celparse/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Red. Indicates that an expression could not be parsed or converted.
	Error Level = 1 + iota
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. This is the diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("report.Level(%d)", int(l))
	}
}

// Diagnose is an error that can be rendered as a diagnostic.
type Diagnose interface {
	error

	// Diagnose writes out this error to the given diagnostic.
	//
	// This function should not set the level; that is done by the [Report]
	// the diagnostic is added to.
	Diagnose(*Diagnostic)
}

// Diagnostic is a message about some source text, usually an error, which
// can be rendered with a [Renderer].
//
// To construct a diagnostic, create one using a function like [Report.Error].
// Then, call [Diagnostic.Apply] to apply options to it. You should at minimum
// apply [Message] and either [InFile] or at least one [Snippet].
type Diagnostic struct {
	// The error that prompted this diagnostic, if any.
	err error

	level   Level
	message string

	// The file this diagnostic occurs in, if it has no associated
	// annotations.
	inFile string

	annotations []annotation
	notes, help []string
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.Apply] are ignored.
type DiagnosticOption interface {
	apply(*Diagnostic)
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// Message returns this diagnostic's main message.
func (d *Diagnostic) Message() string {
	return d.message
}

// Err returns the error this diagnostic was constructed from, if any.
func (d *Diagnostic) Err() error {
	return d.err
}

// Primary returns this diagnostic's primary span, if it has one.
//
// If it doesn't have one, it returns the zero span.
func (d *Diagnostic) Primary() source.Span {
	for _, annotation := range d.annotations {
		if annotation.primary {
			return annotation.span
		}
	}
	return source.Span{}
}

// Notes returns this diagnostic's notes.
func (d *Diagnostic) Notes() []string {
	return d.notes
}

// Apply applies the given options to this diagnostic.
//
// Nil values are ignored.
func (d *Diagnostic) Apply(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.apply(d)
		}
	}
	return d
}

// Message returns a DiagnosticOption that sets the main diagnostic message.
func Message(format string, args ...any) DiagnosticOption {
	return message(fmt.Sprintf(format, args...))
}

// InFile returns a DiagnosticOption that causes a diagnostic without a
// primary span to mention the given file.
func InFile(path string) DiagnosticOption {
	return inFile(path)
}

// Snippet returns a DiagnosticOption that adds a new annotated span to a
// diagnostic.
//
// Any additional arguments to this function are passed to [fmt.Sprintf] to
// produce a message to go with the span.
//
// The first annotation added is the "primary" annotation. If at is nil or
// produces the zero span, this function returns nil.
func Snippet(at source.Spanner, args ...any) DiagnosticOption {
	if at == nil {
		return nil
	}
	span := at.Span()
	if span.IsZero() {
		return nil
	}

	a := annotation{span: span}
	if len(args) > 0 {
		format, ok := args[0].(string)
		if !ok {
			panic("celparse/report: expected string as first Snippet argument")
		}
		a.message = fmt.Sprintf(format, args[1:]...)
	}
	return a
}

// Note returns a DiagnosticOption that provides the user with context about
// the diagnostic, after the annotations.
func Note(format string, args ...any) DiagnosticOption {
	return note(fmt.Sprintf(format, args...))
}

// Help returns a DiagnosticOption that provides the user with a helpful prose
// suggestion for resolving the diagnostic.
func Help(format string, args ...any) DiagnosticOption {
	return help(fmt.Sprintf(format, args...))
}

// annotation is an annotated source code span within a [Diagnostic].
type annotation struct {
	span source.Span

	// A message to show under this snippet. May be empty.
	message string

	// Whether this is the "primary" snippet, which gets the diagnostic's own
	// color when rendered.
	primary bool
}

type (
	message string
	inFile  string
	note    string
	help    string
)

func (a annotation) apply(d *Diagnostic) {
	a.primary = len(d.annotations) == 0
	d.annotations = append(d.annotations, a)
}

func (m message) apply(d *Diagnostic) {
	if d.message != "" {
		panic("celparse/report: set diagnostic message more than once")
	}
	d.message = string(m)
}

func (f inFile) apply(d *Diagnostic) { d.inFile = string(f) }
func (n note) apply(d *Diagnostic)   { d.notes = append(d.notes, string(n)) }
func (n help) apply(d *Diagnostic)   { d.help = append(d.help, string(n)) }
