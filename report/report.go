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

// Package report provides a diagnostics system for rendering parse and
// conversion errors against the source text they refer to.
//
// Errors produced by the parser implement [Diagnose], so any of them can be
// added to a [Report] and rendered with a [Renderer]:
//
//	var r report.Report
//	if _, err := parser.Parse(text); err != nil {
//		if d, ok := err.(report.Diagnose); ok {
//			r.Error(d)
//		}
//	}
//	text, _, _ := report.Renderer{}.RenderString(&r)
package report

import (
	"errors"
	"strings"
)

// Report is a collection of diagnostics.
//
// A zero Report is ready to use. Reports are not safe for concurrent use.
type Report struct {
	Diagnostics []*Diagnostic
}

// Error pushes an error diagnostic built from err onto this report.
func (r *Report) Error(err Diagnose) *Diagnostic {
	d := r.push(Error)
	d.err = err
	err.Diagnose(d)
	return d
}

// Warn pushes a warning diagnostic built from err onto this report.
func (r *Report) Warn(err Diagnose) *Diagnostic {
	d := r.push(Warning)
	d.err = err
	err.Diagnose(d)
	return d
}

// Errorf pushes an error diagnostic with the given message onto this report.
func (r *Report) Errorf(format string, args ...any) *Diagnostic {
	return r.push(Error).Apply(Message(format, args...))
}

// Remarkf pushes a remark diagnostic with the given message onto this report.
func (r *Report) Remarkf(format string, args ...any) *Diagnostic {
	return r.push(Remark).Apply(Message(format, args...))
}

// AddError pushes a diagnostic for an arbitrary error onto this report. If
// err (or any error it wraps) implements [Diagnose], the diagnostic will carry
// its snippets.
func (r *Report) AddError(err error) *Diagnostic {
	var diag Diagnose
	if errors.As(err, &diag) {
		return r.Error(diag)
	}
	d := r.push(Error).Apply(Message("%v", err))
	d.err = err
	return d
}

// HasErrors returns whether this report contains any error diagnostics.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.level == Error {
			return true
		}
	}
	return false
}

func (r *Report) push(level Level) *Diagnostic {
	d := &Diagnostic{level: level}
	r.Diagnostics = append(r.Diagnostics, d)
	return d
}

// AsError wraps a [Report] as an [error].
type AsError struct {
	Report Report
}

// Error implements [error].
func (e *AsError) Error() string {
	text, _, _ := Renderer{Compact: true}.RenderString(&e.Report)
	return strings.TrimSuffix(text, "\n")
}
