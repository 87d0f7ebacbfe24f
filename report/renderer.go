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
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/celparse/source"
)

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line format for each diagnostic.
	Compact bool

	// If set, rendering results are enriched with ANSI color escapes.
	Colorize bool

	// Upgrades all warnings to errors.
	WarningsAreErrors bool

	// If set, remark diagnostics will be printed.
	//
	// Ignored by [Renderer.Diagnostic].
	ShowRemarks bool
}

// Render renders a diagnostic report.
//
// In addition to returning the rendering result, returns the number of errors
// and warnings in the report.
//
// The error-typed return is an error when writing to the writer.
func (r Renderer) Render(report *Report, out io.Writer) (errorCount, warningCount int, err error) {
	for _, diagnostic := range report.Diagnostics {
		if !r.ShowRemarks && diagnostic.level == Remark {
			continue
		}

		if _, err = fmt.Fprintln(out, r.Diagnostic(diagnostic)); err != nil {
			return
		}
		if !r.Compact {
			if _, err = fmt.Fprintln(out); err != nil {
				return
			}
		}

		switch {
		case diagnostic.level == Error,
			diagnostic.level == Warning && r.WarningsAreErrors:
			errorCount++
		case diagnostic.level == Warning:
			warningCount++
		}
	}
	if r.Compact {
		return
	}

	c := r.colors()
	pluralize := func(count int, what string) string {
		if count == 1 {
			return "1 " + what
		}
		return fmt.Sprint(count, " ", what, "s")
	}

	switch {
	case errorCount > 0 && warningCount > 0:
		_, err = fmt.Fprint(out, c.bError, "encountered ", pluralize(errorCount, "error"),
			" and ", pluralize(warningCount, "warning"), c.reset, "\n")
	case errorCount > 0:
		_, err = fmt.Fprint(out, c.bError, "encountered ", pluralize(errorCount, "error"), c.reset, "\n")
	case warningCount > 0:
		_, err = fmt.Fprint(out, c.bWarning, "encountered ", pluralize(warningCount, "warning"), c.reset, "\n")
	}
	return
}

// RenderString is a helper for calling [Renderer.Render] with a
// [strings.Builder].
func (r Renderer) RenderString(report *Report) (text string, errorCount, warningCount int) {
	var buf strings.Builder
	e, w, _ := r.Render(report, &buf)
	return buf.String(), e, w
}

// Diagnostic renders a single diagnostic to a string, without a trailing
// newline.
func (r Renderer) Diagnostic(d *Diagnostic) string {
	level := d.level.String()
	if d.level == Warning && r.WarningsAreErrors {
		level = Error.String()
	}
	message := d.message
	if message == "" && d.err != nil {
		message = d.err.Error()
	}

	c := r.colors()

	// For the simple style, we imitate the Go compiler.
	if r.Compact {
		primary := d.Primary()
		switch {
		case !primary.IsZero():
			start := primary.StartLoc()
			return fmt.Sprintf("%s%s: %s:%d:%d: %s%s",
				c.ColorForLevel(d.level), level,
				displayPath(primary.File), start.Line, start.Column,
				message, c.reset)
		case d.inFile != "":
			return fmt.Sprintf("%s%s: %s: %s%s",
				c.ColorForLevel(d.level), level, d.inFile, message, c.reset)
		default:
			return fmt.Sprintf("%s%s: %s%s", c.ColorForLevel(d.level), level, message, c.reset)
		}
	}

	// For the full style, we imitate the Rust compiler.
	var out strings.Builder
	fmt.Fprint(&out, c.BoldForLevel(d.level), level, ": ", message, c.reset)

	// The line bar is as wide as the greatest line number among the
	// annotations.
	var greatestLine int
	for _, a := range d.annotations {
		greatestLine = max(greatestLine, a.span.EndLoc().Line)
	}
	lineBarWidth := max(2, len(strconv.Itoa(greatestLine)))
	pad := strings.Repeat(" ", lineBarWidth)

	for i, a := range d.annotations {
		start := a.span.StartLoc()
		out.WriteByte('\n')
		out.WriteString(c.nAccent)
		if i == 0 || d.annotations[i-1].span.File != a.span.File {
			fmt.Fprintf(&out, "%s--> %s:%d:%d\n", pad, displayPath(a.span.File), start.Line, start.Column)
		}
		fmt.Fprintf(&out, "%s |\n", pad)
		r.renderWindow(&out, &c, d.level, a, lineBarWidth)
	}

	if len(d.annotations) == 0 && d.inFile != "" {
		fmt.Fprintf(&out, "\n%s%s--> %s%s", c.nAccent, pad, d.inFile, c.reset)
	}

	footers := make([][2]string, 0, len(d.notes)+len(d.help))
	for _, note := range d.notes {
		footers = append(footers, [2]string{"note", note})
	}
	for _, help := range d.help {
		footers = append(footers, [2]string{"help", help})
	}
	for _, footer := range footers {
		fmt.Fprint(&out, "\n", c.nAccent, pad, " = ", c.bRemark, footer[0], ": ", c.reset)
		for i, line := range strings.Split(footer[1], "\n") {
			if i > 0 {
				out.WriteByte('\n')
				out.WriteString(strings.Repeat(" ", lineBarWidth+3+len(footer[0])+2))
			}
			out.WriteString(line)
		}
	}

	out.WriteString(c.reset)
	return out.String()
}

// renderWindow renders the source line an annotation starts on, underlined.
//
// Spans covering more than one line are underlined up to the end of their
// first line.
func (r Renderer) renderWindow(out *strings.Builder, c *stylesheet, level Level, a annotation, lineBarWidth int) {
	file := a.span.File
	start := file.Location(a.span.Start, source.Bytes)
	end := file.Location(a.span.End, source.Bytes)
	line := file.Line(start.Line)

	startCol := stringWidth(0, line[:start.Column-1], nil)
	endCol := stringWidth(0, line, nil)
	if end.Line == start.Line {
		endCol = stringWidth(0, line[:end.Column-1], nil)
	}

	var rendered strings.Builder
	stringWidth(0, line, &rendered)
	fmt.Fprintf(out, "%*d | %s", lineBarWidth, start.Line, c.reset)
	out.WriteString(strings.TrimRight(rendered.String(), " "))
	out.WriteByte('\n')

	underline, color := "-", c.nAccent
	if a.primary {
		underline, color = "^", c.BoldForLevel(level)
	}
	fmt.Fprintf(out, "%s%s | %s%s%s",
		c.nAccent,
		strings.Repeat(" ", lineBarWidth),
		strings.Repeat(" ", startCol),
		color,
		strings.Repeat(underline, max(1, endCol-startCol)),
	)
	if a.message != "" {
		out.WriteString(" ")
		out.WriteString(a.message)
	}
	out.WriteString(c.reset)
}

func displayPath(file *source.File) string {
	if file.Path() == "" {
		return "<input>"
	}
	return file.Path()
}

func (r Renderer) colors() stylesheet {
	if !r.Colorize {
		return stylesheet{r: r}
	}

	return stylesheet{
		r:     r,
		reset: "\033[0m",
		// Red.
		nError: "\033[0;31m",
		bError: "\033[1;31m",

		// Yellow.
		nWarning: "\033[0;33m",
		bWarning: "\033[1;33m",

		// Cyan.
		nRemark: "\033[0;36m",
		bRemark: "\033[1;36m",

		// Blue. Used for "accents" such as non-primary span underlines and
		// line numbers, to clearly separate them from the source code.
		nAccent: "\033[0;34m",
		bAccent: "\033[1;34m",
	}
}

// stylesheet is the colors used for pretty-rendering diagnostics.
type stylesheet struct {
	r Renderer

	reset string
	// Normal colors.
	nError, nWarning, nRemark, nAccent string
	// Bold colors.
	bError, bWarning, bRemark, bAccent string
}

func (c stylesheet) ColorForLevel(l Level) string {
	switch l {
	case Error:
		return c.nError
	case Warning:
		if c.r.WarningsAreErrors {
			return c.nError
		}
		return c.nWarning
	case Remark:
		return c.nRemark
	default:
		return ""
	}
}

func (c stylesheet) BoldForLevel(l Level) string {
	switch l {
	case Error:
		return c.bError
	case Warning:
		if c.r.WarningsAreErrors {
			return c.bError
		}
		return c.bWarning
	case Remark:
		return c.bRemark
	default:
		return ""
	}
}
