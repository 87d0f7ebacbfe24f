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

// Package source provides source files and spans within them, for
// attributing AST nodes and diagnostics to positions in expression text.
package source

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Unit is a unit of measurement for columns and offsets.
type Unit int8

const (
	// Bytes measures in UTF-8 bytes.
	Bytes Unit = iota
	// Runes measures in Unicode code points. This is what the CEL wire format
	// uses for positions.
	Runes
	// TermWidth measures in terminal columns, as computed by
	// [uniseg.StringWidth]. Tabs count as a single column.
	TermWidth
)

// File is a source code file holding a single expression.
//
// It contains additional book-keeping information for resolving span
// locations. Files are immutable once created.
//
// A nil *File behaves like an empty file with the path name "".
type File struct {
	path, text string

	once sync.Once
	// The byte offset of the start of each line. Given a byte offset, it is
	// possible to recover which line that offset is on by performing a binary
	// search on this list.
	lineIndex []int
}

// NewFile constructs a new source file.
//
// path does not need to be a real path; it is only used for display.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's textual contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Span is a shorthand for creating a new Span.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{f, start, end}
}

// Location builds full [Location] information for the given byte offset.
//
// This operation is O(log n).
func (f *File) Location(offset int, units Unit) Location {
	lines := f.lines()
	if len(lines) == 0 || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	offset = min(offset, len(f.text))

	// Find the smallest index in lines such that lines[line] <= offset.
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}

	chunk := f.text[lines[line]:offset]
	var column int
	switch units {
	case Bytes:
		column = len(chunk)
	case Runes:
		column = utf8.RuneCountInString(chunk)
	case TermWidth:
		column = uniseg.StringWidth(chunk)
	}

	return Location{
		Offset: offset,
		Line:   line + 1,
		Column: column + 1,
	}
}

// Line returns the given line, without its trailing newline.
//
// line is expected to be 1-indexed.
func (f *File) Line(line int) string {
	start, end := f.LineOffsets(line)
	return strings.TrimSuffix(f.text[start:end], "\n")
}

// LineOffsets returns the byte offsets for the given line, including its
// trailing newline.
//
// line is expected to be 1-indexed.
func (f *File) LineOffsets(line int) (start, end int) {
	lines := f.lines()
	if line < 1 || line > len(lines) {
		return 0, 0
	}
	if len(lines) == line {
		return lines[line-1], len(f.Text())
	}
	return lines[line-1], lines[line]
}

// LineStarts returns the offset, measured in units, of the start of every
// line after the first; that is, the offset immediately after each newline.
func (f *File) LineStarts(units Unit) []int {
	lines := f.lines()
	if len(lines) < 2 {
		return nil
	}
	out := make([]int, 0, len(lines)-1)
	for _, start := range lines[1:] {
		out = append(out, f.Convert(start, units))
	}
	return out
}

// Convert converts a byte offset into an offset measured in units from the
// start of the file.
//
// Converting to [TermWidth] is not meaningful across lines, so it is treated
// as [Runes].
func (f *File) Convert(offset int, units Unit) int {
	offset = min(max(offset, 0), len(f.Text()))
	if units == Bytes {
		return offset
	}
	return utf8.RuneCountInString(f.text[:offset])
}

func (f *File) lines() []int {
	if f == nil {
		return nil
	}

	// Compute the prefix sum on-demand.
	f.once.Do(func() {
		var next int

		// We add 1 to the return value of IndexByte because we want to work
		// with the index immediately *after* the newline byte.
		text := f.text
		for {
			newline := strings.IndexByte(text, '\n') + 1
			if newline == 0 {
				break
			}

			text = text[newline:]

			f.lineIndex = append(f.lineIndex, next)
			next += newline
		}

		f.lineIndex = append(f.lineIndex, next)
	})
	return f.lineIndex
}
