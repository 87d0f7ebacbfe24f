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

package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/celparse/source"
)

func TestLocation(t *testing.T) {
	t.Parallel()

	file := source.NewFile(
		"test",
		"foo\nbar\ncat: 日本\ntail",
	)

	tests := []struct {
		loc  source.Location
		unit source.Unit
	}{
		{loc: source.Location{0, 1, 1}, unit: source.Bytes},
		{loc: source.Location{0, 1, 1}, unit: source.Runes},
		{loc: source.Location{0, 1, 1}, unit: source.TermWidth},

		{loc: source.Location{2, 1, 3}, unit: source.Bytes},
		{loc: source.Location{2, 1, 3}, unit: source.Runes},

		{loc: source.Location{5, 2, 2}, unit: source.Runes},

		// After "cat: 日", which is 5 ASCII bytes and one three-byte rune
		// two columns wide.
		{loc: source.Location{16, 3, 9}, unit: source.Bytes},
		{loc: source.Location{16, 3, 7}, unit: source.Runes},
		{loc: source.Location{16, 3, 8}, unit: source.TermWidth},

		{loc: source.Location{20, 4, 1}, unit: source.Runes},
		{loc: source.Location{24, 4, 5}, unit: source.Runes},
	}

	for _, test := range tests {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			t.Logf("%q | %q", file.Text()[:test.loc.Offset], file.Text()[test.loc.Offset:])
			assert.Equal(t, test.loc, file.Location(test.loc.Offset, test.unit))
		})
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "a\nbé\n\nc")
	assert.Equal(t, "a", file.Line(1))
	assert.Equal(t, "bé", file.Line(2))
	assert.Equal(t, "", file.Line(3))
	assert.Equal(t, "c", file.Line(4))

	assert.Equal(t, []int{2, 6, 7}, file.LineStarts(source.Bytes))
	assert.Equal(t, []int{2, 5, 6}, file.LineStarts(source.Runes))
	assert.Nil(t, source.NewFile("test", "x").LineStarts(source.Runes))
}

func TestJoin(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "hello world")
	a := file.Span(0, 5)
	b := file.Span(6, 11)
	assert.Equal(t, file.Span(0, 11), source.Join(b, source.Span{}, a))
	assert.Equal(t, source.Span{}, source.Join())
	assert.Equal(t, "world", b.Text())
	assert.True(t, b.Contains(6))
	assert.False(t, b.Contains(11))
	assert.Equal(t, `"test":1:7[6:11]`, b.String())

	other := source.NewFile("other", "hello world")
	assert.Panics(t, func() { source.Join(a, other.Span(0, 1)) })
}

func TestNilFile(t *testing.T) {
	t.Parallel()

	var file *source.File
	assert.Equal(t, "", file.Path())
	assert.Equal(t, "", file.Text())
	assert.True(t, file.Span(0, 0).IsZero())
	assert.Equal(t, source.Location{0, 1, 1}, file.Location(10, source.Runes))
}
