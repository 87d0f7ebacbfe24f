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

	"github.com/bufbuild/celparse/source"
)

type tokenKind int8

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenInt    // Magnitude in token.uint; the sign is applied by the parser.
	tokenUint   // Value in token.uint.
	tokenDouble // Value in token.double.
	tokenString // Decoded value in token.str.
	tokenBytes  // Decoded value in token.str.
	tokenTrue
	tokenFalse
	tokenNull
	tokenPunct // Operators and punctuation, including the keyword "in".
)

// token is a single lexeme.
type token struct {
	kind       tokenKind
	text       string // The source text of this token.
	start, end int    // Byte offsets.

	uint   uint64
	double float64
	str    string
}

func (t token) span(file *source.File) source.Span {
	return file.Span(t.start, t.end)
}

// is returns whether this is the punctuation token punct.
func (t token) is(punct string) bool {
	return t.kind == tokenPunct && t.text == punct
}

// describe returns a description of this token for use in error messages.
func (t token) describe() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return fmt.Sprintf("identifier `%s`", t.text)
	case tokenInt:
		return fmt.Sprintf("int literal `%s`", t.text)
	case tokenUint:
		return fmt.Sprintf("uint literal `%s`", t.text)
	case tokenDouble:
		return fmt.Sprintf("double literal `%s`", t.text)
	case tokenString:
		return "string literal"
	case tokenBytes:
		return "bytes literal"
	default:
		return fmt.Sprintf("`%s`", t.text)
	}
}

// reserved is the set of words that may not be used as identifiers.
var reserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// punctuation lists the operators and punctuation recognized by the lexer,
// longest first.
var punctuation = []string{
	"==", "!=", "<=", ">=", "&&", "||",
	"(", ")", "[", "]", "{", "}", ".", ",", ":", "?",
	"+", "-", "*", "/", "%", "!", "<", ">",
}
