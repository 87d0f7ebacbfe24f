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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/celparse/source"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

type runeReader struct {
	data string
	pos  int
	err  error
	mark int
}

func (rr *runeReader) readRune() (r rune, size int, err error) {
	if rr.err != nil {
		return 0, 0, rr.err
	}
	if rr.pos == len(rr.data) {
		rr.err = io.EOF
		return 0, 0, rr.err
	}
	r, sz := utf8.DecodeRuneInString(rr.data[rr.pos:])
	if r == utf8.RuneError && sz == 1 {
		rr.err = errInvalidUTF8
		return 0, 0, rr.err
	}
	rr.pos += sz
	return r, sz, nil
}

func (rr *runeReader) offset() int {
	return rr.pos
}

func (rr *runeReader) unreadRune(sz int) {
	newPos := rr.pos - sz
	if newPos < rr.mark {
		panic("unread past mark")
	}
	rr.pos = newPos
}

func (rr *runeReader) setMark() {
	rr.mark = rr.pos
}

func (rr *runeReader) getMark() string {
	return rr.data[rr.mark:rr.pos]
}

// peek returns the byte n bytes past the current position, or 0 if that is
// past the end of the input.
func (rr *runeReader) peek(n int) byte {
	if rr.pos+n >= len(rr.data) {
		return 0
	}
	return rr.data[rr.pos+n]
}

type lexer struct {
	file  *source.File
	input runeReader
}

// lex splits the contents of file into tokens. The last token is always
// tokenEOF.
func lex(file *source.File) ([]token, error) {
	l := &lexer{file: file, input: runeReader{data: file.Text()}}
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	l.input.setMark()
	start := l.input.offset()

	c, sz, err := l.input.readRune()
	if errors.Is(err, io.EOF) {
		return token{kind: tokenEOF, start: start, end: start}, nil
	}
	if err != nil {
		return token{}, l.errorf(start, start+1, "%v", err)
	}

	switch {
	case isDigit(c), c == '.' && isDigit(rune(l.input.peek(0))):
		l.input.unreadRune(sz)
		return l.readNumber()

	case c == '"' || c == '\'':
		return l.readStringLiteral(byte(c), false, false)

	case isIdentStart(c):
		l.readIdentifier()
		text := l.input.getMark()
		if q := l.input.peek(0); q == '"' || q == '\'' {
			if raw, isBytes, ok := stringPrefix(text); ok {
				l.input.pos++
				return l.readStringLiteral(q, raw, isBytes)
			}
		}

		tok := token{kind: tokenIdent, text: text, start: start, end: l.input.offset()}
		switch text {
		case "true":
			tok.kind = tokenTrue
		case "false":
			tok.kind = tokenFalse
		case "null":
			tok.kind = tokenNull
		case "in":
			tok.kind = tokenPunct
		default:
			if reserved[text] {
				return token{}, l.errorf(start, tok.end, "reserved identifier `%s`", text)
			}
		}
		return tok, nil
	}

	rest := l.input.data[start:]
	for _, punct := range punctuation {
		if strings.HasPrefix(rest, punct) {
			l.input.pos = start + len(punct)
			return token{kind: tokenPunct, text: punct, start: start, end: l.input.offset()}, nil
		}
	}

	perr := l.errorf(start, start+sz, "unexpected character %q", c)
	switch c {
	case '=':
		perr.help = "did you mean `==`?"
	case '&':
		perr.help = "did you mean `&&`?"
	case '|':
		perr.help = "did you mean `||`?"
	}
	return token{}, perr
}

func (l *lexer) skipSpaceAndComments() {
	data := l.input.data
	for l.input.pos < len(data) {
		switch c := data[l.input.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.input.pos++
		case c == '/' && l.input.peek(1) == '/':
			eol := strings.IndexByte(data[l.input.pos:], '\n')
			if eol == -1 {
				l.input.pos = len(data)
			} else {
				l.input.pos += eol + 1
			}
		default:
			return
		}
	}
}

func (l *lexer) readIdentifier() {
	for {
		c, sz, err := l.input.readRune()
		if err != nil {
			l.input.err = nil
			return
		}
		if !isIdentStart(c) && !isDigit(c) {
			l.input.unreadRune(sz)
			return
		}
	}
}

func (l *lexer) readNumber() (token, error) {
	data := l.input.data
	start := l.input.offset()
	i := start
	digits := func(pred func(byte) bool) {
		for i < len(data) && pred(data[i]) {
			i++
		}
	}

	kind := tokenInt
	base := 10
	if strings.HasPrefix(data[i:], "0x") || strings.HasPrefix(data[i:], "0X") {
		if i+2 < len(data) && isHexByte(data[i+2]) {
			base = 16
			i += 2
		}
	}

	if base == 16 {
		digits(isHexByte)
	} else {
		digits(isDigitByte)
		if i+1 < len(data) && data[i] == '.' && isDigitByte(data[i+1]) {
			kind = tokenDouble
			i++
			digits(isDigitByte)
		}
		if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
			j := i + 1
			if j < len(data) && (data[j] == '+' || data[j] == '-') {
				j++
			}
			if j < len(data) && isDigitByte(data[j]) {
				kind = tokenDouble
				i = j
				digits(isDigitByte)
			}
		}
	}

	number := data[start:i]
	if kind == tokenInt && i < len(data) && (data[i] == 'u' || data[i] == 'U') {
		kind = tokenUint
		i++
	}
	l.input.pos = i

	tok := token{kind: kind, text: data[start:i], start: start, end: i}
	switch kind {
	case tokenDouble:
		f, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return token{}, l.errorf(start, i, "double literal `%s` is out of range", tok.text)
		}
		tok.double = f
	default:
		if base == 16 {
			number = number[2:]
		}
		u, err := strconv.ParseUint(number, base, 64)
		if err != nil {
			return token{}, l.errorf(start, i, "integer literal `%s` is out of range", tok.text)
		}
		tok.uint = u
	}
	return tok, nil
}

// stringPrefix parses a string literal prefix, like the r in r"foo".
func stringPrefix(prefix string) (raw, isBytes, ok bool) {
	switch strings.ToLower(prefix) {
	case "r":
		return true, false, true
	case "b":
		return false, true, true
	case "rb", "br":
		return true, true, true
	default:
		return false, false, false
	}
}

// readStringLiteral reads a string literal whose opening quote has already
// been consumed.
func (l *lexer) readStringLiteral(quote byte, raw, isBytes bool) (token, error) {
	start := l.input.mark
	triple := l.input.peek(0) == quote && l.input.peek(1) == quote
	if triple {
		l.input.pos += 2
	}

	var buf strings.Builder
	for {
		c, _, err := l.input.readRune()
		if errors.Is(err, io.EOF) {
			return token{}, l.errorf(start, l.input.offset(), "unterminated string literal")
		}
		if err != nil {
			return token{}, l.errorf(l.input.offset(), l.input.offset()+1, "%v", err)
		}

		if !triple && (c == '\n' || c == '\r') {
			return token{}, l.errorf(start, l.input.offset()-1, "encountered end-of-line before end of string literal")
		}
		if c == rune(quote) {
			if !triple {
				break
			}
			if l.input.peek(0) == quote && l.input.peek(1) == quote {
				l.input.pos += 2
				break
			}
		}
		if c != '\\' || raw {
			buf.WriteRune(c)
			continue
		}

		escape := l.input.offset() - 1
		if err := l.readEscape(&buf, escape, isBytes); err != nil {
			return token{}, err
		}
	}

	tok := token{kind: tokenString, str: buf.String(), start: start, end: l.input.offset()}
	tok.text = l.input.data[tok.start:tok.end]
	if isBytes {
		tok.kind = tokenBytes
	}
	return tok, nil
}

// readEscape reads an escape sequence whose backslash (at offset escape) has
// already been consumed.
func (l *lexer) readEscape(buf *strings.Builder, escape int, isBytes bool) error {
	c, _, err := l.input.readRune()
	if err != nil {
		return l.errorf(escape, l.input.offset(), "unterminated string literal")
	}

	// writeCode writes the result of a numeric escape. In bytes literals,
	// \x and octal escapes produce a single byte.
	writeCode := func(code uint32) {
		if isBytes {
			buf.WriteByte(byte(code))
		} else {
			buf.WriteRune(rune(code))
		}
	}

	switch c {
	case 'x', 'X':
		code, ok := l.readCode(2, 16)
		if !ok {
			return l.errorf(escape, l.input.offset(), "invalid hex escape")
		}
		writeCode(code)

	case '0', '1', '2', '3':
		l.input.unreadRune(1)
		code, ok := l.readCode(3, 8)
		if !ok {
			return l.errorf(escape, l.input.offset(), "invalid octal escape")
		}
		writeCode(code)

	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		code, ok := l.readCode(n, 16)
		if !ok {
			return l.errorf(escape, l.input.offset(), "invalid unicode escape")
		}
		if isBytes {
			return l.errorf(escape, l.input.offset(), "unicode escape not allowed in bytes literal")
		}
		if code > utf8.MaxRune || (code >= 0xd800 && code < 0xe000) {
			return l.errorf(escape, l.input.offset(), "unicode escape is not a valid code point")
		}
		buf.WriteRune(rune(code))

	case 'a':
		buf.WriteByte('\a')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'v':
		buf.WriteByte('\v')
	case '\\', '\'', '"', '`', '?':
		buf.WriteRune(c)

	default:
		return l.errorf(escape, l.input.offset(), "invalid escape sequence %q", "\\"+string(c))
	}
	return nil
}

// readCode reads exactly n digits in the given base.
func (l *lexer) readCode(n, base int) (uint32, bool) {
	data := l.input.data
	start := l.input.pos
	if start+n > len(data) {
		return 0, false
	}
	code, err := strconv.ParseUint(data[start:start+n], base, 32)
	if err != nil {
		return 0, false
	}
	l.input.pos += n
	return uint32(code), true
}

func (l *lexer) errorf(start, end int, format string, args ...any) *ParseError {
	end = min(end, len(l.input.data))
	return &ParseError{
		Reason: fmt.Sprintf(format, args...),
		span:   l.file.Span(start, end),
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isDigitByte(c byte) bool {
	return isDigit(rune(c))
}

func isHexByte(c byte) bool {
	return isDigitByte(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
