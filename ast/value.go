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

package ast

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Val is a constant value appearing in a [Literal].
//
// The set of implementations is closed: [Null], [Bool], [Int], [Uint],
// [Double], [String] and [Bytes].
type Val interface {
	// Kind returns which variant this value is.
	Kind() ValKind

	// String returns this value as it would be written in CEL source.
	String() string

	val()
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	Uint   uint64
	Double float64
	String string
	Bytes  []byte
)

func (Null) Kind() ValKind   { return ValNull }
func (Bool) Kind() ValKind   { return ValBool }
func (Int) Kind() ValKind    { return ValInt }
func (Uint) Kind() ValKind   { return ValUint }
func (Double) Kind() ValKind { return ValDouble }
func (String) Kind() ValKind { return ValString }
func (Bytes) Kind() ValKind  { return ValBytes }

func (Null) String() string     { return "null" }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string   { return strconv.FormatUint(uint64(v), 10) + "u" }
func (v String) String() string { return strconv.Quote(string(v)) }
func (v Bytes) String() string  { return "b" + strconv.Quote(string(v)) }

func (v Double) String() string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 64)
	// Make sure whole doubles don't print like ints.
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

func (Null) val()   {}
func (Bool) val()   {}
func (Int) val()    {}
func (Uint) val()   {}
func (Double) val() {}
func (String) val() {}
func (Bytes) val()  {}

// EqualVals returns whether two values are the same constant.
//
// Unlike ==, a NaN [Double] is equal to every other NaN, and [Bytes] are
// compared by contents. Values of different kinds are never equal.
func EqualVals(a, b Val) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Double:
		b := b.(Double)
		if math.IsNaN(float64(a)) {
			return math.IsNaN(float64(b))
		}
		return a == b
	case Bytes:
		return bytes.Equal(a, b.(Bytes))
	default:
		return a == b
	}
}
