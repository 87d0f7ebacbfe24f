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
	"strconv"
	"strings"
)

// Debug renders an expression tree in a compact, deterministic form that
// includes every ID. It is intended for tests and debugging, not for
// round-tripping source.
//
// Each node is followed by #id. Calls render as f(args) or target.f(args),
// presence tests as operand.field~test-only, struct entries as
// (key: value)#id, and comprehensions as
//
//	__comprehension__(iterVar, range, accuVar, init, cond, step, result)#id
func Debug(e *Expr) string {
	var out strings.Builder
	debug(&out, e)
	return out.String()
}

func debug(out *strings.Builder, e *Expr) {
	if e == nil {
		out.WriteString("<nil>")
		return
	}

	switch n := e.Node.(type) {
	case *Literal:
		if n.Value == nil {
			out.WriteString("<nil>")
		} else {
			out.WriteString(n.Value.String())
		}
	case *Ident:
		out.WriteString(n.Name)
	case *Select:
		debug(out, n.Operand)
		out.WriteByte('.')
		out.WriteString(n.Field)
		if n.TestOnly {
			out.WriteString("~test-only")
		}
	case *Call:
		if n.Target != nil {
			debug(out, n.Target)
			out.WriteByte('.')
		}
		out.WriteString(n.Function)
		out.WriteByte('(')
		debugList(out, n.Args)
		out.WriteByte(')')
	case *List:
		out.WriteByte('[')
		debugList(out, n.Elements)
		out.WriteByte(']')
	case *Struct:
		out.WriteString(n.TypeName)
		out.WriteByte('{')
		for i, entry := range n.Entries {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteByte('(')
			if entry.IsField() {
				out.WriteString(entry.Field)
			} else {
				debug(out, entry.Key)
			}
			out.WriteString(": ")
			debug(out, entry.Value)
			out.WriteString(")#")
			out.WriteString(strconv.FormatUint(uint64(entry.ID), 10))
		}
		out.WriteByte('}')
	case *Comprehension:
		out.WriteString("__comprehension__(")
		out.WriteString(n.IterVar)
		out.WriteString(", ")
		debug(out, n.IterRange)
		out.WriteString(", ")
		out.WriteString(n.AccuVar)
		out.WriteString(", ")
		debugList(out, []*Expr{n.AccuInit, n.LoopCondition, n.LoopStep, n.Result})
		out.WriteByte(')')
	default:
		out.WriteString("<invalid>")
	}

	out.WriteByte('#')
	out.WriteString(strconv.FormatUint(uint64(e.ID), 10))
}

func debugList(out *strings.Builder, exprs []*Expr) {
	for i, e := range exprs {
		if i > 0 {
			out.WriteString(", ")
		}
		debug(out, e)
	}
}
