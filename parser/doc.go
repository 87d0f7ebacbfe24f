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

// Package parser contains the logic for parsing CEL expressions into an AST
// (abstract syntax tree).
//
// Parsing assigns every node an [ast.ID] in post-order: a node's children
// are numbered before the node itself, so re-parsing the same text always
// yields the same numbering.
//
// Calls to the macros has, all, exists, exists_one, map and filter are
// expanded as they are parsed. has(e.f) becomes a presence test on e.f; the
// others become an [ast.Comprehension] that keeps the id of the call it
// replaced, and the call as written is recorded in the result's
// [reference.Table] under that id. For example, r.exists(x, p) becomes
//
//	__comprehension__(
//	  // Variable
//	  x,
//	  // Target
//	  r,
//	  // Accumulator
//	  @result,
//	  // Init
//	  false,
//	  // LoopCondition
//	  !@result,
//	  // LoopStep
//	  @result || p,
//	  // Result
//	  @result)
//
// The parser does not recover from errors: the first problem aborts the parse,
// and is returned as an [ErrorWithPos] that can also be rendered with
// [report.Renderer].
package parser
