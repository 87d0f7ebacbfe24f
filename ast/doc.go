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

// Package ast provides the abstract syntax tree for CEL expressions.
//
// # Nodes and Identity
//
// Every node in a tree is an [Expr], which pairs a [Node] (the tagged union
// of node shapes) with an [ID]. IDs are unique within one parse and are
// handed out by an [Allocator]; the zero ID is never issued, so it can be
// used as a "no node" sentinel by interchange formats.
//
// Trees are owned top-down: each child pointer belongs to exactly one
// parent, and there are no back-pointers. Once a tree has been returned by
// the parser it must be treated as immutable; use [Expr.Clone] to obtain a
// copy that may be modified.
//
// # Macros
//
// The node set is the core language: the quantifier, filter and map macros
// of the surface syntax are desugared into a [Comprehension] by the parser,
// and [Select.TestOnly] encodes the has() macro.
package ast

//go:generate go run github.com/bufbuild/celparse/internal/enum kind.yaml
