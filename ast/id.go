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

import "strconv"

// ID is the identity of a node within a single parse.
//
// The zero ID is never issued by an [Allocator], and represents the absence
// of a node.
type ID uint64

// IsZero returns whether this is the zero ID.
func (id ID) IsZero() bool {
	return id == 0
}

// String implements [fmt.Stringer].
func (id ID) String() string {
	if id.IsZero() {
		return "ID(<nil>)"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Allocator issues strictly increasing IDs, starting at 1.
//
// Each parse uses its own Allocator; nodes synthesized after parsing (such as
// by macro expansion) must be numbered by the same Allocator as the rest of
// their tree, or uniqueness is lost.
//
// A zero Allocator is ready to use. Allocators are not safe for concurrent
// use, and do not need to be: they are never shared between parses.
type Allocator struct {
	last ID
}

// Next returns a fresh ID.
func (a *Allocator) Next() ID {
	a.last++
	return a.last
}

// Last returns the most recently issued ID, or zero if none have been issued.
func (a *Allocator) Last() ID {
	return a.last
}
