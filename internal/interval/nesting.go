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

// Package interval provides interval data structures, used for mapping
// source offsets back to the AST nodes that cover them.
package interval

import (
	"iter"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints"
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Entry is an entry in a [Nesting].
type Entry[K Endpoint, V any] struct {
	Start, End K // The interval range, inclusive.
	Value      V
}

// Contains returns whether an entry contains a given point.
func (e Entry[K, V]) Contains(point K) bool {
	return e.Start <= point && point <= e.End
}

// Nesting is a collection of intervals (and associated values) arranged in
// such a way that splits the collection into strictly nesting sets:
// a strictly nesting set of intervals is one such that no intervals in it
// overlap, except when one set is a strict subset of another.
//
// Insertion order matters: larger intervals should be inserted first, so that
// an interval lands in the same set as the intervals that contain it.
// Identical intervals always land in distinct sets, in insertion order.
type Nesting[K Endpoint, V any] struct {
	// Items in each tree are ordered by end, then by descending start, so that
	// inner intervals sort before the intervals that contain them.
	sets []*btree.BTreeG[*Entry[K, V]]
}

// Clear resets this collection.
func (n *Nesting[K, V]) Clear() {
	for _, set := range n.sets {
		set.Clear()
	}
	n.sets = n.sets[:0]
}

// Len returns the number of intervals in this collection.
func (n *Nesting[K, V]) Len() int {
	var total int
	for _, set := range n.sets {
		total += set.Len()
	}
	return total
}

// Sets returns an iterator over the nesting sets in this collection.
//
// Within each set, entries are yielded by ascending end.
func (n *Nesting[K, V]) Sets() iter.Seq[iter.Seq[Entry[K, V]]] {
	return func(yield func(iter.Seq[Entry[K, V]]) bool) {
		for _, set := range n.sets {
			entries := func(yield func(Entry[K, V]) bool) {
				set.Scan(func(value *Entry[K, V]) bool { return yield(*value) })
			}
			if !yield(entries) {
				return
			}
		}
	}
}

// Insert adds a new interval to the collection. If end < start, this function
// does nothing.
func (n *Nesting[K, V]) Insert(start, end K, value V) {
	if end < start {
		return
	}
	entry := &Entry[K, V]{Start: start, End: end, Value: value}

	var found *btree.BTreeG[*Entry[K, V]]
	for _, set := range n.sets {
		ok := true
		// Everything ending before start is disjoint from entry.
		set.Ascend(&Entry[K, V]{Start: start, End: start}, func(other *Entry[K, V]) bool {
			ok = nests(entry, other)
			return ok
		})
		if ok {
			found = set
			break
		}
	}

	if found == nil {
		found = btree.NewBTreeG(byEnd[K, V])
		n.sets = append(n.sets, found)
	}
	found.Set(entry)
}

// Innermost returns the shortest interval that contains point. If several
// such intervals have the same length, the one in the earliest nesting set
// wins; for identical intervals, this is the one inserted first.
func (n *Nesting[K, V]) Innermost(point K) (Entry[K, V], bool) {
	var best *Entry[K, V]
	for _, set := range n.sets {
		set.Ascend(&Entry[K, V]{Start: point, End: point}, func(entry *Entry[K, V]) bool {
			if entry.Start > point {
				return true
			}
			if best == nil || entry.End-entry.Start < best.End-best.Start {
				best = entry
			}
			return false
		})
	}
	if best == nil {
		return Entry[K, V]{}, false
	}
	return *best, true
}

// nests returns whether a and b may share a nesting set.
func nests[K Endpoint, V any](a, b *Entry[K, V]) bool {
	if a.End < b.Start || b.End < a.Start {
		return true
	}
	if a.Start == b.Start && a.End == b.End {
		return false
	}
	return (a.Start <= b.Start && b.End <= a.End) ||
		(b.Start <= a.Start && a.End <= b.End)
}

func byEnd[K Endpoint, V any](a, b *Entry[K, V]) bool {
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Start > b.Start
}
