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
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/celparse/source"
)

// Batch parses many independent expressions in parallel.
//
// Parses share no state; each has its own id allocator and reference table.
type Batch struct {
	// The maximum parallelism to use when parsing. If unspecified or set to
	// a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// Options applied to every parse.
	Options []Option
}

// Parse parses each of files. Results are returned in the same order as the
// files.
//
// If any parse fails, Parse returns the error of the earliest file (in
// argument order) that failed, and no results. Files after a known failure
// are skipped. The context is only checked between parses; a single parse is
// never interrupted, and a file skipped because ctx was done reports ctx's
// error in its place.
func (b *Batch) Parse(ctx context.Context, files ...*source.File) ([]*Result, error) {
	if len(files) == 0 {
		return nil, nil
	}

	par := b.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}
	sem := semaphore.NewWeighted(int64(par))

	results := make([]*Result, len(files))
	errs := make([]error, len(files))

	// The lowest index of a file that failed so far. Files below it are
	// always parsed, so the earliest failure is never missed.
	var failed atomic.Int64
	failed.Store(int64(len(files)))
	fail := func(i int) {
		for {
			cur := failed.Load()
			if int64(i) >= cur || failed.CompareAndSwap(cur, int64(i)) {
				return
			}
		}
	}

	var grp errgroup.Group
	var stopped error
	for i, file := range files {
		if int64(i) > failed.Load() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			stopped = err
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			if int64(i) > failed.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				fail(i)
				return nil
			}
			results[i], errs[i] = ParseFile(file, b.Options...)
			if errs[i] != nil {
				fail(i)
			}
			return nil
		})
	}

	_ = grp.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if stopped != nil {
		return nil, stopped
	}
	return results, nil
}
