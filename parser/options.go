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

// Option configures a parse.
type Option func(*options)

type options struct {
	path string
	// If nil, every macro is enabled.
	macros map[string]bool
}

// WithPath sets the path reported for the parsed text in spans and errors.
//
// Ignored by [ParseFile], which takes the path from its file.
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithoutMacros disables macro expansion entirely: calls such as
// r.all(x, p) are left as ordinary calls.
func WithoutMacros() Option {
	return func(o *options) { o.macros = map[string]bool{} }
}

// WithMacros enables expansion of only the named macros, such as "has" or
// "exists_one". Names that are not macros are ignored.
func WithMacros(names ...string) Option {
	return func(o *options) {
		o.macros = make(map[string]bool, len(names))
		for _, name := range names {
			o.macros[name] = true
		}
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) macroEnabled(name string) bool {
	return o.macros == nil || o.macros[name]
}
