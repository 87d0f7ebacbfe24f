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

package parser_test

import (
	"strings"
	"testing"

	"github.com/bufbuild/celparse/ast"
	"github.com/bufbuild/celparse/internal/corpora"
	"github.com/bufbuild/celparse/parser"
	"github.com/bufbuild/celparse/report"
)

// TestCorpus runs the golden tests under testdata/parser. To regenerate the
// outputs, run with CELPARSE_REFRESH set to a glob of test names, such as
// CELPARSE_REFRESH='**'.
func TestCorpus(t *testing.T) {
	t.Parallel()

	corpora.Corpus{
		Root:      "testdata/parser",
		Refresh:   "CELPARSE_REFRESH",
		Extension: "cel",
		Outputs: []corpora.Output{
			{Extension: "ast"},
			{Extension: "macros"},
			{Extension: "stderr"},
		},
		Test: func(t *testing.T, path, text string) []string {
			result, err := parser.Parse(text, parser.WithPath(path))
			if err != nil {
				var r report.Report
				r.AddError(err)
				stderr, _, _ := report.Renderer{Compact: true}.RenderString(&r)
				return []string{"", "", stderr}
			}

			var macros strings.Builder
			for id, call := range result.References.Macros() {
				macros.WriteString(ast.Debug(call.Expr(id)))
				macros.WriteByte('\n')
			}
			return []string{ast.Debug(result.Expr) + "\n", macros.String(), ""}
		},
	}.Run(t)
}
