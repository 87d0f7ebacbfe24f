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

// enum generates the boilerplate for integer enums from a YAML description.
//
//	//go:generate go run github.com/bufbuild/celparse/internal/enum kind.yaml
//
// The YAML file holds a list of enums. Each enum gets a String method that
// returns the value's string from the file, and a GoString method that
// returns its Go name. The output is written next to the input, with the
// .yaml extension replaced by .go.
package main

import (
	"debug/buildinfo"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Enum is one enum type.
type Enum struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // Underlying integer type.
	Docs string `yaml:"docs"`
	// If set, an unexported constant with this name counts the values.
	Total  string  `yaml:"total"`
	Values []Value `yaml:"values"`
}

// Value is one constant of an [Enum]. The first value is the zero value.
type Value struct {
	Name   string `yaml:"name"`
	String string `yaml:"string"`
	Docs   string `yaml:"docs"`
}

//go:embed enum.go.tmpl
var tmplText string

var tmpl = template.Must(template.New("enum").Funcs(template.FuncMap{
	"docs": docs,
	"list": func(items ...string) []string { return items },
}).Parse(tmplText))

// docs formats text as a comment block, one "//" line per line of text.
func docs(text, indent string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var out strings.Builder
	for line := range strings.SplitSeq(text, "\n") {
		out.WriteString(indent)
		out.WriteString(strings.TrimRight("// "+line, " "))
		out.WriteByte('\n')
	}
	return out.String()
}

func generate(config, generator string) error {
	if filepath.Ext(config) != ".yaml" {
		return errors.New("input must be a .yaml file")
	}

	text, err := os.ReadFile(config)
	if err != nil {
		return err
	}
	var enums []Enum
	if err := yaml.Unmarshal(text, &enums); err != nil {
		return err
	}
	for _, e := range enums {
		if e.Name == "" || e.Type == "" {
			return fmt.Errorf("enum %q needs both a name and a type", e.Name)
		}
		if len(e.Values) == 0 {
			return fmt.Errorf("enum %s has no values", e.Name)
		}
		for _, v := range e.Values {
			if v.String == "" {
				return fmt.Errorf("%s.%s has no string", e.Name, v.Name)
			}
		}
	}

	var out strings.Builder
	err = tmpl.Execute(&out, map[string]any{
		"Generator": generator,
		"Config":    filepath.Base(config),
		"Package":   os.Getenv("GOPACKAGE"),
		"Enums":     enums,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(strings.TrimSuffix(config, ".yaml")+".go", []byte(out.String()), 0o644)
}

func main() {
	info, err := buildinfo.ReadFile(os.Args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "enum:", err)
		os.Exit(1)
	}

	var failed bool
	for _, config := range os.Args[1:] {
		if err := generate(config, info.Path); err != nil {
			fmt.Fprintf(os.Stderr, "enum: %s: %v\n", config, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
