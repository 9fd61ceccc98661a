/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package modifier

import (
	"strings"

	"github.com/cloudwego/scaffolder/lang/csharp"
	"github.com/cloudwego/scaffolder/lang/golang"
	"github.com/cloudwego/scaffolder/lang/java"
	"github.com/cloudwego/scaffolder/lang/javascript"
	"github.com/cloudwego/scaffolder/lang/python"
	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Category is the closed set of ways a file can be edited.
type Category int

const (
	// PassThrough files are returned unmodified.
	PassThrough Category = iota
	// StructuredEdit files are edited through syntactic anchors.
	StructuredEdit
	// TextEdit files take literal text replacements; method anchors in
	// them are found by brace matching.
	TextEdit
)

func (c Category) String() string {
	switch c {
	case StructuredEdit:
		return "structured"
	case TextEdit:
		return "text"
	default:
		return "pass-through"
	}
}

// DefaultMarkupExtensions are edited as TextEdit files.
var DefaultMarkupExtensions = []string{
	".html", ".htm", ".cshtml", ".razor", ".vue",
	".xml", ".csproj", ".props",
	".json", ".yaml", ".yml", ".toml",
	".md", ".txt", ".tmpl",
}

// DefaultLanguages are the structured languages known out of the box.
func DefaultLanguages() []*syntax.Spec {
	return []*syntax.Spec{
		golang.Spec(),
		csharp.Spec(),
		java.Spec(),
		javascript.Spec(),
		javascript.TypeScriptSpec(),
		python.Spec(),
	}
}

// Categorize picks the category of a file from its extension, once per
// file. The syntax.Spec is non-nil only for StructuredEdit.
func (m *Modifier) Categorize(ext string) (Category, *syntax.Spec) {
	ext = strings.ToLower(ext)
	if spec, ok := m.langs[ext]; ok {
		return StructuredEdit, spec
	}
	if m.markup[ext] {
		return TextEdit, nil
	}
	return PassThrough, nil
}
