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

package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Spec returns the JavaScript spec.
func Spec() *syntax.Spec {
	return &syntax.Spec{
		Name:       "javascript",
		Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		Language:   func() *sitter.Language { return javascript.GetLanguage() },
		Declares:   declares,
	}
}

// TypeScriptSpec returns the TypeScript spec. The grammar differs, the
// declaration shapes do not.
func TypeScriptSpec() *syntax.Spec {
	return &syntax.Spec{
		Name:       "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		Language:   func() *sitter.Language { return typescript.GetLanguage() },
		Declares:   declares,
	}
}

// declares accepts function declarations, class methods and
// `const name = () => {...}` style bindings.
func declares(n *sitter.Node) (name, body *sitter.Node) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "method_definition":
		return n.ChildByFieldName("name"), n.ChildByFieldName("body")
	case "variable_declarator":
		value := n.ChildByFieldName("value")
		if value == nil {
			return nil, nil
		}
		switch value.Type() {
		case "arrow_function", "function", "function_expression":
			return n.ChildByFieldName("name"), value.ChildByFieldName("body")
		}
	}
	return nil, nil
}
