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

// Package csharp describes C# sources to the anchor resolver.
package csharp

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Spec returns the C# language spec. Top-level statements of a
// Program.cs are reached through the global anchor.
func Spec() *syntax.Spec {
	return &syntax.Spec{
		Name:       "csharp",
		Extensions: []string{".cs"},
		Language:   func() *sitter.Language { return csharp.GetLanguage() },
		FunctionTypes: []string{
			"method_declaration",
			"constructor_declaration",
			"local_function_statement",
		},
		QualifiedName: syntax.QualifyByContainers(
			"class_declaration", "struct_declaration", "record_declaration", "interface_declaration",
		),
	}
}
