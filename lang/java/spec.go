// Copyright 2025 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package java

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Spec returns the Java spec. An anchor is either a bare method name or
// "Class.method" to pick among same-named methods of different classes.
func Spec() *syntax.Spec {
	return &syntax.Spec{
		Name:       "java",
		Extensions: []string{".java"},
		Language:   func() *sitter.Language { return java.GetLanguage() },
		Declares:   declares,
		QualifiedName: syntax.QualifyByContainers(
			"class_declaration", "interface_declaration", "enum_declaration", "record_declaration",
		),
	}
}

func declares(n *sitter.Node) (name, body *sitter.Node) {
	switch n.Type() {
	case "method_declaration", "constructor_declaration":
	default:
		return nil, nil
	}
	body = n.ChildByFieldName("body")
	if body == nil {
		// abstract and interface methods
		return nil, nil
	}
	return n.ChildByFieldName("name"), body
}
