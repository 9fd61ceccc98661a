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

// Package golang describes Go sources to the anchor resolver.
package golang

import (
	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"golang.org/x/tools/imports"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Spec returns the Go language spec. Anchors name functions or methods;
// edited files are gofmt-ed with their import block left as is.
func Spec() *syntax.Spec {
	return &syntax.Spec{
		Name:          "go",
		Extensions:    []string{".go"},
		Language:      func() *sitter.Language { return golang.GetLanguage() },
		FunctionTypes: []string{"function_declaration", "method_declaration"},
		Format:        format,
	}
}

func format(path string, src []byte) ([]byte, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "format %s", path)
	}
	return out, nil
}
