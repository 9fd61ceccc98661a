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

package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Spec returns the Python spec.
func Spec() *syntax.Spec {
	return &syntax.Spec{
		Name:          "python",
		Extensions:    []string{".py"},
		Language:      func() *sitter.Language { return python.GetLanguage() },
		FunctionTypes: []string{"function_definition"},
	}
}
