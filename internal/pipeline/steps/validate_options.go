// Copyright 2025 ByteDance Inc.
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

package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/scaffolder/internal/pipeline"
)

// OptionProblem is one option that failed validation.
type OptionProblem struct {
	Option string
	Reason string
}

// OptionValidationError lists every option problem found.
type OptionValidationError struct {
	Problems []OptionProblem
}

func (e *OptionValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("--%s: %s", p.Option, p.Reason)
	}
	return "invalid options: " + strings.Join(parts, "; ")
}

// ValidateOptionsStep checks the bound options of the scaffolder before
// anything is touched: required options must be bound and non-empty and
// every bound value must have its option's type.
type ValidateOptionsStep struct {
	Base
}

// NewValidateOptionsStep returns the step under its default name.
func NewValidateOptionsStep() *ValidateOptionsStep {
	return &ValidateOptionsStep{Base: Base{StepName: "validate-options"}}
}

// Execute implements pipeline.Step.
func (s *ValidateOptionsStep) Execute(ctx context.Context, sc *pipeline.ScaffolderContext, b pipeline.Binding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sc.Scaffolder == nil {
		return nil
	}
	var problems []OptionProblem
	for _, h := range sc.Scaffolder.Options {
		info := h.Info()
		v, bound := sc.Value(h)
		if !bound {
			if info.Required {
				problems = append(problems, OptionProblem{Option: info.Name, Reason: "required"})
			}
			continue
		}
		if !kindMatches(h.Kind(), v) {
			problems = append(problems, OptionProblem{
				Option: info.Name,
				Reason: fmt.Sprintf("want %s, got %T", h.Kind(), v),
			})
			continue
		}
		if str, ok := v.(string); ok && info.Required && strings.TrimSpace(str) == "" {
			problems = append(problems, OptionProblem{Option: info.Name, Reason: "must not be empty"})
		}
	}
	if len(problems) > 0 {
		return &OptionValidationError{Problems: problems}
	}
	return nil
}

func kindMatches(k pipeline.OptionKind, v any) bool {
	switch v.(type) {
	case string:
		return k == pipeline.KindString
	case bool:
		return k == pipeline.KindBool
	case int:
		return k == pipeline.KindInt
	}
	return false
}
