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

package pipeline

import (
	"context"
	"strings"
)

// Scaffolder is one resolved scaffold: its caller-facing description, its
// options and its steps paired with their preparers.
type Scaffolder struct {
	Name        string
	Description string
	Category    string
	Options     []OptionHandle
	Steps       []Step
	Preparers   []Preparer
}

// Option returns the option whose external name is name, case-insensitive,
// or nil.
func (s *Scaffolder) Option(name string) OptionHandle {
	for _, h := range s.Options {
		if strings.EqualFold(h.Info().Name, name) {
			return h
		}
	}
	return nil
}

// Pipeline pairs the steps with their preparers.
func (s *Scaffolder) Pipeline() (*Pipeline, error) {
	return New(s.Steps, s.Preparers)
}

// Run binds option defaults into sc and runs the pipeline.
func (s *Scaffolder) Run(ctx context.Context, sc *ScaffolderContext) (*RunResult, error) {
	p, err := s.Pipeline()
	if err != nil {
		return &RunResult{RunID: sc.RunID}, err
	}
	if sc.Scaffolder == nil {
		sc.Scaffolder = s
	}
	sc.BindDefaults()
	return p.Run(ctx, sc)
}
