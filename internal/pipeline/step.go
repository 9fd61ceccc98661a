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

	"github.com/pkg/errors"
)

// Step is one unit of work in a scaffold. Steps are built once and may be
// reused across runs, so they hold no per-run state: everything a run
// decides arrives in the Binding produced by the step's Preparer.
type Step interface {
	Name() string
	// ContinueOnError is fixed per step definition.
	ContinueOnError() bool
	// Execute does the work. It must observe ctx and return promptly with
	// an error once ctx is done.
	Execute(ctx context.Context, sc *ScaffolderContext, b Binding) error
}

// Binding is the per-run configuration of one step, built fresh for each
// run.
type Binding struct {
	SkipStep bool
	// Config is step specific; see ConfigAs.
	Config any
}

// ConfigAs returns b.Config as T. A nil Config yields the zero T.
func ConfigAs[T any](b Binding) (T, error) {
	var zero T
	if b.Config == nil {
		return zero, nil
	}
	v, ok := b.Config.(T)
	if !ok {
		return zero, errors.Errorf("step config is %T, want %T", b.Config, zero)
	}
	return v, nil
}

// Preparer binds a step to the run before it executes and harvests its
// results afterwards. Preparers pair with steps by position.
type Preparer interface {
	Pre(ctx context.Context, step Step, sc *ScaffolderContext) (Binding, error)
	Post(ctx context.Context, step Step, sc *ScaffolderContext, rec StepRecord) error
}

// PreparerFuncs adapts plain functions to Preparer. Nil funcs do nothing.
type PreparerFuncs struct {
	PreFunc  func(ctx context.Context, step Step, sc *ScaffolderContext) (Binding, error)
	PostFunc func(ctx context.Context, step Step, sc *ScaffolderContext, rec StepRecord) error
}

// Pre implements Preparer.
func (p PreparerFuncs) Pre(ctx context.Context, step Step, sc *ScaffolderContext) (Binding, error) {
	if p.PreFunc == nil {
		return Binding{}, nil
	}
	return p.PreFunc(ctx, step, sc)
}

// Post implements Preparer.
func (p PreparerFuncs) Post(ctx context.Context, step Step, sc *ScaffolderContext, rec StepRecord) error {
	if p.PostFunc == nil {
		return nil
	}
	return p.PostFunc(ctx, step, sc, rec)
}

// NopPreparer binds nothing and harvests nothing.
var NopPreparer Preparer = PreparerFuncs{}
