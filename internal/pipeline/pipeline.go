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

// Package pipeline runs the ordered steps of a scaffold against one
// ScaffolderContext.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
)

// Pipeline runs steps in sequence. Steps[i] is bound by Preparers[i].
type Pipeline struct {
	Steps     []Step
	Preparers []Preparer
	// Policy decides on failures; nil means DefaultPolicy.
	Policy Policy
}

// New pairs steps with preparers. The two lists must have the same length.
func New(steps []Step, preparers []Preparer) (*Pipeline, error) {
	p := &Pipeline{Steps: steps, Preparers: preparers}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) check() error {
	if len(p.Steps) != len(p.Preparers) {
		return errors.Errorf("%d steps but %d preparers", len(p.Steps), len(p.Preparers))
	}
	for i, s := range p.Steps {
		if s == nil {
			return errors.Errorf("step %d is nil", i)
		}
		if p.Preparers[i] == nil {
			return errors.Errorf("preparer of step %d (%s) is nil", i, s.Name())
		}
	}
	return nil
}

// Run executes the steps in order. For each step the preparer's Pre binds
// it, the step executes unless the binding skips it, and the preparer's Post
// runs once the outcome is known. A failure the policy does not tolerate
// halts the run: no later step or preparer runs, and the Post of the failing
// step is not called.
//
// The result is never nil. The error is a *StepExecutionError when a step
// halted the run.
func (p *Pipeline) Run(ctx context.Context, sc *ScaffolderContext) (*RunResult, error) {
	res := &RunResult{RunID: sc.RunID, StartedAt: time.Now()}
	defer func() { res.EndedAt = time.Now() }()

	if err := p.check(); err != nil {
		return res, err
	}
	policy := p.Policy
	if policy == nil {
		policy = DefaultPolicy{}
	}

	for i, step := range p.Steps {
		rec := StepRecord{StepName: step.Name(), Index: i, StartedAt: time.Now()}
		phase := p.runStep(ctx, i, step, sc, &rec)
		rec.EndedAt = time.Now()

		if rec.Status == StepFailed {
			if policy.OnStepFailure(ctx, step, sc, rec) == DecisionHalt {
				return p.halt(res, rec, phase)
			}
			rec.Tolerated = true
			log.Warn("Step %s failed, continuing: %v", rec.StepName, rec.Err)
		} else {
			log.Debug("Step %s %s in %s", rec.StepName, rec.Status, rec.Duration())
		}

		if err := p.post(ctx, i, step, sc, rec); err != nil {
			rec.Status, rec.Err = StepFailed, err
			if policy.OnStepFailure(ctx, step, sc, rec) == DecisionHalt {
				return p.halt(res, rec, "post")
			}
			rec.Tolerated = true
			log.Warn("Step %s post-processing failed, continuing: %v", rec.StepName, err)
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func (p *Pipeline) halt(res *RunResult, rec StepRecord, phase string) (*RunResult, error) {
	res.Records = append(res.Records, rec)
	res.Halted = &res.Records[len(res.Records)-1]
	log.Error("Step %s failed, halting: %v", rec.StepName, rec.Err)
	return res, &StepExecutionError{Step: rec.StepName, Index: rec.Index, Phase: phase, Err: rec.Err}
}

// runStep resolves the outcome of one step into rec and returns the phase
// a failure happened in.
func (p *Pipeline) runStep(ctx context.Context, i int, step Step, sc *ScaffolderContext, rec *StepRecord) string {
	if err := ctx.Err(); err != nil {
		rec.Status, rec.Err = StepFailed, err
		return "prepare"
	}
	b, err := p.pre(ctx, i, step, sc)
	if err != nil {
		rec.Status, rec.Err = StepFailed, errors.Wrap(err, "prepare")
		return "prepare"
	}
	if b.SkipStep {
		rec.Status = StepSkipped
		return ""
	}
	if err := execute(ctx, step, sc, b); err != nil {
		rec.Status, rec.Err = StepFailed, err
		return "execute"
	}
	rec.Status = StepOK
	return ""
}

func (p *Pipeline) pre(ctx context.Context, i int, step Step, sc *ScaffolderContext) (b Binding, err error) {
	defer recoverInto(&err)
	return p.Preparers[i].Pre(ctx, step, sc)
}

func (p *Pipeline) post(ctx context.Context, i int, step Step, sc *ScaffolderContext, rec StepRecord) (err error) {
	defer recoverInto(&err)
	return p.Preparers[i].Post(ctx, step, sc, rec)
}

func execute(ctx context.Context, step Step, sc *ScaffolderContext, b Binding) (err error) {
	defer recoverInto(&err)
	return step.Execute(ctx, sc, b)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}
