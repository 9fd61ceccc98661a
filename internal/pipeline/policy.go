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
	"errors"
)

// Policy decides what the pipeline does after a step fails. It only
// schedules; it never touches files or the context.
type Policy interface {
	OnStepFailure(ctx context.Context, step Step, sc *ScaffolderContext, rec StepRecord) Decision
}

// Decision is the action to take after a step failure.
type Decision string

const (
	DecisionContinue Decision = "continue"
	DecisionHalt     Decision = "halt"
)

// DefaultPolicy continues past steps marked ContinueOnError and halts on
// everything else. Cancellation always halts.
type DefaultPolicy struct{}

// OnStepFailure implements Policy.
func (DefaultPolicy) OnStepFailure(ctx context.Context, step Step, sc *ScaffolderContext, rec StepRecord) Decision {
	if ctx.Err() != nil || errors.Is(rec.Err, context.Canceled) || errors.Is(rec.Err, context.DeadlineExceeded) {
		return DecisionHalt
	}
	if step.ContinueOnError() {
		return DecisionContinue
	}
	return DecisionHalt
}
