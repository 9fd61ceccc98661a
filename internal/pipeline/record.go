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
	"time"
)

// StepRecord is an immutable log entry for one step of a run.
type StepRecord struct {
	StepName string
	Index    int
	Status   StepStatus
	Err      error
	// Tolerated is set on failures the run continued past.
	Tolerated bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is how long the step took, preparers included.
func (r StepRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// StepStatus is the outcome of a step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// RunResult is the structured outcome of a run. It names every step that
// was reached, in order.
type RunResult struct {
	RunID     string
	Records   []StepRecord
	StartedAt time.Time
	EndedAt   time.Time
	// Halted is the record of the failure that stopped the run, if any.
	Halted *StepRecord
}

// OK reports whether the run reached its end.
func (r *RunResult) OK() bool { return r.Halted == nil }

// Record returns the record of the named step, if it was reached.
func (r *RunResult) Record(name string) (StepRecord, bool) {
	for _, rec := range r.Records {
		if rec.StepName == name {
			return rec, true
		}
	}
	return StepRecord{}, false
}

// Failed lists the records of failed steps, tolerated or not.
func (r *RunResult) Failed() []StepRecord {
	var out []StepRecord
	for _, rec := range r.Records {
		if rec.Status == StepFailed {
			out = append(out, rec)
		}
	}
	return out
}
