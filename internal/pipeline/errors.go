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
	"fmt"
)

// StepExecutionError is returned by Run when a step failure halts the run.
type StepExecutionError struct {
	Step  string
	Index int
	// Phase is "prepare", "execute" or "post".
	Phase string
	Err   error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s) failed during %s: %v", e.Index, e.Step, e.Phase, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panicking step or preparer.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
