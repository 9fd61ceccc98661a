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

package workspace

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// PersistenceError reports a commit that did not write every file.
type PersistenceError struct {
	Written []string
	Failed  []FileFailure
}

func (e *PersistenceError) Error() string {
	paths := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		paths[i] = f.Path
	}
	return fmt.Sprintf("persisted %d file(s), failed %d: %s",
		len(e.Written), len(e.Failed), strings.Join(paths, ", "))
}

// Unwrap exposes the per-file causes to errors.Is and errors.As.
func (e *PersistenceError) Unwrap() []error {
	var errs error
	for _, f := range e.Failed {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return multierr.Errors(errs)
}

// ConflictError marks a file changed on disk by someone else during the run.
type ConflictError struct {
	Path   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
