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

package codechange

import (
	"sort"
	"strings"
)

// Options is the set of scenario flags active for one invocation.
type Options map[string]struct{}

// NewOptions builds an Options set. Blank flags are ignored.
func NewOptions(flags ...string) Options {
	o := make(Options, len(flags))
	for _, f := range flags {
		if f = strings.TrimSpace(f); f != "" {
			o[f] = struct{}{}
		}
	}
	return o
}

// Has reports whether flag is active.
func (o Options) Has(flag string) bool {
	_, ok := o[flag]
	return ok
}

// List returns the active flags sorted.
func (o Options) List() []string {
	out := make([]string, 0, len(o))
	for f := range o {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Applies reports whether an edit declaring the given flags fires under
// active: every declared flag must be active. No declared flags means the
// edit is unconditional.
func Applies(declared []string, active Options) bool {
	for _, f := range declared {
		if !active.Has(f) {
			return false
		}
	}
	return true
}

// Filter returns a copy of f holding only the edits that apply under
// active. Anchors left without changes are dropped. f is not modified.
func (f *CodeFile) Filter(active Options) CodeFile {
	out := CodeFile{
		FileName:    f.FileName,
		Extension:   f.Extension,
		AddFilePath: f.AddFilePath,
	}
	for anchor, changes := range f.Methods {
		var kept []CodeChange
		for _, c := range changes {
			if Applies(c.Options, active) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if out.Methods == nil {
			out.Methods = make(map[string][]CodeChange)
		}
		out.Methods[anchor] = kept
	}
	for _, r := range f.Replacements {
		if Applies(r.Options, active) {
			out.Replacements = append(out.Replacements, r)
		}
	}
	return out
}
