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

// Package codechange is the declarative model of edits a scaffold applies
// to existing files of a project.
package codechange

import (
	"path/filepath"
	"sort"
	"strings"
)

// GlobalAnchor is the reserved anchor naming the top-level scope of a file.
const GlobalAnchor = "Global"

// InsertionMode says where Content lands relative to the located marker.
type InsertionMode string

const (
	ModeBefore  InsertionMode = "Before"
	ModeAfter   InsertionMode = "After"
	ModeReplace InsertionMode = "Replace"
)

// ParseInsertionMode is case-insensitive. An empty mode means After.
func ParseInsertionMode(s string) (InsertionMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "after":
		return ModeAfter, true
	case "before":
		return ModeBefore, true
	case "replace":
		return ModeReplace, true
	}
	return "", false
}

// MatchScope selects which occurrences of a TextReplacement's Find string
// are replaced.
type MatchScope string

const (
	ScopeFirst MatchScope = "first"
	ScopeAll   MatchScope = "all"
)

// CodeChange is an edit relative to a marker inside an anchor scope.
type CodeChange struct {
	// Options are the scenario flags that must all be active.
	Options []string      `json:"Options,omitempty" yaml:"Options,omitempty"`
	Mode    InsertionMode `json:"Mode,omitempty" yaml:"Mode,omitempty" jsonschema:"enum=Before,enum=After,enum=Replace"`
	// Anchor is the marker text searched for inside the scope. It may be
	// empty only under GlobalAnchor, where it means start or end of file.
	Anchor  string `json:"Anchor,omitempty" yaml:"Anchor,omitempty"`
	Content string `json:"Content" yaml:"Content"`
}

// TextReplacement is a literal find/replace on raw text.
type TextReplacement struct {
	Description string     `json:"Description,omitempty" yaml:"Description,omitempty"`
	Options     []string   `json:"Options,omitempty" yaml:"Options,omitempty"`
	Find        string     `json:"Find" yaml:"Find"`
	Content     string     `json:"Content" yaml:"Content"`
	Scope       MatchScope `json:"Scope,omitempty" yaml:"Scope,omitempty" jsonschema:"enum=first,enum=all"`
}

// CodeFile declares every edit a scaffold may make to one file.
type CodeFile struct {
	FileName string `json:"FileName" yaml:"FileName"`
	// Extension overrides the category derived from FileName, e.g. ".cs".
	Extension string `json:"Extension,omitempty" yaml:"Extension,omitempty"`
	// AddFilePath is where the file is created when the project lacks it.
	AddFilePath  string                  `json:"AddFilePath,omitempty" yaml:"AddFilePath,omitempty"`
	Methods      map[string][]CodeChange `json:"Methods,omitempty" yaml:"Methods,omitempty"`
	Replacements []TextReplacement       `json:"Replacements,omitempty" yaml:"Replacements,omitempty"`
}

// Ext returns the declared extension, falling back to the one of FileName.
// The result is lower-case and starts with a dot.
func (f *CodeFile) Ext() string {
	ext := f.Extension
	if ext == "" {
		ext = filepath.Ext(f.FileName)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// Anchors returns the anchor names in processing order: GlobalAnchor
// first, then the others sorted.
func (f *CodeFile) Anchors() []string {
	out := make([]string, 0, len(f.Methods))
	global := false
	for name := range f.Methods {
		if name == GlobalAnchor {
			global = true
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	if global {
		out = append([]string{GlobalAnchor}, out...)
	}
	return out
}

// ChangeCount is the number of declared edits in the file.
func (f *CodeFile) ChangeCount() int {
	n := len(f.Replacements)
	for _, cs := range f.Methods {
		n += len(cs)
	}
	return n
}

// Config is a whole code-change configuration: the files in the order
// they are processed.
type Config struct {
	Files []CodeFile `json:"Files" yaml:"Files"`
}
