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

package syntax

import (
	"regexp"
	"strings"
)

// Text locates anchors in files without a grammar by matching braces.
type Text struct {
	src []byte
}

// ParseText wraps src for textual anchor lookups.
func ParseText(src []byte) *Text {
	return &Text{src: src}
}

// FindScope returns the brace-delimited body following `anchor(...)`.
// globalAnchor resolves to the whole file.
func (t *Text) FindScope(anchor, globalAnchor string) (Span, bool) {
	if anchor == globalAnchor {
		return Span{Start: 0, End: len(t.src)}, true
	}
	return braceScope(t.src, anchor)
}

// StatementAt never finds a statement; callers fall back to the marker.
func (t *Text) StatementAt(start, end int, within Span) (Span, bool) {
	return Span{}, false
}

// Close implements the same contract as Tree.Close.
func (t *Text) Close() {}

// braceScope finds `name(...) ... {...}` textually. It is the fallback
// for files whose syntax tree is damaged around the declaration.
func braceScope(src []byte, name string) (Span, bool) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	if err != nil {
		return Span{}, false
	}
	for _, loc := range re.FindAllIndex(src, -1) {
		closeParen := matching(src, loc[1]-1, '(', ')')
		if closeParen < 0 {
			continue
		}
		open := -1
		for i := closeParen + 1; i < len(src); i++ {
			c := src[i]
			if c == '{' {
				open = i
				break
			}
			// a call site, not a declaration
			if c == ';' || c == ')' || c == ',' {
				break
			}
		}
		if open < 0 {
			continue
		}
		end := matching(src, open, '{', '}')
		if end < 0 {
			continue
		}
		return Span{Start: open, End: end + 1}, true
	}
	return Span{}, false
}

// matching returns the index of the bracket closing the one at pos.
func matching(src []byte, pos int, lb, rb byte) int {
	depth := 0
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case lb:
			depth++
		case rb:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
