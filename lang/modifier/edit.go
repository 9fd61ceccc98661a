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

package modifier

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/cloudwego/scaffolder/lang/syntax"
)

// containsContent reports whether content, ignoring all whitespace, is
// already in text. Blank content is never considered present.
func containsContent(text []byte, content string) bool {
	needle := stripSpace(content)
	if needle == "" {
		return false
	}
	return strings.Contains(stripSpace(string(text)), needle)
}

// insertedNear reports whether the text content adds around find already
// sits next to some occurrence of find, ignoring whitespace. When find
// ends with an opening bracket, text added after it may be anywhere up to
// the closing bracket, since formatters reorder such blocks (imports).
func insertedNear(cur, find, content []byte) bool {
	i := bytes.Index(content, find)
	if i < 0 || len(find) == 0 {
		return false
	}
	before := stripSpace(string(content[:i]))
	after := stripSpace(string(content[i+len(find):]))
	if before == "" && after == "" {
		return bytes.Contains(cur, find)
	}
	for off := 0; off < len(cur); {
		j := bytes.Index(cur[off:], find)
		if j < 0 {
			return false
		}
		at := off + j
		end := at + len(find)
		off = end
		if before != "" && !strings.HasSuffix(stripSpace(string(cur[:at])), before) {
			continue
		}
		if after == "" {
			return true
		}
		if rb := closing(find[len(find)-1]); rb != 0 {
			if k := closeBracket(cur, end-1, find[len(find)-1], rb); k >= 0 {
				if strings.Contains(stripSpace(string(cur[end:k])), after) {
					return true
				}
				continue
			}
		}
		if strings.HasPrefix(stripSpace(string(cur[end:])), after) {
			return true
		}
	}
	return false
}

func closing(b byte) byte {
	switch b {
	case '(':
		return ')'
	case '{':
		return '}'
	case '[':
		return ']'
	}
	return 0
}

// closeBracket returns the index of the bracket closing the one at pos,
// or -1.
func closeBracket(src []byte, pos int, lb, rb byte) int {
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

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func splice(src []byte, start, end int, repl []byte) []byte {
	out := make([]byte, 0, len(src)-(end-start)+len(repl))
	out = append(out, src[:start]...)
	out = append(out, repl...)
	return append(out, src[end:]...)
}

func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

func indentAt(src []byte, pos int) string {
	start := lineStart(src, pos)
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// indentLines prefixes every non-empty line of content with indent and
// terminates the block with a newline.
func indentLines(content, indent string) []byte {
	lines := strings.Split(strings.TrimRight(content, "\r\n"), "\n")
	var b bytes.Buffer
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			b.WriteString(indent)
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// insertLineBefore puts content on its own lines above the line where
// stmt starts, at the same indentation. It returns where the block went.
func insertLineBefore(src []byte, stmt syntax.Span, content string) ([]byte, int) {
	at := lineStart(src, stmt.Start)
	return splice(src, at, at, indentLines(content, indentAt(src, stmt.Start))), at
}

// insertLineAfter puts content on its own lines below the line where stmt
// ends, indented like the line where stmt starts. It returns where the
// block went.
func insertLineAfter(src []byte, stmt syntax.Span, content string) ([]byte, int) {
	block := indentLines(content, indentAt(src, stmt.Start))
	nl := bytes.IndexByte(src[stmt.End:], '\n')
	if nl < 0 {
		return insertBlock(src, len(src), block), len(src)
	}
	at := stmt.End + nl + 1
	return insertBlock(src, at, block), at
}

// insertBlock inserts a newline terminated block at the line start at. At
// the end of a file without a final newline the block goes on a new line
// and the file keeps ending without one.
func insertBlock(src []byte, at int, block []byte) []byte {
	if at == len(src) && len(src) > 0 && src[len(src)-1] != '\n' {
		out := append([]byte{}, src...)
		out = append(out, '\n')
		return append(out, bytes.TrimRight(block, "\n")...)
	}
	return splice(src, at, at, block)
}

// lineAfter returns the start of the line following the last line of
// content, looked up verbatim after the first marker, or -1.
func lineAfter(src []byte, marker, content string) int {
	m := bytes.Index(src, []byte(marker))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if m < 0 || last == "" {
		return -1
	}
	i := bytes.Index(src[m:], []byte(last))
	if i < 0 {
		return -1
	}
	end := m + i + len(last)
	if nl := bytes.IndexByte(src[end:], '\n'); nl >= 0 {
		return end + nl + 1
	}
	return len(src)
}

func prepend(src []byte, content string) []byte {
	return splice(src, 0, 0, indentLines(content, ""))
}

func appendLine(src []byte, content string) []byte {
	out := append([]byte{}, src...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, indentLines(content, "")...)
}
