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

package template

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Funcs is the function map shared by every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"title":   Title,
		"pascal":  Pascal,
		"camel":   Camel,
		"snake":   Snake,
		"kebab":   Kebab,
		"join":    strings.Join,
		"replace": strings.ReplaceAll,
		"trim":    strings.TrimSpace,
		"quote":   strconv.Quote,
		"default": func(def, v any) any {
			if v == nil || fmt.Sprint(v) == "" {
				return def
			}
			return v
		},
	}
}

// Title upper-cases the first letter of every word.
func Title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// words splits identifiers like "orderItem", "order_item", "Order-Item" or
// "HTTPServer" into lower-case words.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]))
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			prevUpper := i > 0 && unicode.IsUpper(rs[i-1])
			if prevLower || (prevUpper && nextLower) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

// Pascal renders s as PascalCase.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// Camel renders s as camelCase.
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	r := []rune(p)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Snake renders s as snake_case.
func Snake(s string) string { return strings.Join(words(s), "_") }

// Kebab renders s as kebab-case.
func Kebab(s string) string { return strings.Join(words(s), "-") }
