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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplies_Conjunction(t *testing.T) {
	declared := []string{"A", "B"}

	assert.True(t, Applies(declared, NewOptions("A", "B")))
	assert.True(t, Applies(declared, NewOptions("A", "B", "C")))
	assert.False(t, Applies(declared, NewOptions("A")))
	assert.False(t, Applies(declared, NewOptions("B")))
	assert.False(t, Applies(declared, NewOptions()))
}

func TestApplies_Unconditional(t *testing.T) {
	assert.True(t, Applies(nil, NewOptions()))
	assert.True(t, Applies([]string{}, NewOptions("A")))
}

func TestNewOptions_IgnoresBlank(t *testing.T) {
	o := NewOptions("", "  ", "EF", "EF")
	assert.Equal(t, []string{"EF"}, o.List())
}

func TestCodeFile_Filter(t *testing.T) {
	f := CodeFile{
		FileName: "Program.cs",
		Methods: map[string][]CodeChange{
			GlobalAnchor: {
				{Anchor: "var app", Content: "always"},
				{Anchor: "var app", Content: "ef only", Options: []string{"EF"}},
			},
			"Configure": {
				{Anchor: "UseRouting()", Content: "auth+ef", Options: []string{"EF", "Auth"}},
			},
		},
		Replacements: []TextReplacement{
			{Find: "a", Content: "b"},
			{Find: "c", Content: "d", Options: []string{"Auth"}},
		},
	}

	got := f.Filter(NewOptions("EF"))
	require.Len(t, got.Methods, 1)
	assert.Len(t, got.Methods[GlobalAnchor], 2)
	assert.NotContains(t, got.Methods, "Configure")
	require.Len(t, got.Replacements, 1)
	assert.Equal(t, "a", got.Replacements[0].Find)

	// the source document is left alone
	assert.Len(t, f.Methods, 2)
	assert.Len(t, f.Replacements, 2)

	none := f.Filter(NewOptions())
	assert.Len(t, none.Methods[GlobalAnchor], 1)
	assert.Equal(t, 2, none.ChangeCount())
	assert.Equal(t, 5, f.ChangeCount())
}

func TestCodeFile_AnchorsGlobalFirst(t *testing.T) {
	f := CodeFile{Methods: map[string][]CodeChange{
		"Zeta":       nil,
		GlobalAnchor: nil,
		"Alpha":      nil,
	}}
	assert.Equal(t, []string{GlobalAnchor, "Alpha", "Zeta"}, f.Anchors())
}

func TestCodeFile_Ext(t *testing.T) {
	assert.Equal(t, ".cs", (&CodeFile{FileName: "Startup.txt", Extension: "cs"}).Ext())
	assert.Equal(t, ".go", (&CodeFile{FileName: "main.GO"}).Ext())
	assert.Equal(t, "", (&CodeFile{FileName: "Makefile"}).Ext())
}
