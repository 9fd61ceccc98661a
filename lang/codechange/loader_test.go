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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
Files:
  - FileName: Program.cs
    Methods:
      Global:
        - Anchor: "var app = builder.Build();"
          Mode: before
          Content: "builder.Services.AddRazorPages();"
        - Options: [EF]
          Anchor: "app.Run();"
          Content: "app.MigrateDb();"
  - FileName: _Layout.cshtml
    Replacements:
      - Find: "</head>"
        Content: "<link rel=\"stylesheet\" href=\"site.css\" />\n</head>"
        Scope: ALL
`

func TestParseConfig_YAML(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, cfg.Files, 2)

	prog := cfg.Files[0]
	changes := prog.Methods[GlobalAnchor]
	require.Len(t, changes, 2)
	assert.Equal(t, ModeBefore, changes[0].Mode)
	assert.Equal(t, ModeAfter, changes[1].Mode, "empty mode defaults to After")
	assert.Equal(t, []string{"EF"}, changes[1].Options)

	layout := cfg.Files[1]
	require.Len(t, layout.Replacements, 1)
	assert.Equal(t, ScopeAll, layout.Replacements[0].Scope)
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{"Files":[{"FileName":"Startup.cs","Methods":{"ConfigureServices":[{"Options":[],"Mode":"After","Anchor":"AddControllers()","Content":"AddSingleton<IFoo>"}]}}]}`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	require.Len(t, cfg.Files, 1)
	c := cfg.Files[0].Methods["ConfigureServices"][0]
	assert.Equal(t, "AddControllers()", c.Anchor)
	assert.Equal(t, ModeAfter, c.Mode)
}

func TestParseConfig_ValidationErrors(t *testing.T) {
	data := []byte(`
Files:
  - FileName: ""
  - FileName: a.go
    Methods:
      main:
        - Mode: sideways
          Anchor: x
          Content: y
        - Content: missing anchor
    Replacements:
      - Content: no find
        Scope: some
`)
	_, err := ParseConfig(data)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errs, 5)
}

func TestParseConfig_GlobalEmptyAnchorAllowed(t *testing.T) {
	data := []byte(`
Files:
  - FileName: routes.go
    AddFilePath: internal/routes.go
    Methods:
      Global:
        - Content: "package routes"
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "internal/routes.go", cfg.Files[0].AddFilePath)
}

func TestParseConfig_DuplicateFile(t *testing.T) {
	_, err := ParseConfig([]byte("Files:\n  - FileName: a.go\n  - FileName: A.go\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codechanges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Files, 2)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfigFS(t *testing.T) {
	fsys := fstest.MapFS{"cache/codechanges.yaml": {Data: []byte(sampleYAML)}}
	cfg, err := LoadConfigFS(fsys, "cache/codechanges.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Files, 2)
}

func TestSchemaJSON(t *testing.T) {
	out, err := SchemaJSON()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "FileName")
	assert.Contains(t, s, "Replacements")
	assert.Contains(t, s, "Replace")
}
