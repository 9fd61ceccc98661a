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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, DirName, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SCAFFOLDER_SCAFFOLDS_DIR", "")
	t.Setenv("SCAFFOLDER_LOG_LEVEL", "")
	t.Setenv("SCAFFOLDER_NO_COLOR", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ProjectBeforeHome(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "log_level: warn\n")
	project := t.TempDir()
	p := writeConfig(t, project, "log_level: debug\nscaffolds_dir: scaffolds\nmarkup_extensions: [.liquid]\n")

	cfg, err := Load(project)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, p, cfg.Path)
	assert.Equal(t, filepath.Join(project, DirName, "scaffolds"), cfg.ScaffoldsDir)
	assert.Equal(t, []string{".liquid"}, cfg.MarkupExtensions)

	cfg, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "log_level: warn\nscaffolds_dir: /etc/scaffolds\n")
	t.Setenv("SCAFFOLDER_LOG_LEVEL", "error")
	t.Setenv("SCAFFOLDER_NO_COLOR", "1")
	t.Setenv("SCAFFOLDER_SCAFFOLDS_DIR", "~/mine")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, filepath.Join(home, "mine"), cfg.ScaffoldsDir)

	t.Setenv("SCAFFOLDER_NO_COLOR", "sometimes")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeConfig(t, project, "log_level: [\n")
	_, err := Load(project)
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), DirName, FileName)
	cfg := &Config{LogLevel: "debug", DryRun: true}
	require.NoError(t, cfg.Save(p))

	got, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "debug", got.LogLevel)
	assert.True(t, got.DryRun)
}
