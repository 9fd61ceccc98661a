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

// Package config loads the scaffolder settings file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	DirName  = ".scaffolder"
	FileName = "config.yaml"
)

// Config holds user settings. Flags override it.
type Config struct {
	// ScaffoldsDir holds local scaffold definitions.
	ScaffoldsDir string `yaml:"scaffolds_dir,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`
	NoColor      bool   `yaml:"no_color,omitempty"`
	DryRun       bool   `yaml:"dry_run,omitempty"`
	// MarkupExtensions are extra extensions edited with text replacements.
	MarkupExtensions []string `yaml:"markup_extensions,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{LogLevel: "info"}
}

// Paths lists the candidate config files, most specific first.
func Paths(projectDir string) []string {
	var out []string
	if projectDir != "" {
		out = append(out, filepath.Join(projectDir, DirName, FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, DirName, FileName))
	}
	return out
}

// Load reads the first config file that exists among Paths(projectDir)
// and applies environment overrides. No file means defaults.
func Load(projectDir string) (*Config, error) {
	for _, p := range Paths(projectDir) {
		cfg, err := LoadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg := DefaultConfig()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads one config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.Path = path
	if cfg.ScaffoldsDir != "" {
		cfg.ScaffoldsDir = expandHome(cfg.ScaffoldsDir)
		if !filepath.IsAbs(cfg.ScaffoldsDir) {
			cfg.ScaffoldsDir = filepath.Join(filepath.Dir(path), cfg.ScaffoldsDir)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write config")
}

func (c *Config) applyEnvOverrides() error {
	if dir := os.Getenv("SCAFFOLDER_SCAFFOLDS_DIR"); dir != "" {
		c.ScaffoldsDir = expandHome(dir)
	}
	if lvl := os.Getenv("SCAFFOLDER_LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
	if v := os.Getenv("SCAFFOLDER_NO_COLOR"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return errors.Wrap(err, "SCAFFOLDER_NO_COLOR")
		}
		c.NoColor = b
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
