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
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseConfig decodes a configuration in YAML or JSON (JSON is valid
// YAML) and validates it. Modes and scopes are normalized.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode code change config")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses the configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read code change config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// LoadConfigFS reads and parses the configuration at path inside fsys.
func LoadConfigFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read code change config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Errs []string
}

func (e *ValidationError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0]
	}
	return fmt.Sprintf("invalid code change config (%d errors): %s", len(e.Errs), strings.Join(e.Errs, "; "))
}

func (c *Config) normalize() error {
	var errs []string
	seen := make(map[string]bool, len(c.Files))
	for i := range c.Files {
		f := &c.Files[i]
		if strings.TrimSpace(f.FileName) == "" {
			errs = append(errs, fmt.Sprintf("file #%d: FileName is empty", i))
			continue
		}
		key := strings.ToLower(f.FileName)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("file %s: declared more than once", f.FileName))
		}
		seen[key] = true

		for anchor, changes := range f.Methods {
			if strings.TrimSpace(anchor) == "" {
				errs = append(errs, fmt.Sprintf("file %s: empty anchor name", f.FileName))
			}
			for j := range changes {
				ch := &changes[j]
				mode, ok := ParseInsertionMode(string(ch.Mode))
				if !ok {
					errs = append(errs, fmt.Sprintf("file %s, %s[%d]: unknown mode %q", f.FileName, anchor, j, ch.Mode))
				}
				ch.Mode = mode
				if ch.Anchor == "" && (anchor != GlobalAnchor || mode == ModeReplace) {
					errs = append(errs, fmt.Sprintf("file %s, %s[%d]: Anchor is required", f.FileName, anchor, j))
				}
				if ch.Content == "" && mode != ModeReplace {
					errs = append(errs, fmt.Sprintf("file %s, %s[%d]: Content is empty", f.FileName, anchor, j))
				}
			}
		}
		for j := range f.Replacements {
			r := &f.Replacements[j]
			if r.Find == "" {
				errs = append(errs, fmt.Sprintf("file %s, replacement %d: Find is empty", f.FileName, j))
			}
			switch MatchScope(strings.ToLower(string(r.Scope))) {
			case "", ScopeFirst:
				r.Scope = ScopeFirst
			case ScopeAll:
				r.Scope = ScopeAll
			default:
				errs = append(errs, fmt.Sprintf("file %s, replacement %d: unknown scope %q", f.FileName, j, r.Scope))
			}
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}
