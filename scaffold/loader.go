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

package scaffold

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Loader reads and validates scaffold definitions.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Parse decodes a scaffold.yaml. Unknown keys are errors.
func (l *Loader) Parse(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "decode scaffold definition")
	}
	return &def, nil
}

// LoadFS loads the scaffold in directory dir of fsys.
func (l *Loader) LoadFS(fsys fs.FS, dir string, source Source) (*Definition, error) {
	file := path.Join(dir, DefinitionFileName)
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	def, err := l.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", file)
	}
	if err := Validate(def, dir); err != nil {
		return nil, err
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dir)
	}
	def.Source, def.Dir, def.FS = source, dir, sub
	if err := checkResources(def); err != nil {
		return nil, err
	}
	return def, nil
}

// LoadDir loads the scaffold in the local directory dir.
func (l *Loader) LoadDir(dir string) (*Definition, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	def, err := l.LoadFS(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), SourceLocal)
	if err != nil {
		return nil, err
	}
	def.Dir = abs
	return def, nil
}

// LoadAll loads every scaffold found under root of fsys. Broken
// definitions are reported in the returned error and do not stop the
// others from loading.
func (l *Loader) LoadAll(fsys fs.FS, root string, source Source) ([]*Definition, error) {
	var (
		defs []*Definition
		errs error
	)
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != DefinitionFileName {
			return nil
		}
		def, err := l.LoadFS(fsys, path.Dir(p), source)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		defs = append(defs, def)
		return fs.SkipDir
	})
	if err != nil {
		return defs, errors.Wrapf(err, "walk %s", root)
	}
	return defs, errs
}

// checkResources verifies referenced templates and code-change files exist.
func checkResources(def *Definition) error {
	var problems []string
	exists := func(name string) {
		if _, err := fs.Stat(def.FS, name); err != nil {
			problems = append(problems, "missing file "+name)
		}
	}
	for _, s := range def.Steps {
		for _, t := range s.Templates {
			exists(t.Template)
		}
		if s.CodeChanges != "" {
			exists(s.CodeChanges)
		}
	}
	if len(problems) > 0 {
		return &DefinitionError{Path: def.Dir, Problems: problems}
	}
	return nil
}
