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

// Package template renders brand-new files from parameterized templates.
// Files ending in .j2 or .jinja are Jinja templates; everything else is a
// Go text/template.
package template

import (
	"bytes"
	"context"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/nikolalohinski/gonja"
	"github.com/pkg/errors"
)

// Model is the data a template is rendered with.
type Model map[string]any

// Engine renders templates.
type Engine interface {
	// Render renders the template file name from fsys.
	Render(ctx context.Context, fsys fs.FS, name string, model Model) ([]byte, error)
	// RenderString renders an inline Go template, e.g. an output path.
	RenderString(src string, model Model) (string, error)
}

// Renderer is the default Engine.
type Renderer struct {
	funcs template.FuncMap
}

// New returns a Renderer with Funcs plus extra.
func New(extra template.FuncMap) *Renderer {
	funcs := Funcs()
	for k, v := range extra {
		funcs[k] = v
	}
	return &Renderer{funcs: funcs}
}

// IsJinja reports whether name is rendered with the Jinja dialect.
func IsJinja(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".j2", ".jinja", ".jinja2":
		return true
	}
	return false
}

// Render implements Engine.
func (r *Renderer) Render(ctx context.Context, fsys fs.FS, name string, model Model) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read template %s", name)
	}
	if IsJinja(name) {
		tpl, err := gonja.FromBytes(src)
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", name)
		}
		out, err := tpl.Execute(gonja.Context(model))
		if err != nil {
			return nil, errors.Wrapf(err, "render template %s", name)
		}
		// generated files keep the template's final newline
		if bytes.HasSuffix(src, []byte("\n")) && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		return []byte(out), nil
	}
	tpl, err := template.New(path.Base(name)).Funcs(r.funcs).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, model); err != nil {
		return nil, errors.Wrapf(err, "render template %s", name)
	}
	return buf.Bytes(), nil
}

// RenderString implements Engine.
func (r *Renderer) RenderString(src string, model Model) (string, error) {
	if !strings.Contains(src, "{{") {
		return src, nil
	}
	tpl, err := template.New("inline").Funcs(r.funcs).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", src)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, model); err != nil {
		return "", errors.Wrapf(err, "render %q", src)
	}
	return buf.String(), nil
}

// OutputName strips the template extension: "cache.go.tmpl" -> "cache.go".
func OutputName(name string) string {
	for _, ext := range []string{".tmpl", ".tpl", ".j2", ".jinja", ".jinja2"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
