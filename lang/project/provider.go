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

package project

import (
	"context"
	"encoding/xml"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/vifraa/gopom"
	"github.com/yargevad/filepathx"
	"golang.org/x/mod/modfile"

	"github.com/cloudwego/scaffolder/internal/log"
)

// DefaultIgnoredDirs are never walked.
var DefaultIgnoredDirs = []string{
	".git", ".hg", ".svn", ".idea", ".vscode", ".scaffolder",
	"node_modules", "vendor", "bin", "obj", "dist", "build", "target",
	"__pycache__", ".venv", "venv",
}

// FSProvider resolves projects from the local file system.
type FSProvider struct {
	IgnoredDirs []string
}

// NewProvider returns a FSProvider skipping DefaultIgnoredDirs.
func NewProvider() *FSProvider {
	return &FSProvider{IgnoredDirs: DefaultIgnoredDirs}
}

// Resolve implements Provider.
func (p *FSProvider) Resolve(ctx context.Context, dir string) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve project")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("project %s is not a directory", root)
	}

	proj := &Project{Root: root, Name: filepath.Base(root)}
	if err := p.detect(proj); err != nil {
		return nil, err
	}
	if err := p.collect(ctx, proj); err != nil {
		return nil, err
	}
	log.Debug("Resolved project %s: language=%s manifest=%s module=%s files=%d",
		proj.Name, proj.Language, proj.Manifest, proj.ModulePath, len(proj.Files))
	return proj, nil
}

func (p *FSProvider) detect(proj *Project) error {
	at := func(name string) string { return filepath.Join(proj.Root, name) }

	if data, err := os.ReadFile(at("go.mod")); err == nil {
		proj.Language, proj.Manifest = Golang, "go.mod"
		if mp := modfile.ModulePath(data); mp != "" {
			proj.ModulePath = mp
			proj.Name = filepath.Base(mp)
		}
		return nil
	}

	if _, err := os.Stat(at("pom.xml")); err == nil {
		proj.Language, proj.Manifest = Java, "pom.xml"
		pom, err := gopom.Parse(at("pom.xml"))
		if err != nil {
			return errors.Wrap(err, "parse pom.xml")
		}
		group, artifact := deref(pom.GroupID), deref(pom.ArtifactID)
		if group == "" && pom.Parent != nil {
			group = deref(pom.Parent.GroupID)
		}
		if artifact != "" {
			proj.Name = artifact
			proj.ModulePath = strings.TrimPrefix(group+":"+artifact, ":")
		}
		return nil
	}

	if data, err := os.ReadFile(at("package.json")); err == nil {
		proj.Language, proj.Manifest = JavaScript, "package.json"
		if _, err := os.Stat(at("tsconfig.json")); err == nil {
			proj.Language = TypeScript
		}
		if name := gjson.GetBytes(data, "name").String(); name != "" {
			proj.Name, proj.ModulePath = name, name
		}
		return nil
	}

	if csproj := p.findCSProj(proj.Root); csproj != "" {
		rel, _ := filepath.Rel(proj.Root, csproj)
		proj.Language, proj.Manifest = CSharp, filepath.ToSlash(rel)
		proj.Name = strings.TrimSuffix(filepath.Base(csproj), filepath.Ext(csproj))
		proj.ModulePath = rootNamespace(csproj, proj.Name)
		return nil
	}

	if data, err := os.ReadFile(at("pyproject.toml")); err == nil {
		proj.Language, proj.Manifest = Python, "pyproject.toml"
		var py struct {
			Project struct {
				Name string `toml:"name"`
			} `toml:"project"`
			Tool struct {
				Poetry struct {
					Name string `toml:"name"`
				} `toml:"poetry"`
			} `toml:"tool"`
		}
		if err := toml.Unmarshal(data, &py); err != nil {
			return errors.Wrap(err, "parse pyproject.toml")
		}
		for _, name := range []string{py.Project.Name, py.Tool.Poetry.Name} {
			if name != "" {
				proj.Name, proj.ModulePath = name, name
				break
			}
		}
		return nil
	}
	for _, name := range []string{"requirements.txt", "setup.py"} {
		if _, err := os.Stat(at(name)); err == nil {
			proj.Language, proj.Manifest = Python, name
			return nil
		}
	}
	return nil
}

// findCSProj returns the shallowest *.csproj under root, or "".
func (p *FSProvider) findCSProj(root string) string {
	if top, _ := filepath.Glob(filepath.Join(root, "*.csproj")); len(top) > 0 {
		sort.Strings(top)
		return top[0]
	}
	matches, err := filepathx.Glob(filepath.Join(root, "**", "*.csproj"))
	if err != nil {
		log.Debug("glob csproj under %s: %v", root, err)
		return ""
	}
	best := ""
	for _, m := range matches {
		if p.ignored(root, m) {
			continue
		}
		if best == "" || strings.Count(m, string(filepath.Separator)) < strings.Count(best, string(filepath.Separator)) {
			best = m
		}
	}
	return best
}

func (p *FSProvider) ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, ig := range p.IgnoredDirs {
			if part == ig {
				return true
			}
		}
	}
	return false
}

func (p *FSProvider) collect(ctx context.Context, proj *Project) error {
	skip := make(map[string]bool, len(p.IgnoredDirs))
	for _, d := range p.IgnoredDirs {
		skip[d] = true
	}
	err := filepath.WalkDir(proj.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != proj.Root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(proj.Root, path)
		if err != nil {
			return err
		}
		proj.Files = append(proj.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", proj.Root)
	}
	sort.Strings(proj.Files)
	return nil
}

// rootNamespace reads <RootNamespace> from a csproj, falling back to def.
func rootNamespace(csproj, def string) string {
	data, err := os.ReadFile(csproj)
	if err != nil {
		return def
	}
	var doc struct {
		PropertyGroups []struct {
			RootNamespace string `xml:"RootNamespace"`
		} `xml:"PropertyGroup"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		log.Debug("parse %s: %v", csproj, err)
		return def
	}
	for _, pg := range doc.PropertyGroups {
		if ns := strings.TrimSpace(pg.RootNamespace); ns != "" {
			return ns
		}
	}
	return def
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
