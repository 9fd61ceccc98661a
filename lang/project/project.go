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

// Package project resolves a directory on disk into the read-only project
// model scaffolding steps work against.
package project

import (
	"context"
	"path"
	"sort"
	"strings"
)

// Language of a project, decided by its manifest.
type Language string

const (
	Unknown    Language = ""
	Golang     Language = "go"
	CSharp     Language = "csharp"
	Java       Language = "java"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
)

func (l Language) String() string {
	if l == Unknown {
		return "unknown"
	}
	return string(l)
}

// Project is the structural model of one project. Paths are slash
// separated and relative to Root.
type Project struct {
	Root     string
	Name     string
	Language Language
	// Manifest is the file declaring the project, e.g. go.mod or pom.xml.
	Manifest string
	// ModulePath is the import root: Go module path, Maven
	// groupId:artifactId, npm package name or C# root namespace.
	ModulePath string
	Files      []string
}

// HasFile reports whether rel is one of the project files.
func (p *Project) HasFile(rel string) bool {
	i := sort.SearchStrings(p.Files, rel)
	return i < len(p.Files) && p.Files[i] == rel
}

// FilesWithExt lists project files whose extension is ext, case-insensitive.
func (p *Project) FilesWithExt(ext string) []string {
	var out []string
	for _, f := range p.Files {
		if strings.EqualFold(path.Ext(f), ext) {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the project files named name, case-insensitive, shallowest
// first.
func (p *Project) Find(name string) []string {
	var out []string
	for _, f := range p.Files {
		if strings.EqualFold(path.Base(f), name) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Count(out[i], "/") < strings.Count(out[j], "/")
	})
	return out
}

// Provider resolves a directory into a Project.
type Provider interface {
	Resolve(ctx context.Context, dir string) (*Project, error)
}
