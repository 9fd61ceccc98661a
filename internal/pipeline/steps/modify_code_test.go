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

package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/codechange"
	"github.com/cloudwego/scaffolder/lang/modifier"
	"github.com/cloudwego/scaffolder/lang/workspace"
)

const startupCS = `public class Startup
{
    public void ConfigureServices(IServiceCollection services)
    {
        services.AddControllers();
    }
}
`

const mainGo = `package main

import "net/http"

func main() {
	mux := http.NewServeMux()
	http.ListenAndServe(":8080", mux)
}
`

func runModify(t *testing.T, sc *pipeline.ScaffolderContext, cfg ModifyCodeConfig) (*modifier.Summary, error) {
	t.Helper()
	err := NewModifyCodeStep(modifier.New(), false).Execute(context.Background(), sc, pipeline.Binding{Config: cfg})
	summary, ok := pipeline.Property[*modifier.Summary](sc, PropertySummary)
	require.True(t, ok)
	return summary, err
}

func TestModifyCodeStep_Idempotent(t *testing.T) {
	dir := fixture(t, map[string]string{
		"Web.csproj":     `<Project Sdk="Microsoft.NET.Sdk.Web"></Project>`,
		"src/Startup.cs": startupCS,
	})
	changes := &codechange.Config{Files: []codechange.CodeFile{{
		FileName: "Startup.cs",
		Methods: map[string][]codechange.CodeChange{
			"ConfigureServices": {{Mode: codechange.ModeAfter, Anchor: "AddControllers()", Content: "services.AddSingleton<IFoo, Foo>();"}},
		},
	}}}

	summary, err := runModify(t, resolved(t, dir), ModifyCodeConfig{Changes: changes})
	require.NoError(t, err)
	require.Len(t, summary.Modified(), 1)
	assert.Equal(t, "src/Startup.cs", summary.Modified()[0].Path)
	first := read(t, dir, "src/Startup.cs")
	assert.Contains(t, first, "        services.AddControllers();\n        services.AddSingleton<IFoo, Foo>();\n")

	summary, err = runModify(t, resolved(t, dir), ModifyCodeConfig{Changes: changes})
	require.NoError(t, err)
	assert.Empty(t, summary.Modified())
	assert.Len(t, summary.AlreadyApplied(), 1)
	assert.Equal(t, first, read(t, dir, "src/Startup.cs"))
}

func TestModifyCodeStep_MissingAndCreated(t *testing.T) {
	dir := fixture(t, map[string]string{"Web.csproj": `<Project></Project>`})
	changes := &codechange.Config{Files: []codechange.CodeFile{
		{
			FileName: "Program.cs",
			Methods: map[string][]codechange.CodeChange{
				"Main": {{Anchor: "Run()", Content: "UseCache();"}},
			},
		},
		{
			FileName:    "CacheOptions.cs",
			AddFilePath: "Options",
			Methods: map[string][]codechange.CodeChange{
				codechange.GlobalAnchor: {{Content: "public class CacheOptions { }"}},
			},
		},
	}}

	sc := resolved(t, dir)
	summary, err := runModify(t, sc, ModifyCodeConfig{Changes: changes})
	require.NoError(t, err)

	missing := summary.Lookup("Program.cs")
	require.NotNil(t, missing)
	assert.Equal(t, modifier.FileSkipped, missing.Status)
	assert.Equal(t, modifier.StatusFileNotFound, missing.Changes[0].Status)

	created := summary.Lookup("Options/CacheOptions.cs")
	require.NotNil(t, created)
	assert.True(t, created.Created)
	assert.Equal(t, modifier.FileModified, created.Status)
	assert.Contains(t, read(t, dir, "Options/CacheOptions.cs"), "public class CacheOptions { }")
}

func TestModifyCodeStep_FailureIsolated(t *testing.T) {
	dir := fixture(t, map[string]string{
		"go.mod":     "module example.com/app\n",
		"main.go":    mainGo,
		"Startup.cs": startupCS,
	})
	changes := &codechange.Config{Files: []codechange.CodeFile{
		{
			FileName: "main.go",
			Methods: map[string][]codechange.CodeChange{
				"main": {{Anchor: "http.NewServeMux()", Content: "func {{{"}},
			},
		},
		{
			FileName: "Startup.cs",
			Methods: map[string][]codechange.CodeChange{
				"ConfigureServices": {{Anchor: "AddControllers()", Content: "services.AddMemoryCache();"}},
			},
		},
	}}

	summary, err := runModify(t, resolved(t, dir), ModifyCodeConfig{Changes: changes})
	require.NoError(t, err)
	require.Len(t, summary.Failed(), 1)
	assert.Equal(t, "main.go", summary.Failed()[0].Path)
	assert.False(t, summary.OK())
	assert.Equal(t, mainGo, read(t, dir, "main.go"))
	assert.Contains(t, read(t, dir, "Startup.cs"), "services.AddMemoryCache();")
}

func TestModifyCodeStep_FlagsAndDryRun(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n", "main.go": mainGo})
	changes := &codechange.Config{Files: []codechange.CodeFile{{
		FileName: "main.go",
		Methods: map[string][]codechange.CodeChange{
			"main": {{Options: []string{"UseTLS"}, Mode: codechange.ModeReplace, Anchor: "http.ListenAndServe(", Content: "http.ListenAndServeTLS("}},
		},
	}}}

	summary, err := runModify(t, resolved(t, dir), ModifyCodeConfig{Changes: changes})
	require.NoError(t, err)
	assert.Empty(t, summary.Modified())

	sc := resolved(t, dir)
	summary, err = runModify(t, sc, ModifyCodeConfig{Changes: changes, Flags: []string{"UseTLS"}, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, summary.Modified(), 1)
	assert.Equal(t, mainGo, read(t, dir, "main.go"))

	reports, _ := pipeline.Property[[]*workspace.CommitReport](sc, PropertyCommits)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].DryRun)
	assert.Equal(t, []string{"main.go"}, reports[0].Written)
}

func TestModifyCodeStep_FileEditedOncePerRun(t *testing.T) {
	dir := fixture(t, map[string]string{
		"Web.csproj":     `<Project Sdk="Microsoft.NET.Sdk.Web"></Project>`,
		"src/Startup.cs": startupCS,
	})
	edit := func(content string) codechange.CodeFile {
		return codechange.CodeFile{
			FileName: "Startup.cs",
			Methods: map[string][]codechange.CodeChange{
				"ConfigureServices": {{Mode: codechange.ModeAfter, Anchor: "AddControllers()", Content: content}},
			},
		}
	}

	sc := resolved(t, dir)
	summary, err := runModify(t, sc, ModifyCodeConfig{Changes: &codechange.Config{Files: []codechange.CodeFile{
		edit("services.AddMemoryCache();"),
		edit("services.AddRouting();"),
	}}})
	require.NoError(t, err)
	res := summary.Lookup("src/Startup.cs")
	require.NotNil(t, res)
	assert.Equal(t, modifier.FileModified, res.Status)
	last := res.Changes[len(res.Changes)-1]
	assert.Equal(t, modifier.StatusDuplicateFile, last.Status)
	assert.True(t, last.Skipped())

	again, err := runModify(t, sc, ModifyCodeConfig{Changes: &codechange.Config{Files: []codechange.CodeFile{
		edit("services.AddCors();"),
	}}})
	require.NoError(t, err)
	assert.Same(t, summary, again)
	require.Len(t, again.Files, 1)
	assert.Equal(t, modifier.StatusDuplicateFile, again.Files[0].Changes[len(again.Files[0].Changes)-1].Status)

	out := read(t, dir, "src/Startup.cs")
	assert.Equal(t, 1, strings.Count(out, "services.AddMemoryCache();"))
	assert.NotContains(t, out, "services.AddRouting();")
	assert.NotContains(t, out, "services.AddCors();")
}

func TestModifyCodeStep_NoChanges(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n"})
	summary, err := runModify(t, resolved(t, dir), ModifyCodeConfig{})
	require.NoError(t, err)
	assert.True(t, summary.OK())
	assert.Empty(t, summary.Files)
}

func TestLocate(t *testing.T) {
	dir := fixture(t, map[string]string{
		"go.mod":             "module example.com/app\n",
		"internal/a/util.go": "package a\n",
		"internal/b/util.go": "package b\n",
		"cmd/server/main.go": "package main\n",
		"internal/Config.go": "package internal\n",
	})
	sc := resolved(t, dir)
	proj, tx, err := projectOf(sc)
	require.NoError(t, err)

	target, created, ok := locate(proj, tx, codechange.CodeFile{FileName: "internal/b/util.go"})
	assert.True(t, ok)
	assert.False(t, created)
	assert.Equal(t, "internal/b/util.go", target)

	target, _, ok = locate(proj, tx, codechange.CodeFile{FileName: "main.go"})
	assert.True(t, ok)
	assert.Equal(t, "cmd/server/main.go", target)

	target, _, ok = locate(proj, tx, codechange.CodeFile{FileName: "config.go"})
	assert.True(t, ok)
	assert.True(t, strings.EqualFold(target, "internal/Config.go"))

	_, _, ok = locate(proj, tx, codechange.CodeFile{FileName: "internal/c/util.go"})
	assert.False(t, ok)

	target, created, ok = locate(proj, tx, codechange.CodeFile{FileName: "cache.go", AddFilePath: `internal\cache`})
	assert.True(t, ok)
	assert.True(t, created)
	assert.Equal(t, "internal/cache/cache.go", target)
}
