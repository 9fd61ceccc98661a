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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/project"
)

func fixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// resolved returns a context whose project is dir.
func resolved(t *testing.T, dir string) *pipeline.ScaffolderContext {
	t.Helper()
	sc := pipeline.NewContext(nil)
	step := NewResolveProjectStep(project.NewProvider())
	require.NoError(t, step.Execute(context.Background(), sc, pipeline.Binding{Config: ResolveProjectConfig{Dir: dir}}))
	return sc
}

func TestValidateOptionsStep(t *testing.T) {
	proj := pipeline.NewOption[string](pipeline.OptionInfo{Name: "project", Required: true})
	name := pipeline.NewOption[string](pipeline.OptionInfo{Name: "name", Required: true})
	ttl := pipeline.NewOption[int](pipeline.OptionInfo{Name: "ttl"})
	s := &pipeline.Scaffolder{Name: "demo", Options: []pipeline.OptionHandle{proj, name, ttl}}

	sc := pipeline.NewContext(s)
	pipeline.SetOptionResult(sc, name, "  ")
	err := NewValidateOptionsStep().Execute(context.Background(), sc, pipeline.Binding{})

	var verr *OptionValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []OptionProblem{
		{Option: "project", Reason: "required"},
		{Option: "name", Reason: "must not be empty"},
	}, verr.Problems)
	assert.Contains(t, err.Error(), "--project: required")

	pipeline.SetOptionResult(sc, proj, "/src")
	pipeline.SetOptionResult(sc, name, "orders")
	assert.NoError(t, NewValidateOptionsStep().Execute(context.Background(), sc, pipeline.Binding{}))
}

func TestResolveProjectStep(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n"})
	sc := resolved(t, dir)

	proj, ok := pipeline.Property[*project.Project](sc, PropertyProject)
	require.True(t, ok)
	assert.Equal(t, "example.com/app", proj.ModulePath)
	_, _, err := projectOf(sc)
	assert.NoError(t, err)

	err = NewResolveProjectStep(project.NewProvider()).Execute(context.Background(), pipeline.NewContext(nil), pipeline.Binding{})
	assert.Error(t, err)

	_, _, err = projectOf(pipeline.NewContext(nil))
	assert.Error(t, err)
}

func TestAddPackagesStep_GoMod(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n\ngo 1.22\n"})
	sc := resolved(t, dir)
	step := NewAddPackagesStep(false)
	b := pipeline.Binding{Config: AddPackagesConfig{Packages: []string{"github.com/redis/go-redis/v9@v9.5.1"}}}

	require.NoError(t, step.Execute(context.Background(), sc, b))
	assert.Contains(t, read(t, dir, "go.mod"), "require github.com/redis/go-redis/v9 v9.5.1")
	added, _ := pipeline.Property[[]string](sc, PropertyPackages)
	assert.Len(t, added, 1)

	first := read(t, dir, "go.mod")
	require.NoError(t, step.Execute(context.Background(), sc, b))
	assert.Equal(t, first, read(t, dir, "go.mod"))
	added, _ = pipeline.Property[[]string](sc, PropertyPackages)
	assert.Empty(t, added)

	bad := pipeline.Binding{Config: AddPackagesConfig{Packages: []string{"github.com/redis/go-redis/v9"}}}
	assert.Error(t, step.Execute(context.Background(), sc, bad))
}

func TestAddPackagesStep_DryRun(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n"})
	sc := resolved(t, dir)
	b := pipeline.Binding{Config: AddPackagesConfig{Packages: []string{"golang.org/x/sync@v0.15.0"}, DryRun: true}}
	require.NoError(t, NewAddPackagesStep(false).Execute(context.Background(), sc, b))
	assert.Equal(t, "module example.com/app\n", read(t, dir, "go.mod"))
}

func TestAddNpmDependency(t *testing.T) {
	src := []byte(`{
  "name": "web",
  "dependencies": {
    "express": "^4.19.0"
  }
}`)
	out, changed, err := addNpmDependency(src, "ioredis@^5.4.1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "^5.4.1", gjson.GetBytes(out, "dependencies.ioredis").String())
	assert.Equal(t, "^4.19.0", gjson.GetBytes(out, "dependencies.express").String())

	again, changed, err := addNpmDependency(out, "ioredis@^5.4.1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, out, again)

	scoped, changed, err := addNpmDependency(src, "@types/node@20.11.0")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, string(scoped), `"@types/node"`)
	assert.Equal(t, "20.11.0", gjson.GetBytes(scoped, "dependencies."+jsonPathEscape("@types/node")).String())

	_, _, err = addNpmDependency([]byte("{"), "a@1")
	assert.Error(t, err)
}

func TestAddMavenDependency(t *testing.T) {
	src := []byte(`<?xml version="1.0"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>com.acme</groupId>
  <artifactId>orders</artifactId>
  <dependencyManagement>
    <dependencies>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
    </dependency>
  </dependencies>
</project>
`)
	out, changed, err := addMavenDependency(src, "redis.clients:jedis:5.1.0")
	require.NoError(t, err)
	assert.True(t, changed)
	want := `    <dependency>
      <groupId>redis.clients</groupId>
      <artifactId>jedis</artifactId>
      <version>5.1.0</version>
    </dependency>
  </dependencies>
</project>
`
	assert.Contains(t, string(out), want)

	_, changed, err = addMavenDependency(out, "redis.clients:jedis:5.1.0")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = addMavenDependency(src, "jedis")
	assert.Error(t, err)
}

func TestAddMavenDependency_NoDependencies(t *testing.T) {
	src := []byte("<project xmlns=\"http://maven.apache.org/POM/4.0.0\">\n  <artifactId>a</artifactId>\n</project>\n")
	out, changed, err := addMavenDependency(src, "g:a:1:test")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, string(out), "  <dependencies>\n    <dependency>\n      <groupId>g</groupId>")
	assert.Contains(t, string(out), "      <scope>test</scope>\n    </dependency>\n  </dependencies>\n</project>")
}

func TestAddPackageReference(t *testing.T) {
	src := []byte(`<Project Sdk="Microsoft.NET.Sdk.Web">
  <ItemGroup>
    <PackageReference Include="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>
`)
	out, changed, err := addPackageReference(src, "StackExchange.Redis@2.7.33")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, string(out), "    <PackageReference Include=\"Serilog\" Version=\"3.1.1\" />\n    <PackageReference Include=\"StackExchange.Redis\" Version=\"2.7.33\" />\n  </ItemGroup>")

	_, changed, err = addPackageReference(out, "StackExchange.Redis@2.7.33")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestAddRequirement(t *testing.T) {
	out, changed, err := addRequirement([]byte("flask==3.0.0"), "redis==5.0.1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "flask==3.0.0\nredis==5.0.1\n", string(out))

	_, changed, err = addRequirement(out, "redis==5.0.1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = addRequirement(out, "redis==4.0.0")
	assert.Error(t, err)
}
