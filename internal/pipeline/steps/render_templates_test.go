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
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/template"
)

var cacheTemplates = fstest.MapFS{
	"cache.go.tmpl":   {Data: []byte("package {{snake .name}}\n\nconst Prefix = {{quote .prefix}}\n")},
	"README.md.j2":    {Data: []byte("# {{ name }}\n")},
	"config.yaml.tpl": {Data: []byte("prefix: {{.prefix}}\n")},
}

func render(t *testing.T, sc *pipeline.ScaffolderContext, cfg RenderTemplatesConfig) error {
	t.Helper()
	return NewRenderTemplatesStep(template.New(nil), false).Execute(context.Background(), sc, pipeline.Binding{Config: cfg})
}

func TestRenderTemplatesStep(t *testing.T) {
	dir := fixture(t, map[string]string{
		"go.mod":      "module example.com/app\n",
		"config.yaml": "prefix: mine\n",
	})
	sc := resolved(t, dir)
	cfg := RenderTemplatesConfig{
		FS: cacheTemplates,
		Templates: []TemplateFile{
			{Template: "cache.go.tmpl", Output: "internal/{{snake .name}}/cache.go"},
			{Template: "README.md.j2"},
			{Template: "config.yaml.tpl"},
		},
		Model: template.Model{"name": "OrderCache", "prefix": "orders"},
	}
	require.NoError(t, render(t, sc, cfg))

	assert.Equal(t, "package order_cache\n\nconst Prefix = \"orders\"\n", read(t, dir, "internal/order_cache/cache.go"))
	assert.Equal(t, "# OrderCache\n", read(t, dir, "README.md"))
	assert.Equal(t, "prefix: mine\n", read(t, dir, "config.yaml"), "existing files are kept")

	rendered, ok := pipeline.Property[[]string](sc, PropertyRendered)
	require.True(t, ok)
	assert.Equal(t, []string{"internal/order_cache/cache.go", "README.md"}, rendered)
}

func TestRenderTemplatesStep_Overwrite(t *testing.T) {
	dir := fixture(t, map[string]string{
		"go.mod":      "module example.com/app\n",
		"config.yaml": "prefix: mine\n",
	})
	cfg := RenderTemplatesConfig{
		FS:        cacheTemplates,
		Templates: []TemplateFile{{Template: "config.yaml.tpl", Overwrite: true}},
		Model:     template.Model{"prefix": "orders"},
	}
	require.NoError(t, render(t, resolved(t, dir), cfg))
	assert.Equal(t, "prefix: orders\n", read(t, dir, "config.yaml"))
}

func TestRenderTemplatesStep_DryRun(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n"})
	cfg := RenderTemplatesConfig{
		FS:        cacheTemplates,
		Templates: []TemplateFile{{Template: "README.md.j2"}},
		Model:     template.Model{"name": "x"},
		DryRun:    true,
	}
	require.NoError(t, render(t, resolved(t, dir), cfg))
	assert.NoFileExists(t, dir+"/README.md")
}

func TestRenderTemplatesStep_Errors(t *testing.T) {
	dir := fixture(t, map[string]string{"go.mod": "module example.com/app\n"})

	err := render(t, resolved(t, dir), RenderTemplatesConfig{Templates: []TemplateFile{{Template: "a.tmpl"}}})
	assert.Error(t, err, "no file system")

	err = render(t, resolved(t, dir), RenderTemplatesConfig{
		FS:        cacheTemplates,
		Templates: []TemplateFile{{Template: "cache.go.tmpl"}},
		Model:     template.Model{"name": "x"},
	})
	assert.Error(t, err, "missing prefix")

	err = render(t, resolved(t, dir), RenderTemplatesConfig{
		FS:        cacheTemplates,
		Templates: []TemplateFile{{Template: "README.md.j2", Output: "../outside.md"}},
		Model:     template.Model{"name": "x"},
	})
	assert.Error(t, err)

	err = render(t, pipeline.NewContext(nil), RenderTemplatesConfig{})
	assert.Error(t, err)
}
