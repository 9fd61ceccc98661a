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

package syntax_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/scaffolder/lang/csharp"
	"github.com/cloudwego/scaffolder/lang/golang"
	"github.com/cloudwego/scaffolder/lang/java"
	"github.com/cloudwego/scaffolder/lang/javascript"
	"github.com/cloudwego/scaffolder/lang/python"
	"github.com/cloudwego/scaffolder/lang/syntax"
)

const global = "Global"

func parse(t *testing.T, spec *syntax.Spec, src string) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), spec, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func scopeText(t *testing.T, tree *syntax.Tree, src, anchor string) string {
	t.Helper()
	span, ok := tree.FindScope(anchor, global)
	require.True(t, ok, "anchor %q not found", anchor)
	return src[span.Start:span.End]
}

func TestFindScope_Go(t *testing.T) {
	src := `package main

type server struct{}

func (s *server) routes() {
	s.handle("/a")
}

func main() {
	s := &server{}
	s.routes()
}
`
	tree := parse(t, golang.Spec(), src)

	body := scopeText(t, tree, src, "main")
	assert.True(t, strings.HasPrefix(body, "{"))
	assert.Contains(t, body, "s.routes()")
	assert.NotContains(t, body, "s.handle")

	assert.Contains(t, scopeText(t, tree, src, "routes"), `s.handle("/a")`)
	assert.Equal(t, src, scopeText(t, tree, src, global))

	_, ok := tree.FindScope("missing", global)
	assert.False(t, ok)
}

func TestFindScope_CSharp(t *testing.T) {
	src := `public class Startup
{
    public void ConfigureServices(IServiceCollection services)
    {
        services.AddControllers();
    }

    public void Configure(IApplicationBuilder app)
    {
        app.UseRouting();
    }
}
`
	tree := parse(t, csharp.Spec(), src)
	body := scopeText(t, tree, src, "ConfigureServices")
	assert.Contains(t, body, "services.AddControllers();")
	assert.NotContains(t, body, "UseRouting")

	assert.Contains(t, scopeText(t, tree, src, "Startup.Configure"), "app.UseRouting();")
}

func TestFindScope_JavaQualified(t *testing.T) {
	src := `class A {
    void init() { a(); }
}
class B {
    void init() { b(); }
}
`
	tree := parse(t, java.Spec(), src)
	assert.Contains(t, scopeText(t, tree, src, "init"), "a();")
	assert.Contains(t, scopeText(t, tree, src, "B.init"), "b();")
}

func TestFindScope_JavaScriptArrow(t *testing.T) {
	src := `const setup = (app) => {
  app.use(cors());
};

function listen(app) {
  app.listen(3000);
}
`
	tree := parse(t, javascript.Spec(), src)
	assert.Contains(t, scopeText(t, tree, src, "setup"), "app.use(cors());")
	assert.Contains(t, scopeText(t, tree, src, "listen"), "app.listen(3000);")
}

func TestFindScope_Python(t *testing.T) {
	src := "def create_app():\n    app = Flask(__name__)\n    return app\n"
	tree := parse(t, python.Spec(), src)
	assert.Contains(t, scopeText(t, tree, src, "create_app"), "app = Flask(__name__)")
}

func TestStatementAt_Go(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tmux := http.NewServeMux()\n\tserve(mux)\n}\n"
	tree := parse(t, golang.Spec(), src)
	scope, ok := tree.FindScope("main", global)
	require.True(t, ok)

	marker := "http.NewServeMux()"
	start := strings.Index(src, marker)
	stmt, ok := tree.StatementAt(start, start+len(marker), scope)
	require.True(t, ok)
	assert.Equal(t, "mux := http.NewServeMux()", src[stmt.Start:stmt.End])
}

func TestStatementAt_CSharp(t *testing.T) {
	src := `public class Startup
{
    public void ConfigureServices(IServiceCollection services)
    {
        services.AddControllers();
    }

    public void Configure(IApplicationBuilder app)
    {
        app.UseRouting();
    }
}
`
	tree := parse(t, csharp.Spec(), src)
	scope, ok := tree.FindScope("ConfigureServices", global)
	require.True(t, ok)

	marker := "AddControllers()"
	start := strings.Index(src, marker)
	stmt, ok := tree.StatementAt(start, start+len(marker), scope)
	require.True(t, ok)
	assert.Equal(t, "services.AddControllers();", src[stmt.Start:stmt.End])

	other, ok := tree.FindScope("Configure", global)
	require.True(t, ok)
	_, ok = tree.StatementAt(start, start+len(marker), other)
	assert.False(t, ok, "marker outside the scope")
}

func TestFindScope_BraceFallback(t *testing.T) {
	// the unterminated statement damages the tree
	src := `public class Startup
{
    public void ConfigureServices(IServiceCollection services)
    {
        services.AddControllers();
        AddSingleton<IFoo>
    }
}
`
	tree := parse(t, csharp.Spec(), src)
	assert.Contains(t, scopeText(t, tree, src, "ConfigureServices"), "AddSingleton<IFoo>")
}

func TestParse_NoLanguage(t *testing.T) {
	_, err := syntax.Parse(context.Background(), &syntax.Spec{Name: "none"}, nil)
	assert.Error(t, err)
}
