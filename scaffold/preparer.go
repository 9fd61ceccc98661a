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
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/internal/pipeline/steps"
	"github.com/cloudwego/scaffolder/lang/codechange"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/lang/template"
)

// stepPreparer binds one declared step to the option values of a run.
// Expressions are compiled once; bindings are built fresh for every run.
type stepPreparer struct {
	b     *Builder
	def   *Definition
	sd    StepDef
	when  *govaluate.EvaluableExpression
	flags map[string]*govaluate.EvaluableExpression
}

func newStepPreparer(b *Builder, def *Definition, sd StepDef) (*stepPreparer, error) {
	p := &stepPreparer{b: b, def: def, sd: sd}
	if strings.TrimSpace(sd.When) != "" {
		expr, err := govaluate.NewEvaluableExpression(sd.When)
		if err != nil {
			return nil, errors.Wrapf(err, "parse when %q", sd.When)
		}
		p.when = expr
	}
	if len(sd.Flags) > 0 {
		p.flags = make(map[string]*govaluate.EvaluableExpression, len(sd.Flags))
		for flag, src := range sd.Flags {
			expr, err := govaluate.NewEvaluableExpression(src)
			if err != nil {
				return nil, errors.Wrapf(err, "parse flag %s %q", flag, src)
			}
			p.flags[flag] = expr
		}
	}
	return p, nil
}

func (p *stepPreparer) Pre(ctx context.Context, step pipeline.Step, sc *pipeline.ScaffolderContext) (pipeline.Binding, error) {
	params := parameters(sc)
	if p.when != nil {
		ok, err := evalBool(p.when, params)
		if err != nil {
			return pipeline.Binding{}, err
		}
		if !ok {
			log.Info("Skipping %s: %s is false", step.Name(), p.sd.When)
			return pipeline.Binding{SkipStep: true}, nil
		}
	}

	switch p.sd.Kind {
	case KindResolveProject:
		return pipeline.Binding{Config: steps.ResolveProjectConfig{Dir: p.projectDir(sc)}}, nil

	case KindAddPackages:
		model := p.model(sc)
		pkgs := make([]string, 0, len(p.sd.Packages))
		for _, pkg := range p.sd.Packages {
			out, err := p.b.Engine.RenderString(pkg, model)
			if err != nil {
				return pipeline.Binding{}, err
			}
			pkgs = append(pkgs, out)
		}
		return pipeline.Binding{Config: steps.AddPackagesConfig{Packages: pkgs, DryRun: p.b.DryRun}}, nil

	case KindRenderTemplates:
		files := make([]steps.TemplateFile, 0, len(p.sd.Templates))
		for _, t := range p.sd.Templates {
			files = append(files, steps.TemplateFile{Template: t.Template, Output: t.Output, Overwrite: t.Overwrite})
		}
		return pipeline.Binding{Config: steps.RenderTemplatesConfig{
			FS:        p.def.FS,
			Templates: files,
			Model:     p.model(sc),
			DryRun:    p.b.DryRun,
		}}, nil

	case KindModifyCode:
		changes, err := p.codeChanges(ctx, sc)
		if err != nil {
			return pipeline.Binding{}, err
		}
		flags, err := p.activeFlags(sc, params)
		if err != nil {
			return pipeline.Binding{}, err
		}
		log.Debug("Active flags for %s: %v", step.Name(), flags)
		return pipeline.Binding{Config: steps.ModifyCodeConfig{Changes: changes, Flags: flags, DryRun: p.b.DryRun}}, nil
	}
	return pipeline.Binding{}, nil
}

func (p *stepPreparer) Post(ctx context.Context, step pipeline.Step, sc *pipeline.ScaffolderContext, rec pipeline.StepRecord) error {
	switch rec.Status {
	case pipeline.StepFailed:
		log.Warn("Step %s failed after %s: %v", step.Name(), rec.Duration(), rec.Err)
	default:
		log.Debug("Step %s %s in %s", step.Name(), rec.Status, rec.Duration())
	}
	return nil
}

func (p *stepPreparer) projectDir(sc *pipeline.ScaffolderContext) string {
	if dir := pipeline.OptionResultByName[string](sc, ProjectOption); dir != "" {
		return dir
	}
	if p.b.ProjectDir != "" {
		return p.b.ProjectDir
	}
	return "."
}

// model exposes every option by name plus the resolved project.
func (p *stepPreparer) model(sc *pipeline.ScaffolderContext) template.Model {
	m := template.Model{"RunID": sc.RunID}
	if sc.Scaffolder != nil {
		for _, h := range sc.Scaffolder.Options {
			m[h.Info().Name] = valueOrZero(sc, h)
		}
	}
	if proj, ok := pipeline.Property[*project.Project](sc, steps.PropertyProject); ok {
		m["Project"] = proj
	}
	return m
}

func (p *stepPreparer) codeChanges(ctx context.Context, sc *pipeline.ScaffolderContext) (*codechange.Config, error) {
	name := p.sd.CodeChanges
	var (
		data []byte
		err  error
	)
	if ext := path.Ext(name); ext == ".tmpl" || ext == ".tpl" || template.IsJinja(name) {
		data, err = p.b.Engine.Render(ctx, p.def.FS, name, p.model(sc))
	} else {
		data, err = fs.ReadFile(p.def.FS, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read code changes %s", name)
	}
	cfg, err := codechange.ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load code changes %s", name)
	}
	return cfg, nil
}

// activeFlags joins the bool options bound true with the flags whose
// expression holds.
func (p *stepPreparer) activeFlags(sc *pipeline.ScaffolderContext, params map[string]any) ([]string, error) {
	flags := sc.ActiveFlags()
	names := make([]string, 0, len(p.flags))
	for name := range p.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ok, err := evalBool(p.flags[name], params)
		if err != nil {
			return nil, errors.Wrapf(err, "flag %s", name)
		}
		if ok {
			flags = append(flags, name)
		}
	}
	return flags, nil
}

// parameters are the expression variables: every declared option, bound
// or zero. Numbers are float64 as govaluate compares them.
func parameters(sc *pipeline.ScaffolderContext) map[string]any {
	params := make(map[string]any)
	if sc.Scaffolder == nil {
		return params
	}
	for _, h := range sc.Scaffolder.Options {
		v := valueOrZero(sc, h)
		if n, ok := v.(int); ok {
			v = float64(n)
		}
		params[h.Info().Name] = v
	}
	return params
}

func valueOrZero(sc *pipeline.ScaffolderContext, h pipeline.OptionHandle) any {
	if v, ok := sc.Value(h); ok {
		return v
	}
	switch h.Kind() {
	case pipeline.KindBool:
		return false
	case pipeline.KindInt:
		return 0
	default:
		return ""
	}
}

func evalBool(expr *govaluate.EvaluableExpression, params map[string]any) (bool, error) {
	v, err := expr.Evaluate(params)
	if err != nil {
		return false, errors.Wrapf(err, "evaluate %q", expr.String())
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf("expression %q is %T, want bool", expr.String(), v)
	}
	return b, nil
}
