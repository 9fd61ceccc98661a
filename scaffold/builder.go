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
	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/internal/pipeline/steps"
	"github.com/cloudwego/scaffolder/lang/modifier"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/lang/template"
)

// ProjectOption is the option whose value names the project directory.
const ProjectOption = "project"

// Builder turns definitions into runnable scaffolders.
type Builder struct {
	Provider project.Provider
	Modifier *modifier.Modifier
	Engine   template.Engine
	// DryRun makes every mutating step report instead of write.
	DryRun bool
	// ProjectDir is used when no project option is bound.
	ProjectDir string
}

// NewBuilder returns a Builder with the default provider, modifier and
// template engine.
func NewBuilder() *Builder {
	return &Builder{
		Provider:   project.NewProvider(),
		Modifier:   modifier.New(),
		Engine:     template.New(nil),
		ProjectDir: ".",
	}
}

// Build creates the scaffolder of def. A resolve-project step is added in
// front of the first step that needs the project when def has none.
func (b *Builder) Build(def *Definition) (*pipeline.Scaffolder, error) {
	s := &pipeline.Scaffolder{
		Name:        def.Name,
		Description: def.Description,
		Category:    def.Category,
	}
	for _, o := range def.Options {
		h, err := declareOption(o)
		if err != nil {
			return nil, errors.Wrapf(err, "scaffold %s", def.Name)
		}
		s.Options = append(s.Options, h)
	}

	resolved := false
	add := func(sd StepDef) error {
		p, err := newStepPreparer(b, def, sd)
		if err != nil {
			return errors.Wrapf(err, "scaffold %s: step %s", def.Name, sd.StepName())
		}
		s.Steps = append(s.Steps, b.step(sd))
		s.Preparers = append(s.Preparers, p)
		return nil
	}
	for _, sd := range def.Steps {
		if sd.Kind == KindResolveProject {
			resolved = true
		}
		if sd.NeedsProject() && !resolved {
			if err := add(StepDef{Kind: KindResolveProject}); err != nil {
				return nil, err
			}
			resolved = true
		}
		if err := add(sd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (b *Builder) step(sd StepDef) pipeline.Step {
	base := steps.Base{StepName: sd.StepName(), Tolerant: sd.ContinueOnError}
	switch sd.Kind {
	case KindValidateOptions:
		return &steps.ValidateOptionsStep{Base: base}
	case KindResolveProject:
		return &steps.ResolveProjectStep{Base: base, Provider: b.Provider}
	case KindAddPackages:
		return &steps.AddPackagesStep{Base: base}
	case KindRenderTemplates:
		return &steps.RenderTemplatesStep{Base: base, Engine: b.Engine}
	default:
		return &steps.ModifyCodeStep{Base: base, Modifier: b.Modifier}
	}
}

func declareOption(o OptionDef) (pipeline.OptionHandle, error) {
	info := pipeline.OptionInfo{
		Name:        o.Name,
		Description: o.Description,
		Required:    o.Required,
		Picker:      o.Picker,
	}
	switch o.Type {
	case "bool":
		return declare[bool](info, o.Default)
	case "int":
		return declare[int](info, o.Default)
	default:
		return declare[string](info, o.Default)
	}
}

func declare[T pipeline.OptionValue](info pipeline.OptionInfo, def any) (pipeline.OptionHandle, error) {
	opt := pipeline.NewOption[T](info)
	if def == nil {
		return opt, nil
	}
	v, err := opt.Parse(def)
	if err != nil {
		return nil, err
	}
	return opt.WithDefault(v.(T)), nil
}
