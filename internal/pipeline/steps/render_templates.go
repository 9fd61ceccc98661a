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
	"io/fs"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/template"
)

// TemplateFile maps one template to the file it renders.
type TemplateFile struct {
	Template string
	// Output is relative to the project root and may itself be a template,
	// e.g. "internal/{{snake .name}}/cache.go". Empty means the template
	// name without its template extension.
	Output    string
	Overwrite bool
}

// RenderTemplatesConfig is the per-run binding of RenderTemplatesStep.
type RenderTemplatesConfig struct {
	FS        fs.FS
	Templates []TemplateFile
	Model     template.Model
	DryRun    bool
}

// RenderTemplatesStep creates new files through the template engine.
// Existing files are left alone unless their template asks to overwrite.
type RenderTemplatesStep struct {
	Base
	Engine template.Engine
}

// NewRenderTemplatesStep returns the step under its default name.
func NewRenderTemplatesStep(engine template.Engine, tolerant bool) *RenderTemplatesStep {
	return &RenderTemplatesStep{
		Base:   Base{StepName: "render-templates", Tolerant: tolerant},
		Engine: engine,
	}
}

// Execute implements pipeline.Step.
func (s *RenderTemplatesStep) Execute(ctx context.Context, sc *pipeline.ScaffolderContext, b pipeline.Binding) error {
	cfg, err := pipeline.ConfigAs[RenderTemplatesConfig](b)
	if err != nil {
		return err
	}
	_, tx, err := projectOf(sc)
	if err != nil {
		return err
	}
	if len(cfg.Templates) > 0 && cfg.FS == nil {
		return errors.New("no template file system bound")
	}

	var rendered []string
	for _, t := range cfg.Templates {
		if err := ctx.Err(); err != nil {
			return err
		}
		output := t.Output
		if output == "" {
			output = template.OutputName(t.Template)
		}
		output, err := s.Engine.RenderString(output, cfg.Model)
		if err != nil {
			return err
		}
		doc, err := tx.Load(output)
		if err != nil {
			return err
		}
		if (doc.Existed || doc.Staged) && !t.Overwrite {
			log.Info("Keeping existing %s", doc.Path)
			continue
		}
		content, err := s.Engine.Render(ctx, cfg.FS, t.Template, cfg.Model)
		if err != nil {
			return err
		}
		if err := tx.Stage(doc.Path, content); err != nil {
			return err
		}
		rendered = append(rendered, doc.Path)
		log.Debug("Rendered %s from %s", doc.Path, t.Template)
	}
	sc.Properties[PropertyRendered] = rendered
	if len(rendered) == 0 {
		return nil
	}
	_, err = commit(ctx, sc, tx, cfg.DryRun)
	return err
}
