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

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/lang/workspace"
)

// ResolveProjectConfig is the per-run binding of ResolveProjectStep.
type ResolveProjectConfig struct {
	Dir string
}

// ResolveProjectStep resolves the target project and opens the workspace
// transaction later steps stage their edits in. Failures are never
// tolerated: nothing else can run without a project.
type ResolveProjectStep struct {
	Base
	Provider project.Provider
}

// NewResolveProjectStep returns the step under its default name.
func NewResolveProjectStep(provider project.Provider) *ResolveProjectStep {
	return &ResolveProjectStep{Base: Base{StepName: "resolve-project"}, Provider: provider}
}

// Execute implements pipeline.Step.
func (s *ResolveProjectStep) Execute(ctx context.Context, sc *pipeline.ScaffolderContext, b pipeline.Binding) error {
	cfg, err := pipeline.ConfigAs[ResolveProjectConfig](b)
	if err != nil {
		return err
	}
	if cfg.Dir == "" {
		return errors.New("project directory is empty")
	}
	proj, err := s.Provider.Resolve(ctx, cfg.Dir)
	if err != nil {
		return err
	}
	tx, err := workspace.Open(proj.Root)
	if err != nil {
		return err
	}
	sc.Properties[PropertyProject] = proj
	sc.Properties[PropertyWorkspace] = tx
	log.Info("Project %s (%s) at %s", proj.Name, proj.Language, proj.Root)
	return nil
}
