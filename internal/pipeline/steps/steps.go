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

// Package steps holds the built-in scaffold steps.
package steps

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/lang/workspace"
)

// Property keys published by the built-in steps.
const (
	// PropertyProject holds the *project.Project of the run.
	PropertyProject = "scaffolder.project"
	// PropertyWorkspace holds the *workspace.Transaction of the run.
	PropertyWorkspace = "scaffolder.workspace"
	// PropertySummary holds the *modifier.Summary of the code changes of
	// every modify-code step in the run.
	PropertySummary = "scaffolder.summary"
	// PropertyRendered holds the []string of files rendered from templates.
	PropertyRendered = "scaffolder.rendered"
	// PropertyPackages holds the []string of packages added.
	PropertyPackages = "scaffolder.packages"
	// PropertyCommits holds the []*workspace.CommitReport of the run.
	PropertyCommits = "scaffolder.commits"
	// PropertyProcessed holds the map[string]bool of files the
	// modify-code steps of the run have edited.
	PropertyProcessed = "scaffolder.processed"
)

// Base carries what every built-in step shares.
type Base struct {
	StepName string
	Tolerant bool
}

// Name implements pipeline.Step.
func (b Base) Name() string { return b.StepName }

// ContinueOnError implements pipeline.Step.
func (b Base) ContinueOnError() bool { return b.Tolerant }

func projectOf(sc *pipeline.ScaffolderContext) (*project.Project, *workspace.Transaction, error) {
	proj, ok := pipeline.Property[*project.Project](sc, PropertyProject)
	if !ok || proj == nil {
		return nil, nil, errors.New("no project resolved; add a resolve-project step first")
	}
	tx, ok := pipeline.Property[*workspace.Transaction](sc, PropertyWorkspace)
	if !ok || tx == nil {
		return nil, nil, errors.New("no workspace opened; add a resolve-project step first")
	}
	return proj, tx, nil
}

// commit persists what the step staged and appends the report to
// PropertyCommits.
func commit(ctx context.Context, sc *pipeline.ScaffolderContext, tx *workspace.Transaction, dryRun bool) (*workspace.CommitReport, error) {
	rep, err := tx.Commit(ctx, workspace.CommitOptions{DryRun: dryRun})
	reports, _ := pipeline.Property[[]*workspace.CommitReport](sc, PropertyCommits)
	sc.Properties[PropertyCommits] = append(reports, rep)
	return rep, err
}
