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
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/codechange"
	"github.com/cloudwego/scaffolder/lang/modifier"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/lang/workspace"
)

// ModifyCodeConfig is the per-run binding of ModifyCodeStep.
type ModifyCodeConfig struct {
	Changes *codechange.Config
	// Flags are the active scenario flags.
	Flags  []string
	DryRun bool
}

// ModifyCodeStep applies a code-change configuration to the project. Files
// are processed one at a time in declared order, each at most once per
// run, and committed together at the end. Per-file failures are recorded
// in the summary and do not fail the step; a failed commit does.
type ModifyCodeStep struct {
	Base
	Modifier *modifier.Modifier
}

// NewModifyCodeStep returns the step under its default name.
func NewModifyCodeStep(m *modifier.Modifier, tolerant bool) *ModifyCodeStep {
	return &ModifyCodeStep{Base: Base{StepName: "modify-code", Tolerant: tolerant}, Modifier: m}
}

// Execute implements pipeline.Step.
func (s *ModifyCodeStep) Execute(ctx context.Context, sc *pipeline.ScaffolderContext, b pipeline.Binding) error {
	cfg, err := pipeline.ConfigAs[ModifyCodeConfig](b)
	if err != nil {
		return err
	}
	proj, tx, err := projectOf(sc)
	if err != nil {
		return err
	}
	summary, ok := pipeline.Property[*modifier.Summary](sc, PropertySummary)
	if !ok || summary == nil {
		summary = &modifier.Summary{}
		sc.Properties[PropertySummary] = summary
	}
	seen, ok := pipeline.Property[map[string]bool](sc, PropertyProcessed)
	if !ok || seen == nil {
		seen = make(map[string]bool)
		sc.Properties[PropertyProcessed] = seen
	}
	if cfg.Changes == nil {
		return nil
	}

	active := codechange.NewOptions(cfg.Flags...)
	for _, file := range cfg.Changes.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, created, ok := locate(proj, tx, file)
		if !ok {
			summary.Add(&modifier.FileResult{
				Path:   file.FileName,
				Status: modifier.FileSkipped,
				Changes: []modifier.ChangeRecord{{
					Status: modifier.StatusFileNotFound,
					Reason: "file not found in project",
				}},
			})
			log.Info("Skipping %s: not found in project", file.FileName)
			continue
		}
		if seen[target] {
			duplicate(summary, target)
			log.Warn("Skipping %s: already processed in this run", target)
			continue
		}
		seen[target] = true

		doc, err := tx.Load(target)
		if err != nil {
			summary.Add(&modifier.FileResult{Path: target, Status: modifier.FileFailed, Err: err})
			continue
		}
		res := s.Modifier.Modify(ctx, target, file.Filter(active), doc.Content)
		res.Created = created
		summary.Add(res)
		if res.Status == modifier.FileFailed || !res.Changed() {
			continue
		}
		if err := tx.Stage(target, res.Content); err != nil {
			summary.MarkFailed(target, err)
		}
	}

	_, err = commit(ctx, sc, tx, cfg.DryRun)
	var perr *workspace.PersistenceError
	if errors.As(err, &perr) {
		for _, f := range perr.Failed {
			summary.MarkFailed(f.Path, f.Err)
		}
	}
	log.Info("Code changes: %d modified, %d already applied, %d skipped, %d failed",
		len(summary.Modified()), len(summary.AlreadyApplied()), len(summary.Skipped()), len(summary.Failed()))
	return err
}

// duplicate records that a document named a file the run already edited.
func duplicate(summary *modifier.Summary, target string) {
	rec := modifier.ChangeRecord{
		Status: modifier.StatusDuplicateFile,
		Reason: "already processed in this run",
	}
	if res := summary.Lookup(target); res != nil {
		res.Changes = append(res.Changes, rec)
		return
	}
	summary.Add(&modifier.FileResult{
		Path:    target,
		Status:  modifier.FileSkipped,
		Changes: []modifier.ChangeRecord{rec},
	})
}

// locate finds the project file a document targets. FileName may be a
// relative path or a bare name matched anywhere in the project, shallowest
// first; files staged earlier in the run count too. Absent files are
// created under AddFilePath when it is set.
func locate(proj *project.Project, tx *workspace.Transaction, file codechange.CodeFile) (target string, created, ok bool) {
	name := path.Clean(strings.ReplaceAll(file.FileName, "\\", "/"))
	if strings.Contains(name, "/") {
		if proj.HasFile(name) {
			return name, false, true
		}
	} else if found := proj.Find(name); len(found) > 0 {
		return found[0], false, true
	}
	for _, d := range tx.Documents() {
		if d.Staged && (d.Path == name || strings.EqualFold(path.Base(d.Path), name)) {
			return d.Path, false, true
		}
	}
	if file.AddFilePath == "" {
		return "", false, false
	}
	target = path.Join(strings.ReplaceAll(file.AddFilePath, "\\", "/"), path.Base(name))
	if d, err := tx.Load(target); err == nil && (d.Existed || d.Staged) {
		return d.Path, false, true
	}
	return target, true, true
}
