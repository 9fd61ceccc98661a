// Copyright 2025 CloudWeGo Authors
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

/**
 * Copyright 2024 ByteDance Inc.
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

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cloudwego/scaffolder/internal/config"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/internal/pipeline/steps"
	"github.com/cloudwego/scaffolder/lang/modifier"
	"github.com/cloudwego/scaffolder/lang/workspace"
	"github.com/cloudwego/scaffolder/scaffold"
)

func discover(cfg *config.Config) (*scaffold.Registry, error) {
	reg := scaffold.NewRegistry()
	reg.SetLocalDir(cfg.ScaffoldsDir)
	if err := reg.Discover(); err != nil {
		return nil, err
	}
	return reg, nil
}

func listCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List available scaffolds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup("")
			if err != nil {
				return err
			}
			reg, err := discover(cfg)
			if err != nil {
				return err
			}
			defs := reg.List()
			if len(args) == 1 {
				defs = reg.Search(args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available scaffolds (%d):\n\n", len(defs))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, def := range defs {
				category := def.Category
				if category == "" {
					category = "-"
				}
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", color.CyanString(def.Name), category, def.Source, def.Description)
			}
			return tw.Flush()
		},
	}
}

func showCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the options and steps of a scaffold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup("")
			if err != nil {
				return err
			}
			reg, err := discover(cfg)
			if err != nil {
				return err
			}
			def, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			printDefinition(cmd.OutOrStdout(), def)
			return nil
		},
	}
}

func printDefinition(w io.Writer, def *scaffold.Definition) {
	fmt.Fprintf(w, "Scaffold: %s\n", def.Name)
	fmt.Fprintf(w, "Source: %s (%s)\n", def.Source, def.Dir)
	if def.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", def.Category)
	}
	fmt.Fprintf(w, "Description: %s\n\n", def.Description)

	if len(def.Options) > 0 {
		fmt.Fprintln(w, "Options:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, o := range def.Options {
			typ := o.Type
			if typ == "" {
				typ = "string"
			}
			var notes []string
			if o.Required {
				notes = append(notes, "required")
			}
			if o.Default != nil {
				notes = append(notes, fmt.Sprintf("default %v", o.Default))
			}
			fmt.Fprintf(tw, "  --%s\t%s\t%s\t%s\n", o.Name, typ, strings.Join(notes, ", "), o.Description)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Steps:")
	for i, s := range def.Steps {
		line := fmt.Sprintf("  %d. %s", i+1, s.StepName())
		if s.When != "" {
			line += fmt.Sprintf(" (when %s)", s.When)
		}
		if s.ContinueOnError {
			line += " [continue on error]"
		}
		fmt.Fprintln(w, line)
	}
}

func runCmd(g *globalOptions) *cobra.Command {
	var (
		projectDir string
		sets       []string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a scaffold against a project",
		Long: `Run a scaffold against a project. Options are given with --set and
parsed to the type the scaffold declares.

Examples:
  scaffolder run go-redis-cache --project ./api
  scaffolder run go-redis-cache --project ./api --set prefix=orders --set ttl=60
  scaffolder run aspnet-redis-cache -p ./Web --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(projectDir)
			if err != nil {
				return err
			}
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			reg, err := discover(cfg)
			if err != nil {
				return err
			}
			def, err := reg.Get(args[0])
			if err != nil {
				return err
			}

			b := scaffold.NewBuilder()
			b.Modifier = newModifier(cfg)
			b.DryRun = dryRun || cfg.DryRun
			b.ProjectDir = projectDir
			s, err := b.Build(def)
			if err != nil {
				return err
			}

			sc := pipeline.NewContext(s)
			if s.Option(scaffold.ProjectOption) != nil {
				if err := sc.BindByName(scaffold.ProjectOption, projectDir); err != nil {
					return err
				}
			}
			for _, kv := range values {
				if err := sc.BindByName(kv[0], kv[1]); err != nil {
					return err
				}
			}

			res, err := s.Run(cmd.Context(), sc)
			printRun(cmd.OutOrStdout(), sc, res)
			if err != nil {
				return err
			}
			return summaryError(sc)
		},
	}
	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "Project directory.")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set an option, key=value; repeatable.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing.")
	return cmd
}

// parseAssignments splits key=value pairs.
func parseAssignments(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(strings.TrimPrefix(k, "--"))
		if !ok || k == "" {
			return nil, errors.Errorf("invalid --set %q, want key=value", s)
		}
		out = append(out, [2]string{k, v})
	}
	return out, nil
}

// printRun writes the step records, the file outcomes and what was
// written.
func printRun(w io.Writer, sc *pipeline.ScaffolderContext, res *pipeline.RunResult) {
	if res == nil {
		return
	}
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rec := range res.Records {
		status := string(rec.Status)
		switch {
		case rec.Status == pipeline.StepOK:
			status = color.GreenString(status)
		case rec.Status == pipeline.StepSkipped:
			status = color.YellowString(status)
		case rec.Tolerated:
			status = color.YellowString("failed (continued)")
		default:
			status = color.RedString(status)
		}
		line := fmt.Sprintf("  %s\t%s\t%s", rec.StepName, status, rec.Duration().Round(1e6))
		if rec.Err != nil {
			line += "\t" + rec.Err.Error()
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()

	if pkgs, ok := pipeline.Property[[]string](sc, steps.PropertyPackages); ok && len(pkgs) > 0 {
		fmt.Fprintf(w, "\nPackages added: %s\n", strings.Join(pkgs, ", "))
	}
	if files, ok := pipeline.Property[[]string](sc, steps.PropertyRendered); ok && len(files) > 0 {
		fmt.Fprintf(w, "\nRendered:\n")
		for _, f := range files {
			fmt.Fprintf(w, "  %s\n", color.GreenString(f))
		}
	}
	if summary, ok := pipeline.Property[*modifier.Summary](sc, steps.PropertySummary); ok && len(summary.Files) > 0 {
		fmt.Fprintf(w, "\nCode changes:\n")
		printSummary(w, summary)
	}

	reports, _ := pipeline.Property[[]*workspace.CommitReport](sc, steps.PropertyCommits)
	var written []string
	dry := false
	for _, rep := range reports {
		written = append(written, rep.Written...)
		dry = dry || rep.DryRun
	}
	switch {
	case dry && len(written) > 0:
		fmt.Fprintf(w, "\nDry run, would write %d file(s): %s\n", len(written), strings.Join(written, ", "))
	case len(written) > 0:
		fmt.Fprintf(w, "\nWrote %d file(s).\n", len(written))
	default:
		fmt.Fprintln(w, "\nNothing to write.")
	}
}

func printSummary(w io.Writer, summary *modifier.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range summary.Files {
		var status string
		switch f.Status {
		case modifier.FileModified:
			status = color.GreenString(string(f.Status))
			if f.Created {
				status = color.GreenString("created")
			}
		case modifier.FileSkipped:
			status = color.YellowString(string(f.Status))
		case modifier.FileFailed:
			status = color.RedString(string(f.Status))
		default:
			status = string(f.Status)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", status, f.Path, f.Reason())
	}
	tw.Flush()
}

// summaryError fails the command when any file failed.
func summaryError(sc *pipeline.ScaffolderContext) error {
	summary, ok := pipeline.Property[*modifier.Summary](sc, steps.PropertySummary)
	if !ok || summary.OK() {
		return nil
	}
	return errors.Errorf("%d file(s) failed", len(summary.Failed()))
}
