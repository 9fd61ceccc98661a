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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cloudwego/scaffolder/internal/config"
	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/internal/pipeline/steps"
	"github.com/cloudwego/scaffolder/lang/codechange"
	"github.com/cloudwego/scaffolder/lang/modifier"
	"github.com/cloudwego/scaffolder/lang/project"
	"github.com/cloudwego/scaffolder/version"
)

// globalOptions are the persistent flags of every command.
type globalOptions struct {
	verbose      bool
	noColor      bool
	scaffoldsDir string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:     "scaffolder",
		Short:   "Apply declarative scaffolds and code changes to existing projects",
		Version: version.Version,
		Long: `scaffolder runs scaffolds against an existing project: it adds packages,
renders new files from templates and edits existing source files at
structural anchors. Re-running a scaffold leaves an applied project unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Verbose mode.")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output.")
	root.PersistentFlags().StringVar(&g.scaffoldsDir, "scaffolds-dir", "", "Directory of local scaffolds (default $HOME/.scaffolder/scaffolds).")

	root.AddCommand(listCmd(g))
	root.AddCommand(showCmd(g))
	root.AddCommand(runCmd(g))
	root.AddCommand(applyCmd(g))
	root.AddCommand(schemaCmd())
	root.AddCommand(versionCmd())
	return root
}

// setup loads the config of projectDir and applies the global flags on top.
func (g *globalOptions) setup(projectDir string) (*config.Config, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	log.SetLogLevel(log.ParseLevel(cfg.LogLevel))
	if g.noColor || cfg.NoColor {
		color.NoColor = true
	}
	if g.scaffoldsDir != "" {
		cfg.ScaffoldsDir = g.scaffoldsDir
	}
	if cfg.Path != "" {
		log.Debug("Using config %s", cfg.Path)
	}
	return cfg, nil
}

func newModifier(cfg *config.Config) *modifier.Modifier {
	return modifier.New(modifier.WithMarkupExtensions(cfg.MarkupExtensions...))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of scaffolder",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of code-change files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := codechange.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func applyCmd(g *globalOptions) *cobra.Command {
	var (
		projectDir string
		flags      []string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "apply <changes.yaml>",
		Short: "Apply a code-change file to a project",
		Long: `Apply the edits of a code-change file (YAML or JSON) to a project
without a scaffold definition.

Examples:
  scaffolder apply changes.yaml --project ./api
  scaffolder apply changes.yaml --project ./api --flag UseRedis --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(projectDir)
			if err != nil {
				return err
			}
			changes, err := codechange.LoadConfig(args[0])
			if err != nil {
				return err
			}
			s := &pipeline.Scaffolder{
				Name:        filepath.Base(args[0]),
				Description: "ad-hoc code changes",
				Steps: []pipeline.Step{
					steps.NewResolveProjectStep(project.NewProvider()),
					steps.NewModifyCodeStep(newModifier(cfg), false),
				},
				Preparers: []pipeline.Preparer{
					pipeline.PreparerFuncs{PreFunc: func(context.Context, pipeline.Step, *pipeline.ScaffolderContext) (pipeline.Binding, error) {
						return pipeline.Binding{Config: steps.ResolveProjectConfig{Dir: projectDir}}, nil
					}},
					pipeline.PreparerFuncs{PreFunc: func(context.Context, pipeline.Step, *pipeline.ScaffolderContext) (pipeline.Binding, error) {
						return pipeline.Binding{Config: steps.ModifyCodeConfig{Changes: changes, Flags: flags, DryRun: dryRun || cfg.DryRun}}, nil
					}},
				},
			}
			sc := pipeline.NewContext(s)
			res, err := s.Run(cmd.Context(), sc)
			printRun(cmd.OutOrStdout(), sc, res)
			if err != nil {
				return err
			}
			return summaryError(sc)
		},
	}
	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "Project directory.")
	cmd.Flags().StringArrayVar(&flags, "flag", nil, "Activate a scenario flag; repeatable.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing.")
	return cmd
}
