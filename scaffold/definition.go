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

// Package scaffold discovers declarative scaffold definitions and turns
// them into runnable pipelines.
package scaffold

import "io/fs"

// DefinitionFileName is the file that marks a scaffold directory.
const DefinitionFileName = "scaffold.yaml"

// Step kinds a definition may use.
const (
	KindValidateOptions = "validate-options"
	KindResolveProject  = "resolve-project"
	KindAddPackages     = "add-packages"
	KindRenderTemplates = "render-templates"
	KindModifyCode      = "modify-code"
)

// Definition is one scaffold as declared in scaffold.yaml.
type Definition struct {
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description" validate:"required"`
	Category    string      `yaml:"category,omitempty"`
	Options     []OptionDef `yaml:"options,omitempty" validate:"dive"`
	Steps       []StepDef   `yaml:"steps" validate:"required,min=1,dive"`

	Source Source `yaml:"-"`
	// Dir is the scaffold directory, a path in the embedded FS or on disk.
	Dir string `yaml:"-"`
	// FS is rooted at Dir; templates and code-change files resolve in it.
	FS fs.FS `yaml:"-"`
}

// OptionDef declares one caller-facing option.
type OptionDef struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type,omitempty" validate:"omitempty,oneof=string bool int"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Picker      string `yaml:"picker,omitempty" validate:"omitempty,oneof=directory file text"`
}

// StepDef declares one step. Fields beyond Kind apply to the kinds
// named in their comments.
type StepDef struct {
	Kind            string `yaml:"kind" validate:"required,oneof=validate-options resolve-project add-packages render-templates modify-code"`
	Name            string `yaml:"name,omitempty"`
	ContinueOnError bool   `yaml:"continue_on_error,omitempty"`
	// When is a boolean expression over option values; false skips the step.
	When string `yaml:"when,omitempty"`

	// add-packages
	Packages []string `yaml:"packages,omitempty" validate:"required_if=Kind add-packages"`
	// render-templates
	Templates []TemplateDef `yaml:"templates,omitempty" validate:"required_if=Kind render-templates,dive"`
	// modify-code
	CodeChanges string `yaml:"code_changes,omitempty" validate:"required_if=Kind modify-code"`
	// Flags maps a scenario flag to the expression that activates it.
	Flags map[string]string `yaml:"flags,omitempty"`
}

// TemplateDef is one template of a render-templates step.
type TemplateDef struct {
	Template  string `yaml:"template" validate:"required"`
	Output    string `yaml:"output,omitempty"`
	Overwrite bool   `yaml:"overwrite,omitempty"`
}

// Source is where a definition was discovered.
type Source int

const (
	SourceEmbedded Source = iota
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "builtin"
	case SourceLocal:
		return "local"
	default:
		return "unknown"
	}
}

// StepName is the display name of the step.
func (d StepDef) StepName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Kind
}

// NeedsProject reports whether the step reads or writes the project.
func (d StepDef) NeedsProject() bool {
	switch d.Kind {
	case KindAddPackages, KindRenderTemplates, KindModifyCode:
		return true
	}
	return false
}
