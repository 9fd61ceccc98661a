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
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/vifraa/gopom"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/internal/pipeline"
	"github.com/cloudwego/scaffolder/lang/project"
)

// AddPackagesConfig is the per-run binding of AddPackagesStep.
type AddPackagesConfig struct {
	// Packages use the notation of the project's ecosystem:
	// "path@version" for Go and npm, "group:artifact:version" for Maven,
	// "Name@version" for NuGet and "name==version" for pip.
	Packages []string
	DryRun   bool
}

// AddPackagesStep declares dependencies in the project manifest. Packages
// already declared with the same version are left alone.
type AddPackagesStep struct {
	Base
}

// NewAddPackagesStep returns the step under its default name.
func NewAddPackagesStep(tolerant bool) *AddPackagesStep {
	return &AddPackagesStep{Base: Base{StepName: "add-packages", Tolerant: tolerant}}
}

// Execute implements pipeline.Step.
func (s *AddPackagesStep) Execute(ctx context.Context, sc *pipeline.ScaffolderContext, b pipeline.Binding) error {
	cfg, err := pipeline.ConfigAs[AddPackagesConfig](b)
	if err != nil {
		return err
	}
	proj, tx, err := projectOf(sc)
	if err != nil {
		return err
	}
	if len(cfg.Packages) == 0 {
		return nil
	}
	if proj.Manifest == "" {
		return errors.Errorf("project %s has no manifest to add packages to", proj.Name)
	}

	doc, err := tx.Load(proj.Manifest)
	if err != nil {
		return err
	}
	var add func([]byte, string) ([]byte, bool, error)
	switch {
	case proj.Language == project.Golang:
		add = addGoRequire
	case proj.Language == project.Java:
		add = addMavenDependency
	case proj.Language == project.JavaScript || proj.Language == project.TypeScript:
		add = addNpmDependency
	case proj.Language == project.CSharp:
		add = addPackageReference
	case path.Base(proj.Manifest) == "requirements.txt":
		add = addRequirement
	default:
		return errors.Errorf("adding packages to %s is not supported", proj.Manifest)
	}

	content := doc.Content
	var added []string
	for _, pkg := range cfg.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, changed, err := add(content, pkg)
		if err != nil {
			return errors.Wrapf(err, "add %s", pkg)
		}
		if changed {
			added = append(added, pkg)
			log.Info("Adding %s to %s", pkg, proj.Manifest)
		} else {
			log.Debug("%s already in %s", pkg, proj.Manifest)
		}
		content = next
	}
	sc.Properties[PropertyPackages] = added
	if len(added) == 0 {
		return nil
	}
	if err := tx.Stage(proj.Manifest, content); err != nil {
		return err
	}
	_, err = commit(ctx, sc, tx, cfg.DryRun)
	return err
}

func splitVersion(pkg, sep string) (name, version string, err error) {
	i := strings.LastIndex(pkg, sep)
	if i <= 0 || i+len(sep) >= len(pkg) {
		return "", "", errors.Errorf("%q: want name%sversion", pkg, sep)
	}
	return pkg[:i], pkg[i+len(sep):], nil
}

func addGoRequire(data []byte, pkg string) ([]byte, bool, error) {
	modPath, version, err := splitVersion(pkg, "@")
	if err != nil {
		return nil, false, err
	}
	if err := module.Check(modPath, version); err != nil {
		return nil, false, err
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil, false, err
	}
	for _, r := range f.Require {
		if r.Mod.Path == modPath && r.Mod.Version == version {
			return data, false, nil
		}
	}
	if err := f.AddRequire(modPath, version); err != nil {
		return nil, false, err
	}
	f.Cleanup()
	out, err := f.Format()
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func addNpmDependency(data []byte, pkg string) ([]byte, bool, error) {
	name, version, err := splitVersion(pkg, "@")
	if err != nil {
		return nil, false, err
	}
	if !gjson.ValidBytes(data) {
		return nil, false, errors.New("package.json is not valid JSON")
	}
	key := "dependencies." + jsonPathEscape(name)
	if gjson.GetBytes(data, key).String() == version {
		return data, false, nil
	}
	out, err := sjson.SetBytes(data, key, version)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

var jsonPathSpecial = strings.NewReplacer(".", "\\.", "*", "\\*", "?", "\\?", "|", "\\|", "#", "\\#", "@", "\\@")

func jsonPathEscape(s string) string { return jsonPathSpecial.Replace(s) }

func addMavenDependency(data []byte, pkg string) ([]byte, bool, error) {
	parts := strings.Split(pkg, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, false, errors.Errorf("%q: want group:artifact:version[:scope]", pkg)
	}
	group, artifact, version := parts[0], parts[1], parts[2]

	var pom gopom.Project
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, false, errors.Wrap(err, "parse pom.xml")
	}
	if pom.Dependencies != nil {
		for _, d := range *pom.Dependencies {
			if deref(d.GroupID) == group && deref(d.ArtifactID) == artifact && deref(d.Version) == version {
				return data, false, nil
			}
		}
	}

	var dep strings.Builder
	dep.WriteString("<dependency>\n")
	fmt.Fprintf(&dep, "  <groupId>%s</groupId>\n", group)
	fmt.Fprintf(&dep, "  <artifactId>%s</artifactId>\n", artifact)
	fmt.Fprintf(&dep, "  <version>%s</version>\n", version)
	if len(parts) == 4 {
		fmt.Fprintf(&dep, "  <scope>%s</scope>\n", parts[3])
	}
	dep.WriteString("</dependency>")

	if at := projectDependenciesEnd(data); at >= 0 {
		return insertBlock(data, at, dep.String()), true, nil
	}
	end := bytes.LastIndex(data, []byte("</project>"))
	if end < 0 {
		return nil, false, errors.New("pom.xml has no </project>")
	}
	block := "<dependencies>\n" + indent(dep.String(), "  ") + "\n</dependencies>"
	return insertBlock(data, end, block), true, nil
}

var nestedPOMSections = regexp.MustCompile(`(?s)<dependencyManagement>.*?</dependencyManagement>|<build>.*?</build>|<profiles>.*?</profiles>`)

// projectDependenciesEnd finds the </dependencies> closing the
// project-level list, skipping dependencyManagement and plugins.
func projectDependenciesEnd(data []byte) int {
	masked := nestedPOMSections.ReplaceAllFunc(append([]byte(nil), data...), func(m []byte) []byte {
		return bytes.Repeat([]byte(" "), len(m))
	})
	return bytes.LastIndex(masked, []byte("</dependencies>"))
}

var packageReference = regexp.MustCompile(`<PackageReference\s+Include="([^"]+)"(?:\s+Version="([^"]*)")?`)

func addPackageReference(data []byte, pkg string) ([]byte, bool, error) {
	name, version, err := splitVersion(pkg, "@")
	if err != nil {
		return nil, false, err
	}
	for _, m := range packageReference.FindAllSubmatch(data, -1) {
		if strings.EqualFold(string(m[1]), name) && string(m[2]) == version {
			return data, false, nil
		}
	}
	ref := fmt.Sprintf("<PackageReference Include=%q Version=%q />", name, version)
	if loc := packageReference.FindIndex(data); loc != nil {
		if end := bytes.Index(data[loc[0]:], []byte("</ItemGroup>")); end >= 0 {
			return insertBlock(data, loc[0]+end, ref), true, nil
		}
	}
	end := bytes.LastIndex(data, []byte("</Project>"))
	if end < 0 {
		return nil, false, errors.New("project file has no </Project>")
	}
	return insertBlock(data, end, "<ItemGroup>\n  "+ref+"\n</ItemGroup>"), true, nil
}

func addRequirement(data []byte, pkg string) ([]byte, bool, error) {
	name, _, err := splitVersion(pkg, "==")
	if err != nil {
		return nil, false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == pkg {
			return data, false, nil
		}
		if strings.HasPrefix(strings.ToLower(line), strings.ToLower(name)+"==") {
			return nil, false, errors.Errorf("%s is pinned to another version: %s", name, line)
		}
	}
	out := append([]byte(nil), data...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, pkg+"\n"...), true, nil
}

// insertBlock puts block before data[at], on its own lines, one level
// deeper than the line holding data[at].
func insertBlock(data []byte, at int, block string) []byte {
	lineStart := bytes.LastIndexByte(data[:at], '\n') + 1
	lead := data[lineStart:at]
	ind := string(lead[:len(lead)-len(bytes.TrimLeft(lead, " \t"))])
	text := indent(block, ind+"  ")

	out := make([]byte, 0, len(data)+len(text)+len(ind)+2)
	if len(bytes.TrimSpace(lead)) == 0 {
		out = append(out, data[:lineStart]...)
		out = append(out, text+"\n"...)
		return append(out, data[lineStart:]...)
	}
	out = append(out, data[:at]...)
	out = append(out, "\n"+text+"\n"+ind...)
	return append(out, data[at:]...)
}

func indent(s, ind string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = ind + l
		}
	}
	return strings.Join(lines, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
