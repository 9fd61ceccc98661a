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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/scaffold/builtin"
)

// Registry holds the discovered scaffolds. Local definitions shadow
// built-ins of the same name.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]*Definition
	localDir string
	loader   *Loader
}

func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]*Definition),
		loader: NewLoader(),
	}
}

// SetLocalDir sets the directory searched for local scaffolds. Empty
// means $HOME/.scaffolder/scaffolds.
func (r *Registry) SetLocalDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.localDir = dir
}

// DefaultLocalDir is $HOME/.scaffolder/scaffolds, or "" without a home.
func DefaultLocalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".scaffolder", "scaffolds")
}

// Discover loads the built-in scaffolds and then the local ones. Broken
// definitions are logged and left out.
func (r *Registry) Discover() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs, err := r.loader.LoadAll(builtin.FS, ".", SourceEmbedded)
	if err != nil {
		log.Error("Failed to load built-in scaffolds: %v", err)
	}
	for _, def := range defs {
		r.defs[def.Name] = def
	}

	dir := r.localDir
	if dir == "" {
		dir = DefaultLocalDir()
	}
	if dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			local, err := r.loader.LoadAll(os.DirFS(dir), ".", SourceLocal)
			if err != nil {
				log.Warn("Some scaffolds in %s were skipped: %v", dir, err)
			}
			for _, def := range local {
				def.Dir = filepath.Join(dir, filepath.FromSlash(def.Dir))
				if prev, ok := r.defs[def.Name]; ok {
					log.Info("Local scaffold %s overrides %s one", def.Name, prev.Source)
				}
				r.defs[def.Name] = def
			}
		}
	}

	log.Info("Discovered %d scaffolds", len(r.defs))
	return nil
}

// Register adds def, replacing any scaffold of the same name.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
}

// NotFoundError is returned by Get for unknown names.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return "scaffold '" + e.Name + "' not found"
	}
	return "scaffold '" + e.Name + "' not found, did you mean " + strings.Join(e.Suggestions, ", ") + "?"
}

// Get returns the scaffold named name.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}
	var suggestions []string
	for i, m := range r.Search(name) {
		if i == 3 {
			break
		}
		suggestions = append(suggestions, m.Name)
	}
	return nil, errors.WithStack(&NotFoundError{Name: name, Suggestions: suggestions})
}

// List returns all scaffolds ordered by category, then name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Search ranks scaffolds by fuzzy match of query against name and
// description. Name matches come first.
func (r *Registry) Search(query string) []*Definition {
	all := r.List()
	if strings.TrimSpace(query) == "" {
		return all
	}
	names := make([]string, len(all))
	descs := make([]string, len(all))
	for i, def := range all {
		names[i] = def.Name
		descs[i] = strings.ToLower(def.Description)
	}

	var out []*Definition
	seen := make(map[int]bool)
	for _, m := range fuzzy.Find(strings.ToLower(query), names) {
		seen[m.Index] = true
		out = append(out, all[m.Index])
	}
	for _, m := range fuzzy.Find(strings.ToLower(query), descs) {
		if !seen[m.Index] {
			seen[m.Index] = true
			out = append(out, all[m.Index])
		}
	}
	return out
}

// Count is the number of scaffolds.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
