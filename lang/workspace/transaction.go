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

// Package workspace collects the files edited during one run and persists
// them with a single commit.
package workspace

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
)

// Hash is the hex sha256 of content.
func Hash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// Document is one file as seen by the run: its content when first read and
// its current, possibly staged, content.
type Document struct {
	// Path is relative to the workspace root, slash separated.
	Path    string
	Existed bool
	Base    []byte
	// BaseHash is the hash of Base, compared with the disk at commit time.
	BaseHash string
	Content  []byte
	Staged   bool
}

// Dirty reports whether committing the document would change the disk.
func (d *Document) Dirty() bool {
	return d.Staged && (!d.Existed || !bytes.Equal(d.Base, d.Content))
}

// Transaction is the project snapshot of one run. It is owned by a single
// run and is not safe for concurrent use.
type Transaction struct {
	root  string
	docs  map[string]*Document
	order []string
}

// Open starts a transaction over the directory root.
func Open(root string) (*Transaction, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "open workspace")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("workspace %s is not a directory", abs)
	}
	return &Transaction{root: abs, docs: make(map[string]*Document)}, nil
}

// Root is the absolute workspace directory.
func (t *Transaction) Root() string { return t.root }

// Rel turns p, absolute or relative to the root, into the slash separated
// key used by the transaction. Paths leaving the root are rejected.
func (t *Transaction) Rel(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(t.root, p)
	}
	rel, err := filepath.Rel(t.root, filepath.Clean(abs))
	if err != nil {
		return "", errors.Wrapf(err, "path %s", p)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %s is outside workspace %s", p, t.root)
	}
	return filepath.ToSlash(rel), nil
}

// Abs is the on-disk location of rel.
func (t *Transaction) Abs(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

// Load returns the document for p, reading it from disk on first access.
// Later loads see content staged earlier in the same run.
func (t *Transaction) Load(p string) (*Document, error) {
	rel, err := t.Rel(p)
	if err != nil {
		return nil, err
	}
	if d, ok := t.docs[rel]; ok {
		return d, nil
	}
	d := &Document{Path: rel}
	data, err := os.ReadFile(t.Abs(rel))
	switch {
	case err == nil:
		d.Existed = true
		d.Base = data
		d.BaseHash = Hash(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.Wrapf(err, "read %s", rel)
	}
	d.Content = d.Base
	t.docs[rel] = d
	t.order = append(t.order, rel)
	return d, nil
}

// Read is Load returning only the current content.
func (t *Transaction) Read(p string) ([]byte, bool, error) {
	d, err := t.Load(p)
	if err != nil {
		return nil, false, err
	}
	return d.Content, d.Existed || d.Staged, nil
}

// Stage replaces the content of p in the snapshot. Nothing touches the disk
// until Commit.
func (t *Transaction) Stage(p string, content []byte) error {
	d, err := t.Load(p)
	if err != nil {
		return err
	}
	d.Content = content
	d.Staged = true
	return nil
}

// Documents lists every document loaded so far, in first-access order.
func (t *Transaction) Documents() []*Document {
	out := make([]*Document, 0, len(t.order))
	for _, rel := range t.order {
		out = append(out, t.docs[rel])
	}
	return out
}

// Pending lists the documents a commit would write.
func (t *Transaction) Pending() []*Document {
	var out []*Document
	for _, d := range t.Documents() {
		if d.Dirty() {
			out = append(out, d)
		}
	}
	return out
}

// CommitOptions tunes Commit.
type CommitOptions struct {
	// DryRun reports what would be written without touching the disk.
	DryRun bool
	// Mode is used for created files. Zero means 0644.
	Mode fs.FileMode
}

// FileFailure is one file that was not durably written.
type FileFailure struct {
	Path string
	Err  error
}

// CommitReport accounts for every staged document.
type CommitReport struct {
	DryRun    bool
	Written   []string
	Unchanged []string
	Failed    []FileFailure
}

// Commit persists every staged document, one file at a time in first-access
// order. A failing file does not stop the others; there is no rollback of
// files already written. The report is always returned; the error is a
// *PersistenceError when any file failed.
func (t *Transaction) Commit(ctx context.Context, opts CommitOptions) (*CommitReport, error) {
	rep := &CommitReport{DryRun: opts.DryRun}
	for _, d := range t.Documents() {
		if !d.Staged {
			continue
		}
		if !d.Dirty() {
			rep.Unchanged = append(rep.Unchanged, d.Path)
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, FileFailure{Path: d.Path, Err: err})
			continue
		}
		if err := t.checkConflict(d); err != nil {
			rep.Failed = append(rep.Failed, FileFailure{Path: d.Path, Err: err})
			log.Warn("Not writing %s: %v", d.Path, err)
			continue
		}
		if opts.DryRun {
			rep.Written = append(rep.Written, d.Path)
			log.Info("Would write %s", d.Path)
			continue
		}
		if err := writeFile(t.Abs(d.Path), d.Content, opts.Mode); err != nil {
			rep.Failed = append(rep.Failed, FileFailure{Path: d.Path, Err: err})
			log.Error("Failed to write %s: %v", d.Path, err)
			continue
		}
		rep.Written = append(rep.Written, d.Path)
		log.Debug("Wrote %s", d.Path)
		d.Existed = true
		d.Base = d.Content
		d.BaseHash = Hash(d.Content)
	}
	if len(rep.Failed) > 0 {
		return rep, &PersistenceError{Written: rep.Written, Failed: rep.Failed}
	}
	return rep, nil
}

// checkConflict fails when the file on disk no longer matches what the run
// read.
func (t *Transaction) checkConflict(d *Document) error {
	data, err := os.ReadFile(t.Abs(d.Path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if d.Existed {
			return &ConflictError{Path: d.Path, Reason: "deleted since read"}
		}
		return nil
	case err != nil:
		return errors.Wrapf(err, "read %s", d.Path)
	}
	if !d.Existed {
		return &ConflictError{Path: d.Path, Reason: "created since read"}
	}
	if Hash(data) != d.BaseHash {
		return &ConflictError{Path: d.Path, Reason: "modified since read"}
	}
	return nil
}

// writeFile replaces path through a temporary sibling and a rename, keeping
// the mode of an existing file.
func writeFile(path string, content []byte, mode fs.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", name)
	}
	if err := os.Chmod(name, mode); err != nil {
		return errors.Wrapf(err, "chmod %s", name)
	}
	return errors.Wrapf(os.Rename(name, path), "rename to %s", path)
}
