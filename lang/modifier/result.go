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

package modifier

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cloudwego/scaffolder/lang/codechange"
)

// ChangeStatus is the outcome of one declared edit.
type ChangeStatus string

const (
	StatusApplied        ChangeStatus = "applied"
	StatusAlreadyApplied ChangeStatus = "already-applied"
	StatusAnchorNotFound ChangeStatus = "anchor-not-found"
	StatusMarkerNotFound ChangeStatus = "marker-not-found"
	StatusNotApplicable  ChangeStatus = "not-applicable"
	StatusFileNotFound   ChangeStatus = "file-not-found"
	StatusDuplicateFile  ChangeStatus = "duplicate-file"
)

// ChangeRecord explains what happened to one edit. Anchor is empty for
// text replacements.
type ChangeRecord struct {
	Anchor string
	Marker string
	Mode   codechange.InsertionMode
	Status ChangeStatus
	Reason string
}

// Skipped reports whether the edit was passed over because its location
// could not be found or its file was already edited.
func (r ChangeRecord) Skipped() bool {
	switch r.Status {
	case StatusAnchorNotFound, StatusMarkerNotFound, StatusFileNotFound, StatusDuplicateFile:
		return true
	}
	return false
}

// FileStatus is the outcome for one file.
type FileStatus string

const (
	FileModified       FileStatus = "modified"
	FileAlreadyApplied FileStatus = "already-applied"
	FileSkipped        FileStatus = "skipped"
	FileUnchanged      FileStatus = "unchanged"
	FileFailed         FileStatus = "failed"
)

// FileResult is the edited-or-unchanged outcome for one file.
type FileResult struct {
	Path     string
	Category Category
	Status   FileStatus
	// Created is set when the file did not exist before the run.
	Created  bool
	Original []byte
	Content  []byte
	Changes  []ChangeRecord
	Err      error
}

// Changed reports whether Content differs from Original.
func (r *FileResult) Changed() bool {
	return r.Created || !bytes.Equal(r.Original, r.Content)
}

// Reason is a one-line explanation for skipped and failed files.
func (r *FileResult) Reason() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	var reasons []string
	for _, c := range r.Changes {
		if c.Skipped() {
			reasons = append(reasons, c.Reason)
		}
	}
	return strings.Join(reasons, "; ")
}

func (r *FileResult) settle() {
	if r.Status == FileFailed {
		return
	}
	if r.Changed() {
		r.Status = FileModified
		return
	}
	var already, skipped int
	for _, c := range r.Changes {
		switch {
		case c.Status == StatusAlreadyApplied:
			already++
		case c.Skipped():
			skipped++
		}
	}
	switch {
	case skipped > 0:
		r.Status = FileSkipped
	case already > 0:
		r.Status = FileAlreadyApplied
	default:
		r.Status = FileUnchanged
	}
}

func (r *FileResult) fail(err error) {
	r.Status = FileFailed
	r.Err = err
	r.Content = r.Original
}

// FileProcessingError wraps whatever went wrong while editing one file.
type FileProcessingError struct {
	Path string
	Err  error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("process %s: %v", e.Path, e.Err)
}

func (e *FileProcessingError) Unwrap() error { return e.Err }

// Summary accounts for every file considered in a run.
type Summary struct {
	Files []*FileResult
}

// Add appends r. A later result for the same path replaces the earlier.
func (s *Summary) Add(r *FileResult) {
	for i, f := range s.Files {
		if f.Path == r.Path {
			s.Files[i] = r
			return
		}
	}
	s.Files = append(s.Files, r)
}

// Lookup returns the result for path, or nil.
func (s *Summary) Lookup(path string) *FileResult {
	for _, f := range s.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// MarkFailed turns the result for path into a failure, e.g. when
// persisting it did not succeed.
func (s *Summary) MarkFailed(path string, err error) {
	if r := s.Lookup(path); r != nil {
		r.Status = FileFailed
		r.Err = err
		return
	}
	s.Add(&FileResult{Path: path, Status: FileFailed, Err: err})
}

func (s *Summary) byStatus(st FileStatus) []*FileResult {
	var out []*FileResult
	for _, f := range s.Files {
		if f.Status == st {
			out = append(out, f)
		}
	}
	return out
}

func (s *Summary) Modified() []*FileResult       { return s.byStatus(FileModified) }
func (s *Summary) AlreadyApplied() []*FileResult { return s.byStatus(FileAlreadyApplied) }
func (s *Summary) Skipped() []*FileResult        { return s.byStatus(FileSkipped) }
func (s *Summary) Failed() []*FileResult         { return s.byStatus(FileFailed) }

// OK reports whether no file failed.
func (s *Summary) OK() bool {
	return len(s.Failed()) == 0
}
