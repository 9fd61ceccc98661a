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

// Package modifier applies a filtered code-change document to the content
// of one file.
package modifier

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudwego/scaffolder/internal/log"
	"github.com/cloudwego/scaffolder/lang/codechange"
	"github.com/cloudwego/scaffolder/lang/syntax"
)

// Modifier edits documents. It holds no per-run state and may be shared.
type Modifier struct {
	langs  map[string]*syntax.Spec
	markup map[string]bool
}

// Option configures a Modifier.
type Option func(*Modifier)

// WithLanguage registers spec for its extensions, replacing any earlier
// registration.
func WithLanguage(spec *syntax.Spec) Option {
	return func(m *Modifier) {
		for _, ext := range spec.Extensions {
			m.langs[strings.ToLower(ext)] = spec
		}
	}
}

// WithMarkupExtensions adds extensions edited by text replacement.
func WithMarkupExtensions(exts ...string) Option {
	return func(m *Modifier) {
		for _, ext := range exts {
			m.markup[strings.ToLower(ext)] = true
		}
	}
}

// New returns a Modifier knowing the default languages and markup
// extensions plus whatever opts add.
func New(opts ...Option) *Modifier {
	m := &Modifier{
		langs:  make(map[string]*syntax.Spec),
		markup: make(map[string]bool),
	}
	for _, spec := range DefaultLanguages() {
		WithLanguage(spec)(m)
	}
	WithMarkupExtensions(DefaultMarkupExtensions...)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Modify applies doc, already filtered for the active options, to src.
// It never fails as a whole: on any error or panic the result carries
// FileFailed and the original content.
func (m *Modifier) Modify(ctx context.Context, path string, doc codechange.CodeFile, src []byte) (res *FileResult) {
	ext := doc.Ext()
	if ext == "" {
		ext = filepath.Ext(path)
	}
	cat, spec := m.Categorize(ext)
	res = &FileResult{
		Path:     path,
		Category: cat,
		Original: src,
		Content:  src,
	}
	defer func() {
		if r := recover(); r != nil {
			res.fail(&FileProcessingError{Path: path, Err: errors.Errorf("panic: %v", r)})
			log.Error("Failed to modify %s: %v", path, res.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.fail(&FileProcessingError{Path: path, Err: err})
		return res
	}

	var (
		out []byte
		err error
	)
	switch cat {
	case StructuredEdit, TextEdit:
		out, err = m.edit(ctx, res, spec, doc, src)
	case PassThrough:
		notApplicable(res, doc, fmt.Sprintf("no editor for %q files", ext))
		out = src
	}
	if err != nil {
		res.fail(&FileProcessingError{Path: path, Err: err})
		log.Error("Failed to modify %s: %v", path, err)
		return res
	}
	res.Content = out
	res.settle()
	for _, c := range res.Changes {
		log.Debug("%s: %s %q in %q: %s %s", path, c.Mode, c.Marker, c.Anchor, c.Status, c.Reason)
	}
	return res
}

// locator finds anchor scopes and statements in one version of a file.
type locator interface {
	FindScope(anchor, globalAnchor string) (syntax.Span, bool)
	StatementAt(start, end int, within syntax.Span) (syntax.Span, bool)
	Close()
}

func locate(ctx context.Context, spec *syntax.Spec, src []byte) (locator, error) {
	if spec == nil {
		return syntax.ParseText(src), nil
	}
	return syntax.Parse(ctx, spec, src)
}

// edit applies the method changes in declared order, then the text
// replacements. A nil spec resolves anchors textually and skips formatting.
func (m *Modifier) edit(ctx context.Context, res *FileResult, spec *syntax.Spec, doc codechange.CodeFile, src []byte) ([]byte, error) {
	cur := src
	// end of the last After insertion per marker, so repeated After
	// changes stack below each other in declared order
	cursors := make(map[string]int)
	for _, anchor := range doc.Anchors() {
		for _, ch := range doc.Methods[anchor] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			key := anchor + "\x00" + ch.Anchor
			at, ok := cursors[key]
			if !ok || ch.Mode != codechange.ModeAfter || ch.Anchor == "" {
				at = -1
			}
			next, rec, sp, err := applyChange(ctx, spec, cur, anchor, ch, at)
			if err != nil {
				return nil, err
			}
			res.Changes = append(res.Changes, rec)
			switch {
			case sp.at >= 0:
				shift(cursors, sp, len(next)-len(cur))
				if ch.Mode == codechange.ModeAfter && ch.Anchor != "" {
					cursors[key] = sp.at + sp.removed + len(next) - len(cur)
				}
			case rec.Status == StatusAlreadyApplied && ch.Mode == codechange.ModeAfter && ch.Anchor != "":
				if end := lineAfter(cur, ch.Anchor, ch.Content); end >= 0 {
					cursors[key] = end
				}
			}
			cur = next
		}
	}
	cur = replaceText(res, doc.Replacements, cur)
	if spec != nil && spec.Format != nil && !bytes.Equal(cur, src) {
		formatted, err := spec.Format(res.Path, cur)
		if err != nil {
			return nil, err
		}
		cur = formatted
	}
	return cur, nil
}

// spliceAt describes where an edit changed the source; at is -1 when
// nothing changed.
type spliceAt struct {
	at      int
	removed int
}

var unchanged = spliceAt{at: -1}

// shift moves the cursors behind an edit by delta bytes.
func shift(cursors map[string]int, sp spliceAt, delta int) {
	for k, c := range cursors {
		switch {
		case c >= sp.at+sp.removed && (c > sp.at || sp.removed > 0):
			cursors[k] = c + delta
		case c > sp.at:
			cursors[k] = sp.at
		}
	}
}

// applyChange applies one change. after, when not negative, is where an
// earlier After change on the same marker ended.
func applyChange(ctx context.Context, spec *syntax.Spec, src []byte, anchor string, ch codechange.CodeChange, after int) ([]byte, ChangeRecord, spliceAt, error) {
	rec := ChangeRecord{Anchor: anchor, Marker: ch.Anchor, Mode: ch.Mode}
	tree, err := locate(ctx, spec, src)
	if err != nil {
		return nil, rec, unchanged, err
	}
	defer tree.Close()

	scope, ok := tree.FindScope(anchor, codechange.GlobalAnchor)
	if !ok {
		rec.Status = StatusAnchorNotFound
		rec.Reason = fmt.Sprintf("anchor %q not found", anchor)
		return src, rec, unchanged, nil
	}
	body := src[scope.Start:scope.End]
	if containsContent(body, ch.Content) {
		rec.Status = StatusAlreadyApplied
		return src, rec, unchanged, nil
	}

	if ch.Anchor == "" {
		rec.Status = StatusApplied
		if ch.Mode == codechange.ModeBefore {
			return prepend(src, ch.Content), rec, spliceAt{at: 0}, nil
		}
		return appendLine(src, ch.Content), rec, spliceAt{at: len(src)}, nil
	}

	idx := bytes.Index(body, []byte(ch.Anchor))
	if idx < 0 {
		if ch.Mode == codechange.ModeReplace && strings.TrimSpace(ch.Content) == "" {
			rec.Status = StatusAlreadyApplied
			return src, rec, unchanged, nil
		}
		rec.Status = StatusMarkerNotFound
		rec.Reason = fmt.Sprintf("%q not found in %s", ch.Anchor, anchor)
		return src, rec, unchanged, nil
	}
	start := scope.Start + idx
	end := start + len(ch.Anchor)

	rec.Status = StatusApplied
	if ch.Mode == codechange.ModeReplace {
		return splice(src, start, end, []byte(ch.Content)), rec, spliceAt{at: start, removed: end - start}, nil
	}
	stmt, ok := tree.StatementAt(start, end, scope)
	if !ok {
		stmt = syntax.Span{Start: start, End: end}
	}
	if ch.Mode == codechange.ModeBefore {
		out, at := insertLineBefore(src, stmt, ch.Content)
		return out, rec, spliceAt{at: at}, nil
	}
	if after >= 0 && after <= len(src) {
		block := indentLines(ch.Content, indentAt(src, stmt.Start))
		return insertBlock(src, after, block), rec, spliceAt{at: after}, nil
	}
	out, at := insertLineAfter(src, stmt, ch.Content)
	return out, rec, spliceAt{at: at}, nil
}

// replaceText applies literal replacements in order.
func replaceText(res *FileResult, reps []codechange.TextReplacement, src []byte) []byte {
	cur := src
	for _, r := range reps {
		rec := ChangeRecord{Marker: r.Find, Mode: codechange.ModeReplace}
		find, content := []byte(r.Find), []byte(r.Content)
		insertion := len(content) > 0 && bytes.Contains(content, find)
		switch {
		case !bytes.Contains(cur, find):
			if len(content) > 0 && bytes.Contains(cur, content) {
				rec.Status = StatusAlreadyApplied
			} else {
				rec.Status = StatusMarkerNotFound
				rec.Reason = fmt.Sprintf("%q not found", r.Find)
			}
		case insertion && insertedNear(cur, find, content):
			rec.Status = StatusAlreadyApplied
		case r.Scope == codechange.ScopeAll:
			cur = bytes.ReplaceAll(cur, find, content)
			rec.Status = StatusApplied
		default:
			cur = bytes.Replace(cur, find, content, 1)
			rec.Status = StatusApplied
		}
		res.Changes = append(res.Changes, rec)
	}
	return cur
}

func notApplicable(res *FileResult, doc codechange.CodeFile, reason string) {
	for _, anchor := range doc.Anchors() {
		for _, ch := range doc.Methods[anchor] {
			res.Changes = append(res.Changes, ChangeRecord{
				Anchor: anchor,
				Marker: ch.Anchor,
				Mode:   ch.Mode,
				Status: StatusNotApplicable,
				Reason: reason,
			})
		}
	}
	for _, r := range doc.Replacements {
		res.Changes = append(res.Changes, ChangeRecord{
			Marker: r.Find,
			Mode:   codechange.ModeReplace,
			Status: StatusNotApplicable,
			Reason: reason,
		})
	}
}
