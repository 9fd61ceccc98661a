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

// Package syntax locates anchors and statements in source files with
// tree-sitter.
package syntax

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
)

// Spec describes one language to the anchor resolver.
type Spec struct {
	Name       string
	Extensions []string
	Language   func() *sitter.Language

	// FunctionTypes are node types that declare a named callable with a
	// "name" and a "body" field.
	FunctionTypes []string

	// Declares overrides how a node is recognized as a named callable. It
	// returns nil, nil for nodes that are not declarations.
	Declares func(n *sitter.Node) (name, body *sitter.Node)

	// QualifiedName, if set, lets anchors of the form "Type.method" pick
	// one declaration among several with the same simple name.
	QualifiedName func(n *sitter.Node, src []byte) string

	// Format, if set, is run over a file after it was edited.
	Format func(path string, src []byte) ([]byte, error)
}

// QualifyByContainers builds a QualifiedName func joining the names of
// enclosing nodes of the given types, outermost first.
func QualifyByContainers(containerTypes ...string) func(n *sitter.Node, src []byte) string {
	return func(n *sitter.Node, src []byte) string {
		name := n.ChildByFieldName("name")
		if name == nil {
			return ""
		}
		parts := []string{name.Content(src)}
		for p := n.Parent(); p != nil; p = p.Parent() {
			for _, typ := range containerTypes {
				if p.Type() != typ {
					continue
				}
				if cn := p.ChildByFieldName("name"); cn != nil {
					parts = append([]string{cn.Content(src)}, parts...)
				}
			}
		}
		return strings.Join(parts, ".")
	}
}

func (s *Spec) declaration(n *sitter.Node) (name, body *sitter.Node) {
	if s.Declares != nil {
		return s.Declares(n)
	}
	typ := n.Type()
	for _, ft := range s.FunctionTypes {
		if typ == ft {
			return n.ChildByFieldName("name"), n.ChildByFieldName("body")
		}
	}
	return nil, nil
}

// Span is a half-open byte range of the source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether [start, end) lies inside s.
func (s Span) Contains(start, end int) bool {
	return start >= s.Start && end <= s.End
}

// Tree is a parsed source file.
type Tree struct {
	spec *Spec
	src  []byte
	tree *sitter.Tree
}

// Parse parses src with the grammar of spec. Syntax errors do not fail
// the parse; tree-sitter recovers and the anchors outside the broken
// region stay resolvable.
func Parse(ctx context.Context, spec *Spec, src []byte) (*Tree, error) {
	if spec == nil || spec.Language == nil {
		return nil, errors.New("syntax: spec has no language")
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s source", spec.Name)
	}
	return &Tree{spec: spec, src: src, tree: tree}, nil
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Root is the span of the whole file.
func (t *Tree) Root() Span {
	return Span{Start: 0, End: len(t.src)}
}

// FindScope returns the body span of the first callable named anchor,
// walking the tree in source order. globalAnchor resolves to the whole
// file.
func (t *Tree) FindScope(anchor, globalAnchor string) (Span, bool) {
	if anchor == globalAnchor {
		return t.Root(), true
	}
	var found *sitter.Node
	walk(t.tree.RootNode(), func(n *sitter.Node) bool {
		name, body := t.spec.declaration(n)
		if name == nil || body == nil {
			return true
		}
		if name.Content(t.src) == anchor || t.qualifiedMatch(n, anchor) {
			found = body
			return false
		}
		return true
	})
	if found == nil {
		if t.tree.RootNode().HasError() {
			return braceScope(t.src, anchor)
		}
		return Span{}, false
	}
	return Span{Start: int(found.StartByte()), End: int(found.EndByte())}, true
}

func (t *Tree) qualifiedMatch(n *sitter.Node, anchor string) bool {
	if t.spec.QualifiedName == nil || !strings.Contains(anchor, ".") {
		return false
	}
	return t.spec.QualifiedName(n, t.src) == anchor
}

// StatementAt returns the span of the innermost statement or declaration
// enclosing [start, end) that still lies inside within. ok is false when
// no such node exists, e.g. the marker sits inside a comment.
func (t *Tree) StatementAt(start, end int, within Span) (Span, bool) {
	n := namedDescendant(t.tree.RootNode(), uint32(start), uint32(end))
	for ; n != nil; n = n.Parent() {
		s := Span{Start: int(n.StartByte()), End: int(n.EndByte())}
		if !within.Contains(s.Start, s.End) {
			return Span{}, false
		}
		if isStatement(n.Type()) {
			return s, true
		}
	}
	return Span{}, false
}

// namedDescendant returns the innermost named node of n covering
// [start, end).
func namedDescendant(n *sitter.Node, start, end uint32) *sitter.Node {
	if n == nil || n.StartByte() > start || n.EndByte() < end {
		return nil
	}
	for {
		var next *sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.StartByte() <= start && c.EndByte() >= end {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

func isStatement(typ string) bool {
	return strings.HasSuffix(typ, "_statement") ||
		strings.HasSuffix(typ, "_declaration") ||
		typ == "statement" ||
		typ == "decorated_definition"
}

// walk visits named nodes depth first in source order until fn returns
// false.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if !walk(n.NamedChild(i), fn) {
			return false
		}
	}
	return true
}
