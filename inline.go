// Copyright 2026 The EWC Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package ewc

import "strings"

// inlineWalker rewrites Text nodes into inline element sub-trees
// (Link, Span, Image, Comment, Break), per spec.md section 4.7.
type inlineWalker struct {
	resolveLink     func(name string) string
	resolveImage    func(name string) (string, bool)
	emAndStrong     bool
	nakedURLs       bool
	quotesAndDashes bool
}

// Walk rewrites every reachable Text node under root in place.
func (w *inlineWalker) Walk(root *Node) {
	w.walk(root, false)
}

func (w *inlineWalker) walk(n *Node, insideLink bool) {
	childInsideLink := insideLink || n.Kind() == LinkKind
	i := 0
	for i < n.ChildCount() {
		child := n.Child(i)
		if child.Kind() != TextKind {
			w.walk(child, childInsideLink)
			i++
			continue
		}
		if repl := w.rewriteOnce(child, childInsideLink); repl != nil {
			n.ReplaceChildWith(child, repl)
			continue
		}
		final := w.finalizeText(child.Text())
		n.ReplaceChildWith(child, final)
		i += len(final)
	}
}

// rewriteOnce tries each recognizer, in spec.md's priority order, against
// child's full text and returns the (pre, node, post) split of the first
// one that matches, or nil if none do.
func (w *inlineWalker) rewriteOnce(child *Node, insideLink bool) []*Node {
	text := child.Text()

	if pre, node, post, ok := w.trySpanOrLink(text); ok {
		return compactNodes([]*Node{mkText(pre), node, mkText(post)})
	}
	if pre, node, post, ok := w.tryImageOrComment(text); ok {
		return compactNodes([]*Node{mkText(pre), node, mkText(post)})
	}
	if pre, node, post, ok := w.trySpanShortcut(text); ok {
		return compactNodes([]*Node{mkText(pre), node, mkText(post)})
	}
	if pre, node, post, ok := w.tryNakedURL(text, insideLink); ok {
		return compactNodes([]*Node{mkText(pre), node, mkText(post)})
	}
	return nil
}

// mkText returns nil for an empty string so callers can splice it
// through ReplaceChildWith without adding a useless empty Text node; the
// normalize pass would drop it anyway, but skipping it keeps the tree
// smaller during the walk.
func mkText(s string) *Node {
	if s == "" {
		return nil
	}
	return NewText(s)
}

// compactNodes drops nil entries mkText may have produced.
func compactNodes(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// findMatchingClose scans text (which begins immediately after an
// opening token already consumed by the caller) for the close token,
// tracking nested opens only when nestable is true — the rule that
// "<<…>>" spans may nest but "[[…]]" links may not.
func findMatchingClose(text, openTok, closeTok string, nestable bool) (int, bool) {
	depth := 1
	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], closeTok) {
			depth--
			if depth == 0 {
				return i, true
			}
			i += len(closeTok)
			continue
		}
		if nestable && strings.HasPrefix(text[i:], openTok) {
			depth++
			i += len(openTok)
			continue
		}
		i++
	}
	return -1, false
}

// trySpanOrLink implements spec.md section 4.7 recognizer 1: the first
// "<<" opens a Span, the first "[[" opens a Link, whichever occurs
// first in text. A Span's content may nest further "<<…>>" pairs; a
// Link's may not nest another Link, so its close is just the next
// "]]".
func (w *inlineWalker) trySpanOrLink(text string) (pre string, node *Node, post string, ok bool) {
	angle := strings.Index(text, "<<")
	bracket := strings.Index(text, "[[")

	var start int
	var isLink bool
	switch {
	case angle == -1 && bracket == -1:
		return "", nil, "", false
	case angle == -1:
		start, isLink = bracket, true
	case bracket == -1:
		start, isLink = angle, false
	case bracket < angle:
		start, isLink = bracket, true
	default:
		start, isLink = angle, false
	}

	inner := text[start+2:]
	var closeIdx int
	var found bool
	if isLink {
		closeIdx = strings.Index(inner, "]]")
		found = closeIdx >= 0
	} else {
		closeIdx, found = findMatchingClose(inner, "<<", ">>", true)
	}
	if !found {
		return "", nil, "", false
	}

	content := inner[:closeIdx]
	pre = text[:start]
	post = inner[closeIdx+2:]
	if isLink {
		node = w.buildLink(content)
	} else {
		node = w.buildStyleSpan(content)
	}
	return pre, node, post, true
}

func (w *inlineWalker) buildLink(content string) *Node {
	target, display, hasText := strings.Cut(content, "|")
	target = strings.TrimSpace(target)

	link := NewNode(LinkKind)
	link.Attr().Set("href", w.resolveLink(target))
	if !hasText {
		display = linkDefaultText(target)
	}
	if t := mkText(display); t != nil {
		link.MustAppend(t)
	}
	return link
}

// linkDefaultText strips a leading "Prefix:" from target, since a link
// with no explicit display text shows the name as the reader would
// type it locally rather than its fully-qualified namespaced form.
func linkDefaultText(target string) string {
	if i := strings.IndexByte(target, ':'); i > 0 {
		return target[i+1:]
	}
	return target
}

// buildStyleSpan parses "<<designator content>>" content, where
// designator is a leading ".class" or "#id" word.
func (w *inlineWalker) buildStyleSpan(content string) *Node {
	span := NewNode(SpanKind)
	designator, rest := content, ""
	if i := strings.IndexAny(content, " \t"); i >= 0 {
		designator, rest = content[:i], strings.TrimLeft(content[i+1:], " \t")
	}
	switch {
	case strings.HasPrefix(designator, "."):
		span.Attr().AddClass(designator[1:])
	case strings.HasPrefix(designator, "#"):
		span.Attr().Set("id", designator[1:])
	default:
		rest = content
	}
	if t := mkText(rest); t != nil {
		span.MustAppend(t)
	}
	return span
}

// tryImageOrComment implements recognizer 2: "{{…}}", a Comment when
// the body starts with "!", else a pipe-separated Image.
func (w *inlineWalker) tryImageOrComment(text string) (pre string, node *Node, post string, ok bool) {
	start := strings.Index(text, "{{")
	if start == -1 {
		return "", nil, "", false
	}
	inner := text[start+2:]
	end := strings.Index(inner, "}}")
	if end == -1 {
		return "", nil, "", false
	}
	content := inner[:end]
	pre = text[:start]
	post = inner[end+2:]

	if strings.HasPrefix(content, "!") {
		return pre, NewComment(content[1:]), post, true
	}

	parts := strings.Split(content, "|")
	img := NewNode(ImageKind)
	src := strings.TrimSpace(parts[0])
	url, _ := w.resolveImage(src)
	img.Attr().Set("src", url)
	alt := ""
	if len(parts) > 1 {
		alt = parts[1]
	}
	img.Attr().Set("alt", alt)
	if len(parts) > 2 && parts[2] != "" {
		img.Attr().Set("width", parts[2])
	}
	if len(parts) > 3 && parts[3] != "" {
		img.Attr().Set("height", parts[3])
	}
	return pre, img, post, true
}

// spanShortcuts maps the doubled ASCII markers to the class they
// shorthand, per spec.md section 4.7 recognizer 3.
var spanShortcuts = []struct {
	token string
	class string
}{
	{"##", "tt"},
	{"//", "i"},
	{",,", "sub"},
	{"^^", "sup"},
	{"__", "u"},
	{"**", "b"},
}

func (w *inlineWalker) trySpanShortcut(text string) (pre string, node *Node, post string, ok bool) {
	best := -1
	var tok, class string
	for _, s := range spanShortcuts {
		if i := strings.Index(text, s.token); i >= 0 && (best == -1 || i < best) {
			best, tok, class = i, s.token, s.class
		}
	}
	if best == -1 {
		return "", nil, "", false
	}
	closeIdx := strings.Index(text[best+len(tok):], tok)
	if closeIdx == -1 {
		return "", nil, "", false
	}
	closeIdx += best + len(tok)

	if w.emAndStrong {
		switch class {
		case "b":
			class = "strong"
		case "i":
			class = "em"
		}
	}

	span := NewNode(SpanKind)
	span.Attr().AddClass(class)
	if t := mkText(text[best+len(tok) : closeIdx]); t != nil {
		span.MustAppend(t)
	}
	return text[:best], span, text[closeIdx+len(tok):], true
}

var nakedURLSchemes = []string{"http://", "https://", "ftp://", "mailto:"}

// tryNakedURL implements recognizer 4: a bare scheme://rest wrapped as
// a self-linked Link, skipped entirely inside an existing Link.
func (w *inlineWalker) tryNakedURL(text string, insideLink bool) (pre string, node *Node, post string, ok bool) {
	if !w.nakedURLs || insideLink {
		return "", nil, "", false
	}
	best := -1
	for _, scheme := range nakedURLSchemes {
		if i := strings.Index(text, scheme); i >= 0 && (best == -1 || i < best) {
			best = i
		}
	}
	if best == -1 {
		return "", nil, "", false
	}
	end := best
	for end < len(text) && !isURLBoundary(text[end]) {
		end++
	}
	url := text[best:end]
	if url == "" {
		return "", nil, "", false
	}
	link := NewNode(LinkKind)
	link.Attr().Set("href", url)
	link.MustAppend(NewText(url))
	return text[:best], link, text[end:], true
}

func isURLBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\n', ')', ']', '}', '<', '>', '"', '\'':
		return true
	default:
		return false
	}
}

// finalizeText runs after no recognizer matches a Text leaf's content
// any further: it splits "\\" into Break nodes and, if enabled, applies
// smartQuotesAndDashes to the surviving runs.
func (w *inlineWalker) finalizeText(text string) []*Node {
	parts := strings.Split(text, `\\`)
	out := make([]*Node, 0, len(parts)*2-1)
	for i, part := range parts {
		if w.quotesAndDashes {
			part = smartQuotesAndDashes(part)
		}
		out = append(out, NewText(part))
		if i < len(parts)-1 {
			out = append(out, NewNode(BreakKind))
		}
	}
	return out
}
