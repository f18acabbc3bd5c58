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

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wikicreole/ewc/internal/normhtml"
)

func assertHTMLEqual(t *testing.T, got, want string) {
	t.Helper()
	ngot := normhtml.NormalizeHTML([]byte(got))
	nwant := normhtml.NormalizeHTML([]byte(want))
	if diff := cmp.Diff(string(nwant), string(ngot)); diff != "" {
		t.Errorf("HTML mismatch (-want +got):\n%s", diff)
	}
}

func renderDoc(doc *Node) string {
	return NewHTMLRenderer(0, true).Render(doc)
}

func TestRenderDocumentSkipsRootDivision(t *testing.T) {
	doc := parseBlocks("hello world")
	got := renderDoc(doc)
	assertHTMLEqual(t, got, "<p>hello world</p>")
}

func TestRenderNestedDivisionIsNotSkipped(t *testing.T) {
	doc := parseBlocks("<<.note", "hi", ">>")
	got := renderDoc(doc)
	assertHTMLEqual(t, got, `<div class="note"><p>hi</p></div>`)
}

func TestRenderSpanMagicTagRewritesToTagName(t *testing.T) {
	p := NewNode(ParagraphKind)
	span := NewNode(SpanKind)
	span.Attr().AddClass("em")
	span.MustAppend(NewText("word"))
	p.MustAppend(span)
	got := NewHTMLRenderer(0, true).Render(p)
	assertHTMLEqual(t, got, "<p><em>word</em></p>")
}

func TestRenderSpanNonMagicClassStaysSpan(t *testing.T) {
	p := NewNode(ParagraphKind)
	span := NewNode(SpanKind)
	span.Attr().AddClass("highlight")
	span.MustAppend(NewText("word"))
	p.MustAppend(span)
	got := NewHTMLRenderer(0, true).Render(p)
	assertHTMLEqual(t, got, `<p><span class="highlight">word</span></p>`)
}

func TestRenderParagraphMagicBlockquote(t *testing.T) {
	p := NewNode(ParagraphKind)
	p.Attr().AddClass("blockquote")
	p.MustAppend(NewText("quoted"))
	got := NewHTMLRenderer(0, true).Render(p)
	assertHTMLEqual(t, got, "<blockquote>quoted</blockquote>")
}

func TestRenderHeadingDepthOffsetAndClamp(t *testing.T) {
	h := NewNode(HeadingKind)
	h.Attr().Set("x-level", "2")
	h.MustAppend(NewText("Title"))

	got := NewHTMLRenderer(2, true).Render(h)
	assertHTMLEqual(t, got, "<h4>Title</h4>")

	got = NewHTMLRenderer(10, true).Render(h)
	assertHTMLEqual(t, got, "<h6>Title</h6>")
}

func TestRenderXPrefixedAttributesAreSuppressed(t *testing.T) {
	h := NewNode(HeadingKind)
	h.Attr().Set("x-level", "1")
	h.Attr().Set("x-internal", "secret")
	h.Attr().Set("id", "kept")
	h.MustAppend(NewText("T"))
	got := NewHTMLRenderer(0, true).Render(h)
	assertHTMLEqual(t, got, `<h1 id="kept">T</h1>`)
}

func TestRenderTableCellRowspanAndColspanPlusOne(t *testing.T) {
	td := NewNode(TableDataKind)
	td.Rowspan = 1
	td.Colspan = 2
	td.MustAppend(NewText("x"))
	got := NewHTMLRenderer(0, true).Render(td)
	assertHTMLEqual(t, got, `<td rowspan="2" colspan="3">x</td>`)
}

func TestRenderTableCellPlaceholderSuppressed(t *testing.T) {
	td := NewNode(TableDataKind)
	td.Rowspan = -1
	td.MustAppend(NewText("x"))
	got := NewHTMLRenderer(0, true).Render(td)
	if got != "" {
		t.Errorf("render of placeholder cell = %q, want empty", got)
	}
}

func TestRenderCommentNeutralizesDoubleDash(t *testing.T) {
	c := NewComment("a -- b -- c")
	got := NewHTMLRenderer(0, true).Render(c)
	assertHTMLEqual(t, got, "<!--a - - b - - c-->")
}

func TestRenderTextEscapesSmartPunctuationAsNamedEntities(t *testing.T) {
	p := NewNode(ParagraphKind)
	p.MustAppend(NewText("“quoted” it’s – done — now"))
	got := NewHTMLRenderer(0, true).Render(p)
	want := "<p>&ldquo;quoted&rdquo; it&rsquo;s &ndash; done &mdash; now</p>"
	if got != want {
		t.Errorf("got = %q, want %q", got, want)
	}
}

func TestRenderImageDefaultsAltToEmpty(t *testing.T) {
	img := NewNode(ImageKind)
	img.Attr().Set("src", "/images/x.png")
	got := NewHTMLRenderer(0, true).Render(img)
	assertHTMLEqual(t, got, `<img src="/images/x.png" alt="" />`)
}

func TestRenderListStructure(t *testing.T) {
	doc := parseBlocks("* one", "* two")
	got := renderDoc(doc)
	assertHTMLEqual(t, got, "<ul><li>one</li><li>two</li></ul>")
}

func TestRenderTableStructure(t *testing.T) {
	doc := parseBlocks("|=Head|=Other", "|a|b")
	got := renderDoc(doc)
	want := "<table><tr><th>Head</th><th>Other</th></tr><tr><td>a</td><td>b</td></tr></table>"
	assertHTMLEqual(t, got, want)
}
