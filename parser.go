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
	"bytes"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Config holds the options spec.md section 6 exposes to a caller. The
// zero Config is usable: a zero IncludeDepthLimit or a nil
// QuotesAndDashes selects the documented default.
type Config struct {
	// InputEncoding names the IANA character encoding of source text
	// ("" means UTF-8).
	InputEncoding string
	// OutputEncoding names the IANA character encoding of rendered
	// output ("" means UTF-8).
	OutputEncoding string

	// LocalLinkPattern and LocalImagePattern each contain one "{name}"
	// slot, e.g. "/w/{name}.html".
	LocalLinkPattern  string
	LocalImagePattern string

	// CompactHTML suppresses the newline HTMLRenderer otherwise inserts
	// before every opening tag.
	CompactHTML bool

	// IncludePath is the directory the include extension reads from.
	// Includes are disabled when it is empty.
	IncludePath string
	// IncludeDepthLimit bounds how many levels of nested extension
	// expansion the extension transform will follow before giving up
	// with a RecursionLimitError. Zero means the default of 20.
	IncludeDepthLimit int

	// QuotesAndDashes enables smartQuotesAndDashes. Defaults to true.
	QuotesAndDashes *bool
	// EmAndStrong remaps the "**"/"//" span shortcuts to strong/em
	// instead of b/i.
	EmAndStrong bool
	// NakedURLs enables the bare http://... auto-link recognizer.
	NakedURLs bool

	// DocumentTitle, if set, is available to callers that want to
	// render a <title> themselves; EWC does not wrap output in <html>.
	DocumentTitle string
}

const defaultIncludeDepthLimit = 20

func (c *Config) quotesAndDashes() bool {
	if c == nil || c.QuotesAndDashes == nil {
		return true
	}
	return *c.QuotesAndDashes
}

func (c *Config) includeDepthLimit() int {
	if c == nil || c.IncludeDepthLimit <= 0 {
		return defaultIncludeDepthLimit
	}
	return c.IncludeDepthLimit
}

// ParserBuilder assembles a [Parser]'s namespace and extension
// registries before Build freezes them. Registering after Build has no
// effect on parsers already built.
type ParserBuilder struct {
	cfg        Config
	namespaces *NamespaceRegistry
	extensions *ExtensionRegistry
	logger     *slog.Logger
}

// NewParserBuilder returns a builder seeded with the default namespaces
// (Wikipedia, Google, Dictionary, local) and extensions (comment, raw,
// rot13, include, cimage, ctable) for cfg.
func NewParserBuilder(cfg Config) *ParserBuilder {
	local := LocalNamespace{
		LinkPattern:  cfg.LocalLinkPattern,
		ImagePattern: cfg.LocalImagePattern,
	}
	if local.LinkPattern == "" {
		local.LinkPattern = "/wiki/{name}"
	}
	if local.ImagePattern == "" {
		local.ImagePattern = "/images/{name}"
	}

	namespaces := NewNamespaceRegistry(local)
	namespaces.Register("Wikipedia", WikipediaNamespace{DefaultLanguage: "en"})
	namespaces.Register("Google", GoogleNamespace{})
	namespaces.Register("Dictionary", DictionaryNamespace{})

	return &ParserBuilder{
		cfg:        cfg,
		namespaces: namespaces,
		extensions: NewDefaultExtensions(&cfg),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// RegisterNamespace binds prefix to ns, overriding any default.
func (b *ParserBuilder) RegisterNamespace(prefix string, ns Namespace) {
	b.namespaces.Register(prefix, ns)
}

// RegisterExtension binds name to ext, overriding any default.
func (b *ParserBuilder) RegisterExtension(name string, ext *Extension) {
	b.extensions.Register(name, ext)
}

// Logger sets the logger the built Parser uses for the one Info message
// it writes at the end of each parse, overriding the default discarding
// handler. Recovered errors such as IncludeError are not logged.
func (b *ParserBuilder) Logger(l *slog.Logger) {
	b.logger = l
}

// Build freezes the builder's registrations into an immutable [Parser].
func (b *ParserBuilder) Build() *Parser {
	namespaces := NewNamespaceRegistry(b.namespaces.local)
	for prefix, ns := range b.namespaces.byPrefix {
		namespaces.Register(prefix, ns)
	}
	extensions := NewExtensionRegistry()
	for name, ext := range b.extensions.byName {
		extensions.Register(name, ext)
	}
	return &Parser{
		cfg:        b.cfg,
		namespaces: namespaces,
		extensions: extensions,
		logger:     b.logger,
	}
}

// Parser runs already-decoded EWC source lines (see [NewDecoder]) through
// the escape, extension, block, and inline stages and returns the
// resulting [Node] tree.
// Construct one via [NewParserBuilder].
type Parser struct {
	cfg        Config
	namespaces *NamespaceRegistry
	extensions *ExtensionRegistry
	logger     *slog.Logger
}

// NewParser returns a Parser with the default namespace and extension
// registries for cfg; equivalent to NewParserBuilder(cfg).Build().
func NewParser(cfg Config) *Parser {
	return NewParserBuilder(cfg).Build()
}

// Parse runs source through the full pipeline and returns the resulting
// Document. The only error it can return is [*RecursionLimitError]; EWC's
// errorless-parse contract means no other input produces an error.
func (p *Parser) Parse(source LineReader) (*Node, error) {
	escaped := NewEscapeTransform(source)
	ext := NewExtensionTransform(escaped, p.extensions, p.cfg.includeDepthLimit())

	root := NewBlockParser().Parse(ext)

	if et, ok := ext.(*extensionTransform); ok {
		if err := et.Err(); err != nil {
			return nil, err
		}
	}

	walker := &inlineWalker{
		resolveLink:     p.namespaces.ResolveLinkURL,
		resolveImage:    p.namespaces.ResolveImageURL,
		emAndStrong:     p.cfg.EmAndStrong,
		nakedURLs:       p.cfg.NakedURLs,
		quotesAndDashes: p.cfg.quotesAndDashes(),
	}
	walker.Walk(root)

	removeEscapesFromTree(root)
	root.Normalize()

	p.logger.Info("parsed document", slog.Int("top_level_nodes", root.ChildCount()))

	return root, nil
}

// ParseString is a convenience wrapper around Parse for in-memory source
// already decoded to UTF-8 text, splitting it on newlines itself.
func (p *Parser) ParseString(text string) (*Node, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return p.Parse(NewSliceReader(lines))
}

// RenderHTML renders doc with headingDepth applied to every Heading and
// this Parser's CompactHTML setting, then encodes the result to
// OutputEncoding.
func (p *Parser) RenderHTML(doc *Node, headingDepth int) (string, error) {
	html := NewHTMLRenderer(headingDepth, p.cfg.CompactHTML).Render(doc)
	return encodeOutput(html, p.cfg.OutputEncoding)
}

// removeEscapesFromTree runs the MagicPass described by spec.md's
// pipeline diagram: after the inline walker has finished recognizing
// markup, every surviving Text and Comment node's escape-band codepoints
// are unshifted back to their literal characters.
func removeEscapesFromTree(n *Node) {
	if n.Kind().IsCharacterData() {
		n.SetText(removeEscapes(n.Text()))
		return
	}
	for _, c := range n.Children() {
		removeEscapesFromTree(c)
	}
}

// encodeOutput transcodes html (Go's native UTF-8) to encodingName,
// falling back to UTF-8 unchanged for "" or an unrecognized name, the
// same silent-fallback contract [NewDecoder] uses on input.
func encodeOutput(html, encodingName string) (string, error) {
	if encodingName == "" {
		return html, nil
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil || enc == nil {
		return html, nil
	}
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoding.ReplaceUnsupported(enc.NewEncoder()))
	if _, err := w.Write([]byte(html)); err != nil {
		return html, nil
	}
	if err := w.Close(); err != nil {
		return html, nil
	}
	return buf.String(), nil
}

// ConvertString is the package-level one-shot convenience function
// spec.md section 6 describes: parse text with cfg and render it to an
// HTML fragment, offsetting every Heading by headingDepth.
func ConvertString(text string, headingDepth int, cfg Config) (string, error) {
	p := NewParser(cfg)
	doc, err := p.ParseString(text)
	if err != nil {
		return "", err
	}
	return p.RenderHTML(doc, headingDepth)
}
