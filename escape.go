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
	"bufio"
	"io"
	"strings"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// escapeBandLow and escapeBandHigh bound the Unicode private-use band
// EWC uses to carry escaped markup characters through the pipeline.
const (
	escapeBandLow  = 0xEF00
	escapeBandHigh = 0xEFFF

	// escapedDash is the encoding of the "~-" tilde escape: it is
	// preserved as a literal hyphen by smartQuotesAndDashes rather than
	// folded into an en/em dash.
	escapedDash = rune(escapeBandLow) + '-'
)

// LineReader is a pull-based source of text lines. It is the interface
// every pipeline stage (decode, escape, extension expansion) both
// consumes and produces, mirroring the chained `__iter__` generators of
// the original implementation without needing language-level
// coroutines: each call to Next pulls exactly one line from upstream,
// preserving order and doing no look-ahead beyond what a stage needs.
type LineReader interface {
	// Next returns the next line and true, or ("", false) when the
	// source is exhausted.
	Next() (string, bool)
}

// sliceReader adapts a fixed slice of lines to [LineReader]. It backs
// extension output and other in-memory line sequences.
type sliceReader struct {
	lines []string
	pos   int
}

// NewSliceReader returns a [LineReader] over an in-memory slice of lines.
func NewSliceReader(lines []string) LineReader {
	return &sliceReader{lines: lines}
}

func (s *sliceReader) Next() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true
}

// scannerReader adapts a [bufio.Scanner] to [LineReader].
type scannerReader struct {
	sc *bufio.Scanner
}

func (s *scannerReader) Next() (string, bool) {
	if s.sc.Scan() {
		return s.sc.Text(), true
	}
	return "", false
}

// NewDecoder wraps r, treating its bytes as encoding (an IANA name such
// as "utf-8", "iso-8859-1", or "" for the process default of UTF-8), and
// returns a [LineReader] of decoded Unicode lines. Decoding never fails:
// an unrecognized encoding name falls back to the default, and bytes
// that the chosen encoding can't decode become the Unicode replacement
// character, per spec.md's decode() contract.
func NewDecoder(r io.Reader, encodingName string) LineReader {
	var rd io.Reader = r
	if enc, err := htmlindex.Get(encodingName); err == nil && enc != nil {
		rd = transform.NewReader(r, enc.NewDecoder())
	}
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &scannerReader{sc: sc}
}

// tildeEscapes implements the ~X escape described in spec.md section 4.1:
// every ~X pair except ~- is replaced with the single codepoint
// escapeBandLow+codepoint(X); ~- becomes escapeBandLow+'-' followed by a
// literal '-'; a trailing lone ~ becomes NBSP (U+00A0).
func tildeEscapes(s string) string {
	v := []rune(s)
	out := make([]rune, 0, len(v))
	for i := 0; i < len(v); {
		if v[i] != '~' {
			out = append(out, v[i])
			i++
			continue
		}
		if i == len(v)-1 {
			out = append(out, '\u00A0')
			i++
			continue
		}
		next := v[i+1]
		out = append(out, rune(escapeBandLow)+next)
		if next == '-' {
			out = append(out, '-')
		}
		i += 2
	}
	return string(out)
}

// removable reports whether r is one of the control characters that
// removeEscapes strips: [U+0000, U+0020) union [U+007F, U+00A0), with
// tab (U+0009) and newline (U+000A) exempted since they may be needed as
// markup.
func removable(r rune) bool {
	switch {
	case r < 0x09:
		return true
	case r >= 0x0B && r < 0x20:
		return true
	case r >= 0x7F && r < 0xA0:
		return true
	default:
		return false
	}
}

// removeEscapes subtracts escapeBandLow from codepoints in the escape
// band (restoring the characters tildeEscapes protected) and strips the
// stray control-character set, per spec.md section 4.1.
func removeEscapes(s string) string {
	v := []rune(s)
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r >= escapeBandLow && r <= escapeBandHigh {
			r -= escapeBandLow
		}
		if removable(r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// escapeMarkupChars is used by the raw extension to protect every
// markup-significant character by shifting it into the escape band, so
// that later pipeline stages see it as opaque text. It walks the string
// rune by rune and shifts each rune found in markupSignificantChars.
const markupSignificantChars = "\\~-\"'=|*#:;/^_,${}[]<>"

func escapeMarkupChars(s string) string {
	v := []rune(s)
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if strings.ContainsRune(markupSignificantChars, r) {
			r = rune(escapeBandLow) + r
		}
		out = append(out, r)
	}
	return string(out)
}

// rot13Replacer implements the rot13 extension's ASCII-letters-only
// rotation as a byte-table substitution, by way of go4.org/bytereplacer's
// general string replacer (built once, not per call).
var rot13Replacer = func() *bytereplacer.Replacer {
	pairs := make([]string, 0, 52*2)
	const upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const lower = "abcdefghijklmnopqrstuvwxyz"
	rot := func(alphabet string) {
		for i, c := range alphabet {
			pairs = append(pairs, string(c), string(rune(alphabet[(i+13)%26])))
		}
	}
	rot(upper)
	rot(lower)
	return bytereplacer.New(pairs...)
}()

func rot13(s string) string {
	return rot13Replacer.Replace(s)
}

// canPrecedeOpenQuote and canFollowCloseQuote are the neighbor classes
// smartQuotesAndDashes uses to decide whether an ambiguous quote
// character opens or closes a smart quote.
const (
	canPrecedeOpenQuote  = " \t\n\u00A0(\u201C\u2018\u2014"
	canFollowCloseQuote  = " \t\n\u00A0):;'\",.?!\u201D\u2019\u2014"
)

// smartQuotesAndDashes rewrites ASCII straight quotes into curly quotes
// and runs of hyphens into en/em dashes, per spec.md section 4.1.
func smartQuotesAndDashes(s string) string {
	if s == "" {
		return s
	}
	v := make([]rune, 0, len(s)+2)
	v = append(v, ' ')
	v = append(v, []rune(s)...)
	v = append(v, ' ')

	convertedEnDash := false
	for i := 1; i < len(v)-1; i++ {
		pre := v[i-1]
		if v[i] == '-' {
			switch {
			case pre == escapedDash:
				v[i] = escapedDash
			case pre == '-':
				v[i-1] = 0
				v[i] = '\u2013'
				convertedEnDash = true
			case pre == '\u2013':
				if convertedEnDash {
					v[i-1] = 0
					v[i] = '\u2014'
					convertedEnDash = false
				}
			}
			continue
		}

		post := v[i+1]
		switch v[i] {
		case '"':
			if strings.ContainsRune(canPrecedeOpenQuote, pre) && !unicode.IsSpace(post) {
				v[i] = '\u201C'
			} else if strings.ContainsRune(canFollowCloseQuote, post) && !unicode.IsSpace(pre) {
				v[i] = '\u201D'
			}
		case '\'':
			if strings.ContainsRune(canPrecedeOpenQuote, pre) && !unicode.IsSpace(post) {
				v[i] = '\u2018'
			} else if strings.ContainsRune(canFollowCloseQuote, post) && !unicode.IsSpace(pre) {
				v[i] = '\u2019'
			}
		}
	}

	out := make([]rune, 0, len(v)-2)
	for _, r := range v[1 : len(v)-1] {
		if r == 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// escapeTransform wraps a [LineReader], applying tilde escapes and
// joining backslash-continued lines, per spec.md section 4.1.
type escapeTransform struct {
	source   LineReader
	pending  string
	havePending bool
	done     bool
}

// NewEscapeTransform returns a [LineReader] that applies tilde escapes
// to each line from source and joins lines ending in an odd number of
// unescaped backslashes with the line that follows.
func NewEscapeTransform(source LineReader) LineReader {
	return &escapeTransform{source: source}
}

func (e *escapeTransform) Next() (string, bool) {
	for {
		line, ok := e.source.Next()
		if !ok {
			if e.havePending {
				e.havePending = false
				return e.pending, true
			}
			return "", false
		}

		line = tildeEscapes(strings.TrimRight(line, " \t\r\n"))
		if e.havePending {
			line = e.pending + line
			e.havePending = false
		}

		trailing := 0
		for trailing < len(line) && line[len(line)-1-trailing] == '\\' {
			trailing++
		}
		if trailing%2 == 1 {
			e.pending = line[:len(line)-1]
			e.havePending = true
			continue
		}
		return line, true
	}
}
