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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension implements an EWC <<name …>> / {{{ … }}} directive. Expand
// receives the directive's content — the text between its open and
// close markers, with embedded newlines if the directive spanned
// multiple source lines — and returns the replacement lines.
//
// There is deliberately one entry point, not separate inline/block
// methods: [extensionTransform] already resolves whether a directive
// closed on its opening line or spans several, and hands Expand the
// same kind of content either way; the extension itself never needs to
// pull lines from the source.
type Extension struct {
	Expand func(content string) []string
}

// ExtensionRegistry maps directive names to their [Extension].
type ExtensionRegistry struct {
	byName map[string]*Extension
}

// NewExtensionRegistry returns an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{byName: make(map[string]*Extension)}
}

// Register adds or replaces the extension bound to name.
func (r *ExtensionRegistry) Register(name string, ext *Extension) {
	r.byName[name] = ext
}

// Lookup returns the extension bound to name, if any.
func (r *ExtensionRegistry) Lookup(name string) (*Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// NewDefaultExtensions returns the registry of built-in extensions —
// comment, raw, include, rot13 — configured against cfg, plus cimage
// and ctable placeholders reserved for future captioned-media support.
func NewDefaultExtensions(cfg *Config) *ExtensionRegistry {
	r := NewExtensionRegistry()

	r.Register("comment", &Extension{
		Expand: func(content string) []string { return nil },
	})

	r.Register("raw", &Extension{
		Expand: func(content string) []string {
			lines := strings.Split(content, "\n")
			out := make([]string, len(lines))
			for i, l := range lines {
				out[i] = escapeMarkupChars(l)
			}
			return out
		},
	})

	r.Register("rot13", &Extension{
		Expand: func(content string) []string {
			lines := strings.Split(content, "\n")
			out := make([]string, len(lines))
			for i, l := range lines {
				out[i] = rot13(l)
			}
			return out
		},
	})

	r.Register("include", &Extension{
		Expand: func(content string) []string {
			file, vars := parseIncludeArgs(content)
			lines, err := includeFile(cfg, file, vars)
			if err != nil {
				return []string{err.placeholder()}
			}
			return lines
		},
	})

	diagnostic := func(tag string) *Extension {
		return &Extension{
			Expand: func(content string) []string {
				return []string{fmt.Sprintf("(ERROR: %s: not supported)", tag)}
			},
		}
	}
	r.Register("cimage", diagnostic("cimage"))
	r.Register("ctable", diagnostic("ctable"))

	return r
}

// parseIncludeArgs splits an include directive's content into the
// target file name (the first whitespace-separated token of the first
// line) and a map of "name=value" variable assignments gathered from
// every line, so that a block-form include's body can supply
// additional variables beyond the ones on its opening line.
func parseIncludeArgs(content string) (file string, vars map[string]string) {
	vars = make(map[string]string)
	for i, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if i == 0 && len(fields) > 0 {
			file = fields[0]
			fields = fields[1:]
		}
		for _, f := range fields {
			if k, v, ok := strings.Cut(f, "="); ok {
				vars[k] = v
			}
		}
	}
	return file, vars
}

// includeFile implements the include extension's file-reading half: it
// opens name from cfg.IncludePath, decodes and re-runs the tilde-escape
// and line-continuation pass over its contents (the same two stages the
// outer document went through), and substitutes "$$name$$" variable
// tokens from vars.
func includeFile(cfg *Config, name string, vars map[string]string) ([]string, *IncludeError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &IncludeError{Name: name, Reason: "missing file name"}
	}
	if cfg == nil || cfg.IncludePath == "" {
		return nil, &IncludeError{Name: name, Reason: "includes are disabled"}
	}
	if strings.Contains(name, "..") || filepath.IsAbs(name) {
		return nil, &IncludeError{Name: name, Reason: "path escapes include directory"}
	}
	full := filepath.Join(cfg.IncludePath, name)
	f, err := os.Open(full)
	if err != nil {
		return nil, &IncludeError{Name: name, Reason: "cannot open file"}
	}
	defer f.Close()

	decoded := NewDecoder(f, cfg.InputEncoding)
	escaped := NewEscapeTransform(decoded)

	var lines []string
	for {
		line, ok := escaped.Next()
		if !ok {
			break
		}
		lines = append(lines, substituteVariables(line, vars))
	}
	return lines, nil
}

// substituteVariables replaces every "$$name$$" token in line with its
// bound value from vars, leaving unrecognized tokens untouched.
func substituteVariables(line string, vars map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(line, "$$")
		if start == -1 {
			b.WriteString(line)
			break
		}
		end := strings.Index(line[start+2:], "$$")
		if end == -1 {
			b.WriteString(line)
			break
		}
		end += start + 2
		name := line[start+2 : end]
		b.WriteString(line[:start])
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("$$" + name + "$$")
		}
		line = line[end+2:]
	}
	return b.String()
}

func isNameChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// lookAhead prepends head to the first replacement line and appends
// tail to the last, the adaptor that keeps an inline extension
// expansion from introducing spurious line breaks into the surrounding
// text. When the extension produced no lines at all, head and tail are
// joined directly into a single line.
func lookAhead(head, tail string, lines []string) []string {
	if len(lines) == 0 {
		return []string{head + tail}
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[0] = head + out[0]
	out[len(out)-1] = out[len(out)-1] + tail
	return out
}

// extensionTransform expands <<name …>> and {{{ … }}} directives,
// maintaining a stack of input iterators (initially just the external
// source) per spec.md's ExtensionTransform stage: an extension's
// replacement lines are pushed back onto the stack and re-scanned for
// further directives, which is how a directive's own output can itself
// contain directives, bounded by depthLimit stack levels.
type extensionTransform struct {
	registry   *ExtensionRegistry
	depthLimit int
	stack      []LineReader
	err        error
}

// NewExtensionTransform returns a [LineReader] that expands directives
// found in source against registry, recursing into expanded output up
// to depthLimit levels deep.
func NewExtensionTransform(source LineReader, registry *ExtensionRegistry, depthLimit int) LineReader {
	return &extensionTransform{
		registry:   registry,
		depthLimit: depthLimit,
		stack:      []LineReader{source},
	}
}

// Err returns the error that halted expansion, if any. It is set only
// when the stack depth limit was exceeded, never on ordinary end of
// input.
func (e *extensionTransform) Err() error {
	return e.err
}

func (e *extensionTransform) Next() (string, bool) {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		line, ok := top.Next()
		if !ok {
			e.stack = e.stack[:len(e.stack)-1]
			continue
		}

		idx, triple := findMarker(line)
		if idx == -1 {
			return line, true
		}

		head := line[:idx]
		var name, firstContent, endMarker string
		if triple {
			name = "raw"
			endMarker = "}}}"
			firstContent = line[idx+3:]
		} else {
			endMarker = ">>"
			rest := line[idx+2:]
			if strings.HasPrefix(rest, "!") {
				name = "comment"
				firstContent = rest[1:]
			} else {
				j := 0
				for j < len(rest) && isNameChar(rest[j]) {
					j++
				}
				name = rest[:j]
				firstContent = strings.TrimPrefix(rest[j:], " ")
			}
		}

		contentLines := []string{firstContent}
		var tail string
		spansMultipleLines := false
		if at := strings.Index(firstContent, endMarker); at >= 0 {
			contentLines[0] = firstContent[:at]
			tail = firstContent[at+len(endMarker):]
		} else {
			spansMultipleLines = true
		readMore:
			for {
				next, ok2 := top.Next()
				if !ok2 {
					break readMore
				}
				if strings.HasPrefix(next, endMarker) {
					contentLines = append(contentLines, "")
					tail = next[len(endMarker):]
					break readMore
				}
				contentLines = append(contentLines, next)
			}
		}

		if len(e.stack) >= e.depthLimit {
			e.err = &RecursionLimitError{Limit: e.depthLimit}
			e.stack = nil
			return "", false
		}

		content := strings.Join(contentLines, "\n")
		var replacement []string
		if ext, found := e.registry.Lookup(name); found && ext.Expand != nil {
			replacement = ext.Expand(content)
		} else if spansMultipleLines {
			replacement = []string{fmt.Sprintf("(BLOCK: %s END)", name)}
		} else {
			replacement = []string{fmt.Sprintf("(INLINE: %s)", name)}
		}

		e.stack = append(e.stack, NewSliceReader(lookAhead(head, tail, replacement)))
	}
	return "", false
}

// findMarker returns the byte index of the first "{{{" or "<<" marker in
// line, and whether it was the triple-brace raw marker.
func findMarker(line string) (idx int, triple bool) {
	t := strings.Index(line, "{{{")
	e := strings.Index(line, "<<")
	switch {
	case t == -1 && e == -1:
		return -1, false
	case t == -1:
		return e, false
	case e == -1:
		return t, true
	case t < e:
		return t, true
	default:
		return e, false
	}
}
