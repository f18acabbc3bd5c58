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
	"os"
	"path/filepath"
	"testing"
)

func drainLineReader(r LineReader) []string {
	var out []string
	for {
		line, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

func TestExtensionRegistryRegisterLookup(t *testing.T) {
	r := NewExtensionRegistry()
	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("Lookup on empty registry found something")
	}
	r.Register("greet", &Extension{Expand: func(string) []string { return []string{"hi"} }})
	ext, ok := r.Lookup("greet")
	if !ok {
		t.Fatal("Lookup(\"greet\") ok = false, want true")
	}
	if got := ext.Expand(""); len(got) != 1 || got[0] != "hi" {
		t.Errorf("Expand = %v, want [hi]", got)
	}
}

func TestDefaultExtensionCommentProducesNoLines(t *testing.T) {
	r := NewDefaultExtensions(&Config{})
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<!hidden>>after"}), r, 20))
	if got, want := lines, []string{"after"}; !stringSliceEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestDefaultExtensionRawEscapesMarkup(t *testing.T) {
	r := NewDefaultExtensions(&Config{})
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"{{{**not bold**}}}"}), r, 20))
	if len(lines) != 1 {
		t.Fatalf("lines = %v, want 1 line", lines)
	}
	if got := removeEscapes(lines[0]); got != "**not bold**" {
		t.Errorf("removeEscapes(raw output) = %q, want %q", got, "**not bold**")
	}
}

func TestDefaultExtensionRot13(t *testing.T) {
	r := NewDefaultExtensions(&Config{})
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<rot13 Uryyb>>"}), r, 20))
	if got, want := lines, []string{"Hello"}; !stringSliceEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestDefaultExtensionCimageAndCtableAreDiagnostic(t *testing.T) {
	r := NewDefaultExtensions(&Config{})
	for _, name := range []string{"cimage", "ctable"} {
		lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<" + name + " x>>"}), r, 20))
		if len(lines) != 1 || lines[0] != "(ERROR: "+name+": not supported)" {
			t.Errorf("%s lines = %v", name, lines)
		}
	}
}

func TestDefaultExtensionIncludeDisabledByDefault(t *testing.T) {
	r := NewDefaultExtensions(&Config{})
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<include foo.ewc>>"}), r, 20))
	if len(lines) != 1 || lines[0] != "(ERROR: IncludeFile: includes are disabled)" {
		t.Errorf("lines = %v", lines)
	}
}

func TestDefaultExtensionIncludeReadsFileAndSubstitutesVariables(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greeting.ewc"), []byte("Hello, $$who$$!"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{IncludePath: dir}
	r := NewDefaultExtensions(cfg)
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<include greeting.ewc who=World>>"}), r, 20))
	if got, want := lines, []string{"Hello, World!"}; !stringSliceEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestDefaultExtensionIncludeRejectsPathEscape(t *testing.T) {
	cfg := &Config{IncludePath: t.TempDir()}
	r := NewDefaultExtensions(cfg)
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<include ../secret>>"}), r, 20))
	if len(lines) != 1 || lines[0] != "(ERROR: IncludeFile: path escapes include directory)" {
		t.Errorf("lines = %v", lines)
	}
}

func TestDefaultExtensionIncludeMissingFile(t *testing.T) {
	cfg := &Config{IncludePath: t.TempDir()}
	r := NewDefaultExtensions(cfg)
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<include nope.ewc>>"}), r, 20))
	if len(lines) != 1 || lines[0] != "(ERROR: IncludeFile: cannot open file)" {
		t.Errorf("lines = %v", lines)
	}
}

func TestParseIncludeArgsFirstTokenIsFile(t *testing.T) {
	file, vars := parseIncludeArgs("report.ewc year=2026 title=Q3")
	if file != "report.ewc" {
		t.Errorf("file = %q, want %q", file, "report.ewc")
	}
	if vars["year"] != "2026" || vars["title"] != "Q3" {
		t.Errorf("vars = %v", vars)
	}
}

func TestParseIncludeArgsGathersVariablesAcrossLines(t *testing.T) {
	file, vars := parseIncludeArgs("report.ewc year=2026\ntitle=Q3")
	if file != "report.ewc" {
		t.Errorf("file = %q, want %q", file, "report.ewc")
	}
	if vars["year"] != "2026" || vars["title"] != "Q3" {
		t.Errorf("vars = %v", vars)
	}
}

func TestSubstituteVariablesLeavesUnknownTokenUntouched(t *testing.T) {
	got := substituteVariables("Hi $$who$$, your code is $$code$$", map[string]string{"who": "Ada"})
	want := "Hi Ada, your code is $$code$$"
	if got != want {
		t.Errorf("substituteVariables = %q, want %q", got, want)
	}
}

func TestLookAheadWrapsSurroundingText(t *testing.T) {
	got := lookAhead("before ", " after", []string{"mid"})
	want := []string{"before mid after"}
	if !stringSliceEqual(got, want) {
		t.Errorf("lookAhead = %v, want %v", got, want)
	}
}

func TestLookAheadMultilineOnlyWrapsEnds(t *testing.T) {
	got := lookAhead("before ", " after", []string{"one", "two"})
	want := []string{"before one", "two after"}
	if !stringSliceEqual(got, want) {
		t.Errorf("lookAhead = %v, want %v", got, want)
	}
}

func TestLookAheadEmptyReplacementJoinsHeadAndTail(t *testing.T) {
	got := lookAhead("before ", " after", nil)
	want := []string{"before  after"}
	if !stringSliceEqual(got, want) {
		t.Errorf("lookAhead = %v, want %v", got, want)
	}
}

func TestFindMarkerPrefersEarlierMarker(t *testing.T) {
	idx, triple := findMarker("text <<name then {{{raw}}}")
	if idx != 5 || triple {
		t.Errorf("findMarker = %d, %v, want 5, false", idx, triple)
	}
}

func TestFindMarkerNoneFound(t *testing.T) {
	idx, _ := findMarker("plain text")
	if idx != -1 {
		t.Errorf("findMarker = %d, want -1", idx)
	}
}

func TestExtensionTransformUnknownInlineDirective(t *testing.T) {
	r := NewExtensionRegistry()
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"see <<bogus>> here"}), r, 20))
	if len(lines) != 1 || lines[0] != "see (INLINE: bogus) here" {
		t.Errorf("lines = %v", lines)
	}
}

func TestExtensionTransformUnknownBlockDirectiveSpansLines(t *testing.T) {
	r := NewExtensionRegistry()
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"<<bogus", "one", ">>tail"}), r, 20))
	if len(lines) != 1 || lines[0] != "(BLOCK: bogus END)tail" {
		t.Errorf("lines = %v", lines)
	}
}

func TestExtensionTransformBlockCloseRequiresLeadingMarker(t *testing.T) {
	// A continuation line that merely contains the end marker as a
	// substring, not at its start, must not close the block: only a
	// line *beginning with* the end marker ends it.
	r := NewDefaultExtensions(&Config{})
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{
		"<<rot13", "Uryyb >> Jbeyq", ">>",
	}), r, 20))
	// content joins the opening line's empty first-line remainder, the
	// body line, and the empty text before the closing marker with "\n",
	// so rot13 sees (and echoes back) three lines, the middle one intact.
	if got, want := lines, []string{"", "Hello >> World", ""}; !stringSliceEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestExtensionTransformRecursionLimitSetsErr(t *testing.T) {
	r := NewExtensionRegistry()
	r.Register("loop", &Extension{
		Expand: func(content string) []string { return []string{"<<loop>>"} },
	})
	et := NewExtensionTransform(NewSliceReader([]string{"<<loop>>"}), r, 3)
	for {
		if _, ok := et.Next(); !ok {
			break
		}
	}
	te, ok := et.(*extensionTransform)
	if !ok {
		t.Fatal("NewExtensionTransform did not return *extensionTransform")
	}
	err := te.Err()
	if err == nil {
		t.Fatal("Err() = nil, want *RecursionLimitError")
	}
	if _, ok := err.(*RecursionLimitError); !ok {
		t.Errorf("Err() type = %T, want *RecursionLimitError", err)
	}
}

func TestExtensionTransformPassesThroughPlainLines(t *testing.T) {
	r := NewExtensionRegistry()
	lines := drainLineReader(NewExtensionTransform(NewSliceReader([]string{"just text", "more text"}), r, 20))
	want := []string{"just text", "more text"}
	if !stringSliceEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}
