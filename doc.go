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

// Package ewc provides a parser and HTML renderer for Extended WikiCreole
// (EWC), a lightweight wiki markup language.
//
// EWC's defining property is errorless syntax: every input string is a
// valid document. Malformed or incomplete markup degrades to literal text
// rather than producing a parse error. [Parser.Parse] therefore never
// returns an error for malformed markup; the only error it can return is
// [RecursionLimitError] (an extension expanded itself too deeply). A
// [LineReader] source has no way to report a read error: it simply ends.
//
// A parse runs source text through a small pipeline:
//
//	decode -> escape transform -> extension transform -> block parser -> inline walker -> magic pass -> normalize
//
// The magic pass unshifts the escape-band codepoints tildeEscapes
// produced back to their literal characters, now that every later stage
// that could have mistaken them for markup has already run.
//
// The result is a [Node] tree rooted at a [DocumentKind] node, which an
// [HTMLRenderer] walks to produce HTML4.
package ewc
