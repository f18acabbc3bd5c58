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

// Visitor is implemented by anything that walks an EWC document tree one
// node at a time. [HTMLRenderer] is the only Visitor this package
// provides, but the interface lets a caller write an alternate renderer
// (plain text, a different markup dialect) over the same tree without
// reaching into Node internals.
//
// [Dispatch] calls the method matching n's Kind.
type Visitor interface {
	VisitText(n *Node)
	VisitComment(n *Node)
	VisitSpan(n *Node)
	VisitBreak(n *Node)
	VisitLink(n *Node)
	VisitImage(n *Node)
	VisitDivision(n *Node)
	VisitParagraph(n *Node)
	VisitHeading(n *Node)
	VisitRule(n *Node)
	VisitUnorderedList(n *Node)
	VisitOrderedList(n *Node)
	VisitDictionaryList(n *Node)
	VisitListItem(n *Node)
	VisitDictionaryTerm(n *Node)
	VisitDictionaryDef(n *Node)
	VisitTable(n *Node)
	VisitTableRow(n *Node)
	VisitTableData(n *Node)
	VisitTableHeading(n *Node)
	VisitDocument(n *Node)
}

// Dispatch calls the Visitor method corresponding to n's Kind.
func Dispatch(v Visitor, n *Node) {
	switch n.Kind() {
	case TextKind:
		v.VisitText(n)
	case CommentKind:
		v.VisitComment(n)
	case SpanKind:
		v.VisitSpan(n)
	case BreakKind:
		v.VisitBreak(n)
	case LinkKind:
		v.VisitLink(n)
	case ImageKind:
		v.VisitImage(n)
	case DivisionKind:
		v.VisitDivision(n)
	case ParagraphKind:
		v.VisitParagraph(n)
	case HeadingKind:
		v.VisitHeading(n)
	case RuleKind:
		v.VisitRule(n)
	case UnorderedListKind:
		v.VisitUnorderedList(n)
	case OrderedListKind:
		v.VisitOrderedList(n)
	case DictionaryListKind:
		v.VisitDictionaryList(n)
	case ListItemKind:
		v.VisitListItem(n)
	case DictionaryTermKind:
		v.VisitDictionaryTerm(n)
	case DictionaryDefKind:
		v.VisitDictionaryDef(n)
	case TableKind:
		v.VisitTable(n)
	case TableRowKind:
		v.VisitTableRow(n)
	case TableDataKind:
		v.VisitTableData(n)
	case TableHeadingKind:
		v.VisitTableHeading(n)
	case DocumentKind:
		v.VisitDocument(n)
	}
}
