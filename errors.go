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

import "fmt"

// NestingError reports an attempt to insert a child node into a container
// whose allowed-contents set rejects it. It is a programmer error: well
// formed EWC markup never triggers it, since the block parser and inline
// walker only ever build containments the tree permits.
type NestingError struct {
	Parent Kind
	Child  Kind
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("ewc: %s cannot contain %s", e.Parent, e.Child)
}

// StyleFormatError reports a CSS declaration passed to
// [AttributeMap.AddStyle] that does not match "property: value" syntax.
type StyleFormatError struct {
	Declaration string
}

func (e *StyleFormatError) Error() string {
	return fmt.Sprintf("ewc: malformed style declaration %q", e.Declaration)
}

// RecursionLimitError reports that the extension transform's stack of
// nested expansions exceeded [Config.IncludeDepthLimit]. Unlike the other
// errors in this file, it aborts the whole parse: an extension that keeps
// expanding into itself cannot be resolved by falling back to literal
// text, because there is no bounded amount of text to fall back to.
type RecursionLimitError struct {
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("ewc: extension recursion exceeded depth limit (%d)", e.Limit)
}

// IncludeError reports that the include extension could not open its
// target file, or that includes are disabled ([Config.IncludePath] is
// empty). Unlike the other errors here, IncludeError is never returned to
// a caller: the extension transform recovers from it locally by emitting
// a diagnostic placeholder line, per the errorless-parse contract.
type IncludeError struct {
	Name   string
	Reason string
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("ewc: include %q: %s", e.Name, e.Reason)
}

// placeholder renders the diagnostic line substituted for a recovered
// IncludeError.
func (e *IncludeError) placeholder() string {
	return fmt.Sprintf("(ERROR: IncludeFile: %s)", e.Reason)
}
