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
	"regexp"
	"strings"
)

// AttributeMap holds an [Element]'s attributes. "class" and "style" are
// not ordinary string-valued keys: class is an ordered set of unique
// class names, and style is an ordered mapping from lowercased CSS
// property to value. Every other key maps to a plain Unicode value.
// Iteration (Keys, Items) always yields class first, then style, then
// plain keys in insertion order.
type AttributeMap struct {
	classes []string
	styles  []styleEntry
	other   []otherEntry
}

type styleEntry struct {
	property string
	value    string
}

type otherEntry struct {
	key   string
	value string
}

var stylePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_-]*)\s*:\s*(.*)$`)

// AddClass appends name to the class list if it is not already present.
func (a *AttributeMap) AddClass(name string) {
	if !a.HasClass(name) {
		a.classes = append(a.classes, name)
	}
}

// HasClass reports whether name is in the class list.
func (a *AttributeMap) HasClass(name string) bool {
	for _, c := range a.classes {
		if c == name {
			return true
		}
	}
	return false
}

// RemoveClass removes name from the class list, if present.
func (a *AttributeMap) RemoveClass(name string) {
	for i, c := range a.classes {
		if c == name {
			a.classes = append(a.classes[:i], a.classes[i+1:]...)
			return
		}
	}
}

// Classes returns the ordered, de-duplicated list of class names.
// The returned slice must not be mutated.
func (a *AttributeMap) Classes() []string {
	return a.classes
}

// AddStyle parses one "property: value" CSS declaration and records it,
// overwriting any previous value for the same property. It returns
// [*StyleFormatError] if decl does not match that syntax.
func (a *AttributeMap) AddStyle(decl string) error {
	m := stylePattern.FindStringSubmatch(decl)
	if m == nil {
		return &StyleFormatError{Declaration: decl}
	}
	prop := m[1]
	val := strings.TrimRight(m[2], "; \t\n")
	a.setStyle(prop, val)
	return nil
}

func (a *AttributeMap) setStyle(prop, val string) {
	for i := range a.styles {
		if a.styles[i].property == prop {
			a.styles[i].value = val
			return
		}
	}
	a.styles = append(a.styles, styleEntry{prop, val})
}

// HasStyle reports whether property has a recorded value.
func (a *AttributeMap) HasStyle(property string) bool {
	for _, s := range a.styles {
		if s.property == property {
			return true
		}
	}
	return false
}

// RemoveStyle removes property, if present.
func (a *AttributeMap) RemoveStyle(property string) {
	for i, s := range a.styles {
		if s.property == property {
			a.styles = append(a.styles[:i], a.styles[i+1:]...)
			return
		}
	}
}

// classValue renders the class pseudo-attribute, or ("", false) if there
// are no classes.
func (a *AttributeMap) classValue() (string, bool) {
	if len(a.classes) == 0 {
		return "", false
	}
	return strings.Join(a.classes, " "), true
}

// styleValue renders the style pseudo-attribute, or ("", false) if there
// are no style declarations.
func (a *AttributeMap) styleValue() (string, bool) {
	if len(a.styles) == 0 {
		return "", false
	}
	parts := make([]string, len(a.styles))
	for i, s := range a.styles {
		parts[i] = s.property + ":" + s.value
	}
	return strings.Join(parts, ";"), true
}

// Get returns the value for key ("class" and "style" are synthesized) and
// whether it was present.
func (a *AttributeMap) Get(key string) (string, bool) {
	switch key {
	case "class":
		return a.classValue()
	case "style":
		return a.styleValue()
	default:
		for _, e := range a.other {
			if e.key == key {
				return e.value, true
			}
		}
		return "", false
	}
}

// Set assigns val to key. Setting "class" replaces the whole class list
// (split on spaces); setting "style" replaces the whole style map
// (split on ";", then ":").
func (a *AttributeMap) Set(key, val string) {
	switch key {
	case "class":
		a.classes = nil
		for _, c := range strings.Fields(val) {
			a.AddClass(c)
		}
	case "style":
		a.styles = nil
		for _, decl := range strings.Split(val, ";") {
			if decl == "" {
				continue
			}
			parts := strings.SplitN(decl, ":", 2)
			prop := strings.TrimSpace(parts[0])
			v := ""
			if len(parts) == 2 {
				v = strings.TrimSpace(parts[1])
			}
			a.setStyle(prop, v)
		}
	default:
		for i, e := range a.other {
			if e.key == key {
				a.other[i].value = val
				return
			}
		}
		a.other = append(a.other, otherEntry{key, val})
	}
}

// Delete removes key.
func (a *AttributeMap) Delete(key string) {
	switch key {
	case "class":
		a.classes = nil
	case "style":
		a.styles = nil
	default:
		for i, e := range a.other {
			if e.key == key {
				a.other = append(a.other[:i], a.other[i+1:]...)
				return
			}
		}
	}
}

// Has reports whether key has a value (for "class"/"style", whether the
// corresponding store is non-empty).
func (a *AttributeMap) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Pop returns and removes key's value, or ("", false) if absent.
func (a *AttributeMap) Pop(key string) (string, bool) {
	v, ok := a.Get(key)
	if ok {
		a.Delete(key)
	}
	return v, ok
}

// SetDefault returns key's current value, setting it to def first if
// absent.
func (a *AttributeMap) SetDefault(key, def string) string {
	if v, ok := a.Get(key); ok {
		return v
	}
	a.Set(key, def)
	return def
}

// Len reports the number of distinct keys, counting "class" and "style"
// as at most one key each.
func (a *AttributeMap) Len() int {
	n := len(a.other)
	if len(a.classes) > 0 {
		n++
	}
	if len(a.styles) > 0 {
		n++
	}
	return n
}

// Keys returns the ordered key list: "class" (if any), "style" (if any),
// then plain keys in insertion order.
func (a *AttributeMap) Keys() []string {
	keys := make([]string, 0, a.Len())
	if _, ok := a.classValue(); ok {
		keys = append(keys, "class")
	}
	if _, ok := a.styleValue(); ok {
		keys = append(keys, "style")
	}
	for _, e := range a.other {
		keys = append(keys, e.key)
	}
	return keys
}

// Items returns ordered (key, value) pairs in the same order as Keys.
func (a *AttributeMap) Items() []otherEntry {
	items := make([]otherEntry, 0, a.Len())
	if v, ok := a.classValue(); ok {
		items = append(items, otherEntry{"class", v})
	}
	if v, ok := a.styleValue(); ok {
		items = append(items, otherEntry{"style", v})
	}
	items = append(items, a.other...)
	return items
}

// Merge unions other's classes into a, and overwrites a's styles and
// plain keys with other's.
func (a *AttributeMap) Merge(other *AttributeMap) {
	if other == nil {
		return
	}
	for _, c := range other.classes {
		a.AddClass(c)
	}
	for _, s := range other.styles {
		a.setStyle(s.property, s.value)
	}
	for _, e := range other.other {
		a.Set(e.key, e.value)
	}
}

// Clear removes all attributes.
func (a *AttributeMap) Clear() {
	a.classes = nil
	a.styles = nil
	a.other = nil
}
