// Package usage builds the set of identifiers and files that markup
// documents actually use.
//
// Collection is a fold: every document is added to a Builder, and Build
// returns an immutable Set that the pruning phase reads.
package usage

import (
	"slices"

	"github.com/yacobolo/assetclean/internal/pathutil"
	"github.com/yacobolo/assetclean/internal/selector"
)

type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, pathutil.NaturalCompare)
	return out
}

// Set is the immutable result of the collection phase.
type Set struct {
	classes     stringSet
	ids         stringSet
	tags        stringSet
	stylesheets stringSet
	scripts     stringSet
	images      stringSet

	// stylesheet path -> documents linking it, in discovery order
	usageMap map[string][]string
}

// HasClass reports whether any element carries the class.
func (s *Set) HasClass(name string) bool { return s.classes.has(name) }

// HasID reports whether any element carries the id.
func (s *Set) HasID(name string) bool { return s.ids.has(name) }

// HasTag reports whether any element has the (lower-case) tag name.
func (s *Set) HasTag(name string) bool { return s.tags.has(name) }

// HasStylesheet reports whether a document links the stylesheet path.
func (s *Set) HasStylesheet(path string) bool { return s.stylesheets.has(path) }

// HasScript reports whether a document loads the script path.
func (s *Set) HasScript(path string) bool { return s.scripts.has(path) }

// HasImage reports whether a document references the image path.
func (s *Set) HasImage(path string) bool { return s.images.has(path) }

// Reaches reports whether a selector with the given tokens is in use: at
// least one of its classes, ids or tags was seen. Selectors without tokens
// never reach anything.
func (s *Set) Reaches(t selector.Tokens) bool {
	for _, c := range t.Classes {
		if s.classes.has(c) {
			return true
		}
	}
	for _, id := range t.IDs {
		if s.ids.has(id) {
			return true
		}
	}
	for _, tag := range t.Tags {
		if s.tags.has(tag) {
			return true
		}
	}
	return false
}

// Classes returns the used classes in natural order.
func (s *Set) Classes() []string { return s.classes.sorted() }

// IDs returns the used ids in natural order.
func (s *Set) IDs() []string { return s.ids.sorted() }

// Tags returns the used tag names in natural order.
func (s *Set) Tags() []string { return s.tags.sorted() }

// Stylesheets returns the linked stylesheet paths in natural order.
func (s *Set) Stylesheets() []string { return s.stylesheets.sorted() }

// Scripts returns the loaded script paths in natural order.
func (s *Set) Scripts() []string { return s.scripts.sorted() }

// Images returns the referenced image paths in natural order.
func (s *Set) Images() []string { return s.images.sorted() }

// UsageMap returns a copy of the stylesheet -> referencing documents map.
func (s *Set) UsageMap() map[string][]string {
	out := make(map[string][]string, len(s.usageMap))
	for sheet, docs := range s.usageMap {
		out[sheet] = slices.Clone(docs)
	}
	return out
}

// Builder accumulates usage across documents. It must not be used after
// Build.
type Builder struct {
	set   *Set
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{set: &Set{
		classes:     stringSet{},
		ids:         stringSet{},
		tags:        stringSet{},
		stylesheets: stringSet{},
		scripts:     stringSet{},
		images:      stringSet{},
		usageMap:    map[string][]string{},
	}}
}

func (b *Builder) mutable() *Set {
	if b.built {
		panic("usage: builder used after Build")
	}
	return b.set
}

// AddClass records a used class.
func (b *Builder) AddClass(name string) { b.mutable().classes.add(name) }

// AddID records a used id.
func (b *Builder) AddID(name string) { b.mutable().ids.add(name) }

// AddTag records a used tag name. Callers pass it lower-cased.
func (b *Builder) AddTag(name string) { b.mutable().tags.add(name) }

// AddStylesheet records that document links the stylesheet at path.
func (b *Builder) AddStylesheet(path, document string) {
	s := b.mutable()
	s.stylesheets.add(path)
	s.usageMap[path] = append(s.usageMap[path], document)
}

// AddScript records a loaded script path.
func (b *Builder) AddScript(path string) { b.mutable().scripts.add(path) }

// AddImage records a referenced image path.
func (b *Builder) AddImage(path string) { b.mutable().images.add(path) }

// Build freezes the builder and returns the collected set.
func (b *Builder) Build() *Set {
	b.built = true
	return b.set
}
