// Package position locates concepts inside a tokenized translation.
package position

import (
	"sort"
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
)

// Unresolved is returned by Locate when a concept has no position.
const Unresolved = -1

// SpanJoiner separates the parts of a discontinuous concept realisation.
const SpanJoiner = "..."

// Resolver tokenizes translations with one language's delimiter set.
type Resolver struct {
	delimiters []string
}

// NewResolver creates a Resolver. Empty delimiters are ignored and longer
// delimiters are tried first, so "..." wins over ".".
func NewResolver(delimiters []string) *Resolver {
	ds := make([]string, 0, len(delimiters))
	for _, d := range delimiters {
		if d != "" {
			ds = append(ds, d)
		}
	}
	sort.SliceStable(ds, func(i, j int) bool { return len(ds[i]) > len(ds[j]) })
	return &Resolver{delimiters: ds}
}

// Delimiters returns the delimiter set in match order.
func (r *Resolver) Delimiters() []string {
	return append([]string(nil), r.delimiters...)
}

// Tokenize splits text on any delimiter, dropping empty tokens.
func (r *Resolver) Tokenize(text string) []string {
	var (
		tokens []string
		start  int
	)
	for i := 0; i < len(text); {
		d := r.delimiterAt(text, i)
		if d == 0 {
			i++
			continue
		}
		if i > start {
			tokens = append(tokens, text[start:i])
		}
		i += d
		start = i
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

func (r *Resolver) delimiterAt(text string, i int) int {
	for _, d := range r.delimiters {
		if strings.HasPrefix(text[i:], d) {
			return len(d)
		}
	}
	return 0
}

// Anchor returns the token used to position a concept realisation: the first
// "..."-separated segment, reduced to its first token when it still spans
// several tokens. Internal order of multi-word expressions is not modelled.
func (r *Resolver) Anchor(words string) string {
	segment := words
	if idx := strings.Index(words, SpanJoiner); idx >= 0 {
		segment = words[:idx]
	}
	segment = strings.TrimSpace(segment)
	tokens := r.Tokenize(segment)
	if len(tokens) == 0 {
		return segment
	}
	return tokens[0]
}

// Locate returns the index of the first occurrence of the concept's anchor
// in the entry's tokenized translation, or Unresolved.
func (r *Resolver) Locate(entry *common.Entry, concept string) int {
	words, ok := entry.ConceptWord(concept)
	if !ok {
		logger.Warn("[Position] Concept missing from concept_words",
			"entry", entry.Index, "concept", concept)
		return Unresolved
	}
	anchor := r.Anchor(words)
	if anchor == "" {
		logger.Warn("[Position] Concept has no recorded word",
			"entry", entry.Index, "concept", concept)
		return Unresolved
	}
	for i, tok := range r.Tokenize(entry.Recording.Translation) {
		if tok == anchor {
			return i
		}
	}
	logger.Warn("[Position] Anchor not found in translation",
		"entry", entry.Index, "concept", concept, "anchor", anchor,
		"translation", entry.Recording.Translation)
	return Unresolved
}

// Table maps a language name to its delimiter set.
type Table struct {
	languages map[string][]string
	fallback  []string
}

// NewTable builds a delimiter table. fallback is used for languages that are
// not listed.
func NewTable(languages map[string][]string, fallback []string) *Table {
	ls := make(map[string][]string, len(languages))
	for k, v := range languages {
		ls[strings.ToLower(k)] = append([]string(nil), v...)
	}
	return &Table{languages: ls, fallback: append([]string(nil), fallback...)}
}

// Lookup returns the delimiters for language and whether it was listed.
func (t *Table) Lookup(language string) ([]string, bool) {
	ds, ok := t.languages[strings.ToLower(language)]
	if !ok {
		return append([]string(nil), t.fallback...), false
	}
	return append([]string(nil), ds...), true
}

// Resolver returns a Resolver for language, logging when the fallback set is used.
func (t *Table) Resolver(language string) *Resolver {
	ds, ok := t.Lookup(language)
	if !ok {
		logger.Warn("[Position] No delimiters configured, using fallback", "language", language, "delimiters", ds)
	}
	return NewResolver(ds)
}
