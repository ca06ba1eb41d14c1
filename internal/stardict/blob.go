package stardict

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// Blob is the raw .dict data file held in memory.
type Blob struct {
	data []byte
}

// Definition is a cleaned dictionary definition with any synonym
// candidates harvested from it.
type Definition struct {
	Text     string
	Synonyms []string
}

// Extract decodes the definition for one index entry. It returns nil
// when offset+length points outside the blob: that is a corrupt index
// record to skip, not a reason to abort the parse. A well-formed
// record whose payload is not valid text yields an empty definition,
// which the normalizer's empty-entry filter later drops.
func (b *Blob) Extract(ie IndexEntry) *Definition {
	end := uint64(ie.Offset) + uint64(ie.Length)
	if end > uint64(len(b.data)) {
		return nil
	}
	raw := b.data[ie.Offset:end]
	if !utf8.Valid(raw) {
		return &Definition{}
	}
	text, synonyms := CleanDefinition(string(raw))
	return &Definition{Text: text, Synonyms: synonyms}
}

var (
	parentheticalRe = regexp.MustCompile(`\(([^()]{1,120})\)`)
	seeAlsoRe       = regexp.MustCompile(`(?i)see also:?\s*([^.;\n]+)[.;]?`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// CleanDefinition strips markup from a raw definition, collapses
// whitespace, and pulls parenthetical and "see also" references out as
// synonym candidates. The extracted spans are removed from the
// returned text.
func CleanDefinition(raw string) (string, []string) {
	text := html2text.HTML2Text(raw)

	var synonyms []string
	if m := seeAlsoRe.FindStringSubmatch(text); m != nil {
		synonyms = append(synonyms, splitCandidates(m[1])...)
		text = seeAlsoRe.ReplaceAllString(text, "")
	}
	for _, m := range parentheticalRe.FindAllStringSubmatch(text, -1) {
		candidates := splitCandidates(m[1])
		if len(candidates) == 0 {
			continue
		}
		synonyms = append(synonyms, candidates...)
	}
	text = parentheticalRe.ReplaceAllString(text, "")

	synonyms = entry.Dedupe(synonyms)
	if len(synonyms) > entry.MaxSynonyms {
		synonyms = synonyms[:entry.MaxSynonyms]
	}

	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), synonyms
}

// splitCandidates splits a comma or slash separated reference span
// into individual synonym candidates. Spans containing whole phrases
// are rejected; a synonym is at most three words.
func splitCandidates(span string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(span, func(r rune) bool {
		return r == ',' || r == '/' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if part == "" || strings.Count(part, " ") > 2 {
			continue
		}
		out = append(out, part)
	}
	return out
}
