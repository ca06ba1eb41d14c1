// Package entry defines the canonical dictionary entry schema shared by
// every source adapter, the packager and the lookup engine.
package entry

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	// MaxHeadwordLength is the upper bound on lookup keys. Longer words
	// are almost always OCR noise or concatenation artifacts.
	MaxHeadwordLength = 100

	// MaxExamples bounds usage examples kept per entry.
	MaxExamples = 3

	// MaxSynonyms bounds synonyms kept per entry.
	MaxSynonyms = 8
)

// Entry is a normalized bilingual dictionary entry.
type Entry struct {
	Headword        string   `json:"headword"`
	DisplayHeadword string   `json:"displayHeadword"`
	SourceLang      string   `json:"sourceLang"`
	TargetLang      string   `json:"targetLang"`
	PartOfSpeech    string   `json:"partOfSpeech"`
	Translations    []string `json:"translations"`
	Definitions     []string `json:"definitions"`
	Examples        []string `json:"examples"`
	Synonyms        []string `json:"synonyms"`
	Frequency       int      `json:"frequency"`
}

// Normalize lowercases the headword, deduplicates translations and
// enforces the bounds on examples and synonyms. It returns false when
// the entry is unusable: an empty or overlong headword, or no
// translations and no definitions at all.
func (e *Entry) Normalize() bool {
	if e.DisplayHeadword == "" {
		e.DisplayHeadword = e.Headword
	}
	e.Headword = strings.ToLower(strings.TrimSpace(e.Headword))
	if e.Headword == "" || len(e.Headword) >= MaxHeadwordLength {
		return false
	}
	if e.PartOfSpeech == "" {
		e.PartOfSpeech = "unknown"
	}

	e.Translations = Dedupe(e.Translations)
	e.Definitions = Dedupe(e.Definitions)
	if len(e.Examples) > MaxExamples {
		e.Examples = e.Examples[:MaxExamples]
	}
	e.Synonyms = Dedupe(e.Synonyms)
	if len(e.Synonyms) > MaxSynonyms {
		e.Synonyms = e.Synonyms[:MaxSynonyms]
	}

	if len(e.Translations) == 0 && len(e.Definitions) == 0 {
		return false
	}
	return true
}

// Dedupe removes duplicate strings preserving first-occurrence order.
// Empty strings are dropped.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := values[:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// ValidLanguageCode reports whether code parses as a well-formed BCP 47
// language tag. The engine itself only distributes ISO-639-1 pairs, but
// source files occasionally carry three-letter codes which are accepted
// here and mapped by LanguageCode.
func ValidLanguageCode(code string) bool {
	if code == "" {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}
