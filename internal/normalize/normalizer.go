// Package normalize converts heterogeneous dictionary sources into the
// canonical entry schema. Each adapter implements Source; malformed
// individual records are counted and skipped, never fatal for a batch.
package normalize

import (
	"fmt"
	"log/slog"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
	"github.com/kvgharbigit/polybook-sub003/internal/stardict"
)

// Stats counts what happened to records during one source read.
type Stats struct {
	Records   int
	Malformed int
	Discarded int
}

// Source reads raw records from one input format and yields candidate
// entries for a language pair. Implementations must not assume their
// output order is retained by the normalizer.
type Source interface {
	Name() string
	Read(sourceLang, targetLang string) ([]entry.Entry, Stats, error)
}

// Normalizer runs sources through normalization for one language pair.
type Normalizer struct {
	SourceLang string
	TargetLang string
}

// New creates a Normalizer for a language pair. Codes must be
// well-formed language tags.
func New(sourceLang, targetLang string) (*Normalizer, error) {
	if !entry.ValidLanguageCode(sourceLang) {
		return nil, fmt.Errorf("invalid source language code: %q", sourceLang)
	}
	if !entry.ValidLanguageCode(targetLang) {
		return nil, fmt.Errorf("invalid target language code: %q", targetLang)
	}
	return &Normalizer{
		SourceLang: entry.LanguageCode(sourceLang),
		TargetLang: entry.LanguageCode(targetLang),
	}, nil
}

// Normalize reads a source and returns the entries that survive the
// canonical-schema filters. Entries with no translations and no
// definitions are discarded here. Duplicate headwords keep the entry
// with more translations.
func (n *Normalizer) Normalize(source Source) ([]entry.Entry, Stats, error) {
	raw, stats, err := source.Read(n.SourceLang, n.TargetLang)
	if err != nil {
		return nil, stats, fmt.Errorf("read source %s: %w", source.Name(), err)
	}

	byHeadword := make(map[string]entry.Entry, len(raw))
	for _, e := range raw {
		e.SourceLang = n.SourceLang
		e.TargetLang = n.TargetLang
		if !e.Normalize() {
			stats.Discarded++
			continue
		}
		e.Frequency = entry.Score(e.Headword, n.SourceLang, n.TargetLang)

		if prev, ok := byHeadword[e.Headword]; ok {
			if len(prev.Translations) >= len(e.Translations) {
				continue
			}
		}
		byHeadword[e.Headword] = e
	}

	entries := make([]entry.Entry, 0, len(byHeadword))
	for _, e := range byHeadword {
		entries = append(entries, e)
	}
	stats.Records = len(raw)

	slog.Debug("normalized source",
		"source", source.Name(),
		"records", stats.Records,
		"malformed", stats.Malformed,
		"discarded", stats.Discarded,
		"entries", len(entries))
	return entries, stats, nil
}

// NormalizeAll merges the entries of several sources for one language
// pair. A source failing with a format error is skipped with a
// warning; any other failure aborts the batch. Duplicate headwords
// across sources keep the entry with more translations, the same rule
// Normalize applies within one source.
func (n *Normalizer) NormalizeAll(sources ...Source) ([]entry.Entry, Stats, error) {
	var total Stats
	byHeadword := map[string]entry.Entry{}
	for _, source := range sources {
		entries, stats, err := n.Normalize(source)
		if err != nil {
			if stardict.IsFormatError(err) {
				slog.Warn("skipping malformed source",
					"source", source.Name(),
					"error", err)
				continue
			}
			return nil, total, err
		}
		total.Records += stats.Records
		total.Malformed += stats.Malformed
		total.Discarded += stats.Discarded
		for _, e := range entries {
			if prev, ok := byHeadword[e.Headword]; ok {
				if len(prev.Translations) >= len(e.Translations) {
					continue
				}
			}
			byHeadword[e.Headword] = e
		}
	}

	merged := make([]entry.Entry, 0, len(byHeadword))
	for _, e := range byHeadword {
		merged = append(merged, e)
	}
	return merged, total, nil
}

// firstNonEmpty runs an ordered extractor chain and returns the first
// non-empty result. Keeping the fallback locations as a list makes the
// chain testable as data instead of nested conditionals.
func firstNonEmpty[T any](record T, extractors []func(T) string) string {
	for _, extract := range extractors {
		if v := extract(record); v != "" {
			return v
		}
	}
	return ""
}
