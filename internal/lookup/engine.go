// Package lookup resolves word queries against installed dictionary
// packs.
package lookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kvgharbigit/polybook-sub003/internal/database"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
	"github.com/kvgharbigit/polybook-sub003/internal/packman"
	"github.com/kvgharbigit/polybook-sub003/internal/profile"
)

// Request is one word lookup.
type Request struct {
	Word string
	// SourceLanguage forces the dictionary language. When empty the
	// engine tries the profile's target languages in declared order.
	SourceLanguage string
	Profile        *profile.UserLanguageProfile
	// Context is the surrounding sentence, currently unused by the
	// engine but carried for the translation fallback.
	Context string
}

// Definition is one resolved bilingual entry.
type Definition struct {
	Headword     string   `json:"headword"`
	SourceLang   string   `json:"sourceLang"`
	TargetLang   string   `json:"targetLang"`
	PartOfSpeech string   `json:"partOfSpeech"`
	Translations []string `json:"translations,omitempty"`
	Definitions  []string `json:"definitions,omitempty"`
	Examples     []string `json:"examples,omitempty"`
	Synonyms     []string `json:"synonyms,omitempty"`
	Frequency    int      `json:"frequency"`
	// NeedsTranslation marks entries without stored translations into
	// the user's language; the caller should offer the sentence
	// translator instead.
	NeedsTranslation bool `json:"needsTranslation,omitempty"`
}

// Response is the outcome of a lookup. A miss is an expected result,
// not an error: MissingLanguages names the packs that would resolve
// the request, and is empty when the packs were installed but the
// word simply is not in them.
type Response struct {
	Success           bool        `json:"success"`
	SourceLanguage    string      `json:"sourceLanguage,omitempty"`
	PrimaryDefinition *Definition `json:"primaryDefinition,omitempty"`
	Alternatives      []Definition `json:"alternatives,omitempty"`
	MissingLanguages  []string    `json:"missingLanguages,omitempty"`
	Suggestions       []string    `json:"suggestions,omitempty"`
}

// PackResolver is the slice of the pack manager the engine reads
// through. The engine never manages pack files itself.
type PackResolver interface {
	Installed() []*packman.InstalledRecord
	StorePath(packID string) (string, bool)
	RecordLookup(packID string)
}

type Engine struct {
	packs    PackResolver
	profiles *profile.Store
}

// NewEngine builds an engine over installed packs. profiles may be
// nil when no persistent profile is wanted.
func NewEngine(packs PackResolver, profiles *profile.Store) *Engine {
	return &Engine{packs: packs, profiles: profiles}
}

// Lookup resolves req. The profile's usage counters are bumped
// exactly once per call, hit or miss.
func (e *Engine) Lookup(ctx context.Context, req Request) (*Response, error) {
	word := strings.ToLower(strings.TrimSpace(req.Word))
	if word == "" {
		return nil, fmt.Errorf("empty lookup word")
	}
	if req.Profile == nil {
		req.Profile = &profile.UserLanguageProfile{}
	}

	candidates := e.candidateLanguages(req)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no source language: request names none and profile has no target languages")
	}

	response := &Response{}
	countedLang := candidates[0]
	var queriedStore string
	for _, lang := range candidates {
		records := e.packsForLanguage(lang, req.Profile.NativeLanguage)
		if len(records) == 0 {
			response.MissingLanguages = append(response.MissingLanguages, lang)
			continue
		}
		for _, record := range records {
			storePath, ok := e.packs.StorePath(record.PackID)
			if !ok {
				continue
			}
			if queriedStore == "" {
				queriedStore = storePath
			}
			row, err := queryStore(ctx, storePath, word)
			if err != nil {
				return nil, fmt.Errorf("query pack %s: %w", record.PackID, err)
			}
			if row == nil {
				continue
			}
			def, err := definitionFromRow(row, record, req.Profile)
			if err != nil {
				return nil, err
			}
			if response.PrimaryDefinition == nil {
				response.Success = true
				response.SourceLanguage = lang
				response.PrimaryDefinition = def
				countedLang = lang
				e.packs.RecordLookup(record.PackID)
			} else {
				response.Alternatives = append(response.Alternatives, *def)
			}
		}
		if response.Success {
			// Packs for later candidate languages are not consulted
			// once a match exists, and their absence is not a miss.
			response.MissingLanguages = nil
			break
		}
	}

	if !response.Success {
		// A miss against installed packs is a plain miss; only report
		// missing languages when no candidate had a pack at all.
		if len(response.MissingLanguages) < len(candidates) {
			response.MissingLanguages = nil
			if queriedStore != "" {
				response.Suggestions = suggest(ctx, queriedStore, word)
			}
		}
	}

	req.Profile.RecordLookup(countedLang)
	if e.profiles != nil {
		if err := e.profiles.Save(req.Profile); err != nil {
			slog.Warn("failed to persist profile", slog.Any("error", err))
		}
	}
	return response, nil
}

// candidateLanguages returns the dictionary languages to try, in
// order.
func (e *Engine) candidateLanguages(req Request) []string {
	if req.SourceLanguage != "" {
		return []string{req.SourceLanguage}
	}
	return req.Profile.TargetLanguages
}

// packsForLanguage lists installed packs whose dictionary language is
// lang, preferring the pack that translates into the user's native
// language.
func (e *Engine) packsForLanguage(lang, nativeLang string) []*packman.InstalledRecord {
	var preferred, rest []*packman.InstalledRecord
	for _, record := range e.packs.Installed() {
		if record.SourceLang != lang {
			continue
		}
		if record.TargetLang == nativeLang {
			preferred = append(preferred, record)
		} else {
			rest = append(rest, record)
		}
	}
	return append(preferred, rest...)
}

func queryStore(ctx context.Context, path, word string) (*pack.Row, error) {
	db, err := database.Open(path, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()
	return queryRow(ctx, db, word)
}

func queryRow(ctx context.Context, db *sqlx.DB, word string) (*pack.Row, error) {
	var row pack.Row
	err := db.GetContext(ctx, &row,
		"SELECT lemma, definition, synonyms, examples, translations, pos, frequency FROM entries WHERE lemma = ?",
		word)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func definitionFromRow(row *pack.Row, record *packman.InstalledRecord, p *profile.UserLanguageProfile) (*Definition, error) {
	translations, err := pack.UnmarshalList(row.Translations)
	if err != nil {
		return nil, fmt.Errorf("decode translations for %q: %w", row.Lemma, err)
	}
	synonyms, err := pack.UnmarshalList(row.Synonyms)
	if err != nil {
		return nil, fmt.Errorf("decode synonyms for %q: %w", row.Lemma, err)
	}
	examples, err := pack.UnmarshalList(row.Examples)
	if err != nil {
		return nil, fmt.Errorf("decode examples for %q: %w", row.Lemma, err)
	}

	def := &Definition{
		Headword:     row.Lemma,
		SourceLang:   record.SourceLang,
		TargetLang:   record.TargetLang,
		PartOfSpeech: row.PartOfSpeech,
		Translations: translations,
		Examples:     examples,
		Synonyms:     synonyms,
		Frequency:    row.Frequency,
	}
	if len(translations) > 0 {
		// The stored definition column duplicates the first
		// translation for bilingual packs; keep it only when it adds
		// source-language text.
		if row.Definition != "" && row.Definition != translations[0] {
			def.Definitions = []string{row.Definition}
		}
	} else {
		if row.Definition != "" {
			def.Definitions = []string{row.Definition}
		}
		// Monolingual entry: the reader needs the sentence
		// translator to reach the user's language.
		if p.NativeLanguage != "" && record.TargetLang != p.NativeLanguage {
			def.NeedsTranslation = true
		}
	}
	return def, nil
}
