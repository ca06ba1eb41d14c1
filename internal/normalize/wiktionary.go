package normalize

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// maxLineSize is the scanner buffer for JSONL extracts. Wiktionary
// lines for common words can run to megabytes.
const maxLineSize = 16 << 20

// WiktionarySource adapts a kaikki.org newline-delimited JSON extract.
type WiktionarySource struct {
	Path string
}

// kaikkiRecord is the subset of the extract schema the normalizer
// consumes.
type kaikkiRecord struct {
	Word     string `json:"word"`
	LangCode string `json:"lang_code"`
	POS      string `json:"pos"`
	Senses   []struct {
		Glosses  []string `json:"glosses"`
		Examples []struct {
			Text string `json:"text"`
		} `json:"examples"`
		FormOf []struct {
			Word string `json:"word"`
		} `json:"form_of"`
	} `json:"senses"`
	Translations []struct {
		Code string `json:"code"`
		Lang string `json:"lang"`
		Word string `json:"word"`
	} `json:"translations"`
	Synonyms []struct {
		Word string `json:"word"`
	} `json:"synonyms"`
	Forms []struct {
		Form string `json:"form"`
	} `json:"forms"`
}

// Headword fallback chain: the top-level word, else the first form,
// else the lemma a "form of" sense points at.
var kaikkiHeadwordExtractors = []func(*kaikkiRecord) string{
	func(r *kaikkiRecord) string { return r.Word },
	func(r *kaikkiRecord) string {
		if len(r.Forms) > 0 {
			return r.Forms[0].Form
		}
		return ""
	},
	func(r *kaikkiRecord) string {
		for _, s := range r.Senses {
			if len(s.FormOf) > 0 {
				return s.FormOf[0].Word
			}
		}
		return ""
	},
}

func (s *WiktionarySource) Name() string {
	return "wiktionary:" + s.Path
}

// Read streams the JSONL file. Records for other source languages are
// ignored; malformed lines are counted, not fatal. Translations are
// kept only when their language tag matches the requested target.
func (s *WiktionarySource) Read(sourceLang, targetLang string) ([]entry.Entry, Stats, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open wiktionary extract: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return s.read(f, sourceLang, targetLang)
}

func (s *WiktionarySource) read(r io.Reader, sourceLang, targetLang string) ([]entry.Entry, Stats, error) {
	var stats Stats
	var entries []entry.Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec kaikkiRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Malformed++
			continue
		}
		if rec.LangCode != "" && entry.LanguageCode(rec.LangCode) != sourceLang {
			continue
		}

		headword := firstNonEmpty(&rec, kaikkiHeadwordExtractors)
		if headword == "" {
			stats.Malformed++
			continue
		}

		e := entry.Entry{
			Headword:        headword,
			DisplayHeadword: headword,
			PartOfSpeech:    rec.POS,
		}
		for _, sense := range rec.Senses {
			if len(sense.Glosses) > 0 {
				e.Definitions = append(e.Definitions, sense.Glosses[0])
			}
			for _, ex := range sense.Examples {
				if ex.Text != "" {
					e.Examples = append(e.Examples, ex.Text)
				}
			}
		}
		for _, tr := range rec.Translations {
			code := tr.Code
			if code == "" {
				code = tr.Lang
			}
			if entry.LanguageCode(code) != targetLang || tr.Word == "" {
				continue
			}
			e.Translations = append(e.Translations, tr.Word)
		}
		for _, syn := range rec.Synonyms {
			if syn.Word != "" {
				e.Synonyms = append(e.Synonyms, syn.Word)
			}
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan wiktionary extract: %w", err)
	}
	return entries, stats, nil
}
