package normalize

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// TEISource adapts a FreeDict TEI-XML dictionary archive.
type TEISource struct {
	Path string
}

// teiEntry mirrors the FreeDict entry substructure: headword and
// grammar under <form>/<gramGrp>, translations as <cit type="trans">
// quotes inside senses.
type teiEntry struct {
	Form struct {
		Orth string `xml:"orth"`
		Pron string `xml:"pron"`
	} `xml:"form"`
	GramGrp struct {
		POS string `xml:"pos"`
		Gen string `xml:"gen"`
	} `xml:"gramGrp"`
	Senses []teiSense `xml:"sense"`
}

type teiSense struct {
	Cits []struct {
		Type  string `xml:"type,attr"`
		Quote string `xml:"quote"`
	} `xml:"cit"`
	Defs  []string `xml:"def"`
	Usgs  []string `xml:"usg"`
	Xrefs []struct {
		Ref string `xml:"ref"`
	} `xml:"xr"`
}

// POS fallback chain: explicit part of speech, else grammatical gender
// which FreeDict uses to mark nouns.
var teiPOSExtractors = []func(*teiEntry) string{
	func(e *teiEntry) string { return e.GramGrp.POS },
	func(e *teiEntry) string {
		if e.GramGrp.Gen != "" {
			return "noun"
		}
		return ""
	},
}

func (s *TEISource) Name() string {
	return "tei:" + s.Path
}

// Read streams <entry> elements from the TEI body. Entries that fail
// to decode are counted as malformed and skipped.
func (s *TEISource) Read(sourceLang, targetLang string) ([]entry.Entry, Stats, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open tei archive: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return s.read(f)
}

func (s *TEISource) read(r io.Reader) ([]entry.Entry, Stats, error) {
	var stats Stats
	var entries []entry.Entry

	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("decode tei document: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "entry" {
			continue
		}

		var te teiEntry
		if err := decoder.DecodeElement(&te, &start); err != nil {
			stats.Malformed++
			continue
		}

		headword := strings.TrimSpace(te.Form.Orth)
		if headword == "" {
			stats.Malformed++
			continue
		}

		e := entry.Entry{
			Headword:        headword,
			DisplayHeadword: headword,
			PartOfSpeech:    firstNonEmpty(&te, teiPOSExtractors),
		}
		for _, sense := range te.Senses {
			for _, cit := range sense.Cits {
				if cit.Type == "trans" && cit.Quote != "" {
					e.Translations = append(e.Translations, cit.Quote)
				}
				if cit.Type == "example" && cit.Quote != "" {
					e.Examples = append(e.Examples, cit.Quote)
				}
			}
			for _, def := range sense.Defs {
				if def = strings.TrimSpace(def); def != "" {
					e.Definitions = append(e.Definitions, def)
				}
			}
			for _, xref := range sense.Xrefs {
				if xref.Ref != "" {
					e.Synonyms = append(e.Synonyms, xref.Ref)
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, stats, nil
}
