package normalize

import (
	"fmt"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
	"github.com/kvgharbigit/polybook-sub003/internal/stardict"
)

// StarDictSource adapts a binary stardict dictionary directory.
type StarDictSource struct {
	Dir string
}

func (s *StarDictSource) Name() string {
	return "stardict:" + s.Dir
}

// Read parses the index and data blob and yields one candidate entry
// per index record. Records pointing outside the blob are skipped.
func (s *StarDictSource) Read(sourceLang, targetLang string) ([]entry.Entry, Stats, error) {
	var stats Stats

	d, err := stardict.Open(s.Dir)
	if err != nil {
		return nil, stats, fmt.Errorf("open stardict source: %w", err)
	}
	index, err := d.Index()
	if err != nil {
		return nil, stats, fmt.Errorf("parse stardict index: %w", err)
	}
	blob, err := d.Data()
	if err != nil {
		return nil, stats, fmt.Errorf("read stardict data: %w", err)
	}

	entries := make([]entry.Entry, 0, len(index))
	for _, ie := range index {
		def := blob.Extract(ie)
		if def == nil {
			stats.Malformed++
			continue
		}
		e := entry.Entry{
			Headword:        ie.Word,
			DisplayHeadword: ie.Word,
			Synonyms:        def.Synonyms,
		}
		if def.Text != "" {
			e.Definitions = []string{def.Text}
		}
		entries = append(entries, e)
	}
	return entries, stats, nil
}
