package pack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// SourceSpec names one raw dictionary input for a language pair.
type SourceSpec struct {
	// Format is one of "stardict", "wiktionary", "tei".
	Format string `yaml:"format"`
	// Path points at the stardict directory or the extract file.
	Path string `yaml:"path"`
}

// PairSpec is one language pair in the build catalog.
type PairSpec struct {
	Source  string       `yaml:"source"`
	Target  string       `yaml:"target"`
	Sources []SourceSpec `yaml:"sources"`
	// Models lists translation models bundled with the pair.
	Models []TranslationModel `yaml:"models,omitempty"`
}

// Catalog is the build manifest (sources.yml): which packs to build
// and from what.
type Catalog struct {
	Version string     `yaml:"version"`
	Pairs   []PairSpec `yaml:"pairs"`
}

// LoadCatalog parses a sources.yml build manifest.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, p := range c.Pairs {
		if p.Source == "" || p.Target == "" {
			return nil, fmt.Errorf("catalog pair %d: missing source or target language", i)
		}
		if len(p.Sources) == 0 {
			return nil, fmt.Errorf("catalog pair %s: no sources", entry.PairID(p.Source, p.Target))
		}
		for _, src := range p.Sources {
			switch src.Format {
			case "stardict", "wiktionary", "tei":
			default:
				return nil, fmt.Errorf("catalog pair %s: unknown source format %q", entry.PairID(p.Source, p.Target), src.Format)
			}
		}
	}
	return &c, nil
}

// PairID returns the pack id for a catalog pair.
func (p *PairSpec) PairID() string {
	return entry.PairID(p.Source, p.Target)
}
