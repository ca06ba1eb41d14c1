package pack

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest describes one language pack: the dictionary artifact and
// any translation models bundled for the pair.
type Manifest struct {
	ID                string             `json:"id"`
	Version           string             `json:"version"`
	TotalSize         int64              `json:"totalSize"`
	DownloadURL       string             `json:"downloadUrl"`
	Checksum          string             `json:"checksum"`
	Dictionary        DictionaryArtifact `json:"dictionary"`
	TranslationModels []TranslationModel `json:"translationModels,omitempty"`
}

// DictionaryArtifact is the store file inside a pack.
type DictionaryArtifact struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Checksum   string `json:"checksum"`
	EntryCount int    `json:"entryCount"`
	Source     string `json:"source"`
}

// TranslationModel describes a per-direction neural model artifact.
// It appears both in manifests and in the sources catalog.
type TranslationModel struct {
	From        string  `json:"from" yaml:"from"`
	To          string  `json:"to" yaml:"to"`
	SizeMB      float64 `json:"sizeMb" yaml:"size_mb"`
	Checksum    string  `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	QualityTier string  `json:"qualityTier" yaml:"quality_tier"`
	URL         string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// LoadManifest reads a pack manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest missing pack id")
	}
	return &m, nil
}

// Save writes the manifest next to the built pack.
func (m *Manifest) Save(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
