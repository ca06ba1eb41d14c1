package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RegistryEntry describes one published pack. Field names and the
// SHA-256 digest are the compatibility contract with the pack manager
// and with already-published packs; do not rename them.
type RegistryEntry struct {
	URL              string    `json:"url"`
	Digest           string    `json:"digest"`
	Size             int64     `json:"size"`
	OriginalSize     int64     `json:"originalSize"`
	CompressionRatio float64   `json:"compressionRatio"`
	Created          time.Time `json:"created"`
}

// Registry maps language pair ids to their published artifacts. It is
// the single source of truth consumed by the pack manager.
type Registry map[string]RegistryEntry

// LoadRegistry reads a registry document from disk.
func LoadRegistry(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var r Registry
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return r, nil
}

// Save writes the registry document atomically: written to a temp file
// then renamed into place.
func (r Registry) Save(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
