package packman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// markerFile is the installed marker inside a pack directory. Its
// presence is what makes an install observable; a directory without it
// does not count as installed.
const markerFile = "installed.json"

// UsageCounters tracks how much a pack has been used since install.
type UsageCounters struct {
	Lookups      int64 `json:"lookups"`
	Translations int64 `json:"translations"`
	// UsageSeconds accumulates reader time attributed to the pack.
	UsageSeconds int64 `json:"usageSeconds"`
}

// InstalledRecord is the persisted record of a successful install.
type InstalledRecord struct {
	PackID      string        `json:"packId"`
	SourceLang  string        `json:"sourceLang"`
	TargetLang  string        `json:"targetLang"`
	Digest      string        `json:"digest"`
	StoreFile   string        `json:"storeFile"`
	InstalledAt time.Time     `json:"installedAt"`
	Usage       UsageCounters `json:"usage"`
}

// StorePath is the absolute path of the record's dictionary store.
func (r *InstalledRecord) StorePath(packsDir string) string {
	return filepath.Join(packsDir, r.PackID, r.StoreFile)
}

func loadRecord(packDir string) (*InstalledRecord, error) {
	raw, err := os.ReadFile(filepath.Join(packDir, markerFile))
	if err != nil {
		return nil, err
	}
	var r InstalledRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse installed marker: %w", err)
	}
	return &r, nil
}

func (r *InstalledRecord) save(packDir string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal installed marker: %w", err)
	}
	// Rewrite via rename so a crashed counter update cannot truncate
	// the marker.
	tmp := filepath.Join(packDir, markerFile+".tmp")
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write installed marker: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(packDir, markerFile)); err != nil {
		return fmt.Errorf("replace installed marker: %w", err)
	}
	return nil
}
