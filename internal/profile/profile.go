// Package profile persists the user's language profile on device.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// UserLanguageProfile describes which languages the user reads and
// learns. It is created once per device and mutated on every
// dictionary interaction.
type UserLanguageProfile struct {
	NativeLanguage              string           `json:"nativeLanguage"`
	TargetLanguages             []string         `json:"targetLanguages"`
	PreferredDefinitionLanguage string           `json:"preferredDefinitionLanguage"`
	Proficiency                 map[string]string `json:"proficiency,omitempty"`
	TotalLookups                int64            `json:"totalLookups"`
	LanguageLookupCounts        map[string]int64 `json:"languageLookupCounts,omitempty"`
}

// RecordLookup bumps the usage counters for one lookup against lang.
func (p *UserLanguageProfile) RecordLookup(lang string) {
	p.TotalLookups++
	if lang == "" {
		return
	}
	if p.LanguageLookupCounts == nil {
		p.LanguageLookupCounts = map[string]int64{}
	}
	p.LanguageLookupCounts[lang]++
}

// Store reads and writes the profile as a JSON file.
type Store struct {
	path string

	mu sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored profile, or a zero profile if none has been
// saved yet.
func (s *Store) Load() (*UserLanguageProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserLanguageProfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p UserLanguageProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", s.path, err)
	}
	return &p, nil
}

// Save writes the profile atomically.
func (s *Store) Save(p *UserLanguageProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	return nil
}
