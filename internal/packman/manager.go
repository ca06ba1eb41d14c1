package packman

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

// Manager reconciles installed packs against the published registry
// and performs safe acquisition. It is the sole writer of the packs
// directory; the lookup engine only reads store paths resolved through
// it.
type Manager struct {
	dir        string
	registry   pack.Registry
	downloader *Downloader

	group singleflight.Group

	mu        sync.Mutex
	installed map[string]*InstalledRecord
	statuses  map[string]*Status
}

// NewManager creates a Manager over the packs directory and loads the
// records of already-installed packs.
func NewManager(dir string, registry pack.Registry, downloader *Downloader) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create packs directory: %w", err)
	}
	if downloader == nil {
		downloader = NewDownloader()
	}

	m := &Manager{
		dir:        dir,
		registry:   registry,
		downloader: downloader,
		installed:  map[string]*InstalledRecord{},
		statuses:   map[string]*Status{},
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan packs directory: %w", err)
	}
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		record, err := loadRecord(filepath.Join(dir, de.Name()))
		if err != nil {
			// A directory without a readable marker is not installed.
			continue
		}
		m.installed[record.PackID] = record
		m.statuses[record.PackID] = &Status{PackID: record.PackID, State: StateInstalled}
	}
	return m, nil
}

// Status returns the lifecycle status of a pack.
func (m *Manager) Status(packID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.statuses[packID]; ok {
		return *s
	}
	return Status{PackID: packID, State: StateAbsent}
}

func (m *Manager) setStatus(packID string, state State, progress float64, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[packID] = &Status{PackID: packID, State: state, Progress: progress, Reason: reason}
}

// Install downloads, verifies and installs a pack. Concurrent calls
// for the same pack id share one in-flight install and observe the
// same result; installs for different ids proceed independently.
func (m *Manager) Install(ctx context.Context, packID string) (*InstalledRecord, error) {
	regEntry, ok := m.registry[packID]
	if !ok {
		return nil, fmt.Errorf("install %s: %w", packID, ErrUnknownPack)
	}

	v, err, _ := m.group.Do(packID, func() (interface{}, error) {
		return m.install(ctx, packID, regEntry)
	})
	if err != nil {
		return nil, err
	}
	return v.(*InstalledRecord), nil
}

func (m *Manager) install(ctx context.Context, packID string, regEntry pack.RegistryEntry) (*InstalledRecord, error) {
	m.mu.Lock()
	if record, ok := m.installed[packID]; ok {
		m.mu.Unlock()
		return record, nil
	}
	m.mu.Unlock()

	sourceLang, targetLang, ok := entry.SplitPairID(packID)
	if !ok {
		return nil, fmt.Errorf("install %s: malformed pack id", packID)
	}

	tmpDir := filepath.Join(m.dir, ".tmp")
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	artifact := filepath.Join(tmpDir, pack.ArtifactName(packID))

	m.setStatus(packID, StateDownloading, 0, "")
	err := m.downloader.Fetch(ctx, regEntry.URL, artifact, regEntry.Size, func(fraction float64) {
		m.setStatus(packID, StateDownloading, fraction, "")
	})
	if err != nil {
		m.fail(packID, err, artifact)
		return nil, fmt.Errorf("download %s: %w", packID, err)
	}
	m.setStatus(packID, StateDownloaded, 1, "")

	digest, err := pack.Digest(artifact)
	if err != nil {
		m.fail(packID, err, artifact)
		return nil, err
	}
	if digest != regEntry.Digest {
		intErr := &IntegrityError{PackID: packID, Want: regEntry.Digest, Got: digest}
		m.fail(packID, intErr, artifact)
		return nil, intErr
	}
	m.setStatus(packID, StateVerified, 1, "")

	record, err := m.stage(packID, sourceLang, targetLang, artifact, regEntry.Digest)
	if err != nil {
		m.fail(packID, err, artifact)
		return nil, err
	}
	_ = os.Remove(artifact)

	m.mu.Lock()
	m.installed[packID] = record
	m.statuses[packID] = &Status{PackID: packID, State: StateInstalled, Progress: 1}
	m.mu.Unlock()

	slog.Info("installed pack", "pack", packID, "digest", digest)
	return record, nil
}

// stage decompresses the verified artifact into a staging directory
// and renames it into place. The rename is what makes the install
// visible: a lookup can never observe a half-written store.
func (m *Manager) stage(packID, sourceLang, targetLang, artifact, digest string) (*InstalledRecord, error) {
	staging := filepath.Join(m.dir, ".staging-"+packID)
	if err := os.RemoveAll(staging); err != nil {
		return nil, fmt.Errorf("clear staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	storeFile := packID + "_dict.sqlite"
	if err := pack.Decompress(artifact, filepath.Join(staging, storeFile)); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	record := &InstalledRecord{
		PackID:      packID,
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Digest:      digest,
		StoreFile:   storeFile,
		InstalledAt: time.Now().UTC(),
	}
	if err := record.save(staging); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	final := filepath.Join(m.dir, packID)
	if err := os.Rename(staging, final); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("activate pack directory: %w", err)
	}
	return record, nil
}

// fail records a terminal failure and removes partial artifacts so no
// corrupt bytes survive for a later install to trip over.
func (m *Manager) fail(packID string, err error, artifact string) {
	_ = os.Remove(artifact)
	_ = os.Remove(artifact + ".partial")
	m.setStatus(packID, StateFailed, 0, err.Error())
	slog.Warn("pack install failed", "pack", packID, "error", err)
}

// Uninstall removes an installed pack and its records.
func (m *Manager) Uninstall(packID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.installed[packID]; !ok {
		return fmt.Errorf("uninstall %s: not installed", packID)
	}
	if err := os.RemoveAll(filepath.Join(m.dir, packID)); err != nil {
		return fmt.Errorf("remove pack directory: %w", err)
	}
	delete(m.installed, packID)
	delete(m.statuses, packID)
	return nil
}

// Installed lists installed records sorted by pack id.
func (m *Manager) Installed() []*InstalledRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*InstalledRecord, 0, len(m.installed))
	for _, r := range m.installed {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PackID < records[j].PackID })
	return records
}

// StorePath resolves the dictionary store of an installed pack. ok is
// false when the pack is not installed.
func (m *Manager) StorePath(packID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.installed[packID]
	if !ok {
		return "", false
	}
	return record.StorePath(m.dir), true
}

// IsLanguageAvailable reports whether any installed pack serves lang
// as its source language. Pure query, no network I/O.
func (m *Manager) IsLanguageAvailable(lang string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.installed {
		if r.SourceLang == lang {
			return true
		}
	}
	return false
}

// MissingLanguages returns the subset of required language codes with
// no installed pack, preserving the requested order.
func (m *Manager) MissingLanguages(required []string) []string {
	missing := []string{}
	for _, lang := range required {
		if !m.IsLanguageAvailable(lang) {
			missing = append(missing, lang)
		}
	}
	return missing
}

// RecordLookup bumps a pack's lookup counter and persists it.
func (m *Manager) RecordLookup(packID string) {
	m.recordUsage(packID, func(u *UsageCounters) { u.Lookups++ })
}

// RecordTranslation bumps a pack's translation counter and persists it.
func (m *Manager) RecordTranslation(packID string) {
	m.recordUsage(packID, func(u *UsageCounters) { u.Translations++ })
}

func (m *Manager) recordUsage(packID string, update func(*UsageCounters)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.installed[packID]
	if !ok {
		return
	}
	update(&record.Usage)
	if err := record.save(filepath.Join(m.dir, packID)); err != nil {
		slog.Warn("failed to persist usage counters", "pack", packID, "error", err)
	}
}
