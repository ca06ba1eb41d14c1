package pack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// Builder turns a normalized entry set into a distributable pack: a
// sqlite store, a compressed artifact, a manifest and a registry
// entry.
type Builder struct {
	// OutputDir receives the built artifacts.
	OutputDir string
	// BaseURL is the public prefix under which artifacts are hosted.
	BaseURL string
	// Version stamps the manifests of this build run.
	Version string
	// Progress, when non-nil, receives insert progress.
	Progress func(done, total int)
}

// BuildResult is everything produced for one language pair.
type BuildResult struct {
	PairID        string
	StorePath     string
	ArtifactPath  string
	ManifestPath  string
	Manifest      *Manifest
	RegistryEntry RegistryEntry
}

// ArtifactName is the deterministic file name for a pair's compressed
// store.
func ArtifactName(pairID string) string {
	return pairID + "_dict.sqlite.gz"
}

// Build persists entries for one language pair and packages them. The
// intermediary uncompressed store is removed on success.
func (b *Builder) Build(ctx context.Context, pairID, provenance string, entries []entry.Entry) (*BuildResult, error) {
	if _, _, ok := entry.SplitPairID(pairID); !ok {
		return nil, fmt.Errorf("invalid pair id %q", pairID)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to package for %s", pairID)
	}
	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	storePath := filepath.Join(b.OutputDir, pairID+"_dict.sqlite")
	// Rebuilds start from a clean store.
	_ = os.Remove(storePath)

	store, err := OpenStore(storePath)
	if err != nil {
		return nil, err
	}
	if err := store.CreateSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.InsertEntries(ctx, entries, b.Progress); err != nil {
		_ = store.Close()
		return nil, err
	}
	count, err := store.EntryCount(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.Close(); err != nil {
		return nil, fmt.Errorf("close store: %w", err)
	}

	compressed, err := Compress(storePath)
	if err != nil {
		return nil, err
	}
	digest, err := Digest(compressed.Path)
	if err != nil {
		return nil, err
	}

	url := b.BaseURL
	if url != "" && url[len(url)-1] != '/' {
		url += "/"
	}
	url += ArtifactName(pairID)

	manifest := &Manifest{
		ID:          pairID,
		Version:     b.Version,
		TotalSize:   compressed.Size,
		DownloadURL: url,
		Checksum:    digest,
		Dictionary: DictionaryArtifact{
			Filename:   ArtifactName(pairID),
			Size:       compressed.Size,
			Checksum:   digest,
			EntryCount: count,
			Source:     provenance,
		},
	}
	manifestPath := filepath.Join(b.OutputDir, pairID+".json")
	if err := manifest.Save(manifestPath); err != nil {
		return nil, err
	}

	if err := os.Remove(storePath); err != nil {
		return nil, fmt.Errorf("remove intermediary store: %w", err)
	}

	slog.Info("built pack",
		"pair", pairID,
		"entries", count,
		"size", compressed.Size,
		"ratio", fmt.Sprintf("%.2f", compressed.Ratio))

	return &BuildResult{
		PairID:       pairID,
		StorePath:    storePath,
		ArtifactPath: compressed.Path,
		ManifestPath: manifestPath,
		Manifest:     manifest,
		RegistryEntry: RegistryEntry{
			URL:              url,
			Digest:           digest,
			Size:             compressed.Size,
			OriginalSize:     compressed.OriginalSize,
			CompressionRatio: compressed.Ratio,
			Created:          time.Now().UTC(),
		},
	}, nil
}

// ScanRegistry rebuilds a registry document from the manifests in a
// directory of built packs.
func ScanRegistry(dir string) (Registry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan output directory: %w", err)
	}

	registry := Registry{}
	for _, path := range matches {
		if filepath.Base(path) == "registry.json" {
			continue
		}
		m, err := LoadManifest(path)
		if err != nil {
			slog.Warn("skipping unreadable manifest", "path", path, "error", err)
			continue
		}
		artifact := filepath.Join(dir, m.Dictionary.Filename)
		info, err := os.Stat(artifact)
		if err != nil {
			slog.Warn("manifest without artifact", "path", path, "artifact", m.Dictionary.Filename)
			continue
		}
		registry[m.ID] = RegistryEntry{
			URL:     m.DownloadURL,
			Digest:  m.Checksum,
			Size:    info.Size(),
			Created: info.ModTime().UTC(),
		}
	}
	return registry, nil
}
