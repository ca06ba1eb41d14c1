package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/kvgharbigit/polybook-sub003/internal/config"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
	"github.com/kvgharbigit/polybook-sub003/internal/packman"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// loadRegistry prefers a fresh copy from the configured registry URL
// and falls back to the local cache so the device works offline.
func loadRegistry(ctx context.Context, cfg *config.Config, downloader *packman.Downloader) (pack.Registry, error) {
	if cfg.Registry.URL != "" {
		registry, err := downloader.Registry(ctx, cfg.Registry.URL)
		if err == nil {
			if saveErr := registry.Save(cfg.Registry.CacheFile); saveErr != nil {
				slog.Warn("failed to cache registry", slog.Any("error", saveErr))
			}
			return registry, nil
		}
		slog.Warn("registry fetch failed, falling back to cache", slog.Any("error", err))
	}

	registry, err := pack.LoadRegistry(cfg.Registry.CacheFile)
	if errors.Is(err, fs.ErrNotExist) {
		return pack.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pack.LoadRegistry > %w", err)
	}
	return registry, nil
}

func newPackManager(ctx context.Context, cfg *config.Config) (*packman.Manager, error) {
	downloader := packman.NewDownloader()
	registry, err := loadRegistry(ctx, cfg, downloader)
	if err != nil {
		return nil, err
	}
	manager, err := packman.NewManager(cfg.Packs.Directory, registry, downloader)
	if err != nil {
		return nil, fmt.Errorf("packman.NewManager > %w", err)
	}
	return manager, nil
}
