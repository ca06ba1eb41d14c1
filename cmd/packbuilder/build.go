package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/normalize"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

func newBuildCommand() *cobra.Command {
	var (
		sourcesFile string
		outputDir   string
		baseURL     string
		version     string
		limit       int
	)

	command := &cobra.Command{
		Use:   "build",
		Short: "Build packs for every pair in the sources catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if sourcesFile == "" {
				sourcesFile = cfg.Builder.SourcesFile
			}
			if outputDir == "" {
				outputDir = cfg.Builder.OutputDirectory
			}
			if baseURL == "" {
				baseURL = cfg.Builder.BaseURL
			}
			if sourcesFile == "" {
				return fmt.Errorf("no sources catalog: pass --sources or set builder.sources_file")
			}

			catalog, err := pack.LoadCatalog(sourcesFile)
			if err != nil {
				return fmt.Errorf("pack.LoadCatalog > %w", err)
			}
			if version == "" {
				version = catalog.Version
			}

			builder := &pack.Builder{
				OutputDir: outputDir,
				BaseURL:   baseURL,
				Version:   version,
				Progress: func(done, total int) {
					fmt.Printf("\r  inserting entries %d/%d", done, total)
					if done == total {
						fmt.Println()
					}
				},
			}

			registry := pack.Registry{}
			ctx := cmd.Context()
			for _, pair := range catalog.Pairs {
				pairID := pair.PairID()
				fmt.Printf("Building %s from %d source(s)\n", pairID, len(pair.Sources))

				normalizer, err := normalize.New(pair.Source, pair.Target)
				if err != nil {
					return fmt.Errorf("normalize.New(%s) > %w", pairID, err)
				}
				sources := make([]normalize.Source, 0, len(pair.Sources))
				provenance := make([]string, 0, len(pair.Sources))
				for _, spec := range pair.Sources {
					source, err := newSource(spec)
					if err != nil {
						return err
					}
					sources = append(sources, source)
					provenance = append(provenance, spec.Format)
				}

				entries, stats, err := normalizer.NormalizeAll(sources...)
				if err != nil {
					return fmt.Errorf("normalizer.NormalizeAll(%s) > %w", pairID, err)
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				fmt.Printf("  %d entries (%d records, %d malformed, %d discarded)\n",
					len(entries), stats.Records, stats.Malformed, stats.Discarded)

				result, err := builder.Build(ctx, pairID, strings.Join(provenance, "+"), entries)
				if err != nil {
					return fmt.Errorf("builder.Build(%s) > %w", pairID, err)
				}
				if len(pair.Models) > 0 {
					result.Manifest.TranslationModels = pair.Models
					if err := result.Manifest.Save(result.ManifestPath); err != nil {
						return fmt.Errorf("save manifest with models: %w", err)
					}
				}
				registry[pairID] = result.RegistryEntry
				color.Green("  built %s (%.2fx compression)", filepath.Base(result.ArtifactPath), result.RegistryEntry.CompressionRatio)
			}

			registryPath := filepath.Join(outputDir, "registry.json")
			if err := registry.Save(registryPath); err != nil {
				return fmt.Errorf("registry.Save > %w", err)
			}
			color.Green("Wrote %s with %d pack(s)", registryPath, len(registry))
			return nil
		},
	}
	command.Flags().StringVar(&sourcesFile, "sources", "", "sources catalog (sources.yml)")
	command.Flags().StringVar(&outputDir, "output", "", "output directory for built packs")
	command.Flags().StringVar(&baseURL, "base-url", "", "public URL prefix for artifacts")
	command.Flags().StringVar(&version, "version", "", "version stamp for manifests (default: catalog version)")
	command.Flags().IntVar(&limit, "limit", 0, "cap entries per pack (0 = no cap)")
	return command
}
