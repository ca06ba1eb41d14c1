package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

func newVerifyCommand() *cobra.Command {
	var dir string

	command := &cobra.Command{
		Use:   "verify [PACK_ID...]",
		Short: "Check built artifacts against their registry digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := pack.LoadRegistry(filepath.Join(dir, "registry.json"))
			if err != nil {
				return fmt.Errorf("pack.LoadRegistry > %w", err)
			}

			ids := args
			if len(ids) == 0 {
				for id := range registry {
					ids = append(ids, id)
				}
			}

			failures := 0
			for _, id := range ids {
				regEntry, ok := registry[id]
				if !ok {
					color.Red("%s: not in registry", id)
					failures++
					continue
				}
				artifact := filepath.Join(dir, pack.ArtifactName(id))
				info, err := os.Stat(artifact)
				if err != nil {
					color.Red("%s: artifact missing: %v", id, err)
					failures++
					continue
				}
				if info.Size() != regEntry.Size {
					color.Red("%s: size mismatch: registry %d, artifact %d", id, regEntry.Size, info.Size())
					failures++
					continue
				}
				digest, err := pack.Digest(artifact)
				if err != nil {
					color.Red("%s: %v", id, err)
					failures++
					continue
				}
				if digest != regEntry.Digest {
					color.Red("%s: digest mismatch", id)
					failures++
					continue
				}
				color.Green("%s: ok", id)
			}

			if failures > 0 {
				return fmt.Errorf("%d pack(s) failed verification", failures)
			}
			return nil
		},
	}
	command.Flags().StringVar(&dir, "dir", "dist", "directory of built packs")
	return command
}

func newRegistryCommand() *cobra.Command {
	var dir string

	command := &cobra.Command{
		Use:   "registry",
		Short: "Rebuild registry.json from the manifests in a build directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := pack.ScanRegistry(dir)
			if err != nil {
				return fmt.Errorf("pack.ScanRegistry > %w", err)
			}

			registryPath := filepath.Join(dir, "registry.json")
			if err := registry.Save(registryPath); err != nil {
				return fmt.Errorf("registry.Save > %w", err)
			}
			color.Green("Wrote %s with %d pack(s)", registryPath, len(registry))
			return nil
		},
	}
	command.Flags().StringVar(&dir, "dir", "dist", "directory of built packs")
	return command
}
