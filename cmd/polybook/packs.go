package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/packman"
)

func newPacksCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "packs",
		Short: "Manage installed language packs",
	}

	rootCommand.AddCommand(&cobra.Command{
		Use:   "install PACK_ID",
		Short: "Download, verify and install a language pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packID := args[0]
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx := cmd.Context()
			manager, err := newPackManager(ctx, cfg)
			if err != nil {
				return err
			}

			if cfg.Packs.DownloadTimeoutSeconds > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Packs.DownloadTimeoutSeconds)*time.Second)
				defer cancel()
			}
			record, err := manager.Install(ctx, packID)
			if err != nil {
				if packman.IsIntegrityError(err) {
					color.Red("Pack %s failed its integrity check; the download was discarded, please retry.", packID)
				}
				return fmt.Errorf("manager.Install > %w", err)
			}

			color.Green("Installed %s (%s -> %s)", record.PackID, record.SourceLang, record.TargetLang)
			return nil
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "uninstall PACK_ID",
		Short: "Remove an installed language pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			manager, err := packman.NewManager(cfg.Packs.Directory, nil, nil)
			if err != nil {
				return fmt.Errorf("packman.NewManager > %w", err)
			}
			if err := manager.Uninstall(args[0]); err != nil {
				return fmt.Errorf("manager.Uninstall > %w", err)
			}
			color.Green("Uninstalled %s", args[0])
			return nil
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed packs with usage counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			manager, err := packman.NewManager(cfg.Packs.Directory, nil, nil)
			if err != nil {
				return fmt.Errorf("packman.NewManager > %w", err)
			}

			records := manager.Installed()
			if len(records) == 0 {
				fmt.Println("No packs installed.")
				return nil
			}
			bold := color.New(color.Bold)
			_, _ = bold.Println("PACK\tINSTALLED\tLOOKUPS\tTRANSLATIONS")
			for _, record := range records {
				fmt.Printf("%s\t%s\t%d\t%d\n",
					record.PackID,
					record.InstalledAt.Format("2006-01-02"),
					record.Usage.Lookups,
					record.Usage.Translations)
			}
			return nil
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "missing LANG...",
		Short: "Show which of the given languages have no installed pack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			manager, err := packman.NewManager(cfg.Packs.Directory, nil, nil)
			if err != nil {
				return fmt.Errorf("packman.NewManager > %w", err)
			}

			missing := manager.MissingLanguages(args)
			if len(missing) == 0 {
				color.Green("All requested languages are available offline.")
				return nil
			}
			color.Yellow("Missing packs for: %v", missing)
			return nil
		},
	})

	return rootCommand
}
