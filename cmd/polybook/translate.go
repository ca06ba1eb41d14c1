package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
	"github.com/kvgharbigit/polybook-sub003/internal/packman"
	"github.com/kvgharbigit/polybook-sub003/internal/translate"
)

func newTranslateCommand() *cobra.Command {
	var fromLang, toLang string

	command := &cobra.Command{
		Use:   "translate TEXT",
		Short: "Translate a sentence with the on-device engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			resolver := translate.NewResolver(
				translate.NewBridge(cfg.Translation.EngineURL),
				time.Duration(cfg.Translation.TimeoutMillis)*time.Millisecond,
				cfg.Translation.HubPenalty,
			)
			if !resolver.IsSupported(fromLang, toLang) {
				return fmt.Errorf("no translation path from %q to %q", fromLang, toLang)
			}

			result, err := resolver.Translate(cmd.Context(), args[0], fromLang, toLang)
			if err != nil {
				return fmt.Errorf("resolver.Translate > %w", err)
			}

			fmt.Println(result.Text)
			if result.HubRouted {
				color.Yellow("(routed via English; quality %.2f)", result.Quality)
			}

			// Count the translation against the matching pack's usage
			// counters when one is installed.
			if manager, err := packman.NewManager(cfg.Packs.Directory, nil, nil); err == nil {
				manager.RecordTranslation(entry.PairID(fromLang, toLang))
			}
			return nil
		},
	}
	command.Flags().StringVar(&fromLang, "from", "", "source language code")
	command.Flags().StringVar(&toLang, "to", "", "target language code")
	_ = command.MarkFlagRequired("from")
	_ = command.MarkFlagRequired("to")
	return command
}
