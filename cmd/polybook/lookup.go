package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/lookup"
	"github.com/kvgharbigit/polybook-sub003/internal/packman"
	"github.com/kvgharbigit/polybook-sub003/internal/profile"
)

func newLookupCommand() *cobra.Command {
	var sourceLanguage string

	command := &cobra.Command{
		Use:   "lookup WORD",
		Short: "Look a word up in the installed dictionaries",
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
			profiles := profile.NewStore(cfg.Profile.File)
			userProfile, err := profiles.Load()
			if err != nil {
				return fmt.Errorf("profiles.Load > %w", err)
			}

			engine := lookup.NewEngine(manager, profiles)
			response, err := engine.Lookup(cmd.Context(), lookup.Request{
				Word:           args[0],
				SourceLanguage: sourceLanguage,
				Profile:        userProfile,
			})
			if err != nil {
				return fmt.Errorf("engine.Lookup > %w", err)
			}

			printLookupResponse(response)
			return nil
		},
	}
	command.Flags().StringVar(&sourceLanguage, "from", "", "dictionary language to search (default: profile target languages)")
	return command
}

func printLookupResponse(response *lookup.Response) {
	if !response.Success {
		if len(response.MissingLanguages) > 0 {
			color.Yellow("No dictionary installed for: %s", strings.Join(response.MissingLanguages, ", "))
			fmt.Println("Install the matching pack with: polybook packs install <pack-id>")
			return
		}
		color.Red("Not found.")
		if len(response.Suggestions) > 0 {
			fmt.Printf("Did you mean: %s\n", strings.Join(response.Suggestions, ", "))
		}
		return
	}

	printDefinition(response.PrimaryDefinition)
	for _, alternative := range response.Alternatives {
		fmt.Println()
		printDefinition(&alternative)
	}
}

func printDefinition(def *lookup.Definition) {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("%s", def.Headword)
	if def.PartOfSpeech != "" && def.PartOfSpeech != "unknown" {
		fmt.Printf(" (%s)", def.PartOfSpeech)
	}
	fmt.Printf(" [%s -> %s]\n", def.SourceLang, def.TargetLang)

	if len(def.Translations) > 0 {
		color.Green("  %s", strings.Join(def.Translations, ", "))
	}
	for _, definition := range def.Definitions {
		fmt.Printf("  %s\n", definition)
	}
	for _, example := range def.Examples {
		fmt.Printf("    e.g. %s\n", example)
	}
	if len(def.Synonyms) > 0 {
		fmt.Printf("  synonyms: %s\n", strings.Join(def.Synonyms, ", "))
	}
	if def.NeedsTranslation {
		color.Yellow("  (definition is not in your language; use: polybook translate)")
	}
}
