package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kvgharbigit/polybook-sub003/internal/normalize"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

// Format is a source format flag value.
type Format string

func (f *Format) Set(val string) error {
	for _, format := range allFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s", val)
}

func (f Format) String() string {
	return string(f)
}

func (f *Format) Type() string {
	return "Format"
}

const (
	FormatStarDict   Format = "stardict"
	FormatWiktionary Format = "wiktionary"
	FormatTEI        Format = "tei"
)

var (
	_          pflag.Value = (*Format)(nil)
	allFormats             = []Format{FormatStarDict, FormatWiktionary, FormatTEI}
)

func newConvertCommand() *cobra.Command {
	var (
		format     Format
		input      string
		output     string
		sourceLang string
		targetLang string
		limit      int
	)

	command := &cobra.Command{
		Use:   "convert",
		Short: "Convert one raw dictionary source into normalized entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := newSource(pack.SourceSpec{Format: string(format), Path: input})
			if err != nil {
				return err
			}
			normalizer, err := normalize.New(sourceLang, targetLang)
			if err != nil {
				return fmt.Errorf("normalize.New > %w", err)
			}

			entries, stats, err := normalizer.Normalize(source)
			if err != nil {
				return fmt.Errorf("normalizer.Normalize > %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			raw, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal entries: %w", err)
			}
			if err := os.WriteFile(output, raw, 0644); err != nil {
				return fmt.Errorf("write entries: %w", err)
			}

			fmt.Printf("Converted %d records into %d entries (%d malformed, %d discarded)\n",
				stats.Records, len(entries), stats.Malformed, stats.Discarded)
			return nil
		},
	}
	command.Flags().Var(&format, "format", fmt.Sprintf("source format. Possible values are %v", allFormats))
	command.Flags().StringVar(&input, "input", "", "source path (stardict directory or extract file)")
	command.Flags().StringVar(&output, "output", "entries.json", "output entries file")
	command.Flags().StringVar(&sourceLang, "source", "", "source language code")
	command.Flags().StringVar(&targetLang, "target", "", "target language code")
	command.Flags().IntVar(&limit, "limit", 0, "cap the number of emitted entries (0 = no cap)")
	for _, flag := range []string{"format", "input", "source", "target"} {
		_ = command.MarkFlagRequired(flag)
	}
	return command
}
