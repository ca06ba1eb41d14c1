package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvgharbigit/polybook-sub003/internal/config"
	"github.com/kvgharbigit/polybook-sub003/internal/normalize"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

var (
	configFile string
)

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "packbuilder",
		Short:         "Build and publish dictionary packs from raw sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newConvertCommand(),
		newBuildCommand(),
		newVerifyCommand(),
		newRegistryCommand(),
	)
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// newSource maps a catalog source spec onto its reader.
func newSource(spec pack.SourceSpec) (normalize.Source, error) {
	switch spec.Format {
	case "stardict":
		return &normalize.StarDictSource{Dir: spec.Path}, nil
	case "wiktionary":
		return &normalize.WiktionarySource{Path: spec.Path}, nil
	case "tei":
		return &normalize.TEISource{Path: spec.Path}, nil
	default:
		return nil, fmt.Errorf("unknown source format %q", spec.Format)
	}
}
